package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/captions"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/translate"
	"github.com/thereadylab/readylab-api/internal/services/videostream"
)

const sourceVTT = "WEBVTT\n\n00:00:01.000 --> 00:00:03.000\nHello everyone\n\n00:00:04.000 --> 00:00:06.500\nWelcome to the course\n"

// memoryStore keeps uploads in a map instead of talking to object storage.
type memoryStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{uploads: make(map[string][]byte)}
}

func (m *memoryStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fullKey := bucket + "/" + key
	m.uploads[fullKey] = data
	return "https://storage.example.com/" + fullKey, nil
}

// fakeProvider imitates the video provider's asset, track and streaming
// endpoints used by the caption pipeline.
func fakeProvider(t *testing.T, trackReady bool) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/assets/asset-1", func(w http.ResponseWriter, r *http.Request) {
		status := "preparing"
		if trackReady {
			status = "ready"
		}
		fmt.Fprintf(w, `{
			"data": {
				"id": "asset-1",
				"status": "ready",
				"playback_ids": [{"id": "pb-1", "policy": "public"}],
				"tracks": [{"id": "trk-auto", "type": "text", "text_type": "subtitles", "text_source": "generated_vod", "language_code": "en", "status": %q}]
			}
		}`, status)
	})

	mux.HandleFunc("/assets/asset-1/tracks", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var params videostream.TextTrackParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "es", params.LanguageCode)
		assert.Contains(t, params.URL, "asset-1/es.vtt")
		w.Write([]byte(`{"data": {"id": "trk-es", "type": "text", "text_type": "subtitles", "language_code": "es", "status": "preparing"}}`))
	})

	mux.HandleFunc("/pb-1/text/trk-auto.vtt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sourceVTT))
	})

	return httptest.NewServer(mux)
}

// fakeTranslator upper-cases every fragment so translations are recognizable.
func fakeTranslator(fail bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var req struct {
			Q []string `json:"q"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		out := make([]string, len(req.Q))
		for i, q := range req.Q {
			out[i] = strings.ToUpper(q)
		}
		json.NewEncoder(w).Encode(map[string]any{"translatedText": out})
	}))
}

type captionFixture struct {
	processor      *CaptionProcessor
	jobService     jobs.Service
	captionService captions.CaptionService
	store          *memoryStore
	db             *gorm.DB
}

func setupFixture(t *testing.T, providerURL, translatorURL string) *captionFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(&models.Caption{}, &models.WebhookEvent{}, &models.Job{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	jobService := jobs.NewService(jobs.NewRepository(db))
	captionService := captions.NewService(captions.NewRepository(db), jobService)
	store := newMemoryStore()

	processor := NewCaptionProcessor(
		jobService,
		captionService,
		videostream.NewClient(videostream.Config{BaseURL: providerURL, StreamBaseURL: providerURL}),
		translate.NewClient(translate.Config{BaseURL: translatorURL}),
		store,
		CaptionProcessorConfig{
			SourceLanguage:    "en",
			Bucket:            "captions",
			TrackPollInterval: time.Millisecond,
			TrackPollAttempts: 2,
		},
	)

	return &captionFixture{
		processor:      processor,
		jobService:     jobService,
		captionService: captionService,
		store:          store,
		db:             db,
	}
}

// requestCaption creates the caption row and returns it with its pending job.
func (f *captionFixture) requestCaption(t *testing.T) (*models.Caption, *models.Job) {
	ctx := context.Background()

	caption, err := f.captionService.RequestCaption(ctx, 1, "asset-1", "es")
	require.NoError(t, err)

	job, err := f.jobService.GetJobForCaption(ctx, caption.ID)
	require.NoError(t, err)
	return caption, job
}

func TestCaptionProcessorCanProcess(t *testing.T) {
	processor := NewCaptionProcessor(nil, nil, nil, nil, nil, CaptionProcessorConfig{})
	assert.True(t, processor.CanProcess(models.JobTypeCaptionGeneration))
	assert.False(t, processor.CanProcess(models.JobTypeNotificationEmail))
}

func TestCaptionProcessorPipeline(t *testing.T) {
	ctx := context.Background()

	provider := fakeProvider(t, true)
	defer provider.Close()
	translator := fakeTranslator(false)
	defer translator.Close()

	fixture := setupFixture(t, provider.URL, translator.URL)
	caption, job := fixture.requestCaption(t)

	require.NoError(t, fixture.processor.ProcessJob(ctx, job))

	// Caption row reached ready with the attached track
	updated, err := fixture.captionService.GetCaption(ctx, caption.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaptionReady, updated.Status)
	assert.Equal(t, "trk-es", updated.TrackID)
	assert.Equal(t, "asset-1/es.vtt", updated.StorageKey)
	assert.Contains(t, updated.PublicURL, "captions/asset-1/es.vtt")

	// Both the source and translated files were uploaded
	assert.Contains(t, fixture.store.uploads, "captions/asset-1/en.vtt")
	translated := string(fixture.store.uploads["captions/asset-1/es.vtt"])

	// Timestamps survive translation, texts do not
	assert.Contains(t, translated, "00:00:01.000 --> 00:00:03.000")
	assert.Contains(t, translated, "HELLO EVERYONE")
	assert.Contains(t, translated, "WELCOME TO THE COURSE")
	assert.NotContains(t, translated, "Hello everyone")

	// Job was completed
	done, err := fixture.jobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, done.Status)
}

func TestCaptionProcessorAutoTrackTimeout(t *testing.T) {
	ctx := context.Background()

	provider := fakeProvider(t, false) // auto track stays in preparing
	defer provider.Close()
	translator := fakeTranslator(false)
	defer translator.Close()

	fixture := setupFixture(t, provider.URL, translator.URL)
	caption, job := fixture.requestCaption(t)

	err := fixture.processor.ProcessJob(ctx, job)
	require.Error(t, err)

	updated, getErr := fixture.captionService.GetCaption(ctx, caption.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.CaptionError, updated.Status)
	assert.NotEmpty(t, updated.Error)
}

func TestCaptionProcessorUnsupportedLanguage(t *testing.T) {
	ctx := context.Background()

	provider := fakeProvider(t, true)
	defer provider.Close()
	translator := fakeTranslator(true) // rejects every pair
	defer translator.Close()

	fixture := setupFixture(t, provider.URL, translator.URL)
	caption, job := fixture.requestCaption(t)

	err := fixture.processor.ProcessJob(ctx, job)
	require.Error(t, err)

	updated, getErr := fixture.captionService.GetCaption(ctx, caption.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.CaptionError, updated.Status)
}

func TestCaptionProcessorSkipsFinishedCaptions(t *testing.T) {
	ctx := context.Background()

	provider := fakeProvider(t, true)
	defer provider.Close()
	translator := fakeTranslator(false)
	defer translator.Close()

	fixture := setupFixture(t, provider.URL, translator.URL)
	caption, job := fixture.requestCaption(t)

	_, err := fixture.captionService.MarkReady(ctx, caption.ID, "trk-done", "asset-1/es.vtt", "")
	require.NoError(t, err)

	require.NoError(t, fixture.processor.ProcessJob(ctx, job))

	// The existing track is untouched and nothing was uploaded
	updated, err := fixture.captionService.GetCaption(ctx, caption.ID)
	require.NoError(t, err)
	assert.Equal(t, "trk-done", updated.TrackID)
	assert.Empty(t, fixture.store.uploads)
}
