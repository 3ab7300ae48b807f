package captions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
)

func setupTestService(t *testing.T) (CaptionService, *gorm.DB) {
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
	return NewService(NewRepository(db), jobService), db
}

func countJobs(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&models.Job{}).
		Where("type = ?", models.JobTypeCaptionGeneration).
		Count(&count).Error)
	return count
}

func TestRequestCaption(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending caption and a job", func(t *testing.T) {
		service, db := setupTestService(t)

		caption, err := service.RequestCaption(ctx, 1, "asset-1", "ES")
		require.NoError(t, err)

		assert.Equal(t, models.CaptionPending, caption.Status)
		assert.Equal(t, "es", caption.Language, "language is normalized to lowercase")
		assert.Equal(t, "translated", caption.Source)
		assert.EqualValues(t, 1, countJobs(t, db))
	})

	t.Run("re-requesting a pending caption does not duplicate the job", func(t *testing.T) {
		service, db := setupTestService(t)

		first, err := service.RequestCaption(ctx, 1, "asset-1", "es")
		require.NoError(t, err)

		second, err := service.RequestCaption(ctx, 1, "asset-1", "es")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.EqualValues(t, 1, countJobs(t, db))
	})

	t.Run("ready captions are not regenerated", func(t *testing.T) {
		service, _ := setupTestService(t)

		caption, err := service.RequestCaption(ctx, 1, "asset-1", "es")
		require.NoError(t, err)

		_, err = service.MarkReady(ctx, caption.ID, "track-9", "captions/asset-1/es.vtt", "https://cdn.example.com/es.vtt")
		require.NoError(t, err)

		_, err = service.RequestCaption(ctx, 1, "asset-1", "es")
		assert.ErrorIs(t, err, ErrCaptionFinished)
	})

	t.Run("re-requesting an errored caption resets it to pending", func(t *testing.T) {
		service, _ := setupTestService(t)

		caption, err := service.RequestCaption(ctx, 1, "asset-1", "es")
		require.NoError(t, err)

		_, err = service.MarkError(ctx, caption.ID, "provider timeout")
		require.NoError(t, err)

		reset, err := service.RequestCaption(ctx, 1, "asset-1", "es")
		require.NoError(t, err)

		assert.Equal(t, caption.ID, reset.ID)
		assert.Equal(t, models.CaptionPending, reset.Status)
		assert.Empty(t, reset.Error)
		assert.Nil(t, reset.CompletedAt)
	})

	t.Run("rejects blank input", func(t *testing.T) {
		service, _ := setupTestService(t)

		_, err := service.RequestCaption(ctx, 1, "", "es")
		assert.Error(t, err)

		_, err = service.RequestCaption(ctx, 1, "asset-1", "  ")
		assert.Error(t, err)
	})
}

func TestRequestCaptionsForAsset(t *testing.T) {
	ctx := context.Background()
	service, db := setupTestService(t)

	require.NoError(t, service.RequestCaptionsForAsset(ctx, 1, "asset-1", []string{"es", "fr", "de"}))
	assert.EqualValues(t, 3, countJobs(t, db))

	// A ready language is skipped without failing the rest
	var caption models.Caption
	require.NoError(t, db.Where("asset_id = ? AND language = ?", "asset-1", "es").First(&caption).Error)
	_, err := service.MarkReady(ctx, caption.ID, "track-1", "captions/asset-1/es.vtt", "")
	require.NoError(t, err)

	require.NoError(t, service.RequestCaptionsForAsset(ctx, 1, "asset-1", []string{"es", "fr"}))
}

func TestCaptionLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestService(t)

	caption, err := service.RequestCaption(ctx, 7, "asset-2", "pt")
	require.NoError(t, err)

	processing, err := service.MarkProcessing(ctx, caption.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaptionProcessing, processing.Status)

	ready, err := service.MarkReady(ctx, caption.ID, "track-3", "captions/asset-2/pt.vtt", "https://cdn.example.com/pt.vtt")
	require.NoError(t, err)
	assert.Equal(t, models.CaptionReady, ready.Status)
	assert.Equal(t, "track-3", ready.TrackID)
	assert.NotNil(t, ready.CompletedAt)

	// A finished caption cannot move back to processing
	_, err = service.MarkProcessing(ctx, caption.ID)
	assert.ErrorIs(t, err, ErrCaptionFinished)

	listed, err := service.ListByLesson(ctx, 7)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.CaptionReady, listed[0].Status)
}

func TestWebhookEventDeduplication(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestService(t)

	processed, err := service.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, service.RecordEvent(ctx, "evt-1", "video.asset.ready", "asset-1"))

	processed, err = service.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)
}
