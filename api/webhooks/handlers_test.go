package webhooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/captions"
	"github.com/thereadylab/readylab-api/internal/services/events"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
	"github.com/thereadylab/readylab-api/internal/services/subscriptions"
	"github.com/thereadylab/readylab-api/pkg/signature"
)

const testVideoSecret = "video-secret"
const testPaymentSecret = "payment-secret"

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Course{}, &models.Lesson{}, &models.Caption{}, &models.WebhookEvent{},
		&models.LiveEvent{}, &models.EventRegistration{},
		&models.Plan{}, &models.Subscription{}, &models.PaymentEvent{},
		&models.Job{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	jobService := jobs.NewService(jobs.NewRepository(db))
	deps := &types.Dependencies{
		LessonService:        lessons.NewService(lessons.NewRepository(db)),
		CaptionService:       captions.NewService(captions.NewRepository(db), jobService),
		EventService:         events.NewService(events.NewRepository(db), nil, nil),
		SubscriptionService:  subscriptions.NewService(subscriptions.NewRepository(db)),
		JobService:           jobService,
		VideoWebhookSecret:   testVideoSecret,
		PaymentWebhookSecret: testPaymentSecret,
		CaptionLanguages:     []string{"es", "fr"},
	}

	router := gin.New()
	RegisterRoutes(router.Group("/webhooks"), deps)
	return router, db
}

func signedRequest(t *testing.T, path, secret string, payload any) *http.Request {
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	now := time.Now().Unix()
	req.Header.Set(SignatureHeader, fmt.Sprintf("t=%d,v1=%s", now, signature.Sign(secret, now, body)))
	return req
}

func createTestLesson(t *testing.T, db *gorm.DB, assetID string) *models.Lesson {
	course := &models.Course{Title: "Physics", Slug: "physics", InstructorID: 1, Published: true}
	require.NoError(t, db.Create(course).Error)

	lesson := &models.Lesson{
		CourseID:    course.ID,
		Title:       "Gravity",
		Position:    1,
		AssetID:     assetID,
		AssetStatus: models.AssetStatusPreparing,
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

func assetReadyPayload(eventID, assetID string) map[string]any {
	return map[string]any{
		"id":   eventID,
		"type": "video.asset.ready",
		"data": map[string]any{
			"id":           assetID,
			"status":       "ready",
			"duration":     120.5,
			"playback_ids": []map[string]any{{"id": "pb-1", "policy": "public"}},
		},
	}
}

func TestVideoWebhook(t *testing.T) {
	t.Run("rejects unsigned requests", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		body, _ := json.Marshal(assetReadyPayload("evt-1", "asset-1"))
		req := httptest.NewRequest(http.MethodPost, "/webhooks/video", bytes.NewReader(body))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects requests signed with the wrong secret", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		req := signedRequest(t, "/webhooks/video", "wrong-secret", assetReadyPayload("evt-1", "asset-1"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("asset ready marks the lesson and fans out captions", func(t *testing.T) {
		router, db := setupTestRouter(t)
		lesson := createTestLesson(t, db, "asset-1")

		req := signedRequest(t, "/webhooks/video", testVideoSecret, assetReadyPayload("evt-1", "asset-1"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.Lesson
		require.NoError(t, db.First(&updated, lesson.ID).Error)
		assert.Equal(t, models.AssetStatusReady, updated.AssetStatus)
		assert.Equal(t, "pb-1", updated.PlaybackID)
		assert.InDelta(t, 120.5, updated.DurationSeconds, 0.001)

		// One pending caption per configured language
		var captionCount int64
		require.NoError(t, db.Model(&models.Caption{}).
			Where("asset_id = ? AND status = ?", "asset-1", models.CaptionPending).
			Count(&captionCount).Error)
		assert.EqualValues(t, 2, captionCount)

		var jobCount int64
		require.NoError(t, db.Model(&models.Job{}).
			Where("type = ?", models.JobTypeCaptionGeneration).
			Count(&jobCount).Error)
		assert.EqualValues(t, 2, jobCount)
	})

	t.Run("redelivered events are acknowledged as duplicates", func(t *testing.T) {
		router, db := setupTestRouter(t)
		createTestLesson(t, db, "asset-1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, "/webhooks/video", testVideoSecret, assetReadyPayload("evt-1", "asset-1")))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, "/webhooks/video", testVideoSecret, assetReadyPayload("evt-1", "asset-1")))
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["duplicate"])
	})

	t.Run("events for unknown assets are acknowledged", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		req := signedRequest(t, "/webhooks/video", testVideoSecret, assetReadyPayload("evt-1", "asset-unknown"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("asset errored marks the lesson", func(t *testing.T) {
		router, db := setupTestRouter(t)
		lesson := createTestLesson(t, db, "asset-1")

		payload := map[string]any{
			"id":   "evt-err",
			"type": "video.asset.errored",
			"data": map[string]any{"id": "asset-1", "status": "errored"},
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, "/webhooks/video", testVideoSecret, payload))
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.Lesson
		require.NoError(t, db.First(&updated, lesson.ID).Error)
		assert.Equal(t, models.AssetStatusErrored, updated.AssetStatus)
	})

	t.Run("live stream active moves the event to live", func(t *testing.T) {
		router, db := setupTestRouter(t)

		event := &models.LiveEvent{
			Title:       "Office Hours",
			HostID:      1,
			Status:      models.EventScheduled,
			ScheduledAt: time.Now().Add(time.Hour),
			StreamID:    "ls-1",
		}
		require.NoError(t, db.Create(event).Error)

		payload := map[string]any{
			"id":   "evt-live",
			"type": "video.live_stream.active",
			"data": map[string]any{"id": "ls-1", "status": "active"},
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, "/webhooks/video", testVideoSecret, payload))
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.LiveEvent
		require.NoError(t, db.First(&updated, event.ID).Error)
		assert.Equal(t, models.EventLive, updated.Status)
		assert.NotNil(t, updated.StartedAt)
	})

	t.Run("malformed payloads are rejected", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		body := []byte(`{"id": "", "type": ""}`)
		now := time.Now().Unix()
		req := httptest.NewRequest(http.MethodPost, "/webhooks/video", bytes.NewReader(body))
		req.Header.Set(SignatureHeader, fmt.Sprintf("t=%d,v1=%s", now, signature.Sign(testVideoSecret, now, body)))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentsWebhook(t *testing.T) {
	t.Run("payment succeeded activates the subscription", func(t *testing.T) {
		router, db := setupTestRouter(t)

		plan := &models.Plan{Code: "pro", Name: "Pro", PriceCents: 1999, Interval: "month", Active: true}
		require.NoError(t, db.Create(plan).Error)
		subscription := &models.Subscription{UserID: 42, PlanID: plan.ID, Status: models.SubscriptionPending}
		require.NoError(t, db.Create(subscription).Error)

		periodEnd := time.Now().AddDate(0, 1, 0).Unix()
		payload := map[string]any{
			"id":   "evt-pay-1",
			"type": "payment.succeeded",
			"data": map[string]any{"subscription_id": subscription.ID, "period_end": periodEnd},
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, "/webhooks/payments", testPaymentSecret, payload))
		require.Equal(t, http.StatusOK, w.Code)

		var updated models.Subscription
		require.NoError(t, db.First(&updated, subscription.ID).Error)
		assert.Equal(t, models.SubscriptionActive, updated.Status)
		require.NotNil(t, updated.CurrentPeriodEnd)
		assert.Equal(t, periodEnd, updated.CurrentPeriodEnd.Unix())
	})

	t.Run("unknown subscription is acknowledged, not retried", func(t *testing.T) {
		router, db := setupTestRouter(t)

		payload := map[string]any{
			"id":   "evt-pay-unknown",
			"type": "payment.succeeded",
			"data": map[string]any{"subscription_id": 9999},
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, "/webhooks/payments", testPaymentSecret, payload))
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["ignored"])

		var count int64
		require.NoError(t, db.Model(&models.PaymentEvent{}).Count(&count).Error)
		assert.Zero(t, count, "unknown-subscription events are not recorded")
	})

	t.Run("video secret does not sign payment webhooks", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		payload := map[string]any{"id": "evt-1", "type": "payment.succeeded", "data": map[string]any{}}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedRequest(t, "/webhooks/payments", testVideoSecret, payload))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
