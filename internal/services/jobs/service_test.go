package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereadylab/readylab-api/internal/models"
)

func setupTestService(t *testing.T) (Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Job{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return NewService(NewRepository(db)), db
}

func reloadJob(t *testing.T, db *gorm.DB, id uint) *models.Job {
	var job models.Job
	require.NoError(t, db.First(&job, id).Error)
	return &job
}

func TestEnqueueJob(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		service, _ := setupTestService(t)

		job, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 1})
		require.NoError(t, err)

		assert.Equal(t, models.JobStatusPending, job.Status)
		assert.Equal(t, DefaultPriority, job.Priority)
		assert.Equal(t, DefaultMaxRetries, job.MaxRetries)
		assert.Nil(t, job.ScheduledAt)
	})

	t.Run("applies options", func(t *testing.T) {
		service, _ := setupTestService(t)

		sendAt := time.Now().Add(time.Hour)
		job, err := service.EnqueueJob(ctx, models.JobTypeNotificationEmail,
			models.JobPayload{"template": "event_reminder", "event_id": 9},
			WithPriority(5), WithMaxRetries(1), WithCreatedBy("system"), WithScheduledAt(sendAt))
		require.NoError(t, err)

		assert.Equal(t, 5, job.Priority)
		assert.Equal(t, 1, job.MaxRetries)
		assert.Equal(t, "system", job.CreatedBy)
		require.NotNil(t, job.ScheduledAt)
		assert.WithinDuration(t, sendAt, *job.ScheduledAt, time.Second)
	})
}

func TestEnqueueUniqueJob(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the existing live job", func(t *testing.T) {
		service, db := setupTestService(t)

		first, err := service.EnqueueUniqueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 7}, "caption_id")
		require.NoError(t, err)

		second, err := service.EnqueueUniqueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 7}, "caption_id")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.Model(&models.Job{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("re-enqueues after the previous job finished", func(t *testing.T) {
		service, _ := setupTestService(t)

		first, err := service.EnqueueUniqueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 7}, "caption_id")
		require.NoError(t, err)
		require.NoError(t, service.CompleteJob(ctx, first.ID, nil))

		second, err := service.EnqueueUniqueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 7}, "caption_id")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("rejects a payload without the unique key", func(t *testing.T) {
		service, _ := setupTestService(t)

		_, err := service.EnqueueUniqueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"asset_id": "a"}, "caption_id")
		assert.Error(t, err)
	})
}

func TestClaimNextJob(t *testing.T) {
	ctx := context.Background()

	t.Run("claims by priority then age", func(t *testing.T) {
		service, _ := setupTestService(t)

		older, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 1})
		require.NoError(t, err)
		urgent, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 2}, WithPriority(10))
		require.NoError(t, err)

		first, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		assert.Equal(t, urgent.ID, first.ID)
		assert.Equal(t, models.JobStatusProcessing, first.Status)
		assert.Equal(t, "worker-1", first.WorkerID)
		require.NotNil(t, first.StartedAt)

		second, err := service.ClaimNextJob(ctx, "worker-2", nil)
		require.NoError(t, err)
		assert.Equal(t, older.ID, second.ID)

		_, err = service.ClaimNextJob(ctx, "worker-1", nil)
		assert.ErrorIs(t, err, ErrNoJobsAvailable)
	})

	t.Run("filters by job type", func(t *testing.T) {
		service, _ := setupTestService(t)

		_, err := service.EnqueueJob(ctx, models.JobTypeNotificationEmail,
			models.JobPayload{"template": "course_completed"})
		require.NoError(t, err)
		caption, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 1})
		require.NoError(t, err)

		job, err := service.ClaimNextJob(ctx, "worker-1", []models.JobType{models.JobTypeCaptionGeneration})
		require.NoError(t, err)
		assert.Equal(t, caption.ID, job.ID)
	})

	t.Run("skips jobs scheduled for the future", func(t *testing.T) {
		service, _ := setupTestService(t)

		_, err := service.EnqueueJob(ctx, models.JobTypeNotificationEmail,
			models.JobPayload{"template": "event_reminder", "event_id": 1},
			WithScheduledAt(time.Now().Add(24*time.Hour)))
		require.NoError(t, err)

		_, err = service.ClaimNextJob(ctx, "worker-1", nil)
		assert.ErrorIs(t, err, ErrNoJobsAvailable)
	})

	t.Run("a deferred job does not block newer work", func(t *testing.T) {
		service, _ := setupTestService(t)

		_, err := service.EnqueueJob(ctx, models.JobTypeNotificationEmail,
			models.JobPayload{"template": "event_reminder", "event_id": 1},
			WithScheduledAt(time.Now().Add(24*time.Hour)))
		require.NoError(t, err)

		caption, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 3})
		require.NoError(t, err)

		job, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		assert.Equal(t, caption.ID, job.ID)

		_, err = service.ClaimNextJob(ctx, "worker-1", nil)
		assert.ErrorIs(t, err, ErrNoJobsAvailable, "the reminder stays queued until it is due")
	})

	t.Run("claims a scheduled job once it is due", func(t *testing.T) {
		service, _ := setupTestService(t)

		reminder, err := service.EnqueueJob(ctx, models.JobTypeNotificationEmail,
			models.JobPayload{"template": "event_reminder", "event_id": 1},
			WithScheduledAt(time.Now().Add(-time.Minute)))
		require.NoError(t, err)

		job, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		assert.Equal(t, reminder.ID, job.ID)
	})
}

func TestRetryBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("a freshly failed job waits out its backoff", func(t *testing.T) {
		service, _ := setupTestService(t)

		_, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 1})
		require.NoError(t, err)

		claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		require.NoError(t, service.FailJob(ctx, claimed.ID, errors.New("provider timeout")))

		_, err = service.ClaimNextJob(ctx, "worker-1", nil)
		assert.ErrorIs(t, err, ErrNoJobsAvailable)
	})

	t.Run("becomes claimable after the backoff elapses", func(t *testing.T) {
		service, db := setupTestService(t)

		job, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 1})
		require.NoError(t, err)

		claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		require.NoError(t, service.FailJob(ctx, claimed.ID, errors.New("provider timeout")))

		// Backdate the failure past the doubled first-retry window.
		longAgo := time.Now().Add(-5 * time.Minute)
		require.NoError(t, db.Model(&models.Job{}).
			Where("id = ?", job.ID).
			Update("last_failed_at", longAgo).Error)

		retried, err := service.ClaimNextJob(ctx, "worker-2", nil)
		require.NoError(t, err)
		assert.Equal(t, job.ID, retried.ID)
		assert.Equal(t, 1, retried.RetryCount)
	})

	t.Run("a backing-off job does not block other work", func(t *testing.T) {
		service, _ := setupTestService(t)

		failing, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 1}, WithPriority(10))
		require.NoError(t, err)
		claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		require.Equal(t, failing.ID, claimed.ID)
		require.NoError(t, service.FailJob(ctx, claimed.ID, errors.New("provider timeout")))

		other, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
			models.JobPayload{"caption_id": 2})
		require.NoError(t, err)

		job, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		assert.Equal(t, other.ID, job.ID)
	})
}

func TestRetryCap(t *testing.T) {
	ctx := context.Background()
	service, db := setupTestService(t)

	job, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
		models.JobPayload{"caption_id": 1}, WithMaxRetries(2))
	require.NoError(t, err)

	for attempt := 0; attempt < 2; attempt++ {
		// Clear the backoff so the next claim can pick the job up again.
		require.NoError(t, db.Model(&models.Job{}).
			Where("id = ?", job.ID).
			Update("last_failed_at", nil).Error)

		claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
		require.NoError(t, err)
		require.Equal(t, job.ID, claimed.ID)
		require.NoError(t, service.FailJob(ctx, claimed.ID, errors.New("provider timeout")))
	}

	final := reloadJob(t, db, job.ID)
	assert.Equal(t, models.JobStatusPermanentlyFailed, final.Status)
	assert.Equal(t, 2, final.RetryCount)
	require.NotNil(t, final.CompletedAt)

	_, err = service.ClaimNextJob(ctx, "worker-1", nil)
	assert.ErrorIs(t, err, ErrNoJobsAvailable)
}

func TestUpdateProgress(t *testing.T) {
	ctx := context.Background()
	service, db := setupTestService(t)

	job, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
		models.JobPayload{"caption_id": 1})
	require.NoError(t, err)

	// Progress updates only apply to jobs a worker is processing.
	err = service.UpdateProgress(ctx, job.ID, 50)
	assert.ErrorIs(t, err, ErrJobNotFound)

	claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)
	require.NoError(t, service.UpdateProgress(ctx, claimed.ID, 150))

	assert.Equal(t, 100, reloadJob(t, db, job.ID).Progress)
}

func TestCompleteJob(t *testing.T) {
	ctx := context.Background()
	service, db := setupTestService(t)

	job, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
		models.JobPayload{"caption_id": 1})
	require.NoError(t, err)

	claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)
	require.NoError(t, service.CompleteJob(ctx, claimed.ID, models.JobResult{"track_id": "trk-1"}))

	final := reloadJob(t, db, job.ID)
	assert.Equal(t, models.JobStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	require.NotNil(t, final.CompletedAt)

	assert.ErrorIs(t, service.CompleteJob(ctx, 9999, nil), ErrJobNotFound)
}

func TestReleaseJob(t *testing.T) {
	ctx := context.Background()
	service, db := setupTestService(t)

	job, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
		models.JobPayload{"caption_id": 1})
	require.NoError(t, err)

	claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)
	require.NoError(t, service.ReleaseJob(ctx, claimed.ID))

	released := reloadJob(t, db, job.ID)
	assert.Equal(t, models.JobStatusPending, released.Status)
	assert.Empty(t, released.WorkerID)
	assert.Nil(t, released.StartedAt)
	assert.Zero(t, released.RetryCount)
}

func TestRetryFailedJob(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestService(t)

	job, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
		models.JobPayload{"caption_id": 1}, WithMaxRetries(1))
	require.NoError(t, err)

	// Pending jobs cannot be retried manually.
	_, err = service.RetryFailedJob(ctx, job.ID)
	assert.Error(t, err)

	claimed, err := service.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)
	require.NoError(t, service.FailJob(ctx, claimed.ID, errors.New("provider timeout")))

	retried, err := service.RetryFailedJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, retried.Status)
	assert.Zero(t, retried.RetryCount)
}

func TestCleanupOldJobs(t *testing.T) {
	ctx := context.Background()
	service, db := setupTestService(t)

	done, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
		models.JobPayload{"caption_id": 1})
	require.NoError(t, err)
	require.NoError(t, service.CompleteJob(ctx, done.ID, nil))

	pending, err := service.EnqueueJob(ctx, models.JobTypeCaptionGeneration,
		models.JobPayload{"caption_id": 2})
	require.NoError(t, err)

	ancient := time.Now().AddDate(0, 0, -60)
	require.NoError(t, db.Model(&models.Job{}).
		Where("id IN ?", []uint{done.ID, pending.ID}).
		Update("created_at", ancient).Error)

	deleted, err := service.CleanupOldJobs(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted, "only terminal jobs are cleaned up")

	_, err = service.GetJob(ctx, done.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = service.GetJob(ctx, pending.ID)
	assert.NoError(t, err)

	_, err = service.CleanupOldJobs(ctx, 0)
	assert.Error(t, err)
}
