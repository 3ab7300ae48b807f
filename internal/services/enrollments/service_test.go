package enrollments

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
	"github.com/thereadylab/readylab-api/internal/services/lessons"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(&models.Course{}, &models.Lesson{}, &models.Enrollment{}, &models.LessonProgress{}, &models.Job{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB, jobService jobs.Service) EnrollmentService {
	lessonRepo := lessons.NewRepository(db)
	return NewService(NewRepository(db), lessons.NewService(lessonRepo), lessonRepo, jobService)
}

func createTestCourse(t *testing.T, db *gorm.DB, lessonCount int) (*models.Course, []models.Lesson) {
	course := &models.Course{
		Title:        "Marine Biology",
		Slug:         "marine-biology",
		InstructorID: 1,
		Published:    true,
	}
	require.NoError(t, db.Create(course).Error)

	made := make([]models.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lesson := models.Lesson{
			CourseID: course.ID,
			Title:    "Lesson",
			Position: i + 1,
		}
		require.NoError(t, db.Create(&lesson).Error)
		made = append(made, lesson)
	}

	return course, made
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()

	t.Run("enrolling twice returns the same enrollment", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, nil)
		course, _ := createTestCourse(t, db, 1)

		first, err := service.Enroll(ctx, 42, course.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EnrollmentActive, first.Status)

		second, err := service.Enroll(ctx, 42, course.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.Model(&models.Enrollment{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("re-enrolling a dropped enrollment reactivates it", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, nil)
		course, _ := createTestCourse(t, db, 1)

		first, err := service.Enroll(ctx, 42, course.ID)
		require.NoError(t, err)
		require.NoError(t, service.Drop(ctx, 42, course.ID))

		enrolled, err := service.IsEnrolled(ctx, 42, course.ID)
		require.NoError(t, err)
		assert.False(t, enrolled)

		second, err := service.Enroll(ctx, 42, course.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, models.EnrollmentActive, second.Status)
	})

	t.Run("dropping without an enrollment fails", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, nil)

		err := service.Drop(ctx, 42, 999)
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestCompleteLesson(t *testing.T) {
	ctx := context.Background()

	t.Run("tracks progress and completes the course", func(t *testing.T) {
		db := setupTestDB(t)
		jobService := jobs.NewService(jobs.NewRepository(db))
		service := newTestService(t, db, jobService)
		course, courseLessons := createTestCourse(t, db, 2)

		_, err := service.Enroll(ctx, 42, course.ID)
		require.NoError(t, err)

		progress, err := service.CompleteLesson(ctx, 42, courseLessons[0].ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, progress.CompletedLessons)
		assert.EqualValues(t, 2, progress.TotalLessons)
		assert.InDelta(t, 50.0, progress.ProgressPercent, 0.001)
		assert.Equal(t, models.EnrollmentActive, progress.Enrollment.Status)

		progress, err = service.CompleteLesson(ctx, 42, courseLessons[1].ID)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, progress.ProgressPercent, 0.001)
		assert.Equal(t, models.EnrollmentCompleted, progress.Enrollment.Status)
		assert.NotNil(t, progress.Enrollment.CompletedAt)

		// Course completion enqueues a notification job
		var jobCount int64
		require.NoError(t, db.Model(&models.Job{}).
			Where("type = ?", models.JobTypeNotificationEmail).
			Count(&jobCount).Error)
		assert.EqualValues(t, 1, jobCount)
	})

	t.Run("completing the same lesson twice is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, nil)
		course, courseLessons := createTestCourse(t, db, 2)

		_, err := service.Enroll(ctx, 42, course.ID)
		require.NoError(t, err)

		_, err = service.CompleteLesson(ctx, 42, courseLessons[0].ID)
		require.NoError(t, err)

		progress, err := service.CompleteLesson(ctx, 42, courseLessons[0].ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, progress.CompletedLessons)
		assert.Equal(t, models.EnrollmentActive, progress.Enrollment.Status)
	})

	t.Run("requires an enrollment", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, nil)
		_, courseLessons := createTestCourse(t, db, 1)

		_, err := service.CompleteLesson(ctx, 42, courseLessons[0].ID)
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})

	t.Run("dropped enrollments cannot record progress", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, nil)
		course, courseLessons := createTestCourse(t, db, 1)

		_, err := service.Enroll(ctx, 42, course.ID)
		require.NoError(t, err)
		require.NoError(t, service.Drop(ctx, 42, course.ID))

		_, err = service.CompleteLesson(ctx, 42, courseLessons[0].ID)
		assert.Error(t, err)
	})

	t.Run("unknown lesson", func(t *testing.T) {
		db := setupTestDB(t)
		service := newTestService(t, db, nil)

		_, err := service.CompleteLesson(ctx, 42, 999)
		assert.ErrorIs(t, err, lessons.ErrLessonNotFound)
	})
}

func TestListMine(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	service := newTestService(t, db, nil)

	courseA, lessonsA := createTestCourse(t, db, 2)

	courseB := &models.Course{Title: "Astronomy", Slug: "astronomy", InstructorID: 1, Published: true}
	require.NoError(t, db.Create(courseB).Error)

	_, err := service.Enroll(ctx, 42, courseA.ID)
	require.NoError(t, err)
	_, err = service.Enroll(ctx, 42, courseB.ID)
	require.NoError(t, err)

	_, err = service.CompleteLesson(ctx, 42, lessonsA[0].ID)
	require.NoError(t, err)

	mine, err := service.ListMine(ctx, 42)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	byCourse := make(map[uint]EnrollmentWithProgress, len(mine))
	for _, e := range mine {
		byCourse[e.Enrollment.CourseID] = e
	}

	assert.InDelta(t, 50.0, byCourse[courseA.ID].ProgressPercent, 0.001)
	// Courses without lessons report zero progress, not a division error
	assert.InDelta(t, 0.0, byCourse[courseB.ID].ProgressPercent, 0.001)
}
