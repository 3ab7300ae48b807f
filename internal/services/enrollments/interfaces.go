package enrollments

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// EnrollmentRepository defines the data access interface for enrollments
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error

	GetEnrollmentByID(ctx context.Context, id uint) (*models.Enrollment, error)
	GetEnrollment(ctx context.Context, userID, courseID uint) (*models.Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userID uint) ([]models.Enrollment, error)
	CountEnrollments(ctx context.Context) (int64, error)

	CreateProgress(ctx context.Context, progress *models.LessonProgress) error
	GetProgress(ctx context.Context, enrollmentID, lessonID uint) (*models.LessonProgress, error)
	CountProgress(ctx context.Context, enrollmentID uint) (int64, error)
	ListProgress(ctx context.Context, enrollmentID uint) ([]models.LessonProgress, error)
}

// LessonCounter provides the lesson totals needed to compute progress
type LessonCounter interface {
	CountLessonsByCourse(ctx context.Context, courseID uint) (int64, error)
}

// EnrollmentService defines the business logic interface for enrollments
type EnrollmentService interface {
	// Enroll is idempotent per (user, course)
	Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error)
	Drop(ctx context.Context, userID, courseID uint) error

	GetEnrollment(ctx context.Context, userID, courseID uint) (*models.Enrollment, error)
	ListMine(ctx context.Context, userID uint) ([]EnrollmentWithProgress, error)

	// IsEnrolled reports whether the user has a non-dropped enrollment
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)

	// CompleteLesson records lesson completion; completing the last lesson
	// completes the enrollment and enqueues a completion notification.
	CompleteLesson(ctx context.Context, userID, lessonID uint) (*EnrollmentWithProgress, error)
}

// EnrollmentWithProgress pairs an enrollment with its computed progress
type EnrollmentWithProgress struct {
	Enrollment       models.Enrollment `json:"enrollment"`
	CompletedLessons int64             `json:"completed_lessons"`
	TotalLessons     int64             `json:"total_lessons"`
	ProgressPercent  float64           `json:"progress_percent"`
}
