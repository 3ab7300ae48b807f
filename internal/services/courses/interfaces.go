package courses

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// CourseRepository defines the data access interface for courses
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, id uint) error

	GetCourseByID(ctx context.Context, id uint) (*models.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error)

	ListCourses(ctx context.Context, opts ListOptions) ([]models.Course, int64, error)
	CountCourses(ctx context.Context) (int64, error)
}

// CourseService defines the business logic interface for course operations
type CourseService interface {
	CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uint, update CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetBySlug(ctx context.Context, slug string) (*models.Course, error)

	ListCourses(ctx context.Context, opts ListOptions) ([]models.Course, int64, error)

	SetPublished(ctx context.Context, id uint, published bool) (*models.Course, error)
}

// ListOptions controls pagination and filtering for course listings
type ListOptions struct {
	Page          int
	Limit         int
	Search        string
	Category      string
	InstructorID  uint
	InstitutionID uint
	PublishedOnly bool
}

// CourseUpdate holds the mutable course fields; nil pointers are left unchanged
type CourseUpdate struct {
	Title       *string
	Description *string
	CoverURL    *string
	Level       *models.CourseLevel
	Category    *string
	PriceCents  *int
}
