package courses

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrSlugTaken      = errors.New("course slug already in use")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CourseRepository {
	return &Repository{db: db}
}

// CreateCourse creates a new course
func (r *Repository) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugTaken
		}
		return fmt.Errorf("creating course: %w", err)
	}
	return nil
}

// UpdateCourse updates an existing course
func (r *Repository) UpdateCourse(ctx context.Context, course *models.Course) error {
	result := r.db.WithContext(ctx).Save(course)
	if result.Error != nil {
		return fmt.Errorf("updating course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// DeleteCourse soft-deletes a course
func (r *Repository) DeleteCourse(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// GetCourseByID retrieves a course with its ordered lessons
func (r *Repository) GetCourseByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("getting course: %w", err)
	}
	return &course, nil
}

// GetCourseBySlug retrieves a course by its slug
func (r *Repository) GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("slug = ?", slug).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("getting course by slug: %w", err)
	}
	return &course, nil
}

// ListCourses returns a paginated, filtered list of courses
func (r *Repository) ListCourses(ctx context.Context, opts ListOptions) ([]models.Course, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	query := r.db.WithContext(ctx).Model(&models.Course{})

	if opts.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.InstructorID != 0 {
		query = query.Where("instructor_id = ?", opts.InstructorID)
	}
	if opts.InstitutionID != 0 {
		query = query.Where("institution_id = ?", opts.InstitutionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting courses: %w", err)
	}

	var courses []models.Course
	if err := query.
		Order("created_at DESC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("listing courses: %w", err)
	}

	return courses, total, nil
}

// CountCourses returns the total number of courses
func (r *Repository) CountCourses(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return total, nil
}
