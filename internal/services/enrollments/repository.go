package enrollments

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrProgressNotFound   = errors.New("lesson progress not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) EnrollmentRepository {
	return &Repository{db: db}
}

// CreateEnrollment creates a new enrollment
func (r *Repository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return fmt.Errorf("creating enrollment: %w", err)
	}
	return nil
}

// UpdateEnrollment updates an existing enrollment
func (r *Repository) UpdateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	result := r.db.WithContext(ctx).Save(enrollment)
	if result.Error != nil {
		return fmt.Errorf("updating enrollment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// GetEnrollmentByID retrieves an enrollment by ID
func (r *Repository) GetEnrollmentByID(ctx context.Context, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).Preload("Course").First(&enrollment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("getting enrollment: %w", err)
	}
	return &enrollment, nil
}

// GetEnrollment retrieves the enrollment of a user in a course
func (r *Repository) GetEnrollment(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("getting enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListEnrollmentsByUser returns all enrollments of a user
func (r *Repository) ListEnrollmentsByUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("listing enrollments: %w", err)
	}
	return enrollments, nil
}

// CountEnrollments returns the total number of enrollments
func (r *Repository) CountEnrollments(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("counting enrollments: %w", err)
	}
	return total, nil
}

// CreateProgress records a completed lesson
func (r *Repository) CreateProgress(ctx context.Context, progress *models.LessonProgress) error {
	if err := r.db.WithContext(ctx).Create(progress).Error; err != nil {
		return fmt.Errorf("creating lesson progress: %w", err)
	}
	return nil
}

// GetProgress retrieves the progress row for a lesson within an enrollment
func (r *Repository) GetProgress(ctx context.Context, enrollmentID, lessonID uint) (*models.LessonProgress, error) {
	var progress models.LessonProgress
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("getting lesson progress: %w", err)
	}
	return &progress, nil
}

// CountProgress returns the number of completed lessons for an enrollment
func (r *Repository) CountProgress(ctx context.Context, enrollmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LessonProgress{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting lesson progress: %w", err)
	}
	return count, nil
}

// ListProgress returns all progress rows for an enrollment
func (r *Repository) ListProgress(ctx context.Context, enrollmentID uint) ([]models.LessonProgress, error) {
	var progress []models.LessonProgress
	if err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("completed_at ASC").
		Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("listing lesson progress: %w", err)
	}
	return progress, nil
}
