package lessons

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrLessonNotFound = errors.New("lesson not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) LessonRepository {
	return &Repository{db: db}
}

// CreateLesson creates a new lesson
func (r *Repository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("creating lesson: %w", err)
	}
	return nil
}

// UpdateLesson updates an existing lesson
func (r *Repository) UpdateLesson(ctx context.Context, lesson *models.Lesson) error {
	result := r.db.WithContext(ctx).Save(lesson)
	if result.Error != nil {
		return fmt.Errorf("updating lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// DeleteLesson soft-deletes a lesson
func (r *Repository) DeleteLesson(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Lesson{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// GetLessonByID retrieves a lesson by ID
func (r *Repository) GetLessonByID(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("getting lesson: %w", err)
	}
	return &lesson, nil
}

// GetLessonByAssetID retrieves a lesson by its video provider asset ID
func (r *Repository) GetLessonByAssetID(ctx context.Context, assetID string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("getting lesson by asset id: %w", err)
	}
	return &lesson, nil
}

// ListLessonsByCourse returns the ordered lessons of a course
func (r *Repository) ListLessonsByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("listing lessons: %w", err)
	}
	return lessons, nil
}

// CountLessonsByCourse returns the number of lessons in a course
func (r *Repository) CountLessonsByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting lessons: %w", err)
	}
	return count, nil
}

// MaxPosition returns the highest lesson position in a course (0 if empty)
func (r *Repository) MaxPosition(ctx context.Context, courseID uint) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Select("MAX(position)").
		Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("getting max lesson position: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// UpdatePositions rewrites lesson positions in a single transaction
func (r *Repository) UpdatePositions(ctx context.Context, courseID uint, orderedIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.Model(&models.Lesson{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("position", i+1)
			if result.Error != nil {
				return fmt.Errorf("updating lesson %d position: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("lesson %d not found in course %d", id, courseID)
			}
		}
		return nil
	})
}

// MarkAssetReady transitions the lesson whose asset finished processing
func (r *Repository) MarkAssetReady(ctx context.Context, assetID, playbackID string, duration float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("asset_id = ?", assetID).
		Updates(map[string]interface{}{
			"asset_status":     models.AssetStatusReady,
			"playback_id":      playbackID,
			"duration_seconds": duration,
		})

	if result.Error != nil {
		return fmt.Errorf("marking asset ready: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// MarkAssetErrored transitions the lesson whose asset failed processing
func (r *Repository) MarkAssetErrored(ctx context.Context, assetID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("asset_id = ?", assetID).
		Update("asset_status", models.AssetStatusErrored)

	if result.Error != nil {
		return fmt.Errorf("marking asset errored: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}
