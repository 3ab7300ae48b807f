package lessons

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/thereadylab/readylab-api/internal/models"
)

// playbackURLTemplate matches the provider's HLS delivery endpoint
const playbackURLTemplate = "https://stream.video.example.com/%s.m3u8"

type Service struct {
	repository LessonRepository
}

func NewService(repository LessonRepository) LessonService {
	return &Service{repository: repository}
}

// CreateLesson appends a lesson at the end of its course
func (s *Service) CreateLesson(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error) {
	if strings.TrimSpace(lesson.Title) == "" {
		return nil, fmt.Errorf("lesson title is required")
	}
	if lesson.CourseID == 0 {
		return nil, fmt.Errorf("lesson course is required")
	}

	max, err := s.repository.MaxPosition(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	lesson.Position = max + 1

	if lesson.AssetID != "" {
		lesson.AssetStatus = models.AssetStatusPreparing
	}

	if err := s.repository.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Created lesson %d in course %d at position %d", lesson.ID, lesson.CourseID, lesson.Position)

	return lesson, nil
}

// UpdateLesson applies a partial update to a lesson
func (s *Service) UpdateLesson(ctx context.Context, id uint, update LessonUpdate) (*models.Lesson, error) {
	lesson, err := s.repository.GetLessonByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		lesson.Title = *update.Title
	}
	if update.Description != nil {
		lesson.Description = *update.Description
	}
	if update.FreePreview != nil {
		lesson.FreePreview = *update.FreePreview
	}
	if update.AssetID != nil && *update.AssetID != lesson.AssetID {
		// Re-pointing the lesson at a new upload resets playback state
		lesson.AssetID = *update.AssetID
		lesson.PlaybackID = ""
		lesson.AssetStatus = models.AssetStatusPreparing
		lesson.DurationSeconds = 0
	}

	if err := s.repository.UpdateLesson(ctx, lesson); err != nil {
		return nil, err
	}

	return lesson, nil
}

// DeleteLesson soft-deletes a lesson
func (s *Service) DeleteLesson(ctx context.Context, id uint) error {
	return s.repository.DeleteLesson(ctx, id)
}

// GetByID retrieves a lesson by ID
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	return s.repository.GetLessonByID(ctx, id)
}

// GetByAssetID retrieves a lesson by provider asset ID
func (s *Service) GetByAssetID(ctx context.Context, assetID string) (*models.Lesson, error) {
	return s.repository.GetLessonByAssetID(ctx, assetID)
}

// ListByCourse returns the ordered lessons of a course
func (s *Service) ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	return s.repository.ListLessonsByCourse(ctx, courseID)
}

// Reorder rewrites lesson positions; orderedIDs must cover every lesson in the course
func (s *Service) Reorder(ctx context.Context, courseID uint, orderedIDs []uint) error {
	count, err := s.repository.CountLessonsByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if int64(len(orderedIDs)) != count {
		return fmt.Errorf("reorder requires all %d lessons of course %d, got %d", count, courseID, len(orderedIDs))
	}

	return s.repository.UpdatePositions(ctx, courseID, orderedIDs)
}

// PlaybackURL builds the streaming URL for a ready asset
func (s *Service) PlaybackURL(lesson *models.Lesson) (string, error) {
	if lesson.AssetStatus != models.AssetStatusReady || lesson.PlaybackID == "" {
		return "", fmt.Errorf("lesson %d video is not ready", lesson.ID)
	}
	return fmt.Sprintf(playbackURLTemplate, lesson.PlaybackID), nil
}

// MarkAssetReady transitions the lesson whose asset finished processing
func (s *Service) MarkAssetReady(ctx context.Context, assetID, playbackID string, duration float64) (*models.Lesson, error) {
	if err := s.repository.MarkAssetReady(ctx, assetID, playbackID, duration); err != nil {
		return nil, err
	}

	lesson, err := s.repository.GetLessonByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] Asset %s ready for lesson %d (playback %s)", assetID, lesson.ID, playbackID)

	return lesson, nil
}

// MarkAssetErrored transitions the lesson whose asset failed processing
func (s *Service) MarkAssetErrored(ctx context.Context, assetID string) error {
	if err := s.repository.MarkAssetErrored(ctx, assetID); err != nil {
		return err
	}
	log.Printf("[WARN] Asset %s errored at provider", assetID)
	return nil
}
