package lessons

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// LessonRepository defines the data access interface for lessons
type LessonRepository interface {
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	UpdateLesson(ctx context.Context, lesson *models.Lesson) error
	DeleteLesson(ctx context.Context, id uint) error

	GetLessonByID(ctx context.Context, id uint) (*models.Lesson, error)
	GetLessonByAssetID(ctx context.Context, assetID string) (*models.Lesson, error)

	ListLessonsByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error)
	CountLessonsByCourse(ctx context.Context, courseID uint) (int64, error)
	MaxPosition(ctx context.Context, courseID uint) (int, error)
	UpdatePositions(ctx context.Context, courseID uint, orderedIDs []uint) error

	MarkAssetReady(ctx context.Context, assetID, playbackID string, duration float64) error
	MarkAssetErrored(ctx context.Context, assetID string) error
}

// LessonService defines the business logic interface for lesson operations
type LessonService interface {
	CreateLesson(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, id uint, update LessonUpdate) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	GetByAssetID(ctx context.Context, assetID string) (*models.Lesson, error)

	ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error)
	Reorder(ctx context.Context, courseID uint, orderedIDs []uint) error

	// PlaybackURL builds the streaming URL for a ready asset
	PlaybackURL(lesson *models.Lesson) (string, error)

	// Webhook-driven asset transitions
	MarkAssetReady(ctx context.Context, assetID, playbackID string, duration float64) (*models.Lesson, error)
	MarkAssetErrored(ctx context.Context, assetID string) error
}

// LessonUpdate holds the mutable lesson fields; nil pointers are left unchanged
type LessonUpdate struct {
	Title       *string
	Description *string
	FreePreview *bool
	AssetID     *string
}
