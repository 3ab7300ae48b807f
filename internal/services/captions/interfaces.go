package captions

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// CaptionRepository defines data access for caption rows and processed video
// webhook events.
type CaptionRepository interface {
	Create(ctx context.Context, caption *models.Caption) error
	GetByID(ctx context.Context, id uint) (*models.Caption, error)
	GetByAssetAndLanguage(ctx context.Context, assetID, language string) (*models.Caption, error)
	Update(ctx context.Context, caption *models.Caption) error
	ListByLesson(ctx context.Context, lessonID uint) ([]models.Caption, error)
	ListByAsset(ctx context.Context, assetID string) ([]models.Caption, error)

	HasWebhookEvent(ctx context.Context, providerEventID string) (bool, error)
	RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) error
}

// CaptionService drives caption rows through their pipeline states and
// enqueues the jobs that the caption worker consumes.
type CaptionService interface {
	// RequestCaption creates (or reuses) the row for an (asset, language)
	// pair and enqueues a unique generation job for it.
	RequestCaption(ctx context.Context, lessonID uint, assetID, language string) (*models.Caption, error)

	// RequestCaptionsForAsset enqueues generation for every target language.
	RequestCaptionsForAsset(ctx context.Context, lessonID uint, assetID string, languages []string) error

	GetCaption(ctx context.Context, id uint) (*models.Caption, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]models.Caption, error)

	// Pipeline transitions, called by the caption worker.
	MarkProcessing(ctx context.Context, id uint) (*models.Caption, error)
	MarkReady(ctx context.Context, id uint, trackID, storageKey, publicURL string) (*models.Caption, error)
	MarkError(ctx context.Context, id uint, message string) (*models.Caption, error)

	// Webhook idempotency bookkeeping.
	IsEventProcessed(ctx context.Context, providerEventID string) (bool, error)
	RecordEvent(ctx context.Context, providerEventID, eventType, assetID string) error
}
