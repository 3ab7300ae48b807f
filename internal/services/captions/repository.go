package captions

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// ErrCaptionNotFound indicates no caption row matched the query.
var ErrCaptionNotFound = errors.New("caption not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CaptionRepository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, caption *models.Caption) error {
	if err := r.db.WithContext(ctx).Create(caption).Error; err != nil {
		return fmt.Errorf("creating caption: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Caption, error) {
	var caption models.Caption
	if err := r.db.WithContext(ctx).First(&caption, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaptionNotFound
		}
		return nil, fmt.Errorf("getting caption: %w", err)
	}
	return &caption, nil
}

func (r *Repository) GetByAssetAndLanguage(ctx context.Context, assetID, language string) (*models.Caption, error) {
	var caption models.Caption
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND language = ?", assetID, language).
		First(&caption).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaptionNotFound
		}
		return nil, fmt.Errorf("getting caption by asset/language: %w", err)
	}
	return &caption, nil
}

func (r *Repository) Update(ctx context.Context, caption *models.Caption) error {
	result := r.db.WithContext(ctx).Save(caption)
	if result.Error != nil {
		return fmt.Errorf("updating caption: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCaptionNotFound
	}
	return nil
}

func (r *Repository) ListByLesson(ctx context.Context, lessonID uint) ([]models.Caption, error) {
	var captions []models.Caption
	err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("language ASC").
		Find(&captions).Error
	if err != nil {
		return nil, fmt.Errorf("listing captions by lesson: %w", err)
	}
	return captions, nil
}

func (r *Repository) ListByAsset(ctx context.Context, assetID string) ([]models.Caption, error) {
	var captions []models.Caption
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("language ASC").
		Find(&captions).Error
	if err != nil {
		return nil, fmt.Errorf("listing captions by asset: %w", err)
	}
	return captions, nil
}

func (r *Repository) HasWebhookEvent(ctx context.Context, providerEventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("provider_event_id = ?", providerEventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking webhook event: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) RecordWebhookEvent(ctx context.Context, event *models.WebhookEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("recording webhook event: %w", err)
	}
	return nil
}
