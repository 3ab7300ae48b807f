package captions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
)

// ErrCaptionFinished indicates the caption already completed successfully.
var ErrCaptionFinished = errors.New("caption already ready")

type Service struct {
	repository CaptionRepository
	jobService jobs.Service
}

func NewService(repository CaptionRepository, jobService jobs.Service) CaptionService {
	return &Service{repository: repository, jobService: jobService}
}

// RequestCaption ensures a row exists for the (asset, language) pair and
// enqueues a generation job for it. Re-requesting an errored caption resets
// it to pending; a ready caption is left alone.
func (s *Service) RequestCaption(ctx context.Context, lessonID uint, assetID, language string) (*models.Caption, error) {
	assetID = strings.TrimSpace(assetID)
	language = strings.ToLower(strings.TrimSpace(language))
	if assetID == "" || language == "" {
		return nil, fmt.Errorf("asset ID and language are required")
	}

	caption, err := s.repository.GetByAssetAndLanguage(ctx, assetID, language)
	switch {
	case err == nil:
		if caption.Status == models.CaptionReady {
			return nil, ErrCaptionFinished
		}
		if caption.Status == models.CaptionError {
			caption.Status = models.CaptionPending
			caption.Error = ""
			caption.CompletedAt = nil
			if err := s.repository.Update(ctx, caption); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, ErrCaptionNotFound):
		caption = &models.Caption{
			LessonID: lessonID,
			AssetID:  assetID,
			Language: language,
			Status:   models.CaptionPending,
			Source:   "translated",
		}
		if err := s.repository.Create(ctx, caption); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	payload := models.JobPayload{
		"caption_id": caption.ID,
		"lesson_id":  caption.LessonID,
		"asset_id":   caption.AssetID,
		"language":   caption.Language,
	}
	if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeCaptionGeneration, payload, "caption_id"); err != nil {
		return nil, fmt.Errorf("enqueueing caption job: %w", err)
	}

	log.Printf("[INFO] Caption requested: id=%d asset=%s lang=%s", caption.ID, assetID, language)
	return caption, nil
}

// RequestCaptionsForAsset fans out generation requests across the configured
// target languages. Individually ready captions are skipped.
func (s *Service) RequestCaptionsForAsset(ctx context.Context, lessonID uint, assetID string, languages []string) error {
	for _, language := range languages {
		if _, err := s.RequestCaption(ctx, lessonID, assetID, language); err != nil {
			if errors.Is(err, ErrCaptionFinished) {
				continue
			}
			return fmt.Errorf("requesting %s caption for asset %s: %w", language, assetID, err)
		}
	}
	return nil
}

func (s *Service) GetCaption(ctx context.Context, id uint) (*models.Caption, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *Service) ListByLesson(ctx context.Context, lessonID uint) ([]models.Caption, error) {
	return s.repository.ListByLesson(ctx, lessonID)
}

func (s *Service) MarkProcessing(ctx context.Context, id uint) (*models.Caption, error) {
	caption, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caption.Status == models.CaptionReady {
		return nil, ErrCaptionFinished
	}

	caption.Status = models.CaptionProcessing
	caption.Error = ""
	caption.CompletedAt = nil
	if err := s.repository.Update(ctx, caption); err != nil {
		return nil, err
	}
	return caption, nil
}

func (s *Service) MarkReady(ctx context.Context, id uint, trackID, storageKey, publicURL string) (*models.Caption, error) {
	caption, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	caption.Status = models.CaptionReady
	caption.TrackID = trackID
	caption.StorageKey = storageKey
	caption.PublicURL = publicURL
	caption.Error = ""
	caption.CompletedAt = &now
	if err := s.repository.Update(ctx, caption); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Caption %d ready: asset=%s lang=%s track=%s", caption.ID, caption.AssetID, caption.Language, trackID)
	return caption, nil
}

func (s *Service) MarkError(ctx context.Context, id uint, message string) (*models.Caption, error) {
	caption, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	caption.Status = models.CaptionError
	caption.Error = message
	caption.CompletedAt = &now
	if err := s.repository.Update(ctx, caption); err != nil {
		return nil, err
	}

	log.Printf("[WARN] Caption %d failed: asset=%s lang=%s: %s", caption.ID, caption.AssetID, caption.Language, message)
	return caption, nil
}

func (s *Service) IsEventProcessed(ctx context.Context, providerEventID string) (bool, error) {
	return s.repository.HasWebhookEvent(ctx, providerEventID)
}

func (s *Service) RecordEvent(ctx context.Context, providerEventID, eventType, assetID string) error {
	event := &models.WebhookEvent{
		ProviderEventID: providerEventID,
		Type:            eventType,
		AssetID:         assetID,
	}
	return s.repository.RecordWebhookEvent(ctx, event)
}
