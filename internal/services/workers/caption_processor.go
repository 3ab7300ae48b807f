package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
	"github.com/thereadylab/readylab-api/internal/services/captions"
	"github.com/thereadylab/readylab-api/internal/services/jobs"
	"github.com/thereadylab/readylab-api/internal/services/storage"
	"github.com/thereadylab/readylab-api/internal/services/translate"
	"github.com/thereadylab/readylab-api/internal/services/videostream"
	"github.com/thereadylab/readylab-api/pkg/vtt"
)

// translateBatchSize bounds how many cues go to the translation service per
// request.
const translateBatchSize = 50

// CaptionProcessorConfig holds the tunables for the caption pipeline.
type CaptionProcessorConfig struct {
	SourceLanguage    string
	Bucket            string
	TrackPollInterval time.Duration
	TrackPollAttempts int
}

// CaptionProcessor processes caption generation jobs: it waits for the
// provider's auto-generated subtitle track, translates it and attaches the
// result back to the asset.
type CaptionProcessor struct {
	jobService      jobs.Service
	captionService  captions.CaptionService
	videoClient     *videostream.Client
	translateClient *translate.Client
	store           storage.Store
	cfg             CaptionProcessorConfig
}

// NewCaptionProcessor creates a new caption processor.
func NewCaptionProcessor(
	jobService jobs.Service,
	captionService captions.CaptionService,
	videoClient *videostream.Client,
	translateClient *translate.Client,
	store storage.Store,
	cfg CaptionProcessorConfig,
) *CaptionProcessor {
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "en"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "captions"
	}
	if cfg.TrackPollInterval <= 0 {
		cfg.TrackPollInterval = 10 * time.Second
	}
	if cfg.TrackPollAttempts <= 0 {
		cfg.TrackPollAttempts = 30
	}

	return &CaptionProcessor{
		jobService:      jobService,
		captionService:  captionService,
		videoClient:     videoClient,
		translateClient: translateClient,
		store:           store,
		cfg:             cfg,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *CaptionProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeCaptionGeneration
}

// ProcessJob runs the caption pipeline for one (asset, language) pair.
func (p *CaptionProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	log.Printf("[DEBUG] Processing caption generation job %d", job.ID)

	captionID, ok := job.GetPayloadInt("caption_id")
	if !ok {
		return models.NewSystemError("INVALID_PAYLOAD", "job payload missing caption_id", "", nil)
	}

	caption, err := p.captionService.GetCaption(ctx, uint(captionID))
	if err != nil {
		if errors.Is(err, captions.ErrCaptionNotFound) {
			return models.NewNotFoundError("CAPTION_NOT_FOUND",
				fmt.Sprintf("caption %d no longer exists", captionID), "", err)
		}
		return fmt.Errorf("loading caption %d: %w", captionID, err)
	}

	if _, err := p.captionService.MarkProcessing(ctx, caption.ID); err != nil {
		if errors.Is(err, captions.ErrCaptionFinished) {
			log.Printf("[DEBUG] Caption %d already ready, skipping job %d", caption.ID, job.ID)
			return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{"skipped": true})
		}
		return fmt.Errorf("marking caption %d processing: %w", caption.ID, err)
	}

	p.updateProgress(ctx, job.ID, 5)

	trackID, storageKey, publicURL, procErr := p.generate(ctx, job, caption)
	if procErr != nil {
		if _, markErr := p.captionService.MarkError(ctx, caption.ID, procErr.Error()); markErr != nil {
			log.Printf("[ERROR] Failed to record error on caption %d: %v", caption.ID, markErr)
		}
		return procErr
	}

	if _, err := p.captionService.MarkReady(ctx, caption.ID, trackID, storageKey, publicURL); err != nil {
		return fmt.Errorf("marking caption %d ready: %w", caption.ID, err)
	}

	result := models.JobResult{
		"caption_id":  caption.ID,
		"track_id":    trackID,
		"storage_key": storageKey,
		"public_url":  publicURL,
	}
	return p.jobService.CompleteJob(ctx, job.ID, result)
}

// generate runs the pipeline steps and returns the attached track ID and
// storage location of the translated file.
func (p *CaptionProcessor) generate(ctx context.Context, job *models.Job, caption *models.Caption) (trackID, storageKey, publicURL string, err error) {
	// Step 1: wait for the provider's auto-generated track.
	asset, autoTrack, err := p.awaitAutoTrack(ctx, caption.AssetID)
	if err != nil {
		return "", "", "", err
	}
	if len(asset.PlaybackIDs) == 0 {
		return "", "", "", models.NewProviderError("NO_PLAYBACK_ID",
			fmt.Sprintf("asset %s has no playback ID", caption.AssetID), "", nil)
	}
	playbackID := asset.PlaybackIDs[0].ID
	p.updateProgress(ctx, job.ID, 25)

	// Step 2: download the source WebVTT.
	sourceVTT, err := p.videoClient.DownloadTextTrack(ctx, playbackID, autoTrack.ID)
	if err != nil {
		return "", "", "", models.NewProviderError("TRACK_DOWNLOAD_FAILED",
			fmt.Sprintf("downloading auto track for asset %s", caption.AssetID), err.Error(), err)
	}
	p.updateProgress(ctx, job.ID, 40)

	// Step 3: parse and translate, preserving cue IDs and timestamps.
	file, err := vtt.Parse(string(sourceVTT))
	if err != nil {
		return "", "", "", models.NewProviderError("INVALID_VTT",
			fmt.Sprintf("parsing auto track for asset %s", caption.AssetID), err.Error(), err)
	}

	translated, err := p.translateCues(ctx, file.Texts(), caption.Language)
	if err != nil {
		return "", "", "", err
	}
	if err := file.ApplyTexts(translated); err != nil {
		return "", "", "", models.NewTranslateError("CUE_MISMATCH", "applying translated cues", err.Error(), err)
	}
	p.updateProgress(ctx, job.ID, 65)

	// Step 4: upload source and translated files.
	sourceKey := fmt.Sprintf("%s/%s.vtt", caption.AssetID, p.cfg.SourceLanguage)
	if _, err := p.store.Upload(ctx, p.cfg.Bucket, sourceKey, sourceVTT, "text/vtt"); err != nil {
		return "", "", "", models.NewStorageError("UPLOAD_FAILED",
			fmt.Sprintf("uploading source captions for asset %s", caption.AssetID), err.Error(), err)
	}

	storageKey = fmt.Sprintf("%s/%s.vtt", caption.AssetID, caption.Language)
	publicURL, err = p.store.Upload(ctx, p.cfg.Bucket, storageKey, []byte(file.Serialize()), "text/vtt")
	if err != nil {
		return "", "", "", models.NewStorageError("UPLOAD_FAILED",
			fmt.Sprintf("uploading %s captions for asset %s", caption.Language, caption.AssetID), err.Error(), err)
	}
	p.updateProgress(ctx, job.ID, 85)

	// Step 5: attach the translated track to the asset.
	track, err := p.videoClient.CreateTextTrack(ctx, caption.AssetID, videostream.TextTrackParams{
		URL:          publicURL,
		LanguageCode: caption.Language,
		Name:         caption.Language,
	})
	if err != nil {
		return "", "", "", models.NewProviderError("TRACK_ATTACH_FAILED",
			fmt.Sprintf("attaching %s track to asset %s", caption.Language, caption.AssetID), err.Error(), err)
	}
	p.updateProgress(ctx, job.ID, 95)

	return track.ID, storageKey, publicURL, nil
}

// awaitAutoTrack polls the provider until the asset's auto-generated subtitle
// track is ready, up to the configured attempt budget.
func (p *CaptionProcessor) awaitAutoTrack(ctx context.Context, assetID string) (*videostream.Asset, *videostream.Track, error) {
	for attempt := 1; attempt <= p.cfg.TrackPollAttempts; attempt++ {
		asset, err := p.videoClient.GetAsset(ctx, assetID)
		if err != nil {
			if errors.Is(err, videostream.ErrAssetNotFound) {
				return nil, nil, models.NewNotFoundError("ASSET_NOT_FOUND",
					fmt.Sprintf("asset %s not found at provider", assetID), "", err)
			}
			return nil, nil, models.NewProviderError("ASSET_FETCH_FAILED",
				fmt.Sprintf("fetching asset %s", assetID), err.Error(), err)
		}

		track, err := videostream.FindAutoTextTrack(asset)
		if err == nil && track.Status == "ready" {
			return asset, track, nil
		}

		log.Printf("[DEBUG] Auto track for asset %s not ready (attempt %d/%d)", assetID, attempt, p.cfg.TrackPollAttempts)

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(p.cfg.TrackPollInterval):
		}
	}

	return nil, nil, models.NewProviderError("AUTO_TRACK_TIMEOUT",
		fmt.Sprintf("auto track for asset %s not ready after %d attempts", assetID, p.cfg.TrackPollAttempts), "", nil)
}

// translateCues translates cue texts in batches, keeping order.
func (p *CaptionProcessor) translateCues(ctx context.Context, texts []string, target string) ([]string, error) {
	translated := make([]string, 0, len(texts))
	for start := 0; start < len(texts); start += translateBatchSize {
		end := start + translateBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := p.translateClient.TranslateBatch(ctx, texts[start:end], p.cfg.SourceLanguage, target)
		if err != nil {
			if errors.Is(err, translate.ErrUnsupportedLanguage) {
				return nil, models.NewTranslateError("UNSUPPORTED_LANGUAGE",
					fmt.Sprintf("language pair %s->%s not supported", p.cfg.SourceLanguage, target), "", err)
			}
			return nil, models.NewTranslateError("TRANSLATION_FAILED",
				fmt.Sprintf("translating cues %d-%d to %s", start, end, target), err.Error(), err)
		}
		translated = append(translated, batch...)
	}
	return translated, nil
}

func (p *CaptionProcessor) updateProgress(ctx context.Context, jobID uint, progress int) {
	if err := p.jobService.UpdateProgress(ctx, jobID, progress); err != nil {
		log.Printf("[WARN] Failed to update job %d progress: %v", jobID, err)
	}
}
