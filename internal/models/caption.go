package models

import (
	"time"

	"gorm.io/gorm"
)

// CaptionStatus represents the pipeline state of a caption per video/language pair
type CaptionStatus string

const (
	CaptionPending    CaptionStatus = "pending"
	CaptionProcessing CaptionStatus = "processing"
	CaptionReady      CaptionStatus = "ready"
	CaptionError      CaptionStatus = "error"
)

// Caption represents one subtitle file for a lesson's video asset in one language.
// There is at most one row per (asset, language) pair.
type Caption struct {
	gorm.Model
	LessonID uint          `json:"lesson_id" gorm:"not null;index"`
	AssetID  string        `json:"asset_id" gorm:"not null;index:idx_caption_asset_lang,unique"`
	Language string        `json:"language" gorm:"not null;index:idx_caption_asset_lang,unique"`
	Status   CaptionStatus `json:"status" gorm:"default:'pending';index"`

	// Source tells whether the file came from the provider's auto transcription
	// or from a translation of it.
	Source string `json:"source"` // "auto" or "translated"

	// Provider track this caption is attached to, once attached
	TrackID string `json:"track_id"`

	// Object storage location of the VTT file, once uploaded
	StorageKey string `json:"storage_key"`
	PublicURL  string `json:"public_url"`

	Error       string     `json:"error,omitempty"`
	CompletedAt *time.Time `json:"completed_at"`
}

// IsTerminal reports whether the caption pipeline finished for this row
func (c *Caption) IsTerminal() bool {
	return c.Status == CaptionReady || c.Status == CaptionError
}

// WebhookEvent records a processed video-provider webhook event for idempotency
type WebhookEvent struct {
	gorm.Model
	ProviderEventID string `json:"provider_event_id" gorm:"uniqueIndex;not null"`
	Type            string `json:"type" gorm:"not null;index"`
	AssetID         string `json:"asset_id" gorm:"index"`
}

// TableName specifies the table name for WebhookEvent
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
