package models

import (
	"time"

	"gorm.io/gorm"
)

// EventStatus represents the lifecycle of a live event
type EventStatus string

const (
	EventScheduled EventStatus = "scheduled"
	EventLive      EventStatus = "live"
	EventEnded     EventStatus = "ended"
	EventCanceled  EventStatus = "canceled"
)

// LiveEvent represents a scheduled live stream session
type LiveEvent struct {
	gorm.Model
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description" gorm:"type:text"`
	HostID      uint        `json:"host_id" gorm:"not null;index"`
	CourseID    *uint       `json:"course_id" gorm:"index"`
	Status      EventStatus `json:"status" gorm:"default:'scheduled';index"`
	ScheduledAt time.Time   `json:"scheduled_at" gorm:"index"`
	StartedAt   *time.Time  `json:"started_at"`
	EndedAt     *time.Time  `json:"ended_at"`

	// Video provider live stream fields
	StreamID   string `json:"stream_id" gorm:"index"`
	StreamKey  string `json:"-"` // only surfaced to the host
	PlaybackID string `json:"playback_id"`

	Registrations []EventRegistration `json:"registrations,omitempty" gorm:"foreignKey:EventID"`
}

// TableName specifies the table name for LiveEvent
func (LiveEvent) TableName() string {
	return "live_events"
}

// EventRegistration represents an RSVP to a live event
type EventRegistration struct {
	gorm.Model
	EventID uint `json:"event_id" gorm:"not null;index:idx_event_registration,unique"`
	UserID  uint `json:"user_id" gorm:"not null;index:idx_event_registration,unique"`
}

// TableName specifies the table name for EventRegistration
func (EventRegistration) TableName() string {
	return "event_registrations"
}
