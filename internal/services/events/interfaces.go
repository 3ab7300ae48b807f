package events

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// EventUpdate carries optional field changes for a live event.
type EventUpdate struct {
	Title       *string
	Description *string
	ScheduledAt *int64 // unix seconds
}

// ProvisionedStream is the provider-side live stream backing an event.
type ProvisionedStream struct {
	StreamID   string
	StreamKey  string
	PlaybackID string
}

// StreamProvisioner creates and tears down provider live streams.
type StreamProvisioner interface {
	CreateLiveStream(ctx context.Context) (*ProvisionedStream, error)
	DeleteLiveStream(ctx context.Context, streamID string) error
}

// EventRepository defines data access for live events and registrations.
type EventRepository interface {
	Create(ctx context.Context, event *models.LiveEvent) error
	GetByID(ctx context.Context, id uint) (*models.LiveEvent, error)
	GetByStreamID(ctx context.Context, streamID string) (*models.LiveEvent, error)
	Update(ctx context.Context, event *models.LiveEvent) error
	List(ctx context.Context, page, limit int, statuses []models.EventStatus) ([]models.LiveEvent, int64, error)

	CreateRegistration(ctx context.Context, registration *models.EventRegistration) error
	GetRegistration(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error)
	DeleteRegistration(ctx context.Context, eventID, userID uint) error
	ListRegistrations(ctx context.Context, eventID uint) ([]models.EventRegistration, error)
	CountRegistrations(ctx context.Context, eventID uint) (int64, error)
}

// EventService defines business logic for live events.
type EventService interface {
	CreateEvent(ctx context.Context, hostID uint, title, description string, courseID *uint, scheduledAt int64) (*models.LiveEvent, error)
	GetEvent(ctx context.Context, id uint) (*models.LiveEvent, error)
	UpdateEvent(ctx context.Context, id, hostID uint, update EventUpdate) (*models.LiveEvent, error)
	CancelEvent(ctx context.Context, id, hostID uint) (*models.LiveEvent, error)
	ListEvents(ctx context.Context, page, limit int, upcoming bool) ([]models.LiveEvent, int64, error)

	Register(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error)
	Unregister(ctx context.Context, eventID, userID uint) error
	ListAttendees(ctx context.Context, eventID uint) ([]models.EventRegistration, error)

	// Webhook-driven transitions keyed by the provider stream ID.
	MarkStreamActive(ctx context.Context, streamID string) error
	MarkStreamIdle(ctx context.Context, streamID string) error
}
