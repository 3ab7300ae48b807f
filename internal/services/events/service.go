package events

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

// Service errors
var (
	ErrNotHost           = errors.New("user is not the event host")
	ErrEventNotEditable  = errors.New("event can no longer be modified")
	ErrAlreadyRegistered = errors.New("already registered for event")
	ErrNotRegistered     = errors.New("not registered for event")
)

// Reminders go out one hour before the scheduled start.
const reminderLead = time.Hour

type Service struct {
	repository  EventRepository
	provisioner StreamProvisioner
	jobService  jobs.Service
}

// NewService creates the event service. provisioner may be nil, in which case
// events are created without a backing live stream. jobService may be nil;
// reminder emails are then skipped.
func NewService(repository EventRepository, provisioner StreamProvisioner, jobService jobs.Service) EventService {
	return &Service{
		repository:  repository,
		provisioner: provisioner,
		jobService:  jobService,
	}
}

// CreateEvent schedules a live event, provisions a provider stream for it and
// queues a reminder email job.
func (s *Service) CreateEvent(ctx context.Context, hostID uint, title, description string, courseID *uint, scheduledAt int64) (*models.LiveEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	startsAt := time.Unix(scheduledAt, 0).UTC()
	if startsAt.Before(time.Now().UTC()) {
		return nil, fmt.Errorf("event must be scheduled in the future")
	}

	event := &models.LiveEvent{
		Title:       title,
		Description: description,
		HostID:      hostID,
		CourseID:    courseID,
		Status:      models.EventScheduled,
		ScheduledAt: startsAt,
	}

	if s.provisioner != nil {
		stream, err := s.provisioner.CreateLiveStream(ctx)
		if err != nil {
			return nil, fmt.Errorf("provisioning live stream: %w", err)
		}
		event.StreamID = stream.StreamID
		event.StreamKey = stream.StreamKey
		event.PlaybackID = stream.PlaybackID
	}

	if err := s.repository.Create(ctx, event); err != nil {
		return nil, err
	}

	s.enqueueReminder(ctx, event)
	log.Printf("[INFO] Live event created: id=%d host=%d scheduled=%s", event.ID, hostID, startsAt.Format(time.RFC3339))
	return event, nil
}

func (s *Service) enqueueReminder(ctx context.Context, event *models.LiveEvent) {
	if s.jobService == nil {
		return
	}
	sendAt := event.ScheduledAt.Add(-reminderLead)
	payload := models.JobPayload{
		"template": "event_reminder",
		"event_id": event.ID,
	}
	if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeNotificationEmail, payload, "event_id",
		jobs.WithScheduledAt(sendAt)); err != nil {
		log.Printf("[WARN] Failed to enqueue reminder for event %d: %v", event.ID, err)
	}
}

func (s *Service) GetEvent(ctx context.Context, id uint) (*models.LiveEvent, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *Service) UpdateEvent(ctx context.Context, id, hostID uint, update EventUpdate) (*models.LiveEvent, error) {
	event, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrNotHost
	}
	if event.Status != models.EventScheduled {
		return nil, ErrEventNotEditable
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, fmt.Errorf("event title is required")
		}
		event.Title = title
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.ScheduledAt != nil {
		startsAt := time.Unix(*update.ScheduledAt, 0).UTC()
		if startsAt.Before(time.Now().UTC()) {
			return nil, fmt.Errorf("event must be scheduled in the future")
		}
		event.ScheduledAt = startsAt
	}

	if err := s.repository.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// CancelEvent cancels a scheduled event and tears down its provider stream.
func (s *Service) CancelEvent(ctx context.Context, id, hostID uint) (*models.LiveEvent, error) {
	event, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrNotHost
	}
	if event.Status != models.EventScheduled {
		return nil, ErrEventNotEditable
	}

	event.Status = models.EventCanceled
	if err := s.repository.Update(ctx, event); err != nil {
		return nil, err
	}

	if s.provisioner != nil && event.StreamID != "" {
		if err := s.provisioner.DeleteLiveStream(ctx, event.StreamID); err != nil {
			log.Printf("[WARN] Failed to delete live stream %s for canceled event %d: %v", event.StreamID, event.ID, err)
		}
	}

	log.Printf("[INFO] Live event %d canceled", event.ID)
	return event, nil
}

func (s *Service) ListEvents(ctx context.Context, page, limit int, upcoming bool) ([]models.LiveEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var statuses []models.EventStatus
	if upcoming {
		statuses = []models.EventStatus{models.EventScheduled, models.EventLive}
	}
	return s.repository.List(ctx, page, limit, statuses)
}

func (s *Service) Register(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error) {
	event, err := s.repository.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == models.EventEnded || event.Status == models.EventCanceled {
		return nil, ErrEventNotEditable
	}

	if _, err := s.repository.GetRegistration(ctx, eventID, userID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, ErrRegistrationNotFound) {
		return nil, err
	}

	registration := &models.EventRegistration{EventID: eventID, UserID: userID}
	if err := s.repository.CreateRegistration(ctx, registration); err != nil {
		return nil, err
	}
	return registration, nil
}

func (s *Service) Unregister(ctx context.Context, eventID, userID uint) error {
	if err := s.repository.DeleteRegistration(ctx, eventID, userID); err != nil {
		if errors.Is(err, ErrRegistrationNotFound) {
			return ErrNotRegistered
		}
		return err
	}
	return nil
}

func (s *Service) ListAttendees(ctx context.Context, eventID uint) ([]models.EventRegistration, error) {
	if _, err := s.repository.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repository.ListRegistrations(ctx, eventID)
}

// MarkStreamActive moves the event to live when the provider reports the
// stream came up. Unknown streams are ignored.
func (s *Service) MarkStreamActive(ctx context.Context, streamID string) error {
	event, err := s.repository.GetByStreamID(ctx, streamID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Printf("[DEBUG] Ignoring active signal for unknown stream %s", streamID)
			return nil
		}
		return err
	}
	if event.Status == models.EventLive {
		return nil
	}
	if event.Status != models.EventScheduled {
		log.Printf("[WARN] Stream %s went active but event %d is %s", streamID, event.ID, event.Status)
		return nil
	}

	now := time.Now().UTC()
	event.Status = models.EventLive
	event.StartedAt = &now
	if err := s.repository.Update(ctx, event); err != nil {
		return err
	}
	log.Printf("[INFO] Event %d is live (stream %s)", event.ID, streamID)
	return nil
}

// MarkStreamIdle ends a live event when the provider reports the stream went
// idle. Idle signals for streams that never went live are ignored.
func (s *Service) MarkStreamIdle(ctx context.Context, streamID string) error {
	event, err := s.repository.GetByStreamID(ctx, streamID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Printf("[DEBUG] Ignoring idle signal for unknown stream %s", streamID)
			return nil
		}
		return err
	}
	if event.Status != models.EventLive {
		return nil
	}

	now := time.Now().UTC()
	event.Status = models.EventEnded
	event.EndedAt = &now
	if err := s.repository.Update(ctx, event); err != nil {
		return err
	}
	log.Printf("[INFO] Event %d ended (stream %s)", event.ID, streamID)
	return nil
}
