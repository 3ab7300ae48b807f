package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) EventRepository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, event *models.LiveEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("creating event: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*models.LiveEvent, error) {
	var event models.LiveEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return &event, nil
}

func (r *Repository) GetByStreamID(ctx context.Context, streamID string) (*models.LiveEvent, error) {
	var event models.LiveEvent
	err := r.db.WithContext(ctx).Where("stream_id = ?", streamID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("getting event by stream: %w", err)
	}
	return &event, nil
}

func (r *Repository) Update(ctx context.Context, event *models.LiveEvent) error {
	result := r.db.WithContext(ctx).Save(event)
	if result.Error != nil {
		return fmt.Errorf("updating event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, page, limit int, statuses []models.EventStatus) ([]models.LiveEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LiveEvent{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	var events []models.LiveEvent
	offset := (page - 1) * limit
	if err := query.Order("scheduled_at ASC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}
	return events, total, nil
}

func (r *Repository) CreateRegistration(ctx context.Context, registration *models.EventRegistration) error {
	if err := r.db.WithContext(ctx).Create(registration).Error; err != nil {
		return fmt.Errorf("creating registration: %w", err)
	}
	return nil
}

func (r *Repository) GetRegistration(ctx context.Context, eventID, userID uint) (*models.EventRegistration, error) {
	var registration models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("getting registration: %w", err)
	}
	return &registration, nil
}

func (r *Repository) DeleteRegistration(ctx context.Context, eventID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventRegistration{})
	if result.Error != nil {
		return fmt.Errorf("deleting registration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *Repository) ListRegistrations(ctx context.Context, eventID uint) ([]models.EventRegistration, error) {
	var registrations []models.EventRegistration
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&registrations).Error
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	return registrations, nil
}

func (r *Repository) CountRegistrations(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting registrations: %w", err)
	}
	return count, nil
}
