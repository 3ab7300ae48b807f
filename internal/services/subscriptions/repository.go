package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/models"
	"gorm.io/gorm"
)

// Repository errors
var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) SubscriptionRepository {
	return &Repository{db: db}
}

func (r *Repository) CreatePlan(ctx context.Context, plan *models.Plan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("creating plan: %w", err)
	}
	return nil
}

func (r *Repository) GetPlanByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("getting plan: %w", err)
	}
	return &plan, nil
}

func (r *Repository) GetPlanByCode(ctx context.Context, code string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("getting plan by code: %w", err)
	}
	return &plan, nil
}

func (r *Repository) UpdatePlan(ctx context.Context, plan *models.Plan) error {
	result := r.db.WithContext(ctx).Save(plan)
	if result.Error != nil {
		return fmt.Errorf("updating plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *Repository) ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	var plans []models.Plan
	query := r.db.WithContext(ctx).Order("price_cents ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return plans, nil
}

func (r *Repository) CreateSubscription(ctx context.Context, subscription *models.Subscription) error {
	if err := r.db.WithContext(ctx).Create(subscription).Error; err != nil {
		return fmt.Errorf("creating subscription: %w", err)
	}
	return nil
}

func (r *Repository) GetSubscriptionByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.WithContext(ctx).Preload("Plan").First(&subscription, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("getting subscription: %w", err)
	}
	return &subscription, nil
}

// GetActiveSubscription returns the user's subscription that is not canceled,
// if any.
func (r *Repository) GetActiveSubscription(ctx context.Context, userID uint) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ? AND status IN ?", userID,
			[]models.SubscriptionStatus{models.SubscriptionPending, models.SubscriptionActive, models.SubscriptionPastDue}).
		Order("created_at DESC").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("getting active subscription: %w", err)
	}
	return &subscription, nil
}

func (r *Repository) UpdateSubscription(ctx context.Context, subscription *models.Subscription) error {
	result := r.db.WithContext(ctx).Save(subscription)
	if result.Error != nil {
		return fmt.Errorf("updating subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *Repository) ListSubscriptionsByUser(ctx context.Context, userID uint) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subscriptions, nil
}

func (r *Repository) HasPaymentEvent(ctx context.Context, providerEventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentEvent{}).
		Where("provider_event_id = ?", providerEventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking payment event: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) RecordPaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("recording payment event: %w", err)
	}
	return nil
}
