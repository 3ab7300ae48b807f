package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/thereadylab/readylab-api/internal/models"
)

// Service errors
var (
	ErrAlreadySubscribed = errors.New("user already has a subscription")
	ErrPlanInactive      = errors.New("plan is not active")
	ErrNotSubscriber     = errors.New("subscription belongs to another user")
)

// Payment event types accepted from the provider.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

type Service struct {
	repository SubscriptionRepository
}

func NewService(repository SubscriptionRepository) SubscriptionService {
	return &Service{repository: repository}
}

func (s *Service) CreatePlan(ctx context.Context, code, name string, priceCents int, interval string) (*models.Plan, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("plan code and name are required")
	}
	if priceCents < 0 {
		return nil, fmt.Errorf("plan price cannot be negative")
	}
	if interval != "month" && interval != "year" {
		return nil, fmt.Errorf("plan interval must be month or year")
	}

	plan := &models.Plan{
		Code:       code,
		Name:       strings.TrimSpace(name),
		PriceCents: priceCents,
		Interval:   interval,
		Active:     true,
	}
	if err := s.repository.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) DeactivatePlan(ctx context.Context, id uint) (*models.Plan, error) {
	plan, err := s.repository.GetPlanByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return plan, nil
	}
	plan.Active = false
	if err := s.repository.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	return s.repository.ListPlans(ctx, activeOnly)
}

// Subscribe creates a pending subscription. Activation happens when the
// provider reports a successful payment.
func (s *Service) Subscribe(ctx context.Context, userID, planID uint) (*models.Subscription, error) {
	plan, err := s.repository.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanInactive
	}

	if _, err := s.repository.GetActiveSubscription(ctx, userID); err == nil {
		return nil, ErrAlreadySubscribed
	} else if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, err
	}

	subscription := &models.Subscription{
		UserID: userID,
		PlanID: planID,
		Status: models.SubscriptionPending,
	}
	if err := s.repository.CreateSubscription(ctx, subscription); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Subscription created: id=%d user=%d plan=%s", subscription.ID, userID, plan.Code)
	return s.repository.GetSubscriptionByID(ctx, subscription.ID)
}

// CancelAtPeriodEnd flags the subscription to lapse at the end of the current
// billing period rather than terminating access immediately.
func (s *Service) CancelAtPeriodEnd(ctx context.Context, subscriptionID, userID uint) (*models.Subscription, error) {
	subscription, err := s.repository.GetSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if subscription.UserID != userID {
		return nil, ErrNotSubscriber
	}
	if subscription.Status == models.SubscriptionCanceled {
		return subscription, nil
	}

	// A subscription that never activated has no period to run out.
	if subscription.Status == models.SubscriptionPending {
		subscription.Status = models.SubscriptionCanceled
	} else {
		subscription.CancelAtPeriodEnd = true
	}

	if err := s.repository.UpdateSubscription(ctx, subscription); err != nil {
		return nil, err
	}
	log.Printf("[INFO] Subscription %d canceled (at_period_end=%t)", subscription.ID, subscription.CancelAtPeriodEnd)
	return subscription, nil
}

func (s *Service) GetSubscription(ctx context.Context, id uint) (*models.Subscription, error) {
	return s.repository.GetSubscriptionByID(ctx, id)
}

func (s *Service) ListMySubscriptions(ctx context.Context, userID uint) ([]models.Subscription, error) {
	return s.repository.ListSubscriptionsByUser(ctx, userID)
}

// ProcessPaymentEvent applies a provider event to the referenced subscription.
// Duplicate provider event IDs are acknowledged without reprocessing.
func (s *Service) ProcessPaymentEvent(ctx context.Context, input PaymentEventInput) error {
	if input.ProviderEventID == "" {
		return fmt.Errorf("provider event ID is required")
	}

	seen, err := s.repository.HasPaymentEvent(ctx, input.ProviderEventID)
	if err != nil {
		return err
	}
	if seen {
		log.Printf("[DEBUG] Skipping duplicate payment event %s", input.ProviderEventID)
		return nil
	}

	subscription, err := s.repository.GetSubscriptionByID(ctx, input.SubscriptionID)
	if err != nil {
		return err
	}

	switch input.Type {
	case EventPaymentSucceeded:
		s.applyPaymentSucceeded(subscription, input.PeriodEnd)
	case EventPaymentFailed:
		s.applyPaymentFailed(subscription)
	default:
		return fmt.Errorf("unsupported payment event type: %s", input.Type)
	}

	if err := s.repository.UpdateSubscription(ctx, subscription); err != nil {
		return err
	}

	event := &models.PaymentEvent{
		ProviderEventID: input.ProviderEventID,
		Type:            input.Type,
		SubscriptionID:  subscription.ID,
	}
	if err := s.repository.RecordPaymentEvent(ctx, event); err != nil {
		return err
	}

	log.Printf("[INFO] Payment event %s applied: subscription=%d status=%s",
		input.Type, subscription.ID, subscription.Status)
	return nil
}

func (s *Service) applyPaymentSucceeded(subscription *models.Subscription, periodEnd int64) {
	subscription.Status = models.SubscriptionActive
	if periodEnd > 0 {
		end := time.Unix(periodEnd, 0).UTC()
		subscription.CurrentPeriodEnd = &end
	} else {
		end := nextPeriodEnd(subscription)
		subscription.CurrentPeriodEnd = &end
	}
}

func (s *Service) applyPaymentFailed(subscription *models.Subscription) {
	// Failed payments only degrade subscriptions that were ever active.
	if subscription.Status == models.SubscriptionActive {
		subscription.Status = models.SubscriptionPastDue
	}
}

func nextPeriodEnd(subscription *models.Subscription) time.Time {
	base := time.Now().UTC()
	if subscription.CurrentPeriodEnd != nil && subscription.CurrentPeriodEnd.After(base) {
		base = *subscription.CurrentPeriodEnd
	}
	if subscription.Plan.Interval == "year" {
		return base.AddDate(1, 0, 0)
	}
	return base.AddDate(0, 1, 0)
}
