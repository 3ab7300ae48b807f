package subscriptions

import (
	"context"

	"github.com/thereadylab/readylab-api/internal/models"
)

// PaymentEventInput is a parsed payment-provider webhook event.
type PaymentEventInput struct {
	ProviderEventID string
	Type            string
	SubscriptionID  uint
	PeriodEnd       int64 // unix seconds, 0 when absent
}

// SubscriptionRepository defines data access for plans, subscriptions and
// processed payment events.
type SubscriptionRepository interface {
	CreatePlan(ctx context.Context, plan *models.Plan) error
	GetPlanByID(ctx context.Context, id uint) (*models.Plan, error)
	GetPlanByCode(ctx context.Context, code string) (*models.Plan, error)
	UpdatePlan(ctx context.Context, plan *models.Plan) error
	ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error)

	CreateSubscription(ctx context.Context, subscription *models.Subscription) error
	GetSubscriptionByID(ctx context.Context, id uint) (*models.Subscription, error)
	GetActiveSubscription(ctx context.Context, userID uint) (*models.Subscription, error)
	UpdateSubscription(ctx context.Context, subscription *models.Subscription) error
	ListSubscriptionsByUser(ctx context.Context, userID uint) ([]models.Subscription, error)

	HasPaymentEvent(ctx context.Context, providerEventID string) (bool, error)
	RecordPaymentEvent(ctx context.Context, event *models.PaymentEvent) error
}

// SubscriptionService defines business logic for billing.
type SubscriptionService interface {
	CreatePlan(ctx context.Context, code, name string, priceCents int, interval string) (*models.Plan, error)
	DeactivatePlan(ctx context.Context, id uint) (*models.Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error)

	Subscribe(ctx context.Context, userID, planID uint) (*models.Subscription, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID, userID uint) (*models.Subscription, error)
	GetSubscription(ctx context.Context, id uint) (*models.Subscription, error)
	ListMySubscriptions(ctx context.Context, userID uint) ([]models.Subscription, error)

	// ProcessPaymentEvent applies a provider webhook event. Duplicate events
	// (same provider event ID) are acknowledged without reprocessing.
	ProcessPaymentEvent(ctx context.Context, input PaymentEventInput) error
}
