package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereadylab/readylab-api/internal/models"
)

func setupTestService(t *testing.T) (SubscriptionService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(&models.Plan{}, &models.Subscription{}, &models.PaymentEvent{})
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return NewService(NewRepository(db)), db
}

func createTestPlan(t *testing.T, service SubscriptionService) *models.Plan {
	plan, err := service.CreatePlan(context.Background(), "pro-monthly", "Pro Monthly", 1999, "month")
	require.NoError(t, err)
	return plan
}

func TestCreatePlan(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestService(t)

	t.Run("normalizes the code", func(t *testing.T) {
		plan, err := service.CreatePlan(ctx, "  PRO-Yearly ", "Pro Yearly", 19900, "year")
		require.NoError(t, err)
		assert.Equal(t, "pro-yearly", plan.Code)
		assert.True(t, plan.Active)
	})

	t.Run("rejects bad intervals", func(t *testing.T) {
		_, err := service.CreatePlan(ctx, "weekly", "Weekly", 500, "week")
		assert.Error(t, err)
	})

	t.Run("rejects negative prices", func(t *testing.T) {
		_, err := service.CreatePlan(ctx, "free", "Free", -1, "month")
		assert.Error(t, err)
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending subscription", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionPending, subscription.Status)
		assert.Nil(t, subscription.CurrentPeriodEnd)
	})

	t.Run("rejects inactive plans", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		_, err := service.DeactivatePlan(ctx, plan.ID)
		require.NoError(t, err)

		_, err = service.Subscribe(ctx, 42, plan.ID)
		assert.ErrorIs(t, err, ErrPlanInactive)
	})

	t.Run("unknown plan", func(t *testing.T) {
		service, _ := setupTestService(t)
		_, err := service.Subscribe(ctx, 42, 999)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("one live subscription per user", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)

		require.NoError(t, service.ProcessPaymentEvent(ctx, PaymentEventInput{
			ProviderEventID: "evt-1",
			Type:            EventPaymentSucceeded,
			SubscriptionID:  subscription.ID,
		}))

		_, err = service.Subscribe(ctx, 42, plan.ID)
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})
}

func TestProcessPaymentEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("successful payment activates and sets the period end", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)

		periodEnd := time.Now().AddDate(0, 1, 0).Unix()
		require.NoError(t, service.ProcessPaymentEvent(ctx, PaymentEventInput{
			ProviderEventID: "evt-1",
			Type:            EventPaymentSucceeded,
			SubscriptionID:  subscription.ID,
			PeriodEnd:       periodEnd,
		}))

		updated, err := service.GetSubscription(ctx, subscription.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionActive, updated.Status)
		require.NotNil(t, updated.CurrentPeriodEnd)
		assert.Equal(t, periodEnd, updated.CurrentPeriodEnd.Unix())
	})

	t.Run("duplicate provider events are acknowledged once", func(t *testing.T) {
		service, db := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)

		input := PaymentEventInput{
			ProviderEventID: "evt-dup",
			Type:            EventPaymentSucceeded,
			SubscriptionID:  subscription.ID,
		}
		require.NoError(t, service.ProcessPaymentEvent(ctx, input))
		require.NoError(t, service.ProcessPaymentEvent(ctx, input))

		var count int64
		require.NoError(t, db.Model(&models.PaymentEvent{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("failed payment degrades only active subscriptions", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)

		// Still pending: a failed payment must not move it to past_due
		require.NoError(t, service.ProcessPaymentEvent(ctx, PaymentEventInput{
			ProviderEventID: "evt-f1",
			Type:            EventPaymentFailed,
			SubscriptionID:  subscription.ID,
		}))
		updated, err := service.GetSubscription(ctx, subscription.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionPending, updated.Status)

		require.NoError(t, service.ProcessPaymentEvent(ctx, PaymentEventInput{
			ProviderEventID: "evt-s1",
			Type:            EventPaymentSucceeded,
			SubscriptionID:  subscription.ID,
		}))
		require.NoError(t, service.ProcessPaymentEvent(ctx, PaymentEventInput{
			ProviderEventID: "evt-f2",
			Type:            EventPaymentFailed,
			SubscriptionID:  subscription.ID,
		}))

		updated, err = service.GetSubscription(ctx, subscription.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionPastDue, updated.Status)
	})

	t.Run("unknown event types are rejected", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)

		err = service.ProcessPaymentEvent(ctx, PaymentEventInput{
			ProviderEventID: "evt-x",
			Type:            "payment.refunded",
			SubscriptionID:  subscription.ID,
		})
		assert.Error(t, err)
	})
}

func TestCancelAtPeriodEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("pending subscriptions cancel immediately", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)

		canceled, err := service.CancelAtPeriodEnd(ctx, subscription.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionCanceled, canceled.Status)
		assert.False(t, canceled.CancelAtPeriodEnd)
	})

	t.Run("active subscriptions lapse at period end", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)
		require.NoError(t, service.ProcessPaymentEvent(ctx, PaymentEventInput{
			ProviderEventID: "evt-1",
			Type:            EventPaymentSucceeded,
			SubscriptionID:  subscription.ID,
		}))

		canceled, err := service.CancelAtPeriodEnd(ctx, subscription.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionActive, canceled.Status)
		assert.True(t, canceled.CancelAtPeriodEnd)
	})

	t.Run("only the subscriber may cancel", func(t *testing.T) {
		service, _ := setupTestService(t)
		plan := createTestPlan(t, service)

		subscription, err := service.Subscribe(ctx, 42, plan.ID)
		require.NoError(t, err)

		_, err = service.CancelAtPeriodEnd(ctx, subscription.ID, 43)
		assert.ErrorIs(t, err, ErrNotSubscriber)
	})
}
