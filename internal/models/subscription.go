package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus represents the billing state of a subscription
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Plan represents a purchasable subscription plan
type Plan struct {
	gorm.Model
	Code       string `json:"code" gorm:"uniqueIndex;not null"`
	Name       string `json:"name" gorm:"not null"`
	PriceCents int    `json:"price_cents" gorm:"not null"`
	Interval   string `json:"interval" gorm:"default:'month'"` // month or year
	Active     bool   `json:"active" gorm:"default:true"`
}

// Subscription represents a user's subscription to a plan
type Subscription struct {
	gorm.Model
	UserID            uint               `json:"user_id" gorm:"not null;index"`
	PlanID            uint               `json:"plan_id" gorm:"not null"`
	Status            SubscriptionStatus `json:"status" gorm:"default:'pending';index"`
	CurrentPeriodEnd  *time.Time         `json:"current_period_end"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end" gorm:"default:false"`

	Plan Plan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// PaymentEvent records a processed payment-provider webhook event for idempotency
type PaymentEvent struct {
	gorm.Model
	ProviderEventID string `json:"provider_event_id" gorm:"uniqueIndex;not null"`
	Type            string `json:"type" gorm:"not null"`
	SubscriptionID  uint   `json:"subscription_id" gorm:"index"`
}

// TableName specifies the table name for PaymentEvent
func (PaymentEvent) TableName() string {
	return "payment_events"
}
