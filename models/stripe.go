package models

import (
	"time"

	"gorm.io/gorm"
)

// StripeCustomer links an identity to its Stripe customer. At most one row
// per identity; the merge flow reconciles duplicates.
type StripeCustomer struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string         `gorm:"not null;uniqueIndex;type:varchar(36)" json:"user_id"`
	CustomerID string         `gorm:"not null;uniqueIndex" json:"customer_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

type StripeSubscription struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID         string    `gorm:"not null;uniqueIndex" json:"customer_id"`
	SubscriptionID     *string   `json:"subscription_id"`
	PriceID            *string   `json:"price_id"`
	Status             string    `gorm:"not null;default:not_started" json:"subscription_status"`
	CurrentPeriodStart *int64    `json:"current_period_start"`
	CurrentPeriodEnd   *int64    `json:"current_period_end"`
	CancelAtPeriodEnd  bool      `json:"cancel_at_period_end"`
	PaymentMethodBrand *string   `json:"payment_method_brand"`
	PaymentMethodLast4 *string   `json:"payment_method_last4"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type StripeOrder struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"order_id"`
	CheckoutSessionID string    `gorm:"not null;uniqueIndex" json:"checkout_session_id"`
	PaymentIntentID   string    `json:"payment_intent_id"`
	CustomerID        string    `gorm:"not null;index" json:"customer_id"`
	AmountSubtotal    int64     `json:"amount_subtotal"`
	AmountTotal       int64     `json:"amount_total"`
	Currency          string    `json:"currency"`
	PaymentStatus     string    `json:"payment_status"`
	Status            string    `gorm:"not null;default:pending" json:"order_status"`
	CreatedAt         time.Time `json:"order_date"`
	UpdatedAt         time.Time `json:"-"`
}
