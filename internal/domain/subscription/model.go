package subscription

import (
	"time"
)

// Snapshot is the normalized copy of a Stripe customer's current
// subscription. One row per Stripe customer, replaced on every sync;
// never deleted by this core.
type Snapshot struct {
	// CustomerID is the Stripe customer id, the primary key
	CustomerID string `json:"customer_id" gorm:"primaryKey;column:customer_id"`
	// SubscriptionID is the Stripe subscription id, empty when the
	// customer never started a subscription
	SubscriptionID string `json:"subscription_id" gorm:"column:subscription_id"`
	// PriceID is the Stripe price the subscription is billed on
	PriceID string `json:"price_id" gorm:"column:price_id"`
	// Status is the raw Stripe subscription status, or "not_started"
	Status string `json:"status" gorm:"column:status"`
	// CurrentPeriodStart and CurrentPeriodEnd bound the active billing period
	CurrentPeriodStart *time.Time `json:"current_period_start" gorm:"column:current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end" gorm:"column:current_period_end"`
	// CancelAtPeriodEnd mirrors the Stripe cancel flag
	CancelAtPeriodEnd bool `json:"cancel_at_period_end" gorm:"column:cancel_at_period_end"`
	// PaymentMethodBrand and PaymentMethodLast4 come from the expanded
	// default payment method, nil when Stripe returned only a reference id
	PaymentMethodBrand *string `json:"payment_method_brand" gorm:"column:payment_method_brand"`
	PaymentMethodLast4 *string `json:"payment_method_last4" gorm:"column:payment_method_last4"`

	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Snapshot) TableName() string {
	return "subscription_snapshots"
}
