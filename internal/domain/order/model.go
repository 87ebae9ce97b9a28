package order

import (
	"time"

	"github.com/mietwerk/billing-core/internal/types"
)

// Order records a successful one-time payment made through a Stripe
// checkout session in payment mode. Subscriptions never produce orders.
type Order struct {
	ID string `json:"id" gorm:"primaryKey;column:id"`
	// CheckoutSessionID is unique per order; replaying the same
	// checkout.session.completed event is a no-op
	CheckoutSessionID string `json:"checkout_session_id" gorm:"column:checkout_session_id;uniqueIndex"`
	PaymentIntentID   string `json:"payment_intent_id" gorm:"column:payment_intent_id"`
	CustomerID        string `json:"customer_id" gorm:"column:customer_id;index"`

	// Amounts in Stripe minor units
	AmountTotal    int64  `json:"amount_total" gorm:"column:amount_total"`
	AmountSubtotal int64  `json:"amount_subtotal" gorm:"column:amount_subtotal"`
	Currency       string `json:"currency" gorm:"column:currency"`

	PaymentStatus string            `json:"payment_status" gorm:"column:payment_status"`
	Status        types.OrderStatus `json:"status" gorm:"column:status"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
