package commission

import (
	"time"

	"github.com/mietwerk/billing-core/internal/types"
	"github.com/shopspring/decimal"
)

// Commission is a ledger row representing money owed to an affiliate for
// one paid invoice. The unique event id key makes redelivered webhook
// events harmless; refunds flip the original row to reversed and add a
// compensating negative row so the ledger sums to zero while keeping the
// audit trail.
type Commission struct {
	ID string `json:"id" gorm:"primaryKey;column:id"`
	// EventID is the Stripe event that produced this row. Unique at the
	// database level; the duplicate check alone is not race-safe.
	EventID string `json:"event_id" gorm:"column:event_id;uniqueIndex"`

	AffiliateID    string `json:"affiliate_id" gorm:"column:affiliate_id;index"`
	ReferralID     string `json:"referral_id" gorm:"column:referral_id;index"`
	SubscriptionID string `json:"subscription_id" gorm:"column:subscription_id"`
	InvoiceID      string `json:"invoice_id" gorm:"column:invoice_id;index"`

	// AmountTotal is the gross invoice amount, AmountNet the pre-tax
	// subtotal the commission is computed from
	AmountTotal      decimal.Decimal `json:"amount_total" gorm:"column:amount_total;type:numeric(12,2)"`
	AmountNet        decimal.Decimal `json:"amount_net" gorm:"column:amount_net;type:numeric(12,2)"`
	CommissionRate   decimal.Decimal `json:"commission_rate" gorm:"column:commission_rate;type:numeric(5,4)"`
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"column:commission_amount;type:numeric(12,2)"`

	Status types.CommissionStatus `json:"status" gorm:"column:status"`
	// HoldUntil is when a pending commission becomes payable; reversals
	// are final immediately
	HoldUntil time.Time `json:"hold_until" gorm:"column:hold_until"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Commission) TableName() string {
	return "commissions"
}
