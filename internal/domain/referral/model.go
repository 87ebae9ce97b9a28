package referral

import (
	"time"

	"github.com/mietwerk/billing-core/internal/types"
	"github.com/shopspring/decimal"
)

// Referral links an affiliate to a referred account. Created by the
// affiliate program when the referred account registers; the Stripe
// customer id is attached at first checkout (first write wins) and the
// status advances to paying on the first paid invoice.
type Referral struct {
	ID          string `json:"id" gorm:"primaryKey;column:id"`
	AffiliateID string `json:"affiliate_id" gorm:"column:affiliate_id;index"`
	AccountID   string `json:"account_id" gorm:"column:account_id;index"`
	// CustomerID is nil until the referred account first checks out
	CustomerID *string `json:"customer_id" gorm:"column:customer_id;index"`

	Status types.ReferralStatus `json:"status" gorm:"column:status"`

	// FirstPaymentAt is stamped on the promotion to paying;
	// LastPaymentAt is refreshed on every paid invoice
	FirstPaymentAt *time.Time `json:"first_payment_at" gorm:"column:first_payment_at"`
	LastPaymentAt  *time.Time `json:"last_payment_at" gorm:"column:last_payment_at"`

	// LifetimeValue is the gross total of all invoices the referred
	// customer has paid. Incremented atomically at the store to stay
	// correct under concurrent invoice events.
	LifetimeValue decimal.Decimal `json:"lifetime_value" gorm:"column:lifetime_value;type:numeric(12,2)"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Referral) TableName() string {
	return "referrals"
}
