package billing

import (
	"time"

	"github.com/mietwerk/billing-core/internal/types"
)

// Info is the account-level billing state derived from subscription syncs.
// Keyed by the internal account id; the Stripe customer id link is
// backfilled opportunistically when first resolved via the mapping table.
type Info struct {
	// AccountID is the internal account identifier, the primary key
	AccountID string `json:"account_id" gorm:"primaryKey;column:account_id"`
	// CustomerID is the Stripe customer id once known
	CustomerID *string `json:"customer_id" gorm:"column:customer_id;index"`

	Plan   types.SubscriptionPlan `json:"plan" gorm:"column:plan"`
	Status types.BillingStatus    `json:"status" gorm:"column:status"`

	// SubscriptionEndsAt is set only while a cancellation is scheduled;
	// a renewing subscription has no ends-at date
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at" gorm:"column:subscription_ends_at"`

	// Trial bookkeeping, cleared once the account is paid-active
	TrialStartsAt *time.Time `json:"trial_starts_at" gorm:"column:trial_starts_at"`
	TrialEndsAt   *time.Time `json:"trial_ends_at" gorm:"column:trial_ends_at"`

	// ProActivatedAt is a one-way latch: stamped the first time the account
	// reaches pro/active and never overwritten afterwards
	ProActivatedAt *time.Time `json:"pro_activated_at" gorm:"column:pro_activated_at"`

	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Info) TableName() string {
	return "billing_infos"
}

// ResolveOutcome describes how a Stripe customer id was resolved to a
// billing info row.
type ResolveOutcome string

const (
	// ResolvedDirect means the billing row already carried the customer id
	ResolvedDirect ResolveOutcome = "found_direct"
	// ResolvedViaMapping means the row was found through the
	// customer-to-account mapping and the direct link was backfilled
	ResolvedViaMapping ResolveOutcome = "found_via_mapping_and_backfilled"
	// ResolveNotFound means no billing row could be located
	ResolveNotFound ResolveOutcome = "not_found"
)
