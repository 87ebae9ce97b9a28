package types

// SubscriptionPlan is the coarse plan a billing account resolves to.
// The raw Stripe price/product granularity lives only on the snapshot;
// account-level entitlements in the product are keyed off this pair.
type SubscriptionPlan string

const (
	PlanFree SubscriptionPlan = "free"
	PlanPro  SubscriptionPlan = "pro"
)

// BillingStatus is the coarse account-level subscription status
type BillingStatus string

const (
	BillingStatusActive   BillingStatus = "active"
	BillingStatusInactive BillingStatus = "inactive"
)

// SnapshotStatus values mirror Stripe subscription statuses, plus
// "not_started" for customers that never checked out a subscription.
const (
	SubscriptionStatusNotStarted = "not_started"
	SubscriptionStatusActive     = "active"
	SubscriptionStatusTrialing   = "trialing"
)

// ReferralStatus tracks the referral lifecycle. Within this core the
// status only ever advances from registered to paying.
type ReferralStatus string

const (
	ReferralStatusRegistered ReferralStatus = "registered"
	ReferralStatusPaying     ReferralStatus = "paying"
)

// CommissionStatus tracks a commission ledger row
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "pending"
	CommissionStatusReversed CommissionStatus = "reversed"
)

// OrderStatus tracks one-time payment orders
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
)

// DerivePlanAndStatus maps a raw Stripe subscription status to the
// coarse plan/status pair stored on the billing info row. Only active
// and trialing subscriptions count as paid-active.
func DerivePlanAndStatus(stripeStatus string) (SubscriptionPlan, BillingStatus) {
	switch stripeStatus {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return PlanPro, BillingStatusActive
	default:
		return PlanFree, BillingStatusInactive
	}
}
