package service

import (
	"context"
	"time"

	"github.com/mietwerk/billing-core/internal/domain/order"
	"github.com/mietwerk/billing-core/internal/types"
)

// CheckoutOrder is the slice of a completed payment-mode checkout
// session the order recorder needs. Amounts are in Stripe minor units.
type CheckoutOrder struct {
	CheckoutSessionID string
	PaymentIntentID   string
	CustomerID        string
	AmountTotal       int64
	AmountSubtotal    int64
	Currency          string
	PaymentStatus     string
}

// OrderService records successful one-time payments
type OrderService interface {
	RecordCheckoutOrder(ctx context.Context, co *CheckoutOrder) error
}

type orderService struct {
	ServiceParams
}

// NewOrderService creates a new order service
func NewOrderService(params ServiceParams) OrderService {
	return &orderService{
		ServiceParams: params,
	}
}

func (s *orderService) RecordCheckoutOrder(ctx context.Context, co *CheckoutOrder) error {
	now := time.Now().UTC()
	o := &order.Order{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		CheckoutSessionID: co.CheckoutSessionID,
		PaymentIntentID:   co.PaymentIntentID,
		CustomerID:        co.CustomerID,
		AmountTotal:       co.AmountTotal,
		AmountSubtotal:    co.AmountSubtotal,
		Currency:          co.Currency,
		PaymentStatus:     co.PaymentStatus,
		Status:            types.OrderStatusCompleted,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	inserted, err := s.OrderRepo.CreateIfAbsent(ctx, o)
	if err != nil {
		s.Logger.Errorw("failed to insert one-time order",
			"error", err,
			"checkout_session_id", co.CheckoutSessionID,
		)
		return err
	}
	if !inserted {
		s.Logger.Infow("order already recorded for checkout session",
			"checkout_session_id", co.CheckoutSessionID,
		)
		return nil
	}

	s.Logger.Infow("one-time order recorded",
		"order_id", o.ID,
		"checkout_session_id", co.CheckoutSessionID,
		"customer_id", co.CustomerID,
		"amount_total", co.AmountTotal,
		"currency", co.Currency,
	)

	return nil
}
