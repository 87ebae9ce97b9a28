package testutil

import (
	"context"
	"sync"

	"github.com/stripe/stripe-go/v82"
)

// MockSubscriptionGateway implements service.SubscriptionGateway with
// canned per-customer subscriptions.
type MockSubscriptionGateway struct {
	mu            sync.RWMutex
	subscriptions map[string]*stripe.Subscription
	calls         []string
}

// NewMockSubscriptionGateway creates a new mock subscription gateway
func NewMockSubscriptionGateway() *MockSubscriptionGateway {
	return &MockSubscriptionGateway{
		subscriptions: make(map[string]*stripe.Subscription),
	}
}

// SetSubscription registers the subscription returned for a customer
func (m *MockSubscriptionGateway) SetSubscription(customerID string, sub *stripe.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[customerID] = sub
}

// Calls returns the customer ids looked up so far, in order
func (m *MockSubscriptionGateway) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.calls...)
}

func (m *MockSubscriptionGateway) LatestSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error) {
	m.mu.Lock()
	m.calls = append(m.calls, customerID)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subscriptions[customerID], nil
}
