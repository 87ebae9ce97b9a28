package service

import (
	"testing"

	"github.com/mietwerk/billing-core/internal/testutil"
	"github.com/mietwerk/billing-core/internal/types"
	"github.com/stretchr/testify/suite"
)

type OrderServiceSuite struct {
	testutil.BaseServiceTestSuite
	service   OrderService
	orderRepo *testutil.InMemoryOrderStore
}

func TestOrderService(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.orderRepo = s.GetStores().OrderRepo.(*testutil.InMemoryOrderStore)

	s.service = NewOrderService(ServiceParams{
		Logger:    s.GetLogger(),
		Config:    s.GetConfig(),
		OrderRepo: s.GetStores().OrderRepo,
	})
}

func (s *OrderServiceSuite) checkoutOrder() *CheckoutOrder {
	return &CheckoutOrder{
		CheckoutSessionID: "cs_1",
		PaymentIntentID:   "pi_1",
		CustomerID:        "cus_123",
		AmountTotal:       4900,
		AmountSubtotal:    4117,
		Currency:          "eur",
		PaymentStatus:     "paid",
	}
}

func (s *OrderServiceSuite) TestRecordsCompletedOrder() {
	s.NoError(s.service.RecordCheckoutOrder(s.GetContext(), s.checkoutOrder()))

	o, err := s.orderRepo.GetByCheckoutSessionID(s.GetContext(), "cs_1")
	s.NoError(err)
	s.Equal("pi_1", o.PaymentIntentID)
	s.Equal("cus_123", o.CustomerID)
	s.Equal(int64(4900), o.AmountTotal)
	s.Equal(types.OrderStatusCompleted, o.Status)
}

func (s *OrderServiceSuite) TestReplayedSessionRecordsOneOrder() {
	s.NoError(s.service.RecordCheckoutOrder(s.GetContext(), s.checkoutOrder()))
	s.NoError(s.service.RecordCheckoutOrder(s.GetContext(), s.checkoutOrder()))

	count := s.orderRepo.Count(s.GetContext(), nil)
	s.Equal(1, count)
}
