package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/cj"
	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

func seedPendingOrder(orders *fakeOrderRepo) *domain.Order {
	order := &domain.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-1001",
		Status:        domain.OrderStatusPending,
		CustomerName:  "Dana Lee",
		CustomerEmail: "dana@example.com",
		CustomerPhone: "+1-555-0101",
		ShippingAddress: map[string]interface{}{
			"street":       "1 Main St",
			"city":         "Portland",
			"province":     "OR",
			"country":      "United States",
			"country_code": "US",
			"postal_code":  "97201",
		},
		Total: 23.20,
	}
	orders.orders[order.ID] = order
	orders.items[order.ID] = []*domain.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, ExternalVariantID: "v1", SKU: "SKU-1-30", Quantity: 2, Price: 5.80},
		{ID: uuid.New(), OrderID: order.ID, ExternalVariantID: "v2", SKU: "SKU-1-50", Quantity: 1, Price: 11.60},
	}
	return order
}

func TestSubmitOrderSuccess(t *testing.T) {
	repos, _, orders, _ := newFakeRepos()
	order := seedPendingOrder(orders)

	var captured cj.CreateOrderRequest
	supplier := &fakeSupplier{
		createFn: func(ctx context.Context, req cj.CreateOrderRequest) (*cj.CreateOrderResult, error) {
			captured = req
			return &cj.CreateOrderResult{OrderID: "CJ-1", OrderNum: "CJ-NUM-1"}, nil
		},
	}
	svc := NewOrderSubmissionService(supplier, repos, zap.NewNop())

	result, err := svc.SubmitOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "CJ-1", result.ExternalOrderID)
	assert.Equal(t, "CJ-NUM-1", result.ExternalOrderNumber)

	assert.Equal(t, "ORD-1001", captured.OrderNumber)
	assert.Equal(t, "Portland", captured.ShippingCity)
	assert.Equal(t, "US", captured.ShippingCountryCode)
	require.Len(t, captured.Products, 2)
	assert.Equal(t, "v1", captured.Products[0].VID)
	assert.Equal(t, 2, captured.Products[0].Quantity)

	require.NotNil(t, order.ExternalOrderID)
	assert.Equal(t, "CJ-1", *order.ExternalOrderID)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	require.NotNil(t, order.SubmittedAt)
}

func TestSubmitOrderRefusesResubmission(t *testing.T) {
	repos, _, orders, _ := newFakeRepos()
	order := seedPendingOrder(orders)
	extID := "CJ-EXISTING"
	order.ExternalOrderID = &extID

	supplier := &fakeSupplier{
		createFn: func(ctx context.Context, req cj.CreateOrderRequest) (*cj.CreateOrderResult, error) {
			t.Fatal("resubmission must be refused before any supplier call")
			return nil, nil
		},
	}
	svc := NewOrderSubmissionService(supplier, repos, zap.NewNop())

	_, err := svc.SubmitOrder(context.Background(), order.ID)
	var dupErr *errors.ErrAlreadySubmitted
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "CJ-EXISTING", dupErr.ExternalOrderID)
	assert.Equal(t, 0, supplier.createCalls)
}

func TestSubmitOrderWithoutItems(t *testing.T) {
	repos, _, orders, _ := newFakeRepos()
	order := seedPendingOrder(orders)
	orders.items[order.ID] = nil

	svc := NewOrderSubmissionService(&fakeSupplier{}, repos, zap.NewNop())

	_, err := svc.SubmitOrder(context.Background(), order.ID)
	var valErr *errors.ErrValidation
	require.ErrorAs(t, err, &valErr)
}

func TestSubmitOrderUpstreamFailureMarksOrderFailed(t *testing.T) {
	repos, _, orders, _ := newFakeRepos()
	order := seedPendingOrder(orders)

	supplier := &fakeSupplier{
		createFn: func(ctx context.Context, req cj.CreateOrderRequest) (*cj.CreateOrderResult, error) {
			return nil, &errors.ErrSupplierAPI{HTTPStatus: 502, Code: 1600100, Message: "variant out of stock"}
		},
	}
	svc := NewOrderSubmissionService(supplier, repos, zap.NewNop())

	_, err := svc.SubmitOrder(context.Background(), order.ID)
	var apiErr *errors.ErrSupplierAPI
	require.ErrorAs(t, err, &apiErr)

	assert.Equal(t, domain.OrderStatusFailed, order.Status)
	require.Len(t, orders.failedReasons, 1)
	assert.Contains(t, orders.failedReasons[0], "variant out of stock")
	assert.Nil(t, order.ExternalOrderID)
}

func TestSubmitOrderLostClaim(t *testing.T) {
	repos, _, orders, _ := newFakeRepos()
	order := seedPendingOrder(orders)

	supplier := &fakeSupplier{
		createFn: func(ctx context.Context, req cj.CreateOrderRequest) (*cj.CreateOrderResult, error) {
			// A concurrent submission wins the claim while this call is in flight.
			winner := "CJ-RACE-WINNER"
			winnerNum := "CJ-NUM-RACE"
			now := time.Now()
			order.ExternalOrderID = &winner
			order.ExternalOrderNumber = &winnerNum
			order.SubmittedAt = &now
			return &cj.CreateOrderResult{OrderID: "CJ-LOSER", OrderNum: "CJ-NUM-LOSER"}, nil
		},
	}
	svc := NewOrderSubmissionService(supplier, repos, zap.NewNop())

	_, err := svc.SubmitOrder(context.Background(), order.ID)
	var dupErr *errors.ErrAlreadySubmitted
	require.ErrorAs(t, err, &dupErr)

	// The winner's identifiers stay; the losing result is never written.
	assert.Equal(t, "CJ-RACE-WINNER", *order.ExternalOrderID)
	assert.Equal(t, 1, orders.claimCalls)
}

func TestBuildCreateOrderRequestMissingAddressKeys(t *testing.T) {
	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-2",
		ShippingAddress: map[string]interface{}{"city": "Austin", "postal_code": 73301},
	}
	items := []*domain.OrderItem{{ID: uuid.New(), ExternalVariantID: "v9", Quantity: 1}}

	req := buildCreateOrderRequest(order, items)
	assert.Equal(t, "Austin", req.ShippingCity)
	assert.Equal(t, "", req.ShippingAddress)
	assert.Equal(t, "", req.ShippingZip, "non-string address values are treated as absent")
}
