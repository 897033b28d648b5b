package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/cj"
	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/internal/repository"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

type orderSubmissionService struct {
	client SupplierClient
	repos  *repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderSubmissionService creates the order submission service
func NewOrderSubmissionService(client SupplierClient, repos *repository.Repositories, logger *zap.Logger) *orderSubmissionService {
	return &orderSubmissionService{
		client: client,
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
}

// SubmitOrder maps a local order into a supplier order-creation request and
// submits it. An order that already carries an external order id is refused
// before any network call. On upstream failure the order is marked failed
// and the error is propagated.
func (s *orderSubmissionService) SubmitOrder(ctx context.Context, orderID uuid.UUID) (*SubmitResult, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ExternalOrderID != nil && *order.ExternalOrderID != "" {
		return nil, &errors.ErrAlreadySubmitted{
			OrderID:         order.ID.String(),
			ExternalOrderID: *order.ExternalOrderID,
		}
	}

	items, err := s.repos.Order.ListItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &errors.ErrValidation{Message: "order has no line items"}
	}

	req := buildCreateOrderRequest(order, items)

	s.logger.Info("Submitting order to supplier",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("item_count", len(items)),
	)

	result, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		if markErr := s.repos.Order.MarkSubmissionFailed(ctx, order.ID, err.Error()); markErr != nil {
			s.logger.Error("Failed to mark order submission failed", zap.String("order_id", order.ID.String()), zap.Error(markErr))
		}
		return nil, err
	}

	// The external order id is the durable source of truth for "already
	// submitted"; the conditional write loses only if a concurrent
	// submission already claimed the order.
	claimed, err := s.repos.Order.ClaimSubmission(ctx, order.ID, result.OrderID, result.OrderNum, s.now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		s.logger.Warn("Order was claimed by a concurrent submission; supplier order may need manual reconciliation",
			zap.String("order_id", order.ID.String()),
			zap.String("supplier_order_id", result.OrderID),
		)
		return nil, &errors.ErrAlreadySubmitted{OrderID: order.ID.String(), ExternalOrderID: result.OrderID}
	}

	s.logger.Info("Order submitted to supplier",
		zap.String("order_id", order.ID.String()),
		zap.String("external_order_id", result.OrderID),
		zap.String("external_order_number", result.OrderNum),
	)

	return &SubmitResult{
		ExternalOrderID:     result.OrderID,
		ExternalOrderNumber: result.OrderNum,
	}, nil
}

// buildCreateOrderRequest maps the local order and its items onto the CJ
// order-creation shape, preserving line item order.
func buildCreateOrderRequest(order *domain.Order, items []*domain.OrderItem) cj.CreateOrderRequest {
	req := cj.CreateOrderRequest{
		OrderNumber:         order.OrderNumber,
		ShippingCustomer:    order.CustomerName,
		ShippingAddress:     getStr(order.ShippingAddress, "street"),
		ShippingCity:        getStr(order.ShippingAddress, "city"),
		ShippingProvince:    getStr(order.ShippingAddress, "province"),
		ShippingCountry:     getStr(order.ShippingAddress, "country"),
		ShippingCountryCode: getStr(order.ShippingAddress, "country_code"),
		ShippingZip:         getStr(order.ShippingAddress, "postal_code"),
		ShippingPhone:       order.CustomerPhone,
		Email:               order.CustomerEmail,
		TotalAmount:         order.Total,
	}

	req.Products = make([]cj.OrderProduct, 0, len(items))
	for _, item := range items {
		req.Products = append(req.Products, cj.OrderProduct{
			VID:        item.ExternalVariantID,
			Quantity:   item.Quantity,
			LineItemID: item.ID.String(),
		})
	}

	return req
}

func getStr(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
