package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/internal/repository"
	"github.com/glowmart/cjfulfill/internal/service"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

// resolveOrder fetches an order by UUID or order number. The order-number
// lookup is what operators use to inspect orders whose supplier linkage
// needs manual reconciliation.
func resolveOrder(ctx context.Context, repos *repository.Repositories, idParam string) (*domain.Order, error) {
	orderID, err := uuid.Parse(idParam)
	if err == nil {
		return repos.Order.GetByID(ctx, orderID)
	}
	return repos.Order.GetByOrderNumber(ctx, idParam)
}

// OrderResponse represents the order response
type OrderResponse struct {
	ID                  string                 `json:"id"`
	OrderNumber         string                 `json:"order_number"`
	Status              domain.OrderStatus     `json:"status"`
	CustomerName        string                 `json:"customer_name"`
	CustomerEmail       string                 `json:"customer_email,omitempty"`
	CustomerPhone       string                 `json:"customer_phone,omitempty"`
	ShippingAddress     map[string]interface{} `json:"shipping_address"`
	Total               float64                `json:"total"`
	ExternalOrderID     *string                `json:"external_order_id,omitempty"`
	ExternalOrderNumber *string                `json:"external_order_number,omitempty"`
	TrackingNumber      *string                `json:"tracking_number,omitempty"`
	CarrierName         *string                `json:"carrier_name,omitempty"`
	FailureReason       *string                `json:"failure_reason,omitempty"`
	Items               []OrderItemResponse    `json:"items"`
	CreatedAt           string                 `json:"created_at"`
	UpdatedAt           string                 `json:"updated_at"`
}

type OrderItemResponse struct {
	ExternalVariantID string  `json:"external_variant_id"`
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Quantity          int     `json:"quantity"`
}

// HandleSubmitOrder handles POST /v1/orders/:id/submit
func HandleSubmitOrder(client service.SupplierClient, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := resolveOrder(c.Request.Context(), repos, c.Param("id"))
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to resolve order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		svc := service.NewOrderSubmissionService(client, repos, logger)
		result, err := svc.SubmitOrder(c.Request.Context(), order.ID)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrAlreadySubmitted:
				c.JSON(http.StatusConflict, gin.H{"error": e.Error(), "external_order_id": e.ExternalOrderID})
			case *errors.ErrValidation:
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": e.Error()})
			case *errors.ErrSupplierAPI:
				c.JSON(http.StatusBadGateway, gin.H{"error": e.Error()})
			default:
				logger.Error("Failed to submit order", zap.String("order_id", order.ID.String()), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// HandleRefreshTracking handles POST /v1/orders/:id/tracking/refresh
func HandleRefreshTracking(client service.SupplierClient, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := resolveOrder(c.Request.Context(), repos, c.Param("id"))
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to resolve order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		reconciler := service.NewTrackingReconciler(client, repos, logger)
		update, err := reconciler.RefreshTracking(c.Request.Context(), order.ID)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrNotSubmitted:
				c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
			case *errors.ErrSupplierAPI:
				c.JSON(http.StatusBadGateway, gin.H{"error": e.Error()})
			default:
				logger.Error("Failed to refresh tracking", zap.String("order_id", order.ID.String()), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, update)
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := resolveOrder(c.Request.Context(), repos, c.Param("id"))
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		items, err := repos.Order.ListItems(c.Request.Context(), order.ID)
		if err != nil {
			logger.Error("Failed to get order items", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		itemResponses := make([]OrderItemResponse, len(items))
		for i, item := range items {
			itemResponses[i] = OrderItemResponse{
				ExternalVariantID: item.ExternalVariantID,
				SKU:               item.SKU,
				Name:              item.Name,
				Price:             item.Price,
				Quantity:          item.Quantity,
			}
		}

		response := OrderResponse{
			ID:                  order.ID.String(),
			OrderNumber:         order.OrderNumber,
			Status:              order.Status,
			CustomerName:        order.CustomerName,
			CustomerEmail:       order.CustomerEmail,
			CustomerPhone:       order.CustomerPhone,
			ShippingAddress:     order.ShippingAddress,
			Total:               order.Total,
			ExternalOrderID:     order.ExternalOrderID,
			ExternalOrderNumber: order.ExternalOrderNumber,
			TrackingNumber:      order.TrackingNumber,
			CarrierName:         order.CarrierName,
			FailureReason:       order.FailureReason,
			Items:               itemResponses,
			CreatedAt:           order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:           order.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}

		c.JSON(http.StatusOK, response)
	}
}
