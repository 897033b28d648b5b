package service

import (
	"context"
	"time"

	"github.com/glowmart/cjfulfill/internal/cj"
	"github.com/glowmart/cjfulfill/internal/domain"
)

// SupplierClient is the slice of the CJ client the services consume.
// Satisfied by *cj.Client; tests substitute fakes.
type SupplierClient interface {
	ListProducts(ctx context.Context, q cj.ProductQuery) (*cj.ProductPage, error)
	CreateOrder(ctx context.Context, req cj.CreateOrderRequest) (*cj.CreateOrderResult, error)
	GetOrderStatus(ctx context.Context, orderNum string) (*cj.OrderStatusResult, error)
}

// SyncOptions are the catalog sync parameters
type SyncOptions struct {
	Keyword    string  `json:"keyword"`
	CategoryID string  `json:"category_id"`
	StartPage  int     `json:"start_page"`
	PageSize   int     `json:"page_size"`
	MaxPages   int     `json:"max_pages"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

// SubmitResult carries the supplier-assigned order identifiers
type SubmitResult struct {
	ExternalOrderID     string `json:"external_order_id"`
	ExternalOrderNumber string `json:"external_order_number"`
}

// TrackingUpdate reports the fields a tracking refresh actually changed
type TrackingUpdate struct {
	Status         domain.OrderStatus `json:"status"`
	TrackingNumber *string            `json:"tracking_number,omitempty"`
	CarrierName    *string            `json:"carrier_name,omitempty"`
	ShippedAt      *time.Time         `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time         `json:"delivered_at,omitempty"`
	ChangedFields  []string           `json:"changed_fields"`
}
