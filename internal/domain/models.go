package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is the local catalog record for a supplier-sourced product.
// Products with a non-nil ExternalProductID are owned by the sync engine:
// other flows read price/stock but never write supplier-sourced fields.
type Product struct {
	ID                uuid.UUID
	SKU               string
	Name              string
	Description       string
	BasePrice         float64
	DisplayPrice      float64 // BasePrice * margin multiplier
	Stock             int
	Images            []string
	Variants          []ProductVariant
	ExternalProductID *string
	CategoryID        *string
	CategoryName      *string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProductVariant is a purchasable variation of a product. Stored as JSONB
// under the product; no independent lifecycle.
type ProductVariant struct {
	ExternalVariantID string  `json:"external_variant_id"`
	Name              string  `json:"name"`
	SKU               string  `json:"sku"`
	SellPrice         float64 `json:"sell_price"`
	Stock             int     `json:"stock"`
}

// Order is the local order record. The supplier-related fields
// (ExternalOrderID onward) are written only by the submission and tracking
// services; checkout creates the order in status pending.
type Order struct {
	ID                  uuid.UUID
	OrderNumber         string
	Status              OrderStatus
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	ShippingAddress     map[string]interface{} // JSONB
	Total               float64
	ExternalOrderID     *string
	ExternalOrderNumber *string
	TrackingNumber      *string
	CarrierName         *string
	FailureReason       *string
	SubmittedAt         *time.Time
	ShippedAt           *time.Time
	DeliveredAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OrderItem is a line item of an order.
type OrderItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ExternalVariantID string
	SKU               string
	Name              string
	Price             float64
	Quantity          int
	CreatedAt         time.Time
}

// SyncRun is the audit record of one catalog sync execution. It is created
// with status started and finalized exactly once, on every exit path.
type SyncRun struct {
	ID             uuid.UUID
	SyncType       string
	Status         SyncStatus
	ItemsProcessed int
	ItemsCreated   int
	ItemsUpdated   int
	ItemsFailed    int
	ErrorMessages  []string
	StartedAt      time.Time
	CompletedAt    *time.Time
	DurationMs     *int64
}
