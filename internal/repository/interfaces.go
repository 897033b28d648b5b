package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glowmart/cjfulfill/internal/domain"
)

// ProductRepository defines local catalog data access methods
type ProductRepository interface {
	// Upsert inserts or fully replaces the mutable fields of a product,
	// keyed by external_product_id. Reports whether a new row was inserted.
	Upsert(ctx context.Context, product *domain.Product) (inserted bool, err error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
}

// OrderRepository defines local order data access methods
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
	// ClaimSubmission persists the supplier-assigned identifiers and moves
	// the order to processing, but only if no external order id is set yet.
	// Returns false when another submission already claimed the order.
	ClaimSubmission(ctx context.Context, id uuid.UUID, externalOrderID, externalOrderNumber string, submittedAt time.Time) (bool, error)
	MarkSubmissionFailed(ctx context.Context, id uuid.UUID, reason string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	// UpdateTracking merges non-nil tracking fields; nil arguments never
	// overwrite previously stored values.
	UpdateTracking(ctx context.Context, id uuid.UUID, trackingNumber, carrierName *string, shippedAt, deliveredAt *time.Time) error
}

// SyncRunRepository defines sync audit record data access methods
type SyncRunRepository interface {
	Create(ctx context.Context, run *domain.SyncRun) error
	// Finish writes the final counters, status, completion time and duration.
	Finish(ctx context.Context, run *domain.SyncRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncRun, error)
	List(ctx context.Context, limit, offset int) ([]*domain.SyncRun, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Product ProductRepository
	Order   OrderRepository
	SyncRun SyncRunRepository
}
