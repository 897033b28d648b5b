package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, order_number, status, customer_name, customer_email, customer_phone,
	shipping_address, total, external_order_id, external_order_number,
	tracking_number, carrier_name, failure_reason, submitted_at, shipped_at,
	delivered_at, created_at, updated_at
`

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.getOne(ctx, query, id, id.String())
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return r.getOne(ctx, query, orderNumber, orderNumber)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg interface{}, idForErr string) (*domain.Order, error) {
	var order domain.Order
	var shippingAddressJSON []byte
	var customerEmail sql.NullString
	var customerPhone sql.NullString
	var externalOrderID sql.NullString
	var externalOrderNumber sql.NullString
	var trackingNumber sql.NullString
	var carrierName sql.NullString
	var failureReason sql.NullString
	var submittedAt sql.NullTime
	var shippedAt sql.NullTime
	var deliveredAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.Status,
		&order.CustomerName,
		&customerEmail,
		&customerPhone,
		&shippingAddressJSON,
		&order.Total,
		&externalOrderID,
		&externalOrderNumber,
		&trackingNumber,
		&carrierName,
		&failureReason,
		&submittedAt,
		&shippedAt,
		&deliveredAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: idForErr}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.Error(err))
		return nil, err
	}

	if customerEmail.Valid {
		order.CustomerEmail = customerEmail.String
	}
	if customerPhone.Valid {
		order.CustomerPhone = customerPhone.String
	}
	if externalOrderID.Valid {
		order.ExternalOrderID = &externalOrderID.String
	}
	if externalOrderNumber.Valid {
		order.ExternalOrderNumber = &externalOrderNumber.String
	}
	if trackingNumber.Valid {
		order.TrackingNumber = &trackingNumber.String
	}
	if carrierName.Valid {
		order.CarrierName = &carrierName.String
	}
	if failureReason.Valid {
		order.FailureReason = &failureReason.String
	}
	if submittedAt.Valid {
		order.SubmittedAt = &submittedAt.Time
	}
	if shippedAt.Valid {
		order.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}

	if len(shippingAddressJSON) > 0 {
		if err := json.Unmarshal(shippingAddressJSON, &order.ShippingAddress); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

func (r *orderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, external_variant_id, sku, name, price, quantity, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to list order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ExternalVariantID,
			&item.SKU,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *orderRepository) ClaimSubmission(ctx context.Context, id uuid.UUID, externalOrderID, externalOrderNumber string, submittedAt time.Time) (bool, error) {
	// Conditional write: only the first submission can set the external id.
	query := `
		UPDATE orders
		SET external_order_id = $2,
			external_order_number = $3,
			status = $4,
			failure_reason = NULL,
			submitted_at = $5,
			updated_at = $6
		WHERE id = $1 AND external_order_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		id,
		externalOrderID,
		externalOrderNumber,
		domain.OrderStatusProcessing,
		submittedAt,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to claim order submission", zap.Error(err))
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *orderRepository) MarkSubmissionFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE orders
		SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, domain.OrderStatusFailed, reason, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark order submission failed", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) UpdateTracking(ctx context.Context, id uuid.UUID, trackingNumber, carrierName *string, shippedAt, deliveredAt *time.Time) error {
	// COALESCE keeps earlier values: the supplier's tracking fields appear
	// progressively and a later empty response must not erase them.
	query := `
		UPDATE orders
		SET tracking_number = COALESCE($2, tracking_number),
			carrier_name = COALESCE($3, carrier_name),
			shipped_at = COALESCE($4, shipped_at),
			delivered_at = COALESCE($5, delivered_at),
			updated_at = $6
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, trackingNumber, carrierName, shippedAt, deliveredAt, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order tracking", zap.Error(err))
		return err
	}

	return nil
}
