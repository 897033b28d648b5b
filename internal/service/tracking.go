package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/domain"
	"github.com/glowmart/cjfulfill/internal/repository"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

type trackingReconciler struct {
	client SupplierClient
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewTrackingReconciler creates the tracking reconciler
func NewTrackingReconciler(client SupplierClient, repos *repository.Repositories, logger *zap.Logger) *trackingReconciler {
	return &trackingReconciler{
		client: client,
		repos:  repos,
		logger: logger,
	}
}

// RefreshTracking fetches the supplier's view of a submitted order, maps its
// status vocabulary onto ours and merges tracking fields non-destructively.
// Returns the set of fields actually changed.
func (t *trackingReconciler) RefreshTracking(ctx context.Context, orderID uuid.UUID) (*TrackingUpdate, error) {
	order, err := t.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ExternalOrderID == nil || *order.ExternalOrderID == "" {
		return nil, &errors.ErrNotSubmitted{OrderID: order.ID.String()}
	}

	// Prefer the supplier's own order number; fall back to the local order
	// number, which the supplier stores as the order reference. The fallback
	// is what lets operators relink orders orphaned by a crash between
	// upstream creation and local persistence.
	lookup := order.OrderNumber
	if order.ExternalOrderNumber != nil && *order.ExternalOrderNumber != "" {
		lookup = *order.ExternalOrderNumber
	}

	remote, err := t.client.GetOrderStatus(ctx, lookup)
	if err != nil {
		return nil, err
	}

	update := &TrackingUpdate{Status: order.Status}

	mapped, recognized := domain.MapSupplierStatus(remote.OrderStatus)
	if !recognized {
		t.logger.Warn("Unrecognized supplier order status, defaulting to processing",
			zap.String("order_id", order.ID.String()),
			zap.String("supplier_status", remote.OrderStatus),
		)
	}
	if mapped != order.Status {
		update.Status = mapped
		update.ChangedFields = append(update.ChangedFields, "status")
	}

	// Non-destructive merge: only non-empty response fields that differ
	// from what we have are persisted. A later empty response never erases
	// earlier data.
	if remote.TrackNumber != "" && (order.TrackingNumber == nil || *order.TrackingNumber != remote.TrackNumber) {
		trackNumber := remote.TrackNumber
		update.TrackingNumber = &trackNumber
		update.ChangedFields = append(update.ChangedFields, "tracking_number")
	}
	if remote.LogisticName != "" && (order.CarrierName == nil || *order.CarrierName != remote.LogisticName) {
		carrier := remote.LogisticName
		update.CarrierName = &carrier
		update.ChangedFields = append(update.ChangedFields, "carrier_name")
	}
	if remote.ShippedAt != nil && order.ShippedAt == nil {
		update.ShippedAt = remote.ShippedAt
		update.ChangedFields = append(update.ChangedFields, "shipped_at")
	}
	if remote.DeliveredAt != nil && order.DeliveredAt == nil {
		update.DeliveredAt = remote.DeliveredAt
		update.ChangedFields = append(update.ChangedFields, "delivered_at")
	}

	if len(update.ChangedFields) == 0 {
		return update, nil
	}

	if update.TrackingNumber != nil || update.CarrierName != nil || update.ShippedAt != nil || update.DeliveredAt != nil {
		if err := t.repos.Order.UpdateTracking(ctx, order.ID, update.TrackingNumber, update.CarrierName, update.ShippedAt, update.DeliveredAt); err != nil {
			return nil, err
		}
	}
	if update.Status != order.Status {
		if err := t.repos.Order.UpdateStatus(ctx, order.ID, update.Status); err != nil {
			return nil, err
		}
	}

	t.logger.Info("Tracking refreshed",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(update.Status)),
		zap.Strings("changed_fields", update.ChangedFields),
	)

	return update, nil
}
