package domain

import "strings"

// OrderStatus represents the status of a local order
type OrderStatus string

const (
	// PENDING - created by checkout, not yet submitted to the supplier
	OrderStatusPending OrderStatus = "pending"
	// PROCESSING - submitted to the supplier, being prepared
	OrderStatusProcessing OrderStatus = "processing"
	// PAYMENT_CONFIRMED - supplier confirmed payment for the order
	OrderStatusPaymentConfirmed OrderStatus = "payment_confirmed"
	// SHIPPED - supplier handed the parcel to the carrier
	OrderStatusShipped OrderStatus = "shipped"
	// DELIVERED - carrier reported delivery
	OrderStatusDelivered OrderStatus = "delivered"
	// CANCELLED - order cancelled on either side
	OrderStatusCancelled OrderStatus = "cancelled"
	// FAILED - submission to the supplier failed
	OrderStatusFailed OrderStatus = "failed"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusPaymentConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusFailed:
		return true
	default:
		return false
	}
}

// SyncStatus represents the status of a sync run
type SyncStatus string

const (
	SyncStatusStarted SyncStatus = "started"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusFailed  SyncStatus = "failed"
)

// supplierStatusTable maps the supplier's status vocabulary onto ours.
// Closed table: anything not listed falls back to processing so an unknown
// upstream string can never push an order into a terminal state.
var supplierStatusTable = map[string]OrderStatus{
	"pending":           OrderStatusPending,
	"processing":        OrderStatusProcessing,
	"payment_confirmed": OrderStatusPaymentConfirmed,
	"in_production":     OrderStatusProcessing,
	"shipped":           OrderStatusShipped,
	"in_transit":        OrderStatusShipped,
	"delivered":         OrderStatusDelivered,
	"cancelled":         OrderStatusCancelled,
	"failed":            OrderStatusFailed,
}

// MapSupplierStatus maps a supplier status string (case-insensitive) to a
// local OrderStatus. The second return reports whether the string was
// recognized; unrecognized strings map to processing.
func MapSupplierStatus(supplierStatus string) (OrderStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(supplierStatus))
	if status, ok := supplierStatusTable[key]; ok {
		return status, true
	}
	return OrderStatusProcessing, false
}
