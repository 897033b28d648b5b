package cj

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// CreateOrderRequest is the CJ order-creation body.
type CreateOrderRequest struct {
	OrderNumber         string         `json:"orderNumber"`
	ShippingCustomer    string         `json:"shippingCustomerName"`
	ShippingAddress     string         `json:"shippingAddress"`
	ShippingCity        string         `json:"shippingCity"`
	ShippingProvince    string         `json:"shippingProvince"`
	ShippingCountry     string         `json:"shippingCountry"`
	ShippingCountryCode string         `json:"shippingCountryCode"`
	ShippingZip         string         `json:"shippingZip"`
	ShippingPhone       string         `json:"shippingPhone"`
	Email               string         `json:"email"`
	Products            []OrderProduct `json:"products"`
	TotalAmount         float64        `json:"totalAmount"`
}

// OrderProduct is one line item of an order-creation request. Order of the
// slice is preserved as submitted.
type OrderProduct struct {
	VID        string `json:"vid"`
	Quantity   int    `json:"quantity"`
	LineItemID string `json:"lineItemId"`
}

// CreateOrderResult carries the supplier-assigned identifiers.
type CreateOrderResult struct {
	OrderID  string `json:"orderId"`
	OrderNum string `json:"orderNum"`
}

// TrackingEvent is one entry of a shipment's tracking history.
type TrackingEvent struct {
	Status      string     `json:"status"`
	Description string     `json:"description"`
	OccurredAt  *time.Time `json:"occurredAt"`
}

// OrderStatusResult is the supplier's view of a submitted order.
type OrderStatusResult struct {
	OrderID      string          `json:"orderId"`
	OrderNum     string          `json:"orderNum"`
	OrderStatus  string          `json:"orderStatus"`
	TrackNumber  string          `json:"trackNumber"`
	LogisticName string          `json:"logisticName"`
	ShippedAt    *time.Time      `json:"shippedAt"`
	DeliveredAt  *time.Time      `json:"deliveredAt"`
	Events       []TrackingEvent `json:"trackingEvents"`
}

// CreateOrder submits an order to the supplier for fulfillment.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	var result CreateOrderResult
	if err := c.do(ctx, http.MethodPost, "/shopping/order/createOrder", nil, req, &result, CallOptions{}); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrderStatus fetches the current status and tracking data for a
// previously submitted order, looked up by order number.
func (c *Client) GetOrderStatus(ctx context.Context, orderNum string) (*OrderStatusResult, error) {
	query := url.Values{}
	query.Set("orderNum", orderNum)

	var result OrderStatusResult
	if err := c.do(ctx, http.MethodGet, "/shopping/order/getOrderDetail", query, nil, &result, CallOptions{}); err != nil {
		return nil, err
	}
	return &result, nil
}
