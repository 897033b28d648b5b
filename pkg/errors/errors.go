package errors

import "fmt"

// ErrConfiguration is returned when required credentials or settings are missing.
// It is fatal and never retried.
type ErrConfiguration struct {
	Setting string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Setting)
}

// ErrUpstreamAuth is returned when the supplier token endpoint rejects the
// credentials or returns a response we cannot parse.
type ErrUpstreamAuth struct {
	Message string
}

func (e *ErrUpstreamAuth) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supplier authentication failed: %s", e.Message)
	}
	return "supplier authentication failed"
}

// ErrSupplierAPI is returned after the supplier API call fails and all retries
// are exhausted. It carries the last attempt's status and message.
type ErrSupplierAPI struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *ErrSupplierAPI) Error() string {
	return fmt.Sprintf("supplier API error (http %d, code %d): %s", e.HTTPStatus, e.Code, e.Message)
}

// ErrAlreadySubmitted is returned when an order already has an external order ID.
type ErrAlreadySubmitted struct {
	OrderID         string
	ExternalOrderID string
}

func (e *ErrAlreadySubmitted) Error() string {
	return fmt.Sprintf("order %s already submitted to supplier as %s", e.OrderID, e.ExternalOrderID)
}

// ErrNotSubmitted is returned when tracking is requested for an order that was
// never submitted to the supplier.
type ErrNotSubmitted struct {
	OrderID string
}

func (e *ErrNotSubmitted) Error() string {
	return fmt.Sprintf("order %s has not been submitted to supplier", e.OrderID)
}

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}
