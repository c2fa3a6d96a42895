// Package types holds the command and query shapes exchanged between adapters
// and the orders application service. They live in their own package so ports
// can reference them without importing the application package.
package types

import "github.com/lensworks/optical-orders-api/internal/domains/orders/domain"

// CreateOrderCommand is the validated input for order creation. The HTTP layer
// is responsible for DTO validation and for resolving the tenant id from the
// caller's identity; the core copies the fields verbatim.
type CreateOrderCommand struct {
	TenantID                  string
	CustomerID                string
	PatientID                 string
	PrescriptionID            string
	CaptureLatestPrescription bool
	ContactEmail              *string
	ContactPhone              *string
	ShippingAddressID         string
	BillingAddressID          string
	Notes                     *string
	Items                     []OrderItemInput
	Metadata                  map[string]any
	// IdempotencyKey is accepted but not enforced by the core service. The
	// durable orchestrator uses it to derive a stable workflow id.
	IdempotencyKey string
}

// OrderItemInput carries one requested line item.
type OrderItemInput struct {
	SKUID          string
	Quantity       int32
	LensSelection  *domain.LensSelection
	FrameSelection *domain.FrameSelection
}

// GetOrderWithPatientQuery loads an order with its snapshots merged on.
type GetOrderWithPatientQuery struct {
	OrderID             string
	TenantID            string
	IncludePrescription bool
}
