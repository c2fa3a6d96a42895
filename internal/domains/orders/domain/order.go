package domain

import (
	"errors"
	"time"
)

// Status enumerates order progression within the creation workflow.
type Status string

const (
	// StatusDraft marks an order that is not yet prescription-bound.
	StatusDraft Status = "draft"
	// StatusPending marks an order awaiting prescription review.
	StatusPending Status = "pending"
)

// DefaultCurrencyCode is the only currency supported by order creation.
const DefaultCurrencyCode = "USD"

var (
	ErrEmptyItems       = errors.New("order requires at least one item")
	ErrInvalidQuantity  = errors.New("item quantity must be greater than zero")
	ErrEmptySKU         = errors.New("item sku id must not be empty")
	ErrInvalidStatus    = errors.New("order status is invalid")
	ErrMissingTenant    = errors.New("order tenant id must not be empty")
	ErrMissingCustomer  = errors.New("order customer id must not be empty")
)

// Order is the aggregate root: the order entity with its embedded items and
// optional point-in-time snapshots. An order belongs to exactly one tenant for
// its entire lifetime; every read and write is scoped by (ID, TenantID).
type Order struct {
	ID            string
	TenantID      string
	CustomerID    string
	Status        Status
	CurrencyCode  string
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []OrderItem

	PatientSnapshot      *PatientSnapshot
	PrescriptionSnapshot *PrescriptionSnapshot
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.TenantID == "" {
		return ErrMissingTenant
	}
	if o.CustomerID == "" {
		return ErrMissingCustomer
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if len(o.Items) == 0 {
		return ErrEmptyItems
	}
	for i := range o.Items {
		if err := o.Items[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so repository adapters never alias caller state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = make([]OrderItem, len(o.Items))
	for i := range o.Items {
		clone.Items[i] = *o.Items[i].Clone()
	}
	clone.PatientSnapshot = o.PatientSnapshot.Clone()
	clone.PrescriptionSnapshot = o.PrescriptionSnapshot.Clone()
	return &clone
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusDraft, StatusPending:
		return true
	default:
		return false
	}
}
