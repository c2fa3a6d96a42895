package ports

import (
	"context"
	"errors"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
)

// ErrNotFound is returned when an order does not exist for the requesting
// tenant. A tenant mismatch is indistinguishable from absence so existence is
// never leaked across tenants.
var ErrNotFound = errors.New("order not found")

// OrderRepository persists order aggregates scoped by tenant.
type OrderRepository interface {
	// NextIdentity issues a fresh, globally unique order identifier.
	NextIdentity() string
	// Create persists the order. Duplicate-id overwrite protection is not part
	// of the contract; identifiers come from NextIdentity and never collide.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// FindByID loads the order for (orderID, tenantID) or ErrNotFound.
	FindByID(ctx context.Context, orderID, tenantID string) (*domain.Order, error)
}
