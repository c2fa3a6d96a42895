package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository is an in-memory order persistence adapter used for unit
// tests and the no-database development fallback.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: map[string]*domain.Order{}}
}

func (r *OrderRepository) NextIdentity() string {
	return uuid.NewString()
}

func (r *OrderRepository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[clone.ID] = clone
	return clone.Clone(), nil
}

// Len reports the number of stored orders across all tenants.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func (r *OrderRepository) FindByID(_ context.Context, orderID, tenantID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderID]
	if !ok || order.TenantID != tenantID {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}
