package ports

import (
	"context"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
)

// Service exposes the orders use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, command types.CreateOrderCommand) (*domain.Order, error)
	GetOrderWithPatient(ctx context.Context, query types.GetOrderWithPatientQuery) (*domain.Order, error)
}
