package ports

import (
	"context"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator exposes durable workflow operations required by the
// orders bounded context.
type WorkflowOrchestrator interface {
	CreateOrder(ctx context.Context, command types.CreateOrderCommand) (*domain.Order, error)
}
