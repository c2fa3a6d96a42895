package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	orderstypes "github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

// PersistOrderActivityName creates the order aggregate with its snapshots.
const PersistOrderActivityName = "orders.activities.PersistOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// PersistOrder runs order creation end to end: snapshot capture plus the three
// repository writes. The whole use case is one activity so Temporal retries
// never interleave partially written orders.
func (a *Activities) PersistOrder(ctx context.Context, command orderstypes.CreateOrderCommand) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order persist activity not initialized", "tenantId", command.TenantID)
		return nil, errors.New("order persist activity not initialized")
	}
	logger.Info("PersistOrder activity started", "tenantId", command.TenantID, "patientId", command.PatientID)
	order, err := a.service.CreateOrder(ctx, command)
	if err != nil {
		logger.Error("PersistOrder activity failed", "tenantId", command.TenantID, "error", err)
		return nil, err
	}
	logger.Info("PersistOrder activity completed", "orderId", order.ID, "status", string(order.Status))
	return order, nil
}
