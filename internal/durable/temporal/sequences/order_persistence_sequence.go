package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderstypes "github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	orderactivities "github.com/lensworks/optical-orders-api/internal/durable/temporal/activities/orders"
)

// RunOrderPersistenceSequence executes the activity that persists an order
// aggregate together with its snapshots.
func RunOrderPersistenceSequence(ctx workflow.Context, command orderstypes.CreateOrderCommand) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order persistence sequence started", "tenantId", command.TenantID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var order domain.Order
	err := workflow.ExecuteActivity(ctx, orderactivities.PersistOrderActivityName, command).Get(ctx, &order)
	if err != nil {
		logger.Error("order persistence sequence failed", "tenantId", command.TenantID, "error", err)
		return nil, err
	}
	logger.Info("order persistence sequence completed", "orderId", order.ID)
	return &order, nil
}
