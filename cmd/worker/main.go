package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordersmemory "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/lensworks/optical-orders-api/internal/domains/orders/application"
	ordersports "github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/lensworks/optical-orders-api/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/lensworks/optical-orders-api/internal/durable/temporal/workflows/orders"
	"github.com/lensworks/optical-orders-api/internal/platform/migrations"
	platformobservability "github.com/lensworks/optical-orders-api/internal/platform/observability"
	platformpostgres "github.com/lensworks/optical-orders-api/internal/platform/postgres"
)

func main() {
	ctx := context.Background()
	const serviceName = "optical-orders-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orderRepo, snapshotRepo, patientQuery, cleanupRepo := buildCollaborators(ctx, logger)
	defer cleanupRepo()
	orderService := ordersapp.NewService(orderRepo, snapshotRepo, patientQuery)
	orderActivities := orderactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderCreationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCreationWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.PersistOrder, activity.RegisterOptions{Name: orderactivities.PersistOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderCreationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildCollaborators(ctx context.Context, logger *slog.Logger) (ordersports.OrderRepository, ordersports.PatientSnapshotRepository, ordersports.PatientQueryService, func()) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, worker falling back to in-memory repositories")
		return ordersmemory.NewOrderRepository(), ordersmemory.NewSnapshotRepository(), ordersmemory.NewPatientQuery(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return ordersmemory.NewOrderRepository(), ordersmemory.NewSnapshotRepository(), ordersmemory.NewPatientQuery(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection (falling back to memory)", slog.String("error", err.Error()))
		return ordersmemory.NewOrderRepository(), ordersmemory.NewSnapshotRepository(), ordersmemory.NewPatientQuery(), func() {}
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("worker failed to run migrations", slog.String("error", err.Error()))
	}
	logger.Info("worker repositories configured with postgres")
	return orderspostgres.NewOrderRepository(db), orderspostgres.NewSnapshotRepository(db), orderspostgres.NewPatientQuery(db), func() { _ = sqlDB.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
