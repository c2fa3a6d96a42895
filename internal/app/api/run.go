// Package api boots the optical orders HTTP process: configuration,
// observability, repositories, workflows, and the gin router.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordershttp "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/http"
	ordersmemory "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/observability"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/patientdirectory"
	orderspostgres "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/lensworks/optical-orders-api/internal/domains/orders/application"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	ordersports "github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
	"github.com/lensworks/optical-orders-api/internal/platform/migrations"
	platformobservability "github.com/lensworks/optical-orders-api/internal/platform/observability"
	platformpostgres "github.com/lensworks/optical-orders-api/internal/platform/postgres"
)

// Run boots the orders HTTP API with observability, repositories, and
// workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "optical-orders-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectDatabase(ctx, cfg, logger)
	defer cleanupDB()

	orderRepo, snapshotRepo := buildRepositories(db, logger)
	patientQuery := buildPatientQuery(cfg, db, logger)

	coreService := ordersapp.NewService(orderRepo, snapshotRepo, patientQuery)
	orderService := ordersobs.New(
		coreService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline CreateOrder", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ordershttp.NewOrderAPI(orderService, orderWorkflows).Register(router)

	addr := ":" + cfg.Port
	logger.Info("orders API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("orders API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func connectDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		return nil, cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
	}
	return db, cleanup
}

func buildRepositories(db *gorm.DB, logger *slog.Logger) (ordersports.OrderRepository, ordersports.PatientSnapshotRepository) {
	if db == nil {
		return ordersmemory.NewOrderRepository(), ordersmemory.NewSnapshotRepository()
	}
	logger.Info("order repositories configured with postgres")
	return orderspostgres.NewOrderRepository(db), orderspostgres.NewSnapshotRepository(db)
}

func buildPatientQuery(cfg Config, db *gorm.DB, logger *slog.Logger) ordersports.PatientQueryService {
	if cfg.PatientDirectoryURL != "" {
		client, err := patientdirectory.NewClient(cfg.PatientDirectoryURL, nil)
		if err == nil {
			logger.Info("patient query configured with patient directory", slog.String("url", cfg.PatientDirectoryURL))
			return client
		}
		logger.Warn("invalid patient directory configuration", slog.String("error", err.Error()))
	}
	if db != nil {
		logger.Info("patient query configured with postgres")
		return orderspostgres.NewPatientQuery(db)
	}
	logger.Warn("patient query falling back to seeded in-memory data")
	return seededPatientQuery()
}

// seededPatientQuery provides demo data so the API is explorable without a
// database or a patient directory.
func seededPatientQuery() *ordersmemory.PatientQuery {
	query := ordersmemory.NewPatientQuery()
	address := domain.Address{
		Line1:      "100 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
	query.SeedPatients(ordersmemory.PatientRecord{
		TenantID:  "tenant-demo",
		PatientID: "patient-demo",
		Draft: ordersports.PatientSnapshotDraft{
			PatientID:       "patient-demo",
			CustomerID:      "customer-demo",
			FirstName:       "Jane",
			LastName:        "Doe",
			DateOfBirth:     "1984-02-29",
			Email:           "jane@example.com",
			Phone:           "+1-555-0100",
			BillingAddress:  address,
			ShippingAddress: address,
		},
	})
	query.SeedPrescriptions(ordersmemory.PrescriptionRecord{
		TenantID: "tenant-demo",
		Draft: ordersports.PrescriptionSnapshotDraft{
			PatientID:      "patient-demo",
			PrescriptionID: "rx-demo",
			OD:             domain.EyePrescription{Sphere: -1.25, Cylinder: -0.5, Axis: 90},
			OS:             domain.EyePrescription{Sphere: -1.0, Cylinder: -0.75, Axis: 85},
			WrittenAt:      time.Now().UTC().AddDate(0, -1, 0),
			DoctorName:     "Dr. Alvarez",
		},
	})
	return query
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
