// Package observability decorates the orders service with tracing, logging,
// and metrics.
package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

const tracerName = "github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates an orders service port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateOrder persists a new order aggregate with instrumentation. Patient
// identifiers never reach span attributes or log lines; only order-level
// fields are recorded.
func (s *Service) CreateOrder(ctx context.Context, command types.CreateOrderCommand) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.CreateOrder",
		attribute.String("order.tenant_id", command.TenantID),
		attribute.Int("order.items.count", len(command.Items)),
		attribute.Bool("order.capture_latest_prescription", command.CaptureLatestPrescription),
	)
	defer span.End()

	s.logInfo(ctx, "creating order",
		slog.String("tenant.id", command.TenantID),
		slog.Int("items.count", len(command.Items)),
	)
	result, err := s.inner.CreateOrder(ctx, command)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("tenant.id", command.TenantID))
	}
	span.SetAttributes(attribute.String("order.id", result.ID), attribute.String("order.status", string(result.Status)))
	s.metrics.recordCreated(ctx, result.Status)
	s.logInfo(ctx, "order created",
		slog.String("order.id", result.ID),
		slog.String("order.status", string(result.Status)),
		slog.Bool("order.has_prescription", result.PrescriptionSnapshot != nil),
	)
	return result, nil
}

// GetOrderWithPatient loads an order with its snapshots merged on.
func (s *Service) GetOrderWithPatient(ctx context.Context, query types.GetOrderWithPatientQuery) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "OrderService.GetOrderWithPatient",
		attribute.String("order.id", query.OrderID),
		attribute.String("order.tenant_id", query.TenantID),
		attribute.Bool("order.include_prescription", query.IncludePrescription),
	)
	defer span.End()

	result, err := s.inner.GetOrderWithPatient(ctx, query)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", query.OrderID))
	}
	s.metrics.recordFetched(ctx)
	s.logInfo(ctx, "order loaded",
		slog.String("order.id", result.ID),
		slog.Bool("order.has_patient", result.PatientSnapshot != nil),
	)
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated metric.Int64Counter
	ordersFetched metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	ordersFetched, _ := m.Int64Counter("orders.service.fetched", metric.WithDescription("Number of order lookups"))
	return serviceMetrics{
		ordersCreated: ordersCreated,
		ordersFetched: ordersFetched,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.ordersCreated, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordFetched(ctx context.Context) {
	addCounter(ctx, m.ordersFetched, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
