package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

// Service orchestrates the orders use cases: it resolves snapshot drafts,
// assembles the order aggregate, and coordinates writes across the order and
// snapshot repositories.
type Service struct {
	orders    ports.OrderRepository
	snapshots ports.PatientSnapshotRepository
	patients  ports.PatientQueryService
	now       func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the orders service with its collaborators.
func NewService(orders ports.OrderRepository, snapshots ports.PatientSnapshotRepository, patients ports.PatientQueryService, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		snapshots: snapshots,
		patients:  patients,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder builds and persists a new order together with its patient
// snapshot and, when requested, a prescription snapshot. The patient lookup is
// the first fallible step; when it fails nothing has been written. The three
// persistence steps that follow are not wrapped in one transaction, so a crash
// between them can leave an order without its snapshots.
func (s *Service) CreateOrder(ctx context.Context, command types.CreateOrderCommand) (*domain.Order, error) {
	if err := validateCommand(command); err != nil {
		return nil, mapError(err)
	}

	orderID := s.orders.NextIdentity()
	// One clock reading for createdAt/updatedAt and both snapshot captures,
	// so fields written in the same logical operation never skew.
	now := s.now()

	items := make([]domain.OrderItem, 0, len(command.Items))
	for _, input := range command.Items {
		items = append(items, domain.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        orderID,
			SKUID:          input.SKUID,
			Quantity:       input.Quantity,
			LensSelection:  input.LensSelection,
			FrameSelection: input.FrameSelection,
		})
	}

	patientDraft, err := s.patients.GetPatientSnapshotDraft(ctx, command.PatientID, ports.PatientDraftOptions{
		TenantID:          command.TenantID,
		BillingAddressID:  command.BillingAddressID,
		ShippingAddressID: command.ShippingAddressID,
		ContactEmail:      command.ContactEmail,
		ContactPhone:      command.ContactPhone,
		Notes:             command.Notes,
	})
	if err != nil {
		return nil, mapError(err)
	}
	patientSnapshot := buildPatientSnapshot(orderID, command.TenantID, now, patientDraft)

	prescriptionSnapshot, err := s.resolvePrescriptionSnapshot(ctx, orderID, now, command)
	if err != nil {
		return nil, mapError(err)
	}

	order := &domain.Order{
		ID:           orderID,
		TenantID:     command.TenantID,
		CustomerID:   command.CustomerID,
		Status:       initialStatus(command),
		CurrencyCode: domain.DefaultCurrencyCode,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items:        items,
	}

	persisted, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.SavePatientSnapshot(ctx, patientSnapshot); err != nil {
		return nil, err
	}
	if prescriptionSnapshot != nil {
		if err := s.snapshots.SavePrescriptionSnapshot(ctx, prescriptionSnapshot); err != nil {
			return nil, err
		}
	}

	// Merge the in-memory snapshots rather than re-reading them, so the caller
	// sees exactly what was written without another round trip.
	persisted.PatientSnapshot = patientSnapshot
	persisted.PrescriptionSnapshot = prescriptionSnapshot
	return persisted, nil
}

// GetOrderWithPatient loads the order scoped by tenant and merges whichever
// snapshots exist onto it. The prescription lookup is skipped entirely unless
// the caller asked for it.
func (s *Service) GetOrderWithPatient(ctx context.Context, query types.GetOrderWithPatientQuery) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, query.OrderID, query.TenantID)
	if err != nil {
		return nil, mapError(err)
	}

	patientSnapshot, err := s.snapshots.FindPatientByOrderID(ctx, query.OrderID, query.TenantID)
	if err != nil {
		return nil, err
	}
	order.PatientSnapshot = patientSnapshot

	if query.IncludePrescription {
		prescriptionSnapshot, err := s.snapshots.FindPrescriptionByOrderID(ctx, query.OrderID, query.TenantID)
		if err != nil {
			return nil, err
		}
		order.PrescriptionSnapshot = prescriptionSnapshot
	}
	return order, nil
}

// initialStatus models "needs prescription review" vs "not yet
// prescription-bound": pending whenever a prescription was asked for, even if
// no matching prescription draft was found.
func initialStatus(command types.CreateOrderCommand) domain.Status {
	if command.PrescriptionID != "" || command.CaptureLatestPrescription {
		return domain.StatusPending
	}
	return domain.StatusDraft
}

func buildPatientSnapshot(orderID, tenantID string, capturedAt time.Time, draft *ports.PatientSnapshotDraft) *domain.PatientSnapshot {
	return &domain.PatientSnapshot{
		ID:              uuid.NewString(),
		OrderID:         orderID,
		TenantID:        tenantID,
		PatientID:       draft.PatientID,
		CustomerID:      draft.CustomerID,
		FirstName:       draft.FirstName,
		LastName:        draft.LastName,
		DateOfBirth:     draft.DateOfBirth,
		Email:           draft.Email,
		Phone:           draft.Phone,
		BillingAddress:  draft.BillingAddress,
		ShippingAddress: draft.ShippingAddress,
		Notes:           draft.Notes,
		CapturedAt:      capturedAt,
	}
}

// resolvePrescriptionSnapshot picks the draft by priority: explicit
// prescription id first, then the patient's latest when capture was requested,
// otherwise none. A missing prescription is not an error.
func (s *Service) resolvePrescriptionSnapshot(ctx context.Context, orderID string, capturedAt time.Time, command types.CreateOrderCommand) (*domain.PrescriptionSnapshot, error) {
	var draft *ports.PrescriptionSnapshotDraft
	var err error

	switch {
	case command.PrescriptionID != "":
		draft, err = s.patients.GetPrescriptionSnapshotDraft(ctx, command.PrescriptionID, command.TenantID)
	case command.CaptureLatestPrescription:
		draft, err = s.patients.GetLatestPrescriptionSnapshotDraft(ctx, command.PatientID, command.TenantID)
	}
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, nil
	}

	return &domain.PrescriptionSnapshot{
		ID:                uuid.NewString(),
		OrderID:           orderID,
		TenantID:          command.TenantID,
		PatientID:         draft.PatientID,
		PrescriptionID:    draft.PrescriptionID,
		OD:                draft.OD,
		OS:                draft.OS,
		AddPower:          draft.AddPower,
		PupillaryDistance: draft.PupillaryDistance,
		SegmentHeight:     draft.SegmentHeight,
		WrittenAt:         draft.WrittenAt,
		ExpiresAt:         draft.ExpiresAt,
		DoctorName:        draft.DoctorName,
		DoctorLicense:     draft.DoctorLicense,
		CapturedAt:        capturedAt,
	}, nil
}

func validateCommand(command types.CreateOrderCommand) error {
	if command.TenantID == "" {
		return domain.ErrMissingTenant
	}
	if command.CustomerID == "" {
		return domain.ErrMissingCustomer
	}
	if len(command.Items) == 0 {
		return domain.ErrEmptyItems
	}
	for _, item := range command.Items {
		if item.SKUID == "" {
			return domain.ErrEmptySKU
		}
		if item.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
