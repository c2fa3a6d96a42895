package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/memory"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var fixedNow = time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC)

type fixture struct {
	service   *Service
	orders    *memory.OrderRepository
	snapshots *memory.SnapshotRepository
	patients  *memory.PatientQuery
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orders := memory.NewOrderRepository()
	snapshots := memory.NewSnapshotRepository()
	patients := memory.NewPatientQuery()
	patients.SeedPatients(memory.PatientRecord{
		TenantID:  "tenant-1",
		PatientID: "patient-1",
		Draft: ports.PatientSnapshotDraft{
			PatientID:   "patient-1",
			CustomerID:  "customer-1",
			FirstName:   "Jane",
			LastName:    "Doe",
			DateOfBirth: "1984-02-29",
			Email:       "jane@example.com",
			Phone:       "+1-555-0100",
			BillingAddress: domain.Address{
				Line1: "100 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
			},
			ShippingAddress: domain.Address{
				Line1: "200 Oak Ave", City: "Springfield", State: "IL", PostalCode: "62702", Country: "US",
			},
		},
	})
	service := NewService(orders, snapshots, patients, WithClock(func() time.Time { return fixedNow }))
	return &fixture{service: service, orders: orders, snapshots: snapshots, patients: patients}
}

func (f *fixture) seedPrescription(id string, writtenAt time.Time) {
	f.patients.SeedPrescriptions(memory.PrescriptionRecord{
		TenantID: "tenant-1",
		Draft: ports.PrescriptionSnapshotDraft{
			PatientID:      "patient-1",
			PrescriptionID: id,
			OD:             domain.EyePrescription{Sphere: -1.25, Cylinder: -0.5, Axis: 90},
			OS:             domain.EyePrescription{Sphere: -1.0, Cylinder: -0.75, Axis: 85},
			WrittenAt:      writtenAt,
			DoctorName:     "Dr. Alvarez",
		},
	})
}

func baseCommand() types.CreateOrderCommand {
	return types.CreateOrderCommand{
		TenantID:   "tenant-1",
		CustomerID: "customer-1",
		PatientID:  "patient-1",
		Items: []types.OrderItemInput{
			{SKUID: "sku-lens", Quantity: 2, LensSelection: &domain.LensSelection{Design: "single-vision", Coatings: []string{"anti-reflective"}}},
			{SKUID: "sku-frame", Quantity: 1, FrameSelection: &domain.FrameSelection{FrameID: "frame-9", Color: "black"}},
		},
	}
}

func TestCreateOrder_PersistsAggregateWithSnapshot(t *testing.T) {
	f := newFixture(t)

	order, err := f.service.CreateOrder(context.Background(), baseCommand())
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)

	assert.Equal(t, domain.StatusDraft, order.Status)
	assert.Equal(t, domain.DefaultCurrencyCode, order.CurrencyCode)
	assert.Zero(t, order.SubtotalCents)
	assert.Zero(t, order.TaxCents)
	assert.Zero(t, order.TotalCents)

	require.Len(t, order.Items, 2)
	seen := map[string]bool{}
	for _, item := range order.Items {
		assert.NotEmpty(t, item.ID)
		assert.False(t, seen[item.ID], "item ids must be unique")
		seen[item.ID] = true
		assert.Equal(t, order.ID, item.OrderID)
	}
	assert.Equal(t, "sku-lens", order.Items[0].SKUID)
	assert.Equal(t, int32(2), order.Items[0].Quantity)

	require.NotNil(t, order.PatientSnapshot)
	assert.Equal(t, "patient-1", order.PatientSnapshot.PatientID)
	assert.Equal(t, order.ID, order.PatientSnapshot.OrderID)
	assert.Equal(t, "jane@example.com", order.PatientSnapshot.Email)
	assert.Nil(t, order.PrescriptionSnapshot)

	stored, err := f.snapshots.FindPatientByOrderID(context.Background(), order.ID, "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, order.PatientSnapshot.ID, stored.ID)
}

func TestCreateOrder_SingleClockReading(t *testing.T) {
	f := newFixture(t)
	f.seedPrescription("rx-1", fixedNow.AddDate(0, -2, 0))

	command := baseCommand()
	command.PrescriptionID = "rx-1"
	order, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)

	assert.Equal(t, fixedNow, order.CreatedAt)
	assert.Equal(t, fixedNow, order.UpdatedAt)
	require.NotNil(t, order.PatientSnapshot)
	assert.Equal(t, fixedNow, order.PatientSnapshot.CapturedAt)
	require.NotNil(t, order.PrescriptionSnapshot)
	assert.Equal(t, fixedNow, order.PrescriptionSnapshot.CapturedAt)
}

func TestCreateOrder_ContactOverrides(t *testing.T) {
	f := newFixture(t)

	email := "custom@example.com"
	phone := "+1-555-0199"
	notes := "call before delivery"
	command := baseCommand()
	command.ContactEmail = &email
	command.ContactPhone = &phone
	command.Notes = &notes

	order, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)
	require.NotNil(t, order.PatientSnapshot)
	assert.Equal(t, "custom@example.com", order.PatientSnapshot.Email)
	assert.Equal(t, "+1-555-0199", order.PatientSnapshot.Phone)
	assert.Equal(t, "call before delivery", order.PatientSnapshot.Notes)
	// Names and addresses stay as stored.
	assert.Equal(t, "Jane", order.PatientSnapshot.FirstName)
	assert.Equal(t, "100 Main St", order.PatientSnapshot.BillingAddress.Line1)
}

func TestCreateOrder_ExplicitPrescription(t *testing.T) {
	f := newFixture(t)
	f.seedPrescription("rx-old", fixedNow.AddDate(-1, 0, 0))
	f.seedPrescription("rx-new", fixedNow.AddDate(0, -1, 0))

	command := baseCommand()
	command.PrescriptionID = "rx-old"
	order, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	require.NotNil(t, order.PrescriptionSnapshot)
	assert.Equal(t, "rx-old", order.PrescriptionSnapshot.PrescriptionID)
	assert.Equal(t, order.ID, order.PrescriptionSnapshot.OrderID)
}

func TestCreateOrder_CaptureLatestPrescription(t *testing.T) {
	f := newFixture(t)
	f.seedPrescription("rx-2019", fixedNow.AddDate(-5, 0, 0))
	f.seedPrescription("rx-2023", fixedNow.AddDate(0, -6, 0))
	f.seedPrescription("rx-2021", fixedNow.AddDate(-3, 0, 0))

	command := baseCommand()
	command.CaptureLatestPrescription = true
	order, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	require.NotNil(t, order.PrescriptionSnapshot)
	assert.Equal(t, "rx-2023", order.PrescriptionSnapshot.PrescriptionID)
}

func TestCreateOrder_LatestPrescriptionTieBreak(t *testing.T) {
	f := newFixture(t)
	writtenAt := fixedNow.AddDate(0, -1, 0)
	f.seedPrescription("rx-aaa", writtenAt)
	f.seedPrescription("rx-zzz", writtenAt)
	f.seedPrescription("rx-mmm", writtenAt)

	command := baseCommand()
	command.CaptureLatestPrescription = true
	order, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)

	require.NotNil(t, order.PrescriptionSnapshot)
	assert.Equal(t, "rx-zzz", order.PrescriptionSnapshot.PrescriptionID)
}

func TestCreateOrder_PendingEvenWhenPrescriptionMissing(t *testing.T) {
	f := newFixture(t)

	command := baseCommand()
	command.PrescriptionID = "rx-unknown"
	order, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Nil(t, order.PrescriptionSnapshot)

	stored, err := f.snapshots.FindPrescriptionByOrderID(context.Background(), order.ID, "tenant-1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCreateOrder_PatientNotFoundAbortsBeforeWrites(t *testing.T) {
	f := newFixture(t)

	command := baseCommand()
	command.PatientID = "patient-unknown"
	_, err := f.service.CreateOrder(context.Background(), command)
	require.ErrorIs(t, err, ErrPatientNotFound)

	assert.Zero(t, f.orders.Len(), "no order may be written when the patient lookup fails")
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noItems := baseCommand()
	noItems.Items = nil
	_, err := f.service.CreateOrder(ctx, noItems)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptyItems)

	zeroQuantity := baseCommand()
	zeroQuantity.Items[0].Quantity = 0
	_, err = f.service.CreateOrder(ctx, zeroQuantity)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	emptySKU := baseCommand()
	emptySKU.Items[0].SKUID = ""
	_, err = f.service.CreateOrder(ctx, emptySKU)
	require.ErrorIs(t, err, domain.ErrEmptySKU)

	noTenant := baseCommand()
	noTenant.TenantID = ""
	_, err = f.service.CreateOrder(ctx, noTenant)
	require.ErrorIs(t, err, domain.ErrMissingTenant)

	noCustomer := baseCommand()
	noCustomer.CustomerID = ""
	_, err = f.service.CreateOrder(ctx, noCustomer)
	require.ErrorIs(t, err, domain.ErrMissingCustomer)
}

func TestGetOrderWithPatient_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seedPrescription("rx-1", fixedNow.AddDate(0, -1, 0))

	command := baseCommand()
	command.PrescriptionID = "rx-1"
	created, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)

	fetched, err := f.service.GetOrderWithPatient(context.Background(), types.GetOrderWithPatientQuery{
		OrderID:             created.ID,
		TenantID:            "tenant-1",
		IncludePrescription: true,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	require.NotNil(t, fetched.PatientSnapshot)
	assert.Equal(t, "patient-1", fetched.PatientSnapshot.PatientID)
	require.NotNil(t, fetched.PrescriptionSnapshot)
	assert.Equal(t, "rx-1", fetched.PrescriptionSnapshot.PrescriptionID)
}

func TestGetOrderWithPatient_PrescriptionExcludedByDefault(t *testing.T) {
	f := newFixture(t)
	f.seedPrescription("rx-1", fixedNow.AddDate(0, -1, 0))

	command := baseCommand()
	command.PrescriptionID = "rx-1"
	created, err := f.service.CreateOrder(context.Background(), command)
	require.NoError(t, err)

	fetched, err := f.service.GetOrderWithPatient(context.Background(), types.GetOrderWithPatientQuery{
		OrderID:  created.ID,
		TenantID: "tenant-1",
	})
	require.NoError(t, err)
	require.NotNil(t, fetched.PatientSnapshot)
	assert.Nil(t, fetched.PrescriptionSnapshot)
}

func TestGetOrderWithPatient_TenantMismatchIsAbsence(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.CreateOrder(context.Background(), baseCommand())
	require.NoError(t, err)

	_, err = f.service.GetOrderWithPatient(context.Background(), types.GetOrderWithPatientQuery{
		OrderID:  created.ID,
		TenantID: "tenant-2",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrderWithPatient_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetOrderWithPatient(context.Background(), types.GetOrderWithPatientQuery{
		OrderID:  "no-such-order",
		TenantID: "tenant-1",
	})
	require.ErrorIs(t, err, ErrNotFound)
}
