//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
	"github.com/lensworks/optical-orders-api/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func sampleOrder(repo *OrderRepository) *domain.Order {
	orderID := repo.NextIdentity()
	now := time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC)
	return &domain.Order{
		ID:           orderID,
		TenantID:     "tenant-1",
		CustomerID:   "customer-1",
		Status:       domain.StatusPending,
		CurrencyCode: domain.DefaultCurrencyCode,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items: []domain.OrderItem{
			{
				ID:       repo.NextIdentity(),
				OrderID:  orderID,
				SKUID:    "sku-lens",
				Quantity: 2,
				LensSelection: &domain.LensSelection{
					Design:   "progressive",
					Material: "polycarbonate",
					Coatings: []string{"anti-reflective", "blue-light"},
					Tint:     "gray",
				},
			},
			{
				ID:             repo.NextIdentity(),
				OrderID:        orderID,
				SKUID:          "sku-frame",
				Quantity:       1,
				FrameSelection: &domain.FrameSelection{FrameID: "frame-9", Color: "black", Size: "52-18-140"},
			},
		},
	}
}

func TestOrderRepository_CreateAndFindByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := sampleOrder(repo)
	saved, err := repo.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, order.ID, saved.ID)
	assert.Equal(t, domain.StatusPending, saved.Status)

	fetched, err := repo.FindByID(ctx, order.ID, "tenant-1")
	require.NoError(t, err)
	require.Len(t, fetched.Items, 2)
	assert.Equal(t, "sku-lens", fetched.Items[0].SKUID, "item order must be preserved")
	require.NotNil(t, fetched.Items[0].LensSelection)
	assert.Equal(t, []string{"anti-reflective", "blue-light"}, fetched.Items[0].LensSelection.Coatings)
	assert.Nil(t, fetched.Items[0].FrameSelection)
	require.NotNil(t, fetched.Items[1].FrameSelection)
	assert.Equal(t, "frame-9", fetched.Items[1].FrameSelection.FrameID)
	assert.Nil(t, fetched.Items[1].LensSelection)
}

func TestOrderRepository_TenantMismatchIsNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	ctx := context.Background()

	order := sampleOrder(repo)
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, order.ID, "tenant-2")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSnapshotRepository_SaveIsUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	capturedAt := time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC)

	snapshot := &domain.PatientSnapshot{
		ID:         "snap-1",
		OrderID:    "order-1",
		TenantID:   "tenant-1",
		PatientID:  "patient-1",
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane@example.com",
		CapturedAt: capturedAt,
	}
	require.NoError(t, repo.SavePatientSnapshot(ctx, snapshot))

	snapshot.Email = "updated@example.com"
	require.NoError(t, repo.SavePatientSnapshot(ctx, snapshot))

	stored, err := repo.FindPatientByOrderID(ctx, "order-1", "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "updated@example.com", stored.Email)

	missing, err := repo.FindPatientByOrderID(ctx, "order-1", "tenant-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSnapshotRepository_PrescriptionPrismRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewSnapshotRepository(db)
	ctx := context.Background()
	addPower := 2.0

	snapshot := &domain.PrescriptionSnapshot{
		ID:             "snap-rx-1",
		OrderID:        "order-1",
		TenantID:       "tenant-1",
		PatientID:      "patient-1",
		PrescriptionID: "rx-1",
		OD: domain.EyePrescription{
			Sphere: -1.25, Cylinder: -0.5, Axis: 90,
			Prism: &domain.Prism{Horizontal: 0.5, Vertical: 0.25, Base: domain.PrismBaseIn},
		},
		OS:         domain.EyePrescription{Sphere: -1.0, Cylinder: -0.75, Axis: 85},
		AddPower:   &addPower,
		WrittenAt:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		CapturedAt: time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, repo.SavePrescriptionSnapshot(ctx, snapshot))

	stored, err := repo.FindPrescriptionByOrderID(ctx, "order-1", "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.OD.Prism)
	assert.Equal(t, domain.PrismBaseIn, stored.OD.Prism.Base)
	assert.Nil(t, stored.OS.Prism)
	require.NotNil(t, stored.AddPower)
	assert.Equal(t, 2.0, *stored.AddPower)
}

func TestPatientQuery_LatestPrescriptionOrdering(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	require.NoError(t, db.Create(&patientRecord{
		PatientID:  "patient-1",
		TenantID:   "tenant-1",
		CustomerID: "customer-1",
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane@example.com",
	}).Error)

	writtenAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"rx-aaa", "rx-zzz", "rx-mmm"} {
		require.NoError(t, db.Create(&prescriptionRecord{
			PrescriptionID: id,
			TenantID:       "tenant-1",
			PatientID:      "patient-1",
			ODSphere:       -1.25,
			OSSphere:       -1.0,
			WrittenAt:      writtenAt,
		}).Error)
	}
	require.NoError(t, db.Create(&prescriptionRecord{
		PrescriptionID: "rx-old",
		TenantID:       "tenant-1",
		PatientID:      "patient-1",
		WrittenAt:      writtenAt.AddDate(-2, 0, 0),
	}).Error)

	query := NewPatientQuery(db)
	ctx := context.Background()

	latest, err := query.GetLatestPrescriptionSnapshotDraft(ctx, "patient-1", "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "rx-zzz", latest.PrescriptionID, "ties on written_at break by prescription id descending")

	none, err := query.GetLatestPrescriptionSnapshotDraft(ctx, "patient-1", "tenant-2")
	require.NoError(t, err)
	assert.Nil(t, none)

	email := "override@example.com"
	draft, err := query.GetPatientSnapshotDraft(ctx, "patient-1", ports.PatientDraftOptions{
		TenantID:     "tenant-1",
		ContactEmail: &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "override@example.com", draft.Email)

	_, err = query.GetPatientSnapshotDraft(ctx, "patient-2", ports.PatientDraftOptions{TenantID: "tenant-1"})
	assert.ErrorIs(t, err, ports.ErrPatientNotFound)
}
