package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
)

func TestSnapshotRepository_UpsertByTenantAndOrder(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	first := &domain.PatientSnapshot{
		ID:        "snap-1",
		OrderID:   "order-1",
		TenantID:  "tenant-1",
		PatientID: "patient-1",
		Email:     "jane@example.com",
	}
	require.NoError(t, repo.SavePatientSnapshot(ctx, first))

	second := first.Clone()
	second.ID = "snap-2"
	second.Email = "updated@example.com"
	require.NoError(t, repo.SavePatientSnapshot(ctx, second))

	stored, err := repo.FindPatientByOrderID(ctx, "order-1", "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "snap-2", stored.ID)
	assert.Equal(t, "updated@example.com", stored.Email)
}

func TestSnapshotRepository_AbsenceIsNilNil(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	patient, err := repo.FindPatientByOrderID(ctx, "order-1", "tenant-1")
	require.NoError(t, err)
	assert.Nil(t, patient)

	prescription, err := repo.FindPrescriptionByOrderID(ctx, "order-1", "tenant-1")
	require.NoError(t, err)
	assert.Nil(t, prescription)
}

func TestSnapshotRepository_TenantScoped(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	require.NoError(t, repo.SavePrescriptionSnapshot(ctx, &domain.PrescriptionSnapshot{
		ID:             "snap-1",
		OrderID:        "order-1",
		TenantID:       "tenant-1",
		PatientID:      "patient-1",
		PrescriptionID: "rx-1",
		WrittenAt:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}))

	stored, err := repo.FindPrescriptionByOrderID(ctx, "order-1", "tenant-2")
	require.NoError(t, err)
	assert.Nil(t, stored, "another tenant must not see the snapshot")
}

func TestSnapshotRepository_ClonesOnReadAndWrite(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	original := &domain.PatientSnapshot{ID: "snap-1", OrderID: "order-1", TenantID: "tenant-1", Email: "jane@example.com"}
	require.NoError(t, repo.SavePatientSnapshot(ctx, original))
	original.Email = "mutated@example.com"

	stored, err := repo.FindPatientByOrderID(ctx, "order-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored.Email)

	stored.Email = "mutated-again@example.com"
	stored2, err := repo.FindPatientByOrderID(ctx, "order-1", "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", stored2.Email)
}
