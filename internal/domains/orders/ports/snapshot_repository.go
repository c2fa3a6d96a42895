package ports

import (
	"context"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
)

// PatientSnapshotRepository persists the frozen patient and prescription
// snapshots keyed by (tenantID, orderID). Saves are idempotent upserts; finds
// return nil rather than an error when no snapshot exists, since orders may
// legitimately predate their snapshots.
type PatientSnapshotRepository interface {
	SavePatientSnapshot(ctx context.Context, snapshot *domain.PatientSnapshot) error
	SavePrescriptionSnapshot(ctx context.Context, snapshot *domain.PrescriptionSnapshot) error
	FindPatientByOrderID(ctx context.Context, orderID, tenantID string) (*domain.PatientSnapshot, error)
	FindPrescriptionByOrderID(ctx context.Context, orderID, tenantID string) (*domain.PrescriptionSnapshot, error)
}
