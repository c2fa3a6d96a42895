package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var _ ports.PatientSnapshotRepository = (*SnapshotRepository)(nil)

type snapshotKey struct {
	tenantID string
	orderID  string
}

// SnapshotRepository is an in-memory patient/prescription snapshot store.
// Saves are upserts keyed by (tenantID, orderID), matching the contract of the
// PostgreSQL adapter.
type SnapshotRepository struct {
	mu            sync.RWMutex
	patients      map[snapshotKey]*domain.PatientSnapshot
	prescriptions map[snapshotKey]*domain.PrescriptionSnapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		patients:      map[snapshotKey]*domain.PatientSnapshot{},
		prescriptions: map[snapshotKey]*domain.PrescriptionSnapshot{},
	}
}

func (r *SnapshotRepository) SavePatientSnapshot(_ context.Context, snapshot *domain.PatientSnapshot) error {
	if snapshot == nil {
		return errors.New("patient snapshot is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[snapshotKey{snapshot.TenantID, snapshot.OrderID}] = snapshot.Clone()
	return nil
}

func (r *SnapshotRepository) SavePrescriptionSnapshot(_ context.Context, snapshot *domain.PrescriptionSnapshot) error {
	if snapshot == nil {
		return errors.New("prescription snapshot is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prescriptions[snapshotKey{snapshot.TenantID, snapshot.OrderID}] = snapshot.Clone()
	return nil
}

func (r *SnapshotRepository) FindPatientByOrderID(_ context.Context, orderID, tenantID string) (*domain.PatientSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot, ok := r.patients[snapshotKey{tenantID, orderID}]
	if !ok {
		return nil, nil
	}
	return snapshot.Clone(), nil
}

func (r *SnapshotRepository) FindPrescriptionByOrderID(_ context.Context, orderID, tenantID string) (*domain.PrescriptionSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot, ok := r.prescriptions[snapshotKey{tenantID, orderID}]
	if !ok {
		return nil, nil
	}
	return snapshot.Clone(), nil
}
