package memory

import (
	"context"
	"sync"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var _ ports.PatientQueryService = (*PatientQuery)(nil)

// PatientRecord is the seedable source-of-truth shape behind the in-memory
// patient query adapter.
type PatientRecord struct {
	TenantID  string
	PatientID string
	Draft     ports.PatientSnapshotDraft
}

// PrescriptionRecord is the seedable prescription shape.
type PrescriptionRecord struct {
	TenantID string
	Draft    ports.PrescriptionSnapshotDraft
}

// PatientQuery serves snapshot drafts from seeded records. Used by unit tests
// and the no-database development fallback.
type PatientQuery struct {
	mu            sync.RWMutex
	patients      []PatientRecord
	prescriptions []PrescriptionRecord
}

func NewPatientQuery() *PatientQuery {
	return &PatientQuery{}
}

// SeedPatients registers patient records.
func (q *PatientQuery) SeedPatients(records ...PatientRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.patients = append(q.patients, records...)
}

// SeedPrescriptions registers prescription records.
func (q *PatientQuery) SeedPrescriptions(records ...PrescriptionRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prescriptions = append(q.prescriptions, records...)
}

func (q *PatientQuery) GetPatientSnapshotDraft(_ context.Context, patientID string, opts ports.PatientDraftOptions) (*ports.PatientSnapshotDraft, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, record := range q.patients {
		if record.PatientID != patientID || record.TenantID != opts.TenantID {
			continue
		}
		draft := record.Draft
		applyOverrides(&draft, opts)
		return &draft, nil
	}
	return nil, ports.ErrPatientNotFound
}

func (q *PatientQuery) GetPrescriptionSnapshotDraft(_ context.Context, prescriptionID, tenantID string) (*ports.PrescriptionSnapshotDraft, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, record := range q.prescriptions {
		if record.TenantID == tenantID && record.Draft.PrescriptionID == prescriptionID {
			draft := record.Draft
			return &draft, nil
		}
	}
	return nil, nil
}

func (q *PatientQuery) GetLatestPrescriptionSnapshotDraft(_ context.Context, patientID, tenantID string) (*ports.PrescriptionSnapshotDraft, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	var latest *ports.PrescriptionSnapshotDraft
	for _, record := range q.prescriptions {
		if record.TenantID != tenantID || record.Draft.PatientID != patientID {
			continue
		}
		draft := record.Draft
		if latest == nil || newerThan(&draft, latest) {
			latest = &draft
		}
	}
	return latest, nil
}

// newerThan orders by WrittenAt, ties broken by prescription id descending so
// selection is stable regardless of seed order.
func newerThan(candidate, current *ports.PrescriptionSnapshotDraft) bool {
	if candidate.WrittenAt.After(current.WrittenAt) {
		return true
	}
	if candidate.WrittenAt.Equal(current.WrittenAt) {
		return candidate.PrescriptionID > current.PrescriptionID
	}
	return false
}

// applyOverrides substitutes caller-supplied contact details and notes for the
// stored values. Address ids are accepted on the options but the stored
// addresses are returned unchanged.
func applyOverrides(draft *ports.PatientSnapshotDraft, opts ports.PatientDraftOptions) {
	if opts.ContactEmail != nil {
		draft.Email = *opts.ContactEmail
	}
	if opts.ContactPhone != nil {
		draft.Phone = *opts.ContactPhone
	}
	if opts.Notes != nil {
		draft.Notes = *opts.Notes
	}
}
