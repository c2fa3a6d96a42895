package ports

import (
	"context"
	"errors"
	"time"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
)

// ErrPatientNotFound is returned when no patient matches (patientID, tenantID).
var ErrPatientNotFound = errors.New("patient not found")

// PatientSnapshotDraft is a transient projection of current patient data: the
// snapshot entity minus identity, order binding, and capture timestamp. Drafts
// are never persisted; the service wraps them into snapshots immediately.
type PatientSnapshotDraft struct {
	PatientID       string
	CustomerID      string
	FirstName       string
	LastName        string
	DateOfBirth     string
	Email           string
	Phone           string
	BillingAddress  domain.Address
	ShippingAddress domain.Address
	Notes           string
}

// PrescriptionSnapshotDraft is the transient projection of a prescription.
type PrescriptionSnapshotDraft struct {
	PatientID         string
	PrescriptionID    string
	OD                domain.EyePrescription
	OS                domain.EyePrescription
	AddPower          *float64
	PupillaryDistance *float64
	SegmentHeight     *float64
	WrittenAt         time.Time
	ExpiresAt         *time.Time
	DoctorName        string
	DoctorLicense     string
}

// PatientDraftOptions scopes a patient lookup and carries caller overrides.
// Contact and notes overrides replace the stored values when set. The address
// ids are accepted as override intent but the returned addresses are always
// the patient's stored ones; see the service documentation.
type PatientDraftOptions struct {
	TenantID          string
	BillingAddressID  string
	ShippingAddressID string
	ContactEmail      *string
	ContactPhone      *string
	Notes             *string
}

// PatientQueryService resolves current patient and prescription data into
// immutable draft shapes, scoped by tenant.
type PatientQueryService interface {
	// GetPatientSnapshotDraft returns the draft for (patientID, opts.TenantID)
	// or ErrPatientNotFound.
	GetPatientSnapshotDraft(ctx context.Context, patientID string, opts PatientDraftOptions) (*PatientSnapshotDraft, error)
	// GetPrescriptionSnapshotDraft returns the draft for the exact
	// prescription, or nil when no prescription matches within the tenant.
	GetPrescriptionSnapshotDraft(ctx context.Context, prescriptionID, tenantID string) (*PrescriptionSnapshotDraft, error)
	// GetLatestPrescriptionSnapshotDraft returns the draft with the maximum
	// WrittenAt for (patientID, tenantID), ties broken by prescription id
	// descending, or nil when the patient has none.
	GetLatestPrescriptionSnapshotDraft(ctx context.Context, patientID, tenantID string) (*PrescriptionSnapshotDraft, error)
}
