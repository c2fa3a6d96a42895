package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var _ ports.PatientQueryService = (*PatientQuery)(nil)

// PatientQuery resolves snapshot drafts from the patients and prescriptions
// tables, for deployments where patient data lives in the same database.
type PatientQuery struct {
	db *gorm.DB
}

func NewPatientQuery(db *gorm.DB) *PatientQuery {
	return &PatientQuery{db: db}
}

type patientRecord struct {
	PatientID          string `gorm:"primaryKey;column:patient_id;size:64"`
	TenantID           string `gorm:"primaryKey;column:tenant_id;size:64"`
	CustomerID         string `gorm:"column:customer_id;size:64"`
	FirstName          string `gorm:"column:first_name"`
	LastName           string `gorm:"column:last_name"`
	DateOfBirth        string `gorm:"column:date_of_birth;size:16"`
	Email              string `gorm:"column:email"`
	Phone              string `gorm:"column:phone"`
	BillingLine1       string `gorm:"column:billing_line1"`
	BillingLine2       string `gorm:"column:billing_line2"`
	BillingCity        string `gorm:"column:billing_city"`
	BillingState       string `gorm:"column:billing_state"`
	BillingPostalCode  string `gorm:"column:billing_postal_code"`
	BillingCountry     string `gorm:"column:billing_country"`
	ShippingLine1      string `gorm:"column:shipping_line1"`
	ShippingLine2      string `gorm:"column:shipping_line2"`
	ShippingCity       string `gorm:"column:shipping_city"`
	ShippingState      string `gorm:"column:shipping_state"`
	ShippingPostalCode string `gorm:"column:shipping_postal_code"`
	ShippingCountry    string `gorm:"column:shipping_country"`
	Notes              string `gorm:"column:notes"`
}

func (patientRecord) TableName() string { return "patients" }

type prescriptionRecord struct {
	PrescriptionID    string     `gorm:"primaryKey;column:prescription_id;size:64"`
	TenantID          string     `gorm:"primaryKey;column:tenant_id;size:64"`
	PatientID         string     `gorm:"column:patient_id;size:64;index:idx_prescriptions_patient"`
	ODSphere          float64    `gorm:"column:od_sphere"`
	ODCylinder        float64    `gorm:"column:od_cylinder"`
	ODAxis            float64    `gorm:"column:od_axis"`
	ODPrismHorizontal *float64   `gorm:"column:od_prism_horizontal"`
	ODPrismVertical   *float64   `gorm:"column:od_prism_vertical"`
	ODPrismBase       *string    `gorm:"column:od_prism_base;size:8"`
	OSSphere          float64    `gorm:"column:os_sphere"`
	OSCylinder        float64    `gorm:"column:os_cylinder"`
	OSAxis            float64    `gorm:"column:os_axis"`
	OSPrismHorizontal *float64   `gorm:"column:os_prism_horizontal"`
	OSPrismVertical   *float64   `gorm:"column:os_prism_vertical"`
	OSPrismBase       *string    `gorm:"column:os_prism_base;size:8"`
	AddPower          *float64   `gorm:"column:add_power"`
	PupillaryDistance *float64   `gorm:"column:pupillary_distance"`
	SegmentHeight     *float64   `gorm:"column:segment_height"`
	WrittenAt         time.Time  `gorm:"column:written_at;index"`
	ExpiresAt         *time.Time `gorm:"column:expires_at"`
	DoctorName        string     `gorm:"column:doctor_name"`
	DoctorLicense     string     `gorm:"column:doctor_license"`
}

func (prescriptionRecord) TableName() string { return "prescriptions" }

func (q *PatientQuery) GetPatientSnapshotDraft(ctx context.Context, patientID string, opts ports.PatientDraftOptions) (*ports.PatientSnapshotDraft, error) {
	if err := q.ensureDB(); err != nil {
		return nil, err
	}
	var record patientRecord
	if err := q.db.WithContext(ctx).First(&record, "patient_id = ? AND tenant_id = ?", patientID, opts.TenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPatientNotFound
		}
		return nil, err
	}
	draft := record.toDraft()
	if opts.ContactEmail != nil {
		draft.Email = *opts.ContactEmail
	}
	if opts.ContactPhone != nil {
		draft.Phone = *opts.ContactPhone
	}
	if opts.Notes != nil {
		draft.Notes = *opts.Notes
	}
	return &draft, nil
}

func (q *PatientQuery) GetPrescriptionSnapshotDraft(ctx context.Context, prescriptionID, tenantID string) (*ports.PrescriptionSnapshotDraft, error) {
	if err := q.ensureDB(); err != nil {
		return nil, err
	}
	var record prescriptionRecord
	if err := q.db.WithContext(ctx).First(&record, "prescription_id = ? AND tenant_id = ?", prescriptionID, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	draft := record.toDraft()
	return &draft, nil
}

// GetLatestPrescriptionSnapshotDraft orders by written_at with prescription_id
// as tie-break so equal dates select deterministically.
func (q *PatientQuery) GetLatestPrescriptionSnapshotDraft(ctx context.Context, patientID, tenantID string) (*ports.PrescriptionSnapshotDraft, error) {
	if err := q.ensureDB(); err != nil {
		return nil, err
	}
	var record prescriptionRecord
	err := q.db.WithContext(ctx).
		Where("patient_id = ? AND tenant_id = ?", patientID, tenantID).
		Order("written_at DESC, prescription_id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	draft := record.toDraft()
	return &draft, nil
}

func (q *PatientQuery) ensureDB() error {
	if q == nil || q.db == nil {
		return errors.New("postgres patient query not configured")
	}
	return nil
}

func (r patientRecord) toDraft() ports.PatientSnapshotDraft {
	return ports.PatientSnapshotDraft{
		PatientID:   r.PatientID,
		CustomerID:  r.CustomerID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Email:       r.Email,
		Phone:       r.Phone,
		BillingAddress: domain.Address{
			Line1:      r.BillingLine1,
			Line2:      r.BillingLine2,
			City:       r.BillingCity,
			State:      r.BillingState,
			PostalCode: r.BillingPostalCode,
			Country:    r.BillingCountry,
		},
		ShippingAddress: domain.Address{
			Line1:      r.ShippingLine1,
			Line2:      r.ShippingLine2,
			City:       r.ShippingCity,
			State:      r.ShippingState,
			PostalCode: r.ShippingPostalCode,
			Country:    r.ShippingCountry,
		},
		Notes: r.Notes,
	}
}

func (r prescriptionRecord) toDraft() ports.PrescriptionSnapshotDraft {
	return ports.PrescriptionSnapshotDraft{
		PatientID:      r.PatientID,
		PrescriptionID: r.PrescriptionID,
		OD: domain.EyePrescription{
			Sphere:   r.ODSphere,
			Cylinder: r.ODCylinder,
			Axis:     r.ODAxis,
			Prism:    prismFromColumns(r.ODPrismHorizontal, r.ODPrismVertical, r.ODPrismBase),
		},
		OS: domain.EyePrescription{
			Sphere:   r.OSSphere,
			Cylinder: r.OSCylinder,
			Axis:     r.OSAxis,
			Prism:    prismFromColumns(r.OSPrismHorizontal, r.OSPrismVertical, r.OSPrismBase),
		},
		AddPower:          r.AddPower,
		PupillaryDistance: r.PupillaryDistance,
		SegmentHeight:     r.SegmentHeight,
		WrittenAt:         r.WrittenAt,
		ExpiresAt:         r.ExpiresAt,
		DoctorName:        r.DoctorName,
		DoctorLicense:     r.DoctorLicense,
	}
}
