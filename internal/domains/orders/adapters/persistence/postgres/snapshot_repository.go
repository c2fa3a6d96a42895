package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var _ ports.PatientSnapshotRepository = (*SnapshotRepository)(nil)

// SnapshotRepository persists patient and prescription snapshots in
// PostgreSQL. Saves upsert on (tenant_id, order_id) so a retried write lands
// on the same row.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type patientSnapshotRecord struct {
	ID                 string    `gorm:"primaryKey;column:id;size:64"`
	OrderID            string    `gorm:"column:order_id;size:64;uniqueIndex:idx_patient_snapshots_tenant_order"`
	TenantID           string    `gorm:"column:tenant_id;size:64;uniqueIndex:idx_patient_snapshots_tenant_order"`
	PatientID          string    `gorm:"column:patient_id;size:64;index"`
	CustomerID         string    `gorm:"column:customer_id;size:64"`
	FirstName          string    `gorm:"column:first_name"`
	LastName           string    `gorm:"column:last_name"`
	DateOfBirth        string    `gorm:"column:date_of_birth;size:16"`
	Email              string    `gorm:"column:email"`
	Phone              string    `gorm:"column:phone"`
	BillingLine1       string    `gorm:"column:billing_line1"`
	BillingLine2       string    `gorm:"column:billing_line2"`
	BillingCity        string    `gorm:"column:billing_city"`
	BillingState       string    `gorm:"column:billing_state"`
	BillingPostalCode  string    `gorm:"column:billing_postal_code"`
	BillingCountry     string    `gorm:"column:billing_country"`
	ShippingLine1      string    `gorm:"column:shipping_line1"`
	ShippingLine2      string    `gorm:"column:shipping_line2"`
	ShippingCity       string    `gorm:"column:shipping_city"`
	ShippingState      string    `gorm:"column:shipping_state"`
	ShippingPostalCode string    `gorm:"column:shipping_postal_code"`
	ShippingCountry    string    `gorm:"column:shipping_country"`
	Notes              string    `gorm:"column:notes"`
	CapturedAt         time.Time `gorm:"column:captured_at"`
}

func (patientSnapshotRecord) TableName() string { return "patient_snapshots" }

type prescriptionSnapshotRecord struct {
	ID                string     `gorm:"primaryKey;column:id;size:64"`
	OrderID           string     `gorm:"column:order_id;size:64;uniqueIndex:idx_prescription_snapshots_tenant_order"`
	TenantID          string     `gorm:"column:tenant_id;size:64;uniqueIndex:idx_prescription_snapshots_tenant_order"`
	PatientID         string     `gorm:"column:patient_id;size:64;index"`
	PrescriptionID    string     `gorm:"column:prescription_id;size:64"`
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
	WrittenAt         time.Time  `gorm:"column:written_at"`
	ExpiresAt         *time.Time `gorm:"column:expires_at"`
	DoctorName        string     `gorm:"column:doctor_name"`
	DoctorLicense     string     `gorm:"column:doctor_license"`
	CapturedAt        time.Time  `gorm:"column:captured_at"`
}

func (prescriptionSnapshotRecord) TableName() string { return "prescription_snapshots" }

func (r *SnapshotRepository) SavePatientSnapshot(ctx context.Context, snapshot *domain.PatientSnapshot) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if snapshot == nil {
		return errors.New("patient snapshot is nil")
	}
	record := toPatientSnapshotRecord(snapshot)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "order_id"}},
			UpdateAll: true,
		}).Create(&record).Error
}

func (r *SnapshotRepository) SavePrescriptionSnapshot(ctx context.Context, snapshot *domain.PrescriptionSnapshot) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if snapshot == nil {
		return errors.New("prescription snapshot is nil")
	}
	record := toPrescriptionSnapshotRecord(snapshot)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "order_id"}},
			UpdateAll: true,
		}).Create(&record).Error
}

func (r *SnapshotRepository) FindPatientByOrderID(ctx context.Context, orderID, tenantID string) (*domain.PatientSnapshot, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record patientSnapshotRecord
	if err := r.db.WithContext(ctx).First(&record, "order_id = ? AND tenant_id = ?", orderID, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *SnapshotRepository) FindPrescriptionByOrderID(ctx context.Context, orderID, tenantID string) (*domain.PrescriptionSnapshot, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record prescriptionSnapshotRecord
	if err := r.db.WithContext(ctx).First(&record, "order_id = ? AND tenant_id = ?", orderID, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *SnapshotRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres snapshot repository not configured")
	}
	return nil
}

func toPatientSnapshotRecord(s *domain.PatientSnapshot) patientSnapshotRecord {
	return patientSnapshotRecord{
		ID:                 s.ID,
		OrderID:            s.OrderID,
		TenantID:           s.TenantID,
		PatientID:          s.PatientID,
		CustomerID:         s.CustomerID,
		FirstName:          s.FirstName,
		LastName:           s.LastName,
		DateOfBirth:        s.DateOfBirth,
		Email:              s.Email,
		Phone:              s.Phone,
		BillingLine1:       s.BillingAddress.Line1,
		BillingLine2:       s.BillingAddress.Line2,
		BillingCity:        s.BillingAddress.City,
		BillingState:       s.BillingAddress.State,
		BillingPostalCode:  s.BillingAddress.PostalCode,
		BillingCountry:     s.BillingAddress.Country,
		ShippingLine1:      s.ShippingAddress.Line1,
		ShippingLine2:      s.ShippingAddress.Line2,
		ShippingCity:       s.ShippingAddress.City,
		ShippingState:      s.ShippingAddress.State,
		ShippingPostalCode: s.ShippingAddress.PostalCode,
		ShippingCountry:    s.ShippingAddress.Country,
		Notes:              s.Notes,
		CapturedAt:         s.CapturedAt,
	}
}

func (r patientSnapshotRecord) toDomain() *domain.PatientSnapshot {
	return &domain.PatientSnapshot{
		ID:          r.ID,
		OrderID:     r.OrderID,
		TenantID:    r.TenantID,
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
		Notes:      r.Notes,
		CapturedAt: r.CapturedAt,
	}
}

func toPrescriptionSnapshotRecord(s *domain.PrescriptionSnapshot) prescriptionSnapshotRecord {
	record := prescriptionSnapshotRecord{
		ID:                s.ID,
		OrderID:           s.OrderID,
		TenantID:          s.TenantID,
		PatientID:         s.PatientID,
		PrescriptionID:    s.PrescriptionID,
		ODSphere:          s.OD.Sphere,
		ODCylinder:        s.OD.Cylinder,
		ODAxis:            s.OD.Axis,
		OSSphere:          s.OS.Sphere,
		OSCylinder:        s.OS.Cylinder,
		OSAxis:            s.OS.Axis,
		AddPower:          s.AddPower,
		PupillaryDistance: s.PupillaryDistance,
		SegmentHeight:     s.SegmentHeight,
		WrittenAt:         s.WrittenAt,
		ExpiresAt:         s.ExpiresAt,
		DoctorName:        s.DoctorName,
		DoctorLicense:     s.DoctorLicense,
		CapturedAt:        s.CapturedAt,
	}
	record.ODPrismHorizontal, record.ODPrismVertical, record.ODPrismBase = prismColumns(s.OD.Prism)
	record.OSPrismHorizontal, record.OSPrismVertical, record.OSPrismBase = prismColumns(s.OS.Prism)
	return record
}

func (r prescriptionSnapshotRecord) toDomain() *domain.PrescriptionSnapshot {
	return &domain.PrescriptionSnapshot{
		ID:             r.ID,
		OrderID:        r.OrderID,
		TenantID:       r.TenantID,
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
		CapturedAt:        r.CapturedAt,
	}
}

func prismColumns(prism *domain.Prism) (*float64, *float64, *string) {
	if prism == nil {
		return nil, nil, nil
	}
	horizontal := prism.Horizontal
	vertical := prism.Vertical
	base := string(prism.Base)
	return &horizontal, &vertical, &base
}

func prismFromColumns(horizontal, vertical *float64, base *string) *domain.Prism {
	if horizontal == nil && vertical == nil && base == nil {
		return nil
	}
	prism := &domain.Prism{}
	if horizontal != nil {
		prism.Horizontal = *horizontal
	}
	if vertical != nil {
		prism.Vertical = *vertical
	}
	if base != nil {
		prism.Base = domain.PrismBase(*base)
	}
	return prism
}
