// Package migrations owns schema setup for all bounded contexts so adapter
// packages stay free of DDL concerns.
package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the orders bounded context, including the
// patient and prescription source tables used by the in-database patient
// query adapter.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderItemRecord{},
		&patientSnapshotRecord{},
		&prescriptionSnapshotRecord{},
		&patientRecord{},
		&prescriptionRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID            string    `gorm:"primaryKey;column:id;size:64"`
	TenantID      string    `gorm:"column:tenant_id;size:64;index:idx_orders_tenant"`
	CustomerID    string    `gorm:"column:customer_id;size:64;index"`
	Status        string    `gorm:"column:status;type:varchar(32)"`
	CurrencyCode  string    `gorm:"column:currency_code;type:varchar(8)"`
	SubtotalCents int64     `gorm:"column:subtotal_cents"`
	TaxCents      int64     `gorm:"column:tax_cents"`
	TotalCents    int64     `gorm:"column:total_cents"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID           string         `gorm:"primaryKey;column:id;size:64"`
	OrderID      string         `gorm:"column:order_id;size:64;index:idx_order_items_order"`
	Position     int            `gorm:"column:position"`
	SKUID        string         `gorm:"column:sku_id;size:64"`
	Quantity     int32          `gorm:"column:quantity"`
	LensDesign   *string        `gorm:"column:lens_design"`
	LensMaterial string         `gorm:"column:lens_material"`
	LensCoatings pq.StringArray `gorm:"column:lens_coatings;type:text[]"`
	LensTint     string         `gorm:"column:lens_tint"`
	LensNotes    string         `gorm:"column:lens_notes"`
	FrameID      *string        `gorm:"column:frame_id"`
	FrameColor   string         `gorm:"column:frame_color"`
	FrameSize    string         `gorm:"column:frame_size"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Patient snapshot schema mirrors the snapshot Postgres adapter.
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

// Patient source schema mirrors the in-database patient query adapter.
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
