// Package mapper converts between HTTP payloads and the orders domain.
package mapper

import (
	"time"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/application/types"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
)

// LensSelection is the HTTP representation of an item's lens configuration.
type LensSelection struct {
	Design   string   `json:"design" binding:"required"`
	Material string   `json:"material,omitempty"`
	Coatings []string `json:"coatings,omitempty"`
	Tint     string   `json:"tint,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// FrameSelection is the HTTP representation of an item's frame choice.
type FrameSelection struct {
	FrameID string `json:"frameId" binding:"required"`
	Color   string `json:"color,omitempty"`
	Size    string `json:"size,omitempty"`
}

// CreateOrderItem carries one requested line item.
type CreateOrderItem struct {
	SKUID          string          `json:"skuId" binding:"required"`
	Quantity       int32           `json:"quantity" binding:"required,gt=0"`
	LensSelection  *LensSelection  `json:"lensSelection,omitempty"`
	FrameSelection *FrameSelection `json:"frameSelection,omitempty"`
}

// CreateOrderRequest captures the inbound order-creation payload. Pointer
// fields preserve presence so an empty string override is distinguishable from
// no override at all.
type CreateOrderRequest struct {
	CustomerID                string            `json:"customerId" binding:"required"`
	PatientID                 string            `json:"patientId" binding:"required"`
	PrescriptionID            string            `json:"prescriptionId,omitempty"`
	CaptureLatestPrescription bool              `json:"captureLatestPrescription,omitempty"`
	ContactEmail              *string           `json:"contactEmail,omitempty"`
	ContactPhone              *string           `json:"contactPhone,omitempty"`
	ShippingAddressID         string            `json:"shippingAddressId,omitempty"`
	BillingAddressID          string            `json:"billingAddressId,omitempty"`
	Notes                     *string           `json:"notes,omitempty"`
	Items                     []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
	Metadata                  map[string]any    `json:"metadata,omitempty"`
}

// Address is the HTTP representation of a snapshot address.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PatientSnapshot is the HTTP representation of a captured patient record.
type PatientSnapshot struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"orderId"`
	PatientID       string    `json:"patientId"`
	CustomerID      string    `json:"customerId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	DateOfBirth     string    `json:"dateOfBirth,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	BillingAddress  Address   `json:"billingAddress"`
	ShippingAddress Address   `json:"shippingAddress"`
	Notes           string    `json:"notes,omitempty"`
	CapturedAt      time.Time `json:"capturedAt"`
}

// Prism is the HTTP representation of a prism correction.
type Prism struct {
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
	Base       string  `json:"base"`
}

// EyePrescription is the HTTP representation of one eye's refraction.
type EyePrescription struct {
	Sphere   float64 `json:"sphere"`
	Cylinder float64 `json:"cylinder"`
	Axis     float64 `json:"axis"`
	Prism    *Prism  `json:"prism,omitempty"`
}

// PrescriptionSnapshot is the HTTP representation of a captured prescription.
type PrescriptionSnapshot struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"orderId"`
	PatientID         string          `json:"patientId"`
	PrescriptionID    string          `json:"prescriptionId"`
	OD                EyePrescription `json:"od"`
	OS                EyePrescription `json:"os"`
	AddPower          *float64        `json:"addPower,omitempty"`
	PupillaryDistance *float64        `json:"pupillaryDistance,omitempty"`
	SegmentHeight     *float64        `json:"segmentHeight,omitempty"`
	WrittenAt         time.Time       `json:"writtenAt"`
	ExpiresAt         *time.Time      `json:"expiresAt,omitempty"`
	DoctorName        string          `json:"doctorName,omitempty"`
	DoctorLicense     string          `json:"doctorLicense,omitempty"`
	CapturedAt        time.Time       `json:"capturedAt"`
}

// OrderItem is the HTTP representation of a persisted line item.
type OrderItem struct {
	ID             string          `json:"id"`
	SKUID          string          `json:"skuId"`
	Quantity       int32           `json:"quantity"`
	LensSelection  *LensSelection  `json:"lensSelection,omitempty"`
	FrameSelection *FrameSelection `json:"frameSelection,omitempty"`
}

// Order is the HTTP representation of the order aggregate.
type Order struct {
	ID            string                `json:"id"`
	TenantID      string                `json:"tenantId"`
	CustomerID    string                `json:"customerId"`
	Status        string                `json:"status"`
	CurrencyCode  string                `json:"currencyCode"`
	SubtotalCents int64                 `json:"subtotalCents"`
	TaxCents      int64                 `json:"taxCents"`
	TotalCents    int64                 `json:"totalCents"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	Items         []OrderItem           `json:"items"`
	Patient       *PatientSnapshot      `json:"patient,omitempty"`
	Prescription  *PrescriptionSnapshot `json:"prescription,omitempty"`
}

// ToCreateCommand converts the inbound payload into an application command.
// Tenant id and idempotency key come from the request context, not the body.
func ToCreateCommand(tenantID, idempotencyKey string, payload CreateOrderRequest) types.CreateOrderCommand {
	items := make([]types.OrderItemInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, types.OrderItemInput{
			SKUID:          item.SKUID,
			Quantity:       item.Quantity,
			LensSelection:  toDomainLens(item.LensSelection),
			FrameSelection: toDomainFrame(item.FrameSelection),
		})
	}
	return types.CreateOrderCommand{
		TenantID:                  tenantID,
		CustomerID:                payload.CustomerID,
		PatientID:                 payload.PatientID,
		PrescriptionID:            payload.PrescriptionID,
		CaptureLatestPrescription: payload.CaptureLatestPrescription,
		ContactEmail:              payload.ContactEmail,
		ContactPhone:              payload.ContactPhone,
		ShippingAddressID:         payload.ShippingAddressID,
		BillingAddressID:          payload.BillingAddressID,
		Notes:                     payload.Notes,
		Items:                     items,
		Metadata:                  payload.Metadata,
		IdempotencyKey:            idempotencyKey,
	}
}

// FromDomainOrder maps the aggregate to its transport shape.
func FromDomainOrder(order *domain.Order) Order {
	items := make([]OrderItem, 0, len(order.Items))
	for i := range order.Items {
		items = append(items, fromDomainItem(&order.Items[i]))
	}
	return Order{
		ID:            order.ID,
		TenantID:      order.TenantID,
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		CurrencyCode:  order.CurrencyCode,
		SubtotalCents: order.SubtotalCents,
		TaxCents:      order.TaxCents,
		TotalCents:    order.TotalCents,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Items:         items,
		Patient:       FromDomainPatientSnapshot(order.PatientSnapshot),
		Prescription:  FromDomainPrescriptionSnapshot(order.PrescriptionSnapshot),
	}
}

// FromDomainPatientSnapshot maps a patient snapshot to its transport shape.
func FromDomainPatientSnapshot(snapshot *domain.PatientSnapshot) *PatientSnapshot {
	if snapshot == nil {
		return nil
	}
	return &PatientSnapshot{
		ID:              snapshot.ID,
		OrderID:         snapshot.OrderID,
		PatientID:       snapshot.PatientID,
		CustomerID:      snapshot.CustomerID,
		FirstName:       snapshot.FirstName,
		LastName:        snapshot.LastName,
		DateOfBirth:     snapshot.DateOfBirth,
		Email:           snapshot.Email,
		Phone:           snapshot.Phone,
		BillingAddress:  fromDomainAddress(snapshot.BillingAddress),
		ShippingAddress: fromDomainAddress(snapshot.ShippingAddress),
		Notes:           snapshot.Notes,
		CapturedAt:      snapshot.CapturedAt,
	}
}

// FromDomainPrescriptionSnapshot maps a prescription snapshot to its transport shape.
func FromDomainPrescriptionSnapshot(snapshot *domain.PrescriptionSnapshot) *PrescriptionSnapshot {
	if snapshot == nil {
		return nil
	}
	return &PrescriptionSnapshot{
		ID:                snapshot.ID,
		OrderID:           snapshot.OrderID,
		PatientID:         snapshot.PatientID,
		PrescriptionID:    snapshot.PrescriptionID,
		OD:                fromDomainEye(snapshot.OD),
		OS:                fromDomainEye(snapshot.OS),
		AddPower:          snapshot.AddPower,
		PupillaryDistance: snapshot.PupillaryDistance,
		SegmentHeight:     snapshot.SegmentHeight,
		WrittenAt:         snapshot.WrittenAt,
		ExpiresAt:         snapshot.ExpiresAt,
		DoctorName:        snapshot.DoctorName,
		DoctorLicense:     snapshot.DoctorLicense,
		CapturedAt:        snapshot.CapturedAt,
	}
}

func fromDomainItem(item *domain.OrderItem) OrderItem {
	mapped := OrderItem{
		ID:       item.ID,
		SKUID:    item.SKUID,
		Quantity: item.Quantity,
	}
	if item.LensSelection != nil {
		mapped.LensSelection = &LensSelection{
			Design:   item.LensSelection.Design,
			Material: item.LensSelection.Material,
			Coatings: append([]string(nil), item.LensSelection.Coatings...),
			Tint:     item.LensSelection.Tint,
			Notes:    item.LensSelection.Notes,
		}
	}
	if item.FrameSelection != nil {
		mapped.FrameSelection = &FrameSelection{
			FrameID: item.FrameSelection.FrameID,
			Color:   item.FrameSelection.Color,
			Size:    item.FrameSelection.Size,
		}
	}
	return mapped
}

func fromDomainAddress(address domain.Address) Address {
	return Address{
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
}

func fromDomainEye(eye domain.EyePrescription) EyePrescription {
	mapped := EyePrescription{
		Sphere:   eye.Sphere,
		Cylinder: eye.Cylinder,
		Axis:     eye.Axis,
	}
	if eye.Prism != nil {
		mapped.Prism = &Prism{
			Horizontal: eye.Prism.Horizontal,
			Vertical:   eye.Prism.Vertical,
			Base:       string(eye.Prism.Base),
		}
	}
	return mapped
}

func toDomainLens(lens *LensSelection) *domain.LensSelection {
	if lens == nil {
		return nil
	}
	return &domain.LensSelection{
		Design:   lens.Design,
		Material: lens.Material,
		Coatings: append([]string(nil), lens.Coatings...),
		Tint:     lens.Tint,
		Notes:    lens.Notes,
	}
}

func toDomainFrame(frame *FrameSelection) *domain.FrameSelection {
	if frame == nil {
		return nil
	}
	return &domain.FrameSelection{
		FrameID: frame.FrameID,
		Color:   frame.Color,
		Size:    frame.Size,
	}
}
