package domain

import "time"

// PatientSnapshot is an immutable point-in-time copy of patient data owned by
// exactly one order. Once captured it is a historical record, never a live
// reference to the patient profile.
type PatientSnapshot struct {
	ID              string
	OrderID         string
	TenantID        string
	PatientID       string
	CustomerID      string
	FirstName       string
	LastName        string
	DateOfBirth     string
	Email           string
	Phone           string
	BillingAddress  Address
	ShippingAddress Address
	Notes           string
	CapturedAt      time.Time
}

// Address is a structured postal address embedded in snapshots.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Clone returns a copy of the snapshot.
func (s *PatientSnapshot) Clone() *PatientSnapshot {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
