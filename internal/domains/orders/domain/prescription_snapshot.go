package domain

import "time"

// PrismBase enumerates the base direction of a prism correction.
type PrismBase string

const (
	PrismBaseUp   PrismBase = "up"
	PrismBaseDown PrismBase = "down"
	PrismBaseIn   PrismBase = "in"
	PrismBaseOut  PrismBase = "out"
)

// Prism holds an optional prism correction for one eye.
type Prism struct {
	Horizontal float64
	Vertical   float64
	Base       PrismBase
}

// EyePrescription holds the refraction values for a single eye. Sphere and
// cylinder are diopters, axis is degrees.
type EyePrescription struct {
	Sphere   float64
	Cylinder float64
	Axis     float64
	Prism    *Prism
}

// PrescriptionSnapshot is an immutable point-in-time copy of a prescription,
// owned by exactly one order. Orders without a prescription carry none.
type PrescriptionSnapshot struct {
	ID                string
	OrderID           string
	TenantID          string
	PatientID         string
	PrescriptionID    string
	OD                EyePrescription
	OS                EyePrescription
	AddPower          *float64
	PupillaryDistance *float64
	SegmentHeight     *float64
	WrittenAt         time.Time
	ExpiresAt         *time.Time
	DoctorName        string
	DoctorLicense     string
	CapturedAt        time.Time
}

// Clone returns a deep copy of the snapshot.
func (s *PrescriptionSnapshot) Clone() *PrescriptionSnapshot {
	if s == nil {
		return nil
	}
	clone := *s
	clone.OD = *cloneEye(&s.OD)
	clone.OS = *cloneEye(&s.OS)
	clone.AddPower = cloneFloat(s.AddPower)
	clone.PupillaryDistance = cloneFloat(s.PupillaryDistance)
	clone.SegmentHeight = cloneFloat(s.SegmentHeight)
	if s.ExpiresAt != nil {
		expires := *s.ExpiresAt
		clone.ExpiresAt = &expires
	}
	return &clone
}

func cloneEye(e *EyePrescription) *EyePrescription {
	clone := *e
	if e.Prism != nil {
		prism := *e.Prism
		clone.Prism = &prism
	}
	return &clone
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}
