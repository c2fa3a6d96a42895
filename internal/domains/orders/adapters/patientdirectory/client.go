// Package patientdirectory implements the patient query port against an
// external patient-directory REST service, for deployments where patient data
// is owned by another system.
package patientdirectory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var _ ports.PatientQueryService = (*Client)(nil)

const tenantHeader = "x-tenant-id"

// Client is a thin HTTP client for the patient-directory API. The directory
// applies contact/notes overrides server-side; the client only forwards them.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient validates the base URL and applies a default timeout when no
// custom HTTP client is supplied.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("patient directory base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

func (c *Client) GetPatientSnapshotDraft(ctx context.Context, patientID string, opts ports.PatientDraftOptions) (*ports.PatientSnapshotDraft, error) {
	query := url.Values{}
	query.Set("billingAddressId", opts.BillingAddressID)
	query.Set("shippingAddressId", opts.ShippingAddressID)
	if opts.ContactEmail != nil {
		query.Set("contactEmail", *opts.ContactEmail)
	}
	if opts.ContactPhone != nil {
		query.Set("contactPhone", *opts.ContactPhone)
	}
	if opts.Notes != nil {
		query.Set("notes", *opts.Notes)
	}
	path := fmt.Sprintf("/v1/patients/%s/snapshot-draft?%s", url.PathEscape(patientID), query.Encode())

	var payload patientDraftPayload
	found, err := c.getJSON(ctx, path, opts.TenantID, &payload)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ports.ErrPatientNotFound
	}
	draft := payload.toDraft()
	return &draft, nil
}

func (c *Client) GetPrescriptionSnapshotDraft(ctx context.Context, prescriptionID, tenantID string) (*ports.PrescriptionSnapshotDraft, error) {
	path := fmt.Sprintf("/v1/prescriptions/%s/snapshot-draft", url.PathEscape(prescriptionID))
	return c.fetchPrescriptionDraft(ctx, path, tenantID)
}

func (c *Client) GetLatestPrescriptionSnapshotDraft(ctx context.Context, patientID, tenantID string) (*ports.PrescriptionSnapshotDraft, error) {
	path := fmt.Sprintf("/v1/patients/%s/prescriptions/latest/snapshot-draft", url.PathEscape(patientID))
	return c.fetchPrescriptionDraft(ctx, path, tenantID)
}

func (c *Client) fetchPrescriptionDraft(ctx context.Context, path, tenantID string) (*ports.PrescriptionSnapshotDraft, error) {
	var payload prescriptionDraftPayload
	found, err := c.getJSON(ctx, path, tenantID, &payload)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	draft := payload.toDraft()
	return &draft, nil
}

// getJSON performs a tenant-scoped GET. A 404 reports absence rather than an
// error; other non-2xx statuses surface the directory's problem detail.
func (c *Client) getJSON(ctx context.Context, path, tenantID string, out any) (bool, error) {
	if c == nil || c.httpClient == nil {
		return false, errors.New("patient directory client not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set(tenantHeader, tenantID)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("call patient directory: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.StatusCode >= http.StatusBadRequest:
		return false, fmt.Errorf("patient directory error: %s", errorMessage(res))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode patient directory response: %w", err)
	}
	return true, nil
}

func errorMessage(res *http.Response) string {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(res.Body).Decode(&problem); err == nil {
		if problem.Detail != "" {
			return fmt.Sprintf("%s: %s", res.Status, problem.Detail)
		}
		if problem.Title != "" {
			return fmt.Sprintf("%s: %s", res.Status, problem.Title)
		}
	}
	return res.Status
}

type addressPayload struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type patientDraftPayload struct {
	PatientID       string         `json:"patientId"`
	CustomerID      string         `json:"customerId"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	DateOfBirth     string         `json:"dateOfBirth,omitempty"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	BillingAddress  addressPayload `json:"billingAddress"`
	ShippingAddress addressPayload `json:"shippingAddress"`
	Notes           string         `json:"notes,omitempty"`
}

type prismPayload struct {
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
	Base       string  `json:"base"`
}

type eyePayload struct {
	Sphere   float64       `json:"sphere"`
	Cylinder float64       `json:"cylinder"`
	Axis     float64       `json:"axis"`
	Prism    *prismPayload `json:"prism,omitempty"`
}

type prescriptionDraftPayload struct {
	PatientID         string     `json:"patientId"`
	PrescriptionID    string     `json:"prescriptionId"`
	OD                eyePayload `json:"od"`
	OS                eyePayload `json:"os"`
	AddPower          *float64   `json:"addPower,omitempty"`
	PupillaryDistance *float64   `json:"pupillaryDistance,omitempty"`
	SegmentHeight     *float64   `json:"segmentHeight,omitempty"`
	WrittenAt         time.Time  `json:"writtenAt"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	DoctorName        string     `json:"doctorName,omitempty"`
	DoctorLicense     string     `json:"doctorLicense,omitempty"`
}

func (p patientDraftPayload) toDraft() ports.PatientSnapshotDraft {
	return ports.PatientSnapshotDraft{
		PatientID:       p.PatientID,
		CustomerID:      p.CustomerID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		DateOfBirth:     p.DateOfBirth,
		Email:           p.Email,
		Phone:           p.Phone,
		BillingAddress:  p.BillingAddress.toDomain(),
		ShippingAddress: p.ShippingAddress.toDomain(),
		Notes:           p.Notes,
	}
}

func (a addressPayload) toDomain() domain.Address {
	return domain.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func (p prescriptionDraftPayload) toDraft() ports.PrescriptionSnapshotDraft {
	return ports.PrescriptionSnapshotDraft{
		PatientID:         p.PatientID,
		PrescriptionID:    p.PrescriptionID,
		OD:                p.OD.toDomain(),
		OS:                p.OS.toDomain(),
		AddPower:          p.AddPower,
		PupillaryDistance: p.PupillaryDistance,
		SegmentHeight:     p.SegmentHeight,
		WrittenAt:         p.WrittenAt,
		ExpiresAt:         p.ExpiresAt,
		DoctorName:        p.DoctorName,
		DoctorLicense:     p.DoctorLicense,
	}
}

func (e eyePayload) toDomain() domain.EyePrescription {
	eye := domain.EyePrescription{
		Sphere:   e.Sphere,
		Cylinder: e.Cylinder,
		Axis:     e.Axis,
	}
	if e.Prism != nil {
		eye.Prism = &domain.Prism{
			Horizontal: e.Prism.Horizontal,
			Vertical:   e.Prism.Vertical,
			Base:       domain.PrismBase(e.Prism.Base),
		}
	}
	return eye
}
