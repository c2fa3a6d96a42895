//go:build pact
// +build pact

package patientdirectory_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/adapters/patientdirectory"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

const (
	consumerName = "optical-orders-api"
	providerName = "patient-directory"

	tenantID         = "tenant-1"
	existingPatient  = "patient-1"
	missingPatient   = "patient-missing"
	existingRx       = "rx-1"
	missingRx        = "rx-missing"
)

func TestPatientDirectoryContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: consumerName,
		Provider: providerName,
		PactDir:  t.TempDir(),
		LogDir:   t.TempDir(),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	addressMatcher := matchers.Map{
		"line1":      matchers.S("100 Main St"),
		"city":       matchers.S("Springfield"),
		"state":      matchers.S("IL"),
		"postalCode": matchers.S("62701"),
		"country":    matchers.S("US"),
	}
	patientBodyMatcher := matchers.Map{
		"patientId":       matchers.S(existingPatient),
		"customerId":      matchers.S("customer-1"),
		"firstName":       matchers.Like("Jane"),
		"lastName":        matchers.Like("Doe"),
		"email":           matchers.Like("override@example.com"),
		"billingAddress":  addressMatcher,
		"shippingAddress": addressMatcher,
	}
	prescriptionBodyMatcher := matchers.Map{
		"patientId":      matchers.S(existingPatient),
		"prescriptionId": matchers.S(existingRx),
		"od": matchers.Map{
			"sphere":   matchers.Like(-1.25),
			"cylinder": matchers.Like(-0.5),
			"axis":     matchers.Like(90.0),
		},
		"os": matchers.Map{
			"sphere":   matchers.Like(-1.0),
			"cylinder": matchers.Like(-0.75),
			"axis":     matchers.Like(85.0),
		},
		"writtenAt": matchers.Regex("2024-01-10T00:00:00Z", `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`),
	}
	notFoundBody := matchers.Map{
		"type":   matchers.S("/problems/not-found"),
		"title":  matchers.S("Resource Not Found"),
		"status": matchers.Like(http.StatusNotFound),
	}

	pact.AddInteraction().
		Given("patient patient-1 exists for tenant-1").
		UponReceiving("a request for a patient snapshot draft with a contact override").
		WithRequest("GET", fmt.Sprintf("/v1/patients/%s/snapshot-draft", existingPatient), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("x-tenant-id", matchers.S(tenantID))
			b.Query("billingAddressId", matchers.S("addr-b"))
			b.Query("shippingAddressId", matchers.S("addr-s"))
			b.Query("contactEmail", matchers.S("override@example.com"))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(patientBodyMatcher)
		})

	pact.AddInteraction().
		Given("patient patient-missing does not exist").
		UponReceiving("a request for a missing patient snapshot draft").
		WithRequest("GET", fmt.Sprintf("/v1/patients/%s/snapshot-draft", missingPatient), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("x-tenant-id", matchers.S(tenantID))
			b.Query("billingAddressId", matchers.S(""))
			b.Query("shippingAddressId", matchers.S(""))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(notFoundBody)
		})

	pact.AddInteraction().
		Given("prescription rx-1 exists for tenant-1").
		UponReceiving("a request for a prescription snapshot draft").
		WithRequest("GET", fmt.Sprintf("/v1/prescriptions/%s/snapshot-draft", existingRx), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("x-tenant-id", matchers.S(tenantID))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(prescriptionBodyMatcher)
		})

	pact.AddInteraction().
		Given("prescription rx-missing does not exist").
		UponReceiving("a request for a missing prescription snapshot draft").
		WithRequest("GET", fmt.Sprintf("/v1/prescriptions/%s/snapshot-draft", missingRx), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("x-tenant-id", matchers.S(tenantID))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(notFoundBody)
		})

	pact.AddInteraction().
		Given("patient patient-1 has prescription rx-1 as latest").
		UponReceiving("a request for the latest prescription snapshot draft").
		WithRequest("GET", fmt.Sprintf("/v1/patients/%s/prescriptions/latest/snapshot-draft", existingPatient), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("x-tenant-id", matchers.S(tenantID))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(prescriptionBodyMatcher)
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		baseURL := fmt.Sprintf("http://%s:%d", host, config.Port)
		client, err := patientdirectory.NewClient(baseURL, &http.Client{Timeout: 10 * time.Second})
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		email := "override@example.com"
		draft, err := client.GetPatientSnapshotDraft(ctx, existingPatient, ports.PatientDraftOptions{
			TenantID:          tenantID,
			BillingAddressID:  "addr-b",
			ShippingAddressID: "addr-s",
			ContactEmail:      &email,
		})
		if err != nil {
			return fmt.Errorf("get patient draft: %w", err)
		}
		if draft.PatientID != existingPatient {
			return fmt.Errorf("expected patient id %s, got %s", existingPatient, draft.PatientID)
		}
		if draft.BillingAddress.Line1 != "100 Main St" {
			return fmt.Errorf("expected billing address to round-trip, got %q", draft.BillingAddress.Line1)
		}

		if _, err := client.GetPatientSnapshotDraft(ctx, missingPatient, ports.PatientDraftOptions{TenantID: tenantID}); err != ports.ErrPatientNotFound {
			return fmt.Errorf("expected ErrPatientNotFound, got %v", err)
		}

		rx, err := client.GetPrescriptionSnapshotDraft(ctx, existingRx, tenantID)
		if err != nil {
			return fmt.Errorf("get prescription draft: %w", err)
		}
		if rx == nil || rx.PrescriptionID != existingRx {
			return fmt.Errorf("expected prescription %s, got %+v", existingRx, rx)
		}

		missing, err := client.GetPrescriptionSnapshotDraft(ctx, missingRx, tenantID)
		if err != nil {
			return fmt.Errorf("missing prescription should not error: %w", err)
		}
		if missing != nil {
			return fmt.Errorf("expected nil draft for missing prescription, got %+v", missing)
		}

		latest, err := client.GetLatestPrescriptionSnapshotDraft(ctx, existingPatient, tenantID)
		if err != nil {
			return fmt.Errorf("get latest prescription draft: %w", err)
		}
		if latest == nil || latest.PrescriptionID != existingRx {
			return fmt.Errorf("expected latest prescription %s, got %+v", existingRx, latest)
		}
		return nil
	})
	require.NoError(t, err)
}
