package application

import (
	"errors"
	"fmt"

	"github.com/lensworks/optical-orders-api/internal/domains/orders/domain"
	"github.com/lensworks/optical-orders-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the command violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrNotFound signals the order does not exist for the requesting tenant.
	ErrNotFound = ports.ErrNotFound
	// ErrPatientNotFound signals the patient does not exist for the tenant.
	ErrPatientNotFound = ports.ErrPatientNotFound
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingTenant) ||
		errors.Is(err, domain.ErrMissingCustomer) ||
		errors.Is(err, domain.ErrEmptyItems) ||
		errors.Is(err, domain.ErrEmptySKU) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
