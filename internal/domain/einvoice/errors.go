package einvoice

import "github.com/poschain/backend/internal/domain/shared"

// Typed errors surfaced by the invoice issuing engine. All of them are
// shared.DomainError values so the HTTP layer can map codes to statuses.
var (
	// ErrInvoiceNotFound is returned when no invoice matches the given number
	ErrInvoiceNotFound = shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")

	// ErrInvoiceAlreadyVoided is returned when voiding an invoice twice
	ErrInvoiceAlreadyVoided = shared.NewDomainError("INVOICE_ALREADY_VOIDED", "Invoice has already been voided")

	// ErrTrackExhausted is returned when no active range has capacity left.
	// The operator must load a newly issued range before retrying.
	ErrTrackExhausted = shared.NewDomainError("TRACK_EXHAUSTED", "No active track number range has remaining capacity")

	// ErrRangeOverlap is returned when a new range overlaps an existing
	// active range with the same code pair
	ErrRangeOverlap = shared.NewDomainError("TRACK_RANGE_OVERLAP", "Track number range overlaps an existing active range")

	// ErrRangeNotFound is returned when a range lookup by ID fails
	ErrRangeNotFound = shared.NewDomainError("TRACK_RANGE_NOT_FOUND", "Track number range not found")

	// ErrTaxTypeNotComputable is returned when ComputeTax is called with
	// a classification that has no single-amount computation (mixed) or
	// an unknown code
	ErrTaxTypeNotComputable = shared.NewDomainError("TAX_TYPE_NOT_COMPUTABLE", "Tax type has no single-amount computation")

	// ErrNegativeTaxRate is returned for a negative tax rate
	ErrNegativeTaxRate = shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
)

// NewValidationError creates a validation error for malformed invoice input.
// Always raised before a serial number is consumed.
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError("INVOICE_VALIDATION", message)
}

// NewRangeValidationError creates a validation error for a malformed track range
func NewRangeValidationError(message string) *shared.DomainError {
	return shared.NewDomainError("TRACK_RANGE_VALIDATION", message)
}
