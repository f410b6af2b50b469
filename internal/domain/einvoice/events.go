package einvoice

import (
	"github.com/poschain/backend/internal/domain/shared"
)

// Event types for the invoice issuing engine
const (
	EventTypeInvoiceIssued   = "einvoice.invoice.issued"
	EventTypeInvoiceVoided   = "einvoice.invoice.voided"
	EventTypeTrackRangeAdded = "einvoice.track_range.added"
)

// InvoiceIssuedEvent is raised when an invoice is successfully composed
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	TotalAmount   string `json:"total_amount"`
	TaxAmount     string `json:"tax_amount"`
}

// NewInvoiceIssuedEvent creates an InvoiceIssuedEvent from the aggregate
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceDate:     inv.InvoiceDate,
		TotalAmount:     inv.Amount.TotalAmount.Amount().String(),
		TaxAmount:       inv.Amount.TaxAmount.Amount().String(),
	}
}

// InvoiceVoidedEvent is raised when an invoice is cancelled
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Reason        string `json:"reason"`
}

// NewInvoiceVoidedEvent creates an InvoiceVoidedEvent from the aggregate
func NewInvoiceVoidedEvent(inv *Invoice, reason string) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          reason,
	}
}

// TrackRangeAddedEvent is raised when a new number range is loaded
type TrackRangeAddedEvent struct {
	shared.BaseDomainEvent
	CodePair    string `json:"code_pair"`
	StartNumber int64  `json:"start_number"`
	EndNumber   int64  `json:"end_number"`
}

// NewTrackRangeAddedEvent creates a TrackRangeAddedEvent from the aggregate
func NewTrackRangeAddedEvent(r *TrackNumberRange) *TrackRangeAddedEvent {
	return &TrackRangeAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTrackRangeAdded, "TrackNumberRange", r.ID),
		CodePair:        r.CodePair(),
		StartNumber:     r.StartNumber,
		EndNumber:       r.EndNumber,
	}
}
