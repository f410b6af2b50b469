package einvoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poschain/backend/internal/domain/shared"
)

// InvoiceFilter narrows invoice queries. Date bounds are inclusive and
// use the yyyymmdd storage format.
type InvoiceFilter struct {
	shared.Filter
	Status          InvoiceStatus
	DateFrom        string
	DateTo          string
	BuyerIdentifier string
	Uploaded        *bool
}

// StatisticsFilter bounds the aggregation window
type StatisticsFilter struct {
	DateFrom         string
	DateTo           string
	SellerIdentifier string
}

// Statistics is the aggregated view over invoices in a window.
// IssuedAmount and VoidedAmount split the summary totals by current
// status; the sales and tax sums cover every matched invoice
// regardless of status, since a voided invoice stays in the ledger.
type Statistics struct {
	InvoiceCount       int64           `json:"invoice_count"`
	IssuedCount        int64           `json:"issued_count"`
	VoidedCount        int64           `json:"voided_count"`
	IssuedAmount       decimal.Decimal `json:"issued_amount"`
	VoidedAmount       decimal.Decimal `json:"voided_amount"`
	SalesAmount        decimal.Decimal `json:"sales_amount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	FreeTaxSalesAmount decimal.Decimal `json:"free_tax_sales_amount"`
	ZeroTaxSalesAmount decimal.Decimal `json:"zero_tax_sales_amount"`
}

// UploadLog records one transmission of an invoice to the tax platform
type UploadLog struct {
	shared.BaseEntity
	InvoiceID     uuid.UUID `json:"invoice_id" gorm:"type:uuid;not null;index"`
	InvoiceNumber string    `json:"invoice_number" gorm:"size:12;not null;index"`
	Status        string    `json:"status" gorm:"size:16;not null"`
	Message       string    `json:"message" gorm:"size:200"`
	UploadedAt    time.Time `json:"uploaded_at" gorm:"not null"`
}

// TableName sets the table name for GORM
func (UploadLog) TableName() string {
	return "einvoice_upload_logs"
}

// InvoiceRepository persists the invoice aggregate. Save writes the
// header, lines and amount summary in a single transaction.
type InvoiceRepository interface {
	Save(ctx context.Context, inv *Invoice) error
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) (*shared.Paginated[Invoice], error)

	// MarkVoided flips the status with a compare-and-set guarded on the
	// issued state; a concurrent void loses and gets
	// ErrInvoiceAlreadyVoided
	MarkVoided(ctx context.Context, inv *Invoice) error

	// MarkUploaded updates the upload flag and appends the log entry in
	// one transaction
	MarkUploaded(ctx context.Context, inv *Invoice, log *UploadLog) error

	Statistics(ctx context.Context, filter StatisticsFilter) (*Statistics, error)
}

// TrackNumberRepository persists number ranges and performs the atomic
// allocation step
type TrackNumberRepository interface {
	// Save inserts a new range, rejecting overlaps with existing active
	// ranges on the same code pair
	Save(ctx context.Context, r *TrackNumberRange) error
	FindByID(ctx context.Context, id uuid.UUID) (*TrackNumberRange, error)
	List(ctx context.Context, includeInactive bool) ([]TrackNumberRange, error)
	Update(ctx context.Context, r *TrackNumberRange) error

	// AcquireNext picks the oldest active range with capacity, advances
	// its pointer under a row lock and returns the formatted invoice
	// number. Each returned number is handed out exactly once even
	// under concurrent callers. Returns ErrTrackExhausted when no range
	// can serve.
	AcquireNext(ctx context.Context) (string, error)
}
