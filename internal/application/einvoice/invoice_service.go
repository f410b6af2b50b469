package einvoice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/poschain/backend/internal/domain/einvoice"
	"github.com/poschain/backend/internal/domain/shared"
)

// IssuerConfig carries the store identity and tax settings stamped on
// every invoice the service issues
type IssuerConfig struct {
	Seller             einvoice.SellerInfo
	TaxRate            decimal.Decimal
	LowSerialThreshold int64
}

// InvoiceService orchestrates issuance, voiding and reporting. The
// issue path is: validate, allocate a number, compose the aggregate,
// persist the triple. Validation always happens before allocation so
// bad requests never consume a serial.
type InvoiceService struct {
	invoices einvoice.InvoiceRepository
	tracks   einvoice.TrackNumberRepository
	issuer   IssuerConfig
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices einvoice.InvoiceRepository,
	tracks einvoice.TrackNumberRepository,
	issuer IssuerConfig,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoices: invoices,
		tracks:   tracks,
		issuer:   issuer,
		logger:   logger.Named("einvoice"),
	}
}

// IssueRequest is the application-level issue command. Seller fields
// left empty fall back to the configured store identity.
type IssueRequest struct {
	InvoiceType          einvoice.InvoiceType
	Seller               einvoice.SellerInfo
	Buyer                einvoice.BuyerInfo
	Carrier              einvoice.CarrierInfo
	Lines                []einvoice.LineInput
	TaxType              einvoice.TaxType
	TaxRate              decimal.Decimal
	DonateMark           string
	PrintMark            string
	CustomsClearanceMark string
	MainRemark           string
}

// toInput applies the configured defaults and builds the domain input
func (s *InvoiceService) toInput(req IssueRequest) einvoice.IssueInput {
	seller := req.Seller
	if seller.Identifier == "" {
		seller = s.issuer.Seller
	}
	rate := req.TaxRate
	if rate.IsZero() {
		rate = s.issuer.TaxRate
	}
	return einvoice.IssueInput{
		InvoiceType:          req.InvoiceType,
		Seller:               seller,
		Buyer:                req.Buyer,
		Carrier:              req.Carrier,
		Lines:                req.Lines,
		TaxType:              req.TaxType,
		TaxRate:              rate,
		DonateMark:           req.DonateMark,
		PrintMark:            req.PrintMark,
		CustomsClearanceMark: req.CustomsClearanceMark,
		MainRemark:           req.MainRemark,
	}
}

// Issue validates the request, allocates the next invoice number and
// persists the composed invoice. If the persist fails after the number
// was allocated the number stays consumed; a gap in the sequence is
// preferable to a duplicate.
func (s *InvoiceService) Issue(ctx context.Context, req IssueRequest) (*einvoice.Invoice, error) {
	input := s.toInput(req)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	number, err := s.tracks.AcquireNext(ctx)
	if err != nil {
		return nil, err
	}

	inv, err := einvoice.NewInvoice(input, number, einvoice.NewRandomCode(), time.Now())
	if err != nil {
		s.logger.Error("invoice composition failed after allocation, serial is burned",
			zap.String("invoice_number", number), zap.Error(err))
		return nil, err
	}

	if err := s.invoices.Save(ctx, inv); err != nil {
		s.logger.Error("invoice persist failed after allocation, serial is burned",
			zap.String("invoice_number", number), zap.Error(err))
		return nil, fmt.Errorf("failed to save invoice %s: %w", number, err)
	}

	s.logger.Info("invoice issued",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("total_amount", inv.Amount.TotalAmount.Amount().String()))

	s.warnOnLowCapacity(ctx)

	return inv, nil
}

// warnOnLowCapacity logs when the remaining pool of serials across all
// active ranges drops below the configured threshold. Best effort; a
// failed check never affects the issuance that triggered it.
func (s *InvoiceService) warnOnLowCapacity(ctx context.Context) {
	if s.issuer.LowSerialThreshold <= 0 {
		return
	}
	ranges, err := s.tracks.List(ctx, false)
	if err != nil {
		return
	}
	var remaining int64
	for i := range ranges {
		remaining += ranges[i].Remaining()
	}
	if remaining < s.issuer.LowSerialThreshold {
		s.logger.Warn("invoice number pool is running low",
			zap.Int64("remaining", remaining),
			zap.Int64("threshold", s.issuer.LowSerialThreshold))
	}
}

// Get returns the full invoice aggregate by number
func (s *InvoiceService) Get(ctx context.Context, number string) (*einvoice.Invoice, error) {
	return s.invoices.FindByNumber(ctx, number)
}

// List returns invoices matching the filter
func (s *InvoiceService) List(ctx context.Context, filter einvoice.InvoiceFilter) (*shared.Paginated[einvoice.Invoice], error) {
	return s.invoices.List(ctx, filter)
}

// Void cancels an issued invoice. The repository guard makes the
// transition safe under concurrent void attempts.
func (s *InvoiceService) Void(ctx context.Context, number, reason string) (*einvoice.Invoice, error) {
	inv, err := s.invoices.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	if err := inv.Void(reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.invoices.MarkVoided(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice voided",
		zap.String("invoice_number", number), zap.String("reason", reason))

	return inv, nil
}

// RenderDocument renders the invoice as an F0401 message. Works for
// issued and voided invoices alike.
func (s *InvoiceService) RenderDocument(ctx context.Context, number string) (string, error) {
	inv, err := s.invoices.FindByNumber(ctx, number)
	if err != nil {
		return "", err
	}
	return einvoice.BuildDocument(inv).Render()
}

// MarkUploaded records a successful transmission to the tax platform
func (s *InvoiceService) MarkUploaded(ctx context.Context, number, status, message string) (*einvoice.Invoice, error) {
	inv, err := s.invoices.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkUploaded(time.Now()); err != nil {
		return nil, err
	}

	log := &einvoice.UploadLog{
		BaseEntity:    shared.NewBaseEntity(),
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Status:        status,
		Message:       message,
		UploadedAt:    *inv.UploadedAt,
	}
	if err := s.invoices.MarkUploaded(ctx, inv, log); err != nil {
		return nil, err
	}

	return inv, nil
}

// Statistics aggregates counts and amounts over a date window
func (s *InvoiceService) Statistics(ctx context.Context, filter einvoice.StatisticsFilter) (*einvoice.Statistics, error) {
	return s.invoices.Statistics(ctx, filter)
}
