package einvoice

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/poschain/backend/internal/domain/shared"
	"github.com/poschain/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle state of an issued invoice.
// The only transition is issued -> voided; there is no way back.
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusVoided InvoiceStatus = "voided"
)

// InvoiceType is the statutory document type code
type InvoiceType string

const (
	InvoiceTypeGeneral InvoiceType = "07" // General tax invoice
	InvoiceTypeSpecial InvoiceType = "08" // Special tax invoice
)

// IsValid checks if the invoice type is a recognised document type
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeGeneral || t == InvoiceTypeSpecial
}

// Invoice is the aggregate root for an issued electronic invoice. It
// owns the header, the detail lines and the amount summary; the three
// are always persisted together in one transaction.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string        `json:"invoice_number" gorm:"size:12;not null;uniqueIndex"`
	InvoiceDate   string        `json:"invoice_date" gorm:"size:8;not null;index"`
	InvoiceTime   string        `json:"invoice_time" gorm:"size:8;not null"`
	InvoiceType   InvoiceType   `json:"invoice_type" gorm:"size:2;not null;default:'07'"`
	Status        InvoiceStatus `json:"status" gorm:"size:16;not null;index"`
	RandomNumber  string        `json:"random_number" gorm:"size:4;not null"`

	Seller  SellerInfo  `json:"seller" gorm:"embedded;embeddedPrefix:seller_"`
	Buyer   BuyerInfo   `json:"buyer" gorm:"embedded;embeddedPrefix:buyer_"`
	Carrier CarrierInfo `json:"carrier" gorm:"embedded;embeddedPrefix:carrier_"`

	DonateMark           string `json:"donate_mark" gorm:"size:1;not null;default:'0'"`
	PrintMark            string `json:"print_mark" gorm:"size:1;not null;default:'N'"`
	CustomsClearanceMark string `json:"customs_clearance_mark" gorm:"size:1"`
	MainRemark           string `json:"main_remark" gorm:"size:200"`

	VoidReason string     `json:"void_reason,omitempty" gorm:"size:20"`
	VoidedAt   *time.Time `json:"voided_at,omitempty"`

	Uploaded   bool       `json:"uploaded" gorm:"not null;default:false"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`

	Lines  []InvoiceLine `json:"lines" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Amount InvoiceAmount `json:"amount" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceLine is one detail line of an invoice. SequenceNumber starts
// at 1 and follows input order.
type InvoiceLine struct {
	shared.BaseEntity
	InvoiceID      uuid.UUID         `json:"invoice_id" gorm:"type:uuid;not null;index"`
	SequenceNumber int               `json:"sequence_number" gorm:"not null"`
	Description    string            `json:"description" gorm:"size:256;not null"`
	Quantity       decimal.Decimal   `json:"quantity" gorm:"type:decimal(20,4);not null"`
	Unit           string            `json:"unit" gorm:"size:6"`
	UnitPrice      valueobject.Money `json:"unit_price" gorm:"type:decimal(20,4);not null"`
	Amount         valueobject.Money `json:"amount" gorm:"type:decimal(20,4);not null"`
	TaxType        TaxType           `json:"tax_type" gorm:"size:1;not null"`
	Remark         string            `json:"remark" gorm:"size:120"`
}

// InvoiceAmount is the amount summary of an invoice. All monetary
// figures are tax-inclusive splits of TotalAmount.
type InvoiceAmount struct {
	shared.BaseEntity
	InvoiceID          uuid.UUID         `json:"invoice_id" gorm:"type:uuid;not null;uniqueIndex"`
	SalesAmount        valueobject.Money `json:"sales_amount" gorm:"type:decimal(20,4);not null"`
	FreeTaxSalesAmount valueobject.Money `json:"free_tax_sales_amount" gorm:"type:decimal(20,4);not null"`
	ZeroTaxSalesAmount valueobject.Money `json:"zero_tax_sales_amount" gorm:"type:decimal(20,4);not null"`
	TaxType            TaxType           `json:"tax_type" gorm:"size:1;not null"`
	TaxRate            decimal.Decimal   `json:"tax_rate" gorm:"type:decimal(6,4);not null"`
	TaxAmount          valueobject.Money `json:"tax_amount" gorm:"type:decimal(20,4);not null"`
	TotalAmount        valueobject.Money `json:"total_amount" gorm:"type:decimal(20,4);not null"`
	DiscountAmount     valueobject.Money `json:"discount_amount" gorm:"type:decimal(20,4);not null"`
	Currency           string            `json:"currency" gorm:"size:3;not null;default:'TWD'"`
}

// LineInput is one requested detail line. Amount is optional; when
// zero it is computed as Quantity * UnitPrice. TaxType is optional on
// uniform invoices and inherits the invoice-level classification.
type LineInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	TaxType     TaxType         `json:"tax_type"`
	Remark      string          `json:"remark"`
}

// IssueInput is everything the caller supplies to issue an invoice.
// The invoice number and random code are assigned by the engine.
type IssueInput struct {
	InvoiceType          InvoiceType
	Seller               SellerInfo
	Buyer                BuyerInfo
	Carrier              CarrierInfo
	Lines                []LineInput
	TaxType              TaxType
	TaxRate              decimal.Decimal
	DonateMark           string
	PrintMark            string
	CustomsClearanceMark string
	MainRemark           string
}

// EffectiveTaxRate returns the requested rate, falling back to the
// statutory default when none was given
func (in IssueInput) EffectiveTaxRate() decimal.Decimal {
	if in.TaxRate.IsZero() {
		return DefaultTaxRate
	}
	return in.TaxRate
}

// Validate checks the issue request before any serial number is
// consumed. A request that fails here never touches the allocator.
func (in IssueInput) Validate() error {
	if in.InvoiceType != "" && !in.InvoiceType.IsValid() {
		return NewValidationError(fmt.Sprintf("Unknown invoice type %q", in.InvoiceType))
	}
	if err := in.Seller.Validate(); err != nil {
		return err
	}
	if err := in.Carrier.Validate(); err != nil {
		return err
	}
	if in.TaxType != "" && !in.TaxType.IsValid() {
		return NewValidationError(fmt.Sprintf("Unknown tax type %q", in.TaxType))
	}
	if in.TaxRate.IsNegative() {
		return ErrNegativeTaxRate
	}
	if len(in.Lines) == 0 {
		return NewValidationError("At least one invoice line is required")
	}

	for i, line := range in.Lines {
		if line.Description == "" {
			return NewValidationError(fmt.Sprintf("Line %d: description is required", i+1))
		}
		if !line.Quantity.IsPositive() {
			return NewValidationError(fmt.Sprintf("Line %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return NewValidationError(fmt.Sprintf("Line %d: unit price cannot be negative", i+1))
		}
		if line.Amount.IsNegative() {
			return NewValidationError(fmt.Sprintf("Line %d: amount cannot be negative", i+1))
		}
		if line.TaxType != "" && !line.TaxType.IsLineLevel() {
			return NewValidationError(fmt.Sprintf("Line %d: invalid line tax type %q", i+1, line.TaxType))
		}
		if in.TaxType == TaxTypeMixed && line.TaxType == "" {
			return NewValidationError(fmt.Sprintf("Line %d: mixed invoices require a tax type on every line", i+1))
		}
	}

	return nil
}

// effectiveTaxType returns the invoice-level classification with the
// taxable default applied
func (in IssueInput) effectiveTaxType() TaxType {
	if in.TaxType == "" {
		return TaxTypeTaxable
	}
	return in.TaxType
}

// lineAmount resolves the tax-inclusive amount of a line
func (l LineInput) lineAmount() decimal.Decimal {
	if !l.Amount.IsZero() {
		return l.Amount
	}
	return l.Quantity.Mul(l.UnitPrice)
}

// NewInvoice assembles the invoice aggregate for an already-allocated
// number. Input must have been validated; the amount summary is
// derived here and never accepted from the caller.
//
// On uniform invoices the summary tax is computed once from the grand
// total. On mixed invoices each line is split according to its own
// classification and the summary is the bucket-wise sum.
func NewInvoice(in IssueInput, number, randomNumber string, issuedAt time.Time) (*Invoice, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if number == "" {
		return nil, NewValidationError("Invoice number is required")
	}

	taxType := in.effectiveTaxType()
	rate := in.EffectiveTaxRate()

	inv := &Invoice{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		InvoiceNumber:        number,
		InvoiceDate:          issuedAt.Format("20060102"),
		InvoiceTime:          issuedAt.Format("15:04:05"),
		InvoiceType:          in.InvoiceType,
		Status:               InvoiceStatusIssued,
		RandomNumber:         randomNumber,
		Seller:               in.Seller,
		Buyer:                in.Buyer.Normalized(),
		Carrier:              in.Carrier,
		DonateMark:           in.DonateMark,
		PrintMark:            in.PrintMark,
		CustomsClearanceMark: in.CustomsClearanceMark,
		MainRemark:           in.MainRemark,
	}
	if inv.InvoiceType == "" {
		inv.InvoiceType = InvoiceTypeGeneral
	}
	if inv.DonateMark == "" {
		inv.DonateMark = "0"
	}
	if inv.PrintMark == "" {
		inv.PrintMark = "N"
	}

	total := decimal.Zero
	lineSum := TaxBreakdown{}
	for i, li := range in.Lines {
		amount := li.lineAmount()
		lineTaxType := li.TaxType
		if lineTaxType == "" {
			lineTaxType = taxType
		}

		breakdown, err := ComputeTax(amount, lineTaxType, rate)
		if err != nil {
			return nil, err
		}
		lineSum = lineSum.Add(breakdown)
		total = total.Add(amount)

		inv.Lines = append(inv.Lines, InvoiceLine{
			BaseEntity:     shared.NewBaseEntity(),
			InvoiceID:      inv.ID,
			SequenceNumber: i + 1,
			Description:    li.Description,
			Quantity:       li.Quantity,
			Unit:           li.Unit,
			UnitPrice:      valueobject.NewMoneyTWD(li.UnitPrice),
			Amount:         valueobject.NewMoneyTWD(amount),
			TaxType:        lineTaxType,
			Remark:         li.Remark,
		})
	}

	summary := lineSum
	if taxType != TaxTypeMixed {
		// Uniform invoices compute the summary from the grand total so
		// the header tax matches a single statutory computation
		s, err := ComputeTax(total, taxType, rate)
		if err != nil {
			return nil, err
		}
		summary = s
	}

	inv.Amount = InvoiceAmount{
		BaseEntity:         shared.NewBaseEntity(),
		InvoiceID:          inv.ID,
		SalesAmount:        valueobject.NewMoneyTWD(summary.Sales),
		FreeTaxSalesAmount: valueobject.NewMoneyTWD(summary.Exempt),
		ZeroTaxSalesAmount: valueobject.NewMoneyTWD(summary.Zero),
		TaxType:            taxType,
		TaxRate:            rate,
		TaxAmount:          valueobject.NewMoneyTWD(summary.Tax),
		TotalAmount:        valueobject.NewMoneyTWD(total),
		DiscountAmount:     valueobject.ZeroTWD(),
		Currency:           string(valueobject.DefaultCurrency),
	}

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return inv, nil
}

// Void cancels the invoice. Voiding is one-way and requires a reason;
// a voided invoice keeps all its data for audit.
func (inv *Invoice) Void(reason string, at time.Time) error {
	if inv.Status == InvoiceStatusVoided {
		return ErrInvoiceAlreadyVoided
	}
	if reason == "" {
		return NewValidationError("Void reason is required")
	}

	inv.Status = InvoiceStatusVoided
	inv.VoidReason = reason
	inv.VoidedAt = &at
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv, reason))

	return nil
}

// MarkUploaded records a successful transmission to the tax platform
func (inv *Invoice) MarkUploaded(at time.Time) error {
	if inv.Uploaded {
		return shared.ErrInvalidState
	}
	inv.Uploaded = true
	inv.UploadedAt = &at
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// IsVoided reports whether the invoice has been cancelled
func (inv *Invoice) IsVoided() bool {
	return inv.Status == InvoiceStatusVoided
}

// NewRandomCode returns the 4-digit verification code printed next to
// the invoice number
func NewRandomCode() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}

// TableName sets the table name for GORM
func (Invoice) TableName() string {
	return "einvoice_main"
}

// TableName sets the table name for GORM
func (InvoiceLine) TableName() string {
	return "einvoice_details"
}

// TableName sets the table name for GORM
func (InvoiceAmount) TableName() string {
	return "einvoice_amount"
}
