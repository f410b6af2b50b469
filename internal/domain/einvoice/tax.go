package einvoice

import (
	"github.com/shopspring/decimal"
)

// TaxType is the statutory tax classification code carried on invoices
// and invoice lines (MIG 4.1 coding)
type TaxType string

const (
	TaxTypeTaxable   TaxType = "1" // Taxed at the standard rate
	TaxTypeZeroRated TaxType = "2" // Zero-rated (export etc.)
	TaxTypeExempt    TaxType = "3" // Tax exempt
	TaxTypeSpecial   TaxType = "4" // Special tax rate businesses
	TaxTypeMixed     TaxType = "9" // Mixed: lines carry their own classification
)

// IsValid checks if the tax type is a recognised classification code
func (t TaxType) IsValid() bool {
	switch t {
	case TaxTypeTaxable, TaxTypeZeroRated, TaxTypeExempt, TaxTypeSpecial, TaxTypeMixed:
		return true
	}
	return false
}

// String returns the wire representation of the tax type
func (t TaxType) String() string {
	return string(t)
}

// IsLineLevel reports whether the classification may appear on an
// individual line. Mixed is an invoice-level marker only.
func (t TaxType) IsLineLevel() bool {
	return t.IsValid() && t != TaxTypeMixed
}

// DefaultTaxRate is the standard business tax rate (5%)
var DefaultTaxRate = decimal.New(5, -2)

// TaxBreakdown is the result of splitting an amount into the four
// statutory buckets. Exactly one of the bucket groups is populated for
// a given classification; the populated buckets sum to the input amount.
type TaxBreakdown struct {
	Sales  decimal.Decimal `json:"sales"`
	Tax    decimal.Decimal `json:"tax"`
	Exempt decimal.Decimal `json:"exempt"`
	Zero   decimal.Decimal `json:"zero"`
}

// Add returns the bucket-wise sum of two breakdowns
func (b TaxBreakdown) Add(other TaxBreakdown) TaxBreakdown {
	return TaxBreakdown{
		Sales:  b.Sales.Add(other.Sales),
		Tax:    b.Tax.Add(other.Tax),
		Exempt: b.Exempt.Add(other.Exempt),
		Zero:   b.Zero.Add(other.Zero),
	}
}

// Total returns the sum of all buckets, which equals the original amount
func (b TaxBreakdown) Total() decimal.Decimal {
	return b.Sales.Add(b.Tax).Add(b.Exempt).Add(b.Zero)
}

// ComputeTax splits a tax-inclusive amount into statutory buckets for
// the given classification. The tax figure is the amount multiplied
// directly by the rate (not extracted via 1+rate) and rounded
// half-to-even to whole dollars, so amount=50 at 5% yields tax=2.
//
// The same function is applied independently to each line amount and to
// the invoice total; callers must not derive line taxes by apportioning
// the invoice-level tax.
func ComputeTax(amount decimal.Decimal, taxType TaxType, rate decimal.Decimal) (TaxBreakdown, error) {
	if !taxType.IsLineLevel() {
		return TaxBreakdown{}, ErrTaxTypeNotComputable
	}
	if rate.IsNegative() {
		return TaxBreakdown{}, ErrNegativeTaxRate
	}

	switch taxType {
	case TaxTypeZeroRated:
		return TaxBreakdown{Zero: amount}, nil
	case TaxTypeExempt:
		return TaxBreakdown{Exempt: amount}, nil
	default:
		// Taxable and special-rate both use direct multiplication
		tax := amount.Mul(rate).RoundBank(0)
		return TaxBreakdown{
			Sales: amount.Sub(tax),
			Tax:   tax,
		}, nil
	}
}
