package einvoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIssueInput() IssueInput {
	return IssueInput{
		Seller: SellerInfo{Identifier: "12345678", Name: "全好買商行"},
		Buyer:  BuyerInfo{},
		Lines: []LineInput{
			{Description: "礦泉水", Quantity: decimal.NewFromInt(10), Unit: "瓶", UnitPrice: decimal.NewFromInt(20)},
			{Description: "麵包", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
	}
}

func issueTime() time.Time {
	return time.Date(2026, 8, 15, 14, 30, 5, 0, time.Local)
}

func TestIssueInput_Validate(t *testing.T) {
	t.Run("accepts a minimal consumer sale", func(t *testing.T) {
		assert.NoError(t, validIssueInput().Validate())
	})

	t.Run("rejects missing seller", func(t *testing.T) {
		in := validIssueInput()
		in.Seller.Identifier = ""
		assert.Error(t, in.Validate())
	})

	t.Run("rejects empty line set", func(t *testing.T) {
		in := validIssueInput()
		in.Lines = nil
		assert.Error(t, in.Validate())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		in := validIssueInput()
		in.Lines[0].Quantity = decimal.Zero
		assert.Error(t, in.Validate())
	})

	t.Run("rejects unknown tax type", func(t *testing.T) {
		in := validIssueInput()
		in.TaxType = "7"
		assert.Error(t, in.Validate())
	})

	t.Run("mixed invoices need line tax types", func(t *testing.T) {
		in := validIssueInput()
		in.TaxType = TaxTypeMixed
		assert.Error(t, in.Validate())

		in.Lines[0].TaxType = TaxTypeTaxable
		in.Lines[1].TaxType = TaxTypeExempt
		assert.NoError(t, in.Validate())
	})

	t.Run("lines cannot carry the mixed marker", func(t *testing.T) {
		in := validIssueInput()
		in.Lines[0].TaxType = TaxTypeMixed
		assert.Error(t, in.Validate())
	})

	t.Run("carrier type and id must travel together", func(t *testing.T) {
		in := validIssueInput()
		in.Carrier = CarrierInfo{Type: "3J0002"}
		assert.Error(t, in.Validate())

		in.Carrier = CarrierInfo{Type: "3J0002", ID1: "/ABC+123"}
		assert.NoError(t, in.Validate())
	})
}

func TestNewInvoice(t *testing.T) {
	t.Run("uniform taxable invoice computes the summary from the total", func(t *testing.T) {
		inv, err := NewInvoice(validIssueInput(), "ABCD00000001", "7234", issueTime())
		require.NoError(t, err)

		assert.Equal(t, "ABCD00000001", inv.InvoiceNumber)
		assert.Equal(t, "20260815", inv.InvoiceDate)
		assert.Equal(t, "14:30:05", inv.InvoiceTime)
		assert.Equal(t, InvoiceTypeGeneral, inv.InvoiceType)
		assert.Equal(t, InvoiceStatusIssued, inv.Status)
		assert.Equal(t, "7234", inv.RandomNumber)

		// 200 + 50 = 250 total; 250 * 0.05 = 12.5 rounds half-to-even to 12
		assert.Equal(t, "250", inv.Amount.TotalAmount.Amount().String())
		assert.Equal(t, "12", inv.Amount.TaxAmount.Amount().String())
		assert.Equal(t, "238", inv.Amount.SalesAmount.Amount().String())
		assert.True(t, inv.Amount.FreeTaxSalesAmount.IsZero())
		assert.True(t, inv.Amount.ZeroTaxSalesAmount.IsZero())
		assert.Equal(t, TaxTypeTaxable, inv.Amount.TaxType)
		assert.Equal(t, "TWD", inv.Amount.Currency)

		require.Len(t, inv.Lines, 2)
		assert.Equal(t, 1, inv.Lines[0].SequenceNumber)
		assert.Equal(t, 2, inv.Lines[1].SequenceNumber)
		assert.Equal(t, "200", inv.Lines[0].Amount.Amount().String())
		assert.Equal(t, "50", inv.Lines[1].Amount.Amount().String())
		assert.Equal(t, TaxTypeTaxable, inv.Lines[0].TaxType)

		assert.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("mixed invoice sums per-line buckets", func(t *testing.T) {
		in := validIssueInput()
		in.TaxType = TaxTypeMixed
		in.Lines[0].TaxType = TaxTypeTaxable // 200: tax 10, sales 190
		in.Lines[1].TaxType = TaxTypeExempt  // 50 exempt

		inv, err := NewInvoice(in, "ABCD00000002", "0001", issueTime())
		require.NoError(t, err)

		assert.Equal(t, "250", inv.Amount.TotalAmount.Amount().String())
		assert.Equal(t, "10", inv.Amount.TaxAmount.Amount().String())
		assert.Equal(t, "190", inv.Amount.SalesAmount.Amount().String())
		assert.Equal(t, "50", inv.Amount.FreeTaxSalesAmount.Amount().String())
		assert.Equal(t, TaxTypeMixed, inv.Amount.TaxType)
	})

	t.Run("zero-rated invoice fills the zero bucket", func(t *testing.T) {
		in := validIssueInput()
		in.TaxType = TaxTypeZeroRated

		inv, err := NewInvoice(in, "ABCD00000003", "0002", issueTime())
		require.NoError(t, err)

		assert.Equal(t, "250", inv.Amount.ZeroTaxSalesAmount.Amount().String())
		assert.True(t, inv.Amount.TaxAmount.IsZero())
		assert.True(t, inv.Amount.SalesAmount.IsZero())
	})

	t.Run("explicit line amount wins over quantity times price", func(t *testing.T) {
		in := validIssueInput()
		in.Lines = []LineInput{{
			Description: "折扣組合",
			Quantity:    decimal.NewFromInt(3),
			UnitPrice:   decimal.NewFromInt(100),
			Amount:      decimal.NewFromInt(280),
		}}

		inv, err := NewInvoice(in, "ABCD00000004", "0003", issueTime())
		require.NoError(t, err)
		assert.Equal(t, "280", inv.Amount.TotalAmount.Amount().String())
	})

	t.Run("normalises a blank buyer to the walk-in consumer", func(t *testing.T) {
		inv, err := NewInvoice(validIssueInput(), "ABCD00000005", "0004", issueTime())
		require.NoError(t, err)
		assert.Equal(t, DefaultConsumerIdentifier, inv.Buyer.Identifier)
		assert.Equal(t, "消費者", inv.Buyer.Name)
	})

	t.Run("rejects a missing number", func(t *testing.T) {
		_, err := NewInvoice(validIssueInput(), "", "0005", issueTime())
		assert.Error(t, err)
	})
}

func TestInvoice_Void(t *testing.T) {
	inv, err := NewInvoice(validIssueInput(), "ABCD00000010", "1234", issueTime())
	require.NoError(t, err)

	t.Run("requires a reason", func(t *testing.T) {
		assert.Error(t, inv.Void("", time.Now()))
	})

	t.Run("records reason and time", func(t *testing.T) {
		at := time.Now()
		require.NoError(t, inv.Void("輸入錯誤", at))
		assert.Equal(t, InvoiceStatusVoided, inv.Status)
		assert.Equal(t, "輸入錯誤", inv.VoidReason)
		require.NotNil(t, inv.VoidedAt)
		assert.True(t, inv.VoidedAt.Equal(at))
		assert.True(t, inv.IsVoided())
	})

	t.Run("cannot void twice", func(t *testing.T) {
		err := inv.Void("再取消一次", time.Now())
		assert.ErrorIs(t, err, ErrInvoiceAlreadyVoided)
	})
}

func TestInvoice_MarkUploaded(t *testing.T) {
	inv, err := NewInvoice(validIssueInput(), "ABCD00000011", "5678", issueTime())
	require.NoError(t, err)

	require.NoError(t, inv.MarkUploaded(time.Now()))
	assert.True(t, inv.Uploaded)
	assert.NotNil(t, inv.UploadedAt)

	assert.Error(t, inv.MarkUploaded(time.Now()))
}

func TestNewRandomCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := NewRandomCode()
		require.Len(t, code, 4)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}
