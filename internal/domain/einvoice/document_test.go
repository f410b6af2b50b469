package einvoice

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func documentInvoice(t *testing.T) *Invoice {
	t.Helper()
	in := validIssueInput()
	in.Seller.Address = "台北市信義區市府路1號"
	in.Carrier = CarrierInfo{Type: "3J0002", ID1: "/ABC+123"}
	inv, err := NewInvoice(in, "ABCD00000001", "7234", time.Date(2026, 8, 15, 14, 30, 5, 0, time.Local))
	require.NoError(t, err)
	return inv
}

func TestBuildDocument(t *testing.T) {
	inv := documentInvoice(t)
	doc := BuildDocument(inv)

	assert.Equal(t, "ABCD00000001", doc.Main.InvoiceNumber)
	assert.Equal(t, "20260815", doc.Main.InvoiceDate)
	assert.Equal(t, "14:30:05", doc.Main.InvoiceTime)
	assert.Equal(t, "07", doc.Main.InvoiceType)
	assert.Equal(t, "7234", doc.Main.RandomNumber)
	assert.Equal(t, "0", doc.Main.DonateMark)
	assert.Equal(t, "N", doc.Main.PrintMark)
	assert.Equal(t, "3J0002", doc.Main.CarrierType)

	assert.Equal(t, "12345678", doc.Main.Seller.Identifier)
	assert.Equal(t, "全好買商行", doc.Main.Seller.Name.Value)
	assert.Equal(t, DefaultConsumerIdentifier, doc.Main.Buyer.Identifier)

	require.Len(t, doc.Details.ProductItems, 2)
	assert.Equal(t, "001", doc.Details.ProductItems[0].SequenceNumber)
	assert.Equal(t, "002", doc.Details.ProductItems[1].SequenceNumber)
	assert.Equal(t, "礦泉水", doc.Details.ProductItems[0].Description.Value)

	assert.Equal(t, "250", doc.Amount.TotalAmount)
	assert.Equal(t, "12", doc.Amount.TaxAmount)
	assert.Equal(t, "238", doc.Amount.SalesAmount)
	assert.Equal(t, "0.05", doc.Amount.TaxRate)
	assert.Equal(t, "TWD", doc.Amount.Currency)
}

func TestDocument_Render(t *testing.T) {
	doc := BuildDocument(documentInvoice(t))

	out, err := doc.Render()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `xmlns="urn:GEINV:eInvoiceMessage:F0401:4.1"`)
	assert.Contains(t, out, "<![CDATA[全好買商行]]>")
	assert.Contains(t, out, "<![CDATA[礦泉水]]>")
	assert.Contains(t, out, "<InvoiceNumber>ABCD00000001</InvoiceNumber>")
	// Empty fields are still emitted
	assert.Contains(t, out, "<GroupMark>")

	// Section order is Main, Details, Amount
	main := strings.Index(out, "<Main>")
	details := strings.Index(out, "<Details>")
	amount := strings.Index(out, "<Amount>")
	require.True(t, main >= 0 && details >= 0 && amount >= 0)
	assert.Less(t, main, details)
	assert.Less(t, details, amount)
}

func TestDocument_RenderIsRepeatable(t *testing.T) {
	inv := documentInvoice(t)

	first, err := BuildDocument(inv).Render()
	require.NoError(t, err)
	second, err := BuildDocument(inv).Render()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseDocument_RoundTrip(t *testing.T) {
	doc := BuildDocument(documentInvoice(t))

	out, err := doc.Render()
	require.NoError(t, err)

	parsed, err := ParseDocument([]byte(out))
	require.NoError(t, err)

	assert.Equal(t, doc.Main.InvoiceNumber, parsed.Main.InvoiceNumber)
	assert.Equal(t, doc.Main.Seller.Name.Value, parsed.Main.Seller.Name.Value)
	assert.Equal(t, doc.Amount.TotalAmount, parsed.Amount.TotalAmount)
	require.Len(t, parsed.Details.ProductItems, 2)
	assert.Equal(t, doc.Details.ProductItems[1].Description.Value, parsed.Details.ProductItems[1].Description.Value)

	total, err := parsed.TotalAmountDecimal()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(250)))
}

func TestParseDocument_Malformed(t *testing.T) {
	_, err := ParseDocument([]byte("<Invoice><Main>"))
	assert.Error(t, err)
}
