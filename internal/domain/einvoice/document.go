package einvoice

import (
	"encoding/xml"
	"fmt"

	"github.com/shopspring/decimal"
)

// F0401 message constants (MIG 4.1)
const (
	DocumentNamespace      = "urn:GEINV:eInvoiceMessage:F0401:4.1"
	DocumentSchemaLocation = "urn:GEINV:eInvoiceMessage:F0401:4.1 F0401.xsd"
	xsiNamespace           = "http://www.w3.org/2001/XMLSchema-instance"
)

// CDATAText wraps free-form text fields (names, descriptions) in a
// CDATA section so downstream parsers never trip on special characters
type CDATAText struct {
	Value string `xml:",cdata"`
}

// DocumentSeller is the seller role block of the Main section
type DocumentSeller struct {
	Identifier      string    `xml:"Identifier"`
	Name            CDATAText `xml:"Name"`
	Address         string    `xml:"Address"`
	PersonInCharge  string    `xml:"PersonInCharge"`
	TelephoneNumber string    `xml:"TelephoneNumber"`
	FacsimileNumber string    `xml:"FacsimileNumber"`
	EmailAddress    string    `xml:"EmailAddress"`
	CustomerNumber  string    `xml:"CustomerNumber"`
	RoleRemark      string    `xml:"RoleRemark"`
	BankCode        string    `xml:"BankCode"`
	BankAccount     string    `xml:"BankAccount"`
}

// DocumentBuyer is the buyer role block of the Main section
type DocumentBuyer struct {
	Identifier      string    `xml:"Identifier"`
	Name            CDATAText `xml:"Name"`
	Address         string    `xml:"Address"`
	PersonInCharge  string    `xml:"PersonInCharge"`
	TelephoneNumber string    `xml:"TelephoneNumber"`
	FacsimileNumber string    `xml:"FacsimileNumber"`
	EmailAddress    string    `xml:"EmailAddress"`
	CustomerNumber  string    `xml:"CustomerNumber"`
	RoleRemark      string    `xml:"RoleRemark"`
}

// DocumentMain is the invoice header section. Every field is emitted
// even when empty; the element order is fixed by the schema.
type DocumentMain struct {
	InvoiceNumber        string         `xml:"InvoiceNumber"`
	InvoiceDate          string         `xml:"InvoiceDate"`
	InvoiceTime          string         `xml:"InvoiceTime"`
	InvoiceType          string         `xml:"InvoiceType"`
	RandomNumber         string         `xml:"RandomNumber"`
	GroupMark            string         `xml:"GroupMark"`
	DonateMark           string         `xml:"DonateMark"`
	Seller               DocumentSeller `xml:"Seller"`
	Buyer                DocumentBuyer  `xml:"Buyer"`
	BuyerRemark          string         `xml:"BuyerRemark"`
	MainRemark           string         `xml:"MainRemark"`
	CustomsClearanceMark string         `xml:"CustomsClearanceMark"`
	Category             string         `xml:"Category"`
	RelateNumber         string         `xml:"RelateNumber"`
	CarrierType          string         `xml:"CarrierType"`
	CarrierId1           string         `xml:"CarrierId1"`
	CarrierId2           string         `xml:"CarrierId2"`
	PrintMark            string         `xml:"PrintMark"`
	NPOBAN               string         `xml:"NPOBAN"`
	BondedAreaConfirm    string         `xml:"BondedAreaConfirm"`
	ZeroTaxRateReason    string         `xml:"ZeroTaxRateReason"`
}

// DocumentProductItem is one detail line. SequenceNumber is rendered
// zero-padded to three digits.
type DocumentProductItem struct {
	SequenceNumber string    `xml:"SequenceNumber"`
	Description    CDATAText `xml:"Description"`
	Quantity       string    `xml:"Quantity"`
	Unit           string    `xml:"Unit"`
	UnitPrice      string    `xml:"UnitPrice"`
	TaxType        string    `xml:"TaxType"`
	Amount         string    `xml:"Amount"`
	Remark         string    `xml:"Remark"`
	RelateNumber   string    `xml:"RelateNumber"`
}

// DocumentDetails is the detail section
type DocumentDetails struct {
	ProductItems []DocumentProductItem `xml:"ProductItem"`
}

// DocumentAmount is the amount summary section
type DocumentAmount struct {
	SalesAmount            string `xml:"SalesAmount"`
	FreeTaxSalesAmount     string `xml:"FreeTaxSalesAmount"`
	ZeroTaxSalesAmount     string `xml:"ZeroTaxSalesAmount"`
	TaxAmount              string `xml:"TaxAmount"`
	TaxType                string `xml:"TaxType"`
	TaxRate                string `xml:"TaxRate"`
	TotalAmount            string `xml:"TotalAmount"`
	DiscountAmount         string `xml:"DiscountAmount"`
	OriginalCurrencyAmount string `xml:"OriginalCurrencyAmount"`
	ExchangeRate           string `xml:"ExchangeRate"`
	Currency               string `xml:"Currency"`
}

// Document is the complete F0401 invoice message: Main, Details and
// Amount in that order
type Document struct {
	XMLName        xml.Name        `xml:"Invoice"`
	XSI            string          `xml:"xmlns:xsi,attr"`
	SchemaLocation string          `xml:"xsi:schemaLocation,attr"`
	Namespace      string          `xml:"xmlns,attr"`
	Main           DocumentMain    `xml:"Main"`
	Details        DocumentDetails `xml:"Details"`
	Amount         DocumentAmount  `xml:"Amount"`
}

// BuildDocument maps the invoice aggregate onto the F0401 layout. The
// mapping is pure; it never mutates the aggregate and may be called
// any number of times for the same invoice.
func BuildDocument(inv *Invoice) *Document {
	doc := &Document{
		XSI:            xsiNamespace,
		SchemaLocation: DocumentSchemaLocation,
		Namespace:      DocumentNamespace,
		Main: DocumentMain{
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			InvoiceTime:   inv.InvoiceTime,
			InvoiceType:   string(inv.InvoiceType),
			RandomNumber:  inv.RandomNumber,
			DonateMark:    inv.DonateMark,
			Seller: DocumentSeller{
				Identifier:      inv.Seller.Identifier,
				Name:            CDATAText{Value: inv.Seller.Name},
				Address:         inv.Seller.Address,
				PersonInCharge:  inv.Seller.ContactPerson,
				TelephoneNumber: inv.Seller.Telephone,
				FacsimileNumber: inv.Seller.Facsimile,
				EmailAddress:    inv.Seller.Email,
				BankCode:        inv.Seller.BankCode,
				BankAccount:     inv.Seller.BankAccount,
			},
			Buyer: DocumentBuyer{
				Identifier:      inv.Buyer.Identifier,
				Name:            CDATAText{Value: inv.Buyer.Name},
				Address:         inv.Buyer.Address,
				PersonInCharge:  inv.Buyer.ContactPerson,
				TelephoneNumber: inv.Buyer.Telephone,
				FacsimileNumber: inv.Buyer.Facsimile,
				EmailAddress:    inv.Buyer.Email,
			},
			MainRemark:           inv.MainRemark,
			CustomsClearanceMark: inv.CustomsClearanceMark,
			CarrierType:          inv.Carrier.Type,
			CarrierId1:           inv.Carrier.ID1,
			CarrierId2:           inv.Carrier.ID2,
			PrintMark:            inv.PrintMark,
		},
		Amount: DocumentAmount{
			SalesAmount:        inv.Amount.SalesAmount.Amount().String(),
			FreeTaxSalesAmount: inv.Amount.FreeTaxSalesAmount.Amount().String(),
			ZeroTaxSalesAmount: inv.Amount.ZeroTaxSalesAmount.Amount().String(),
			TaxAmount:          inv.Amount.TaxAmount.Amount().String(),
			TaxType:            string(inv.Amount.TaxType),
			TaxRate:            inv.Amount.TaxRate.String(),
			TotalAmount:        inv.Amount.TotalAmount.Amount().String(),
			DiscountAmount:     inv.Amount.DiscountAmount.Amount().String(),
			Currency:           inv.Amount.Currency,
		},
	}

	for _, line := range inv.Lines {
		doc.Details.ProductItems = append(doc.Details.ProductItems, DocumentProductItem{
			SequenceNumber: fmt.Sprintf("%03d", line.SequenceNumber),
			Description:    CDATAText{Value: line.Description},
			Quantity:       line.Quantity.String(),
			Unit:           line.Unit,
			UnitPrice:      line.UnitPrice.Amount().String(),
			TaxType:        string(line.TaxType),
			Amount:         line.Amount.Amount().String(),
			Remark:         line.Remark,
		})
	}

	return doc
}

// Render serialises the document with the XML declaration and
// two-space indentation
func (d *Document) Render() (string, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal invoice document: %w", err)
	}
	return xml.Header + string(body), nil
}

// ParseDocument reads a rendered F0401 message back into its document
// form. Used to verify round-trips and to ingest documents from
// upstream systems.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse invoice document: %w", err)
	}
	return &doc, nil
}

// TotalAmountDecimal parses the summary total back into a decimal
func (d *Document) TotalAmountDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(d.Amount.TotalAmount)
}
