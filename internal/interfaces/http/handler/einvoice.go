package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	einvapp "github.com/poschain/backend/internal/application/einvoice"
	"github.com/poschain/backend/internal/domain/einvoice"
	"github.com/poschain/backend/internal/domain/shared"
	"github.com/poschain/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles electronic invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *einvapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *einvapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// IssueInvoiceRequest represents a request to issue a new invoice
type IssueInvoiceRequest struct {
	InvoiceType          string                  `json:"invoice_type" binding:"omitempty,oneof=07 08"`
	Seller               *PartyInput             `json:"seller"`
	Buyer                *PartyInput             `json:"buyer"`
	Carrier              *CarrierInput           `json:"carrier"`
	Lines                []IssueInvoiceLineInput `json:"lines" binding:"required,min=1,dive"`
	TaxType              string                  `json:"tax_type" binding:"omitempty,oneof=1 2 3 4 9"`
	TaxRate              string                  `json:"tax_rate"`
	DonateMark           string                  `json:"donate_mark" binding:"omitempty,oneof=0 1"`
	PrintMark            string                  `json:"print_mark" binding:"omitempty,oneof=Y N"`
	CustomsClearanceMark string                  `json:"customs_clearance_mark" binding:"omitempty,oneof=1 2"`
	MainRemark           string                  `json:"main_remark" binding:"omitempty,max=200"`
}

// PartyInput identifies a transaction party
type PartyInput struct {
	Identifier string `json:"identifier" binding:"omitempty,len=8,numeric"`
	Name       string `json:"name" binding:"omitempty,max=60"`
	Address    string `json:"address" binding:"omitempty,max=100"`
	Telephone  string `json:"telephone" binding:"omitempty,max=26"`
	Email      string `json:"email" binding:"omitempty,max=80"`
}

// CarrierInput identifies the carrier an invoice is stored on
type CarrierInput struct {
	Type string `json:"type" binding:"required,max=6"`
	ID1  string `json:"id1" binding:"required,max=64"`
	ID2  string `json:"id2" binding:"omitempty,max=64"`
}

// IssueInvoiceLineInput represents one detail line of the request
type IssueInvoiceLineInput struct {
	Description string `json:"description" binding:"required,min=1,max=256"`
	Quantity    string `json:"quantity" binding:"required"`
	Unit        string `json:"unit" binding:"omitempty,max=6"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	Amount      string `json:"amount"`
	TaxType     string `json:"tax_type" binding:"omitempty,oneof=1 2 3 4"`
	Remark      string `json:"remark" binding:"omitempty,max=120"`
}

// VoidInvoiceRequest represents a request to void an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=20"`
}

// UploadResultRequest records the outcome of a platform transmission
type UploadResultRequest struct {
	Status  string `json:"status" binding:"required,max=16"`
	Message string `json:"message" binding:"omitempty,max=200"`
}

// ListInvoicesRequest represents list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	Status          string `form:"status" binding:"omitempty,oneof=issued voided"`
	DateFrom        string `form:"date_from" binding:"omitempty,len=8,numeric"`
	DateTo          string `form:"date_to" binding:"omitempty,len=8,numeric"`
	BuyerIdentifier string `form:"buyer_identifier" binding:"omitempty,len=8,numeric"`
	Uploaded        *bool  `form:"uploaded"`
}

// StatisticsRequest represents statistics query parameters
type StatisticsRequest struct {
	DateFrom         string `form:"date_from" binding:"omitempty,len=8,numeric"`
	DateTo           string `form:"date_to" binding:"omitempty,len=8,numeric"`
	SellerIdentifier string `form:"seller_identifier" binding:"omitempty,len=8,numeric"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                   string                `json:"id"`
	InvoiceNumber        string                `json:"invoice_number"`
	InvoiceDate          string                `json:"invoice_date"`
	InvoiceTime          string                `json:"invoice_time"`
	InvoiceType          string                `json:"invoice_type"`
	Status               string                `json:"status"`
	RandomNumber         string                `json:"random_number"`
	Seller               PartyResponse         `json:"seller"`
	Buyer                PartyResponse         `json:"buyer"`
	Carrier              *CarrierInput         `json:"carrier,omitempty"`
	DonateMark           string                `json:"donate_mark"`
	PrintMark            string                `json:"print_mark"`
	CustomsClearanceMark string                `json:"customs_clearance_mark,omitempty"`
	MainRemark           string                `json:"main_remark,omitempty"`
	Lines                []InvoiceLineResponse `json:"lines"`
	Amount               AmountResponse        `json:"amount"`
	VoidReason           string                `json:"void_reason,omitempty"`
	VoidedAt             *time.Time            `json:"voided_at,omitempty"`
	Uploaded             bool                  `json:"uploaded"`
	UploadedAt           *time.Time            `json:"uploaded_at,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
}

// PartyResponse represents a transaction party in responses
type PartyResponse struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
}

// InvoiceLineResponse represents one detail line in responses
type InvoiceLineResponse struct {
	SequenceNumber int    `json:"sequence_number"`
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit,omitempty"`
	UnitPrice      string `json:"unit_price"`
	Amount         string `json:"amount"`
	TaxType        string `json:"tax_type"`
	Remark         string `json:"remark,omitempty"`
}

// AmountResponse represents the amount summary in responses
type AmountResponse struct {
	SalesAmount        string `json:"sales_amount"`
	FreeTaxSalesAmount string `json:"free_tax_sales_amount"`
	ZeroTaxSalesAmount string `json:"zero_tax_sales_amount"`
	TaxType            string `json:"tax_type"`
	TaxRate            string `json:"tax_rate"`
	TaxAmount          string `json:"tax_amount"`
	TotalAmount        string `json:"total_amount"`
	Currency           string `json:"currency"`
}

// StatisticsResponse represents aggregated invoice figures. The
// issued and voided amounts split the summary totals by status; the
// sales and tax figures sum over all invoices in the window.
type StatisticsResponse struct {
	InvoiceCount       int64  `json:"invoice_count"`
	IssuedCount        int64  `json:"issued_count"`
	VoidedCount        int64  `json:"voided_count"`
	IssuedAmount       string `json:"issued_amount"`
	VoidedAmount       string `json:"voided_amount"`
	SalesAmount        string `json:"sales_amount"`
	TaxAmount          string `json:"tax_amount"`
	FreeTaxSalesAmount string `json:"free_tax_sales_amount"`
	ZeroTaxSalesAmount string `json:"zero_tax_sales_amount"`
}

// Issue handles POST /einvoices
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appReq, err := h.toIssueRequest(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inv, err := h.invoiceService.Issue(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(inv))
}

// toIssueRequest converts the wire request into the application command
func (h *InvoiceHandler) toIssueRequest(req IssueInvoiceRequest) (einvapp.IssueRequest, error) {
	out := einvapp.IssueRequest{
		InvoiceType:          einvoice.InvoiceType(req.InvoiceType),
		TaxType:              einvoice.TaxType(req.TaxType),
		DonateMark:           req.DonateMark,
		PrintMark:            req.PrintMark,
		CustomsClearanceMark: req.CustomsClearanceMark,
		MainRemark:           req.MainRemark,
	}
	if req.InvoiceType == "" {
		out.InvoiceType = einvoice.InvoiceTypeGeneral
	}

	if req.Seller != nil {
		out.Seller = einvoice.SellerInfo{
			Identifier: req.Seller.Identifier,
			Name:       req.Seller.Name,
			Address:    req.Seller.Address,
			Telephone:  req.Seller.Telephone,
			Email:      req.Seller.Email,
		}
	}
	if req.Buyer != nil {
		out.Buyer = einvoice.BuyerInfo{
			Identifier: req.Buyer.Identifier,
			Name:       req.Buyer.Name,
			Address:    req.Buyer.Address,
			Telephone:  req.Buyer.Telephone,
			Email:      req.Buyer.Email,
		}
	}
	if req.Carrier != nil {
		out.Carrier = einvoice.CarrierInfo{
			Type: req.Carrier.Type,
			ID1:  req.Carrier.ID1,
			ID2:  req.Carrier.ID2,
		}
	}

	if req.TaxRate != "" {
		rate, err := decimal.NewFromString(req.TaxRate)
		if err != nil {
			return einvapp.IssueRequest{}, shared.NewDomainError("INVOICE_VALIDATION", "tax_rate is not a valid decimal")
		}
		out.TaxRate = rate
	}

	out.Lines = make([]einvoice.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		converted, err := toLineInput(line)
		if err != nil {
			return einvapp.IssueRequest{}, err
		}
		out.Lines = append(out.Lines, converted)
	}

	return out, nil
}

func toLineInput(line IssueInvoiceLineInput) (einvoice.LineInput, error) {
	quantity, err := decimal.NewFromString(line.Quantity)
	if err != nil {
		return einvoice.LineInput{}, shared.NewDomainError("INVOICE_VALIDATION", "line quantity is not a valid decimal")
	}
	unitPrice, err := decimal.NewFromString(line.UnitPrice)
	if err != nil {
		return einvoice.LineInput{}, shared.NewDomainError("INVOICE_VALIDATION", "line unit_price is not a valid decimal")
	}
	amount := decimal.Zero
	if line.Amount != "" {
		amount, err = decimal.NewFromString(line.Amount)
		if err != nil {
			return einvoice.LineInput{}, shared.NewDomainError("INVOICE_VALIDATION", "line amount is not a valid decimal")
		}
	}
	return einvoice.LineInput{
		Description: line.Description,
		Quantity:    quantity,
		Unit:        line.Unit,
		UnitPrice:   unitPrice,
		Amount:      amount,
		TaxType:     einvoice.TaxType(line.TaxType),
		Remark:      line.Remark,
	}, nil
}

// Get handles GET /einvoices/:number
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoiceService.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// List handles GET /einvoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	page := req.Normalized()

	filter := einvoice.InvoiceFilter{
		Filter: shared.Filter{
			Page:     page.Page,
			PageSize: page.PageSize,
		},
		Status:          einvoice.InvoiceStatus(req.Status),
		DateFrom:        req.DateFrom,
		DateTo:          req.DateTo,
		BuyerIdentifier: req.BuyerIdentifier,
		Uploaded:        req.Uploaded,
	}

	result, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]InvoiceResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toInvoiceResponse(&result.Items[i]))
	}
	h.SuccessWithMeta(c, items, result.Total, page.Page, page.PageSize)
}

// Void handles POST /einvoices/:number/void
func (h *InvoiceHandler) Void(c *gin.Context) {
	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	inv, err := h.invoiceService.Void(c.Request.Context(), c.Param("number"), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// Document handles GET /einvoices/:number/document
func (h *InvoiceHandler) Document(c *gin.Context) {
	xml, err := h.invoiceService.RenderDocument(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(200, "application/xml; charset=utf-8", []byte(xml))
}

// MarkUploaded handles POST /einvoices/:number/upload
func (h *InvoiceHandler) MarkUploaded(c *gin.Context) {
	var req UploadResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	inv, err := h.invoiceService.MarkUploaded(c.Request.Context(), c.Param("number"), req.Status, req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceResponse(inv))
}

// Statistics handles GET /einvoices/statistics
func (h *InvoiceHandler) Statistics(c *gin.Context) {
	var req StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	stats, err := h.invoiceService.Statistics(c.Request.Context(), einvoice.StatisticsFilter{
		DateFrom:         req.DateFrom,
		DateTo:           req.DateTo,
		SellerIdentifier: req.SellerIdentifier,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, StatisticsResponse{
		InvoiceCount:       stats.InvoiceCount,
		IssuedCount:        stats.IssuedCount,
		VoidedCount:        stats.VoidedCount,
		IssuedAmount:       stats.IssuedAmount.String(),
		VoidedAmount:       stats.VoidedAmount.String(),
		SalesAmount:        stats.SalesAmount.String(),
		TaxAmount:          stats.TaxAmount.String(),
		FreeTaxSalesAmount: stats.FreeTaxSalesAmount.String(),
		ZeroTaxSalesAmount: stats.ZeroTaxSalesAmount.String(),
	})
}

// RegisterRoutes registers invoice routes. Statistics must be wired
// before the :number wildcard so gin does not treat it as a number.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/einvoices")
	group.POST("", h.Issue)
	group.GET("", h.List)
	group.GET("/statistics", h.Statistics)
	group.GET("/:number", h.Get)
	group.POST("/:number/void", h.Void)
	group.GET("/:number/document", h.Document)
	group.POST("/:number/upload", h.MarkUploaded)
}

// toInvoiceResponse maps the aggregate to its API representation
func toInvoiceResponse(inv *einvoice.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                   inv.ID.String(),
		InvoiceNumber:        inv.InvoiceNumber,
		InvoiceDate:          inv.InvoiceDate,
		InvoiceTime:          inv.InvoiceTime,
		InvoiceType:          string(inv.InvoiceType),
		Status:               string(inv.Status),
		RandomNumber:         inv.RandomNumber,
		Seller:               PartyResponse{Identifier: inv.Seller.Identifier, Name: inv.Seller.Name, Address: inv.Seller.Address},
		Buyer:                PartyResponse{Identifier: inv.Buyer.Identifier, Name: inv.Buyer.Name, Address: inv.Buyer.Address},
		DonateMark:           inv.DonateMark,
		PrintMark:            inv.PrintMark,
		CustomsClearanceMark: inv.CustomsClearanceMark,
		MainRemark:           inv.MainRemark,
		VoidReason:           inv.VoidReason,
		VoidedAt:             inv.VoidedAt,
		Uploaded:             inv.Uploaded,
		UploadedAt:           inv.UploadedAt,
		CreatedAt:            inv.CreatedAt,
	}

	if inv.Carrier.IsPresent() {
		resp.Carrier = &CarrierInput{
			Type: inv.Carrier.Type,
			ID1:  inv.Carrier.ID1,
			ID2:  inv.Carrier.ID2,
		}
	}

	resp.Lines = make([]InvoiceLineResponse, 0, len(inv.Lines))
	for i := range inv.Lines {
		line := &inv.Lines[i]
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			SequenceNumber: line.SequenceNumber,
			Description:    line.Description,
			Quantity:       line.Quantity.String(),
			Unit:           line.Unit,
			UnitPrice:      line.UnitPrice.Amount().String(),
			Amount:         line.Amount.Amount().String(),
			TaxType:        string(line.TaxType),
			Remark:         line.Remark,
		})
	}

	resp.Amount = AmountResponse{
		SalesAmount:        inv.Amount.SalesAmount.Amount().String(),
		FreeTaxSalesAmount: inv.Amount.FreeTaxSalesAmount.Amount().String(),
		ZeroTaxSalesAmount: inv.Amount.ZeroTaxSalesAmount.Amount().String(),
		TaxType:            string(inv.Amount.TaxType),
		TaxRate:            inv.Amount.TaxRate.String(),
		TaxAmount:          inv.Amount.TaxAmount.Amount().String(),
		TotalAmount:        inv.Amount.TotalAmount.Amount().String(),
		Currency:           inv.Amount.Currency,
	}

	return resp
}
