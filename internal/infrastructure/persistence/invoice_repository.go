package persistence

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/poschain/backend/internal/domain/einvoice"
	"github.com/poschain/backend/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save writes the header, lines and amount summary in a single
// transaction. Either all three records land or none do.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *einvoice.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(inv).Error
	})
}

// FindByNumber loads the full aggregate by invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*einvoice.Invoice, error) {
	var inv einvoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Preload("Amount").
		First(&inv, "invoice_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, einvoice.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// List returns invoices matching the filter, newest first
func (r *GormInvoiceRepository) List(ctx context.Context, filter einvoice.InvoiceFilter) (*shared.Paginated[einvoice.Invoice], error) {
	query := r.db.WithContext(ctx).Model(&einvoice.Invoice{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != "" {
		query = query.Where("invoice_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("invoice_date <= ?", filter.DateTo)
	}
	if filter.BuyerIdentifier != "" {
		query = query.Where("buyer_identifier = ?", filter.BuyerIdentifier)
	}
	if filter.Uploaded != nil {
		query = query.Where("uploaded = ?", *filter.Uploaded)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var invoices []einvoice.Invoice
	if err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_number ASC")
		}).
		Preload("Amount").
		Order("invoice_date DESC, invoice_time DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(invoices, total, page, pageSize)
	return &result, nil
}

// MarkVoided persists a void with a compare-and-set on the issued
// state. When the guard fails the invoice was either never there or a
// concurrent void won; the two cases map to different errors.
func (r *GormInvoiceRepository) MarkVoided(ctx context.Context, inv *einvoice.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&einvoice.Invoice{}).
		Where("invoice_number = ? AND status = ?", inv.InvoiceNumber, einvoice.InvoiceStatusIssued).
		Updates(map[string]any{
			"status":      einvoice.InvoiceStatusVoided,
			"void_reason": inv.VoidReason,
			"voided_at":   inv.VoidedAt,
			"version":     inv.Version,
			"updated_at":  inv.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&einvoice.Invoice{}).
			Where("invoice_number = ?", inv.InvoiceNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return einvoice.ErrInvoiceNotFound
		}
		return einvoice.ErrInvoiceAlreadyVoided
	}
	return nil
}

// MarkUploaded flips the upload flag and appends the log entry in one
// transaction
func (r *GormInvoiceRepository) MarkUploaded(ctx context.Context, inv *einvoice.Invoice, log *einvoice.UploadLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&einvoice.Invoice{}).
			Where("invoice_number = ? AND uploaded = ?", inv.InvoiceNumber, false).
			Updates(map[string]any{
				"uploaded":    true,
				"uploaded_at": inv.UploadedAt,
				"version":     inv.Version,
				"updated_at":  inv.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrInvalidState
		}
		return tx.Create(log).Error
	})
}

// statisticsRow receives the aggregation result
type statisticsRow struct {
	InvoiceCount       int64
	IssuedCount        int64
	VoidedCount        int64
	IssuedAmount       decimal.Decimal
	VoidedAmount       decimal.Decimal
	SalesAmount        decimal.Decimal
	TaxAmount          decimal.Decimal
	FreeTaxSalesAmount decimal.Decimal
	ZeroTaxSalesAmount decimal.Decimal
}

// Statistics aggregates over the issuance window in a single query.
// The summary totals are split into issued and voided buckets by
// current status; the sales and tax sums cover every matched invoice
// regardless of status.
func (r *GormInvoiceRepository) Statistics(ctx context.Context, filter einvoice.StatisticsFilter) (*einvoice.Statistics, error) {
	query := r.db.WithContext(ctx).
		Table("einvoice_main AS m").
		Joins("JOIN einvoice_amount AS a ON a.invoice_id = m.id").
		Select(`COUNT(*) AS invoice_count,
			SUM(CASE WHEN m.status = 'issued' THEN 1 ELSE 0 END) AS issued_count,
			SUM(CASE WHEN m.status = 'voided' THEN 1 ELSE 0 END) AS voided_count,
			COALESCE(SUM(CASE WHEN m.status = 'issued' THEN a.total_amount ELSE 0 END), 0) AS issued_amount,
			COALESCE(SUM(CASE WHEN m.status = 'voided' THEN a.total_amount ELSE 0 END), 0) AS voided_amount,
			COALESCE(SUM(a.sales_amount), 0) AS sales_amount,
			COALESCE(SUM(a.tax_amount), 0) AS tax_amount,
			COALESCE(SUM(a.free_tax_sales_amount), 0) AS free_tax_sales_amount,
			COALESCE(SUM(a.zero_tax_sales_amount), 0) AS zero_tax_sales_amount`)

	if filter.DateFrom != "" {
		query = query.Where("m.invoice_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("m.invoice_date <= ?", filter.DateTo)
	}
	if filter.SellerIdentifier != "" {
		query = query.Where("m.seller_identifier = ?", filter.SellerIdentifier)
	}

	var row statisticsRow
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	return &einvoice.Statistics{
		InvoiceCount:       row.InvoiceCount,
		IssuedCount:        row.IssuedCount,
		VoidedCount:        row.VoidedCount,
		IssuedAmount:       row.IssuedAmount,
		VoidedAmount:       row.VoidedAmount,
		SalesAmount:        row.SalesAmount,
		TaxAmount:          row.TaxAmount,
		FreeTaxSalesAmount: row.FreeTaxSalesAmount,
		ZeroTaxSalesAmount: row.ZeroTaxSalesAmount,
	}, nil
}

// Ensure GormInvoiceRepository implements the interface
var _ einvoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
