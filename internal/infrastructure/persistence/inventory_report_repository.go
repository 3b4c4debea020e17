package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/register"
	"github.com/nextstock/backend/internal/domain/report"
)

// GormInventoryReportRepository implements InventoryReportRepository using GORM
type GormInventoryReportRepository struct {
	db *gorm.DB
}

// NewGormInventoryReportRepository creates a new GormInventoryReportRepository
func NewGormInventoryReportRepository(db *gorm.DB) *GormInventoryReportRepository {
	return &GormInventoryReportRepository{db: db}
}

// GetInventoryValuation values on-hand stock at cost and at sale price
func (r *GormInventoryReportRepository) GetInventoryValuation(ctx context.Context, storeID *uuid.UUID) (*report.InventoryValuation, error) {
	query := r.db.WithContext(ctx).Table("stock_items si").
		Select(`
			si.product_id,
			p.sku as product_sku,
			p.name as product_name,
			c.name as category_name,
			COALESCE(SUM(si.quantity), 0) as quantity,
			COALESCE(SUM(si.quantity * p.cost_price), 0) as cost_value,
			COALESCE(SUM(si.quantity * p.sale_price), 0) as retail_value
		`).
		Joins("JOIN products p ON p.id = si.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("si.quantity > 0")
	if storeID != nil {
		query = query.Where("si.store_id = ?", *storeID)
	}

	var rows []report.InventoryValuationRow
	if err := query.
		Group("si.product_id, p.sku, p.name, c.name").
		Order("cost_value DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	valuation := &report.InventoryValuation{
		StoreID:          storeID,
		AsOf:             time.Now(),
		TotalCostValue:   decimal.Zero,
		TotalRetailValue: decimal.Zero,
		ProductCount:     int64(len(rows)),
		Rows:             rows,
	}
	for _, row := range rows {
		valuation.TotalCostValue = valuation.TotalCostValue.Add(row.CostValue)
		valuation.TotalRetailValue = valuation.TotalRetailValue.Add(row.RetailValue)
	}
	return valuation, nil
}

// GetLowStockReport lists products at or below their alert threshold
func (r *GormInventoryReportRepository) GetLowStockReport(ctx context.Context, storeID *uuid.UUID) ([]report.LowStockRow, error) {
	query := r.db.WithContext(ctx).Table("stock_items si").
		Select(`
			si.store_id,
			st.name as store_name,
			si.product_id,
			p.sku as product_sku,
			p.name as product_name,
			si.quantity,
			si.min_quantity
		`).
		Joins("JOIN products p ON p.id = si.product_id").
		Joins("JOIN stores st ON st.id = si.store_id").
		Where("si.min_quantity > 0 AND si.quantity <= si.min_quantity").
		Where("p.status = ?", "active")
	if storeID != nil {
		query = query.Where("si.store_id = ?", *storeID)
	}

	var rows []report.LowStockRow
	if err := query.Order("si.quantity ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetSessionDiscrepancies lists closed cash sessions with their reconciliation
func (r *GormInventoryReportRepository) GetSessionDiscrepancies(ctx context.Context, filter report.Filter) ([]report.SessionDiscrepancyRow, error) {
	query := r.db.WithContext(ctx).Table("cash_sessions cs").
		Select(`
			cs.id as session_id,
			cs.store_id,
			st.name as store_name,
			opener.display_name as opened_by,
			cs.closed_at,
			cs.expected_cash,
			cs.counted_cash,
			cs.discrepancy,
			COALESCE(approver.display_name, '') as approved_by
		`).
		Joins("JOIN stores st ON st.id = cs.store_id").
		Joins("LEFT JOIN users opener ON opener.id = cs.opened_by").
		Joins("LEFT JOIN users approver ON approver.id = cs.approved_by").
		Where("cs.status = ?", register.SessionStatusClosed).
		Where("cs.closed_at >= ? AND cs.closed_at < ?", filter.StartDate, filter.EndDate)
	if filter.StoreID != nil {
		query = query.Where("cs.store_id = ?", *filter.StoreID)
	}

	var rows []report.SessionDiscrepancyRow
	if err := query.Order("cs.closed_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormInventoryReportRepository implements InventoryReportRepository
var _ report.InventoryReportRepository = (*GormInventoryReportRepository)(nil)
