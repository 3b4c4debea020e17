package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nextstock/backend/internal/domain/report"
	"github.com/nextstock/backend/internal/domain/sales"
)

// GormSalesReportRepository implements SalesReportRepository using GORM.
// Reports are read models produced by SQL aggregation over completed sales.
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

// GetSalesSummary returns aggregated sales statistics for the period
func (r *GormSalesReportRepository) GetSalesSummary(ctx context.Context, filter report.Filter) (*report.SalesSummary, error) {
	type summaryResult struct {
		SalesCount     int64
		GrossAmount    decimal.Decimal
		DiscountAmount decimal.Decimal
		TaxAmount      decimal.Decimal
		NetAmount      decimal.Decimal
	}

	var result summaryResult
	query := r.completedSales(ctx, filter).
		Select(`
			COUNT(*) as sales_count,
			COALESCE(SUM(subtotal), 0) as gross_amount,
			COALESCE(SUM(discount_amount), 0) as discount_amount,
			COALESCE(SUM(tax_amount), 0) as tax_amount,
			COALESCE(SUM(total_amount), 0) as net_amount
		`)
	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}

	type itemResult struct {
		ItemsSold  decimal.Decimal
		CostAmount decimal.Decimal
	}
	var items itemResult
	itemQuery := r.db.WithContext(ctx).Table("sale_items si").
		Select(`
			COALESCE(SUM(si.quantity), 0) as items_sold,
			COALESCE(SUM(si.quantity * p.cost_price), 0) as cost_amount
		`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Joins("LEFT JOIN products p ON p.id = si.product_id").
		Where("s.status = ?", sales.SaleStatusCompleted).
		Where("s.completed_at >= ? AND s.completed_at < ?", filter.StartDate, filter.EndDate)
	if filter.StoreID != nil {
		itemQuery = itemQuery.Where("s.store_id = ?", *filter.StoreID)
	}
	if filter.CategoryID != nil {
		itemQuery = itemQuery.Where("p.category_id = ?", *filter.CategoryID)
	}
	if filter.CustomerID != nil {
		itemQuery = itemQuery.Where("s.customer_id = ?", *filter.CustomerID)
	}
	if err := itemQuery.Scan(&items).Error; err != nil {
		return nil, err
	}

	var voidedCount int64
	voidedQuery := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("status = ?", sales.SaleStatusVoided).
		Where("voided_at >= ? AND voided_at < ?", filter.StartDate, filter.EndDate)
	if filter.StoreID != nil {
		voidedQuery = voidedQuery.Where("store_id = ?", *filter.StoreID)
	}
	if err := voidedQuery.Count(&voidedCount).Error; err != nil {
		return nil, err
	}

	grossProfit := result.NetAmount.Sub(items.CostAmount)
	var avgTicket, profitMargin decimal.Decimal
	if result.SalesCount > 0 {
		avgTicket = result.NetAmount.Div(decimal.NewFromInt(result.SalesCount)).Round(2)
	}
	if !result.NetAmount.IsZero() {
		profitMargin = grossProfit.Div(result.NetAmount).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &report.SalesSummary{
		PeriodStart:     filter.StartDate,
		PeriodEnd:       filter.EndDate,
		SalesCount:      result.SalesCount,
		VoidedCount:     voidedCount,
		ItemsSold:       items.ItemsSold,
		GrossAmount:     result.GrossAmount,
		DiscountAmount:  result.DiscountAmount,
		TaxAmount:       result.TaxAmount,
		NetAmount:       result.NetAmount,
		AvgTicket:       avgTicket,
		CostAmount:      items.CostAmount,
		GrossProfit:     grossProfit,
		ProfitMarginPct: profitMargin,
	}, nil
}

// GetDailySalesTrend returns one row per day in the period
func (r *GormSalesReportRepository) GetDailySalesTrend(ctx context.Context, filter report.Filter) ([]report.DailySalesTrend, error) {
	type dailyResult struct {
		Date       time.Time
		SalesCount int64
		NetAmount  decimal.Decimal
		ItemsSold  decimal.Decimal
	}

	// A join against sale_items would multiply sale totals, so the two
	// grains are aggregated separately and merged by day.
	var results []dailyResult
	query := r.db.WithContext(ctx).Table("sales s").
		Select(`
			DATE(s.completed_at) as date,
			COUNT(*) as sales_count,
			COALESCE(SUM(s.total_amount), 0) as net_amount
		`).
		Where("s.status = ?", sales.SaleStatusCompleted).
		Where("s.completed_at >= ? AND s.completed_at < ?", filter.StartDate, filter.EndDate)
	if filter.StoreID != nil {
		query = query.Where("s.store_id = ?", *filter.StoreID)
	}
	if err := query.Group("DATE(s.completed_at)").Order("date ASC").Scan(&results).Error; err != nil {
		return nil, err
	}

	type dailyItems struct {
		Date      time.Time
		ItemsSold decimal.Decimal
	}
	var itemRows []dailyItems
	itemQuery := r.db.WithContext(ctx).Table("sale_items si").
		Select(`
			DATE(s.completed_at) as date,
			COALESCE(SUM(si.quantity), 0) as items_sold
		`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Where("s.status = ?", sales.SaleStatusCompleted).
		Where("s.completed_at >= ? AND s.completed_at < ?", filter.StartDate, filter.EndDate)
	if filter.StoreID != nil {
		itemQuery = itemQuery.Where("s.store_id = ?", *filter.StoreID)
	}
	if err := itemQuery.Group("DATE(s.completed_at)").Scan(&itemRows).Error; err != nil {
		return nil, err
	}
	itemsByDay := make(map[string]decimal.Decimal, len(itemRows))
	for _, row := range itemRows {
		itemsByDay[row.Date.Format("2006-01-02")] = row.ItemsSold
	}

	trend := make([]report.DailySalesTrend, len(results))
	for i, row := range results {
		trend[i] = report.DailySalesTrend{
			Date:       row.Date,
			SalesCount: row.SalesCount,
			NetAmount:  row.NetAmount,
			ItemsSold:  itemsByDay[row.Date.Format("2006-01-02")],
		}
	}
	return trend, nil
}

// GetProductRanking returns the top-selling products for the period
func (r *GormSalesReportRepository) GetProductRanking(ctx context.Context, filter report.Filter) ([]report.ProductRanking, error) {
	type rankResult struct {
		ProductID     uuid.UUID
		ProductSKU    string
		ProductName   string
		CategoryName  string
		TotalQuantity decimal.Decimal
		TotalAmount   decimal.Decimal
		SalesCount    int64
	}

	topN := filter.TopN
	if topN <= 0 {
		topN = 10
	}

	var results []rankResult
	query := r.db.WithContext(ctx).Table("sale_items si").
		Select(`
			si.product_id,
			MAX(si.product_sku) as product_sku,
			MAX(si.product_name) as product_name,
			MAX(c.name) as category_name,
			COALESCE(SUM(si.quantity), 0) as total_quantity,
			COALESCE(SUM(si.line_total), 0) as total_amount,
			COUNT(DISTINCT s.id) as sales_count
		`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Joins("LEFT JOIN products p ON p.id = si.product_id").
		Joins("LEFT JOIN categories c ON c.id = p.category_id").
		Where("s.status = ?", sales.SaleStatusCompleted).
		Where("s.completed_at >= ? AND s.completed_at < ?", filter.StartDate, filter.EndDate)
	if filter.StoreID != nil {
		query = query.Where("s.store_id = ?", *filter.StoreID)
	}
	if filter.CategoryID != nil {
		query = query.Where("p.category_id = ?", *filter.CategoryID)
	}
	if err := query.
		Group("si.product_id").
		Order("total_amount DESC").
		Limit(topN).
		Scan(&results).Error; err != nil {
		return nil, err
	}

	ranking := make([]report.ProductRanking, len(results))
	for i, row := range results {
		ranking[i] = report.ProductRanking{
			Rank:          i + 1,
			ProductID:     row.ProductID,
			ProductSKU:    row.ProductSKU,
			ProductName:   row.ProductName,
			CategoryName:  row.CategoryName,
			TotalQuantity: row.TotalQuantity,
			TotalAmount:   row.TotalAmount,
			SalesCount:    row.SalesCount,
		}
	}
	return ranking, nil
}

// GetCustomerRanking returns the top customers for the period
func (r *GormSalesReportRepository) GetCustomerRanking(ctx context.Context, filter report.Filter) ([]report.CustomerRanking, error) {
	type rankResult struct {
		CustomerID   uuid.UUID
		CustomerName string
		SalesCount   int64
		TotalAmount  decimal.Decimal
	}

	topN := filter.TopN
	if topN <= 0 {
		topN = 10
	}

	var results []rankResult
	query := r.completedSales(ctx, filter).
		Select(`
			customer_id,
			MAX(customer_name) as customer_name,
			COUNT(*) as sales_count,
			COALESCE(SUM(total_amount), 0) as total_amount
		`).
		Where("customer_id IS NOT NULL")
	if err := query.
		Group("customer_id").
		Order("total_amount DESC").
		Limit(topN).
		Scan(&results).Error; err != nil {
		return nil, err
	}

	ranking := make([]report.CustomerRanking, len(results))
	for i, row := range results {
		ranking[i] = report.CustomerRanking{
			Rank:         i + 1,
			CustomerID:   row.CustomerID,
			CustomerName: row.CustomerName,
			SalesCount:   row.SalesCount,
			TotalAmount:  row.TotalAmount,
		}
	}
	return ranking, nil
}

// GetPaymentMethodBreakdown aggregates completed sales per payment method
func (r *GormSalesReportRepository) GetPaymentMethodBreakdown(ctx context.Context, filter report.Filter) ([]report.PaymentMethodBreakdown, error) {
	type methodResult struct {
		PaymentMethod string
		SalesCount    int64
		TotalAmount   decimal.Decimal
	}

	var results []methodResult
	query := r.completedSales(ctx, filter).
		Select(`
			payment_method,
			COUNT(*) as sales_count,
			COALESCE(SUM(total_amount), 0) as total_amount
		`)
	if err := query.
		Group("payment_method").
		Order("total_amount DESC").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	grandTotal := decimal.Zero
	for _, row := range results {
		grandTotal = grandTotal.Add(row.TotalAmount)
	}

	breakdown := make([]report.PaymentMethodBreakdown, len(results))
	for i, row := range results {
		var share decimal.Decimal
		if !grandTotal.IsZero() {
			share = row.TotalAmount.Div(grandTotal).Mul(decimal.NewFromInt(100)).Round(2)
		}
		breakdown[i] = report.PaymentMethodBreakdown{
			PaymentMethod: row.PaymentMethod,
			SalesCount:    row.SalesCount,
			TotalAmount:   row.TotalAmount,
			SharePct:      share,
		}
	}
	return breakdown, nil
}

// completedSales builds the base query over completed sales in the period
func (r *GormSalesReportRepository) completedSales(ctx context.Context, filter report.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("status = ?", sales.SaleStatusCompleted).
		Where("completed_at >= ? AND completed_at < ?", filter.StartDate, filter.EndDate)
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	return query
}

// Ensure GormSalesReportRepository implements SalesReportRepository
var _ report.SalesReportRepository = (*GormSalesReportRepository)(nil)
