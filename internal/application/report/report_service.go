package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/report"
	"github.com/nextstock/backend/internal/domain/shared"
)

const (
	defaultRangeDays = 30
	maxRangeDays     = 366
	defaultTopN      = 10
	maxTopN          = 100
)

// RangeFilter is the request filter shared by the period-based reports.
// An empty range defaults to the last 30 days.
type RangeFilter struct {
	StoreID    *uuid.UUID `form:"store_id"`
	StartDate  time.Time  `form:"start_date" time_format:"2006-01-02"`
	EndDate    time.Time  `form:"end_date" time_format:"2006-01-02"`
	CategoryID *uuid.UUID `form:"category_id"`
	CustomerID *uuid.UUID `form:"customer_id"`
	TopN       int        `form:"top_n" binding:"omitempty,min=1"`
}

// ReportService provides the dashboard report operations
type ReportService struct {
	salesRepo     report.SalesReportRepository
	inventoryRepo report.InventoryReportRepository
}

// NewReportService creates a new report service
func NewReportService(salesRepo report.SalesReportRepository, inventoryRepo report.InventoryReportRepository) *ReportService {
	return &ReportService{
		salesRepo:     salesRepo,
		inventoryRepo: inventoryRepo,
	}
}

// GetSalesSummary returns aggregated sales statistics for the period
func (s *ReportService) GetSalesSummary(ctx context.Context, filter RangeFilter) (*report.SalesSummary, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetSalesSummary(ctx, domainFilter)
}

// GetDailySalesTrend returns one row per day for the trend chart
func (s *ReportService) GetDailySalesTrend(ctx context.Context, filter RangeFilter) ([]report.DailySalesTrend, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetDailySalesTrend(ctx, domainFilter)
}

// GetProductRanking returns the top selling products for the period
func (s *ReportService) GetProductRanking(ctx context.Context, filter RangeFilter) ([]report.ProductRanking, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetProductRanking(ctx, domainFilter)
}

// GetCustomerRanking returns the top customers for the period
func (s *ReportService) GetCustomerRanking(ctx context.Context, filter RangeFilter) ([]report.CustomerRanking, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetCustomerRanking(ctx, domainFilter)
}

// GetPaymentMethodBreakdown splits the period's sales by payment method
func (s *ReportService) GetPaymentMethodBreakdown(ctx context.Context, filter RangeFilter) ([]report.PaymentMethodBreakdown, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetPaymentMethodBreakdown(ctx, domainFilter)
}

// GetInventoryValuation values current stock at cost and retail
func (s *ReportService) GetInventoryValuation(ctx context.Context, storeID *uuid.UUID) (*report.InventoryValuation, error) {
	return s.inventoryRepo.GetInventoryValuation(ctx, storeID)
}

// GetLowStockReport lists products at or below their alert threshold
func (s *ReportService) GetLowStockReport(ctx context.Context, storeID *uuid.UUID) ([]report.LowStockRow, error) {
	return s.inventoryRepo.GetLowStockReport(ctx, storeID)
}

// GetSessionDiscrepancies lists closed cash sessions with their reconciliation
func (s *ReportService) GetSessionDiscrepancies(ctx context.Context, filter RangeFilter) ([]report.SessionDiscrepancyRow, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.inventoryRepo.GetSessionDiscrepancies(ctx, domainFilter)
}

// toDomainFilter normalizes the request range: defaults, ordering, cap.
// End dates are extended to the end of the day so a same-day range works.
func (s *ReportService) toDomainFilter(filter RangeFilter) (report.Filter, error) {
	now := time.Now()

	start := filter.StartDate
	end := filter.EndDate
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -defaultRangeDays)
	}

	end = endOfDay(end)

	if end.Before(start) {
		return report.Filter{}, shared.NewDomainError("INVALID_RANGE", "End date cannot be before start date")
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return report.Filter{}, shared.NewDomainError("RANGE_TOO_LARGE", "Report range cannot exceed one year")
	}

	topN := filter.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	return report.Filter{
		StoreID:    filter.StoreID,
		StartDate:  start,
		EndDate:    end,
		CategoryID: filter.CategoryID,
		CustomerID: filter.CustomerID,
		TopN:       topN,
	}, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
