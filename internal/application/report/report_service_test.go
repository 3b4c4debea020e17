package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/report"
	"github.com/nextstock/backend/internal/domain/shared"
)

type MockSalesReportRepository struct {
	mock.Mock
}

func (m *MockSalesReportRepository) GetSalesSummary(ctx context.Context, filter report.Filter) (*report.SalesSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.SalesSummary), args.Error(1)
}

func (m *MockSalesReportRepository) GetDailySalesTrend(ctx context.Context, filter report.Filter) ([]report.DailySalesTrend, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.DailySalesTrend), args.Error(1)
}

func (m *MockSalesReportRepository) GetProductRanking(ctx context.Context, filter report.Filter) ([]report.ProductRanking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.ProductRanking), args.Error(1)
}

func (m *MockSalesReportRepository) GetCustomerRanking(ctx context.Context, filter report.Filter) ([]report.CustomerRanking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.CustomerRanking), args.Error(1)
}

func (m *MockSalesReportRepository) GetPaymentMethodBreakdown(ctx context.Context, filter report.Filter) ([]report.PaymentMethodBreakdown, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.PaymentMethodBreakdown), args.Error(1)
}

type MockInventoryReportRepository struct {
	mock.Mock
}

func (m *MockInventoryReportRepository) GetInventoryValuation(ctx context.Context, storeID *uuid.UUID) (*report.InventoryValuation, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.InventoryValuation), args.Error(1)
}

func (m *MockInventoryReportRepository) GetLowStockReport(ctx context.Context, storeID *uuid.UUID) ([]report.LowStockRow, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.LowStockRow), args.Error(1)
}

func (m *MockInventoryReportRepository) GetSessionDiscrepancies(ctx context.Context, filter report.Filter) ([]report.SessionDiscrepancyRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.SessionDiscrepancyRow), args.Error(1)
}

func TestReportService_GetSalesSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("empty range defaults to the last 30 days", func(t *testing.T) {
		salesRepo := new(MockSalesReportRepository)
		svc := NewReportService(salesRepo, new(MockInventoryReportRepository))

		summary := &report.SalesSummary{SalesCount: 12, NetAmount: decimal.NewFromInt(84000)}
		salesRepo.On("GetSalesSummary", ctx, mock.MatchedBy(func(f report.Filter) bool {
			days := f.EndDate.Sub(f.StartDate).Hours() / 24
			return days >= 30 && days < 32 && f.TopN == defaultTopN
		})).Return(summary, nil)

		result, err := svc.GetSalesSummary(ctx, RangeFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(12), result.SalesCount)
	})

	t.Run("same-day range covers the full day", func(t *testing.T) {
		salesRepo := new(MockSalesReportRepository)
		svc := NewReportService(salesRepo, new(MockInventoryReportRepository))

		day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		salesRepo.On("GetSalesSummary", ctx, mock.MatchedBy(func(f report.Filter) bool {
			return f.StartDate.Equal(day) && f.EndDate.After(day.Add(23*time.Hour))
		})).Return(&report.SalesSummary{}, nil)

		_, err := svc.GetSalesSummary(ctx, RangeFilter{StartDate: day, EndDate: day})

		require.NoError(t, err)
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		svc := NewReportService(new(MockSalesReportRepository), new(MockInventoryReportRepository))

		_, err := svc.GetSalesSummary(ctx, RangeFilter{
			StartDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_RANGE", domainErr.Code)
	})

	t.Run("range beyond one year is rejected", func(t *testing.T) {
		svc := NewReportService(new(MockSalesReportRepository), new(MockInventoryReportRepository))

		_, err := svc.GetSalesSummary(ctx, RangeFilter{
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "RANGE_TOO_LARGE", domainErr.Code)
	})
}

func TestReportService_GetProductRanking(t *testing.T) {
	ctx := context.Background()
	salesRepo := new(MockSalesReportRepository)
	svc := NewReportService(salesRepo, new(MockInventoryReportRepository))

	storeID := uuid.New()
	rows := []report.ProductRanking{
		{Rank: 1, ProductSKU: "COLA-33CL", TotalQuantity: decimal.NewFromInt(140)},
		{Rank: 2, ProductSKU: "RICE-5KG", TotalQuantity: decimal.NewFromInt(90)},
	}

	// Oversized top_n is capped rather than refused
	salesRepo.On("GetProductRanking", ctx, mock.MatchedBy(func(f report.Filter) bool {
		return f.TopN == maxTopN && f.StoreID != nil && *f.StoreID == storeID
	})).Return(rows, nil)

	result, err := svc.GetProductRanking(ctx, RangeFilter{StoreID: &storeID, TopN: 5000})

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "COLA-33CL", result[0].ProductSKU)
}

func TestReportService_GetSessionDiscrepancies(t *testing.T) {
	ctx := context.Background()
	invRepo := new(MockInventoryReportRepository)
	svc := NewReportService(new(MockSalesReportRepository), invRepo)

	rows := []report.SessionDiscrepancyRow{
		{Discrepancy: decimal.NewFromInt(-700), ApprovedBy: "Moussa Ba"},
	}
	invRepo.On("GetSessionDiscrepancies", ctx, mock.AnythingOfType("report.Filter")).Return(rows, nil)

	result, err := svc.GetSessionDiscrepancies(ctx, RangeFilter{})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Moussa Ba", result[0].ApprovedBy)
}

func TestReportService_GetLowStockReport(t *testing.T) {
	ctx := context.Background()
	invRepo := new(MockInventoryReportRepository)
	svc := NewReportService(new(MockSalesReportRepository), invRepo)

	invRepo.On("GetLowStockReport", ctx, (*uuid.UUID)(nil)).Return([]report.LowStockRow{
		{ProductSKU: "OIL-1L", Quantity: decimal.NewFromInt(2), MinQuantity: decimal.NewFromInt(5)},
	}, nil)

	rows, err := svc.GetLowStockReport(ctx, nil)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Quantity.LessThan(rows[0].MinQuantity))
}
