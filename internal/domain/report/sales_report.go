package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary provides aggregated sales statistics for a period.
// This is a CQRS read model produced by SQL aggregation.
type SalesSummary struct {
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
	SalesCount       int64           `json:"sales_count"`
	VoidedCount      int64           `json:"voided_count"`
	ItemsSold        decimal.Decimal `json:"items_sold"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	AvgTicket        decimal.Decimal `json:"avg_ticket"`
	CostAmount       decimal.Decimal `json:"cost_amount"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	ProfitMarginPct  decimal.Decimal `json:"profit_margin_pct"`
}

// DailySalesTrend represents one day in the sales trend chart
type DailySalesTrend struct {
	Date       time.Time       `json:"date"`
	SalesCount int64           `json:"sales_count"`
	NetAmount  decimal.Decimal `json:"net_amount"`
	ItemsSold  decimal.Decimal `json:"items_sold"`
}

// ProductRanking represents a row in the top-products ranking
type ProductRanking struct {
	Rank          int             `json:"rank"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductSKU    string          `json:"product_sku"`
	ProductName   string          `json:"product_name"`
	CategoryName  string          `json:"category_name,omitempty"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SalesCount    int64           `json:"sales_count"`
}

// CustomerRanking represents a row in the top-customers ranking
type CustomerRanking struct {
	Rank         int             `json:"rank"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	SalesCount   int64           `json:"sales_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// PaymentMethodBreakdown aggregates sales per payment method
type PaymentMethodBreakdown struct {
	PaymentMethod string          `json:"payment_method"`
	SalesCount    int64           `json:"sales_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SharePct      decimal.Decimal `json:"share_pct"`
}

// Filter defines filtering options for report queries
type Filter struct {
	StoreID    *uuid.UUID `json:"store_id,omitempty"` // Nil aggregates across stores
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	TopN       int        `json:"top_n,omitempty"` // For rankings
}

// SalesReportRepository defines the interface for sales report queries
type SalesReportRepository interface {
	GetSalesSummary(ctx context.Context, filter Filter) (*SalesSummary, error)
	GetDailySalesTrend(ctx context.Context, filter Filter) ([]DailySalesTrend, error)
	GetProductRanking(ctx context.Context, filter Filter) ([]ProductRanking, error)
	GetCustomerRanking(ctx context.Context, filter Filter) ([]CustomerRanking, error)
	GetPaymentMethodBreakdown(ctx context.Context, filter Filter) ([]PaymentMethodBreakdown, error)
}
