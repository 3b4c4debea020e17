package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryValuationRow values one product's stock at cost and at sale price
type InventoryValuationRow struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductSKU   string          `json:"product_sku"`
	ProductName  string          `json:"product_name"`
	CategoryName string          `json:"category_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostValue    decimal.Decimal `json:"cost_value"`
	RetailValue  decimal.Decimal `json:"retail_value"`
}

// InventoryValuation aggregates the stock value of a store
type InventoryValuation struct {
	StoreID          *uuid.UUID              `json:"store_id,omitempty"`
	AsOf             time.Time               `json:"as_of"`
	TotalCostValue   decimal.Decimal         `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal         `json:"total_retail_value"`
	ProductCount     int64                   `json:"product_count"`
	Rows             []InventoryValuationRow `json:"rows"`
}

// LowStockRow is one product at or below its alert threshold
type LowStockRow struct {
	StoreID     uuid.UUID       `json:"store_id"`
	StoreName   string          `json:"store_name"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductSKU  string          `json:"product_sku"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
}

// SessionDiscrepancyRow is one closed cash session with its reconciliation
type SessionDiscrepancyRow struct {
	SessionID    uuid.UUID       `json:"session_id"`
	StoreID      uuid.UUID       `json:"store_id"`
	StoreName    string          `json:"store_name"`
	OpenedBy     string          `json:"opened_by"`
	ClosedAt     time.Time       `json:"closed_at"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	CountedCash  decimal.Decimal `json:"counted_cash"`
	Discrepancy  decimal.Decimal `json:"discrepancy"`
	ApprovedBy   string          `json:"approved_by,omitempty"`
}

// InventoryReportRepository defines the interface for inventory and register
// report queries
type InventoryReportRepository interface {
	GetInventoryValuation(ctx context.Context, storeID *uuid.UUID) (*InventoryValuation, error)
	GetLowStockReport(ctx context.Context, storeID *uuid.UUID) ([]LowStockRow, error)
	GetSessionDiscrepancies(ctx context.Context, filter Filter) ([]SessionDiscrepancyRow, error)
}
