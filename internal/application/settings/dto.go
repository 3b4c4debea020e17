package settings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/settings"
)

// UpdateSettingsRequest updates store settings; nil fields are unchanged
type UpdateSettingsRequest struct {
	Currency             *string            `json:"currency" binding:"omitempty,len=3"`
	DefaultTaxRate       *decimal.Decimal   `json:"default_tax_rate"`
	ReceiptHeader        *string            `json:"receipt_header" binding:"omitempty,max=500"`
	ReceiptFooter        *string            `json:"receipt_footer" binding:"omitempty,max=500"`
	LowStockThreshold    *decimal.Decimal   `json:"low_stock_threshold"`
	DiscrepancyTolerance *decimal.Decimal   `json:"discrepancy_tolerance"`
	ProformaValidityDays *int               `json:"proforma_validity_days" binding:"omitempty,min=1,max=365"`
	Extras               *map[string]string `json:"extras"`
}

// SettingsResponse represents store settings in API responses
type SettingsResponse struct {
	StoreID              uuid.UUID         `json:"store_id"`
	Currency             string            `json:"currency"`
	DefaultTaxRate       decimal.Decimal   `json:"default_tax_rate"`
	ReceiptHeader        string            `json:"receipt_header,omitempty"`
	ReceiptFooter        string            `json:"receipt_footer,omitempty"`
	LowStockThreshold    decimal.Decimal   `json:"low_stock_threshold"`
	DiscrepancyTolerance decimal.Decimal   `json:"discrepancy_tolerance"`
	ProformaValidityDays int               `json:"proforma_validity_days"`
	Extras               map[string]string `json:"extras,omitempty"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// ToSettingsResponse converts domain StoreSettings to SettingsResponse
func ToSettingsResponse(s *settings.StoreSettings) SettingsResponse {
	return SettingsResponse{
		StoreID:              s.StoreID,
		Currency:             string(s.Currency),
		DefaultTaxRate:       s.DefaultTaxRate,
		ReceiptHeader:        s.ReceiptHeader,
		ReceiptFooter:        s.ReceiptFooter,
		LowStockThreshold:    s.LowStockThreshold,
		DiscrepancyTolerance: s.DiscrepancyTolerance,
		ProformaValidityDays: s.ProformaValidityDays,
		Extras:               s.Extras,
		UpdatedAt:            s.UpdatedAt,
	}
}
