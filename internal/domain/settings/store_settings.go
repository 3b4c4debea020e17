package settings

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
)

// Defaults applied when a store has no saved settings yet
var (
	DefaultTaxRate              = decimal.NewFromFloat(0.18) // 18% VAT
	DefaultLowStockThreshold    = decimal.NewFromInt(5)
	DefaultDiscrepancyTolerance = decimal.NewFromInt(500)
	DefaultProformaValidityDays = 7
)

// StoreSettings holds the per-store configuration consulted by the register,
// printing and inventory flows. One row per store.
type StoreSettings struct {
	shared.StoreAggregateRoot
	Currency             valueobject.Currency `gorm:"size:3;not null;default:'XOF'"`
	DefaultTaxRate       decimal.Decimal      `gorm:"type:decimal(6,4);not null"`
	ReceiptHeader        string               `gorm:"size:500"`
	ReceiptFooter        string               `gorm:"size:500"`
	LowStockThreshold    decimal.Decimal      `gorm:"type:decimal(18,4);not null"` // Default min quantity for new stock items
	DiscrepancyTolerance decimal.Decimal      `gorm:"type:decimal(18,2);not null"` // Register close tolerance
	ProformaValidityDays int                  `gorm:"not null"`
	// Extras carries store-specific key-value settings the UI defines
	// (printer name, receipt logo URL, ...). Serialized as JSON.
	Extras map[string]string `gorm:"serializer:json"`
}

// TableName returns the table name for GORM
func (StoreSettings) TableName() string {
	return "store_settings"
}

// NewStoreSettings creates settings for a store with system defaults
func NewStoreSettings(storeID uuid.UUID) (*StoreSettings, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}

	s := &StoreSettings{
		StoreAggregateRoot:   shared.NewStoreAggregateRoot(storeID),
		Currency:             valueobject.DefaultCurrency,
		DefaultTaxRate:       DefaultTaxRate,
		LowStockThreshold:    DefaultLowStockThreshold,
		DiscrepancyTolerance: DefaultDiscrepancyTolerance,
		ProformaValidityDays: DefaultProformaValidityDays,
		Extras:               make(map[string]string),
	}

	return s, nil
}

// SetCurrency sets the store currency (ISO 4217 code)
func (s *StoreSettings) SetCurrency(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}

	s.Currency = valueobject.Currency(code)
	s.markUpdated()

	return nil
}

// SetDefaultTaxRate sets the tax rate applied to products without their own
func (s *StoreSettings) SetDefaultTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	s.DefaultTaxRate = rate
	s.markUpdated()

	return nil
}

// SetReceiptText sets the header and footer printed on receipts
func (s *StoreSettings) SetReceiptText(header, footer string) error {
	if len(header) > 500 || len(footer) > 500 {
		return shared.NewDomainError("INVALID_RECEIPT_TEXT", "Receipt header and footer cannot exceed 500 characters")
	}

	s.ReceiptHeader = header
	s.ReceiptFooter = footer
	s.markUpdated()

	return nil
}

// SetLowStockThreshold sets the default low-stock alert level
func (s *StoreSettings) SetLowStockThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}

	s.LowStockThreshold = threshold
	s.markUpdated()

	return nil
}

// SetDiscrepancyTolerance sets the register close tolerance
func (s *StoreSettings) SetDiscrepancyTolerance(tolerance decimal.Decimal) error {
	if tolerance.IsNegative() {
		return shared.NewDomainError("INVALID_TOLERANCE", "Discrepancy tolerance cannot be negative")
	}

	s.DiscrepancyTolerance = tolerance
	s.markUpdated()

	return nil
}

// SetProformaValidityDays sets the default proforma validity window
func (s *StoreSettings) SetProformaValidityDays(days int) error {
	if days < 1 || days > 365 {
		return shared.NewDomainError("INVALID_VALIDITY", "Proforma validity must be between 1 and 365 days")
	}

	s.ProformaValidityDays = days
	s.markUpdated()

	return nil
}

// SetExtra sets a key-value extra setting
func (s *StoreSettings) SetExtra(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewDomainError("INVALID_KEY", "Setting key cannot be empty")
	}
	if len(key) > 100 || len(value) > 1000 {
		return shared.NewDomainError("INVALID_EXTRA", "Setting key or value too long")
	}

	if s.Extras == nil {
		s.Extras = make(map[string]string)
	}
	s.Extras[key] = value
	s.markUpdated()

	return nil
}

// RemoveExtra deletes a key-value extra setting
func (s *StoreSettings) RemoveExtra(key string) {
	delete(s.Extras, key)
	s.markUpdated()
}

// GetExtra returns an extra setting and whether it exists
func (s *StoreSettings) GetExtra(key string) (string, bool) {
	v, ok := s.Extras[key]
	return v, ok
}

func (s *StoreSettings) markUpdated() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewSettingsUpdatedEvent(s))
}
