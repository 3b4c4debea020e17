package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING" // Being assembled at the register
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusVoided    SaleStatus = "VOIDED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodMobile PaymentMethod = "MOBILE" // Mobile money (Orange Money, Wave, etc.)
)

// IsValid checks if the payment method is recognized
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// SaleItem represents a line item on a sale
type SaleItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName    string          `gorm:"size:200;not null"`
	ProductSKU     string          `gorm:"size:50;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Line-level discount
	TaxRate        decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0"`  // e.g. 0.18 for 18% VAT
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null"` // qty*price - discount + tax
	CreatedAt      time.Time       `gorm:"not null"`
}

// NewSaleItem creates a new sale line item
func NewSaleItem(saleID, productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal, unitPrice valueobject.Money, discount valueobject.Money, taxRate decimal.Decimal) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discount.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	gross := quantity.Mul(unitPrice.Amount())
	if discount.Amount().GreaterThan(gross) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the line amount")
	}

	net := gross.Sub(discount.Amount())
	tax := net.Mul(taxRate).Round(2)

	return &SaleItem{
		ID:             uuid.New(),
		SaleID:         saleID,
		ProductID:      productID,
		ProductName:    productName,
		ProductSKU:     productSKU,
		Quantity:       quantity,
		UnitPrice:      unitPrice.Amount(),
		DiscountAmount: discount.Amount(),
		TaxRate:        taxRate,
		TaxAmount:      tax,
		LineTotal:      net.Add(tax),
		CreatedAt:      time.Now(),
	}, nil
}

// Sale represents a completed (or voided) point-of-sale transaction.
// Unlike an order it has no fulfilment lifecycle: it is assembled at the
// register, completed with a payment, and can only be voided afterwards.
type Sale struct {
	shared.StoreAggregateRoot
	Number         string     `gorm:"size:30;not null;uniqueIndex"` // SAL-YYYYMMDD-NNNN
	CashierID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	SessionID      *uuid.UUID `gorm:"type:uuid;index"` // Open cash session at completion time
	CustomerID     *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName   string     `gorm:"size:200"`
	Items          []SaleItem `gorm:"foreignKey:SaleID"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Sum of gross line amounts
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Line discounts + sale discount
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentMethod  PaymentMethod   `gorm:"size:20"`
	AmountTendered decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Cash only
	ChangeDue      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"` // Cash only
	Currency       valueobject.Currency `gorm:"size:3;not null;default:'XOF'"`
	Status         SaleStatus      `gorm:"size:20;not null;index"`
	Note           string          `gorm:"size:500"`
	CompletedAt    *time.Time
	VoidedAt       *time.Time
	VoidedBy       *uuid.UUID `gorm:"type:uuid"`
	VoidReason     string     `gorm:"size:500"`
	// OfflineOpID carries the client operation ID when the sale was queued
	// offline, so replays can be deduplicated.
	OfflineOpID string `gorm:"size:100;index"`
	// ProformaID links back to the proforma this sale was converted from.
	// Stock for such sales comes out of the proforma reservation, not a
	// fresh deduction.
	ProformaID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale starts a new pending sale at the register
func NewSale(storeID uuid.UUID, number string, cashierID uuid.UUID, currency valueobject.Currency) (*Sale, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if len(number) > 30 {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot exceed 30 characters")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier ID cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	sale := &Sale{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, cashierID),
		Number:             number,
		CashierID:          cashierID,
		Items:              make([]SaleItem, 0),
		Subtotal:           decimal.Zero,
		DiscountAmount:     decimal.Zero,
		TaxAmount:          decimal.Zero,
		TotalAmount:        decimal.Zero,
		AmountTendered:     decimal.Zero,
		ChangeDue:          decimal.Zero,
		Currency:           currency,
		Status:             SaleStatusPending,
	}

	return sale, nil
}

// SetCustomer attaches a customer to the sale
func (s *Sale) SetCustomer(customerID uuid.UUID, customerName string) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a finalized sale")
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	s.CustomerID = &customerID
	s.CustomerName = customerName
	s.touch()

	return nil
}

// SetProformaRef marks the sale as a conversion of an issued proforma
func (s *Sale) SetProformaRef(proformaID uuid.UUID) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a finalized sale")
	}
	if proformaID == uuid.Nil {
		return shared.NewDomainError("INVALID_PROFORMA", "Proforma ID cannot be empty")
	}

	s.ProformaID = &proformaID
	s.touch()

	return nil
}

// AddItem adds a line item to the pending sale.
// Adding a product already on the sale merges into the existing line.
func (s *Sale) AddItem(productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal, unitPrice valueobject.Money, discount valueobject.Money, taxRate decimal.Decimal) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items to a finalized sale")
	}

	for idx := range s.Items {
		if s.Items[idx].ProductID == productID && s.Items[idx].UnitPrice.Equal(unitPrice.Amount()) {
			merged := s.Items[idx].Quantity.Add(quantity)
			mergedDiscount, err := valueobject.NewMoney(s.Items[idx].DiscountAmount.Add(discount.Amount()), s.Currency)
			if err != nil {
				return err
			}
			replacement, err := NewSaleItem(s.ID, productID, productName, productSKU, merged, unitPrice, mergedDiscount, taxRate)
			if err != nil {
				return err
			}
			replacement.ID = s.Items[idx].ID
			s.Items[idx] = *replacement
			s.recalculateTotals()
			s.touch()
			return nil
		}
	}

	item, err := NewSaleItem(s.ID, productID, productName, productSKU, quantity, unitPrice, discount, taxRate)
	if err != nil {
		return err
	}

	s.Items = append(s.Items, *item)
	s.recalculateTotals()
	s.touch()

	return nil
}

// RemoveItem removes a line item from the pending sale
func (s *Sale) RemoveItem(itemID uuid.UUID) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a finalized sale")
	}

	for idx, item := range s.Items {
		if item.ID == itemID {
			s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
			s.recalculateTotals()
			s.touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Sale item not found")
}

// SetNote sets a free-form note on the sale
func (s *Sale) SetNote(note string) {
	s.Note = note
	s.touch()
}

// Complete finalizes the sale with a payment.
// For cash payments the tendered amount must cover the total; change is the
// difference. For non-cash payments tendered is recorded as the exact total.
func (s *Sale) Complete(method PaymentMethod, amountTendered valueobject.Money, sessionID *uuid.UUID) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete sale in %s status", s.Status))
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot complete a sale without items")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	if method == PaymentMethodCash {
		if amountTendered.Amount().LessThan(s.TotalAmount) {
			return shared.NewDomainError("INSUFFICIENT_TENDER", "Amount tendered is less than the sale total")
		}
		s.AmountTendered = amountTendered.Amount()
		s.ChangeDue = amountTendered.Amount().Sub(s.TotalAmount)
	} else {
		s.AmountTendered = s.TotalAmount
		s.ChangeDue = decimal.Zero
	}

	now := time.Now()
	s.PaymentMethod = method
	s.SessionID = sessionID
	s.Status = SaleStatusCompleted
	s.CompletedAt = &now
	s.touch()

	s.AddDomainEvent(NewSaleCompletedEvent(s))

	return nil
}

// Void reverses a completed sale. Stock restoration and session adjustment are
// driven by the emitted event.
func (s *Sale) Void(voidedBy uuid.UUID, reason string) error {
	if s.Status != SaleStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void sale in %s status", s.Status))
	}
	if voidedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Voiding user cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	s.Status = SaleStatusVoided
	s.VoidedAt = &now
	s.VoidedBy = &voidedBy
	s.VoidReason = reason
	s.touch()

	s.AddDomainEvent(NewSaleVoidedEvent(s))

	return nil
}

// IsCashPayment returns true for cash sales
func (s *Sale) IsCashPayment() bool {
	return s.PaymentMethod == PaymentMethodCash
}

// IsCompleted returns true if the sale is completed
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleStatusCompleted
}

// IsVoided returns true if the sale is voided
func (s *Sale) IsVoided() bool {
	return s.Status == SaleStatusVoided
}

// ItemCount returns the number of line items
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// GetTotalMoney returns the sale total as Money
func (s *Sale) GetTotalMoney() valueobject.Money {
	money, _ := valueobject.NewMoney(s.TotalAmount, s.Currency)
	return money
}

func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero
	total := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
		discount = discount.Add(item.DiscountAmount)
		tax = tax.Add(item.TaxAmount)
		total = total.Add(item.LineTotal)
	}
	s.Subtotal = subtotal
	s.DiscountAmount = discount
	s.TaxAmount = tax
	s.TotalAmount = total
}

func (s *Sale) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
