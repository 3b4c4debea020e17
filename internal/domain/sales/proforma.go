package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
)

// ProformaStatus represents the status of a proforma invoice
type ProformaStatus string

const (
	ProformaStatusDraft     ProformaStatus = "DRAFT"
	ProformaStatusIssued    ProformaStatus = "ISSUED"
	ProformaStatusConverted ProformaStatus = "CONVERTED"
	ProformaStatusExpired   ProformaStatus = "EXPIRED"
	ProformaStatusCancelled ProformaStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ProformaStatus
func (s ProformaStatus) IsValid() bool {
	switch s {
	case ProformaStatusDraft, ProformaStatusIssued, ProformaStatusConverted, ProformaStatusExpired, ProformaStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ProformaStatus
func (s ProformaStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ProformaStatus) CanTransitionTo(target ProformaStatus) bool {
	switch s {
	case ProformaStatusDraft:
		return target == ProformaStatusIssued || target == ProformaStatusCancelled
	case ProformaStatusIssued:
		return target == ProformaStatusConverted || target == ProformaStatusExpired || target == ProformaStatusCancelled
	case ProformaStatusConverted, ProformaStatusExpired, ProformaStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ProformaItem represents a line item on a proforma
type ProformaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProformaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName    string          `gorm:"size:200;not null"`
	ProductSKU     string          `gorm:"size:50;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// NewProformaItem creates a new proforma line item
func NewProformaItem(proformaID, productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal, unitPrice valueobject.Money, discount valueobject.Money, taxRate decimal.Decimal) (*ProformaItem, error) {
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

	gross := quantity.Mul(unitPrice.Amount())
	if discount.Amount().IsNegative() || discount.Amount().GreaterThan(gross) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between zero and the line amount")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 1")
	}

	net := gross.Sub(discount.Amount())
	tax := net.Mul(taxRate).Round(2)
	now := time.Now()

	return &ProformaItem{
		ID:             uuid.New(),
		ProformaID:     proformaID,
		ProductID:      productID,
		ProductName:    productName,
		ProductSKU:     productSKU,
		Quantity:       quantity,
		UnitPrice:      unitPrice.Amount(),
		DiscountAmount: discount.Amount(),
		TaxRate:        taxRate,
		TaxAmount:      tax,
		LineTotal:      net.Add(tax),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// UpdateQuantity updates the item quantity and recalculates the line total
func (i *ProformaItem) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	gross := quantity.Mul(i.UnitPrice)
	if i.DiscountAmount.GreaterThan(gross) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount exceeds the new line amount")
	}
	net := gross.Sub(i.DiscountAmount)
	i.Quantity = quantity
	i.TaxAmount = net.Mul(i.TaxRate).Round(2)
	i.LineTotal = net.Add(i.TaxAmount)
	i.UpdatedAt = time.Now()

	return nil
}

// Proforma represents a quotation that can later be converted into a sale.
// Issuing a proforma reserves stock; conversion, expiry or cancellation
// releases (or commits) the reservation.
type Proforma struct {
	shared.StoreAggregateRoot
	Number         string         `gorm:"size:30;not null;uniqueIndex"` // PRO-YYYYMMDD-NNNN
	CustomerID     *uuid.UUID     `gorm:"type:uuid;index"`
	CustomerName   string         `gorm:"size:200"`
	Items          []ProformaItem `gorm:"foreignKey:ProformaID"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency       valueobject.Currency `gorm:"size:3;not null;default:'XOF'"`
	Status         ProformaStatus       `gorm:"size:20;not null;index"`
	ValidUntil     *time.Time           `gorm:"index"`
	Note           string               `gorm:"size:500"`
	IssuedAt       *time.Time
	ConvertedAt    *time.Time
	ConvertedSale  *uuid.UUID `gorm:"type:uuid"` // Sale created from this proforma
	ExpiredAt      *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"size:500"`
}

// TableName returns the table name for GORM
func (Proforma) TableName() string {
	return "proformas"
}

// NewProforma creates a new draft proforma
func NewProforma(storeID uuid.UUID, number string, createdBy uuid.UUID, currency valueobject.Currency) (*Proforma, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_PROFORMA_NUMBER", "Proforma number cannot be empty")
	}
	if len(number) > 30 {
		return nil, shared.NewDomainError("INVALID_PROFORMA_NUMBER", "Proforma number cannot exceed 30 characters")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	proforma := &Proforma{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, createdBy),
		Number:             number,
		Items:              make([]ProformaItem, 0),
		Subtotal:           decimal.Zero,
		DiscountAmount:     decimal.Zero,
		TaxAmount:          decimal.Zero,
		TotalAmount:        decimal.Zero,
		Currency:           currency,
		Status:             ProformaStatusDraft,
	}

	proforma.AddDomainEvent(NewProformaCreatedEvent(proforma))

	return proforma, nil
}

// SetCustomer attaches a customer to the proforma
func (p *Proforma) SetCustomer(customerID uuid.UUID, customerName string) error {
	if p.Status != ProformaStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a non-draft proforma")
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	p.CustomerID = &customerID
	p.CustomerName = customerName
	p.touch()

	return nil
}

// AddItem adds a line item to the draft proforma
func (p *Proforma) AddItem(productID uuid.UUID, productName, productSKU string, quantity decimal.Decimal, unitPrice valueobject.Money, discount valueobject.Money, taxRate decimal.Decimal) (*ProformaItem, error) {
	if p.Status != ProformaStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft proforma")
	}

	for _, item := range p.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists on proforma, update quantity instead")
		}
	}

	item, err := NewProformaItem(p.ID, productID, productName, productSKU, quantity, unitPrice, discount, taxRate)
	if err != nil {
		return nil, err
	}

	p.Items = append(p.Items, *item)
	p.recalculateTotals()
	p.touch()

	return item, nil
}

// UpdateItemQuantity updates the quantity of an existing line item
func (p *Proforma) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if p.Status != ProformaStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items on a non-draft proforma")
	}

	for idx := range p.Items {
		if p.Items[idx].ID == itemID {
			if err := p.Items[idx].UpdateQuantity(quantity); err != nil {
				return err
			}
			p.recalculateTotals()
			p.touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Proforma item not found")
}

// RemoveItem removes a line item from the draft proforma
func (p *Proforma) RemoveItem(itemID uuid.UUID) error {
	if p.Status != ProformaStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft proforma")
	}

	for idx, item := range p.Items {
		if item.ID == itemID {
			p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
			p.recalculateTotals()
			p.touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Proforma item not found")
}

// SetNote sets a free-form note
func (p *Proforma) SetNote(note string) {
	p.Note = note
	p.touch()
}

// Issue finalizes the draft and starts the validity window.
// Stock reservation is driven by the emitted event.
func (p *Proforma) Issue(validUntil time.Time) error {
	if !p.Status.CanTransitionTo(ProformaStatusIssued) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue proforma in %s status", p.Status))
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot issue a proforma without items")
	}
	if !validUntil.After(time.Now()) {
		return shared.NewDomainError("INVALID_EXPIRY", "Validity date must be in the future")
	}

	now := time.Now()
	p.Status = ProformaStatusIssued
	p.IssuedAt = &now
	p.ValidUntil = &validUntil
	p.touch()

	p.AddDomainEvent(NewProformaIssuedEvent(p))

	return nil
}

// MarkConverted records the sale created from this proforma.
// Stock availability is revalidated by the application service before the
// sale is completed; the reservation is committed there.
func (p *Proforma) MarkConverted(saleID uuid.UUID) error {
	if !p.Status.CanTransitionTo(ProformaStatusConverted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot convert proforma in %s status", p.Status))
	}
	if saleID == uuid.Nil {
		return shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if p.IsExpired() {
		return shared.ErrProformaExpired
	}

	now := time.Now()
	p.Status = ProformaStatusConverted
	p.ConvertedAt = &now
	p.ConvertedSale = &saleID
	p.touch()

	p.AddDomainEvent(NewProformaConvertedEvent(p, saleID))

	return nil
}

// Expire marks an issued proforma past its validity date as expired.
// Reservation release is driven by the emitted event.
func (p *Proforma) Expire() error {
	if !p.Status.CanTransitionTo(ProformaStatusExpired) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire proforma in %s status", p.Status))
	}
	if p.ValidUntil == nil || time.Now().Before(*p.ValidUntil) {
		return shared.NewDomainError("NOT_EXPIRED", "Proforma validity period has not ended")
	}

	now := time.Now()
	p.Status = ProformaStatusExpired
	p.ExpiredAt = &now
	p.touch()

	p.AddDomainEvent(NewProformaExpiredEvent(p))

	return nil
}

// Cancel cancels a draft or issued proforma
func (p *Proforma) Cancel(reason string) error {
	if !p.Status.CanTransitionTo(ProformaStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel proforma in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasIssued := p.Status == ProformaStatusIssued
	now := time.Now()
	p.Status = ProformaStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.touch()

	p.AddDomainEvent(NewProformaCancelledEvent(p, wasIssued))

	return nil
}

// IsExpired returns true if the validity window has passed
func (p *Proforma) IsExpired() bool {
	return p.ValidUntil != nil && time.Now().After(*p.ValidUntil)
}

// IsDraft returns true if the proforma is in draft status
func (p *Proforma) IsDraft() bool {
	return p.Status == ProformaStatusDraft
}

// IsIssued returns true if the proforma is issued
func (p *Proforma) IsIssued() bool {
	return p.Status == ProformaStatusIssued
}

// IsTerminal returns true for converted, expired or cancelled proformas
func (p *Proforma) IsTerminal() bool {
	switch p.Status {
	case ProformaStatusConverted, ProformaStatusExpired, ProformaStatusCancelled:
		return true
	}
	return false
}

// ItemCount returns the number of line items
func (p *Proforma) ItemCount() int {
	return len(p.Items)
}

func (p *Proforma) recalculateTotals() {
	subtotal := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero
	total := decimal.Zero
	for _, item := range p.Items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
		discount = discount.Add(item.DiscountAmount)
		tax = tax.Add(item.TaxAmount)
		total = total.Add(item.LineTotal)
	}
	p.Subtotal = subtotal
	p.DiscountAmount = discount
	p.TaxAmount = tax
	p.TotalAmount = total
}

func (p *Proforma) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
