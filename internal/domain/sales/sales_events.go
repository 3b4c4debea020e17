package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/shared"
)

// Event type constants for the sales bounded context
const (
	EventTypeSaleCompleted     = "sales.sale.completed"
	EventTypeSaleVoided        = "sales.sale.voided"
	EventTypeProformaCreated   = "sales.proforma.created"
	EventTypeProformaIssued    = "sales.proforma.issued"
	EventTypeProformaConverted = "sales.proforma.converted"
	EventTypeProformaExpired   = "sales.proforma.expired"
	EventTypeProformaCancelled = "sales.proforma.cancelled"
)

// SaleLine is the per-product payload carried by sale events, consumed by the
// inventory deduction handler.
type SaleLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func saleLines(items []SaleItem) []SaleLine {
	lines := make([]SaleLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, SaleLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

func proformaLines(items []ProformaItem) []SaleLine {
	lines := make([]SaleLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, SaleLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// SaleCompletedEvent is emitted when a sale is completed at the register
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	StoreID       uuid.UUID       `json:"store_id"`
	Number        string          `json:"number"`
	CashierID     uuid.UUID       `json:"cashier_id"`
	SessionID     *uuid.UUID      `json:"session_id,omitempty"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Lines         []SaleLine      `json:"lines"`
	// FromProforma is true when the sale converted an issued proforma, in
	// which case stock was already committed from the reservation.
	FromProforma bool `json:"from_proforma"`
}

// NewSaleCompletedEvent creates a new sale completed event
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, "Sale", sale.ID),
		StoreID:         sale.StoreID,
		Number:          sale.Number,
		CashierID:       sale.CashierID,
		SessionID:       sale.SessionID,
		CustomerID:      sale.CustomerID,
		TotalAmount:     sale.TotalAmount,
		PaymentMethod:   sale.PaymentMethod,
		Lines:           saleLines(sale.Items),
		FromProforma:    sale.ProformaID != nil,
	}
}

// SaleVoidedEvent is emitted when a completed sale is voided
type SaleVoidedEvent struct {
	shared.BaseDomainEvent
	StoreID       uuid.UUID       `json:"store_id"`
	Number        string          `json:"number"`
	SessionID     *uuid.UUID      `json:"session_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	VoidedBy      uuid.UUID       `json:"voided_by"`
	Reason        string          `json:"reason"`
	Lines         []SaleLine      `json:"lines"`
}

// NewSaleVoidedEvent creates a new sale voided event
func NewSaleVoidedEvent(sale *Sale) *SaleVoidedEvent {
	var voidedBy uuid.UUID
	if sale.VoidedBy != nil {
		voidedBy = *sale.VoidedBy
	}
	return &SaleVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleVoided, "Sale", sale.ID),
		StoreID:         sale.StoreID,
		Number:          sale.Number,
		SessionID:       sale.SessionID,
		TotalAmount:     sale.TotalAmount,
		PaymentMethod:   sale.PaymentMethod,
		VoidedBy:        voidedBy,
		Reason:          sale.VoidReason,
		Lines:           saleLines(sale.Items),
	}
}

// ProformaCreatedEvent is emitted when a draft proforma is created
type ProformaCreatedEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID `json:"store_id"`
	Number  string    `json:"number"`
}

// NewProformaCreatedEvent creates a new proforma created event
func NewProformaCreatedEvent(p *Proforma) *ProformaCreatedEvent {
	return &ProformaCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProformaCreated, "Proforma", p.ID),
		StoreID:         p.StoreID,
		Number:          p.Number,
	}
}

// ProformaIssuedEvent is emitted when a proforma is issued; the inventory
// handler reserves stock for its lines.
type ProformaIssuedEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID  `json:"store_id"`
	Number  string     `json:"number"`
	Lines   []SaleLine `json:"lines"`
}

// NewProformaIssuedEvent creates a new proforma issued event
func NewProformaIssuedEvent(p *Proforma) *ProformaIssuedEvent {
	return &ProformaIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProformaIssued, "Proforma", p.ID),
		StoreID:         p.StoreID,
		Number:          p.Number,
		Lines:           proformaLines(p.Items),
	}
}

// ProformaConvertedEvent is emitted when a proforma becomes a sale
type ProformaConvertedEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID `json:"store_id"`
	Number  string    `json:"number"`
	SaleID  uuid.UUID `json:"sale_id"`
}

// NewProformaConvertedEvent creates a new proforma converted event
func NewProformaConvertedEvent(p *Proforma, saleID uuid.UUID) *ProformaConvertedEvent {
	return &ProformaConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProformaConverted, "Proforma", p.ID),
		StoreID:         p.StoreID,
		Number:          p.Number,
		SaleID:          saleID,
	}
}

// ProformaExpiredEvent is emitted when an issued proforma passes its validity
// date; the inventory handler releases its reservations.
type ProformaExpiredEvent struct {
	shared.BaseDomainEvent
	StoreID uuid.UUID  `json:"store_id"`
	Number  string     `json:"number"`
	Lines   []SaleLine `json:"lines"`
}

// NewProformaExpiredEvent creates a new proforma expired event
func NewProformaExpiredEvent(p *Proforma) *ProformaExpiredEvent {
	return &ProformaExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProformaExpired, "Proforma", p.ID),
		StoreID:         p.StoreID,
		Number:          p.Number,
		Lines:           proformaLines(p.Items),
	}
}

// ProformaCancelledEvent is emitted when a proforma is cancelled.
// WasIssued tells the inventory handler whether reservations must be released.
type ProformaCancelledEvent struct {
	shared.BaseDomainEvent
	StoreID   uuid.UUID  `json:"store_id"`
	Number    string     `json:"number"`
	WasIssued bool       `json:"was_issued"`
	Reason    string     `json:"reason"`
	Lines     []SaleLine `json:"lines"`
}

// NewProformaCancelledEvent creates a new proforma cancelled event
func NewProformaCancelledEvent(p *Proforma, wasIssued bool) *ProformaCancelledEvent {
	return &ProformaCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProformaCancelled, "Proforma", p.ID),
		StoreID:         p.StoreID,
		Number:          p.Number,
		WasIssued:       wasIssued,
		Reason:          p.CancelReason,
		Lines:           proformaLines(p.Items),
	}
}
