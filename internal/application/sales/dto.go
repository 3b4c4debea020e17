package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/sales"
)

// CheckoutItem is one line of a checkout request
type CheckoutItem struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	Discount  *decimal.Decimal `json:"discount"`
}

// CheckoutRequest creates and completes a sale in one call, the normal
// register flow
type CheckoutRequest struct {
	CustomerID     *uuid.UUID       `json:"customer_id"`
	Items          []CheckoutItem   `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string           `json:"payment_method" binding:"required,oneof=CASH CARD MOBILE"`
	AmountTendered *decimal.Decimal `json:"amount_tendered"`
	Note           string           `json:"note" binding:"max=500"`
	OfflineOpID    string           `json:"offline_op_id" binding:"max=100"`
	CashierID      uuid.UUID        `json:"-"`
}

// VoidSaleRequest reverses a completed sale with manager approval
type VoidSaleRequest struct {
	Reason     string    `json:"reason" binding:"required,min=1,max=500"`
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
	Pin        string    `json:"pin" binding:"required,min=4,max=6"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductSKU     string          `json:"product_sku"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	StoreID        uuid.UUID          `json:"store_id"`
	Number         string             `json:"number"`
	CashierID      uuid.UUID          `json:"cashier_id"`
	SessionID      *uuid.UUID         `json:"session_id,omitempty"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName   string             `json:"customer_name,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	PaymentMethod  string             `json:"payment_method"`
	AmountTendered decimal.Decimal    `json:"amount_tendered"`
	ChangeDue      decimal.Decimal    `json:"change_due"`
	Currency       string             `json:"currency"`
	Status         string             `json:"status"`
	Note           string             `json:"note,omitempty"`
	ProformaID     *uuid.UUID         `json:"proforma_id,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	VoidedAt       *time.Time         `json:"voided_at,omitempty"`
	VoidedBy       *uuid.UUID         `json:"voided_by,omitempty"`
	VoidReason     string             `json:"void_reason,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=PENDING COMPLETED VOIDED"`
	CustomerID *uuid.UUID `form:"customer_id"`
	CashierID  *uuid.UUID `form:"cashier_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TaxRate:        item.TaxRate,
			TaxAmount:      item.TaxAmount,
			LineTotal:      item.LineTotal,
		}
	}
	return SaleResponse{
		ID:             s.ID,
		StoreID:        s.StoreID,
		Number:         s.Number,
		CashierID:      s.CashierID,
		SessionID:      s.SessionID,
		CustomerID:     s.CustomerID,
		CustomerName:   s.CustomerName,
		Items:          items,
		Subtotal:       s.Subtotal,
		DiscountAmount: s.DiscountAmount,
		TaxAmount:      s.TaxAmount,
		TotalAmount:    s.TotalAmount,
		PaymentMethod:  string(s.PaymentMethod),
		AmountTendered: s.AmountTendered,
		ChangeDue:      s.ChangeDue,
		Currency:       string(s.Currency),
		Status:         string(s.Status),
		Note:           s.Note,
		ProformaID:     s.ProformaID,
		CompletedAt:    s.CompletedAt,
		VoidedAt:       s.VoidedAt,
		VoidedBy:       s.VoidedBy,
		VoidReason:     s.VoidReason,
		CreatedAt:      s.CreatedAt,
	}
}

// ToSaleResponses converts domain Sales to responses
func ToSaleResponses(items []sales.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(items))
	for i := range items {
		responses[i] = ToSaleResponse(&items[i])
	}
	return responses
}

// CreateProformaRequest creates a draft proforma
type CreateProformaRequest struct {
	CustomerID *uuid.UUID     `json:"customer_id"`
	Items      []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Note       string         `json:"note" binding:"max=500"`
	CreatedBy  uuid.UUID      `json:"-"`
}

// IssueProformaRequest issues a draft proforma, reserving stock
type IssueProformaRequest struct {
	// ValidUntil overrides the store's default validity period
	ValidUntil *time.Time `json:"valid_until"`
}

// ConvertProformaRequest turns an issued proforma into a completed sale
type ConvertProformaRequest struct {
	PaymentMethod  string           `json:"payment_method" binding:"required,oneof=CASH CARD MOBILE"`
	AmountTendered *decimal.Decimal `json:"amount_tendered"`
	CashierID      uuid.UUID        `json:"-"`
}

// CancelProformaRequest cancels a proforma
type CancelProformaRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ProformaItemResponse represents a proforma line in API responses
type ProformaItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductSKU     string          `json:"product_sku"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// ProformaResponse represents a proforma in API responses
type ProformaResponse struct {
	ID             uuid.UUID              `json:"id"`
	StoreID        uuid.UUID              `json:"store_id"`
	Number         string                 `json:"number"`
	CustomerID     *uuid.UUID             `json:"customer_id,omitempty"`
	CustomerName   string                 `json:"customer_name,omitempty"`
	Items          []ProformaItemResponse `json:"items"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	DiscountAmount decimal.Decimal        `json:"discount_amount"`
	TaxAmount      decimal.Decimal        `json:"tax_amount"`
	TotalAmount    decimal.Decimal        `json:"total_amount"`
	Currency       string                 `json:"currency"`
	Status         string                 `json:"status"`
	ValidUntil     *time.Time             `json:"valid_until,omitempty"`
	Note           string                 `json:"note,omitempty"`
	IssuedAt       *time.Time             `json:"issued_at,omitempty"`
	ConvertedAt    *time.Time             `json:"converted_at,omitempty"`
	ConvertedSale  *uuid.UUID             `json:"converted_sale,omitempty"`
	CancelReason   string                 `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ProformaListFilter represents filter options for the proforma list
type ProformaListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT ISSUED CONVERTED EXPIRED CANCELLED"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ToProformaResponse converts a domain Proforma to ProformaResponse
func ToProformaResponse(p *sales.Proforma) ProformaResponse {
	items := make([]ProformaItemResponse, len(p.Items))
	for i, item := range p.Items {
		items[i] = ProformaItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TaxRate:        item.TaxRate,
			TaxAmount:      item.TaxAmount,
			LineTotal:      item.LineTotal,
		}
	}
	return ProformaResponse{
		ID:             p.ID,
		StoreID:        p.StoreID,
		Number:         p.Number,
		CustomerID:     p.CustomerID,
		CustomerName:   p.CustomerName,
		Items:          items,
		Subtotal:       p.Subtotal,
		DiscountAmount: p.DiscountAmount,
		TaxAmount:      p.TaxAmount,
		TotalAmount:    p.TotalAmount,
		Currency:       string(p.Currency),
		Status:         string(p.Status),
		ValidUntil:     p.ValidUntil,
		Note:           p.Note,
		IssuedAt:       p.IssuedAt,
		ConvertedAt:    p.ConvertedAt,
		ConvertedSale:  p.ConvertedSale,
		CancelReason:   p.CancelReason,
		CreatedAt:      p.CreatedAt,
	}
}

// ToProformaResponses converts domain Proformas to responses
func ToProformaResponses(items []sales.Proforma) []ProformaResponse {
	responses := make([]ProformaResponse, len(items))
	for i := range items {
		responses[i] = ToProformaResponse(&items[i])
	}
	return responses
}
