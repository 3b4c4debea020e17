package printing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/printing"
)

// DocumentLine is one printed line of a receipt or proforma
type DocumentLine struct {
	ProductName    string
	ProductSKU     string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	LineTotal      decimal.Decimal
}

// Document is the view model handed to the HTML composer. Amounts stay as
// decimals; the composer formats them for the store currency.
type Document struct {
	Type           printing.DocType
	Number         string
	StoreName      string
	StoreAddress   string
	StorePhone     string
	Header         string
	Footer         string
	IssuedAt       time.Time
	CustomerName   string
	Lines          []DocumentLine
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Currency       string
	PaymentMethod  string
	AmountTendered decimal.Decimal
	ChangeDue      decimal.Decimal
	ValidUntil     *time.Time
	Note           string
}

// ListJobsFilter carries print job list parameters
type ListJobsFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	DocType  string `form:"doc_type"`
}

// PrintJobResponse represents a render job in API responses
type PrintJobResponse struct {
	ID             uuid.UUID  `json:"id"`
	StoreID        uuid.UUID  `json:"store_id"`
	DocumentType   string     `json:"document_type"`
	DocumentID     uuid.UUID  `json:"document_id"`
	DocumentNumber string     `json:"document_number"`
	Status         string     `json:"status"`
	ArchiveKey     string     `json:"archive_key,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	RenderedAt     *time.Time `json:"rendered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RenderResult carries the rendered PDF together with its job record
type RenderResult struct {
	PDF []byte
	Job PrintJobResponse
}

// ToJobResponse converts a domain PrintJob to PrintJobResponse
func ToJobResponse(j *printing.PrintJob) PrintJobResponse {
	return PrintJobResponse{
		ID:             j.ID,
		StoreID:        j.StoreID,
		DocumentType:   j.DocumentType.String(),
		DocumentID:     j.DocumentID,
		DocumentNumber: j.DocumentNumber,
		Status:         j.Status.String(),
		ArchiveKey:     j.ArchiveKey,
		ErrorMessage:   j.ErrorMessage,
		RenderedAt:     j.RenderedAt,
		CreatedAt:      j.CreatedAt,
	}
}

// ToJobResponses converts a slice of domain PrintJobs
func ToJobResponses(jobs []printing.PrintJob) []PrintJobResponse {
	responses := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		responses[i] = ToJobResponse(&jobs[i])
	}
	return responses
}
