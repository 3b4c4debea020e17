package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	settingsapp "github.com/nextstock/backend/internal/application/settings"
	"github.com/nextstock/backend/internal/domain/partner"
	"github.com/nextstock/backend/internal/domain/printing"
	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/shared"
)

// SettingsReader provides the store's receipt configuration
type SettingsReader interface {
	Get(ctx context.Context, storeID uuid.UUID) (*settingsapp.SettingsResponse, error)
}

// Composer turns a document view model into printable HTML
type Composer interface {
	Compose(doc *Document) (string, error)
}

// Renderer converts HTML into PDF bytes
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// Archive keeps rendered PDFs in object storage and returns the stored key
type Archive interface {
	Store(ctx context.Context, key string, data []byte) (string, error)
}

// PrintService renders sale receipts and proforma invoices to PDF and
// tracks each render as a job
type PrintService struct {
	jobRepo      printing.PrintJobRepository
	saleRepo     sales.SaleRepository
	proformaRepo sales.ProformaRepository
	storeRepo    partner.StoreRepository
	settings     SettingsReader
	composer     Composer
	renderer     Renderer
	archive      Archive
	logger       *zap.Logger
}

// NewPrintService creates a new PrintService
func NewPrintService(
	jobRepo printing.PrintJobRepository,
	saleRepo sales.SaleRepository,
	proformaRepo sales.ProformaRepository,
	storeRepo partner.StoreRepository,
	settings SettingsReader,
	composer Composer,
	renderer Renderer,
	archive Archive,
	logger *zap.Logger,
) *PrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintService{
		jobRepo:      jobRepo,
		saleRepo:     saleRepo,
		proformaRepo: proformaRepo,
		storeRepo:    storeRepo,
		settings:     settings,
		composer:     composer,
		renderer:     renderer,
		archive:      archive,
		logger:       logger,
	}
}

// RenderReceipt renders the receipt PDF for a completed sale
func (s *PrintService) RenderReceipt(ctx context.Context, storeID, saleID, requestedBy uuid.UUID) (*RenderResult, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
		}
		return nil, fmt.Errorf("failed to load sale: %w", err)
	}
	if sale.StoreID != storeID {
		return nil, shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
	}
	if sale.Status != sales.SaleStatusCompleted {
		return nil, shared.NewDomainError("SALE_NOT_PRINTABLE", "Only completed sales have receipts")
	}

	doc, err := s.buildSaleDocument(ctx, sale)
	if err != nil {
		return nil, err
	}

	return s.render(ctx, storeID, printing.DocTypeReceipt, sale.ID, sale.Number, requestedBy, doc)
}

// RenderProforma renders the invoice PDF for an issued proforma
func (s *PrintService) RenderProforma(ctx context.Context, storeID, proformaID, requestedBy uuid.UUID) (*RenderResult, error) {
	proforma, err := s.proformaRepo.FindByID(ctx, proformaID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PROFORMA_NOT_FOUND", "Proforma not found")
		}
		return nil, fmt.Errorf("failed to load proforma: %w", err)
	}
	if proforma.StoreID != storeID {
		return nil, shared.NewDomainError("PROFORMA_NOT_FOUND", "Proforma not found")
	}
	if proforma.Status != sales.ProformaStatusIssued && proforma.Status != sales.ProformaStatusConverted {
		return nil, shared.NewDomainError("PROFORMA_NOT_PRINTABLE", "Only issued proformas can be printed")
	}

	doc, err := s.buildProformaDocument(ctx, proforma)
	if err != nil {
		return nil, err
	}

	return s.render(ctx, storeID, printing.DocTypeProforma, proforma.ID, proforma.Number, requestedBy, doc)
}

// GetJob retrieves a render job by ID
func (s *PrintService) GetJob(ctx context.Context, storeID, jobID uuid.UUID) (*PrintJobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("JOB_NOT_FOUND", "Print job not found")
		}
		return nil, fmt.Errorf("failed to load print job: %w", err)
	}
	if job.StoreID != storeID {
		return nil, shared.NewDomainError("JOB_NOT_FOUND", "Print job not found")
	}

	response := ToJobResponse(job)
	return &response, nil
}

// ListJobs retrieves render jobs of a store with pagination
func (s *PrintService) ListJobs(ctx context.Context, storeID uuid.UUID, filter ListJobsFilter) (*shared.Paginated[PrintJobResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.DocType != "" {
		domainFilter.Filters["document_type"] = filter.DocType
	}

	items, err := s.jobRepo.FindAllForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}

	total, err := s.jobRepo.CountForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count print jobs: %w", err)
	}

	result := shared.NewPaginated(ToJobResponses(items), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// JobsForDocument retrieves the render history of one document
func (s *PrintService) JobsForDocument(ctx context.Context, storeID uuid.UUID, docType string, documentID uuid.UUID) ([]PrintJobResponse, error) {
	dt := printing.DocType(docType)
	if !dt.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Unknown document type")
	}

	jobs, err := s.jobRepo.FindByDocument(ctx, dt, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find print jobs: %w", err)
	}

	responses := make([]PrintJobResponse, 0, len(jobs))
	for i := range jobs {
		if jobs[i].StoreID != storeID {
			continue
		}
		responses = append(responses, ToJobResponse(&jobs[i]))
	}
	return responses, nil
}

// render walks a job through its lifecycle: pending, rendering, then
// completed with the archive key or failed with the error
func (s *PrintService) render(ctx context.Context, storeID uuid.UUID, docType printing.DocType, documentID uuid.UUID, number string, requestedBy uuid.UUID, doc *Document) (*RenderResult, error) {
	job, err := printing.NewPrintJob(storeID, docType, documentID, number, requestedBy)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save print job: %w", err)
	}

	if err := job.StartRendering(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update print job: %w", err)
	}

	html, err := s.composer.Compose(doc)
	if err != nil {
		return nil, s.failJob(ctx, job, "Document composition failed", err)
	}

	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		return nil, s.failJob(ctx, job, "PDF rendering failed", err)
	}

	key := archiveKey(storeID, docType, number)
	storedKey, err := s.archive.Store(ctx, key, pdf)
	if err != nil {
		return nil, s.failJob(ctx, job, "PDF archival failed", err)
	}

	if err := job.Complete(storedKey); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update print job: %w", err)
	}

	s.logger.Info("document rendered",
		zap.String("job_id", job.ID.String()),
		zap.String("doc_type", docType.String()),
		zap.String("number", number),
		zap.String("archive_key", storedKey))

	return &RenderResult{PDF: pdf, Job: ToJobResponse(job)}, nil
}

func (s *PrintService) failJob(ctx context.Context, job *printing.PrintJob, message string, cause error) error {
	s.logger.Error("render failed",
		zap.String("job_id", job.ID.String()),
		zap.String("stage", message),
		zap.Error(cause))

	if err := job.Fail(message); err == nil {
		if saveErr := s.jobRepo.Save(ctx, job); saveErr != nil {
			s.logger.Error("failed to persist job failure",
				zap.String("job_id", job.ID.String()),
				zap.Error(saveErr))
		}
	}
	return fmt.Errorf("%s: %w", message, cause)
}

func (s *PrintService) buildSaleDocument(ctx context.Context, sale *sales.Sale) (*Document, error) {
	doc, err := s.newDocument(ctx, sale.StoreID, printing.DocTypeReceipt)
	if err != nil {
		return nil, err
	}

	doc.Number = sale.Number
	doc.CustomerName = sale.CustomerName
	doc.Subtotal = sale.Subtotal
	doc.DiscountAmount = sale.DiscountAmount
	doc.TaxAmount = sale.TaxAmount
	doc.TotalAmount = sale.TotalAmount
	doc.Currency = string(sale.Currency)
	doc.PaymentMethod = string(sale.PaymentMethod)
	doc.AmountTendered = sale.AmountTendered
	doc.ChangeDue = sale.ChangeDue
	doc.Note = sale.Note
	doc.IssuedAt = sale.CreatedAt
	if sale.CompletedAt != nil {
		doc.IssuedAt = *sale.CompletedAt
	}

	doc.Lines = make([]DocumentLine, len(sale.Items))
	for i, item := range sale.Items {
		doc.Lines[i] = DocumentLine{
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			LineTotal:      item.LineTotal,
		}
	}
	return doc, nil
}

func (s *PrintService) buildProformaDocument(ctx context.Context, proforma *sales.Proforma) (*Document, error) {
	doc, err := s.newDocument(ctx, proforma.StoreID, printing.DocTypeProforma)
	if err != nil {
		return nil, err
	}

	doc.Number = proforma.Number
	doc.CustomerName = proforma.CustomerName
	doc.Subtotal = proforma.Subtotal
	doc.DiscountAmount = proforma.DiscountAmount
	doc.TaxAmount = proforma.TaxAmount
	doc.TotalAmount = proforma.TotalAmount
	doc.Currency = string(proforma.Currency)
	doc.ValidUntil = proforma.ValidUntil
	doc.Note = proforma.Note
	doc.IssuedAt = proforma.CreatedAt
	if proforma.IssuedAt != nil {
		doc.IssuedAt = *proforma.IssuedAt
	}

	doc.Lines = make([]DocumentLine, len(proforma.Items))
	for i, item := range proforma.Items {
		doc.Lines[i] = DocumentLine{
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			LineTotal:      item.LineTotal,
		}
	}
	return doc, nil
}

// newDocument seeds a document with the store identity and receipt text
func (s *PrintService) newDocument(ctx context.Context, storeID uuid.UUID, docType printing.DocType) (*Document, error) {
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("STORE_NOT_FOUND", "Store not found")
		}
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	doc := &Document{
		Type:         docType,
		StoreName:    store.Name,
		StoreAddress: store.Address,
		StorePhone:   store.Phone,
	}

	cfg, err := s.settings.Get(ctx, storeID)
	if err != nil {
		// Receipt text is cosmetic; render with store identity only.
		s.logger.Warn("settings unavailable for rendering",
			zap.String("store_id", storeID.String()),
			zap.Error(err))
		return doc, nil
	}
	doc.Header = cfg.ReceiptHeader
	doc.Footer = cfg.ReceiptFooter
	return doc, nil
}

func archiveKey(storeID uuid.UUID, docType printing.DocType, number string) string {
	prefix := "receipts"
	if docType == printing.DocTypeProforma {
		prefix = "proformas"
	}
	return fmt.Sprintf("%s/%s/%s.pdf", prefix, storeID, number)
}
