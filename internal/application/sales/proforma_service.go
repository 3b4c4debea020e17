package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	inventoryapp "github.com/nextstock/backend/internal/application/inventory"
	"github.com/nextstock/backend/internal/domain/catalog"
	"github.com/nextstock/backend/internal/domain/partner"
	"github.com/nextstock/backend/internal/domain/register"
	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/settings"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
)

// ProformaService handles the proforma (quotation) lifecycle
type ProformaService struct {
	proformaRepo   sales.ProformaRepository
	saleRepo       sales.SaleRepository
	productRepo    catalog.ProductRepository
	customerRepo   partner.CustomerRepository
	sessionRepo    register.CashSessionRepository
	settingsRepo   settings.StoreSettingsRepository
	stockService   *inventoryapp.StockService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProformaService creates a new ProformaService
func NewProformaService(
	proformaRepo sales.ProformaRepository,
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	customerRepo partner.CustomerRepository,
	sessionRepo register.CashSessionRepository,
	settingsRepo settings.StoreSettingsRepository,
	stockService *inventoryapp.StockService,
	logger *zap.Logger,
) *ProformaService {
	return &ProformaService{
		proformaRepo: proformaRepo,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		stockService: stockService,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProformaService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a draft proforma
func (s *ProformaService) Create(ctx context.Context, storeID uuid.UUID, req CreateProformaRequest) (*ProformaResponse, error) {
	storeSettings, err := s.storeSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}

	number, err := s.proformaRepo.NextNumber(ctx, storeID, time.Now())
	if err != nil {
		return nil, err
	}

	proforma, err := sales.NewProforma(storeID, number, req.CreatedBy, storeSettings.Currency)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
			}
			return nil, err
		}
		if err := proforma.SetCustomer(customer.ID, customer.Name); err != nil {
			return nil, err
		}
	}

	for _, line := range req.Items {
		if err := s.addLine(ctx, proforma, line, storeSettings); err != nil {
			return nil, err
		}
	}

	if req.Note != "" {
		proforma.SetNote(req.Note)
	}

	if err := s.proformaRepo.Save(ctx, proforma); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, proforma)

	response := ToProformaResponse(proforma)
	return &response, nil
}

// GetByID retrieves a proforma by ID
func (s *ProformaService) GetByID(ctx context.Context, proformaID uuid.UUID) (*ProformaResponse, error) {
	proforma, err := s.proformaRepo.FindByID(ctx, proformaID)
	if err != nil {
		return nil, err
	}

	response := ToProformaResponse(proforma)
	return &response, nil
}

// List retrieves proformas of a store with filtering and pagination
func (s *ProformaService) List(ctx context.Context, storeID uuid.UUID, filter ProformaListFilter) (*shared.Paginated[ProformaResponse], error) {
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
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	items, err := s.proformaRepo.FindAllForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.proformaRepo.CountForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToProformaResponses(items), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateItemQuantity changes a line quantity on a draft proforma
func (s *ProformaService) UpdateItemQuantity(ctx context.Context, proformaID, itemID uuid.UUID, quantity decimal.Decimal) (*ProformaResponse, error) {
	proforma, err := s.proformaRepo.FindByID(ctx, proformaID)
	if err != nil {
		return nil, err
	}

	if err := proforma.UpdateItemQuantity(itemID, quantity); err != nil {
		return nil, err
	}

	if err := s.proformaRepo.Save(ctx, proforma); err != nil {
		return nil, err
	}

	response := ToProformaResponse(proforma)
	return &response, nil
}

// RemoveItem removes a line from a draft proforma
func (s *ProformaService) RemoveItem(ctx context.Context, proformaID, itemID uuid.UUID) (*ProformaResponse, error) {
	proforma, err := s.proformaRepo.FindByID(ctx, proformaID)
	if err != nil {
		return nil, err
	}

	if err := proforma.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.proformaRepo.Save(ctx, proforma); err != nil {
		return nil, err
	}

	response := ToProformaResponse(proforma)
	return &response, nil
}

// Issue issues a draft proforma. Stock is reserved by the issued event.
func (s *ProformaService) Issue(ctx context.Context, proformaID uuid.UUID, req IssueProformaRequest) (*ProformaResponse, error) {
	proforma, err := s.proformaRepo.FindByID(ctx, proformaID)
	if err != nil {
		return nil, err
	}

	validUntil := time.Time{}
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	} else {
		storeSettings, err := s.storeSettings(ctx, proforma.StoreID)
		if err != nil {
			return nil, err
		}
		validUntil = time.Now().AddDate(0, 0, storeSettings.ProformaValidityDays)
	}

	// Availability is validated up front so the reservation handler cannot
	// fail after the proforma is already issued.
	for _, item := range proforma.Items {
		stock, err := s.stockService.GetStock(ctx, proforma.StoreID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if stock.AvailableQty.LessThan(item.Quantity) {
			return nil, shared.ErrInsufficientStock
		}
	}

	if err := proforma.Issue(validUntil); err != nil {
		return nil, err
	}

	if err := s.proformaRepo.Save(ctx, proforma); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, proforma)

	response := ToProformaResponse(proforma)
	return &response, nil
}

// Convert turns an issued proforma into a completed sale. The reservation is
// committed synchronously, so the sale's completion event does not deduct again.
func (s *ProformaService) Convert(ctx context.Context, proformaID uuid.UUID, req ConvertProformaRequest) (*SaleResponse, error) {
	proforma, err := s.proformaRepo.FindByID(ctx, proformaID)
	if err != nil {
		return nil, err
	}

	if !proforma.IsIssued() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only issued proformas can be converted")
	}
	if proforma.IsExpired() {
		return nil, shared.ErrProformaExpired
	}

	number, err := s.saleRepo.NextNumber(ctx, proforma.StoreID, time.Now())
	if err != nil {
		return nil, err
	}

	sale, err := sales.NewSale(proforma.StoreID, number, req.CashierID, proforma.Currency)
	if err != nil {
		return nil, err
	}
	if err := sale.SetProformaRef(proforma.ID); err != nil {
		return nil, err
	}
	if proforma.CustomerID != nil {
		if err := sale.SetCustomer(*proforma.CustomerID, proforma.CustomerName); err != nil {
			return nil, err
		}
	}

	for _, item := range proforma.Items {
		priceMoney, err := valueobject.NewMoney(item.UnitPrice, proforma.Currency)
		if err != nil {
			return nil, err
		}
		discountMoney, err := valueobject.NewMoney(item.DiscountAmount, proforma.Currency)
		if err != nil {
			return nil, err
		}
		if err := sale.AddItem(item.ProductID, item.ProductName, item.ProductSKU, item.Quantity, priceMoney, discountMoney, item.TaxRate); err != nil {
			return nil, err
		}
	}

	method := sales.PaymentMethod(req.PaymentMethod)
	sessionID, err := s.resolveSession(ctx, proforma.StoreID, method)
	if err != nil {
		return nil, err
	}

	tendered := sale.TotalAmount
	if req.AmountTendered != nil {
		tendered = *req.AmountTendered
	}
	tenderedMoney, err := valueobject.NewMoney(tendered, proforma.Currency)
	if err != nil {
		return nil, err
	}

	if err := sale.Complete(method, tenderedMoney, sessionID); err != nil {
		return nil, err
	}

	// Commit the reservation before persisting: a commit failure aborts the
	// conversion with nothing written.
	committed := make([]sales.ProformaItem, 0, len(proforma.Items))
	for _, item := range proforma.Items {
		if err := s.stockService.CommitReservation(ctx, proforma.StoreID, item.ProductID, item.Quantity, sale.Number, &req.CashierID); err != nil {
			s.rollbackCommits(ctx, proforma, committed)
			return nil, err
		}
		committed = append(committed, item)
	}

	if err := proforma.MarkConverted(sale.ID); err != nil {
		s.rollbackCommits(ctx, proforma, committed)
		return nil, err
	}
	// Sale and proforma are written in one transaction; a failure leaves the
	// proforma issued with no sale behind it, and the commits are undone.
	if err := s.proformaRepo.SaveConversion(ctx, proforma, sale); err != nil {
		s.rollbackCommits(ctx, proforma, committed)
		return nil, err
	}

	s.publishSaleEvents(ctx, sale)
	s.publishEvents(ctx, proforma)

	response := ToSaleResponse(sale)
	return &response, nil
}

// Cancel cancels a proforma. Reservations of issued proformas are released by
// the cancellation event.
func (s *ProformaService) Cancel(ctx context.Context, proformaID uuid.UUID, req CancelProformaRequest) (*ProformaResponse, error) {
	proforma, err := s.proformaRepo.FindByID(ctx, proformaID)
	if err != nil {
		return nil, err
	}

	if err := proforma.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.proformaRepo.Save(ctx, proforma); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, proforma)

	response := ToProformaResponse(proforma)
	return &response, nil
}

// ExpireDue expires issued proformas whose validity has passed. Called by the
// scheduler; returns the number of proformas expired.
func (s *ProformaService) ExpireDue(ctx context.Context, limit int) (int, error) {
	due, err := s.proformaRepo.FindExpirable(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range due {
		proforma := &due[i]
		if err := proforma.Expire(); err != nil {
			s.logger.Warn("skipping proforma that could not be expired",
				zap.String("number", proforma.Number),
				zap.Error(err),
			)
			continue
		}
		if err := s.proformaRepo.Save(ctx, proforma); err != nil {
			s.logger.Error("failed to save expired proforma",
				zap.String("number", proforma.Number),
				zap.Error(err),
			)
			continue
		}
		s.publishEvents(ctx, proforma)
		expired++
	}

	return expired, nil
}

func (s *ProformaService) addLine(ctx context.Context, proforma *sales.Proforma, line CheckoutItem, storeSettings *settings.StoreSettings) error {
	product, err := s.productRepo.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_PRODUCT", "Product not found")
		}
		return err
	}
	if !product.IsSellable() {
		return shared.NewDomainError("PRODUCT_NOT_SELLABLE", "Product "+product.SKU+" is not available for sale")
	}

	discount := decimal.Zero
	if line.Discount != nil {
		discount = *line.Discount
	}
	discountMoney, err := valueobject.NewMoney(discount, storeSettings.Currency)
	if err != nil {
		return err
	}
	priceMoney, err := valueobject.NewMoney(product.SalePrice, storeSettings.Currency)
	if err != nil {
		return err
	}

	taxRate := product.TaxRate.Div(decimal.NewFromInt(100))

	_, err = proforma.AddItem(product.ID, product.Name, product.SKU, line.Quantity, priceMoney, discountMoney, taxRate)
	return err
}

func (s *ProformaService) resolveSession(ctx context.Context, storeID uuid.UUID, method sales.PaymentMethod) (*uuid.UUID, error) {
	session, err := s.sessionRepo.FindOpenByStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if method == sales.PaymentMethodCash {
				return nil, shared.ErrNoOpenSession
			}
			return nil, nil
		}
		return nil, err
	}
	return &session.ID, nil
}

func (s *ProformaService) rollbackCommits(ctx context.Context, proforma *sales.Proforma, committed []sales.ProformaItem) {
	for _, item := range committed {
		if err := s.stockService.Return(ctx, proforma.StoreID, item.ProductID, item.Quantity, proforma.Number, nil); err != nil {
			s.logger.Error("failed to roll back committed reservation",
				zap.String("proforma", proforma.Number),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			continue
		}
		// The on-hand quantity is restored; re-establish the hold so the
		// proforma stays consistent with its reservations.
		if err := s.stockService.Reserve(ctx, proforma.StoreID, item.ProductID, item.Quantity, proforma.Number); err != nil {
			s.logger.Error("failed to re-reserve stock after rollback",
				zap.String("proforma", proforma.Number),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *ProformaService) storeSettings(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	stored, err := s.settingsRepo.FindByStore(ctx, storeID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return settings.NewStoreSettings(storeID)
}

func (s *ProformaService) publishEvents(ctx context.Context, proforma *sales.Proforma) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range proforma.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	proforma.ClearDomainEvents()
}

func (s *ProformaService) publishSaleEvents(ctx context.Context, sale *sales.Sale) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range sale.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	sale.ClearDomainEvents()
}
