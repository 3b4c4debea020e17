package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventoryapp "github.com/nextstock/backend/internal/application/inventory"
	"github.com/nextstock/backend/internal/domain/catalog"
	"github.com/nextstock/backend/internal/domain/partner"
	"github.com/nextstock/backend/internal/domain/register"
	"github.com/nextstock/backend/internal/domain/sales"
	"github.com/nextstock/backend/internal/domain/settings"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
)

// ApprovalVerifier checks a manager's PIN for privileged register actions
// such as voiding sales and closing sessions with a discrepancy.
type ApprovalVerifier interface {
	VerifyApproval(ctx context.Context, approverID uuid.UUID, pin string) error
}

// SaleService handles the register checkout flow
type SaleService struct {
	saleRepo       sales.SaleRepository
	productRepo    catalog.ProductRepository
	customerRepo   partner.CustomerRepository
	sessionRepo    register.CashSessionRepository
	settingsRepo   settings.StoreSettingsRepository
	stockService   *inventoryapp.StockService
	approvals      ApprovalVerifier
	eventPublisher shared.EventPublisher
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo sales.SaleRepository,
	productRepo catalog.ProductRepository,
	customerRepo partner.CustomerRepository,
	sessionRepo register.CashSessionRepository,
	settingsRepo settings.StoreSettingsRepository,
	stockService *inventoryapp.StockService,
) *SaleService {
	return &SaleService{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
		stockService: stockService,
	}
}

// SetApprovalVerifier sets the manager PIN verifier used for voids
func (s *SaleService) SetApprovalVerifier(verifier ApprovalVerifier) {
	s.approvals = verifier
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Checkout creates and completes a sale in one step.
// Stock availability is validated before payment; the actual deduction runs
// on the completion event.
func (s *SaleService) Checkout(ctx context.Context, storeID uuid.UUID, req CheckoutRequest) (*SaleResponse, error) {
	// Replayed offline operations return the already-applied sale
	if req.OfflineOpID != "" {
		existing, err := s.saleRepo.FindByOfflineOpID(ctx, req.OfflineOpID)
		if err == nil {
			response := ToSaleResponse(existing)
			return &response, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	storeSettings, err := s.storeSettings(ctx, storeID)
	if err != nil {
		return nil, err
	}

	number, err := s.saleRepo.NextNumber(ctx, storeID, time.Now())
	if err != nil {
		return nil, err
	}

	sale, err := sales.NewSale(storeID, number, req.CashierID, storeSettings.Currency)
	if err != nil {
		return nil, err
	}
	sale.OfflineOpID = req.OfflineOpID

	if req.CustomerID != nil {
		customer, err := s.customerRepo.FindByID(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer not found")
			}
			return nil, err
		}
		if err := sale.SetCustomer(customer.ID, customer.Name); err != nil {
			return nil, err
		}
	}

	for _, line := range req.Items {
		if err := s.addLine(ctx, sale, storeID, line, storeSettings); err != nil {
			return nil, err
		}
	}

	if req.Note != "" {
		sale.SetNote(req.Note)
	}

	method := sales.PaymentMethod(req.PaymentMethod)
	sessionID, err := s.resolveSession(ctx, storeID, method)
	if err != nil {
		return nil, err
	}

	tendered := sale.TotalAmount
	if req.AmountTendered != nil {
		tendered = *req.AmountTendered
	}
	tenderedMoney, err := valueobject.NewMoney(tendered, storeSettings.Currency)
	if err != nil {
		return nil, err
	}

	if err := sale.Complete(method, tenderedMoney, sessionID); err != nil {
		return nil, err
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale)

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByNumber retrieves a sale by its number
func (s *SaleService) GetByNumber(ctx context.Context, number string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales of a store with filtering and pagination
func (s *SaleService) List(ctx context.Context, storeID uuid.UUID, filter SaleListFilter) (*shared.Paginated[SaleResponse], error) {
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
	if filter.CashierID != nil {
		domainFilter.Filters["cashier_id"] = *filter.CashierID
	}

	items, err := s.saleRepo.FindAllForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.saleRepo.CountForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToSaleResponses(items), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListBySession retrieves the sales recorded against a cash session
func (s *SaleService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]SaleResponse, error) {
	items, err := s.saleRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ToSaleResponses(items), nil
}

// Void reverses a completed sale. Requires a manager PIN.
func (s *SaleService) Void(ctx context.Context, saleID uuid.UUID, req VoidSaleRequest) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if s.approvals == nil {
		return nil, shared.NewDomainError("APPROVAL_UNAVAILABLE", "Manager approval is not configured")
	}
	if err := s.approvals.VerifyApproval(ctx, req.ApproverID, req.Pin); err != nil {
		return nil, err
	}

	if err := sale.Void(req.ApproverID, req.Reason); err != nil {
		return nil, err
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale)

	response := ToSaleResponse(sale)
	return &response, nil
}

func (s *SaleService) addLine(ctx context.Context, sale *sales.Sale, storeID uuid.UUID, line CheckoutItem, storeSettings *settings.StoreSettings) error {
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

	stock, err := s.stockService.GetStock(ctx, storeID, product.ID)
	if err != nil {
		return err
	}
	if stock.AvailableQty.LessThan(line.Quantity) {
		return shared.ErrInsufficientStock
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

	// Product tax rates are percentages; sale lines take a fraction
	taxRate := product.TaxRate.Div(decimal.NewFromInt(100))

	return sale.AddItem(product.ID, product.Name, product.SKU, line.Quantity, priceMoney, discountMoney, taxRate)
}

// resolveSession finds the open session for the store. Cash payments require
// one; card and mobile sales are attached when a session happens to be open.
func (s *SaleService) resolveSession(ctx context.Context, storeID uuid.UUID, method sales.PaymentMethod) (*uuid.UUID, error) {
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

func (s *SaleService) storeSettings(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	stored, err := s.settingsRepo.FindByStore(ctx, storeID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return settings.NewStoreSettings(storeID)
}

func (s *SaleService) publishEvents(ctx context.Context, sale *sales.Sale) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range sale.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	sale.ClearDomainEvents()
}
