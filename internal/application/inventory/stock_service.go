package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/inventory"
	"github.com/nextstock/backend/internal/domain/shared"
)

// StockService handles inventory operations for store stock items.
// Every quantity change writes a ledger movement in the same transaction.
type StockService struct {
	stockRepo      inventory.StockItemRepository
	movementRepo   inventory.StockMovementRepository
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(stockRepo inventory.StockItemRepository, movementRepo inventory.StockMovementRepository) *StockService {
	return &StockService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetStock returns the stock item for a product at a store. A product that
// has never been stocked at the store is reported with zero quantities.
func (s *StockService) GetStock(ctx context.Context, storeID, productID uuid.UUID) (*StockItemResponse, error) {
	item, err := s.stockRepo.FindByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			empty, err := inventory.NewStockItem(storeID, productID)
			if err != nil {
				return nil, err
			}
			response := ToStockItemResponse(empty)
			return &response, nil
		}
		return nil, err
	}

	response := ToStockItemResponse(item)
	return &response, nil
}

// ListByStore returns the stock items of a store with pagination
func (s *StockService) ListByStore(ctx context.Context, storeID uuid.UUID, page, pageSize int) (*shared.Paginated[StockItemResponse], error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	items, err := s.stockRepo.FindAllForStore(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.stockRepo.CountForStore(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToStockItemResponses(items), total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListBelowMinimum returns stock items at or under their alert threshold
func (s *StockService) ListBelowMinimum(ctx context.Context, storeID uuid.UUID) ([]StockItemResponse, error) {
	items, err := s.stockRepo.FindBelowMinimum(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return ToStockItemResponses(items), nil
}

// Receive records an incoming delivery, creating the stock item on first receipt
func (s *StockService) Receive(ctx context.Context, storeID uuid.UUID, req ReceiveStockRequest) (*StockItemResponse, error) {
	item, err := s.findOrCreate(ctx, storeID, req.ProductID)
	if err != nil {
		return nil, err
	}

	before := item.Quantity
	if err := item.Receive(req.Quantity, inventory.MovementTypeReceive, req.Reference); err != nil {
		return nil, err
	}

	movement, err := inventory.NewStockMovement(item, inventory.MovementTypeReceive, req.Quantity, before, item.Quantity, req.Reference, req.PerformedBy)
	if err != nil {
		return nil, err
	}

	if err := s.stockRepo.SaveWithMovement(ctx, item, movement); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item)

	response := ToStockItemResponse(item)
	return &response, nil
}

// Adjust sets the on-hand quantity after a physical count
func (s *StockService) Adjust(ctx context.Context, storeID uuid.UUID, req AdjustStockRequest) (*StockItemResponse, error) {
	item, err := s.findOrCreate(ctx, storeID, req.ProductID)
	if err != nil {
		return nil, err
	}

	before := item.Quantity
	if err := item.Adjust(req.NewQuantity, req.Reason); err != nil {
		return nil, err
	}

	delta := item.Quantity.Sub(before)
	if delta.IsZero() {
		// Nothing changed; skip the ledger write
		response := ToStockItemResponse(item)
		return &response, nil
	}

	movementType := inventory.MovementTypeAdjustmentIn
	if delta.IsNegative() {
		movementType = inventory.MovementTypeAdjustmentOut
	}

	movement, err := inventory.NewStockMovement(item, movementType, delta, before, item.Quantity, req.Reason, req.PerformedBy)
	if err != nil {
		return nil, err
	}

	if err := s.stockRepo.SaveWithMovement(ctx, item, movement); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item)

	response := ToStockItemResponse(item)
	return &response, nil
}

// Deduct removes stock for a completed sale. The reference is the sale number.
func (s *StockService) Deduct(ctx context.Context, storeID, productID uuid.UUID, quantity decimal.Decimal, reference string, performedBy *uuid.UUID) error {
	item, err := s.stockRepo.FindByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInsufficientStock
		}
		return err
	}

	before := item.Quantity
	if err := item.Deduct(quantity, inventory.MovementTypeSale, reference); err != nil {
		return err
	}

	movement, err := inventory.NewStockMovement(item, inventory.MovementTypeSale, quantity.Neg(), before, item.Quantity, reference, performedBy)
	if err != nil {
		return err
	}

	if err := s.stockRepo.SaveWithMovement(ctx, item, movement); err != nil {
		return err
	}

	s.publishEvents(ctx, item)
	return nil
}

// Return puts stock back after a sale void. The reference is the sale number.
func (s *StockService) Return(ctx context.Context, storeID, productID uuid.UUID, quantity decimal.Decimal, reference string, performedBy *uuid.UUID) error {
	item, err := s.findOrCreate(ctx, storeID, productID)
	if err != nil {
		return err
	}

	before := item.Quantity
	if err := item.Receive(quantity, inventory.MovementTypeReturnIn, reference); err != nil {
		return err
	}

	movement, err := inventory.NewStockMovement(item, inventory.MovementTypeReturnIn, quantity, before, item.Quantity, reference, performedBy)
	if err != nil {
		return err
	}

	if err := s.stockRepo.SaveWithMovement(ctx, item, movement); err != nil {
		return err
	}

	s.publishEvents(ctx, item)
	return nil
}

// Reserve holds stock for an issued proforma
func (s *StockService) Reserve(ctx context.Context, storeID, productID uuid.UUID, quantity decimal.Decimal, reference string) error {
	item, err := s.stockRepo.FindByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInsufficientStock
		}
		return err
	}

	if err := item.Reserve(quantity, reference); err != nil {
		return err
	}

	if err := s.stockRepo.Save(ctx, item); err != nil {
		return err
	}

	s.publishEvents(ctx, item)
	return nil
}

// Release frees a reservation when a proforma expires or is cancelled
func (s *StockService) Release(ctx context.Context, storeID, productID uuid.UUID, quantity decimal.Decimal, reference string) error {
	item, err := s.stockRepo.FindByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		return err
	}

	if err := item.Release(quantity, reference); err != nil {
		return err
	}

	if err := s.stockRepo.Save(ctx, item); err != nil {
		return err
	}

	s.publishEvents(ctx, item)
	return nil
}

// CommitReservation converts a proforma hold into an actual deduction when
// the proforma becomes a sale.
func (s *StockService) CommitReservation(ctx context.Context, storeID, productID uuid.UUID, quantity decimal.Decimal, reference string, performedBy *uuid.UUID) error {
	item, err := s.stockRepo.FindByStoreAndProduct(ctx, storeID, productID)
	if err != nil {
		return err
	}

	before := item.Quantity
	if err := item.CommitReservation(quantity, reference); err != nil {
		return err
	}

	movement, err := inventory.NewStockMovement(item, inventory.MovementTypeSale, quantity.Neg(), before, item.Quantity, reference, performedBy)
	if err != nil {
		return err
	}

	if err := s.stockRepo.SaveWithMovement(ctx, item, movement); err != nil {
		return err
	}

	s.publishEvents(ctx, item)
	return nil
}

// SetThresholds updates the low-stock alert levels for a product at a store
func (s *StockService) SetThresholds(ctx context.Context, storeID, productID uuid.UUID, req SetThresholdsRequest) (*StockItemResponse, error) {
	item, err := s.findOrCreate(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if err := item.SetThresholds(req.MinQuantity, req.MaxQuantity); err != nil {
		return nil, err
	}

	if err := s.stockRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToStockItemResponse(item)
	return &response, nil
}

// ListMovements returns the movement ledger for a store
func (s *StockService) ListMovements(ctx context.Context, storeID uuid.UUID, filter MovementListFilter) (*shared.Paginated[StockMovementResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Type != "" {
		domainFilter.Filters["movement_type"] = filter.Type
	}

	var movements []inventory.StockMovement
	var err error
	if filter.ProductID != nil {
		movements, err = s.movementRepo.FindByProduct(ctx, storeID, *filter.ProductID, domainFilter)
	} else {
		movements, err = s.movementRepo.FindByStore(ctx, storeID, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.movementRepo.CountByStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToStockMovementResponses(movements), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

func (s *StockService) findOrCreate(ctx context.Context, storeID, productID uuid.UUID) (*inventory.StockItem, error) {
	item, err := s.stockRepo.FindByStoreAndProduct(ctx, storeID, productID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return inventory.NewStockItem(storeID, productID)
}

func (s *StockService) publishEvents(ctx context.Context, item *inventory.StockItem) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range item.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	item.ClearDomainEvents()
}
