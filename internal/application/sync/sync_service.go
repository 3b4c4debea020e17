package sync

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	inventoryapp "github.com/nextstock/backend/internal/application/inventory"
	salesapp "github.com/nextstock/backend/internal/application/sales"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/sync"
)

const (
	defaultPullLimit = 100
	maxPullLimit     = 500
)

// SaleCheckout is the slice of the sales service the push replay needs
type SaleCheckout interface {
	Checkout(ctx context.Context, storeID uuid.UUID, req salesapp.CheckoutRequest) (*salesapp.SaleResponse, error)
}

// StockAccess is the slice of the stock service the push replay needs
type StockAccess interface {
	GetStock(ctx context.Context, storeID, productID uuid.UUID) (*inventoryapp.StockItemResponse, error)
	Adjust(ctx context.Context, storeID uuid.UUID, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockItemResponse, error)
}

// SyncService serves the offline clients: change-log pulls and replay of
// offline-queued operations.
type SyncService struct {
	changeLog    sync.ChangeLogRepository
	idempotency  sync.IdempotencyStore
	saleService  SaleCheckout
	stockService StockAccess
	logger       *zap.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(
	changeLog sync.ChangeLogRepository,
	idempotency sync.IdempotencyStore,
	saleService SaleCheckout,
	stockService StockAccess,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		changeLog:    changeLog,
		idempotency:  idempotency,
		saleService:  saleService,
		stockService: stockService,
		logger:       logger,
	}
}

// Pull returns change-log entries after the client's cursor, scoped to the
// entries the store may see.
func (s *SyncService) Pull(ctx context.Context, storeID uuid.UUID, filter PullFilter) (*PullResponse, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPullLimit
	}
	if limit > maxPullLimit {
		limit = maxPullLimit
	}

	entries, err := s.changeLog.FindAfter(ctx, filter.Cursor, storeID, limit)
	if err != nil {
		return nil, err
	}

	resp := &PullResponse{
		Entries:    make([]ChangeEntryResponse, 0, len(entries)),
		NextCursor: filter.Cursor,
		HasMore:    len(entries) == limit,
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, ToChangeEntryResponse(&entries[i]))
	}
	if len(entries) > 0 {
		resp.NextCursor = entries[len(entries)-1].Seq
	}

	return resp, nil
}

// Push replays offline-queued operations. Each operation is answered
// individually; a failed operation never aborts the batch.
func (s *SyncService) Push(ctx context.Context, storeID uuid.UUID, req PushRequest) (*PushResponse, error) {
	results := make([]sync.OpResult, 0, len(req.Operations))
	for _, op := range req.Operations {
		results = append(results, s.applyOne(ctx, storeID, op))
	}
	return &PushResponse{Results: results}, nil
}

func (s *SyncService) applyOne(ctx context.Context, storeID uuid.UUID, op PushOperation) sync.OpResult {
	domainOp := sync.OfflineOperation{
		ClientOpID:  op.ClientOpID,
		Type:        sync.OpType(op.Type),
		StoreID:     storeID,
		PerformedAt: op.PerformedAt,
		Payload:     []byte(op.Payload),
	}
	if err := domainOp.Validate(); err != nil {
		return rejected(op.ClientOpID, err)
	}

	if stored, err := s.idempotency.Lookup(ctx, op.ClientOpID); err != nil {
		s.logger.Error("Idempotency lookup failed", zap.Error(err))
	} else if stored != nil {
		var original sync.OpResult
		if err := json.Unmarshal(stored, &original); err == nil {
			original.Outcome = sync.OpOutcomeDuplicate
			return original
		}
		return sync.OpResult{ClientOpID: op.ClientOpID, Outcome: sync.OpOutcomeDuplicate}
	}

	var result sync.OpResult
	switch domainOp.Type {
	case sync.OpTypeSale:
		result = s.applySale(ctx, storeID, domainOp)
	case sync.OpTypeStockAdjustment:
		result = s.applyAdjustment(ctx, storeID, domainOp)
	}

	if result.Outcome != sync.OpOutcomeRejected {
		s.remember(ctx, result)
	}

	return result
}

// applySale replays an offline sale. Server stock is the truth: lines that
// exceed what the server has are clamped to the available quantity and
// reported as conflicts.
func (s *SyncService) applySale(ctx context.Context, storeID uuid.UUID, op sync.OfflineOperation) sync.OpResult {
	var payload OfflineSalePayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return rejected(op.ClientOpID, errors.New("malformed sale payload"))
	}
	if len(payload.Items) == 0 {
		return rejected(op.ClientOpID, errors.New("sale has no items"))
	}

	items := make([]salesapp.CheckoutItem, 0, len(payload.Items))
	conflicts := make([]sync.Conflict, 0)
	for _, item := range payload.Items {
		applied := item.Quantity

		available := decimal.Zero
		stock, err := s.stockService.GetStock(ctx, storeID, item.ProductID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return rejected(op.ClientOpID, err)
			}
		} else {
			available = stock.AvailableQty
		}

		if applied.GreaterThan(available) {
			conflicts = append(conflicts, sync.Conflict{
				ProductID:         item.ProductID,
				RequestedQuantity: item.Quantity,
				AppliedQuantity:   available,
				Reason:            "insufficient stock at sync time",
			})
			applied = available
		}
		if applied.IsPositive() {
			items = append(items, salesapp.CheckoutItem{
				ProductID: item.ProductID,
				Quantity:  applied,
				Discount:  item.Discount,
			})
		}
	}

	if len(items) == 0 {
		return sync.OpResult{
			ClientOpID: op.ClientOpID,
			Outcome:    sync.OpOutcomeRejected,
			Conflicts:  conflicts,
			Error:      "no sellable quantity left after stock reconciliation",
		}
	}

	sale, err := s.saleService.Checkout(ctx, storeID, salesapp.CheckoutRequest{
		CustomerID:     payload.CustomerID,
		Items:          items,
		PaymentMethod:  payload.PaymentMethod,
		AmountTendered: payload.AmountTendered,
		Note:           payload.Note,
		OfflineOpID:    op.ClientOpID,
		CashierID:      payload.CashierID,
	})
	if err != nil {
		return rejected(op.ClientOpID, err)
	}

	outcome := sync.OpOutcomeApplied
	if len(conflicts) > 0 {
		outcome = sync.OpOutcomeConflict
	}

	return sync.OpResult{
		ClientOpID: op.ClientOpID,
		Outcome:    outcome,
		EntityID:   &sale.ID,
		Conflicts:  conflicts,
	}
}

func (s *SyncService) applyAdjustment(ctx context.Context, storeID uuid.UUID, op sync.OfflineOperation) sync.OpResult {
	var payload OfflineAdjustmentPayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil {
		return rejected(op.ClientOpID, errors.New("malformed adjustment payload"))
	}

	item, err := s.stockService.Adjust(ctx, storeID, inventoryapp.AdjustStockRequest{
		ProductID:   payload.ProductID,
		NewQuantity: payload.NewQuantity,
		Reason:      payload.Reason,
		PerformedBy: &payload.PerformedBy,
	})
	if err != nil {
		return rejected(op.ClientOpID, err)
	}

	return sync.OpResult{
		ClientOpID: op.ClientOpID,
		Outcome:    sync.OpOutcomeApplied,
		EntityID:   &item.ID,
	}
}

// PruneChangeLog keeps only the newest retain entries. Clients further
// behind than that must do a full re-sync anyway.
func (s *SyncService) PruneChangeLog(ctx context.Context, retain int64) (int64, error) {
	latest, err := s.changeLog.LatestSeq(ctx)
	if err != nil {
		return 0, err
	}

	keepSeq := latest - retain
	if keepSeq <= 0 {
		return 0, nil
	}

	deleted, err := s.changeLog.PruneBefore(ctx, keepSeq)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info("Change log pruned",
			zap.Int64("deleted", deleted),
			zap.Int64("keep_seq", keepSeq))
	}

	return deleted, nil
}

func (s *SyncService) remember(ctx context.Context, result sync.OpResult) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("Failed to serialize op result", zap.Error(err))
		return
	}
	if _, err := s.idempotency.Remember(ctx, result.ClientOpID, data); err != nil {
		s.logger.Error("Failed to record idempotency entry",
			zap.String("client_op_id", result.ClientOpID),
			zap.Error(err))
	}
}

func rejected(clientOpID string, err error) sync.OpResult {
	return sync.OpResult{
		ClientOpID: clientOpID,
		Outcome:    sync.OpOutcomeRejected,
		Error:      err.Error(),
	}
}
