package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/inventory"
	"github.com/nextstock/backend/internal/domain/shared"
)

// MockStockItemRepository is a mock implementation of inventory.StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStockItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockItemRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockItemRepository) FindByStoreAndProduct(ctx context.Context, storeID, productID uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockItem, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindBelowMinimum(ctx context.Context, storeID uuid.UUID) ([]inventory.StockItem, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) SaveWithMovement(ctx context.Context, item *inventory.StockItem, movement *inventory.StockMovement) error {
	args := m.Called(ctx, item, movement)
	return args.Error(0)
}

// MockStockMovementRepository is a mock implementation of inventory.StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) FindByProduct(ctx context.Context, storeID, productID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, storeID, productID, filter)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) FindByReference(ctx context.Context, reference string) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) CountByStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStockMovementRepository) FindByPeriod(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, storeID, from, to)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func stockedItem(t *testing.T, storeID, productID uuid.UUID, qty int64) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(storeID, productID)
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(qty), inventory.MovementTypeReceive, "init"))
	item.ClearDomainEvents()
	return item
}

func TestStockService_Receive(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	productID := uuid.New()

	t.Run("first receipt creates the stock item", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(nil, shared.ErrNotFound)
		stockRepo.On("SaveWithMovement", ctx, mock.AnythingOfType("*inventory.StockItem"), mock.AnythingOfType("*inventory.StockMovement")).Return(nil)

		resp, err := service.Receive(ctx, storeID, ReceiveStockRequest{
			ProductID: productID,
			Quantity:  decimal.NewFromInt(24),
			Reference: "DLV-001",
		})

		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(24)))
		stockRepo.AssertExpectations(t)
	})

	t.Run("receipt writes a balanced movement", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		item := stockedItem(t, storeID, productID, 10)
		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(item, nil)
		stockRepo.On("SaveWithMovement", ctx, item, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.MovementType == inventory.MovementTypeReceive &&
				m.Quantity.Equal(decimal.NewFromInt(5)) &&
				m.QuantityBefore.Equal(decimal.NewFromInt(10)) &&
				m.QuantityAfter.Equal(decimal.NewFromInt(15))
		})).Return(nil)

		_, err := service.Receive(ctx, storeID, ReceiveStockRequest{
			ProductID: productID,
			Quantity:  decimal.NewFromInt(5),
			Reference: "DLV-002",
		})

		require.NoError(t, err)
		stockRepo.AssertExpectations(t)
	})
}

func TestStockService_Deduct(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	productID := uuid.New()

	t.Run("deduct records a negative movement", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		item := stockedItem(t, storeID, productID, 10)
		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(item, nil)
		stockRepo.On("SaveWithMovement", ctx, item, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.MovementType == inventory.MovementTypeSale &&
				m.Quantity.Equal(decimal.NewFromInt(-3)) &&
				m.QuantityAfter.Equal(decimal.NewFromInt(7))
		})).Return(nil)

		err := service.Deduct(ctx, storeID, productID, decimal.NewFromInt(3), "SAL-20260830-0001", nil)

		require.NoError(t, err)
		stockRepo.AssertExpectations(t)
	})

	t.Run("deduct from a never-stocked product fails", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(nil, shared.ErrNotFound)

		err := service.Deduct(ctx, storeID, productID, decimal.NewFromInt(1), "SAL-20260830-0002", nil)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("deduct beyond available fails", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		item := stockedItem(t, storeID, productID, 2)
		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(item, nil)

		err := service.Deduct(ctx, storeID, productID, decimal.NewFromInt(5), "SAL-20260830-0003", nil)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	productID := uuid.New()

	t.Run("downward adjustment", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		item := stockedItem(t, storeID, productID, 20)
		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(item, nil)
		stockRepo.On("SaveWithMovement", ctx, item, mock.MatchedBy(func(m *inventory.StockMovement) bool {
			return m.MovementType == inventory.MovementTypeAdjustmentOut &&
				m.Quantity.Equal(decimal.NewFromInt(-4))
		})).Return(nil)

		resp, err := service.Adjust(ctx, storeID, AdjustStockRequest{
			ProductID:   productID,
			NewQuantity: decimal.NewFromInt(16),
			Reason:      "damaged crates",
		})

		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(16)))
	})

	t.Run("no-op adjustment skips the ledger", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		item := stockedItem(t, storeID, productID, 20)
		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(item, nil)

		_, err := service.Adjust(ctx, storeID, AdjustStockRequest{
			ProductID:   productID,
			NewQuantity: decimal.NewFromInt(20),
			Reason:      "recount",
		})

		require.NoError(t, err)
		stockRepo.AssertNotCalled(t, "SaveWithMovement", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStockService_Reservations(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	productID := uuid.New()

	t.Run("reserve then commit deducts on hand", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		item := stockedItem(t, storeID, productID, 10)
		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(item, nil)
		stockRepo.On("Save", ctx, item).Return(nil)
		stockRepo.On("SaveWithMovement", ctx, item, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)

		require.NoError(t, service.Reserve(ctx, storeID, productID, decimal.NewFromInt(4), "PRO-20260830-0001"))
		assert.True(t, item.ReservedQuantity.Equal(decimal.NewFromInt(4)))

		require.NoError(t, service.CommitReservation(ctx, storeID, productID, decimal.NewFromInt(4), "SAL-20260830-0009", nil))
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, item.ReservedQuantity.IsZero())
	})

	t.Run("reserve on unknown stock item fails", func(t *testing.T) {
		stockRepo := new(MockStockItemRepository)
		movementRepo := new(MockStockMovementRepository)
		service := NewStockService(stockRepo, movementRepo)

		stockRepo.On("FindByStoreAndProduct", ctx, storeID, productID).Return(nil, shared.ErrNotFound)

		err := service.Reserve(ctx, storeID, productID, decimal.NewFromInt(1), "PRO-20260830-0002")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})
}
