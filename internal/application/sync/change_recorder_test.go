package sync

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/nextstock/backend/internal/domain/catalog"
	"github.com/nextstock/backend/internal/domain/inventory"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
	"github.com/nextstock/backend/internal/domain/sync"
)

func testSyncProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("COLA-33CL", "Cola 33cl", valueobject.NewMoneyXOF(decimal.NewFromInt(700)))
	require.NoError(t, err)
	return product
}

func TestChangeRecorder_Handle(t *testing.T) {
	ctx := context.Background()

	newRecorder := func() (*ChangeRecorder, *MockChangeLogRepository) {
		repo := new(MockChangeLogRepository)
		return NewChangeRecorder(repo, zap.NewNop()), repo
	}

	t.Run("product created appends an upsert with the event payload", func(t *testing.T) {
		recorder, repo := newRecorder()
		product := testSyncProduct(t)
		event := catalog.NewProductCreatedEvent(product)

		repo.On("Append", ctx, mock.MatchedBy(func(e *sync.ChangeEntry) bool {
			return e.EntityType == sync.EntityTypeProduct &&
				e.EntityID == product.ID &&
				e.Op == sync.ChangeOpUpsert &&
				e.StoreID == nil &&
				len(e.Payload) > 0
		})).Return(nil)

		err := recorder.Handle(ctx, event)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("product deleted appends a delete without payload", func(t *testing.T) {
		recorder, repo := newRecorder()
		product := testSyncProduct(t)
		event := catalog.NewProductDeletedEvent(product)

		repo.On("Append", ctx, mock.MatchedBy(func(e *sync.ChangeEntry) bool {
			return e.Op == sync.ChangeOpDelete && len(e.Payload) == 0
		})).Return(nil)

		err := recorder.Handle(ctx, event)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("stock change is scoped to its store", func(t *testing.T) {
		recorder, repo := newRecorder()
		item, err := inventory.NewStockItem(uuid.New(), uuid.New())
		require.NoError(t, err)
		event := inventory.NewStockChangedEvent(item, inventory.MovementTypeSale,
			decimal.NewFromInt(-2), decimal.NewFromInt(10), decimal.NewFromInt(8), "S-0001")

		repo.On("Append", ctx, mock.MatchedBy(func(e *sync.ChangeEntry) bool {
			return e.EntityType == sync.EntityTypeStockItem &&
				e.StoreID != nil && *e.StoreID == item.StoreID
		})).Return(nil)

		err = recorder.Handle(ctx, event)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unrelated events are ignored", func(t *testing.T) {
		recorder, repo := newRecorder()
		item, err := inventory.NewStockItem(uuid.New(), uuid.New())
		require.NoError(t, err)
		event := inventory.NewStockReservedEvent(item, decimal.NewFromInt(1), "PF-0001")

		err = recorder.Handle(ctx, event)

		require.NoError(t, err)
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("subscription covers the cached entity types", func(t *testing.T) {
		recorder, _ := newRecorder()
		types := recorder.EventTypes()

		assert.Contains(t, types, catalog.EventTypeProductCreated)
		assert.Contains(t, types, catalog.EventTypeProductDeleted)
		assert.Contains(t, types, inventory.EventTypeStockChanged)
		assert.NotContains(t, types, inventory.EventTypeStockReserved)
	})
}
