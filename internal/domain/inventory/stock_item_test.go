package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/shared"
)

func qty(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newTestItem(t *testing.T) *StockItem {
	t.Helper()
	item, err := NewStockItem(uuid.New(), uuid.New())
	require.NoError(t, err)
	return item
}

func TestNewStockItem(t *testing.T) {
	t.Run("creates item with zero quantities", func(t *testing.T) {
		storeID := uuid.New()
		productID := uuid.New()

		item, err := NewStockItem(storeID, productID)

		require.NoError(t, err)
		assert.Equal(t, storeID, item.StoreID)
		assert.Equal(t, productID, item.ProductID)
		assert.True(t, item.Quantity.IsZero())
		assert.True(t, item.ReservedQuantity.IsZero())
	})

	t.Run("rejects empty store", func(t *testing.T) {
		_, err := NewStockItem(uuid.Nil, uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects empty product", func(t *testing.T) {
		_, err := NewStockItem(uuid.New(), uuid.Nil)
		assert.Error(t, err)
	})
}

func TestStockItem_Receive(t *testing.T) {
	t.Run("increases on-hand quantity", func(t *testing.T) {
		item := newTestItem(t)

		err := item.Receive(qty(10), MovementTypeReceive, "PO-001")

		require.NoError(t, err)
		assert.True(t, item.Quantity.Equal(qty(10)))
	})

	t.Run("emits stock changed event", func(t *testing.T) {
		item := newTestItem(t)
		item.ClearDomainEvents()

		require.NoError(t, item.Receive(qty(5), MovementTypeReceive, "PO-002"))

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		changed, ok := events[0].(*StockChangedEvent)
		require.True(t, ok)
		assert.True(t, changed.Delta.Equal(qty(5)))
		assert.True(t, changed.QuantityBefore.IsZero())
		assert.True(t, changed.QuantityAfter.Equal(qty(5)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		item := newTestItem(t)
		assert.Error(t, item.Receive(qty(0), MovementTypeReceive, ""))
		assert.Error(t, item.Receive(qty(-1), MovementTypeReceive, ""))
	})

	t.Run("rejects decreasing movement type", func(t *testing.T) {
		item := newTestItem(t)
		assert.Error(t, item.Receive(qty(5), MovementTypeSale, ""))
	})
}

func TestStockItem_Deduct(t *testing.T) {
	t.Run("decreases on-hand quantity", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))

		err := item.Deduct(qty(4), MovementTypeSale, "SAL-001")

		require.NoError(t, err)
		assert.True(t, item.Quantity.Equal(qty(6)))
	})

	t.Run("never goes negative", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(3), MovementTypeReceive, ""))

		err := item.Deduct(qty(5), MovementTypeSale, "SAL-002")

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, item.Quantity.Equal(qty(3)))
	})

	t.Run("respects reservations", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))
		require.NoError(t, item.Reserve(qty(7), "PRO-001"))

		err := item.Deduct(qty(5), MovementTypeSale, "SAL-003")

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("emits low stock event at threshold", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.SetThresholds(qty(5), qty(100)))
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))
		item.ClearDomainEvents()

		require.NoError(t, item.Deduct(qty(6), MovementTypeSale, "SAL-004"))

		var found bool
		for _, e := range item.GetDomainEvents() {
			if _, ok := e.(*LowStockEvent); ok {
				found = true
			}
		}
		assert.True(t, found, "expected a low stock event")
	})
}

func TestStockItem_Adjust(t *testing.T) {
	t.Run("corrects quantity upward", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))

		require.NoError(t, item.Adjust(qty(15), "stock count"))

		assert.True(t, item.Quantity.Equal(qty(15)))
	})

	t.Run("corrects quantity downward", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))

		require.NoError(t, item.Adjust(qty(4), "shrinkage"))

		assert.True(t, item.Quantity.Equal(qty(4)))
	})

	t.Run("requires a reason", func(t *testing.T) {
		item := newTestItem(t)
		assert.Error(t, item.Adjust(qty(5), ""))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		item := newTestItem(t)
		assert.Error(t, item.Adjust(qty(-1), "bad count"))
	})

	t.Run("cannot drop below reserved", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))
		require.NoError(t, item.Reserve(qty(6), "PRO-002"))

		assert.Error(t, item.Adjust(qty(5), "stock count"))
	})

	t.Run("no-op when quantity unchanged", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))
		item.ClearDomainEvents()

		require.NoError(t, item.Adjust(qty(10), "stock count"))

		assert.Empty(t, item.GetDomainEvents())
	})
}

func TestStockItem_ReserveRelease(t *testing.T) {
	t.Run("reserve reduces availability", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))

		require.NoError(t, item.Reserve(qty(4), "PRO-003"))

		assert.True(t, item.AvailableQuantity().Equal(qty(6)))
		assert.True(t, item.Quantity.Equal(qty(10)))
	})

	t.Run("cannot reserve beyond availability", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(5), MovementTypeReceive, ""))

		err := item.Reserve(qty(6), "PRO-004")

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("release restores availability", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))
		require.NoError(t, item.Reserve(qty(4), "PRO-005"))

		require.NoError(t, item.Release(qty(4), "PRO-005"))

		assert.True(t, item.AvailableQuantity().Equal(qty(10)))
	})

	t.Run("cannot release more than reserved", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))
		require.NoError(t, item.Reserve(qty(2), "PRO-006"))

		assert.Error(t, item.Release(qty(3), "PRO-006"))
	})

	t.Run("commit converts reservation into deduction", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(qty(10), MovementTypeReceive, ""))
		require.NoError(t, item.Reserve(qty(4), "PRO-007"))

		require.NoError(t, item.CommitReservation(qty(4), "SAL-010"))

		assert.True(t, item.Quantity.Equal(qty(6)))
		assert.True(t, item.ReservedQuantity.IsZero())
	})
}

func TestStockItem_Thresholds(t *testing.T) {
	t.Run("sets thresholds", func(t *testing.T) {
		item := newTestItem(t)

		require.NoError(t, item.SetThresholds(qty(5), qty(50)))

		assert.True(t, item.MinQuantity.Equal(qty(5)))
		assert.True(t, item.MaxQuantity.Equal(qty(50)))
	})

	t.Run("rejects max below min", func(t *testing.T) {
		item := newTestItem(t)
		assert.Error(t, item.SetThresholds(qty(10), qty(5)))
	})

	t.Run("zero max means unlimited", func(t *testing.T) {
		item := newTestItem(t)
		assert.NoError(t, item.SetThresholds(qty(10), qty(0)))
	})

	t.Run("no alert when threshold unset", func(t *testing.T) {
		item := newTestItem(t)
		assert.False(t, item.IsBelowMinimum())
	})
}
