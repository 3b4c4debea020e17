package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/shared/valueobject"
)

func price(v int64) valueobject.Money {
	return valueobject.NewMoneyXOF(decimal.NewFromInt(v))
}

func noDiscount() valueobject.Money {
	return valueobject.ZeroXOF()
}

func newPendingSale(t *testing.T) *Sale {
	t.Helper()
	sale, err := NewSale(uuid.New(), "SAL-20260830-0001", uuid.New(), valueobject.XOF)
	require.NoError(t, err)
	return sale
}

func addLine(t *testing.T, sale *Sale, qty int64, unitPrice int64) {
	t.Helper()
	require.NoError(t, sale.AddItem(uuid.New(), "Sugar 1kg", "SUG-001", decimal.NewFromInt(qty), price(unitPrice), noDiscount(), decimal.Zero))
}

func TestNewSale(t *testing.T) {
	t.Run("creates pending sale", func(t *testing.T) {
		sale := newPendingSale(t)

		assert.Equal(t, SaleStatusPending, sale.Status)
		assert.True(t, sale.TotalAmount.IsZero())
		assert.Equal(t, valueobject.XOF, sale.Currency)
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewSale(uuid.New(), "", uuid.New(), valueobject.XOF)
		assert.Error(t, err)
	})

	t.Run("rejects empty cashier", func(t *testing.T) {
		_, err := NewSale(uuid.New(), "SAL-20260830-0002", uuid.Nil, valueobject.XOF)
		assert.Error(t, err)
	})

	t.Run("defaults currency", func(t *testing.T) {
		sale, err := NewSale(uuid.New(), "SAL-20260830-0003", uuid.New(), "")
		require.NoError(t, err)
		assert.Equal(t, valueobject.DefaultCurrency, sale.Currency)
	})
}

func TestSale_AddItem(t *testing.T) {
	t.Run("accumulates totals", func(t *testing.T) {
		sale := newPendingSale(t)

		addLine(t, sale, 2, 500)
		addLine(t, sale, 1, 1500)

		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(2500)))
		assert.Equal(t, 2, sale.ItemCount())
	})

	t.Run("applies line discount and tax", func(t *testing.T) {
		sale := newPendingSale(t)

		err := sale.AddItem(uuid.New(), "Rice 5kg", "RIC-005", decimal.NewFromInt(2), price(1000), price(200), decimal.NewFromFloat(0.18))

		require.NoError(t, err)
		// (2*1000 - 200) * 1.18 = 2124
		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(2124)))
		assert.True(t, sale.DiscountAmount.Equal(decimal.NewFromInt(200)))
		assert.True(t, sale.TaxAmount.Equal(decimal.NewFromInt(324)))
	})

	t.Run("merges same product at same price", func(t *testing.T) {
		sale := newPendingSale(t)
		productID := uuid.New()

		require.NoError(t, sale.AddItem(productID, "Milk", "MLK-001", decimal.NewFromInt(1), price(600), noDiscount(), decimal.Zero))
		require.NoError(t, sale.AddItem(productID, "Milk", "MLK-001", decimal.NewFromInt(2), price(600), noDiscount(), decimal.Zero))

		require.Equal(t, 1, sale.ItemCount())
		assert.True(t, sale.Items[0].Quantity.Equal(decimal.NewFromInt(3)))
		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(1800)))
	})

	t.Run("rejects discount above line amount", func(t *testing.T) {
		sale := newPendingSale(t)
		err := sale.AddItem(uuid.New(), "Milk", "MLK-001", decimal.NewFromInt(1), price(600), price(700), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects items on completed sale", func(t *testing.T) {
		sale := newPendingSale(t)
		addLine(t, sale, 1, 500)
		require.NoError(t, sale.Complete(PaymentMethodCash, price(500), nil))

		err := sale.AddItem(uuid.New(), "Milk", "MLK-001", decimal.NewFromInt(1), price(600), noDiscount(), decimal.Zero)

		assert.Error(t, err)
	})
}

func TestSale_Complete(t *testing.T) {
	t.Run("cash computes change", func(t *testing.T) {
		sale := newPendingSale(t)
		addLine(t, sale, 3, 700)

		sessionID := uuid.New()
		require.NoError(t, sale.Complete(PaymentMethodCash, price(2500), &sessionID))

		assert.Equal(t, SaleStatusCompleted, sale.Status)
		assert.True(t, sale.ChangeDue.Equal(decimal.NewFromInt(400)))
		require.NotNil(t, sale.SessionID)
		assert.Equal(t, sessionID, *sale.SessionID)
		assert.NotNil(t, sale.CompletedAt)
	})

	t.Run("cash rejects short tender", func(t *testing.T) {
		sale := newPendingSale(t)
		addLine(t, sale, 1, 1000)

		err := sale.Complete(PaymentMethodCash, price(900), nil)

		assert.Error(t, err)
		assert.Equal(t, SaleStatusPending, sale.Status)
	})

	t.Run("non-cash records exact total", func(t *testing.T) {
		sale := newPendingSale(t)
		addLine(t, sale, 1, 1000)

		require.NoError(t, sale.Complete(PaymentMethodMobile, valueobject.ZeroXOF(), nil))

		assert.True(t, sale.AmountTendered.Equal(decimal.NewFromInt(1000)))
		assert.True(t, sale.ChangeDue.IsZero())
	})

	t.Run("rejects empty sale", func(t *testing.T) {
		sale := newPendingSale(t)
		assert.Error(t, sale.Complete(PaymentMethodCash, price(1000), nil))
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		sale := newPendingSale(t)
		addLine(t, sale, 1, 100)
		assert.Error(t, sale.Complete(PaymentMethod("BARTER"), price(100), nil))
	})

	t.Run("emits completed event with lines", func(t *testing.T) {
		sale := newPendingSale(t)
		addLine(t, sale, 2, 300)
		sale.ClearDomainEvents()

		require.NoError(t, sale.Complete(PaymentMethodCash, price(600), nil))

		events := sale.GetDomainEvents()
		require.Len(t, events, 1)
		completed, ok := events[0].(*SaleCompletedEvent)
		require.True(t, ok)
		require.Len(t, completed.Lines, 1)
		assert.True(t, completed.Lines[0].Quantity.Equal(decimal.NewFromInt(2)))
	})
}

func TestSale_Void(t *testing.T) {
	completedSale := func(t *testing.T) *Sale {
		sale := newPendingSale(t)
		addLine(t, sale, 1, 1000)
		require.NoError(t, sale.Complete(PaymentMethodCash, price(1000), nil))
		return sale
	}

	t.Run("voids completed sale", func(t *testing.T) {
		sale := completedSale(t)
		manager := uuid.New()

		require.NoError(t, sale.Void(manager, "wrong items rung up"))

		assert.Equal(t, SaleStatusVoided, sale.Status)
		require.NotNil(t, sale.VoidedBy)
		assert.Equal(t, manager, *sale.VoidedBy)
	})

	t.Run("requires reason", func(t *testing.T) {
		sale := completedSale(t)
		assert.Error(t, sale.Void(uuid.New(), ""))
	})

	t.Run("cannot void pending sale", func(t *testing.T) {
		sale := newPendingSale(t)
		addLine(t, sale, 1, 100)
		assert.Error(t, sale.Void(uuid.New(), "mistake"))
	})

	t.Run("cannot void twice", func(t *testing.T) {
		sale := completedSale(t)
		require.NoError(t, sale.Void(uuid.New(), "mistake"))
		assert.Error(t, sale.Void(uuid.New(), "again"))
	})
}
