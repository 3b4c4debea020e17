package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/shared/valueobject"
)

func price(v int64) valueobject.Money {
	return valueobject.NewMoneyXOF(decimal.NewFromInt(v))
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("COLA-33CL", "Cola 33cl", price(500))
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, "COLA-33CL", product.SKU)
		assert.Equal(t, "Cola 33cl", product.Name)
		assert.Equal(t, "500", product.SalePrice.String())
		assert.Equal(t, ProductStatusActive, product.Status)
		assert.True(t, product.IsSellable())
		assert.NotEmpty(t, product.ID)
	})

	t.Run("converts SKU to uppercase", func(t *testing.T) {
		product, err := NewProduct("cola-33cl", "Cola 33cl", price(500))
		require.NoError(t, err)
		assert.Equal(t, "COLA-33CL", product.SKU)
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct("TEST", "Test", price(100))
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("fails with empty SKU", func(t *testing.T) {
		_, err := NewProduct("", "Cola", price(500))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SKU cannot be empty")
	})

	t.Run("fails with invalid SKU characters", func(t *testing.T) {
		_, err := NewProduct("COLA 33CL", "Cola", price(500))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can only contain letters")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("COLA", "", price(500))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("COLA", "Cola", valueobject.NewMoneyXOF(decimal.NewFromInt(-1)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})
}

func TestProductSetPrices(t *testing.T) {
	product, err := NewProduct("COLA", "Cola", price(500))
	require.NoError(t, err)
	product.ClearDomainEvents()

	t.Run("sets cost and sale prices", func(t *testing.T) {
		err := product.SetPrices(price(300), price(550))
		require.NoError(t, err)
		assert.Equal(t, "300", product.CostPrice.String())
		assert.Equal(t, "550", product.SalePrice.String())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductPriceChanged, events[0].EventType())
	})

	t.Run("rejects negative cost price", func(t *testing.T) {
		err := product.SetPrices(valueobject.NewMoneyXOF(decimal.NewFromInt(-10)), price(550))
		require.Error(t, err)
	})
}

func TestProductTaxRate(t *testing.T) {
	product, err := NewProduct("COLA", "Cola", price(500))
	require.NoError(t, err)

	require.NoError(t, product.SetTaxRate(decimal.NewFromFloat(18)))
	assert.Equal(t, "18", product.TaxRate.String())

	assert.Error(t, product.SetTaxRate(decimal.NewFromInt(-1)))
	assert.Error(t, product.SetTaxRate(decimal.NewFromInt(101)))
}

func TestProductStatusTransitions(t *testing.T) {
	t.Run("deactivate then reactivate", func(t *testing.T) {
		product, err := NewProduct("COLA", "Cola", price(500))
		require.NoError(t, err)

		require.NoError(t, product.Deactivate())
		assert.Equal(t, ProductStatusInactive, product.Status)
		assert.False(t, product.IsSellable())

		require.NoError(t, product.Activate())
		assert.Equal(t, ProductStatusActive, product.Status)
	})

	t.Run("cannot deactivate twice", func(t *testing.T) {
		product, err := NewProduct("COLA", "Cola", price(500))
		require.NoError(t, err)

		require.NoError(t, product.Deactivate())
		assert.Error(t, product.Deactivate())
	})

	t.Run("discontinued is terminal", func(t *testing.T) {
		product, err := NewProduct("COLA", "Cola", price(500))
		require.NoError(t, err)

		require.NoError(t, product.Discontinue())
		assert.Equal(t, ProductStatusDiscontinued, product.Status)

		err = product.Activate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be reactivated")
	})
}

func TestProductUpdate(t *testing.T) {
	product, err := NewProduct("COLA", "Cola", price(500))
	require.NoError(t, err)
	initialVersion := product.GetVersion()

	require.NoError(t, product.Update("Cola Zero 33cl", "sugar free", "6181001234567"))
	assert.Equal(t, "Cola Zero 33cl", product.Name)
	assert.Equal(t, "6181001234567", product.Barcode)
	assert.Greater(t, product.GetVersion(), initialVersion)
}
