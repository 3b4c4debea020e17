package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	inventoryapp "github.com/nextstock/backend/internal/application/inventory"
	registerapp "github.com/nextstock/backend/internal/application/register"
	salesapp "github.com/nextstock/backend/internal/application/sales"
	"github.com/nextstock/backend/internal/domain/catalog"
	"github.com/nextstock/backend/internal/domain/partner"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/domain/shared/valueobject"
	"github.com/nextstock/backend/internal/infrastructure/event"
	"github.com/nextstock/backend/internal/infrastructure/persistence"

	"github.com/google/uuid"
)

// checkoutEnv wires the register, inventory and sales services over a real
// database the same way cmd/server does, with the in-memory event bus
// connecting sale completion to stock deduction and session totals.
type checkoutEnv struct {
	stockService   *inventoryapp.StockService
	sessionService *registerapp.SessionService
	saleService    *salesapp.SaleService
	storeRepo      *persistence.GormStoreRepository
	productRepo    *persistence.GormProductRepository
	bus            *event.InMemoryEventBus
}

func newCheckoutEnv(t *testing.T, testDB *TestDB) *checkoutEnv {
	t.Helper()

	log := zap.NewNop()

	productRepo := persistence.NewGormProductRepository(testDB.DB)
	customerRepo := persistence.NewGormCustomerRepository(testDB.DB)
	storeRepo := persistence.NewGormStoreRepository(testDB.DB)
	stockRepo := persistence.NewGormStockItemRepository(testDB.DB)
	movementRepo := persistence.NewGormStockMovementRepository(testDB.DB)
	saleRepo := persistence.NewGormSaleRepository(testDB.DB)
	sessionRepo := persistence.NewGormCashSessionRepository(testDB.DB)
	settingsRepo := persistence.NewGormStoreSettingsRepository(testDB.DB)

	stockService := inventoryapp.NewStockService(stockRepo, movementRepo)
	sessionService := registerapp.NewSessionService(sessionRepo, settingsRepo)
	saleService := salesapp.NewSaleService(saleRepo, productRepo, customerRepo, sessionRepo, settingsRepo, stockService)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(inventoryapp.NewSaleStockHandler(stockService, log))
	bus.Subscribe(registerapp.NewSaleTotalsHandler(sessionService, log))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	saleService.SetEventPublisher(bus)
	sessionService.SetEventPublisher(bus)
	stockService.SetEventPublisher(bus)

	return &checkoutEnv{
		stockService:   stockService,
		sessionService: sessionService,
		saleService:    saleService,
		storeRepo:      storeRepo,
		productRepo:    productRepo,
		bus:            bus,
	}
}

func (env *checkoutEnv) seedStore(t *testing.T, ctx context.Context, code string) *partner.Store {
	t.Helper()

	store, err := partner.NewStore(code, code+" Store")
	require.NoError(t, err)
	require.NoError(t, env.storeRepo.Save(ctx, store))
	return store
}

func (env *checkoutEnv) seedProduct(t *testing.T, ctx context.Context, storeID uuid.UUID, sku string, price, onHand int64) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct(sku, "Product "+sku, valueobject.NewMoneyXOF(decimal.NewFromInt(price)))
	require.NoError(t, err)
	require.NoError(t, env.productRepo.Save(ctx, product))

	_, err = env.stockService.Receive(ctx, storeID, inventoryapp.ReceiveStockRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(onHand),
		Reference: "PO-" + sku,
	})
	require.NoError(t, err)
	return product
}

func TestCheckoutFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	env := newCheckoutEnv(t, testDB)
	ctx := context.Background()

	store := env.seedStore(t, ctx, "MAIN")
	product := env.seedProduct(t, ctx, store.ID, "COF-001", 2500, 10)
	cashier := uuid.New()

	session, err := env.sessionService.Open(ctx, store.ID, registerapp.OpenSessionRequest{
		OpeningFloat: decimal.NewFromInt(10000),
		OpenedBy:     cashier,
	})
	require.NoError(t, err)
	assert.Equal(t, "OPEN", session.Status)

	t.Run("cash checkout deducts stock and accrues session totals", func(t *testing.T) {
		tendered := decimal.NewFromInt(10000)
		sale, err := env.saleService.Checkout(ctx, store.ID, salesapp.CheckoutRequest{
			Items: []salesapp.CheckoutItem{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(2)},
			},
			PaymentMethod:  "CASH",
			AmountTendered: &tendered,
			CashierID:      cashier,
		})
		require.NoError(t, err)

		assert.Equal(t, "COMPLETED", sale.Status)
		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(5000)), "total: %s", sale.TotalAmount)
		assert.True(t, sale.ChangeDue.Equal(decimal.NewFromInt(5000)), "change: %s", sale.ChangeDue)
		require.NotNil(t, sale.SessionID)
		assert.Equal(t, session.ID, *sale.SessionID)
		assert.NotEmpty(t, sale.Number)

		// Stock deduction rides on the sale completed event
		stock, err := env.stockService.GetStock(ctx, store.ID, product.ID)
		require.NoError(t, err)
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(8)), "stock: %s", stock.Quantity)

		current, err := env.sessionService.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, current.SalesCount)
		assert.True(t, current.CashSalesTotal.Equal(decimal.NewFromInt(5000)))
		assert.True(t, current.ExpectedCash.Equal(decimal.NewFromInt(15000)), "expected: %s", current.ExpectedCash)
	})

	t.Run("card checkout does not touch the drawer", func(t *testing.T) {
		sale, err := env.saleService.Checkout(ctx, store.ID, salesapp.CheckoutRequest{
			Items: []salesapp.CheckoutItem{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(1)},
			},
			PaymentMethod: "CARD",
			CashierID:     cashier,
		})
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", sale.Status)

		stock, err := env.stockService.GetStock(ctx, store.ID, product.ID)
		require.NoError(t, err)
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(7)))

		current, err := env.sessionService.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, current.SalesCount)
		assert.True(t, current.OtherSalesTotal.Equal(decimal.NewFromInt(2500)))
		assert.True(t, current.ExpectedCash.Equal(decimal.NewFromInt(15000)), "card sales must not move expected cash")
	})

	t.Run("checkout rejects insufficient stock", func(t *testing.T) {
		_, err := env.saleService.Checkout(ctx, store.ID, salesapp.CheckoutRequest{
			Items: []salesapp.CheckoutItem{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(100)},
			},
			PaymentMethod: "CARD",
			CashierID:     cashier,
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("cash checkout requires an open session", func(t *testing.T) {
		other := env.seedStore(t, ctx, "ANNEX")
		otherProduct := env.seedProduct(t, ctx, other.ID, "COF-002", 1500, 5)

		tendered := decimal.NewFromInt(2000)
		_, err := env.saleService.Checkout(ctx, other.ID, salesapp.CheckoutRequest{
			Items: []salesapp.CheckoutItem{
				{ProductID: otherProduct.ID, Quantity: decimal.NewFromInt(1)},
			},
			PaymentMethod:  "CASH",
			AmountTendered: &tendered,
			CashierID:      cashier,
		})
		assert.ErrorIs(t, err, shared.ErrNoOpenSession)
	})

	t.Run("offline op replay returns the original sale", func(t *testing.T) {
		tendered := decimal.NewFromInt(2500)
		req := salesapp.CheckoutRequest{
			Items: []salesapp.CheckoutItem{
				{ProductID: product.ID, Quantity: decimal.NewFromInt(1)},
			},
			PaymentMethod:  "CASH",
			AmountTendered: &tendered,
			OfflineOpID:    "op-replay-test-1",
			CashierID:      cashier,
		}

		first, err := env.saleService.Checkout(ctx, store.ID, req)
		require.NoError(t, err)

		second, err := env.saleService.Checkout(ctx, store.ID, req)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Number, second.Number)

		// No double deduction on replay
		stock, err := env.stockService.GetStock(ctx, store.ID, product.ID)
		require.NoError(t, err)
		assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(6)), "stock: %s", stock.Quantity)
	})

	t.Run("balanced close reconciles without approval", func(t *testing.T) {
		current, err := env.sessionService.GetByID(ctx, session.ID)
		require.NoError(t, err)

		closed, err := env.sessionService.Close(ctx, session.ID, registerapp.CloseSessionRequest{
			CountedCash: current.ExpectedCash,
			ClosedBy:    cashier,
		})
		require.NoError(t, err)
		assert.Equal(t, "CLOSED", closed.Status)
		assert.True(t, closed.Discrepancy.IsZero(), "discrepancy: %s", closed.Discrepancy)
		assert.Nil(t, closed.ApprovedBy)
	})
}

// TestFirstStockReceive covers the very first receive for an untracked
// product: the stock row does not exist yet when the aggregate reaches the
// repository, so the save must insert rather than report a version conflict.
func TestFirstStockReceive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	env := newCheckoutEnv(t, testDB)
	ctx := context.Background()

	store := env.seedStore(t, ctx, "RECV")
	product, err := catalog.NewProduct("RCV-001", "Product RCV-001", valueobject.NewMoneyXOF(decimal.NewFromInt(1200)))
	require.NoError(t, err)
	require.NoError(t, env.productRepo.Save(ctx, product))

	first, err := env.stockService.Receive(ctx, store.ID, inventoryapp.ReceiveStockRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(8),
		Reference: "PO-RCV-001",
	})
	require.NoError(t, err)
	assert.True(t, first.Quantity.Equal(decimal.NewFromInt(8)), "quantity: %s", first.Quantity)

	// Second receive hits the versioned-update path on the now-existing row.
	second, err := env.stockService.Receive(ctx, store.ID, inventoryapp.ReceiveStockRequest{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(4),
		Reference: "PO-RCV-002",
	})
	require.NoError(t, err)
	assert.True(t, second.Quantity.Equal(decimal.NewFromInt(12)), "quantity: %s", second.Quantity)
	assert.Greater(t, second.Version, first.Version)
}
