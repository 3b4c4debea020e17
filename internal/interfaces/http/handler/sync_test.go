package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	inventoryapp "github.com/nextstock/backend/internal/application/inventory"
	salesapp "github.com/nextstock/backend/internal/application/sales"
	syncapp "github.com/nextstock/backend/internal/application/sync"
	syncdomain "github.com/nextstock/backend/internal/domain/sync"
	"github.com/nextstock/backend/internal/interfaces/http/dto"
)

// MockChangeLogRepository implements sync.ChangeLogRepository for testing
type MockChangeLogRepository struct {
	mock.Mock
}

func (m *MockChangeLogRepository) Append(ctx context.Context, entry *syncdomain.ChangeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockChangeLogRepository) FindAfter(ctx context.Context, cursor int64, storeID uuid.UUID, limit int) ([]syncdomain.ChangeEntry, error) {
	args := m.Called(ctx, cursor, storeID, limit)
	return args.Get(0).([]syncdomain.ChangeEntry), args.Error(1)
}

func (m *MockChangeLogRepository) LatestSeq(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChangeLogRepository) PruneBefore(ctx context.Context, keepSeq int64) (int64, error) {
	args := m.Called(ctx, keepSeq)
	return args.Get(0).(int64), args.Error(1)
}

// MockIdempotencyStore implements sync.IdempotencyStore for testing
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Remember(ctx context.Context, clientOpID string, result []byte) (bool, error) {
	args := m.Called(ctx, clientOpID, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Lookup(ctx context.Context, clientOpID string) ([]byte, error) {
	args := m.Called(ctx, clientOpID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSaleCheckout implements syncapp.SaleCheckout for testing
type MockSaleCheckout struct {
	mock.Mock
}

func (m *MockSaleCheckout) Checkout(ctx context.Context, storeID uuid.UUID, req salesapp.CheckoutRequest) (*salesapp.SaleResponse, error) {
	args := m.Called(ctx, storeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.SaleResponse), args.Error(1)
}

// MockStockAccess implements syncapp.StockAccess for testing
type MockStockAccess struct {
	mock.Mock
}

func (m *MockStockAccess) GetStock(ctx context.Context, storeID, productID uuid.UUID) (*inventoryapp.StockItemResponse, error) {
	args := m.Called(ctx, storeID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.StockItemResponse), args.Error(1)
}

func (m *MockStockAccess) Adjust(ctx context.Context, storeID uuid.UUID, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockItemResponse, error) {
	args := m.Called(ctx, storeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.StockItemResponse), args.Error(1)
}

func setupSyncHandler(changeLog *MockChangeLogRepository, idempotency *MockIdempotencyStore, sales *MockSaleCheckout, stock *MockStockAccess) *SyncHandler {
	service := syncapp.NewSyncService(changeLog, idempotency, sales, stock, zap.NewNop())
	return NewSyncHandler(service)
}

func TestSyncHandler_Pull_Success(t *testing.T) {
	changeLog := new(MockChangeLogRepository)
	handler := setupSyncHandler(changeLog, new(MockIdempotencyStore), new(MockSaleCheckout), new(MockStockAccess))

	entries := []syncdomain.ChangeEntry{
		{
			Seq:        41,
			EntityType: syncdomain.EntityTypeProduct,
			EntityID:   uuid.New(),
			Op:         syncdomain.ChangeOpUpsert,
			Payload:    []byte(`{"name":"Soap"}`),
			CreatedAt:  time.Now(),
		},
		{
			Seq:        42,
			EntityType: syncdomain.EntityTypeStockItem,
			EntityID:   uuid.New(),
			Op:         syncdomain.ChangeOpUpsert,
			StoreID:    &testStoreID,
			CreatedAt:  time.Now(),
		},
	}
	changeLog.On("FindAfter", mock.Anything, int64(40), testStoreID, 100).Return(entries, nil)

	router := setupTestRouter()
	router.GET("/sync/pull", handler.Pull)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull?cursor=40", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    syncapp.PullResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Entries, 2)
	assert.Equal(t, int64(42), resp.Data.NextCursor)
	assert.False(t, resp.Data.HasMore)
}

func TestSyncHandler_Pull_NoStore(t *testing.T) {
	handler := setupSyncHandler(new(MockChangeLogRepository), new(MockIdempotencyStore), new(MockSaleCheckout), new(MockStockAccess))

	// no auth middleware, no X-Store-ID header
	router := gin.New()
	router.GET("/sync/pull", handler.Pull)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_Pull_StoreFromHeader(t *testing.T) {
	changeLog := new(MockChangeLogRepository)
	handler := setupSyncHandler(changeLog, new(MockIdempotencyStore), new(MockSaleCheckout), new(MockStockAccess))

	headerStore := uuid.New()
	changeLog.On("FindAfter", mock.Anything, int64(0), headerStore, 100).Return([]syncdomain.ChangeEntry{}, nil)

	// user not bound to a store; the header picks one
	router := gin.New()
	router.GET("/sync/pull", handler.Pull)

	req := httptest.NewRequest(http.MethodGet, "/sync/pull", nil)
	req.Header.Set("X-Store-ID", headerStore.String())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	changeLog.AssertExpectations(t)
}

func TestSyncHandler_Push_DuplicateReturnsOriginalResult(t *testing.T) {
	idempotency := new(MockIdempotencyStore)
	handler := setupSyncHandler(new(MockChangeLogRepository), idempotency, new(MockSaleCheckout), new(MockStockAccess))

	entityID := uuid.New()
	stored, _ := json.Marshal(syncdomain.OpResult{
		ClientOpID: "op-123",
		Outcome:    syncdomain.OpOutcomeApplied,
		EntityID:   &entityID,
	})
	idempotency.On("Lookup", mock.Anything, "op-123").Return(stored, nil)

	router := setupTestRouter()
	router.POST("/sync/push", handler.Push)

	payload, _ := json.Marshal(syncapp.OfflineAdjustmentPayload{
		ProductID:   uuid.New(),
		NewQuantity: decimal.NewFromInt(5),
		Reason:      "recount",
		PerformedBy: testUserID,
	})
	body, _ := json.Marshal(syncapp.PushRequest{
		Operations: []syncapp.PushOperation{
			{
				ClientOpID: "op-123",
				Type:       "stock_adjustment",
				Payload:    payload,
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data syncapp.PushResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, syncdomain.OpOutcomeDuplicate, resp.Data.Results[0].Outcome)
	require.NotNil(t, resp.Data.Results[0].EntityID)
	assert.Equal(t, entityID, *resp.Data.Results[0].EntityID)
}

func TestSyncHandler_Push_EmptyBatchRejected(t *testing.T) {
	handler := setupSyncHandler(new(MockChangeLogRepository), new(MockIdempotencyStore), new(MockSaleCheckout), new(MockStockAccess))

	router := setupTestRouter()
	router.POST("/sync/push", handler.Push)

	req := httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewBufferString(`{"operations":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_Push_UnknownOpTypeRejected(t *testing.T) {
	handler := setupSyncHandler(new(MockChangeLogRepository), new(MockIdempotencyStore), new(MockSaleCheckout), new(MockStockAccess))

	router := setupTestRouter()
	router.POST("/sync/push", handler.Push)

	body := `{"operations":[{"client_op_id":"op-9","type":"refund","payload":{}}]}`
	req := httptest.NewRequest(http.MethodPost, "/sync/push", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// binding rejects unknown operation types before the service runs
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}
