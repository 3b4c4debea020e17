package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/nextstock/backend/internal/application/identity"
	registerapp "github.com/nextstock/backend/internal/application/register"
	"github.com/nextstock/backend/internal/domain/identity"
	"github.com/nextstock/backend/internal/domain/register"
	"github.com/nextstock/backend/internal/domain/settings"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/interfaces/http/dto"
)

// MockCashSessionRepository implements register.CashSessionRepository for testing
type MockCashSessionRepository struct {
	mock.Mock
}

func (m *MockCashSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*register.CashSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]register.CashSession, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]register.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) Save(ctx context.Context, session *register.CashSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCashSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCashSessionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCashSessionRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]register.CashSession, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]register.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) CountForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCashSessionRepository) FindOpenByStore(ctx context.Context, storeID uuid.UUID) (*register.CashSession, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]register.CashSession, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]register.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindClosedByPeriod(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]register.CashSession, error) {
	args := m.Called(ctx, storeID, from, to)
	return args.Get(0).([]register.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindWithDiscrepancy(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]register.CashSession, error) {
	args := m.Called(ctx, storeID, from, to)
	return args.Get(0).([]register.CashSession), args.Error(1)
}

// MockStoreSettingsRepository implements settings.StoreSettingsRepository for testing
type MockStoreSettingsRepository struct {
	mock.Mock
}

func (m *MockStoreSettingsRepository) FindByStore(ctx context.Context, storeID uuid.UUID) (*settings.StoreSettings, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.StoreSettings), args.Error(1)
}

func (m *MockStoreSettingsRepository) Save(ctx context.Context, s *settings.StoreSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStoreSettingsRepository) Delete(ctx context.Context, storeID uuid.UUID) error {
	args := m.Called(ctx, storeID)
	return args.Error(0)
}

// MockApprovalVerifier implements registerapp.ApprovalVerifier for testing
type MockApprovalVerifier struct {
	mock.Mock
}

func (m *MockApprovalVerifier) VerifyApproval(ctx context.Context, approverID uuid.UUID, pin string) error {
	args := m.Called(ctx, approverID, pin)
	return args.Error(0)
}

func setupSessionHandler(sessionRepo *MockCashSessionRepository, settingsRepo *MockStoreSettingsRepository, verifier *MockApprovalVerifier) *SessionHandler {
	sessionService := registerapp.NewSessionService(sessionRepo, settingsRepo)
	if verifier != nil {
		sessionService.SetApprovalVerifier(verifier)
	}
	userService := identityapp.NewUserService(new(MockUserRepository), new(MockRoleRepository), zap.NewNop())
	return NewSessionHandler(sessionService, userService)
}

func openTestSession(t *testing.T) *register.CashSession {
	t.Helper()
	session, err := register.NewCashSession(testStoreID, uuid.New(), decimal.NewFromInt(10000))
	require.NoError(t, err)
	return session
}

func TestSessionHandler_Open_Success(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	handler := setupSessionHandler(sessionRepo, new(MockStoreSettingsRepository), nil)

	sessionRepo.On("FindOpenByStore", mock.Anything, testStoreID).Return(nil, shared.ErrNotFound)
	sessionRepo.On("Save", mock.Anything, mock.AnythingOfType("*register.CashSession")).Return(nil)

	router := setupTestRouter()
	router.POST("/sessions", handler.Open)

	body := `{"opening_float":"10000"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data registerapp.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "OPEN", resp.Data.Status)
	assert.Equal(t, testStoreID, resp.Data.StoreID)
	// the opener comes from the JWT context, not the body
	assert.Equal(t, testUserID, resp.Data.OpenedBy)
}

func TestSessionHandler_Open_AlreadyOpen(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	handler := setupSessionHandler(sessionRepo, new(MockStoreSettingsRepository), nil)

	existing := openTestSession(t)
	sessionRepo.On("FindOpenByStore", mock.Anything, testStoreID).Return(existing, nil)

	router := setupTestRouter()
	router.POST("/sessions", handler.Open)

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(`{"opening_float":"5000"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SESSION_ALREADY_OPEN", resp.Error.Code)
	sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionHandler_Close_WithinTolerance(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	settingsRepo := new(MockStoreSettingsRepository)
	handler := setupSessionHandler(sessionRepo, settingsRepo, nil)

	session := openTestSession(t)
	sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	sessionRepo.On("Save", mock.Anything, session).Return(nil)
	// no settings row: the default tolerance applies
	settingsRepo.On("FindByStore", mock.Anything, testStoreID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.POST("/sessions/:id/close", handler.Close)

	// float 10000, counted 10200: within the default tolerance of 500
	body := `{"counted_cash":"10200"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID.String()+"/close", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data registerapp.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CLOSED", resp.Data.Status)
	assert.True(t, resp.Data.Discrepancy.Equal(decimal.NewFromInt(200)))
	assert.Nil(t, resp.Data.ApprovedBy)
}

func TestSessionHandler_Close_DiscrepancyNeedsApproval(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	settingsRepo := new(MockStoreSettingsRepository)
	handler := setupSessionHandler(sessionRepo, settingsRepo, new(MockApprovalVerifier))

	session := openTestSession(t)
	sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	settingsRepo.On("FindByStore", mock.Anything, testStoreID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.POST("/sessions/:id/close", handler.Close)

	// 2000 short with no approver attached
	body := `{"counted_cash":"8000"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID.String()+"/close", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "APPROVAL_REQUIRED", resp.Error.Code)
	sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionHandler_Close_ApprovedDiscrepancy(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	settingsRepo := new(MockStoreSettingsRepository)
	verifier := new(MockApprovalVerifier)
	handler := setupSessionHandler(sessionRepo, settingsRepo, verifier)

	session := openTestSession(t)
	approverID := uuid.New()

	sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	sessionRepo.On("Save", mock.Anything, session).Return(nil)
	settingsRepo.On("FindByStore", mock.Anything, testStoreID).Return(nil, shared.ErrNotFound)
	verifier.On("VerifyApproval", mock.Anything, approverID, "1234").Return(nil)

	router := setupTestRouter()
	router.POST("/sessions/:id/close", handler.Close)

	body, _ := json.Marshal(map[string]any{
		"counted_cash": "8000",
		"approver_id":  approverID,
		"pin":          "1234",
		"note":         "drawer shortage, manager notified",
	})
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID.String()+"/close", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data registerapp.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CLOSED", resp.Data.Status)
	require.NotNil(t, resp.Data.ApprovedBy)
	assert.Equal(t, approverID, *resp.Data.ApprovedBy)
	verifier.AssertExpectations(t)
}

func TestSessionHandler_Close_WrongPin(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	settingsRepo := new(MockStoreSettingsRepository)
	verifier := new(MockApprovalVerifier)
	handler := setupSessionHandler(sessionRepo, settingsRepo, verifier)

	session := openTestSession(t)
	approverID := uuid.New()

	sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	settingsRepo.On("FindByStore", mock.Anything, testStoreID).Return(nil, shared.ErrNotFound)
	verifier.On("VerifyApproval", mock.Anything, approverID, "9999").Return(shared.ErrInvalidPin)

	router := setupTestRouter()
	router.POST("/sessions/:id/close", handler.Close)

	body, _ := json.Marshal(map[string]any{
		"counted_cash": "8000",
		"approver_id":  approverID,
		"pin":          "9999",
	})
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID.String()+"/close", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PIN", resp.Error.Code)
	sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionHandler_PayOut_RecordsMovement(t *testing.T) {
	sessionRepo := new(MockCashSessionRepository)
	handler := setupSessionHandler(sessionRepo, new(MockStoreSettingsRepository), nil)

	session := openTestSession(t)
	sessionRepo.On("FindByID", mock.Anything, session.ID).Return(session, nil)
	sessionRepo.On("Save", mock.Anything, session).Return(nil)

	router := setupTestRouter()
	router.POST("/sessions/:id/pay-out", handler.PayOut)

	body := `{"amount":"2500","reason":"supplier delivery paid from drawer"}`
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.ID.String()+"/pay-out", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data registerapp.SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.PayOutTotal.Equal(decimal.NewFromInt(2500)))
	require.Len(t, resp.Data.Movements, 1)
	assert.Equal(t, testUserID, resp.Data.Movements[0].PerformedBy)
}

func TestSessionHandler_Approvers(t *testing.T) {
	userRepo := new(MockUserRepository)
	userService := identityapp.NewUserService(userRepo, new(MockRoleRepository), zap.NewNop())
	sessionService := registerapp.NewSessionService(new(MockCashSessionRepository), new(MockStoreSettingsRepository))
	handler := NewSessionHandler(sessionService, userService)

	manager := createTestUser(t, "manager1", "Secret123!")
	userRepo.On("FindApprovers", mock.Anything, &testStoreID).Return([]identity.User{*manager}, nil)

	router := setupTestRouter()
	router.GET("/sessions/approvers", handler.Approvers)

	req := httptest.NewRequest(http.MethodGet, "/sessions/approvers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "manager1")
}
