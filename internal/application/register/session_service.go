package register

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nextstock/backend/internal/domain/register"
	"github.com/nextstock/backend/internal/domain/settings"
	"github.com/nextstock/backend/internal/domain/shared"
)

// ApprovalVerifier checks a manager's PIN for out-of-tolerance session closes
type ApprovalVerifier interface {
	VerifyApproval(ctx context.Context, approverID uuid.UUID, pin string) error
}

// SessionService handles the cash session lifecycle
type SessionService struct {
	sessionRepo    register.CashSessionRepository
	settingsRepo   settings.StoreSettingsRepository
	approvals      ApprovalVerifier
	eventPublisher shared.EventPublisher
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessionRepo register.CashSessionRepository,
	settingsRepo settings.StoreSettingsRepository,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		settingsRepo: settingsRepo,
	}
}

// SetApprovalVerifier sets the manager PIN verifier used for closes
func (s *SessionService) SetApprovalVerifier(verifier ApprovalVerifier) {
	s.approvals = verifier
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SessionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Open opens a new session for the store. Only one session may be open per
// store at a time.
func (s *SessionService) Open(ctx context.Context, storeID uuid.UUID, req OpenSessionRequest) (*SessionResponse, error) {
	_, err := s.sessionRepo.FindOpenByStore(ctx, storeID)
	if err == nil {
		return nil, shared.ErrSessionAlreadyOpen
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	session, err := register.NewCashSession(storeID, req.OpenedBy, req.OpeningFloat)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, session)

	response := ToSessionResponse(session)
	return &response, nil
}

// GetCurrent returns the open session for the store
func (s *SessionService) GetCurrent(ctx context.Context, storeID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindOpenByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// GetByID retrieves a session by ID
func (s *SessionService) GetByID(ctx context.Context, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// List retrieves sessions of a store with filtering and pagination
func (s *SessionService) List(ctx context.Context, storeID uuid.UUID, filter SessionListFilter) (*shared.Paginated[SessionResponse], error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "opened_at"
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.OpenedBy != nil {
		domainFilter.Filters["opened_by"] = *filter.OpenedBy
	}

	items, err := s.sessionRepo.FindAllForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.sessionRepo.CountForStore(ctx, storeID, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToSessionResponses(items), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// RecordPayIn adds cash to the drawer of an open session
func (s *SessionService) RecordPayIn(ctx context.Context, sessionID uuid.UUID, req CashMovementRequest) (*SessionResponse, error) {
	return s.recordMovement(ctx, sessionID, req, func(session *register.CashSession) error {
		_, err := session.RecordPayIn(req.Amount, req.Reason, req.PerformedBy)
		return err
	})
}

// RecordPayOut removes cash from the drawer of an open session
func (s *SessionService) RecordPayOut(ctx context.Context, sessionID uuid.UUID, req CashMovementRequest) (*SessionResponse, error) {
	return s.recordMovement(ctx, sessionID, req, func(session *register.CashSession) error {
		_, err := session.RecordPayOut(req.Amount, req.Reason, req.PerformedBy)
		return err
	})
}

// Close reconciles the drawer and closes the session. When the counted cash
// deviates from the expected amount beyond the store tolerance, a manager
// must approve with their PIN.
func (s *SessionService) Close(ctx context.Context, sessionID uuid.UUID, req CloseSessionRequest) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tolerance, err := s.discrepancyTolerance(ctx, session.StoreID)
	if err != nil {
		return nil, err
	}

	var approvedBy *uuid.UUID
	if req.ApproverID != nil {
		if s.approvals == nil {
			return nil, shared.NewDomainError("APPROVAL_UNAVAILABLE", "Manager approval is not configured")
		}
		if err := s.approvals.VerifyApproval(ctx, *req.ApproverID, req.Pin); err != nil {
			return nil, err
		}
		approvedBy = req.ApproverID
	}

	if err := session.Close(req.CountedCash, req.ClosedBy, tolerance, approvedBy, req.Note); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, session)

	response := ToSessionResponse(session)
	return &response, nil
}

// ListWithDiscrepancy returns closed sessions of the period whose drawers did
// not reconcile.
func (s *SessionService) ListWithDiscrepancy(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]SessionResponse, error) {
	items, err := s.sessionRepo.FindWithDiscrepancy(ctx, storeID, from, to)
	if err != nil {
		return nil, err
	}
	return ToSessionResponses(items), nil
}

// ApplySale accrues a completed sale onto its session totals. Called from the
// sale completion event.
func (s *SessionService) ApplySale(ctx context.Context, sessionID uuid.UUID, amount decimal.Decimal, cash bool) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := session.RecordSale(amount, cash); err != nil {
		return err
	}
	return s.sessionRepo.Save(ctx, session)
}

// ApplyVoid reverses a voided sale on its session totals
func (s *SessionService) ApplyVoid(ctx context.Context, sessionID uuid.UUID, amount decimal.Decimal, cash bool) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := session.RecordVoid(amount, cash); err != nil {
		return err
	}
	return s.sessionRepo.Save(ctx, session)
}

func (s *SessionService) recordMovement(ctx context.Context, sessionID uuid.UUID, req CashMovementRequest, apply func(*register.CashSession) error) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := apply(session); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, session)

	response := ToSessionResponse(session)
	return &response, nil
}

func (s *SessionService) discrepancyTolerance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	stored, err := s.settingsRepo.FindByStore(ctx, storeID)
	if err == nil {
		return stored.DiscrepancyTolerance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, err
	}
	return settings.DefaultDiscrepancyTolerance, nil
}

func (s *SessionService) publishEvents(ctx context.Context, session *register.CashSession) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range session.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	session.ClearDomainEvents()
}
