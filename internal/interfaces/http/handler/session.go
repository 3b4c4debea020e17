package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityapp "github.com/nextstock/backend/internal/application/identity"
	registerapp "github.com/nextstock/backend/internal/application/register"
)

// SessionHandler handles cash register session endpoints
type SessionHandler struct {
	BaseHandler
	sessionService *registerapp.SessionService
	userService    *identityapp.UserService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService *registerapp.SessionService, userService *identityapp.UserService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		userService:    userService,
	}
}

// Open godoc
// @Summary      Open a register session
// @Description  Counts the opening float into the drawer. A store can have at
// @Description  most one open session.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        X-Store-ID header string false "Store ID (required for all-store users)"
// @Param        request body registerapp.OpenSessionRequest true "Opening float"
// @Success      201 {object} dto.Response{data=registerapp.SessionResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/open [post]
func (h *SessionHandler) Open(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req registerapp.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}
	req.OpenedBy = userID

	session, err := h.sessionService.Open(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, session)
}

// Current godoc
// @Summary      Get the open session for the current store
// @Tags         sessions
// @Produce      json
// @Success      200 {object} dto.Response{data=registerapp.SessionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/current [get]
func (h *SessionHandler) Current(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	session, err := h.sessionService.GetCurrent(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// Get godoc
// @Summary      Get a session by ID
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} dto.Response{data=registerapp.SessionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid session ID")
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// List godoc
// @Summary      List sessions for the current store
// @Tags         sessions
// @Produce      json
// @Param        status query string false "Status filter" Enums(OPEN, CLOSED)
// @Param        opened_by query string false "Opener filter"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]registerapp.SessionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var filter registerapp.SessionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.sessionService.List(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// PayIn godoc
// @Summary      Record a cash pay-in
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body registerapp.CashMovementRequest true "Amount and reason"
// @Success      200 {object} dto.Response{data=registerapp.SessionResponse}
// @Security     BearerAuth
// @Router       /sessions/{id}/pay-in [post]
func (h *SessionHandler) PayIn(c *gin.Context) {
	h.recordMovement(c, h.sessionService.RecordPayIn)
}

// PayOut godoc
// @Summary      Record a cash pay-out
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body registerapp.CashMovementRequest true "Amount and reason"
// @Success      200 {object} dto.Response{data=registerapp.SessionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/{id}/pay-out [post]
func (h *SessionHandler) PayOut(c *gin.Context) {
	h.recordMovement(c, h.sessionService.RecordPayOut)
}

// Close godoc
// @Summary      Close a session
// @Description  Reconciles the counted drawer against the expected amount.
// @Description  A discrepancy beyond the store tolerance needs a manager's
// @Description  approval PIN.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body registerapp.CloseSessionRequest true "Counted cash"
// @Success      200 {object} dto.Response{data=registerapp.SessionResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sessions/{id}/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid session ID")
		return
	}

	var req registerapp.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}
	req.ClosedBy = userID

	session, err := h.sessionService.Close(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}

// Approvers godoc
// @Summary      List users who can approve register actions
// @Description  Shown on the close screen when a discrepancy needs sign-off.
// @Tags         sessions
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identityapp.ApproverResponse}
// @Security     BearerAuth
// @Router       /sessions/approvers [get]
func (h *SessionHandler) Approvers(c *gin.Context) {
	storeID, err := getOptionalStoreID(c)
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	approvers, err := h.userService.ListApprovers(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, approvers)
}

func (h *SessionHandler) recordMovement(c *gin.Context, apply func(ctx context.Context, sessionID uuid.UUID, req registerapp.CashMovementRequest) (*registerapp.SessionResponse, error)) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid session ID")
		return
	}

	var req registerapp.CashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}
	req.PerformedBy = userID

	session, err := apply(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, session)
}
