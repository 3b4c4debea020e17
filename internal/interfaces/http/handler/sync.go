package handler

import (
	"github.com/gin-gonic/gin"

	syncapp "github.com/nextstock/backend/internal/application/sync"
)

// SyncHandler handles offline synchronization endpoints
type SyncHandler struct {
	BaseHandler
	syncService *syncapp.SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncapp.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Pull godoc
// @Summary      Pull changes since a cursor
// @Description  Returns change-log entries after the given sequence number so
// @Description  a register that was offline can catch up incrementally.
// @Tags         sync
// @Produce      json
// @Param        X-Store-ID header string false "Store ID (required for all-store users)"
// @Param        cursor query int false "Last sequence number seen"
// @Param        limit query int false "Max entries (default 100, cap 500)"
// @Success      200 {object} dto.Response{data=syncapp.PullResponse}
// @Security     BearerAuth
// @Router       /sync/pull [get]
func (h *SyncHandler) Pull(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var filter syncapp.PullFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.syncService.Pull(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Push godoc
// @Summary      Push queued offline operations
// @Description  Applies operations recorded while offline. Each operation is
// @Description  idempotent by client_op_id; replays return the original
// @Description  result instead of applying twice.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body syncapp.PushRequest true "Operation batch"
// @Success      200 {object} dto.Response{data=syncapp.PushResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sync/push [post]
func (h *SyncHandler) Push(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req syncapp.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.syncService.Push(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
