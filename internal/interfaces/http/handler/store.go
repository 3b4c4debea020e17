package handler

import (
	"github.com/gin-gonic/gin"

	partnerapp "github.com/nextstock/backend/internal/application/partner"
)

// StoreHandler handles store management endpoints
type StoreHandler struct {
	BaseHandler
	storeService *partnerapp.StoreService
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(storeService *partnerapp.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// Create godoc
// @Summary      Create a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateStoreRequest true "Store"
// @Success      201 {object} dto.Response{data=partnerapp.StoreResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stores [post]
func (h *StoreHandler) Create(c *gin.Context) {
	var req partnerapp.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	store, err := h.storeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, store)
}

// Get godoc
// @Summary      Get a store
// @Tags         stores
// @Produce      json
// @Param        id path string true "Store ID"
// @Success      200 {object} dto.Response{data=partnerapp.StoreResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stores/{id} [get]
func (h *StoreHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	store, err := h.storeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, store)
}

// List godoc
// @Summary      List stores
// @Tags         stores
// @Produce      json
// @Success      200 {object} dto.Response{data=[]partnerapp.StoreResponse}
// @Security     BearerAuth
// @Router       /stores [get]
func (h *StoreHandler) List(c *gin.Context) {
	stores, err := h.storeService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stores)
}

// GetDefault godoc
// @Summary      Get the default store
// @Tags         stores
// @Produce      json
// @Success      200 {object} dto.Response{data=partnerapp.StoreResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stores/default [get]
func (h *StoreHandler) GetDefault(c *gin.Context) {
	store, err := h.storeService.GetDefault(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, store)
}

// Update godoc
// @Summary      Update a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Param        id path string true "Store ID"
// @Param        request body partnerapp.UpdateStoreRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=partnerapp.StoreResponse}
// @Security     BearerAuth
// @Router       /stores/{id} [put]
func (h *StoreHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	var req partnerapp.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	store, err := h.storeService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, store)
}

// SetDefault godoc
// @Summary      Make a store the default
// @Tags         stores
// @Produce      json
// @Param        id path string true "Store ID"
// @Success      200 {object} dto.Response{data=partnerapp.StoreResponse}
// @Security     BearerAuth
// @Router       /stores/{id}/default [post]
func (h *StoreHandler) SetDefault(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	store, err := h.storeService.SetDefault(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, store)
}

// Enable godoc
// @Summary      Enable a store
// @Tags         stores
// @Produce      json
// @Param        id path string true "Store ID"
// @Success      200 {object} dto.Response{data=partnerapp.StoreResponse}
// @Security     BearerAuth
// @Router       /stores/{id}/enable [post]
func (h *StoreHandler) Enable(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	store, err := h.storeService.Enable(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, store)
}

// Disable godoc
// @Summary      Disable a store
// @Description  The default store cannot be disabled.
// @Tags         stores
// @Produce      json
// @Param        id path string true "Store ID"
// @Success      200 {object} dto.Response{data=partnerapp.StoreResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stores/{id}/disable [post]
func (h *StoreHandler) Disable(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	store, err := h.storeService.Disable(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, store)
}
