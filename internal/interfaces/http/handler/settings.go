package handler

import (
	"github.com/gin-gonic/gin"

	settingsapp "github.com/nextstock/backend/internal/application/settings"
)

// SettingsHandler handles store settings endpoints
type SettingsHandler struct {
	BaseHandler
	settingsService *settingsapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *settingsapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get godoc
// @Summary      Get settings for the current store
// @Description  Unset stores answer with defaults.
// @Tags         settings
// @Produce      json
// @Param        X-Store-ID header string false "Store ID (required for all-store users)"
// @Success      200 {object} dto.Response{data=settingsapp.SettingsResponse}
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}

// Update godoc
// @Summary      Update settings for the current store
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        request body settingsapp.UpdateSettingsRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=settingsapp.SettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req settingsapp.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}

// RemoveExtra godoc
// @Summary      Remove a custom settings key
// @Tags         settings
// @Produce      json
// @Param        key path string true "Extra key"
// @Success      200 {object} dto.Response{data=settingsapp.SettingsResponse}
// @Security     BearerAuth
// @Router       /settings/extras/{key} [delete]
func (h *SettingsHandler) RemoveExtra(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	key := c.Param("key")
	if key == "" {
		h.BadRequest(c, "key is required")
		return
	}

	settings, err := h.settingsService.RemoveExtra(c.Request.Context(), storeID, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, settings)
}
