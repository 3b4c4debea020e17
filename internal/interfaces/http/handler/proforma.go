package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	salesapp "github.com/nextstock/backend/internal/application/sales"
)

// ProformaHandler handles proforma (quotation) endpoints
type ProformaHandler struct {
	BaseHandler
	proformaService *salesapp.ProformaService
}

// NewProformaHandler creates a new ProformaHandler
func NewProformaHandler(proformaService *salesapp.ProformaService) *ProformaHandler {
	return &ProformaHandler{proformaService: proformaService}
}

// UpdateProformaItemRequest changes a draft line's quantity
type UpdateProformaItemRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// Create godoc
// @Summary      Create a draft proforma
// @Tags         proformas
// @Accept       json
// @Produce      json
// @Param        X-Store-ID header string false "Store ID (required for all-store users)"
// @Param        request body salesapp.CreateProformaRequest true "Lines"
// @Success      201 {object} dto.Response{data=salesapp.ProformaResponse}
// @Security     BearerAuth
// @Router       /proformas [post]
func (h *ProformaHandler) Create(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req salesapp.CreateProformaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	createdBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}
	req.CreatedBy = createdBy

	proforma, err := h.proformaService.Create(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, proforma)
}

// Get godoc
// @Summary      Get a proforma
// @Tags         proformas
// @Produce      json
// @Param        id path string true "Proforma ID"
// @Success      200 {object} dto.Response{data=salesapp.ProformaResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /proformas/{id} [get]
func (h *ProformaHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid proforma ID")
		return
	}

	proforma, err := h.proformaService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proforma)
}

// List godoc
// @Summary      List proformas for the current store
// @Tags         proformas
// @Produce      json
// @Param        status query string false "Status filter" Enums(DRAFT, ISSUED, CONVERTED, EXPIRED, CANCELLED)
// @Param        customer_id query string false "Customer filter"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]salesapp.ProformaResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /proformas [get]
func (h *ProformaHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var filter salesapp.ProformaListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.proformaService.List(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpdateItem godoc
// @Summary      Change a draft line's quantity
// @Tags         proformas
// @Accept       json
// @Produce      json
// @Param        id path string true "Proforma ID"
// @Param        item_id path string true "Line ID"
// @Param        request body UpdateProformaItemRequest true "Quantity"
// @Success      200 {object} dto.Response{data=salesapp.ProformaResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /proformas/{id}/items/{item_id} [put]
func (h *ProformaHandler) UpdateItem(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid proforma ID")
		return
	}
	itemID, err := parseUUIDParam(c, "item_id")
	if err != nil {
		h.BadRequest(c, "invalid item ID")
		return
	}

	var req UpdateProformaItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	proforma, err := h.proformaService.UpdateItemQuantity(c.Request.Context(), id, itemID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proforma)
}

// RemoveItem godoc
// @Summary      Remove a draft line
// @Tags         proformas
// @Produce      json
// @Param        id path string true "Proforma ID"
// @Param        item_id path string true "Line ID"
// @Success      200 {object} dto.Response{data=salesapp.ProformaResponse}
// @Security     BearerAuth
// @Router       /proformas/{id}/items/{item_id} [delete]
func (h *ProformaHandler) RemoveItem(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid proforma ID")
		return
	}
	itemID, err := parseUUIDParam(c, "item_id")
	if err != nil {
		h.BadRequest(c, "invalid item ID")
		return
	}

	proforma, err := h.proformaService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proforma)
}

// Issue godoc
// @Summary      Issue a proforma
// @Description  Reserves stock for every line and starts the validity clock.
// @Tags         proformas
// @Accept       json
// @Produce      json
// @Param        id path string true "Proforma ID"
// @Param        request body salesapp.IssueProformaRequest true "Validity override"
// @Success      200 {object} dto.Response{data=salesapp.ProformaResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /proformas/{id}/issue [post]
func (h *ProformaHandler) Issue(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid proforma ID")
		return
	}

	var req salesapp.IssueProformaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	proforma, err := h.proformaService.Issue(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proforma)
}

// Convert godoc
// @Summary      Convert an issued proforma into a sale
// @Tags         proformas
// @Accept       json
// @Produce      json
// @Param        id path string true "Proforma ID"
// @Param        request body salesapp.ConvertProformaRequest true "Payment"
// @Success      201 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /proformas/{id}/convert [post]
func (h *ProformaHandler) Convert(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid proforma ID")
		return
	}

	var req salesapp.ConvertProformaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	cashierID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}
	req.CashierID = cashierID

	sale, err := h.proformaService.Convert(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// Cancel godoc
// @Summary      Cancel a proforma
// @Description  Releases any reserved stock.
// @Tags         proformas
// @Accept       json
// @Produce      json
// @Param        id path string true "Proforma ID"
// @Param        request body salesapp.CancelProformaRequest true "Reason"
// @Success      200 {object} dto.Response{data=salesapp.ProformaResponse}
// @Security     BearerAuth
// @Router       /proformas/{id}/cancel [post]
func (h *ProformaHandler) Cancel(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid proforma ID")
		return
	}

	var req salesapp.CancelProformaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	proforma, err := h.proformaService.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proforma)
}
