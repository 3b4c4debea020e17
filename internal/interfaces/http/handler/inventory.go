package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	inventoryapp "github.com/nextstock/backend/internal/application/inventory"
)

// InventoryHandler handles per-store stock endpoints. Every operation is
// scoped to the store resolved from the caller's claims or X-Store-ID.
type InventoryHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(stockService *inventoryapp.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

// List godoc
// @Summary      List stock for the current store
// @Tags         inventory
// @Produce      json
// @Param        X-Store-ID header string false "Store ID (required for all-store users)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockItemResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.stockService.ListByStore(c.Request.Context(), storeID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetStock godoc
// @Summary      Get stock for one product
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID"
// @Success      200 {object} dto.Response{data=inventoryapp.StockItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/{product_id} [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := parseUUIDParam(c, "product_id")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	item, err := h.stockService.GetStock(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// LowStock godoc
// @Summary      List items at or below their minimum level
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockItemResponse}
// @Security     BearerAuth
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := h.stockService.ListBelowMinimum(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Receive godoc
// @Summary      Receive stock
// @Description  Increases on-hand quantity for a delivery or transfer in.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReceiveStockRequest true "Receipt"
// @Success      200 {object} dto.Response{data=inventoryapp.StockItemResponse}
// @Security     BearerAuth
// @Router       /inventory/receive [post]
func (h *InventoryHandler) Receive(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req inventoryapp.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.PerformedBy = &userID
	}

	item, err := h.stockService.Receive(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Adjust godoc
// @Summary      Adjust stock to a counted quantity
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AdjustStockRequest true "Adjustment"
// @Success      200 {object} dto.Response{data=inventoryapp.StockItemResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.PerformedBy = &userID
	}

	item, err := h.stockService.Adjust(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// SetThresholds godoc
// @Summary      Set low-stock thresholds for a product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        product_id path string true "Product ID"
// @Param        request body inventoryapp.SetThresholdsRequest true "Thresholds"
// @Success      200 {object} dto.Response{data=inventoryapp.StockItemResponse}
// @Security     BearerAuth
// @Router       /inventory/{product_id}/thresholds [put]
func (h *InventoryHandler) SetThresholds(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := parseUUIDParam(c, "product_id")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}

	var req inventoryapp.SetThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	item, err := h.stockService.SetThresholds(c.Request.Context(), storeID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Movements godoc
// @Summary      List stock movements
// @Tags         inventory
// @Produce      json
// @Param        product_id query string false "Product filter"
// @Param        type query string false "Movement type filter"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockMovementResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /inventory/movements [get]
func (h *InventoryHandler) Movements(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.stockService.ListMovements(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
