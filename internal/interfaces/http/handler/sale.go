package handler

import (
	"github.com/gin-gonic/gin"

	salesapp "github.com/nextstock/backend/internal/application/sales"
)

// SaleHandler handles checkout and sale management endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Checkout godoc
// @Summary      Complete a sale
// @Description  Prices the cart, deducts stock and records payment in one
// @Description  step. Cash sales require an open register session.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        X-Store-ID header string false "Store ID (required for all-store users)"
// @Param        request body salesapp.CheckoutRequest true "Cart"
// @Success      201 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/checkout [post]
func (h *SaleHandler) Checkout(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req salesapp.CheckoutRequest
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

	sale, err := h.saleService.Checkout(c.Request.Context(), storeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// Get godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sale ID")
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetByNumber godoc
// @Summary      Get a sale by receipt number
// @Tags         sales
// @Produce      json
// @Param        number path string true "Sale number"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/number/{number} [get]
func (h *SaleHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "sale number is required")
		return
	}

	sale, err := h.saleService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List godoc
// @Summary      List sales for the current store
// @Tags         sales
// @Produce      json
// @Param        status query string false "Status filter" Enums(PENDING, COMPLETED, VOIDED)
// @Param        customer_id query string false "Customer filter"
// @Param        cashier_id query string false "Cashier filter"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]salesapp.SaleResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var filter salesapp.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.saleService.List(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListBySession godoc
// @Summary      List sales recorded under a register session
// @Tags         sales
// @Produce      json
// @Param        session_id path string true "Session ID"
// @Success      200 {object} dto.Response{data=[]salesapp.SaleResponse}
// @Security     BearerAuth
// @Router       /sales/session/{session_id} [get]
func (h *SaleHandler) ListBySession(c *gin.Context) {
	sessionID, err := parseUUIDParam(c, "session_id")
	if err != nil {
		h.BadRequest(c, "invalid session ID")
		return
	}

	sales, err := h.saleService.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sales)
}

// Void godoc
// @Summary      Void a completed sale
// @Description  Returns stock and reverses session totals. Requires a manager
// @Description  approval PIN.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID"
// @Param        request body salesapp.VoidSaleRequest true "Reason and approval"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales/{id}/void [post]
func (h *SaleHandler) Void(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid sale ID")
		return
	}

	var req salesapp.VoidSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	sale, err := h.saleService.Void(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}
