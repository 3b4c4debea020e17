package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/nextstock/backend/internal/application/report"
)

// ReportHandler serves the dashboard and back-office reports. Every range
// endpoint binds the same filter: store, date range and optional dimensions.
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) bindRange(c *gin.Context) (reportapp.RangeFilter, bool) {
	var filter reportapp.RangeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return filter, false
	}
	// store-bound users only ever see their own store
	if storeID, err := getOptionalStoreID(c); err == nil && storeID != nil {
		filter.StoreID = storeID
	}
	return filter, true
}

// SalesSummary godoc
// @Summary      Sales summary for a period
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Param        store_id query string false "Store filter"
// @Success      200 {object} dto.Response{data=report.SalesSummary}
// @Security     BearerAuth
// @Router       /reports/sales/summary [get]
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	summary, err := h.reportService.GetSalesSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// DailyTrend godoc
// @Summary      Daily sales trend
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]report.DailySalesTrend}
// @Security     BearerAuth
// @Router       /reports/sales/daily [get]
func (h *ReportHandler) DailyTrend(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	trend, err := h.reportService.GetDailySalesTrend(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, trend)
}

// ProductRanking godoc
// @Summary      Top products by revenue
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Param        top_n query int false "Row limit"
// @Success      200 {object} dto.Response{data=[]report.ProductRanking}
// @Security     BearerAuth
// @Router       /reports/products/ranking [get]
func (h *ReportHandler) ProductRanking(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	ranking, err := h.reportService.GetProductRanking(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ranking)
}

// CustomerRanking godoc
// @Summary      Top customers by spend
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Param        top_n query int false "Row limit"
// @Success      200 {object} dto.Response{data=[]report.CustomerRanking}
// @Security     BearerAuth
// @Router       /reports/customers/ranking [get]
func (h *ReportHandler) CustomerRanking(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	ranking, err := h.reportService.GetCustomerRanking(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ranking)
}

// PaymentBreakdown godoc
// @Summary      Revenue split by payment method
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]report.PaymentMethodBreakdown}
// @Security     BearerAuth
// @Router       /reports/payments [get]
func (h *ReportHandler) PaymentBreakdown(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	breakdown, err := h.reportService.GetPaymentMethodBreakdown(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, breakdown)
}

// InventoryValuation godoc
// @Summary      Inventory valuation at cost and at price
// @Tags         reports
// @Produce      json
// @Param        store_id query string false "Store filter (omit for all stores)"
// @Success      200 {object} dto.Response{data=report.InventoryValuation}
// @Security     BearerAuth
// @Router       /reports/inventory/valuation [get]
func (h *ReportHandler) InventoryValuation(c *gin.Context) {
	storeID, err := getOptionalStoreID(c)
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	valuation, err := h.reportService.GetInventoryValuation(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, valuation)
}

// LowStock godoc
// @Summary      Items below their minimum level
// @Tags         reports
// @Produce      json
// @Param        store_id query string false "Store filter (omit for all stores)"
// @Success      200 {object} dto.Response{data=[]report.LowStockRow}
// @Security     BearerAuth
// @Router       /reports/inventory/low-stock [get]
func (h *ReportHandler) LowStock(c *gin.Context) {
	storeID, err := getOptionalStoreID(c)
	if err != nil {
		h.BadRequest(c, "invalid store ID")
		return
	}

	rows, err := h.reportService.GetLowStockReport(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// SessionDiscrepancies godoc
// @Summary      Register sessions that closed over tolerance
// @Tags         reports
// @Produce      json
// @Param        start_date query string true "Start date (YYYY-MM-DD)"
// @Param        end_date query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]report.SessionDiscrepancyRow}
// @Security     BearerAuth
// @Router       /reports/sessions/discrepancies [get]
func (h *ReportHandler) SessionDiscrepancies(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	rows, err := h.reportService.GetSessionDiscrepancies(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}
