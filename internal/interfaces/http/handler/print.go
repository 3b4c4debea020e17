package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	printingapp "github.com/nextstock/backend/internal/application/printing"
)

// PrintHandler handles receipt and proforma PDF rendering endpoints
type PrintHandler struct {
	BaseHandler
	printService *printingapp.PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService *printingapp.PrintService) *PrintHandler {
	return &PrintHandler{printService: printService}
}

// Receipt godoc
// @Summary      Render a sale receipt as PDF
// @Description  Renders, archives and returns the PDF. Re-rendering the same
// @Description  sale produces a new job.
// @Tags         printing
// @Produce      application/pdf
// @Param        id path string true "Sale ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/receipts/{id} [get]
func (h *PrintHandler) Receipt(c *gin.Context) {
	h.renderPDF(c, h.printService.RenderReceipt, "receipt")
}

// Proforma godoc
// @Summary      Render a proforma document as PDF
// @Tags         printing
// @Produce      application/pdf
// @Param        id path string true "Proforma ID"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/proformas/{id} [get]
func (h *PrintHandler) Proforma(c *gin.Context) {
	h.renderPDF(c, h.printService.RenderProforma, "proforma")
}

// GetJob godoc
// @Summary      Get a render job
// @Tags         printing
// @Produce      json
// @Param        id path string true "Job ID"
// @Success      200 {object} dto.Response{data=printingapp.PrintJobResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /print/jobs/{id} [get]
func (h *PrintHandler) GetJob(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	jobID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "invalid job ID")
		return
	}

	job, err := h.printService.GetJob(c.Request.Context(), storeID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// ListJobs godoc
// @Summary      List render jobs for the current store
// @Tags         printing
// @Produce      json
// @Param        status query string false "Status filter"
// @Param        doc_type query string false "Document type filter"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]printingapp.PrintJobResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /print/jobs [get]
func (h *PrintHandler) ListJobs(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var filter printingapp.ListJobsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.printService.ListJobs(c.Request.Context(), storeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *PrintHandler) renderPDF(c *gin.Context, render func(ctx context.Context, storeID, documentID, requestedBy uuid.UUID) (*printingapp.RenderResult, error), kind string) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	documentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, fmt.Sprintf("invalid %s ID", kind))
		return
	}

	requestedBy, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "authentication required")
		return
	}

	result, err := render(c.Request.Context(), storeID, documentID, requestedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.Job.DocumentNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}
