package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
)

// maxUploadBytes caps a single uploaded document.
const maxUploadBytes = 20 << 20

// invoiceHandler handles HTTP requests for the invoice lifecycle.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

func newInvoiceHandler(is portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{invoiceService: is}
}

// registerInvoiceRoutes registers routes related to invoices.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(invoiceService)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("/upload", h.uploadInvoices)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.PUT("/:id", h.updateInvoice)
		invoices.POST("/:id/approve", h.approveInvoice)
		invoices.POST("/:id/reject", h.rejectInvoice)
		invoices.DELETE("/:id", h.deleteInvoice)
		invoices.GET("/:id/verify-hash", h.verifyFileHash)
	}
}

func invoiceIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return 0, false
	}
	return id, true
}

// uploadInvoices godoc
// @Summary Upload invoice documents
// @Description Stores one or more invoice files and runs the extraction pipeline on each. Items are processed independently; per-item results are returned.
// @Tags invoices
// @Accept  multipart/form-data
// @Produce  json
// @Param   files formData file true "Invoice documents (pdf/jpg/png)"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string "No files in request"
// @Security BearerAuth
// @Router /invoices/upload [post]
func (h *invoiceHandler) uploadInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart request: " + err.Error()})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one file is required"})
		return
	}

	var inputs []dto.IngestFileInput
	for _, fh := range fileHeaders {
		if fh.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": fh.Filename + " exceeds the upload size limit"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read " + fh.Filename})
			return
		}
		inputs = append(inputs, dto.IngestFileInput{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	actorID, origin := actorFrom(c)
	outcomes := h.invoiceService.IngestFiles(c.Request.Context(), inputs, domain.SourceUpload, actorID, origin)

	type itemResult struct {
		Filename string               `json:"filename"`
		Invoice  *dto.InvoiceResponse `json:"invoice,omitempty"`
		Error    string               `json:"error,omitempty"`
	}
	results := make([]itemResult, 0, len(outcomes))
	created := 0
	for i, outcome := range outcomes {
		item := itemResult{Filename: inputs[i].Filename}
		if outcome.Err != nil {
			item.Error = outcome.Err.Error()
		} else {
			resp := dto.NewInvoiceResponse(*outcome.Invoice)
			item.Invoice = &resp
			created++
		}
		results = append(results, item)
	}

	logger.Info("Upload batch processed", slog.Int("files", len(inputs)), slog.Int("created", created))
	c.JSON(http.StatusCreated, gin.H{"created_count": created, "results": results})
}

// listInvoices godoc
// @Summary List invoices
// @Description Returns a filtered, paginated page of non-deleted invoices, newest first.
// @Tags invoices
// @Produce  json
// @Param   page query int false "Page number"
// @Param   per_page query int false "Page size"
// @Param   status query string false "Lifecycle status filter"
// @Param   department_id query int false "Department filter"
// @Param   vendor_name query string false "Vendor name substring filter"
// @Success 200 {object} dto.InvoiceListResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	var req dto.ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), req.ToFilter())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.InvoiceListResponse{
		Items:   make([]dto.InvoiceResponse, 0, len(invoices)),
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
	}
	for _, inv := range invoices {
		resp.Items = append(resp.Items, dto.NewInvoiceResponse(inv))
	}
	c.JSON(http.StatusOK, resp)
}

// getInvoice godoc
// @Summary Get an invoice by ID
// @Tags invoices
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(*inv))
}

// updateInvoice godoc
// @Summary Edit an invoice
// @Description Applies a manual correction. The invoice advances to reviewed; approved and terminal invoices cannot be edited.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Param   invoice body dto.UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Edit not allowed from current status"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, origin := actorFrom(c)
	inv, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, req, actorID, origin)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(*inv))
}

// approveInvoice godoc
// @Summary Approve an invoice
// @Description Approves an invoice awaiting or past review, recording the approver and timestamp.
// @Tags invoices
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} map[string]string "Approval not allowed from current status"
// @Security BearerAuth
// @Router /invoices/{id}/approve [post]
func (h *invoiceHandler) approveInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	approverID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Approver user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	_, origin := actorFrom(c)

	inv, err := h.invoiceService.ApproveInvoice(c.Request.Context(), id, approverID, origin)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(*inv))
}

// rejectInvoice godoc
// @Summary Reject an invoice
// @Tags invoices
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} map[string]string "Invoice already in a terminal status"
// @Security BearerAuth
// @Router /invoices/{id}/reject [post]
func (h *invoiceHandler) rejectInvoice(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	actorID, origin := actorFrom(c)

	inv, err := h.invoiceService.RejectInvoice(c.Request.Context(), id, actorID, origin)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(*inv))
}

// deleteInvoice godoc
// @Summary Soft-delete an invoice
// @Description Hides the invoice from listings. Refused while the statutory retention period is running; the stored file is never removed.
// @Tags invoices
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Success 204 "Deleted"
// @Failure 409 {object} map[string]string "Retention period still active"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *invoiceHandler) deleteInvoice(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	actorID, origin := actorFrom(c)

	if err := h.invoiceService.SoftDeleteInvoice(c.Request.Context(), id, actorID, origin); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// verifyFileHash godoc
// @Summary Verify stored file integrity
// @Description Recomputes the stored file's SHA-256 digest and compares it with the one recorded at ingestion.
// @Tags invoices
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Success 200 {object} dto.HashVerificationResponse
// @Failure 500 {object} map[string]string "Hash mismatch, integrity fault"
// @Security BearerAuth
// @Router /invoices/{id}/verify-hash [get]
func (h *invoiceHandler) verifyFileHash(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}
	resp, err := h.invoiceService.VerifyFileHash(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
