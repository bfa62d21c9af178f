package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
)

// ConnectorAuthorizer is the OAuth surface of the payable connector. It is a
// narrow interface so handlers stay decoupled from the concrete adapter.
type ConnectorAuthorizer interface {
	AuthURL(state string) string
	Authorize(ctx context.Context, code string) (companyID int64, err error)
}

// transferHandler handles payment transfer registration and the connector's
// OAuth plumbing.
type transferHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
	authorizer     ConnectorAuthorizer
}

func newTransferHandler(is portssvc.InvoiceSvcFacade, authorizer ConnectorAuthorizer) *transferHandler {
	return &transferHandler{invoiceService: is, authorizer: authorizer}
}

// registerTransferRoutes registers routes related to payment transfers.
func registerTransferRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade, authorizer ConnectorAuthorizer) {
	h := newTransferHandler(invoiceService, authorizer)

	transfers := rg.Group("/transfers")
	{
		transfers.GET("/auth-url", h.connectorAuthURL)
		transfers.GET("/callback", h.connectorCallback)
		transfers.POST("/:id/execute", h.executeTransfer)
	}
}

// connectorAuthURL godoc
// @Summary Get the accounting connector consent URL
// @Tags transfers
// @Produce  json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /transfers/auth-url [get]
func (h *transferHandler) connectorAuthURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": h.authorizer.AuthURL("")})
}

// connectorCallback godoc
// @Summary Complete the accounting connector OAuth grant
// @Tags transfers
// @Produce  json
// @Param   code query string true "Authorization code"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string "Code missing or exchange failed"
// @Security BearerAuth
// @Router /transfers/callback [get]
func (h *transferHandler) connectorCallback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code query parameter is required"})
		return
	}
	companyID, err := h.authorizer.Authorize(c.Request.Context(), code)
	if err != nil {
		logger.Warn("Connector authorization failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Info("Connector authorized", slog.Int64("company_id", companyID))
	c.JSON(http.StatusOK, gin.H{"ok": true, "company_id": companyID})
}

// executeTransfer godoc
// @Summary Register the payable with the accounting connector
// @Description Allowed only for approved invoices. On connector success the invoice becomes transferred; on failure it stays approved.
// @Tags transfers
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Success 200 {object} dto.TransferResponse
// @Failure 409 {object} map[string]string "Invoice is not approved"
// @Failure 502 {object} map[string]string "Connector failure"
// @Security BearerAuth
// @Router /transfers/{id}/execute [post]
func (h *transferHandler) executeTransfer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}
	actorID, origin := actorFrom(c)

	inv, confirmation, err := h.invoiceService.ExecuteTransfer(c.Request.Context(), id, actorID, origin)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TransferResponse{
		Invoice:      dto.NewInvoiceResponse(*inv),
		Confirmation: *confirmation,
	})
}
