package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// complianceHandler handles qualified-invoice verification requests.
type complianceHandler struct {
	complianceService portssvc.ComplianceSvcFacade
}

func newComplianceHandler(cs portssvc.ComplianceSvcFacade) *complianceHandler {
	return &complianceHandler{complianceService: cs}
}

// registerComplianceRoutes registers routes related to compliance checks.
func registerComplianceRoutes(rg *gin.RouterGroup, complianceService portssvc.ComplianceSvcFacade) {
	h := newComplianceHandler(complianceService)

	compliance := rg.Group("/compliance")
	{
		compliance.GET("/verify/:number", h.verifyRegistrationNumber)
		compliance.POST("/invoices/:id/check", h.checkInvoice)
	}
}

// verifyRegistrationNumber godoc
// @Summary Verify a registration number against the public registry
// @Description Looks the number up directly, bypassing the vendor cache. Registry outages degrade to an invalid result rather than an error.
// @Tags compliance
// @Produce  json
// @Param   number path string true "Qualified-invoice registration number"
// @Success 200 {object} domain.RegistryVerification
// @Security BearerAuth
// @Router /compliance/verify/{number} [get]
func (h *complianceHandler) verifyRegistrationNumber(c *gin.Context) {
	result := h.complianceService.VerifyRegistrationNumber(c.Request.Context(), c.Param("number"))
	c.JSON(http.StatusOK, result)
}

// checkInvoice godoc
// @Summary Re-run the compliance checks for an invoice
// @Description Re-evaluates the six qualified-invoice checks against the invoice's current fields and persists the result.
// @Tags compliance
// @Produce  json
// @Param   id path int true "Invoice ID"
// @Success 200 {object} domain.ComplianceResult
// @Failure 409 {object} map[string]string "Check not allowed from current status"
// @Security BearerAuth
// @Router /compliance/invoices/{id}/check [post]
func (h *complianceHandler) checkInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}
	actorID, origin := actorFrom(c)

	result, cerr := h.complianceService.CheckInvoice(c.Request.Context(), id, actorID, origin)
	if cerr != nil {
		respondServiceError(c, cerr)
		return
	}
	c.JSON(http.StatusOK, result)
}
