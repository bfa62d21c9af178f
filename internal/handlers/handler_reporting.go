package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// reportingHandler serves the intake dashboards.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers the dashboard routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/summary", h.getSummary)
		dashboard.GET("/compliance", h.getComplianceSummary)
	}
}

// getSummary godoc
// @Summary Intake dashboard summary
// @Description Totals, per-status counts, due-date buckets and per-department volumes over non-deleted invoices.
// @Tags dashboard
// @Produce  json
// @Success 200 {object} domain.DashboardSummary
// @Security BearerAuth
// @Router /dashboard/summary [get]
func (h *reportingHandler) getSummary(c *gin.Context) {
	summary, err := h.reportingService.GetDashboardSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getComplianceSummary godoc
// @Summary Compliance dashboard
// @Description Counts of invoices by registration verification status.
// @Tags dashboard
// @Produce  json
// @Success 200 {object} domain.ComplianceSummary
// @Security BearerAuth
// @Router /dashboard/compliance [get]
func (h *reportingHandler) getComplianceSummary(c *gin.Context) {
	summary, err := h.reportingService.GetComplianceSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
