package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
)

// auditHandler serves the append-only ledger.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers routes related to the audit ledger.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)
	rg.GET("/audit-logs", h.listAuditLogs)
}

// listAuditLogs godoc
// @Summary List audit ledger entries
// @Description Returns ledger entries newest first, optionally filtered by entity reference.
// @Tags audit
// @Produce  json
// @Param   entity_type query string false "Entity type filter"
// @Param   entity_id query int false "Entity ID filter (requires entity_type)"
// @Param   limit query int false "Page size"
// @Param   offset query int false "Offset"
// @Success 200 {array} dto.AuditLogResponse
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *auditHandler) listAuditLogs(c *gin.Context) {
	var req dto.ListAuditLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.auditService.ListAuditLogs(c.Request.Context(), req.EntityType, req.EntityID, req.Limit, req.Offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.NewAuditLogResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}
