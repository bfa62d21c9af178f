package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// mailboxHandler triggers mailbox ingestion runs.
type mailboxHandler struct {
	mailboxService portssvc.MailboxSvcFacade
}

func newMailboxHandler(ms portssvc.MailboxSvcFacade) *mailboxHandler {
	return &mailboxHandler{mailboxService: ms}
}

// registerMailboxRoutes registers the mailbox ingestion route.
func registerMailboxRoutes(rg *gin.RouterGroup, mailboxService portssvc.MailboxSvcFacade) {
	h := newMailboxHandler(mailboxService)
	rg.POST("/mailbox/fetch", h.fetchAndIngest)
}

// fetchAndIngest godoc
// @Summary Pull invoice mail and ingest attachments
// @Description Fetches unprocessed invoice mail, runs each attachment through the ingestion pipeline with source=mail, and marks the messages processed. Per-document failures are reported without aborting the run.
// @Tags mailbox
// @Produce  json
// @Success 200 {object} dto.MailIngestResponse
// @Failure 502 {object} map[string]string "Mailbox fetch failed"
// @Security BearerAuth
// @Router /mailbox/fetch [post]
func (h *mailboxHandler) fetchAndIngest(c *gin.Context) {
	actorID, origin := actorFrom(c)

	resp, err := h.mailboxService.FetchAndIngest(c.Request.Context(), actorID, origin)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
