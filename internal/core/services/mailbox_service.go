package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
)

// mailboxService pulls invoice documents from the configured mailbox and
// runs them through the regular ingestion pipeline with source=mail.
type mailboxService struct {
	fetcher    portssvc.MailFetcher
	invoiceSvc portssvc.InvoiceSvcFacade
}

// NewMailboxService creates a new MailboxService.
func NewMailboxService(fetcher portssvc.MailFetcher, invoiceSvc portssvc.InvoiceSvcFacade) portssvc.MailboxSvcFacade {
	return &mailboxService{fetcher: fetcher, invoiceSvc: invoiceSvc}
}

var _ portssvc.MailboxSvcFacade = (*mailboxService)(nil)

func (s *mailboxService) FetchAndIngest(ctx context.Context, actorID *int64, origin *string) (*dto.MailIngestResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	docs, err := s.fetcher.FetchInvoiceMail(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice mail: %w", err)
	}

	resp := &dto.MailIngestResponse{InvoiceIDs: []int64{}}
	for _, doc := range docs {
		description := fmt.Sprintf("From: %s Subject: %s", doc.Sender, doc.Subject)
		var inputs []dto.IngestFileInput
		for _, att := range doc.Attachments {
			d := description
			inputs = append(inputs, dto.IngestFileInput{
				Filename:    att.Filename,
				MimeType:    mimeTypeForFilename(att.Filename),
				Data:        att.Data,
				Description: &d,
			})
		}
		for _, outcome := range s.invoiceSvc.IngestFiles(ctx, inputs, domain.SourceMail, actorID, origin) {
			if outcome.Err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", doc.MessageID, outcome.Err))
				continue
			}
			resp.CreatedCount++
			resp.InvoiceIDs = append(resp.InvoiceIDs, outcome.Invoice.ID)
		}
	}

	logger.Info("mailbox ingestion completed",
		slog.Int("messages", len(docs)), slog.Int("created", resp.CreatedCount), slog.Int("errors", len(resp.Errors)))
	return resp, nil
}

func mimeTypeForFilename(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
