package services

import (
	"context"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// Recognizer is the document recognition collaborator. Extract may take
// seconds and may fail; a whole-document parse failure is returned as a
// sentinel map (with a parse-error marker), not an error, so the pipeline can
// record it. A returned error means the recognition call itself failed.
type Recognizer interface {
	Extract(ctx context.Context, fileBytes []byte, mimeType string) (map[string]any, error)
}

// RegistryVerifier looks up a qualified-invoice registration number against
// the statutory registry. It never fails: transport errors degrade to
// IsValid=false with the raw error context preserved.
type RegistryVerifier interface {
	Verify(ctx context.Context, registrationNumber string) domain.RegistryVerification
}

// PayableRequest is the connector-neutral payable registration request.
// Dates are YYYY-MM-DD, empty when unknown. Amount is in whole yen.
type PayableRequest struct {
	IssueDate   string
	DueDate     string
	Amount      int64
	PartnerName string
	Description string
	Items       []PayableLine
}

// PayableLine is one payable line item.
type PayableLine struct {
	Name      string
	UnitPrice int64
}

// PayableConnector registers a payable with an external accounting provider.
// Failures propagate to the caller; on an authorization failure the adapter
// refreshes credentials once and retries the same request exactly once before
// surfacing the error.
type PayableConnector interface {
	Provider() string
	CreatePayable(ctx context.Context, req PayableRequest) (*domain.PayableConfirmation, error)
}

// FileStore is a content-addressed document store. Save returns a stable
// relative reference and the content digest; Read returns the currently
// stored bytes for hash re-verification.
type FileStore interface {
	Save(ctx context.Context, data []byte, originalFilename string) (relPath string, sha256Hex string, err error)
	Read(ctx context.Context, relPath string) ([]byte, error)
}

// MailAttachment is one invoice document pulled from a mail message.
type MailAttachment struct {
	Filename string
	Data     []byte
}

// MailDocument is a mail message carrying invoice attachments.
type MailDocument struct {
	MessageID   string
	Subject     string
	Sender      string
	Attachments []MailAttachment
}

// MailFetcher discovers unprocessed invoice documents in a mailbox and marks
// them processed so they are not fetched twice.
type MailFetcher interface {
	FetchInvoiceMail(ctx context.Context) ([]MailDocument, error)
}
