package dto

// MailIngestResponse reports a mailbox ingestion run. Processing is partial
// success: failed documents are listed without aborting the rest.
type MailIngestResponse struct {
	CreatedCount int      `json:"created_count"`
	InvoiceIDs   []int64  `json:"invoice_ids"`
	Errors       []string `json:"errors,omitempty"`
}
