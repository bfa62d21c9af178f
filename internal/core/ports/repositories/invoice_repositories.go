package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// InvoiceReader defines read operations for invoice data.
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its bank account and line
	// items. Soft-deleted invoices are still returned; callers decide whether
	// that matters for the operation at hand.
	FindInvoiceByID(ctx context.Context, invoiceID int64) (*domain.Invoice, error)

	// ListInvoices retrieves a filtered, paginated list of non-deleted
	// invoices ordered by creation time descending, plus the total count.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error)

	// FindLatestDepartmentByVendorName returns the department of the most
	// recently created invoice for the named vendor that has one assigned,
	// or nil when no such invoice exists.
	FindLatestDepartmentByVendorName(ctx context.Context, vendorName string) (*int64, error)
}

// InvoiceWriter defines write operations for invoice data. Methods suffixed
// InTx run inside the caller's transaction so the audit append can share it.
type InvoiceWriter interface {
	// CreateInvoiceInTx inserts a new invoice and sets its generated ID.
	CreateInvoiceInTx(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error

	// UpdateInvoiceInTx persists all mutable invoice columns.
	UpdateInvoiceInTx(ctx context.Context, tx pgx.Tx, inv domain.Invoice) error

	// UpsertBankAccountInTx creates or replaces the invoice's bank account.
	UpsertBankAccountInTx(ctx context.Context, tx pgx.Tx, invoiceID int64, ba domain.BankAccount) error

	// ReplaceDetailsInTx replaces the invoice's full line item set.
	ReplaceDetailsInTx(ctx context.Context, tx pgx.Tx, invoiceID int64, details []domain.InvoiceDetail) error
}

// InvoiceRepositoryFacade combines all invoice repository interfaces.
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}

// InvoiceRepositoryWithTx extends the facade with transaction capabilities.
type InvoiceRepositoryWithTx interface {
	InvoiceRepositoryFacade
	TransactionManager
}
