package services

import (
	"context"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
)

// InvoiceSvcFacade is the lifecycle state machine, the entry point external
// callers use. Every mutating operation appends exactly one audit entry in
// the same transaction as the mutation it describes.
type InvoiceSvcFacade interface {
	// IngestFiles stores each document, creates the invoice record, then runs
	// the extraction pipeline. Items are processed independently: the result
	// slice has one outcome per input and a failed item never aborts the rest.
	IngestFiles(ctx context.Context, files []dto.IngestFileInput, source domain.SourceType, actorID *int64, origin *string) []dto.IngestOutcome

	GetInvoice(ctx context.Context, invoiceID int64) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error)

	// UpdateInvoice applies a manual edit and advances the invoice to
	// reviewed. Allowed while the invoice is awaiting or under review.
	UpdateInvoice(ctx context.Context, invoiceID int64, req dto.UpdateInvoiceRequest, actorID *int64, origin *string) (*domain.Invoice, error)

	// ApproveInvoice is allowed only from reviewed or compliance_checked.
	ApproveInvoice(ctx context.Context, invoiceID int64, approverID int64, origin *string) (*domain.Invoice, error)

	// RejectInvoice is allowed from any non-terminal status.
	RejectInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.Invoice, error)

	// SoftDeleteInvoice refuses with a RetentionError while the statutory
	// retention period is still running.
	SoftDeleteInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) error

	// ExecuteTransfer registers the payable with the connector; only on
	// connector success does the invoice become transferred.
	ExecuteTransfer(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.Invoice, *domain.PayableConfirmation, error)

	// VerifyFileHash recomputes the stored file's digest. A mismatch is a
	// hard integrity fault, not a soft warning.
	VerifyFileHash(ctx context.Context, invoiceID int64) (*dto.HashVerificationResponse, error)
}

// ComplianceSvcFacade exposes the compliance engine for standalone re-checks
// and direct registry verification.
type ComplianceSvcFacade interface {
	VerifyRegistrationNumber(ctx context.Context, registrationNumber string) domain.RegistryVerification
	CheckInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.ComplianceResult, error)
}

// VendorSvcFacade manages counterparties.
type VendorSvcFacade interface {
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	CreateVendor(ctx context.Context, req dto.CreateVendorRequest) (*domain.Vendor, error)
	UpdateVendor(ctx context.Context, vendorID int64, req dto.UpdateVendorRequest) (*domain.Vendor, error)
}

// DepartmentSvcFacade manages organizational units.
type DepartmentSvcFacade interface {
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest) (*domain.Department, error)
	UpdateDepartment(ctx context.Context, departmentID int64, req dto.UpdateDepartmentRequest) (*domain.Department, error)
}

// AuditSvcFacade reads the append-only ledger.
type AuditSvcFacade interface {
	ListAuditLogs(ctx context.Context, entityType *string, entityID *int64, limit, offset int) ([]domain.AuditLog, error)
}

// ReportingSvcFacade serves the dashboards.
type ReportingSvcFacade interface {
	GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
	GetComplianceSummary(ctx context.Context) (*domain.ComplianceSummary, error)
}

// MailboxSvcFacade pulls invoice documents from the configured mailbox and
// feeds them into the ingestion pipeline.
type MailboxSvcFacade interface {
	FetchAndIngest(ctx context.Context, actorID *int64, origin *string) (*dto.MailIngestResponse, error)
}
