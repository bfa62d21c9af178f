package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice mirrors the invoices table. JSONB columns are kept as raw bytes at
// this layer; mapping decodes them for the domain.
type Invoice struct {
	ID             int64
	InvoiceNumber  *string
	VendorID       *int64
	DepartmentID   *int64
	AssignedUserID *int64
	ApprovedByID   *int64

	Status string

	InvoiceDate *time.Time
	DueDate     *time.Time

	TotalAmount    *decimal.Decimal
	SubtotalAmount *decimal.Decimal
	TaxAmount      *decimal.Decimal
	Tax8Amount     *decimal.Decimal
	Tax10Amount    *decimal.Decimal

	FilePath         string
	FileHashSHA256   string
	OriginalFilename string
	SourceType       string

	RegistrationNumber *string
	RegistrationStatus *string

	RawExtraction    []byte
	ComplianceResult []byte

	IsDeleted      bool
	RetentionUntil time.Time

	Description   *string
	RecipientName *string

	ApprovedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BankAccount mirrors the bank_accounts table.
type BankAccount struct {
	ID            int64
	InvoiceID     int64
	BankName      *string
	BranchName    *string
	AccountType   *string
	AccountNumber *string
	AccountHolder *string
}

// InvoiceDetail mirrors the invoice_details table.
type InvoiceDetail struct {
	ID          int64
	InvoiceID   int64
	Description *string
	Amount      *decimal.Decimal
	Tax         *decimal.Decimal
	TaxRate     *string
}
