package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusUploaded          InvoiceStatus = "uploaded"
	StatusExtracted         InvoiceStatus = "extracted"
	StatusExtractionFailed  InvoiceStatus = "extraction_failed"
	StatusComplianceChecked InvoiceStatus = "compliance_checked"
	StatusReviewed          InvoiceStatus = "reviewed"
	StatusApproved          InvoiceStatus = "approved"
	StatusRejected          InvoiceStatus = "rejected"
	StatusTransferred       InvoiceStatus = "transferred"
)

// IsTerminal reports whether no further transitions are possible from s.
// extraction_failed is terminal unless extraction is explicitly re-run.
func (s InvoiceStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusTransferred
}

// SourceType records how a document entered the system.
type SourceType string

const (
	SourceUpload SourceType = "upload"
	SourceMail   SourceType = "mail"
)

// RegistrationStatus is the tri-state outcome of a registry lookup for a
// qualified-invoice registration number.
type RegistrationStatus string

const (
	RegistrationValid     RegistrationStatus = "valid"
	RegistrationInvalid   RegistrationStatus = "invalid"
	RegistrationUnchecked RegistrationStatus = "unchecked"
)

// Invoice is the aggregate root of the intake lifecycle. Monetary fields are
// exact decimals (yen, no fraction digits). Nullable fields are pointers:
// extraction output is partial by nature.
type Invoice struct {
	ID             int64   `json:"id"`
	InvoiceNumber  *string `json:"invoiceNumber"`
	VendorID       *int64  `json:"vendorID"`
	DepartmentID   *int64  `json:"departmentID"`
	AssignedUserID *int64  `json:"assignedUserID"`
	ApprovedByID   *int64  `json:"approvedByID"`

	Status InvoiceStatus `json:"status"`

	InvoiceDate *time.Time `json:"invoiceDate"`
	DueDate     *time.Time `json:"dueDate"`

	TotalAmount    *decimal.Decimal `json:"totalAmount"`
	SubtotalAmount *decimal.Decimal `json:"subtotalAmount"`
	TaxAmount      *decimal.Decimal `json:"taxAmount"`
	Tax8Amount     *decimal.Decimal `json:"tax8Amount"`
	Tax10Amount    *decimal.Decimal `json:"tax10Amount"`

	FilePath         string     `json:"filePath"`
	FileHashSHA256   string     `json:"fileHashSHA256"`
	OriginalFilename string     `json:"originalFilename"`
	SourceType       SourceType `json:"sourceType"`

	RegistrationNumber *string             `json:"registrationNumber"`
	RegistrationStatus *RegistrationStatus `json:"registrationStatus"`

	// RawExtraction keeps the recognition output verbatim for audit/debug.
	// Nothing outside the normalizer interprets its shape.
	RawExtraction    json.RawMessage   `json:"rawExtraction,omitempty"`
	ComplianceResult *ComplianceResult `json:"complianceResult"`

	IsDeleted      bool      `json:"isDeleted"`
	RetentionUntil time.Time `json:"retentionUntil"`

	Description   *string `json:"description"`
	RecipientName *string `json:"recipientName"`

	ApprovedAt *time.Time `json:"approvedAt"`
	Timestamps

	// Joined names for projection, populated on reads.
	VendorName     *string `json:"vendorName,omitempty"`
	DepartmentName *string `json:"departmentName,omitempty"`

	BankAccount *BankAccount    `json:"bankAccount,omitempty"`
	Details     []InvoiceDetail `json:"details,omitempty"`
}

// BankAccount is the payment destination parsed from an invoice. At most one
// per invoice, destroyed with it.
type BankAccount struct {
	ID            int64   `json:"id"`
	InvoiceID     int64   `json:"invoiceID"`
	BankName      *string `json:"bankName"`
	BranchName    *string `json:"branchName"`
	AccountType   *string `json:"accountType"`
	AccountNumber *string `json:"accountNumber"`
	AccountHolder *string `json:"accountHolder"`
}

// InvoiceDetail is a single line item, destroyed with its invoice.
type InvoiceDetail struct {
	ID          int64            `json:"id"`
	InvoiceID   int64            `json:"invoiceID"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Tax         *decimal.Decimal `json:"tax"`
	TaxRate     *string          `json:"taxRate"`
}

// InvoiceFilter narrows invoice listings. Soft-deleted invoices are always
// excluded.
type InvoiceFilter struct {
	Status       *InvoiceStatus
	DepartmentID *int64
	VendorName   *string
	DateFrom     *time.Time
	DateTo       *time.Time
	AmountMin    *decimal.Decimal
	AmountMax    *decimal.Decimal
	Page         int
	PerPage      int
}
