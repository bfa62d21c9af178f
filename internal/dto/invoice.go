package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// IngestFileInput is one document handed to the ingestion pipeline.
type IngestFileInput struct {
	Filename    string
	MimeType    string
	Data        []byte
	Description *string
}

// IngestOutcome is the per-document result of a batch ingestion. A batch is
// processed item by item; one document's failure never aborts the others, so
// callers receive one outcome per input.
type IngestOutcome struct {
	Invoice *domain.Invoice
	Err     error
}

// BankAccountUpdate carries edited bank account fields. Nil means unset.
type BankAccountUpdate struct {
	BankName      *string `json:"bank_name"`
	BranchName    *string `json:"branch_name"`
	AccountType   *string `json:"account_type"`
	AccountNumber *string `json:"account_number"`
	AccountHolder *string `json:"account_holder"`
}

// InvoiceDetailUpdate is one replacement line item in an edit request.
type InvoiceDetailUpdate struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Tax         *decimal.Decimal `json:"tax"`
	TaxRate     *string          `json:"tax_rate"`
}

// UpdateInvoiceRequest is a partial edit: nil fields are left untouched.
// Dates are strict YYYY-MM-DD strings.
type UpdateInvoiceRequest struct {
	InvoiceNumber      *string               `json:"invoice_number"`
	VendorID           *int64                `json:"vendor_id"`
	DepartmentID       *int64                `json:"department_id"`
	InvoiceDate        *string               `json:"invoice_date"`
	DueDate            *string               `json:"due_date"`
	TotalAmount        *decimal.Decimal      `json:"total_amount"`
	SubtotalAmount     *decimal.Decimal      `json:"subtotal_amount"`
	TaxAmount          *decimal.Decimal      `json:"tax_amount"`
	Tax8Amount         *decimal.Decimal      `json:"tax_8_amount"`
	Tax10Amount        *decimal.Decimal      `json:"tax_10_amount"`
	RegistrationNumber *string               `json:"invoice_registration_number"`
	Description        *string               `json:"description"`
	RecipientName      *string               `json:"recipient_name"`
	BankAccount        *BankAccountUpdate    `json:"bank_account"`
	Details            []InvoiceDetailUpdate `json:"details"`
	DetailsSet         bool                  `json:"-"`
}

// UnmarshalJSON distinguishes "details": [] (replace with empty set) from the
// key being absent (leave line items untouched).
func (r *UpdateInvoiceRequest) UnmarshalJSON(b []byte) error {
	type alias UpdateInvoiceRequest
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	_, a.DetailsSet = probe["details"]
	*r = UpdateInvoiceRequest(a)
	return nil
}

// ListInvoicesRequest binds the listing query string.
type ListInvoicesRequest struct {
	Page         int     `form:"page,default=1" binding:"omitempty,min=1"`
	PerPage      int     `form:"per_page,default=20" binding:"omitempty,min=1,max=100"`
	Status       *string `form:"status"`
	DepartmentID *int64  `form:"department_id"`
	VendorName   *string `form:"vendor_name"`
	DateFrom     *string `form:"date_from"`
	DateTo       *string `form:"date_to"`
	AmountMin    *int64  `form:"amount_min"`
	AmountMax    *int64  `form:"amount_max"`
}

// ToFilter converts the bound query into a domain filter.
func (r ListInvoicesRequest) ToFilter() domain.InvoiceFilter {
	f := domain.InvoiceFilter{
		Page:         r.Page,
		PerPage:      r.PerPage,
		DepartmentID: r.DepartmentID,
		VendorName:   r.VendorName,
	}
	if r.Status != nil {
		s := domain.InvoiceStatus(*r.Status)
		f.Status = &s
	}
	if r.DateFrom != nil {
		if t, err := time.Parse("2006-01-02", *r.DateFrom); err == nil {
			f.DateFrom = &t
		}
	}
	if r.DateTo != nil {
		if t, err := time.Parse("2006-01-02", *r.DateTo); err == nil {
			f.DateTo = &t
		}
	}
	if r.AmountMin != nil {
		d := decimal.NewFromInt(*r.AmountMin)
		f.AmountMin = &d
	}
	if r.AmountMax != nil {
		d := decimal.NewFromInt(*r.AmountMax)
		f.AmountMax = &d
	}
	return f
}

// InvoiceDetailResponse is the projection of one line item.
type InvoiceDetailResponse struct {
	ID          int64            `json:"id"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Tax         *decimal.Decimal `json:"tax"`
	TaxRate     *string          `json:"tax_rate"`
}

// BankAccountResponse is the projection of an invoice's bank account.
type BankAccountResponse struct {
	ID            int64   `json:"id"`
	BankName      *string `json:"bank_name"`
	BranchName    *string `json:"branch_name"`
	AccountType   *string `json:"account_type"`
	AccountNumber *string `json:"account_number"`
	AccountHolder *string `json:"account_holder"`
}

// InvoiceResponse is the invoice's current projected state as exposed to
// callers.
type InvoiceResponse struct {
	ID                 int64                   `json:"id"`
	InvoiceNumber      *string                 `json:"invoice_number"`
	VendorID           *int64                  `json:"vendor_id"`
	VendorName         *string                 `json:"vendor_name"`
	DepartmentID       *int64                  `json:"department_id"`
	DepartmentName     *string                 `json:"department_name"`
	Status             string                  `json:"status"`
	InvoiceDate        *string                 `json:"invoice_date"`
	DueDate            *string                 `json:"due_date"`
	TotalAmount        *decimal.Decimal        `json:"total_amount"`
	SubtotalAmount     *decimal.Decimal        `json:"subtotal_amount"`
	TaxAmount          *decimal.Decimal        `json:"tax_amount"`
	Tax8Amount         *decimal.Decimal        `json:"tax_8_amount"`
	Tax10Amount        *decimal.Decimal        `json:"tax_10_amount"`
	FilePath           string                  `json:"file_path"`
	FileHashSHA256     string                  `json:"file_hash_sha256"`
	OriginalFilename   string                  `json:"original_filename"`
	SourceType         string                  `json:"source_type"`
	RegistrationNumber *string                 `json:"invoice_registration_number"`
	RegistrationStatus *string                 `json:"invoice_registration_status"`
	RawExtraction      json.RawMessage         `json:"ai_raw_result,omitempty"`
	ComplianceResult   *domain.ComplianceResult `json:"compliance_check_result"`
	RetentionUntil     string                  `json:"retention_until"`
	Description        *string                 `json:"description"`
	RecipientName      *string                 `json:"recipient_name"`
	ApprovedByID       *int64                  `json:"approved_by_id"`
	ApprovedAt         *time.Time              `json:"approved_at"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	BankAccount        *BankAccountResponse    `json:"bank_account,omitempty"`
	Details            []InvoiceDetailResponse `json:"details,omitempty"`
}

// InvoiceListResponse is one page of invoices.
type InvoiceListResponse struct {
	Items   []InvoiceResponse `json:"items"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// HashVerificationResponse reports a file integrity re-check.
type HashVerificationResponse struct {
	Valid    bool   `json:"valid"`
	Expected string `json:"expected"`
}

// TransferResponse reports a successful transfer registration.
type TransferResponse struct {
	Invoice      InvoiceResponse            `json:"invoice"`
	Confirmation domain.PayableConfirmation `json:"confirmation"`
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// NewInvoiceResponse projects a domain invoice for API callers.
func NewInvoiceResponse(inv domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		VendorID:           inv.VendorID,
		VendorName:         inv.VendorName,
		DepartmentID:       inv.DepartmentID,
		DepartmentName:     inv.DepartmentName,
		Status:             string(inv.Status),
		InvoiceDate:        dateString(inv.InvoiceDate),
		DueDate:            dateString(inv.DueDate),
		TotalAmount:        inv.TotalAmount,
		SubtotalAmount:     inv.SubtotalAmount,
		TaxAmount:          inv.TaxAmount,
		Tax8Amount:         inv.Tax8Amount,
		Tax10Amount:        inv.Tax10Amount,
		FilePath:           inv.FilePath,
		FileHashSHA256:     inv.FileHashSHA256,
		OriginalFilename:   inv.OriginalFilename,
		SourceType:         string(inv.SourceType),
		RegistrationNumber: inv.RegistrationNumber,
		RawExtraction:      inv.RawExtraction,
		ComplianceResult:   inv.ComplianceResult,
		RetentionUntil:     inv.RetentionUntil.Format("2006-01-02"),
		Description:        inv.Description,
		RecipientName:      inv.RecipientName,
		ApprovedByID:       inv.ApprovedByID,
		ApprovedAt:         inv.ApprovedAt,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
	if inv.RegistrationStatus != nil {
		s := string(*inv.RegistrationStatus)
		resp.RegistrationStatus = &s
	}
	if inv.BankAccount != nil {
		resp.BankAccount = &BankAccountResponse{
			ID:            inv.BankAccount.ID,
			BankName:      inv.BankAccount.BankName,
			BranchName:    inv.BankAccount.BranchName,
			AccountType:   inv.BankAccount.AccountType,
			AccountNumber: inv.BankAccount.AccountNumber,
			AccountHolder: inv.BankAccount.AccountHolder,
		}
	}
	for _, d := range inv.Details {
		resp.Details = append(resp.Details, InvoiceDetailResponse{
			ID:          d.ID,
			Description: d.Description,
			Amount:      d.Amount,
			Tax:         d.Tax,
			TaxRate:     d.TaxRate,
		})
	}
	return resp
}
