package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedInvoice is the typed, nullable view of one recognition run. It is
// produced exclusively by the normalizer; every field may be nil because the
// upstream output is partial and untrusted.
//
// ParseFailed marks a whole-document failure (the recognizer returned
// something that was not JSON at all). Consumers must treat such a value as
// "nothing usable" rather than fail.
type ExtractedInvoice struct {
	VendorName         *string
	InvoiceNumber      *string
	RegistrationNumber *string
	RecipientName      *string
	Description        *string

	InvoiceDate *time.Time
	DueDate     *time.Time

	TotalAmount    *decimal.Decimal
	SubtotalAmount *decimal.Decimal
	TaxAmount      *decimal.Decimal
	Tax8Amount     *decimal.Decimal
	Tax10Amount    *decimal.Decimal

	BankAccount *ExtractedBankAccount
	Items       []ExtractedItem

	ParseFailed bool
	RawText     string
}

// ExtractedBankAccount mirrors BankAccount for normalizer output.
type ExtractedBankAccount struct {
	BankName      *string
	BranchName    *string
	AccountType   *string
	AccountNumber *string
	AccountHolder *string
}

// ExtractedItem is one normalized line item. Items are normalized
// independently; a malformed item never invalidates its siblings.
type ExtractedItem struct {
	Description *string
	Amount      *decimal.Decimal
	Tax         *decimal.Decimal
	TaxRate     *string
}
