// Package normalize turns the raw, untyped key/value structure returned by
// the recognition collaborator into typed nullable fields. It never fails:
// absent, null, or wrongly typed input yields nil fields, not errors.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// keys the recognizer is prompted to emit for a parse failure sentinel
const (
	keyParseError = "_parse_error"
	keyRawText    = "_raw_text"
)

// currency glyphs and separators stripped before decimal parsing
var currencyReplacer = strings.NewReplacer(",", "", "¥", "", "円", "", "￥", "")

// ParseDate accepts strict YYYY-MM-DD only. Anything else, including empty or
// garbage input, yields nil.
func ParseDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

// ParseAmount parses a monetary value to an exact decimal. String input is
// cleaned of thousands separators and currency glyphs first. Unparsable input
// yields nil. Parsing the string form of an already-parsed decimal returns
// the same decimal.
func ParseAmount(v any) *decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		d := decimal.NewFromFloat(n)
		return &d
	case int:
		d := decimal.NewFromInt(int64(n))
		return &d
	case int64:
		d := decimal.NewFromInt(n)
		return &d
	case string:
		cleaned := strings.TrimSpace(currencyReplacer.Replace(n))
		if cleaned == "" {
			return nil
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return nil
		}
		return &d
	default:
		return nil
	}
}

// String returns a trimmed non-empty string value or nil.
func String(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Normalize converts one raw recognition result into the closed typed record
// the rest of the pipeline consumes. A whole-document parse failure is
// represented as a sentinel value with ParseFailed set; downstream consumers
// treat it as "nothing usable".
func Normalize(raw map[string]any) domain.ExtractedInvoice {
	if raw == nil {
		return domain.ExtractedInvoice{ParseFailed: true}
	}
	if failed, _ := raw[keyParseError].(bool); failed {
		text, _ := raw[keyRawText].(string)
		return domain.ExtractedInvoice{ParseFailed: true, RawText: text}
	}

	ext := domain.ExtractedInvoice{
		VendorName:         String(raw["vendor_name"]),
		InvoiceNumber:      String(raw["invoice_number"]),
		RegistrationNumber: String(raw["invoice_registration_number"]),
		RecipientName:      String(raw["recipient_name"]),
		Description:        String(raw["description"]),
		InvoiceDate:        ParseDate(raw["invoice_date"]),
		DueDate:            ParseDate(raw["due_date"]),
		TotalAmount:        ParseAmount(raw["total_amount"]),
		SubtotalAmount:     ParseAmount(raw["subtotal_amount"]),
		TaxAmount:          ParseAmount(raw["tax_amount"]),
		Tax8Amount:         ParseAmount(raw["tax_8_amount"]),
		Tax10Amount:        ParseAmount(raw["tax_10_amount"]),
	}

	if bank, ok := raw["bank_account"].(map[string]any); ok {
		ba := domain.ExtractedBankAccount{
			BankName:      String(bank["bank_name"]),
			BranchName:    String(bank["branch_name"]),
			AccountType:   String(bank["account_type"]),
			AccountNumber: String(bank["account_number"]),
			AccountHolder: String(bank["account_holder"]),
		}
		if ba.BankName != nil || ba.BranchName != nil || ba.AccountType != nil ||
			ba.AccountNumber != nil || ba.AccountHolder != nil {
			ext.BankAccount = &ba
		}
	}

	if items, ok := raw["items"].([]any); ok {
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				// a malformed item never invalidates the others
				continue
			}
			ext.Items = append(ext.Items, domain.ExtractedItem{
				Description: String(m["description"]),
				Amount:      ParseAmount(m["amount"]),
				Tax:         ParseAmount(m["tax"]),
				TaxRate:     String(m["tax_rate"]),
			})
		}
	}

	return ext
}
