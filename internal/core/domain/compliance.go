package domain

import "time"

// RegistryVerification is the outcome of a qualified-invoice registry lookup.
// A transport failure degrades to IsValid=false with the raw error kept in
// Raw; the lookup itself never raises.
type RegistryVerification struct {
	RegistrationNumber string         `json:"registration_number"`
	IsValid            bool           `json:"is_valid"`
	CompanyName        *string        `json:"company_name,omitempty"`
	Address            *string        `json:"address,omitempty"`
	RegistrationDate   *string        `json:"registration_date,omitempty"`
	UpdateDate         *string        `json:"update_date,omitempty"`
	Raw                map[string]any `json:"raw_response,omitempty"`
	CheckedAt          time.Time      `json:"checked_at"`
}

// ComplianceResult holds the outcome of the six qualified-invoice checks.
// MissingItems preserves check order and is stable for a fixed input;
// Passed holds iff MissingItems is empty.
//
// RegistrationValid is tri-state: nil means the registry was never consulted,
// which is distinguishable from an explicit invalid result.
type ComplianceResult struct {
	HasRegistrationNumber bool     `json:"has_registration_number"`
	HasInvoiceDate        bool     `json:"has_invoice_date"`
	HasDescription        bool     `json:"has_description"`
	HasTaxBreakdown       bool     `json:"has_tax_breakdown"`
	HasTaxAmount          bool     `json:"has_tax_amount"`
	HasRecipientName      bool     `json:"has_recipient_name"`
	RegistrationValid     *bool    `json:"registration_valid"`
	MissingItems          []string `json:"missing_items"`
	Passed                bool     `json:"passed"`
}

// RegistrationStatusOf maps the tri-state registry outcome onto the status
// stored on the invoice and the vendor cache.
func (r ComplianceResult) RegistrationStatusOf() RegistrationStatus {
	switch {
	case r.RegistrationValid == nil:
		return RegistrationUnchecked
	case *r.RegistrationValid:
		return RegistrationValid
	default:
		return RegistrationInvalid
	}
}
