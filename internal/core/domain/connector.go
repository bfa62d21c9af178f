package domain

// PayableConfirmation is the confirmation record returned by a
// payment/accounting connector after a payable was registered.
type PayableConfirmation struct {
	Provider string         `json:"provider"`
	Raw      map[string]any `json:"raw"`
}
