package domain

import "time"

// Timestamps holds the standard server-managed timestamps for domain entities.
// The acting user for every mutation is recorded in the audit ledger instead
// of on the entity itself.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
