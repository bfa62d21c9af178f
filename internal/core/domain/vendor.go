package domain

import "time"

// Vendor is a counterparty matched by exact name. The default department is a
// soft heuristic updated last-write-wins from manual classification; the
// cached registration fields avoid repeated registry lookups for the same
// vendor across invoices.
type Vendor struct {
	ID                    int64               `json:"id"`
	Name                  string              `json:"name"`
	RegistrationNumber    *string             `json:"registrationNumber"`
	RegistrationStatus    *RegistrationStatus `json:"registrationStatus"`
	RegistrationCheckedAt *time.Time          `json:"registrationCheckedAt"`
	DefaultDepartmentID   *int64              `json:"defaultDepartmentID"`
	Timestamps
}
