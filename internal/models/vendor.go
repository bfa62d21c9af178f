package models

import "time"

// Vendor mirrors the vendors table.
type Vendor struct {
	ID                    int64
	Name                  string
	RegistrationNumber    *string
	RegistrationStatus    *string
	RegistrationCheckedAt *time.Time
	DefaultDepartmentID   *int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
