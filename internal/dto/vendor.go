package dto

// CreateVendorRequest registers a counterparty ahead of its first invoice.
type CreateVendorRequest struct {
	Name                string  `json:"name" binding:"required"`
	RegistrationNumber  *string `json:"invoice_registration_number"`
	DefaultDepartmentID *int64  `json:"default_department_id"`
}

// UpdateVendorRequest is a partial vendor edit: nil fields are untouched.
type UpdateVendorRequest struct {
	Name                *string `json:"name"`
	RegistrationNumber  *string `json:"invoice_registration_number"`
	DefaultDepartmentID *int64  `json:"default_department_id"`
}
