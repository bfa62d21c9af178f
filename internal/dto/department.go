package dto

// CreateDepartmentRequest creates an organizational unit. Code is the unique
// business key.
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// UpdateDepartmentRequest is a partial department edit.
type UpdateDepartmentRequest struct {
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	IsActive *bool   `json:"is_active"`
}
