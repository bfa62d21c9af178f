package repositories

import (
	"context"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// DepartmentRepositoryFacade defines operations for department data.
type DepartmentRepositoryFacade interface {
	FindDepartmentByID(ctx context.Context, departmentID int64) (*domain.Department, error)

	// FindDepartmentByCode looks up by the unique business code.
	FindDepartmentByCode(ctx context.Context, code string) (*domain.Department, error)

	ListDepartments(ctx context.Context) ([]domain.Department, error)

	CreateDepartment(ctx context.Context, dept *domain.Department) error

	UpdateDepartment(ctx context.Context, dept domain.Department) error
}
