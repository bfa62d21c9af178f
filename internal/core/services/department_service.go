package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
)

// departmentService manages organizational units.
type departmentService struct {
	departmentRepo portsrepo.DepartmentRepositoryFacade
	now            func() time.Time
}

// NewDepartmentService creates a new DepartmentService.
func NewDepartmentService(departmentRepo portsrepo.DepartmentRepositoryFacade) portssvc.DepartmentSvcFacade {
	return &departmentService{departmentRepo: departmentRepo, now: time.Now}
}

var _ portssvc.DepartmentSvcFacade = (*departmentService)(nil)

func (s *departmentService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.departmentRepo.ListDepartments(ctx)
}

func (s *departmentService) CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest) (*domain.Department, error) {
	name := strings.TrimSpace(req.Name)
	code := strings.TrimSpace(req.Code)
	if name == "" || code == "" {
		return nil, fmt.Errorf("%w: department name and code are required", apperrors.ErrValidation)
	}
	dept := &domain.Department{
		Name:      name,
		Code:      code,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.departmentRepo.CreateDepartment(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *departmentService) UpdateDepartment(ctx context.Context, departmentID int64, req dto.UpdateDepartmentRequest) (*domain.Department, error) {
	dept, err := s.departmentRepo.FindDepartmentByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: department name cannot be blank", apperrors.ErrValidation)
		}
		dept.Name = name
	}
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: department code cannot be blank", apperrors.ErrValidation)
		}
		dept.Code = code
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if err := s.departmentRepo.UpdateDepartment(ctx, *dept); err != nil {
		return nil, err
	}
	return dept, nil
}
