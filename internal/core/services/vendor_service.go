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

// vendorService manages counterparty records.
type vendorService struct {
	vendorRepo portsrepo.VendorRepositoryFacade
	now        func() time.Time
}

// NewVendorService creates a new VendorService.
func NewVendorService(vendorRepo portsrepo.VendorRepositoryFacade) portssvc.VendorSvcFacade {
	return &vendorService{vendorRepo: vendorRepo, now: time.Now}
}

var _ portssvc.VendorSvcFacade = (*vendorService)(nil)

func (s *vendorService) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	return s.vendorRepo.ListVendors(ctx)
}

func (s *vendorService) CreateVendor(ctx context.Context, req dto.CreateVendorRequest) (*domain.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: vendor name is required", apperrors.ErrValidation)
	}
	now := s.now()
	vendor := &domain.Vendor{
		Name:                name,
		RegistrationNumber:  req.RegistrationNumber,
		DefaultDepartmentID: req.DefaultDepartmentID,
	}
	vendor.CreatedAt = now
	vendor.UpdatedAt = now
	if err := s.vendorRepo.CreateVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, vendorID int64, req dto.UpdateVendorRequest) (*domain.Vendor, error) {
	vendor, err := s.vendorRepo.FindVendorByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: vendor name cannot be blank", apperrors.ErrValidation)
		}
		vendor.Name = name
	}
	if req.RegistrationNumber != nil {
		vendor.RegistrationNumber = req.RegistrationNumber
		// Changing the number invalidates any cached registry outcome.
		unchecked := domain.RegistrationUnchecked
		vendor.RegistrationStatus = &unchecked
		vendor.RegistrationCheckedAt = nil
	}
	if req.DefaultDepartmentID != nil {
		vendor.DefaultDepartmentID = req.DefaultDepartmentID
	}
	vendor.UpdatedAt = s.now()
	if err := s.vendorRepo.UpdateVendor(ctx, *vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}
