package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// VendorReader defines read operations for vendor data.
type VendorReader interface {
	FindVendorByID(ctx context.Context, vendorID int64) (*domain.Vendor, error)

	// FindVendorByName matches by exact name equality, the business key used
	// by the classifier. Returns apperrors.ErrNotFound when absent.
	FindVendorByName(ctx context.Context, name string) (*domain.Vendor, error)

	ListVendors(ctx context.Context) ([]domain.Vendor, error)
}

// VendorWriter defines write operations for vendor data.
type VendorWriter interface {
	CreateVendor(ctx context.Context, vendor *domain.Vendor) error

	// CreateVendorInTx inserts within the extraction pipeline's transaction.
	CreateVendorInTx(ctx context.Context, tx pgx.Tx, vendor *domain.Vendor) error

	UpdateVendor(ctx context.Context, vendor domain.Vendor) error

	// SetDefaultDepartmentInTx overwrites the vendor's learned default
	// department. Last write wins; concurrent corrections may race and the
	// value is a soft heuristic, so no locking is applied.
	SetDefaultDepartmentInTx(ctx context.Context, tx pgx.Tx, vendorID int64, departmentID int64) error

	// UpdateRegistrationInTx caches a registry lookup outcome on the vendor.
	UpdateRegistrationInTx(ctx context.Context, tx pgx.Tx, vendorID int64, number string, status domain.RegistrationStatus, checkedAt time.Time) error
}

// VendorRepositoryFacade combines vendor repository interfaces.
type VendorRepositoryFacade interface {
	VendorReader
	VendorWriter
}
