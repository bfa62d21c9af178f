package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
)

// classifier resolves an extracted vendor name to a vendor record and a
// suggested department. Vendors are matched by exact name and created on
// first sight; the department suggestion is a heuristic, not a rule.
type classifier struct {
	vendorRepo  portsrepo.VendorRepositoryFacade
	invoiceRepo portsrepo.InvoiceReader
	now         func() time.Time
}

func newClassifier(vendorRepo portsrepo.VendorRepositoryFacade, invoiceRepo portsrepo.InvoiceReader) *classifier {
	return &classifier{vendorRepo: vendorRepo, invoiceRepo: invoiceRepo, now: time.Now}
}

// Classify resolves vendorName inside the caller's transaction. A vendor seen
// for the first time is created carrying the extracted registration number so
// later registry checks have something to verify. Resolution order for the
// department: the vendor's learned default, then the department of the
// vendor's most recent classified invoice, then nil.
func (c *classifier) Classify(ctx context.Context, tx pgx.Tx, vendorName string, registrationNumber *string) (vendor *domain.Vendor, departmentID *int64, err error) {
	name := strings.TrimSpace(vendorName)
	if name == "" {
		return nil, nil, nil
	}

	vendor, err = c.vendorRepo.FindVendorByName(ctx, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		now := c.now()
		vendor = &domain.Vendor{Name: name, RegistrationNumber: registrationNumber}
		vendor.CreatedAt = now
		vendor.UpdatedAt = now
		if err := c.vendorRepo.CreateVendorInTx(ctx, tx, vendor); err != nil {
			return nil, nil, err
		}
	} else if err != nil {
		return nil, nil, err
	}

	if vendor.DefaultDepartmentID != nil {
		return vendor, vendor.DefaultDepartmentID, nil
	}

	departmentID, err = c.invoiceRepo.FindLatestDepartmentByVendorName(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return vendor, departmentID, nil
}

// LearnDepartment records a manual classification back onto the vendor as its
// new default. Last write wins.
func (c *classifier) LearnDepartment(ctx context.Context, tx pgx.Tx, vendorID, departmentID int64) error {
	return c.vendorRepo.SetDefaultDepartmentInTx(ctx, tx, vendorID, departmentID)
}
