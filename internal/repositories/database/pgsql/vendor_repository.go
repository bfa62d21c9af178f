package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/models"
)

type PgxVendorRepository struct {
	BaseRepository
}

// newPgxVendorRepository creates a new repository for vendor data.
func newPgxVendorRepository(pool *pgxpool.Pool) portsrepo.VendorRepositoryFacade {
	return &PgxVendorRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VendorRepositoryFacade = (*PgxVendorRepository)(nil)

func toDomainVendor(m models.Vendor) domain.Vendor {
	d := domain.Vendor{
		ID:                    m.ID,
		Name:                  m.Name,
		RegistrationNumber:    m.RegistrationNumber,
		RegistrationCheckedAt: m.RegistrationCheckedAt,
		DefaultDepartmentID:   m.DefaultDepartmentID,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
	if m.RegistrationStatus != nil {
		s := domain.RegistrationStatus(*m.RegistrationStatus)
		d.RegistrationStatus = &s
	}
	return d
}

const vendorColumns = `id, name, invoice_registration_number, registration_status, registration_checked_at, default_department_id, created_at, updated_at`

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	var m models.Vendor
	err := row.Scan(&m.ID, &m.Name, &m.RegistrationNumber, &m.RegistrationStatus,
		&m.RegistrationCheckedAt, &m.DefaultDepartmentID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan vendor: %w", err)
	}
	d := toDomainVendor(m)
	return &d, nil
}

func (r *PgxVendorRepository) FindVendorByID(ctx context.Context, vendorID int64) (*domain.Vendor, error) {
	return scanVendor(r.Pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, vendorID))
}

func (r *PgxVendorRepository) FindVendorByName(ctx context.Context, name string) (*domain.Vendor, error) {
	return scanVendor(r.Pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE name = $1`, name))
}

func (r *PgxVendorRepository) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, *v)
	}
	return vendors, rows.Err()
}

func (r *PgxVendorRepository) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	return r.createVendor(ctx, r.Pool, vendor)
}

func (r *PgxVendorRepository) CreateVendorInTx(ctx context.Context, tx pgx.Tx, vendor *domain.Vendor) error {
	return r.createVendor(ctx, tx, vendor)
}

// queryRower is satisfied by both pgxpool.Pool and pgx.Tx.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PgxVendorRepository) createVendor(ctx context.Context, q queryRower, vendor *domain.Vendor) error {
	var status *string
	if vendor.RegistrationStatus != nil {
		s := string(*vendor.RegistrationStatus)
		status = &s
	}
	err := q.QueryRow(ctx, `
		INSERT INTO vendors (name, invoice_registration_number, registration_status, registration_checked_at, default_department_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		vendor.Name, vendor.RegistrationNumber, status, vendor.RegistrationCheckedAt,
		vendor.DefaultDepartmentID, vendor.CreatedAt, vendor.UpdatedAt,
	).Scan(&vendor.ID)
	if err != nil {
		return fmt.Errorf("failed to insert vendor %q: %w", vendor.Name, err)
	}
	return nil
}

func (r *PgxVendorRepository) UpdateVendor(ctx context.Context, vendor domain.Vendor) error {
	var status *string
	if vendor.RegistrationStatus != nil {
		s := string(*vendor.RegistrationStatus)
		status = &s
	}
	tag, err := r.Pool.Exec(ctx, `
		UPDATE vendors SET
			name = $1, invoice_registration_number = $2, registration_status = $3,
			registration_checked_at = $4, default_department_id = $5, updated_at = $6
		WHERE id = $7`,
		vendor.Name, vendor.RegistrationNumber, status,
		vendor.RegistrationCheckedAt, vendor.DefaultDepartmentID, vendor.UpdatedAt,
		vendor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor %d: %w", vendor.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetDefaultDepartmentInTx overwrites the learned default department.
// Last write wins; the value is a soft heuristic.
func (r *PgxVendorRepository) SetDefaultDepartmentInTx(ctx context.Context, tx pgx.Tx, vendorID int64, departmentID int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE vendors SET default_department_id = $1, updated_at = NOW() WHERE id = $2`,
		departmentID, vendorID)
	if err != nil {
		return fmt.Errorf("failed to set default department for vendor %d: %w", vendorID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateRegistrationInTx caches a registry lookup outcome on the vendor.
func (r *PgxVendorRepository) UpdateRegistrationInTx(ctx context.Context, tx pgx.Tx, vendorID int64, number string, status domain.RegistrationStatus, checkedAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE vendors SET
			invoice_registration_number = $1, registration_status = $2,
			registration_checked_at = $3, updated_at = $3
		WHERE id = $4`,
		number, string(status), checkedAt, vendorID)
	if err != nil {
		return fmt.Errorf("failed to cache registration status for vendor %d: %w", vendorID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
