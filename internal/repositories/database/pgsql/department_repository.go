package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/models"
)

type PgxDepartmentRepository struct {
	BaseRepository
}

// newPgxDepartmentRepository creates a new repository for department data.
func newPgxDepartmentRepository(pool *pgxpool.Pool) portsrepo.DepartmentRepositoryFacade {
	return &PgxDepartmentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DepartmentRepositoryFacade = (*PgxDepartmentRepository)(nil)

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var m models.Department
	if err := row.Scan(&m.ID, &m.Name, &m.Code, &m.IsActive, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan department: %w", err)
	}
	return &domain.Department{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r *PgxDepartmentRepository) FindDepartmentByID(ctx context.Context, departmentID int64) (*domain.Department, error) {
	return scanDepartment(r.Pool.QueryRow(ctx,
		`SELECT id, name, code, is_active, created_at FROM departments WHERE id = $1`, departmentID))
}

func (r *PgxDepartmentRepository) FindDepartmentByCode(ctx context.Context, code string) (*domain.Department, error) {
	return scanDepartment(r.Pool.QueryRow(ctx,
		`SELECT id, name, code, is_active, created_at FROM departments WHERE code = $1`, code))
}

func (r *PgxDepartmentRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, code, is_active, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *d)
	}
	return departments, rows.Err()
}

func (r *PgxDepartmentRepository) CreateDepartment(ctx context.Context, dept *domain.Department) error {
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO departments (name, code, is_active, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		dept.Name, dept.Code, dept.IsActive, dept.CreatedAt,
	).Scan(&dept.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on code
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert department %q: %w", dept.Code, err)
	}
	return nil
}

func (r *PgxDepartmentRepository) UpdateDepartment(ctx context.Context, dept domain.Department) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE departments SET name = $1, code = $2, is_active = $3 WHERE id = $4`,
		dept.Name, dept.Code, dept.IsActive, dept.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to update department %d: %w", dept.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
