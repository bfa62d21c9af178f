package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for dashboard aggregates.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepositoryFacade {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepositoryFacade = (*PgxReportingRepository)(nil)

func (r *PgxReportingRepository) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	summary := &domain.DashboardSummary{
		ByStatus: make(map[domain.InvoiceStatus]int64),
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM invoices
		WHERE is_deleted = FALSE
		GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate invoice statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.ByStatus[domain.InvoiceStatus(status)] = count
		summary.TotalInvoices += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Due-date buckets use the payment lifecycle: anything not yet
	// transferred counts toward upcoming or overdue.
	err = r.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE due_date >= CURRENT_DATE AND due_date < CURRENT_DATE + INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE due_date < CURRENT_DATE)
		FROM invoices
		WHERE is_deleted = FALSE
		  AND status NOT IN ('transferred', 'rejected')
		  AND due_date IS NOT NULL`,
	).Scan(&summary.UpcomingDue7d, &summary.Overdue)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate due dates: %w", err)
	}

	deptRows, err := r.Pool.Query(ctx, `
		SELECT d.name, COALESCE(SUM(i.total_amount), 0), COUNT(*)
		FROM invoices i
		JOIN departments d ON d.id = i.department_id
		WHERE i.is_deleted = FALSE
		GROUP BY d.name
		ORDER BY SUM(i.total_amount) DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate department totals: %w", err)
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var t domain.DepartmentTotal
		var total decimal.Decimal
		if err := deptRows.Scan(&t.Name, &total, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan department total: %w", err)
		}
		t.TotalAmount = total
		summary.ByDepartment = append(summary.ByDepartment, t)
	}
	return summary, deptRows.Err()
}

func (r *PgxReportingRepository) GetComplianceSummary(ctx context.Context) (*domain.ComplianceSummary, error) {
	summary := &domain.ComplianceSummary{}
	err := r.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE registration_status = 'valid'),
			COUNT(*) FILTER (WHERE registration_status = 'invalid'),
			COUNT(*) FILTER (WHERE registration_status = 'unchecked' OR registration_status IS NULL)
		FROM invoices
		WHERE is_deleted = FALSE`,
	).Scan(&summary.TotalInvoices, &summary.ValidRegistration, &summary.InvalidRegistration, &summary.UncheckedRegistration)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate compliance status: %w", err)
	}
	return summary, nil
}
