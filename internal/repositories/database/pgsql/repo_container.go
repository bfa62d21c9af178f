package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InvoiceRepo:    newPgxInvoiceRepository(dbPool),
		VendorRepo:     newPgxVendorRepository(dbPool),
		DepartmentRepo: newPgxDepartmentRepository(dbPool),
		AuditRepo:      newPgxAuditLogRepository(dbPool),
		ReportingRepo:  newPgxReportingRepository(dbPool),
	}
}
