package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// AuditLogRepositoryFacade defines operations on the append-only ledger.
// There are no update or delete methods: entries are immutable once written.
type AuditLogRepositoryFacade interface {
	// AppendInTx writes one ledger entry inside the caller's transaction so
	// the entry and the mutation it describes commit or fail together.
	AppendInTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLog) error

	// ListAuditLogs returns entries newest first, optionally filtered by
	// entity reference.
	ListAuditLogs(ctx context.Context, entityType *string, entityID *int64, limit, offset int) ([]domain.AuditLog, error)
}
