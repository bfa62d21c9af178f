package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/models"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/utils/mapping"
)

type PgxAuditLogRepository struct {
	BaseRepository
}

// newPgxAuditLogRepository creates a new repository for the audit ledger.
func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditLogRepositoryFacade = (*PgxAuditLogRepository)(nil)

func (r *PgxAuditLogRepository) AppendInTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLog) error {
	m, err := mapping.ToModelAuditLog(*entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO audit_logs (user_id, entity_type, entity_id, action, old_values, new_values, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		m.UserID, m.EntityType, m.EntityID, m.Action, m.OldValues, m.NewValues, m.IPAddress, m.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to append audit entry for %s %d: %w", entry.EntityType, entry.EntityID, err)
	}
	return nil
}

func (r *PgxAuditLogRepository) ListAuditLogs(ctx context.Context, entityType *string, entityID *int64, limit, offset int) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, entity_type, entity_id, action, old_values, new_values, ip_address, created_at
		FROM audit_logs`
	args := []any{}
	if entityType != nil {
		args = append(args, *entityType)
		query += fmt.Sprintf(" WHERE entity_type = $%d", len(args))
		if entityID != nil {
			args = append(args, *entityID)
			query += fmt.Sprintf(" AND entity_id = $%d", len(args))
		}
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditLog
	for rows.Next() {
		var m models.AuditLog
		if err := rows.Scan(&m.ID, &m.UserID, &m.EntityType, &m.EntityID, &m.Action,
			&m.OldValues, &m.NewValues, &m.IPAddress, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		d, err := mapping.ToDomainAuditLog(m)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audit entry %d: %w", m.ID, err)
		}
		entries = append(entries, d)
	}
	return entries, rows.Err()
}
