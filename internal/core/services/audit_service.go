package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// ChangeSet accumulates a field level diff for one audit entry. Set records a
// change only when the stringified values actually differ, so an edit that
// touches nothing produces an empty set and no entry.
type ChangeSet struct {
	old domain.ChangeMap
	new domain.ChangeMap
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{old: domain.ChangeMap{}, new: domain.ChangeMap{}}
}

// Set records field going from oldVal to newVal, skipping no-ops.
func (c *ChangeSet) Set(field string, oldVal, newVal any) {
	o := Stringify(oldVal)
	n := Stringify(newVal)
	if equalPtr(o, n) {
		return
	}
	c.old[field] = o
	c.new[field] = n
}

// Note records a new-side value with no old counterpart, for create-style
// entries where there is no previous state to diff against.
func (c *ChangeSet) Note(field string, val any) {
	c.new[field] = Stringify(val)
}

func (c *ChangeSet) Empty() bool {
	return len(c.old) == 0 && len(c.new) == 0
}

func (c *ChangeSet) OldValues() domain.ChangeMap { return c.old }
func (c *ChangeSet) NewValues() domain.ChangeMap { return c.new }

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Stringify renders a value for the ledger. The ledger stores strings only,
// with nil preserved as SQL null, so entries stay comparable across types.
func Stringify(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case *string:
		if t == nil {
			return nil
		}
		s = *t
	case string:
		s = t
	case *int64:
		if t == nil {
			return nil
		}
		s = fmt.Sprintf("%d", *t)
	case int64:
		s = fmt.Sprintf("%d", t)
	case int:
		s = fmt.Sprintf("%d", t)
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		s = t.String()
	case decimal.Decimal:
		s = t.String()
	case *time.Time:
		if t == nil {
			return nil
		}
		s = t.Format(time.RFC3339)
	case time.Time:
		s = t.Format(time.RFC3339)
	case domain.InvoiceStatus:
		s = string(t)
	case bool:
		s = fmt.Sprintf("%t", t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(b)
		}
	}
	return &s
}

// auditService writes and reads the append-only ledger.
type auditService struct {
	auditRepo portsrepo.AuditLogRepositoryFacade
	now       func() time.Time
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditLogRepositoryFacade) *auditService {
	return &auditService{auditRepo: auditRepo, now: time.Now}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// Record appends one ledger entry inside the caller's transaction so the
// entry commits or fails together with the mutation it describes.
func (s *auditService) Record(ctx context.Context, tx pgx.Tx, entityType string, entityID int64, action domain.AuditAction, cs *ChangeSet, actorID *int64, origin *string) error {
	entry := domain.AuditLog{
		UserID:     actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		IPAddress:  origin,
		CreatedAt:  s.now(),
	}
	if cs != nil {
		entry.OldValues = cs.old
		entry.NewValues = cs.new
	}
	return s.auditRepo.AppendInTx(ctx, tx, &entry)
}

func (s *auditService) ListAuditLogs(ctx context.Context, entityType *string, entityID *int64, limit, offset int) ([]domain.AuditLog, error) {
	return s.auditRepo.ListAuditLogs(ctx, entityType, entityID, limit, offset)
}
