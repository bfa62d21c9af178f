package domain

import "time"

// AuditAction tags the kind of mutation an audit entry describes.
type AuditAction string

const (
	AuditCreate     AuditAction = "create"
	AuditUpdate     AuditAction = "update"
	AuditApprove    AuditAction = "approve"
	AuditReject     AuditAction = "reject"
	AuditSoftDelete AuditAction = "soft_delete"
	AuditTransfer   AuditAction = "transfer"
)

// ChangeMap records field name to stringified value. A nil value means the
// field was null, which is distinct from the field being absent from the map.
type ChangeMap map[string]*string

// AuditLog is an append-only ledger entry. The entity reference is a tag plus
// a numeric id rather than a typed relationship so the ledger can point at any
// entity kind without owning it. Entries are never updated or deleted.
type AuditLog struct {
	ID         int64       `json:"id"`
	UserID     *int64      `json:"userID"` // nil for system-initiated actions
	EntityType string      `json:"entityType"`
	EntityID   int64       `json:"entityID"`
	Action     AuditAction `json:"action"`
	OldValues  ChangeMap   `json:"oldValues,omitempty"`
	NewValues  ChangeMap   `json:"newValues,omitempty"`
	IPAddress  *string     `json:"ipAddress"`
	CreatedAt  time.Time   `json:"createdAt"`
}
