package models

import "time"

// AuditLog mirrors the audit_logs table. The value maps are stored as JSONB
// and kept as raw bytes at this layer.
type AuditLog struct {
	ID         int64
	UserID     *int64
	EntityType string
	EntityID   int64
	Action     string
	OldValues  []byte
	NewValues  []byte
	IPAddress  *string
	CreatedAt  time.Time
}
