package dto

import (
	"time"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// ListAuditLogsRequest binds the ledger listing query string.
type ListAuditLogsRequest struct {
	EntityType *string `form:"entity_type"`
	EntityID   *int64  `form:"entity_id"`
	Limit      int     `form:"limit,default=100" binding:"omitempty,min=1,max=500"`
	Offset     int     `form:"offset,default=0" binding:"omitempty,min=0"`
}

// AuditLogResponse is one immutable ledger entry.
type AuditLogResponse struct {
	ID         int64            `json:"id"`
	UserID     *int64           `json:"user_id"`
	EntityType string           `json:"entity_type"`
	EntityID   int64            `json:"entity_id"`
	Action     string           `json:"action"`
	OldValues  domain.ChangeMap `json:"old_values,omitempty"`
	NewValues  domain.ChangeMap `json:"new_values,omitempty"`
	IPAddress  *string          `json:"ip_address"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewAuditLogResponse projects a ledger entry for API callers.
func NewAuditLogResponse(l domain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Action:     string(l.Action),
		OldValues:  l.OldValues,
		NewValues:  l.NewValues,
		IPAddress:  l.IPAddress,
		CreatedAt:  l.CreatedAt,
	}
}
