package mapping

import (
	"encoding/json"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/models"
)

// ToModelAuditLog serializes the change maps for JSONB storage. Empty maps
// are stored as NULL rather than {}.
func ToModelAuditLog(d domain.AuditLog) (models.AuditLog, error) {
	m := models.AuditLog{
		ID:         d.ID,
		UserID:     d.UserID,
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		Action:     string(d.Action),
		IPAddress:  d.IPAddress,
		CreatedAt:  d.CreatedAt,
	}
	if len(d.OldValues) > 0 {
		b, err := json.Marshal(d.OldValues)
		if err != nil {
			return models.AuditLog{}, err
		}
		m.OldValues = b
	}
	if len(d.NewValues) > 0 {
		b, err := json.Marshal(d.NewValues)
		if err != nil {
			return models.AuditLog{}, err
		}
		m.NewValues = b
	}
	return m, nil
}

// ToDomainAuditLog decodes a ledger row.
func ToDomainAuditLog(m models.AuditLog) (domain.AuditLog, error) {
	d := domain.AuditLog{
		ID:         m.ID,
		UserID:     m.UserID,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		Action:     domain.AuditAction(m.Action),
		IPAddress:  m.IPAddress,
		CreatedAt:  m.CreatedAt,
	}
	if len(m.OldValues) > 0 {
		if err := json.Unmarshal(m.OldValues, &d.OldValues); err != nil {
			return domain.AuditLog{}, err
		}
	}
	if len(m.NewValues) > 0 {
		if err := json.Unmarshal(m.NewValues, &d.NewValues); err != nil {
			return domain.AuditLog{}, err
		}
	}
	return d, nil
}
