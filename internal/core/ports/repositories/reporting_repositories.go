package repositories

import (
	"context"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
)

// ReportingRepositoryFacade defines the read-only aggregation queries backing
// the dashboards. Soft-deleted invoices are excluded from every aggregate.
type ReportingRepositoryFacade interface {
	GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
	GetComplianceSummary(ctx context.Context) (*domain.ComplianceSummary, error)
}
