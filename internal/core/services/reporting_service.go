package services

import (
	"context"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// reportingService serves dashboard aggregates straight from the reporting
// repository.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepositoryFacade
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepositoryFacade) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

func (s *reportingService) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	return s.reportingRepo.GetDashboardSummary(ctx)
}

func (s *reportingService) GetComplianceSummary(ctx context.Context) (*domain.ComplianceSummary, error) {
	return s.reportingRepo.GetComplianceSummary(ctx)
}
