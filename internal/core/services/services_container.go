package services

import (
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/pkg/config"
)

// Collaborators are the external system adapters the services depend on.
// They are constructed in main so the service layer stays free of SDK and
// transport concerns.
type Collaborators struct {
	Recognizer  portssvc.Recognizer
	Registry    portssvc.RegistryVerifier
	Connector   portssvc.PayableConnector
	FileStore   portssvc.FileStore
	MailFetcher portssvc.MailFetcher
}

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, collab Collaborators) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	auditSvc := NewAuditService(repos.AuditRepo)
	container.Audit = auditSvc

	complianceSvc := NewComplianceService(repos.InvoiceRepo, repos.VendorRepo, collab.Registry, auditSvc)
	container.Compliance = complianceSvc

	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		repos.VendorRepo,
		repos.DepartmentRepo,
		collab.Recognizer,
		collab.FileStore,
		collab.Connector,
		complianceSvc,
		auditSvc,
		cfg.RetentionYears,
	)

	container.Vendor = NewVendorService(repos.VendorRepo)
	container.Department = NewDepartmentService(repos.DepartmentRepo)
	container.Reporting = NewReportingService(repos.ReportingRepo)
	container.Mailbox = NewMailboxService(collab.MailFetcher, container.Invoice)

	return container
}
