package repositories

// RepositoryProvider bundles all repositories for service wiring.
type RepositoryProvider struct {
	InvoiceRepo    InvoiceRepositoryWithTx
	VendorRepo     VendorRepositoryFacade
	DepartmentRepo DepartmentRepositoryFacade
	AuditRepo      AuditLogRepositoryFacade
	ReportingRepo  ReportingRepositoryFacade
}
