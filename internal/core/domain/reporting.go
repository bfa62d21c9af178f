package domain

import "github.com/shopspring/decimal"

// DashboardSummary aggregates non-deleted invoices for the intake dashboard.
type DashboardSummary struct {
	TotalInvoices int64                   `json:"totalInvoices"`
	ByStatus      map[InvoiceStatus]int64 `json:"byStatus"`
	UpcomingDue7d int64                   `json:"upcomingDue7Days"`
	Overdue       int64                   `json:"overdue"`
	ByDepartment  []DepartmentTotal       `json:"byDepartment"`
}

// DepartmentTotal is one department's invoice volume.
type DepartmentTotal struct {
	Name        string          `json:"name"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

// ComplianceSummary counts invoices by registration verification status.
type ComplianceSummary struct {
	TotalInvoices         int64 `json:"totalInvoices"`
	ValidRegistration     int64 `json:"validRegistration"`
	InvalidRegistration   int64 `json:"invalidRegistration"`
	UncheckedRegistration int64 `json:"uncheckedRegistration"`
}
