package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
)

// fakeTx stands in for a real transaction handle. The services only pass it
// through to repository methods, so none of its methods are ever invoked.
type fakeTx struct {
	pgx.Tx
}

// --- MockInvoiceRepository ---

type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryWithTx = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID int64) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindLatestDepartmentByVendorName(ctx context.Context, vendorName string) (*int64, error) {
	args := m.Called(ctx, vendorName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockInvoiceRepository) CreateInvoiceInTx(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error {
	args := m.Called(ctx, tx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceInTx(ctx context.Context, tx pgx.Tx, inv domain.Invoice) error {
	args := m.Called(ctx, tx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpsertBankAccountInTx(ctx context.Context, tx pgx.Tx, invoiceID int64, ba domain.BankAccount) error {
	args := m.Called(ctx, tx, invoiceID, ba)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ReplaceDetailsInTx(ctx context.Context, tx pgx.Tx, invoiceID int64, details []domain.InvoiceDetail) error {
	args := m.Called(ctx, tx, invoiceID, details)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockInvoiceRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// expectTx wires the usual transaction lifecycle: Begin succeeds, Commit
// succeeds, and the deferred Rollback after commit is tolerated.
func (m *MockInvoiceRepository) expectTx(tx pgx.Tx) {
	m.On("Begin", mock.Anything).Return(tx, nil)
	m.On("Commit", mock.Anything, tx).Return(nil)
	m.On("Rollback", mock.Anything, tx).Return(nil).Maybe()
}

// --- MockVendorRepository ---

type MockVendorRepository struct {
	mock.Mock
}

var _ portsrepo.VendorRepositoryFacade = (*MockVendorRepository)(nil)

func (m *MockVendorRepository) FindVendorByID(ctx context.Context, vendorID int64) (*domain.Vendor, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindVendorByName(ctx context.Context, name string) (*domain.Vendor, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *MockVendorRepository) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vendor), args.Error(1)
}

func (m *MockVendorRepository) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) CreateVendorInTx(ctx context.Context, tx pgx.Tx, vendor *domain.Vendor) error {
	args := m.Called(ctx, tx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) UpdateVendor(ctx context.Context, vendor domain.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) SetDefaultDepartmentInTx(ctx context.Context, tx pgx.Tx, vendorID int64, departmentID int64) error {
	args := m.Called(ctx, tx, vendorID, departmentID)
	return args.Error(0)
}

func (m *MockVendorRepository) UpdateRegistrationInTx(ctx context.Context, tx pgx.Tx, vendorID int64, number string, status domain.RegistrationStatus, checkedAt time.Time) error {
	args := m.Called(ctx, tx, vendorID, number, status, checkedAt)
	return args.Error(0)
}

// --- MockDepartmentRepository ---

type MockDepartmentRepository struct {
	mock.Mock
}

var _ portsrepo.DepartmentRepositoryFacade = (*MockDepartmentRepository)(nil)

func (m *MockDepartmentRepository) FindDepartmentByID(ctx context.Context, departmentID int64) (*domain.Department, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *MockDepartmentRepository) FindDepartmentByCode(ctx context.Context, code string) (*domain.Department, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}

func (m *MockDepartmentRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

func (m *MockDepartmentRepository) CreateDepartment(ctx context.Context, dept *domain.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}

func (m *MockDepartmentRepository) UpdateDepartment(ctx context.Context, dept domain.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}

// --- MockAuditLogRepository ---

type MockAuditLogRepository struct {
	mock.Mock

	// entries collects everything appended, in order, so tests can inspect
	// the ledger the way a reader would.
	entries []domain.AuditLog
}

var _ portsrepo.AuditLogRepositoryFacade = (*MockAuditLogRepository)(nil)

func (m *MockAuditLogRepository) AppendInTx(ctx context.Context, tx pgx.Tx, entry *domain.AuditLog) error {
	m.entries = append(m.entries, *entry)
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListAuditLogs(ctx context.Context, entityType *string, entityID *int64, limit, offset int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

// --- Collaborator mocks ---

type MockRecognizer struct {
	mock.Mock
}

var _ portssvc.Recognizer = (*MockRecognizer)(nil)

func (m *MockRecognizer) Extract(ctx context.Context, fileBytes []byte, mimeType string) (map[string]any, error) {
	args := m.Called(ctx, fileBytes, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

type MockRegistry struct {
	mock.Mock
}

var _ portssvc.RegistryVerifier = (*MockRegistry)(nil)

func (m *MockRegistry) Verify(ctx context.Context, registrationNumber string) domain.RegistryVerification {
	args := m.Called(ctx, registrationNumber)
	return args.Get(0).(domain.RegistryVerification)
}

type MockConnector struct {
	mock.Mock
}

var _ portssvc.PayableConnector = (*MockConnector)(nil)

func (m *MockConnector) Provider() string {
	return "freee"
}

func (m *MockConnector) CreatePayable(ctx context.Context, req portssvc.PayableRequest) (*domain.PayableConfirmation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayableConfirmation), args.Error(1)
}

type MockFileStore struct {
	mock.Mock
}

var _ portssvc.FileStore = (*MockFileStore)(nil)

func (m *MockFileStore) Save(ctx context.Context, data []byte, originalFilename string) (string, string, error) {
	args := m.Called(ctx, data, originalFilename)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockFileStore) Read(ctx context.Context, relPath string) ([]byte, error) {
	args := m.Called(ctx, relPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockMailFetcher struct {
	mock.Mock
}

var _ portssvc.MailFetcher = (*MockMailFetcher)(nil)

func (m *MockMailFetcher) FetchInvoiceMail(ctx context.Context) ([]portssvc.MailDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portssvc.MailDocument), args.Error(1)
}
