package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/utils/integrity"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo *MockInvoiceRepository
	mockVendorRepo  *MockVendorRepository
	mockDeptRepo    *MockDepartmentRepository
	mockAuditRepo   *MockAuditLogRepository
	mockRecognizer  *MockRecognizer
	mockRegistry    *MockRegistry
	mockConnector   *MockConnector
	mockFileStore   *MockFileStore
	service         portssvc.InvoiceSvcFacade
	tx              fakeTx
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.mockInvoiceRepo = new(MockInvoiceRepository)
	s.mockVendorRepo = new(MockVendorRepository)
	s.mockDeptRepo = new(MockDepartmentRepository)
	s.mockAuditRepo = new(MockAuditLogRepository)
	s.mockRecognizer = new(MockRecognizer)
	s.mockRegistry = new(MockRegistry)
	s.mockConnector = new(MockConnector)
	s.mockFileStore = new(MockFileStore)
	s.tx = fakeTx{}

	auditSvc := services.NewAuditService(s.mockAuditRepo)
	compliance := services.NewComplianceService(s.mockInvoiceRepo, s.mockVendorRepo, s.mockRegistry, auditSvc)
	s.service = services.NewInvoiceService(
		s.mockInvoiceRepo, s.mockVendorRepo, s.mockDeptRepo,
		s.mockRecognizer, s.mockFileStore, s.mockConnector,
		compliance, auditSvc, 7,
	)
}

// storedInvoice returns a persisted invoice in the given status whose
// retention period has already lapsed.
func (s *InvoiceServiceTestSuite) storedInvoice(status domain.InvoiceStatus) *domain.Invoice {
	return &domain.Invoice{
		ID:               42,
		Status:           status,
		FilePath:         "2025-03/abc.pdf",
		FileHashSHA256:   integrity.SHA256Hex([]byte("stored bytes")),
		OriginalFilename: "seikyusho.pdf",
		SourceType:       domain.SourceUpload,
		TotalAmount:      decPtr(110000),
		RetentionUntil:   time.Now().AddDate(-1, 0, 0),
	}
}

// --- Ingestion ---

func (s *InvoiceServiceTestSuite) TestIngestFiles_EmptyFileIsRejectedWithoutStorage() {
	ctx := context.Background()

	outcomes := s.service.IngestFiles(ctx, []dto.IngestFileInput{
		{Filename: "empty.pdf", MimeType: "application/pdf"},
	}, domain.SourceUpload, nil, nil)

	s.Require().Len(outcomes, 1)
	s.Require().Error(outcomes[0].Err)
	s.ErrorIs(outcomes[0].Err, apperrors.ErrValidation)
	s.Nil(outcomes[0].Invoice)
	s.mockFileStore.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestIngestFiles_RecognitionFailureParksTheInvoice() {
	ctx := context.Background()
	data := []byte("%PDF-1.7 ...")
	hash := integrity.SHA256Hex(data)

	s.mockFileStore.On("Save", ctx, data, "broken.pdf").Return("2025-06/x.pdf", hash, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("CreateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { args.Get(2).(*domain.Invoice).ID = 7 }).
		Return(nil).Once()
	s.mockRecognizer.On("Extract", ctx, data, "application/pdf").
		Return(nil, errors.New("vision api unavailable")).Once()

	var parked domain.Invoice
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).
		Run(func(args mock.Arguments) { parked = args.Get(2).(domain.Invoice) }).
		Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Twice()

	outcomes := s.service.IngestFiles(ctx, []dto.IngestFileInput{
		{Filename: "broken.pdf", MimeType: "application/pdf", Data: data},
	}, domain.SourceUpload, nil, nil)

	s.Require().Len(outcomes, 1)
	s.Require().NoError(outcomes[0].Err)
	s.Require().NotNil(outcomes[0].Invoice)
	s.Equal(domain.StatusExtractionFailed, outcomes[0].Invoice.Status)

	s.Equal(domain.StatusExtractionFailed, parked.Status)
	s.Require().NotNil(parked.ComplianceResult)
	s.Equal([]string{services.ExtractionFailedItem}, parked.ComplianceResult.MissingItems)
	s.False(parked.ComplianceResult.Passed)

	// the ledger holds the creation entry plus the failure update
	s.Require().Len(s.mockAuditRepo.entries, 2)
	s.Equal(domain.AuditCreate, s.mockAuditRepo.entries[0].Action)
	s.Equal(domain.AuditUpdate, s.mockAuditRepo.entries[1].Action)
	s.mockInvoiceRepo.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestIngestFiles_FullPipeline() {
	ctx := context.Background()
	data := []byte("%PDF-1.7 invoice")
	hash := integrity.SHA256Hex(data)

	raw := map[string]any{
		"vendor_name":                 "株式会社サンプル",
		"invoice_number":              "INV-2025-001",
		"invoice_registration_number": "T1234567890123",
		"recipient_name":              "株式会社セイワ",
		"invoice_date":                "2025-03-15",
		"due_date":                    "2025-04-30",
		"total_amount":                "¥110,000",
		"subtotal_amount":             "100,000",
		"tax_10_amount":               "10,000",
		"description":                 "3月分コンサルティング料",
		"items": []any{
			map[string]any{"description": "コンサルティング料", "amount": "100,000", "tax_rate": "10%"},
		},
	}

	s.mockFileStore.On("Save", ctx, data, "seikyusho.pdf").Return("2025-06/y.pdf", hash, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("CreateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { args.Get(2).(*domain.Invoice).ID = 9 }).
		Return(nil).Once()
	s.mockRecognizer.On("Extract", ctx, data, "application/pdf").Return(raw, nil).Once()

	// first invoice from this vendor: created on the fly, no known department
	var createdVendor domain.Vendor
	s.mockVendorRepo.On("FindVendorByName", ctx, "株式会社サンプル").Return(nil, apperrors.ErrNotFound).Once()
	s.mockVendorRepo.On("CreateVendorInTx", ctx, s.tx, mock.AnythingOfType("*domain.Vendor")).
		Run(func(args mock.Arguments) {
			v := args.Get(2).(*domain.Vendor)
			v.ID = 3
			createdVendor = *v
		}).
		Return(nil).Once()
	s.mockInvoiceRepo.On("FindLatestDepartmentByVendorName", ctx, "株式会社サンプル").Return(nil, nil).Once()

	checkedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.mockRegistry.On("Verify", ctx, "T1234567890123").
		Return(domain.RegistryVerification{RegistrationNumber: "T1234567890123", IsValid: true, CheckedAt: checkedAt}).Once()

	var persisted domain.Invoice
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(2).(domain.Invoice) }).
		Return(nil).Once()
	s.mockInvoiceRepo.On("ReplaceDetailsInTx", ctx, s.tx, int64(9), mock.AnythingOfType("[]domain.InvoiceDetail")).
		Return(nil).Once()
	s.mockVendorRepo.On("UpdateRegistrationInTx", ctx, s.tx, int64(3), "T1234567890123", domain.RegistrationValid, checkedAt).
		Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Twice()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(9)).Return(&persisted, nil).Once()

	outcomes := s.service.IngestFiles(ctx, []dto.IngestFileInput{
		{Filename: "seikyusho.pdf", MimeType: "application/pdf", Data: data},
	}, domain.SourceUpload, nil, nil)

	s.Require().Len(outcomes, 1)
	s.Require().NoError(outcomes[0].Err)

	s.Equal(domain.StatusComplianceChecked, persisted.Status)
	s.Require().NotNil(persisted.VendorID)
	s.Equal(int64(3), *persisted.VendorID)
	s.Nil(persisted.DepartmentID)
	s.Require().NotNil(persisted.TotalAmount)
	s.True(persisted.TotalAmount.Equal(decimal.NewFromInt(110000)))
	s.Require().NotNil(persisted.ComplianceResult)
	s.True(persisted.ComplianceResult.Passed)
	s.Require().NotNil(persisted.RegistrationStatus)
	s.Equal(domain.RegistrationValid, *persisted.RegistrationStatus)

	// retention runs from the invoice date, not the upload time
	s.Equal(time.Date(2032, 3, 15, 0, 0, 0, 0, time.UTC), persisted.RetentionUntil)

	// the new vendor record is seeded with the extracted registration number
	s.Require().NotNil(createdVendor.RegistrationNumber)
	s.Equal("T1234567890123", *createdVendor.RegistrationNumber)

	s.mockInvoiceRepo.AssertExpectations(s.T())
	s.mockVendorRepo.AssertExpectations(s.T())
	s.mockRegistry.AssertExpectations(s.T())
}

func (s *InvoiceServiceTestSuite) TestIngestFiles_KnownVendorInheritsLatestDepartment() {
	ctx := context.Background()
	data := []byte("jpeg bytes")
	hash := integrity.SHA256Hex(data)
	vendor := &domain.Vendor{ID: 3, Name: "株式会社サンプル"}

	s.mockFileStore.On("Save", ctx, data, "photo.jpg").Return("2025-06/z.jpg", hash, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("CreateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { args.Get(2).(*domain.Invoice).ID = 10 }).
		Return(nil).Once()
	s.mockRecognizer.On("Extract", ctx, data, "image/jpeg").
		Return(map[string]any{"vendor_name": "株式会社サンプル"}, nil).Once()

	// the vendor carries no learned default, so the department of its most
	// recent classified invoice wins
	s.mockVendorRepo.On("FindVendorByName", ctx, "株式会社サンプル").Return(vendor, nil).Once()
	s.mockInvoiceRepo.On("FindLatestDepartmentByVendorName", ctx, "株式会社サンプル").
		Return(int64Ptr(4), nil).Once()

	var persisted domain.Invoice
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(2).(domain.Invoice) }).
		Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Twice()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(10)).Return(&persisted, nil).Once()

	outcomes := s.service.IngestFiles(ctx, []dto.IngestFileInput{
		{Filename: "photo.jpg", MimeType: "image/jpeg", Data: data},
	}, domain.SourceUpload, nil, nil)

	s.Require().Len(outcomes, 1)
	s.Require().NoError(outcomes[0].Err)

	s.Require().NotNil(persisted.VendorID)
	s.Equal(int64(3), *persisted.VendorID)
	s.Require().NotNil(persisted.DepartmentID)
	s.Equal(int64(4), *persisted.DepartmentID)

	// no registration number extracted, so the registry stays untouched
	s.mockRegistry.AssertNotCalled(s.T(), "Verify", mock.Anything, mock.Anything)
	s.mockVendorRepo.AssertNotCalled(s.T(), "CreateVendorInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestIngestFiles_CachedVendorRegistrationSkipsRegistry() {
	ctx := context.Background()
	data := []byte("%PDF-1.7 repeat vendor")
	hash := integrity.SHA256Hex(data)
	validStatus := domain.RegistrationValid
	vendor := &domain.Vendor{
		ID:                  3,
		Name:                "株式会社サンプル",
		RegistrationNumber:  strPtr("T1234567890123"),
		RegistrationStatus:  &validStatus,
		DefaultDepartmentID: int64Ptr(2),
	}

	s.mockFileStore.On("Save", ctx, data, "repeat.pdf").Return("2025-07/a.pdf", hash, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("CreateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("*domain.Invoice")).
		Run(func(args mock.Arguments) { args.Get(2).(*domain.Invoice).ID = 11 }).
		Return(nil).Once()
	s.mockRecognizer.On("Extract", ctx, data, "application/pdf").
		Return(map[string]any{
			"vendor_name":                 "株式会社サンプル",
			"invoice_registration_number": "T1234567890123",
		}, nil).Once()
	s.mockVendorRepo.On("FindVendorByName", ctx, "株式会社サンプル").Return(vendor, nil).Once()

	var persisted domain.Invoice
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(2).(domain.Invoice) }).
		Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Twice()
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(11)).Return(&persisted, nil).Once()

	outcomes := s.service.IngestFiles(ctx, []dto.IngestFileInput{
		{Filename: "repeat.pdf", MimeType: "application/pdf", Data: data},
	}, domain.SourceUpload, nil, nil)

	s.Require().Len(outcomes, 1)
	s.Require().NoError(outcomes[0].Err)

	// the cached vendor answer suffices during ingestion, no registry round
	// trip and no cache rewrite
	s.mockRegistry.AssertNotCalled(s.T(), "Verify", mock.Anything, mock.Anything)
	s.mockVendorRepo.AssertNotCalled(s.T(), "UpdateRegistrationInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.Require().NotNil(persisted.RegistrationStatus)
	s.Equal(domain.RegistrationValid, *persisted.RegistrationStatus)
}

// --- Reads ---

func (s *InvoiceServiceTestSuite) TestGetInvoice_HidesSoftDeleted() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusComplianceChecked)
	inv.IsDeleted = true
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, err := s.service.GetInvoice(ctx, 42)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Manual edits ---

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_RejectedWhileUploaded() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusUploaded)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, err := s.service.UpdateInvoice(ctx, 42, dto.UpdateInvoiceRequest{}, nil, nil)

	var stErr *apperrors.StateTransitionError
	s.Require().ErrorAs(err, &stErr)
	s.Equal("uploaded", stErr.Current)
	s.Equal("reviewed", stErr.Attempted)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_RejectedWhenApproved() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusApproved)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, err := s.service.UpdateInvoice(ctx, 42, dto.UpdateInvoiceRequest{}, nil, nil)

	var stErr *apperrors.StateTransitionError
	s.Require().ErrorAs(err, &stErr)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_UnknownVendorIsValidationError() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusComplianceChecked)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockVendorRepo.On("FindVendorByID", ctx, int64(99)).Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.UpdateInvoice(ctx, 42, dto.UpdateInvoiceRequest{VendorID: int64Ptr(99)}, nil, nil)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_MalformedDateIsValidationError() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusComplianceChecked)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, err := s.service.UpdateInvoice(ctx, 42, dto.UpdateInvoiceRequest{InvoiceDate: strPtr("2025/03/15")}, nil, nil)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_DiffRecordsOnlyChangedFields() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusComplianceChecked)
	actorID := int64Ptr(11)
	origin := strPtr("203.0.113.10")

	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil)
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Once()

	_, err := s.service.UpdateInvoice(ctx, 42, dto.UpdateInvoiceRequest{
		TotalAmount: decPtr(120000),
	}, actorID, origin)

	s.Require().NoError(err)
	s.Require().Len(s.mockAuditRepo.entries, 1)
	entry := s.mockAuditRepo.entries[0]

	s.Equal(domain.AuditUpdate, entry.Action)
	s.Equal("invoice", entry.EntityType)
	s.Equal(int64(42), entry.EntityID)
	s.Require().NotNil(entry.UserID)
	s.Equal(int64(11), *entry.UserID)
	s.Require().NotNil(entry.IPAddress)
	s.Equal("203.0.113.10", *entry.IPAddress)

	// only the edited field appears in the diff; the automatic lifecycle
	// step is not part of the recorded change
	s.Require().Len(entry.OldValues, 1)
	s.Require().Len(entry.NewValues, 1)
	s.Require().NotNil(entry.OldValues["total_amount"])
	s.Equal("110000", *entry.OldValues["total_amount"])
	s.Require().NotNil(entry.NewValues["total_amount"])
	s.Equal("120000", *entry.NewValues["total_amount"])
	s.NotContains(entry.NewValues, "status")
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_ManualDepartmentTeachesTheVendor() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusComplianceChecked)
	inv.VendorID = int64Ptr(3)
	dept := &domain.Department{ID: 8, Name: "経理部", Code: "KEIRI"}

	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil)
	s.mockDeptRepo.On("FindDepartmentByID", ctx, int64(8)).Return(dept, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()
	s.mockVendorRepo.On("SetDefaultDepartmentInTx", ctx, s.tx, int64(3), int64(8)).Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Once()

	_, err := s.service.UpdateInvoice(ctx, 42, dto.UpdateInvoiceRequest{DepartmentID: int64Ptr(8)}, nil, nil)

	s.Require().NoError(err)
	s.mockVendorRepo.AssertExpectations(s.T())
}

// --- Approval ---

func (s *InvoiceServiceTestSuite) TestApproveInvoice_FromReviewed() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusReviewed)

	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Once()

	approved, err := s.service.ApproveInvoice(ctx, 42, 11, nil)

	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, approved.Status)
	s.Require().NotNil(approved.ApprovedByID)
	s.Equal(int64(11), *approved.ApprovedByID)
	s.NotNil(approved.ApprovedAt)

	s.Require().Len(s.mockAuditRepo.entries, 1)
	s.Equal(domain.AuditApprove, s.mockAuditRepo.entries[0].Action)
}

func (s *InvoiceServiceTestSuite) TestApproveInvoice_RejectedFromUploaded() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusUploaded)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, err := s.service.ApproveInvoice(ctx, 42, 11, nil)

	var stErr *apperrors.StateTransitionError
	s.Require().ErrorAs(err, &stErr)
	s.Equal("uploaded", stErr.Current)
	s.Equal("approved", stErr.Attempted)
	s.mockInvoiceRepo.AssertNotCalled(s.T(), "Begin", mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestRejectInvoice_TerminalStaysTerminal() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusTransferred)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, err := s.service.RejectInvoice(ctx, 42, nil, nil)

	var stErr *apperrors.StateTransitionError
	s.Require().ErrorAs(err, &stErr)
}

func (s *InvoiceServiceTestSuite) TestRejectInvoice_FromExtractionFailed() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusExtractionFailed)

	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Once()

	rejected, err := s.service.RejectInvoice(ctx, 42, nil, nil)

	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, rejected.Status)
}

// --- Retention ---

func (s *InvoiceServiceTestSuite) TestSoftDeleteInvoice_RefusedDuringRetention() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusRejected)
	inv.RetentionUntil = time.Now().AddDate(3, 0, 0)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	err := s.service.SoftDeleteInvoice(ctx, 42, nil, nil)

	var rErr *apperrors.RetentionError
	s.Require().ErrorAs(err, &rErr)
	s.Equal(inv.RetentionUntil, rErr.Until)
	s.mockInvoiceRepo.AssertNotCalled(s.T(), "Begin", mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestSoftDeleteInvoice_AllowedAfterRetention() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusRejected)

	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)

	var persisted domain.Invoice
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).
		Run(func(args mock.Arguments) { persisted = args.Get(2).(domain.Invoice) }).
		Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Once()

	err := s.service.SoftDeleteInvoice(ctx, 42, nil, nil)

	s.Require().NoError(err)
	s.True(persisted.IsDeleted)
	s.Require().Len(s.mockAuditRepo.entries, 1)
	s.Equal(domain.AuditSoftDelete, s.mockAuditRepo.entries[0].Action)
}

// --- Transfer ---

func (s *InvoiceServiceTestSuite) TestExecuteTransfer_OnlyFromApproved() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusReviewed)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, _, err := s.service.ExecuteTransfer(ctx, 42, nil, nil)

	var stErr *apperrors.StateTransitionError
	s.Require().ErrorAs(err, &stErr)
	s.Equal("transferred", stErr.Attempted)
	s.mockConnector.AssertNotCalled(s.T(), "CreatePayable", mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestExecuteTransfer_ConnectorFailureLeavesInvoiceApproved() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusApproved)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockConnector.On("CreatePayable", ctx, mock.AnythingOfType("services.PayableRequest")).
		Return(nil, &apperrors.ConnectorError{Provider: "freee", Err: errors.New("deal rejected")}).Once()

	_, _, err := s.service.ExecuteTransfer(ctx, 42, nil, nil)

	var cErr *apperrors.ConnectorError
	s.Require().ErrorAs(err, &cErr)
	// no status mutation may reach the database
	s.mockInvoiceRepo.AssertNotCalled(s.T(), "Begin", mock.Anything)
	s.mockInvoiceRepo.AssertNotCalled(s.T(), "UpdateInvoiceInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestExecuteTransfer_Success() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusApproved)
	inv.VendorName = strPtr("株式会社サンプル")
	inv.InvoiceDate = timePtr(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	inv.DueDate = timePtr(time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC))
	inv.Details = []domain.InvoiceDetail{
		{Description: strPtr("コンサルティング料"), Amount: decPtr(100000)},
	}

	var sent portssvc.PayableRequest
	confirmation := &domain.PayableConfirmation{Provider: "freee"}

	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockConnector.On("CreatePayable", ctx, mock.AnythingOfType("services.PayableRequest")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(portssvc.PayableRequest) }).
		Return(confirmation, nil).Once()
	s.mockInvoiceRepo.expectTx(s.tx)
	s.mockInvoiceRepo.On("UpdateInvoiceInTx", ctx, s.tx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()
	s.mockAuditRepo.On("AppendInTx", ctx, s.tx, mock.AnythingOfType("*domain.AuditLog")).Return(nil).Once()

	transferred, got, err := s.service.ExecuteTransfer(ctx, 42, int64Ptr(11), nil)

	s.Require().NoError(err)
	s.Equal(confirmation, got)
	s.Equal(domain.StatusTransferred, transferred.Status)

	s.Equal(int64(110000), sent.Amount)
	s.Equal("株式会社サンプル", sent.PartnerName)
	s.Equal("2025-03-15", sent.IssueDate)
	s.Equal("2025-04-30", sent.DueDate)
	s.Require().Len(sent.Items, 1)
	s.Equal(int64(100000), sent.Items[0].UnitPrice)

	s.Require().Len(s.mockAuditRepo.entries, 1)
	s.Equal(domain.AuditTransfer, s.mockAuditRepo.entries[0].Action)
	s.Require().NotNil(s.mockAuditRepo.entries[0].NewValues["transfer_provider"])
	s.Equal("freee", *s.mockAuditRepo.entries[0].NewValues["transfer_provider"])
}

func (s *InvoiceServiceTestSuite) TestExecuteTransfer_MissingAmountIsValidationError() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusApproved)
	inv.TotalAmount = nil
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()

	_, _, err := s.service.ExecuteTransfer(ctx, 42, nil, nil)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockConnector.AssertNotCalled(s.T(), "CreatePayable", mock.Anything, mock.Anything)
}

// --- File integrity ---

func (s *InvoiceServiceTestSuite) TestVerifyFileHash_Match() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusComplianceChecked)
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockFileStore.On("Read", ctx, inv.FilePath).Return([]byte("stored bytes"), nil).Once()

	resp, err := s.service.VerifyFileHash(ctx, 42)

	s.Require().NoError(err)
	s.True(resp.Valid)
	s.Equal(inv.FileHashSHA256, resp.Expected)
}

func (s *InvoiceServiceTestSuite) TestVerifyFileHash_TamperIsHardFault() {
	ctx := context.Background()
	inv := s.storedInvoice(domain.StatusComplianceChecked)
	tampered := []byte("altered bytes")
	s.mockInvoiceRepo.On("FindInvoiceByID", ctx, int64(42)).Return(inv, nil).Once()
	s.mockFileStore.On("Read", ctx, inv.FilePath).Return(tampered, nil).Once()

	_, err := s.service.VerifyFileHash(ctx, 42)

	var iErr *apperrors.IntegrityError
	s.Require().ErrorAs(err, &iErr)
	s.Equal(inv.FileHashSHA256, iErr.Expected)
	s.Equal(integrity.SHA256Hex(tampered), iErr.Actual)
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
