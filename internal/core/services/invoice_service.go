package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/dto"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/utils/integrity"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/utils/normalize"
)

func apperrStateTransition(current, attempted domain.InvoiceStatus) error {
	return &apperrors.StateTransitionError{Current: string(current), Attempted: string(attempted)}
}

// invoiceService drives the invoice lifecycle. Every mutation runs in a
// transaction shared with its audit entry.
type invoiceService struct {
	invoiceRepo    portsrepo.InvoiceRepositoryWithTx
	vendorRepo     portsrepo.VendorRepositoryFacade
	departmentRepo portsrepo.DepartmentRepositoryFacade
	recognizer     portssvc.Recognizer
	fileStore      portssvc.FileStore
	connector      portssvc.PayableConnector
	compliance     *complianceService
	classifier     *classifier
	auditSvc       *auditService
	retentionYears int
	now            func() time.Time
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryWithTx,
	vendorRepo portsrepo.VendorRepositoryFacade,
	departmentRepo portsrepo.DepartmentRepositoryFacade,
	recognizer portssvc.Recognizer,
	fileStore portssvc.FileStore,
	connector portssvc.PayableConnector,
	compliance *complianceService,
	auditSvc *auditService,
	retentionYears int,
) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		invoiceRepo:    invoiceRepo,
		vendorRepo:     vendorRepo,
		departmentRepo: departmentRepo,
		recognizer:     recognizer,
		fileStore:      fileStore,
		connector:      connector,
		compliance:     compliance,
		classifier:     newClassifier(vendorRepo, invoiceRepo),
		auditSvc:       auditSvc,
		retentionYears: retentionYears,
		now:            time.Now,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// diffInvoice records the scalar field changes between two invoice states.
// Status is deliberately left out: a manual edit advances the lifecycle as a
// side effect, and only the edited fields belong in the update entry.
func diffInvoice(cs *ChangeSet, before, after domain.Invoice) {
	cs.Set("invoice_number", before.InvoiceNumber, after.InvoiceNumber)
	cs.Set("vendor_id", before.VendorID, after.VendorID)
	cs.Set("department_id", before.DepartmentID, after.DepartmentID)
	cs.Set("invoice_date", before.InvoiceDate, after.InvoiceDate)
	cs.Set("due_date", before.DueDate, after.DueDate)
	cs.Set("total_amount", before.TotalAmount, after.TotalAmount)
	cs.Set("subtotal_amount", before.SubtotalAmount, after.SubtotalAmount)
	cs.Set("tax_amount", before.TaxAmount, after.TaxAmount)
	cs.Set("tax_8_amount", before.Tax8Amount, after.Tax8Amount)
	cs.Set("tax_10_amount", before.Tax10Amount, after.Tax10Amount)
	cs.Set("invoice_registration_number", before.RegistrationNumber, after.RegistrationNumber)
	cs.Set("description", before.Description, after.Description)
	cs.Set("recipient_name", before.RecipientName, after.RecipientName)
	cs.Set("retention_until", before.RetentionUntil, after.RetentionUntil)
	var beforeReg, afterReg *string
	if before.RegistrationStatus != nil {
		s := string(*before.RegistrationStatus)
		beforeReg = &s
	}
	if after.RegistrationStatus != nil {
		s := string(*after.RegistrationStatus)
		afterReg = &s
	}
	cs.Set("invoice_registration_status", beforeReg, afterReg)
}

// IngestFiles processes each document independently; a failed item never
// aborts its siblings.
func (s *invoiceService) IngestFiles(ctx context.Context, files []dto.IngestFileInput, source domain.SourceType, actorID *int64, origin *string) []dto.IngestOutcome {
	outcomes := make([]dto.IngestOutcome, 0, len(files))
	for _, f := range files {
		inv, err := s.ingestOne(ctx, f, source, actorID, origin)
		outcomes = append(outcomes, dto.IngestOutcome{Invoice: inv, Err: err})
	}
	return outcomes
}

// ingestOne stores the file, commits the uploaded record with its creation
// audit entry, and only then runs extraction. The initial commit is
// deliberate: a recognition failure must leave a queryable record behind.
func (s *invoiceService) ingestOne(ctx context.Context, file dto.IngestFileInput, source domain.SourceType, actorID *int64, origin *string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(file.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file %q", apperrors.ErrValidation, file.Filename)
	}

	relPath, hash, err := s.fileStore.Save(ctx, file.Data, file.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store file %q: %w", file.Filename, err)
	}

	now := s.now()
	inv := &domain.Invoice{
		Status:           domain.StatusUploaded,
		FilePath:         relPath,
		FileHashSHA256:   hash,
		OriginalFilename: file.Filename,
		SourceType:       source,
		Description:      file.Description,
		RetentionUntil:   integrity.RetentionUntil(nil, now, s.retentionYears),
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.invoiceRepo.CreateInvoiceInTx(ctx, tx, inv); err != nil {
		s.invoiceRepo.Rollback(ctx, tx)
		return nil, err
	}
	cs := NewChangeSet()
	cs.Note("status", string(domain.StatusUploaded))
	cs.Note("original_filename", file.Filename)
	cs.Note("file_hash_sha256", hash)
	cs.Note("source_type", string(source))
	if err := s.auditSvc.Record(ctx, tx, "invoice", inv.ID, domain.AuditCreate, cs, actorID, origin); err != nil {
		s.invoiceRepo.Rollback(ctx, tx)
		return nil, err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit upload: %w", err)
	}
	logger.Info("invoice file stored", slog.Int64("invoice_id", inv.ID), slog.String("filename", file.Filename))

	return s.runExtraction(ctx, inv, file, actorID, origin)
}

// runExtraction performs recognition, normalization, classification and the
// compliance checks, committing all effects in a second transaction. A
// recognition failure is recorded as extraction_failed, not returned as an
// ingestion error.
func (s *invoiceService) runExtraction(ctx context.Context, inv *domain.Invoice, file dto.IngestFileInput, actorID *int64, origin *string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	raw, err := s.recognizer.Extract(ctx, file.Data, file.MimeType)
	if err != nil {
		logger.Error("document recognition failed",
			slog.Int64("invoice_id", inv.ID), slog.String("error", err.Error()))
		raw = map[string]any{"_parse_error": true, "_raw_text": err.Error()}
	}
	extracted := normalize.Normalize(raw)
	rawJSON, merr := json.Marshal(raw)
	if merr != nil {
		rawJSON = []byte(`{"_parse_error":true}`)
	}

	if extracted.ParseFailed {
		return s.recordExtractionFailure(ctx, inv, rawJSON, actorID, origin)
	}

	before := *inv

	inv.InvoiceNumber = extracted.InvoiceNumber
	inv.RegistrationNumber = extracted.RegistrationNumber
	inv.RecipientName = extracted.RecipientName
	inv.InvoiceDate = extracted.InvoiceDate
	inv.DueDate = extracted.DueDate
	inv.TotalAmount = extracted.TotalAmount
	inv.SubtotalAmount = extracted.SubtotalAmount
	inv.TaxAmount = extracted.TaxAmount
	inv.Tax8Amount = extracted.Tax8Amount
	inv.Tax10Amount = extracted.Tax10Amount
	if extracted.Description != nil {
		inv.Description = extracted.Description
	}
	inv.RawExtraction = rawJSON
	inv.RetentionUntil = integrity.RetentionUntil(extracted.InvoiceDate, s.now(), s.retentionYears)
	inv.UpdatedAt = s.now()

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.invoiceRepo.Rollback(ctx, tx)

	var vendor *domain.Vendor
	if extracted.VendorName != nil {
		var deptID *int64
		vendor, deptID, err = s.classifier.Classify(ctx, tx, *extracted.VendorName, extracted.RegistrationNumber)
		if err != nil {
			return nil, err
		}
		if vendor != nil {
			inv.VendorID = &vendor.ID
			inv.DepartmentID = deptID
		}
	}

	valid, fresh := s.compliance.resolveRegistration(ctx, *inv, vendor)
	result := Evaluate(*inv, valid)
	inv.ComplianceResult = result
	regStatus := result.RegistrationStatusOf()
	inv.RegistrationStatus = &regStatus
	inv.Status = domain.StatusComplianceChecked

	if err := s.invoiceRepo.UpdateInvoiceInTx(ctx, tx, *inv); err != nil {
		return nil, err
	}
	if extracted.BankAccount != nil {
		ba := domain.BankAccount{
			InvoiceID:     inv.ID,
			BankName:      extracted.BankAccount.BankName,
			BranchName:    extracted.BankAccount.BranchName,
			AccountType:   extracted.BankAccount.AccountType,
			AccountNumber: extracted.BankAccount.AccountNumber,
			AccountHolder: extracted.BankAccount.AccountHolder,
		}
		if err := s.invoiceRepo.UpsertBankAccountInTx(ctx, tx, inv.ID, ba); err != nil {
			return nil, err
		}
	}
	if len(extracted.Items) > 0 {
		details := make([]domain.InvoiceDetail, 0, len(extracted.Items))
		for _, it := range extracted.Items {
			details = append(details, domain.InvoiceDetail{
				InvoiceID:   inv.ID,
				Description: it.Description,
				Amount:      it.Amount,
				Tax:         it.Tax,
				TaxRate:     it.TaxRate,
			})
		}
		if err := s.invoiceRepo.ReplaceDetailsInTx(ctx, tx, inv.ID, details); err != nil {
			return nil, err
		}
	}
	if fresh != nil && vendor != nil {
		if err := s.vendorRepo.UpdateRegistrationInTx(ctx, tx, vendor.ID, fresh.RegistrationNumber, regStatus, fresh.CheckedAt); err != nil {
			return nil, err
		}
	}

	cs := NewChangeSet()
	cs.Set("status", string(before.Status), string(inv.Status))
	diffInvoice(cs, before, *inv)
	cs.Set("compliance_check_result", nil, result)
	if err := s.auditSvc.Record(ctx, tx, "invoice", inv.ID, domain.AuditUpdate, cs, actorID, origin); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit extraction: %w", err)
	}

	logger.Info("invoice extracted",
		slog.Int64("invoice_id", inv.ID), slog.Bool("compliance_passed", result.Passed))
	return s.invoiceRepo.FindInvoiceByID(ctx, inv.ID)
}

func (s *invoiceService) recordExtractionFailure(ctx context.Context, inv *domain.Invoice, rawJSON []byte, actorID *int64, origin *string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	before := *inv
	inv.Status = domain.StatusExtractionFailed
	inv.RawExtraction = rawJSON
	inv.ComplianceResult = FailedResult()
	inv.UpdatedAt = s.now()

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.invoiceRepo.Rollback(ctx, tx)

	if err := s.invoiceRepo.UpdateInvoiceInTx(ctx, tx, *inv); err != nil {
		return nil, err
	}
	cs := NewChangeSet()
	cs.Set("status", string(before.Status), string(inv.Status))
	cs.Set("compliance_check_result", nil, inv.ComplianceResult)
	if err := s.auditSvc.Record(ctx, tx, "invoice", inv.ID, domain.AuditUpdate, cs, actorID, origin); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit extraction failure: %w", err)
	}

	logger.Warn("extraction failed, invoice parked", slog.Int64("invoice_id", inv.ID))
	return inv, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID int64) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	return inv, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error) {
	return s.invoiceRepo.ListInvoices(ctx, filter)
}

func parseDateField(field string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", apperrors.ErrValidation, field)
	}
	return &t, nil
}

// UpdateInvoice applies a manual correction and moves the invoice to
// reviewed. Edits are accepted while the invoice is awaiting or under review;
// approved and terminal invoices are immutable.
func (s *invoiceService) UpdateInvoice(ctx context.Context, invoiceID int64, req dto.UpdateInvoiceRequest, actorID *int64, origin *string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case domain.StatusExtracted, domain.StatusComplianceChecked, domain.StatusReviewed:
	default:
		return nil, apperrStateTransition(inv.Status, domain.StatusReviewed)
	}

	before := *inv

	if req.InvoiceNumber != nil {
		inv.InvoiceNumber = req.InvoiceNumber
	}
	if req.VendorID != nil {
		if _, err := s.vendorRepo.FindVendorByID(ctx, *req.VendorID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: vendor %d does not exist", apperrors.ErrValidation, *req.VendorID)
			}
			return nil, err
		}
		inv.VendorID = req.VendorID
	}
	if req.DepartmentID != nil {
		if _, err := s.departmentRepo.FindDepartmentByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: department %d does not exist", apperrors.ErrValidation, *req.DepartmentID)
			}
			return nil, err
		}
		inv.DepartmentID = req.DepartmentID
	}
	if d, err := parseDateField("invoice_date", req.InvoiceDate); err != nil {
		return nil, err
	} else if d != nil {
		inv.InvoiceDate = d
		inv.RetentionUntil = integrity.RetentionUntil(d, s.now(), s.retentionYears)
	}
	if d, err := parseDateField("due_date", req.DueDate); err != nil {
		return nil, err
	} else if d != nil {
		inv.DueDate = d
	}
	if req.TotalAmount != nil {
		inv.TotalAmount = req.TotalAmount
	}
	if req.SubtotalAmount != nil {
		inv.SubtotalAmount = req.SubtotalAmount
	}
	if req.TaxAmount != nil {
		inv.TaxAmount = req.TaxAmount
	}
	if req.Tax8Amount != nil {
		inv.Tax8Amount = req.Tax8Amount
	}
	if req.Tax10Amount != nil {
		inv.Tax10Amount = req.Tax10Amount
	}
	if req.RegistrationNumber != nil {
		inv.RegistrationNumber = req.RegistrationNumber
	}
	if req.Description != nil {
		inv.Description = req.Description
	}
	if req.RecipientName != nil {
		inv.RecipientName = req.RecipientName
	}
	inv.Status = domain.StatusReviewed
	inv.UpdatedAt = s.now()

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.invoiceRepo.Rollback(ctx, tx)

	if err := s.invoiceRepo.UpdateInvoiceInTx(ctx, tx, *inv); err != nil {
		return nil, err
	}
	if req.BankAccount != nil {
		ba := domain.BankAccount{
			InvoiceID:     inv.ID,
			BankName:      req.BankAccount.BankName,
			BranchName:    req.BankAccount.BranchName,
			AccountType:   req.BankAccount.AccountType,
			AccountNumber: req.BankAccount.AccountNumber,
			AccountHolder: req.BankAccount.AccountHolder,
		}
		if err := s.invoiceRepo.UpsertBankAccountInTx(ctx, tx, inv.ID, ba); err != nil {
			return nil, err
		}
	}
	if req.DetailsSet {
		details := make([]domain.InvoiceDetail, 0, len(req.Details))
		for _, d := range req.Details {
			details = append(details, domain.InvoiceDetail{
				InvoiceID:   inv.ID,
				Description: d.Description,
				Amount:      d.Amount,
				Tax:         d.Tax,
				TaxRate:     d.TaxRate,
			})
		}
		if err := s.invoiceRepo.ReplaceDetailsInTx(ctx, tx, inv.ID, details); err != nil {
			return nil, err
		}
	}

	// A manual department choice is classifier feedback: remember it as the
	// vendor's default for future invoices.
	if req.DepartmentID != nil && inv.VendorID != nil {
		if err := s.classifier.LearnDepartment(ctx, tx, *inv.VendorID, *req.DepartmentID); err != nil {
			return nil, err
		}
	}

	cs := NewChangeSet()
	diffInvoice(cs, before, *inv)
	if req.BankAccount != nil {
		cs.Set("bank_account", before.BankAccount, req.BankAccount)
	}
	if req.DetailsSet {
		cs.Set("details", before.Details, req.Details)
	}
	if err := s.auditSvc.Record(ctx, tx, "invoice", inv.ID, domain.AuditUpdate, cs, actorID, origin); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	logger.Info("invoice updated", slog.Int64("invoice_id", inv.ID), slog.String("status", string(inv.Status)))
	return s.invoiceRepo.FindInvoiceByID(ctx, inv.ID)
}

// ApproveInvoice is allowed from reviewed or compliance_checked.
func (s *invoiceService) ApproveInvoice(ctx context.Context, invoiceID int64, approverID int64, origin *string) (*domain.Invoice, error) {
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.StatusReviewed && inv.Status != domain.StatusComplianceChecked {
		return nil, apperrStateTransition(inv.Status, domain.StatusApproved)
	}

	before := *inv
	now := s.now()
	inv.Status = domain.StatusApproved
	inv.ApprovedByID = &approverID
	inv.ApprovedAt = &now
	inv.UpdatedAt = now

	cs := NewChangeSet()
	cs.Set("status", string(before.Status), string(inv.Status))
	cs.Set("approved_by_id", before.ApprovedByID, inv.ApprovedByID)
	cs.Set("approved_at", before.ApprovedAt, inv.ApprovedAt)

	if err := s.commitStatusChange(ctx, inv, domain.AuditApprove, cs, &approverID, origin); err != nil {
		return nil, err
	}
	return inv, nil
}

// RejectInvoice is allowed from any non-terminal status.
func (s *invoiceService) RejectInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.Invoice, error) {
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status.IsTerminal() {
		return nil, apperrStateTransition(inv.Status, domain.StatusRejected)
	}

	before := *inv
	inv.Status = domain.StatusRejected
	inv.UpdatedAt = s.now()

	cs := NewChangeSet()
	cs.Set("status", string(before.Status), string(inv.Status))

	if err := s.commitStatusChange(ctx, inv, domain.AuditReject, cs, actorID, origin); err != nil {
		return nil, err
	}
	return inv, nil
}

// commitStatusChange persists the invoice and the given audit entry in one
// transaction.
func (s *invoiceService) commitStatusChange(ctx context.Context, inv *domain.Invoice, action domain.AuditAction, cs *ChangeSet, actorID *int64, origin *string) error {
	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.invoiceRepo.Rollback(ctx, tx)

	if err := s.invoiceRepo.UpdateInvoiceInTx(ctx, tx, *inv); err != nil {
		return err
	}
	if err := s.auditSvc.Record(ctx, tx, "invoice", inv.ID, action, cs, actorID, origin); err != nil {
		return err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}
	return nil
}

// SoftDeleteInvoice hides the invoice from listings. The stored file is never
// removed, and deletion is refused outright while the statutory retention
// period is running.
func (s *invoiceService) SoftDeleteInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) error {
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if s.now().Before(inv.RetentionUntil) {
		return &apperrors.RetentionError{Until: inv.RetentionUntil}
	}

	inv.IsDeleted = true
	inv.UpdatedAt = s.now()

	cs := NewChangeSet()
	cs.Set("is_deleted", false, true)
	return s.commitStatusChange(ctx, inv, domain.AuditSoftDelete, cs, actorID, origin)
}

// ExecuteTransfer registers the payable with the accounting connector, then
// marks the invoice transferred. Connector failure leaves the invoice
// approved and untouched.
func (s *invoiceService) ExecuteTransfer(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.Invoice, *domain.PayableConfirmation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv.Status != domain.StatusApproved {
		return nil, nil, apperrStateTransition(inv.Status, domain.StatusTransferred)
	}
	if inv.TotalAmount == nil {
		return nil, nil, fmt.Errorf("%w: invoice has no total amount", apperrors.ErrValidation)
	}

	req := portssvc.PayableRequest{
		Amount:      inv.TotalAmount.IntPart(),
		Description: derefOr(inv.Description, ""),
		PartnerName: derefOr(inv.VendorName, derefOr(inv.RecipientName, "")),
	}
	if inv.InvoiceDate != nil {
		req.IssueDate = inv.InvoiceDate.Format("2006-01-02")
	}
	if inv.DueDate != nil {
		req.DueDate = inv.DueDate.Format("2006-01-02")
	}
	for _, d := range inv.Details {
		line := portssvc.PayableLine{Name: derefOr(d.Description, "")}
		if d.Amount != nil {
			line.UnitPrice = d.Amount.IntPart()
		}
		req.Items = append(req.Items, line)
	}

	confirmation, err := s.connector.CreatePayable(ctx, req)
	if err != nil {
		logger.Error("payable registration failed",
			slog.Int64("invoice_id", invoiceID), slog.String("error", err.Error()))
		return nil, nil, err
	}

	before := *inv
	inv.Status = domain.StatusTransferred
	inv.UpdatedAt = s.now()

	cs := NewChangeSet()
	cs.Set("status", string(before.Status), string(inv.Status))
	cs.Note("transfer_provider", confirmation.Provider)
	if err := s.commitStatusChange(ctx, inv, domain.AuditTransfer, cs, actorID, origin); err != nil {
		return nil, nil, err
	}

	logger.Info("invoice transferred",
		slog.Int64("invoice_id", invoiceID), slog.String("provider", confirmation.Provider))
	return inv, confirmation, nil
}

// VerifyFileHash re-reads the stored file and compares its digest with the
// one recorded at ingestion.
func (s *invoiceService) VerifyFileHash(ctx context.Context, invoiceID int64) (*dto.HashVerificationResponse, error) {
	inv, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	data, err := s.fileStore.Read(ctx, inv.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file for invoice %d: %w", invoiceID, err)
	}
	if !integrity.Verify(data, inv.FileHashSHA256) {
		return nil, &apperrors.IntegrityError{
			Expected: inv.FileHashSHA256,
			Actual:   integrity.SHA256Hex(data),
		}
	}
	return &dto.HashVerificationResponse{Valid: true, Expected: inv.FileHashSHA256}, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}
