package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	portssvc "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
)

// Check labels follow the statutory qualified-invoice wording. They are part
// of the stored compliance result, so their text is stable.
const (
	MissingRegistrationNumber = "適格請求書発行事業者の登録番号"
	InvalidRegistrationNumber = "適格請求書発行事業者番号が無効です"
	MissingInvoiceDate        = "取引年月日"
	MissingDescription        = "取引内容"
	MissingTaxBreakdown       = "税率ごとに区分した対価の額"
	MissingTaxAmount          = "税率ごとに区分した消費税額"
	MissingRecipientName      = "書類の交付を受ける事業者の氏名または名称"

	// ExtractionFailedItem is the single missing item recorded when the
	// recognition output was unusable and no field checks could run.
	ExtractionFailedItem = "AI解析失敗"
)

// complianceService runs the qualified-invoice checks and manages the
// per-vendor registry cache.
type complianceService struct {
	invoiceRepo portsrepo.InvoiceRepositoryWithTx
	vendorRepo  portsrepo.VendorRepositoryFacade
	registry    portssvc.RegistryVerifier
	auditSvc    *auditService
	now         func() time.Time
}

// NewComplianceService creates a new ComplianceService.
func NewComplianceService(invoiceRepo portsrepo.InvoiceRepositoryWithTx, vendorRepo portsrepo.VendorRepositoryFacade, registry portssvc.RegistryVerifier, auditSvc *auditService) *complianceService {
	return &complianceService{
		invoiceRepo: invoiceRepo,
		vendorRepo:  vendorRepo,
		registry:    registry,
		auditSvc:    auditSvc,
		now:         time.Now,
	}
}

var _ portssvc.ComplianceSvcFacade = (*complianceService)(nil)

// VerifyRegistrationNumber consults the registry directly, bypassing the
// vendor cache. It never fails; transport problems degrade to invalid.
func (s *complianceService) VerifyRegistrationNumber(ctx context.Context, registrationNumber string) domain.RegistryVerification {
	return s.registry.Verify(ctx, registrationNumber)
}

// FailedResult is the compliance outcome for an invoice whose recognition
// output was unusable.
func FailedResult() *domain.ComplianceResult {
	return &domain.ComplianceResult{
		MissingItems: []string{ExtractionFailedItem},
		Passed:       false,
	}
}

// Evaluate runs the six checks against the invoice's current fields. The
// registration validity input is tri-state: nil means the registry was not
// consulted, which is reported as unchecked rather than invalid.
func Evaluate(inv domain.Invoice, registrationValid *bool) *domain.ComplianceResult {
	result := &domain.ComplianceResult{
		RegistrationValid: registrationValid,
		MissingItems:      []string{},
	}

	result.HasRegistrationNumber = inv.RegistrationNumber != nil && strings.TrimSpace(*inv.RegistrationNumber) != ""
	if !result.HasRegistrationNumber {
		result.MissingItems = append(result.MissingItems, MissingRegistrationNumber)
	} else if registrationValid != nil && !*registrationValid {
		result.MissingItems = append(result.MissingItems, InvalidRegistrationNumber)
	}

	result.HasInvoiceDate = inv.InvoiceDate != nil
	if !result.HasInvoiceDate {
		result.MissingItems = append(result.MissingItems, MissingInvoiceDate)
	}

	result.HasDescription = hasText(inv.Description)
	if !result.HasDescription {
		for _, d := range inv.Details {
			if hasText(d.Description) {
				result.HasDescription = true
				break
			}
		}
	}
	if !result.HasDescription {
		result.MissingItems = append(result.MissingItems, MissingDescription)
	}

	result.HasTaxBreakdown = inv.Tax8Amount != nil || inv.Tax10Amount != nil
	if !result.HasTaxBreakdown {
		for _, d := range inv.Details {
			if hasText(d.TaxRate) {
				result.HasTaxBreakdown = true
				break
			}
		}
	}
	if !result.HasTaxBreakdown {
		result.MissingItems = append(result.MissingItems, MissingTaxBreakdown)
	}

	result.HasTaxAmount = inv.TaxAmount != nil
	if !result.HasTaxAmount {
		result.MissingItems = append(result.MissingItems, MissingTaxAmount)
	}

	result.HasRecipientName = hasText(inv.RecipientName)
	if !result.HasRecipientName {
		result.MissingItems = append(result.MissingItems, MissingRecipientName)
	}

	result.Passed = len(result.MissingItems) == 0
	return result
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// resolveRegistration returns the tri-state registry validity for the
// invoice's registration number, preferring the vendor cache. A cache miss
// consults the registry and the caller is handed the fresh verification so it
// can be written back inside its transaction; fresh is nil on a cache hit.
func (s *complianceService) resolveRegistration(ctx context.Context, inv domain.Invoice, vendor *domain.Vendor) (valid *bool, fresh *domain.RegistryVerification) {
	if inv.RegistrationNumber == nil || strings.TrimSpace(*inv.RegistrationNumber) == "" {
		return nil, nil
	}
	number := strings.TrimSpace(*inv.RegistrationNumber)

	if vendor != nil && vendor.RegistrationNumber != nil && *vendor.RegistrationNumber == number &&
		vendor.RegistrationStatus != nil && *vendor.RegistrationStatus != domain.RegistrationUnchecked {
		v := *vendor.RegistrationStatus == domain.RegistrationValid
		return &v, nil
	}

	verification := s.registry.Verify(ctx, number)
	return &verification.IsValid, &verification
}

// verifyFresh always consults the registry, ignoring any cached vendor
// answer. Used by the explicit re-check so a stale cache entry gets replaced.
func (s *complianceService) verifyFresh(ctx context.Context, inv domain.Invoice) (valid *bool, fresh *domain.RegistryVerification) {
	if inv.RegistrationNumber == nil || strings.TrimSpace(*inv.RegistrationNumber) == "" {
		return nil, nil
	}
	verification := s.registry.Verify(ctx, strings.TrimSpace(*inv.RegistrationNumber))
	return &verification.IsValid, &verification
}

// CheckInvoice re-runs the compliance checks against the invoice's current
// fields and persists the result. Allowed from any non-terminal status that
// has been through extraction; the status moves to compliance_checked only
// from extracted so a reviewed invoice keeps its place in the lifecycle.
// Unlike ingestion, the explicit re-check never trusts the vendor cache: the
// registry is consulted again and the cached answer refreshed.
func (s *complianceService) CheckInvoice(ctx context.Context, invoiceID int64, actorID *int64, origin *string) (*domain.ComplianceResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	inv, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status.IsTerminal() || inv.Status == domain.StatusUploaded {
		return nil, apperrStateTransition(inv.Status, domain.StatusComplianceChecked)
	}

	var vendor *domain.Vendor
	if inv.VendorID != nil {
		vendor, err = s.vendorRepo.FindVendorByID(ctx, *inv.VendorID)
		if err != nil {
			logger.Warn("vendor lookup failed during compliance check",
				slog.Int64("invoice_id", invoiceID), slog.String("error", err.Error()))
			vendor = nil
		}
	}

	valid, fresh := s.verifyFresh(ctx, *inv)
	result := Evaluate(*inv, valid)

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.invoiceRepo.Rollback(ctx, tx)

	cs := NewChangeSet()
	oldStatus := inv.Status
	if inv.Status == domain.StatusExtracted {
		inv.Status = domain.StatusComplianceChecked
	}
	cs.Set("status", string(oldStatus), string(inv.Status))

	oldResult := inv.ComplianceResult
	inv.ComplianceResult = result
	cs.Set("compliance_check_result", oldResult, result)

	regStatus := result.RegistrationStatusOf()
	if inv.RegistrationStatus == nil || *inv.RegistrationStatus != regStatus {
		cs.Set("invoice_registration_status", inv.RegistrationStatus, string(regStatus))
	}
	inv.RegistrationStatus = &regStatus

	if err := s.invoiceRepo.UpdateInvoiceInTx(ctx, tx, *inv); err != nil {
		return nil, err
	}

	if fresh != nil && vendor != nil {
		if err := s.vendorRepo.UpdateRegistrationInTx(ctx, tx, vendor.ID, fresh.RegistrationNumber, regStatus, fresh.CheckedAt); err != nil {
			return nil, err
		}
	}

	if err := s.auditSvc.Record(ctx, tx, "invoice", invoiceID, domain.AuditUpdate, cs, actorID, origin); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit compliance check: %w", err)
	}

	logger.Info("compliance check completed",
		slog.Int64("invoice_id", invoiceID), slog.Bool("passed", result.Passed))
	return result, nil
}
