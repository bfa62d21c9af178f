package mapping

import (
	"encoding/json"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/models"
)

// ToModelInvoice converts a domain invoice to its persistence model,
// serializing the JSONB blobs.
func ToModelInvoice(d domain.Invoice) (models.Invoice, error) {
	m := models.Invoice{
		ID:                 d.ID,
		InvoiceNumber:      d.InvoiceNumber,
		VendorID:           d.VendorID,
		DepartmentID:       d.DepartmentID,
		AssignedUserID:     d.AssignedUserID,
		ApprovedByID:       d.ApprovedByID,
		Status:             string(d.Status),
		InvoiceDate:        d.InvoiceDate,
		DueDate:            d.DueDate,
		TotalAmount:        d.TotalAmount,
		SubtotalAmount:     d.SubtotalAmount,
		TaxAmount:          d.TaxAmount,
		Tax8Amount:         d.Tax8Amount,
		Tax10Amount:        d.Tax10Amount,
		FilePath:           d.FilePath,
		FileHashSHA256:     d.FileHashSHA256,
		OriginalFilename:   d.OriginalFilename,
		SourceType:         string(d.SourceType),
		RegistrationNumber: d.RegistrationNumber,
		IsDeleted:          d.IsDeleted,
		RetentionUntil:     d.RetentionUntil,
		Description:        d.Description,
		RecipientName:      d.RecipientName,
		ApprovedAt:         d.ApprovedAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.RegistrationStatus != nil {
		s := string(*d.RegistrationStatus)
		m.RegistrationStatus = &s
	}
	if len(d.RawExtraction) > 0 {
		m.RawExtraction = []byte(d.RawExtraction)
	}
	if d.ComplianceResult != nil {
		b, err := json.Marshal(d.ComplianceResult)
		if err != nil {
			return models.Invoice{}, err
		}
		m.ComplianceResult = b
	}
	return m, nil
}

// ToDomainInvoice converts a persistence model to a domain invoice.
func ToDomainInvoice(m models.Invoice) (domain.Invoice, error) {
	d := domain.Invoice{
		ID:                 m.ID,
		InvoiceNumber:      m.InvoiceNumber,
		VendorID:           m.VendorID,
		DepartmentID:       m.DepartmentID,
		AssignedUserID:     m.AssignedUserID,
		ApprovedByID:       m.ApprovedByID,
		Status:             domain.InvoiceStatus(m.Status),
		InvoiceDate:        m.InvoiceDate,
		DueDate:            m.DueDate,
		TotalAmount:        m.TotalAmount,
		SubtotalAmount:     m.SubtotalAmount,
		TaxAmount:          m.TaxAmount,
		Tax8Amount:         m.Tax8Amount,
		Tax10Amount:        m.Tax10Amount,
		FilePath:           m.FilePath,
		FileHashSHA256:     m.FileHashSHA256,
		OriginalFilename:   m.OriginalFilename,
		SourceType:         domain.SourceType(m.SourceType),
		RegistrationNumber: m.RegistrationNumber,
		IsDeleted:          m.IsDeleted,
		RetentionUntil:     m.RetentionUntil,
		Description:        m.Description,
		RecipientName:      m.RecipientName,
		ApprovedAt:         m.ApprovedAt,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
	if m.RegistrationStatus != nil {
		s := domain.RegistrationStatus(*m.RegistrationStatus)
		d.RegistrationStatus = &s
	}
	if len(m.RawExtraction) > 0 {
		d.RawExtraction = json.RawMessage(m.RawExtraction)
	}
	if len(m.ComplianceResult) > 0 {
		var cr domain.ComplianceResult
		if err := json.Unmarshal(m.ComplianceResult, &cr); err != nil {
			return domain.Invoice{}, err
		}
		d.ComplianceResult = &cr
	}
	return d, nil
}

// ToDomainBankAccount converts a bank account row.
func ToDomainBankAccount(m models.BankAccount) domain.BankAccount {
	return domain.BankAccount{
		ID:            m.ID,
		InvoiceID:     m.InvoiceID,
		BankName:      m.BankName,
		BranchName:    m.BranchName,
		AccountType:   m.AccountType,
		AccountNumber: m.AccountNumber,
		AccountHolder: m.AccountHolder,
	}
}

// ToDomainInvoiceDetail converts a line item row.
func ToDomainInvoiceDetail(m models.InvoiceDetail) domain.InvoiceDetail {
	return domain.InvoiceDetail{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Amount:      m.Amount,
		Tax:         m.Tax,
		TaxRate:     m.TaxRate,
	}
}
