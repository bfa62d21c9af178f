package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SeiwaLabs/invoice_kanri_app/internal/apperrors"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/domain"
	portsrepo "github.com/SeiwaLabs/invoice_kanri_app/internal/core/ports/repositories"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/models"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/utils/mapping"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoice data.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryWithTx {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInvoiceRepository implements portsrepo.InvoiceRepositoryWithTx
var _ portsrepo.InvoiceRepositoryWithTx = (*PgxInvoiceRepository)(nil)

const invoiceColumns = `
	i.id, i.invoice_number, i.vendor_id, i.department_id, i.assigned_user_id, i.approved_by_id,
	i.status, i.invoice_date, i.due_date,
	i.total_amount, i.subtotal_amount, i.tax_amount, i.tax_8_amount, i.tax_10_amount,
	i.file_path, i.file_hash_sha256, i.original_filename, i.source_type,
	i.invoice_registration_number, i.invoice_registration_status,
	i.ai_raw_result, i.compliance_check_result,
	i.is_deleted, i.retention_until, i.description, i.recipient_name,
	i.approved_at, i.created_at, i.updated_at,
	v.name AS vendor_name, d.name AS department_name`

const invoiceJoins = `
	LEFT JOIN vendors v ON v.id = i.vendor_id
	LEFT JOIN departments d ON d.id = i.department_id`

func scanInvoiceRow(row pgx.Row) (*domain.Invoice, error) {
	var m models.Invoice
	var vendorName, departmentName *string
	err := row.Scan(
		&m.ID, &m.InvoiceNumber, &m.VendorID, &m.DepartmentID, &m.AssignedUserID, &m.ApprovedByID,
		&m.Status, &m.InvoiceDate, &m.DueDate,
		&m.TotalAmount, &m.SubtotalAmount, &m.TaxAmount, &m.Tax8Amount, &m.Tax10Amount,
		&m.FilePath, &m.FileHashSHA256, &m.OriginalFilename, &m.SourceType,
		&m.RegistrationNumber, &m.RegistrationStatus,
		&m.RawExtraction, &m.ComplianceResult,
		&m.IsDeleted, &m.RetentionUntil, &m.Description, &m.RecipientName,
		&m.ApprovedAt, &m.CreatedAt, &m.UpdatedAt,
		&vendorName, &departmentName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	d, err := mapping.ToDomainInvoice(m)
	if err != nil {
		return nil, fmt.Errorf("failed to map invoice %d: %w", m.ID, err)
	}
	d.VendorName = vendorName
	d.DepartmentName = departmentName
	return &d, nil
}

// FindInvoiceByID retrieves an invoice with its bank account and line items.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID int64) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices i` + invoiceJoins + ` WHERE i.id = $1`
	inv, err := scanInvoiceRow(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		return nil, err
	}

	ba, err := r.findBankAccount(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.BankAccount = ba

	details, err := r.findDetails(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Details = details

	return inv, nil
}

func (r *PgxInvoiceRepository) findBankAccount(ctx context.Context, invoiceID int64) (*domain.BankAccount, error) {
	var m models.BankAccount
	err := r.Pool.QueryRow(ctx,
		`SELECT id, invoice_id, bank_name, branch_name, account_type, account_number, account_holder
		 FROM bank_accounts WHERE invoice_id = $1`, invoiceID,
	).Scan(&m.ID, &m.InvoiceID, &m.BankName, &m.BranchName, &m.AccountType, &m.AccountNumber, &m.AccountHolder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query bank account for invoice %d: %w", invoiceID, err)
	}
	ba := mapping.ToDomainBankAccount(m)
	return &ba, nil
}

func (r *PgxInvoiceRepository) findDetails(ctx context.Context, invoiceID int64) ([]domain.InvoiceDetail, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, invoice_id, description, amount, tax, tax_rate
		 FROM invoice_details WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query details for invoice %d: %w", invoiceID, err)
	}
	defer rows.Close()

	var details []domain.InvoiceDetail
	for rows.Next() {
		var m models.InvoiceDetail
		if err := rows.Scan(&m.ID, &m.InvoiceID, &m.Description, &m.Amount, &m.Tax, &m.TaxRate); err != nil {
			return nil, fmt.Errorf("failed to scan invoice detail: %w", err)
		}
		details = append(details, mapping.ToDomainInvoiceDetail(m))
	}
	return details, rows.Err()
}

// ListInvoices retrieves a filtered page of non-deleted invoices plus the
// total matching count.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int64, error) {
	where := []string{"i.is_deleted = FALSE"}
	args := []any{}

	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		where = append(where, "i.status = "+addArg(string(*filter.Status)))
	}
	if filter.DepartmentID != nil {
		where = append(where, "i.department_id = "+addArg(*filter.DepartmentID))
	}
	if filter.VendorName != nil {
		where = append(where, "v.name ILIKE "+addArg("%"+*filter.VendorName+"%"))
	}
	if filter.DateFrom != nil {
		where = append(where, "i.invoice_date >= "+addArg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, "i.invoice_date <= "+addArg(*filter.DateTo))
	}
	if filter.AmountMin != nil {
		where = append(where, "i.total_amount >= "+addArg(*filter.AmountMin))
	}
	if filter.AmountMax != nil {
		where = append(where, "i.total_amount <= "+addArg(*filter.AmountMax))
	}

	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM invoices i` + invoiceJoins + whereClause
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices i` + invoiceJoins + whereClause +
		` ORDER BY i.created_at DESC LIMIT ` + addArg(perPage) + ` OFFSET ` + addArg((page-1)*perPage)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

// FindLatestDepartmentByVendorName returns the department of the named
// vendor's most recently created invoice that has one assigned.
func (r *PgxInvoiceRepository) FindLatestDepartmentByVendorName(ctx context.Context, vendorName string) (*int64, error) {
	var departmentID int64
	err := r.Pool.QueryRow(ctx, `
		SELECT i.department_id
		FROM invoices i
		JOIN vendors v ON v.id = i.vendor_id
		WHERE v.name = $1 AND i.department_id IS NOT NULL
		ORDER BY i.created_at DESC
		LIMIT 1`, vendorName,
	).Scan(&departmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query vendor invoice history: %w", err)
	}
	return &departmentID, nil
}

// CreateInvoiceInTx inserts a new invoice and sets its generated ID.
func (r *PgxInvoiceRepository) CreateInvoiceInTx(ctx context.Context, tx pgx.Tx, inv *domain.Invoice) error {
	m, err := mapping.ToModelInvoice(*inv)
	if err != nil {
		return fmt.Errorf("failed to map invoice for insert: %w", err)
	}

	query := `
		INSERT INTO invoices (
			invoice_number, vendor_id, department_id, assigned_user_id, approved_by_id,
			status, invoice_date, due_date,
			total_amount, subtotal_amount, tax_amount, tax_8_amount, tax_10_amount,
			file_path, file_hash_sha256, original_filename, source_type,
			invoice_registration_number, invoice_registration_status,
			ai_raw_result, compliance_check_result,
			is_deleted, retention_until, description, recipient_name,
			approved_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		m.InvoiceNumber, m.VendorID, m.DepartmentID, m.AssignedUserID, m.ApprovedByID,
		m.Status, m.InvoiceDate, m.DueDate,
		m.TotalAmount, m.SubtotalAmount, m.TaxAmount, m.Tax8Amount, m.Tax10Amount,
		m.FilePath, m.FileHashSHA256, m.OriginalFilename, m.SourceType,
		m.RegistrationNumber, m.RegistrationStatus,
		m.RawExtraction, m.ComplianceResult,
		m.IsDeleted, m.RetentionUntil, m.Description, m.RecipientName,
		m.ApprovedAt, m.CreatedAt, m.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// UpdateInvoiceInTx persists all mutable invoice columns.
func (r *PgxInvoiceRepository) UpdateInvoiceInTx(ctx context.Context, tx pgx.Tx, inv domain.Invoice) error {
	m, err := mapping.ToModelInvoice(inv)
	if err != nil {
		return fmt.Errorf("failed to map invoice %d for update: %w", inv.ID, err)
	}

	query := `
		UPDATE invoices SET
			invoice_number = $1, vendor_id = $2, department_id = $3,
			assigned_user_id = $4, approved_by_id = $5,
			status = $6, invoice_date = $7, due_date = $8,
			total_amount = $9, subtotal_amount = $10, tax_amount = $11,
			tax_8_amount = $12, tax_10_amount = $13,
			invoice_registration_number = $14, invoice_registration_status = $15,
			ai_raw_result = $16, compliance_check_result = $17,
			is_deleted = $18, retention_until = $19,
			description = $20, recipient_name = $21,
			approved_at = $22, updated_at = $23
		WHERE id = $24`

	tag, err := tx.Exec(ctx, query,
		m.InvoiceNumber, m.VendorID, m.DepartmentID,
		m.AssignedUserID, m.ApprovedByID,
		m.Status, m.InvoiceDate, m.DueDate,
		m.TotalAmount, m.SubtotalAmount, m.TaxAmount,
		m.Tax8Amount, m.Tax10Amount,
		m.RegistrationNumber, m.RegistrationStatus,
		m.RawExtraction, m.ComplianceResult,
		m.IsDeleted, m.RetentionUntil,
		m.Description, m.RecipientName,
		m.ApprovedAt, m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice %d: %w", inv.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpsertBankAccountInTx creates or replaces the invoice's single bank account.
func (r *PgxInvoiceRepository) UpsertBankAccountInTx(ctx context.Context, tx pgx.Tx, invoiceID int64, ba domain.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (invoice_id, bank_name, branch_name, account_type, account_number, account_holder)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (invoice_id) DO UPDATE SET
			bank_name = EXCLUDED.bank_name,
			branch_name = EXCLUDED.branch_name,
			account_type = EXCLUDED.account_type,
			account_number = EXCLUDED.account_number,
			account_holder = EXCLUDED.account_holder`

	_, err := tx.Exec(ctx, query, invoiceID, ba.BankName, ba.BranchName, ba.AccountType, ba.AccountNumber, ba.AccountHolder)
	if err != nil {
		return fmt.Errorf("failed to upsert bank account for invoice %d: %w", invoiceID, err)
	}
	return nil
}

// ReplaceDetailsInTx replaces the invoice's full line item set.
func (r *PgxInvoiceRepository) ReplaceDetailsInTx(ctx context.Context, tx pgx.Tx, invoiceID int64, details []domain.InvoiceDetail) error {
	if _, err := tx.Exec(ctx, `DELETE FROM invoice_details WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("failed to clear details for invoice %d: %w", invoiceID, err)
	}

	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(
			`INSERT INTO invoice_details (invoice_id, description, amount, tax, tax_rate)
			 VALUES ($1, $2, $3, $4, $5)`,
			invoiceID, d.Description, d.Amount, d.Tax, d.TaxRate,
		)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range details {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert detail for invoice %d: %w", invoiceID, err)
		}
	}
	return nil
}
