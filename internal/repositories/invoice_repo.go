package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chhayaprint/billing-api/internal/database"
	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceRepository handles database operations for invoices. Products are
// stored as a JSONB column; the derived payment fields are plain numerics
// written by the service after a ledger recompute.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *database.DB) *InvoiceRepository {
	return &InvoiceRepository{pool: db.Pool}
}

// rowScanner interface for scanning invoice rows (single row or rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const invoiceColumns = `id, invoice_number, client_name, client_address, products,
	total_amount, previous_dues, grand_total, bill_total, advance_paid, dues,
	date_of_issue, created_at, updated_at`

func scanInvoiceRow(scanner rowScanner) (*models.Invoice, error) {
	var inv models.Invoice
	var productsJSON []byte

	err := scanner.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientName, &inv.ClientAddress, &productsJSON,
		&inv.TotalAmount, &inv.PreviousDues, &inv.GrandTotal, &inv.BillTotal, &inv.AdvancePaid, &inv.Dues,
		&inv.DateOfIssue, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if len(productsJSON) > 0 {
		if err := json.Unmarshal(productsJSON, &inv.Products); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
	}
	if inv.Products == nil {
		inv.Products = []models.Product{}
	}

	return &inv, nil
}

func scanInvoiceRows(rows pgx.Rows) ([]*models.Invoice, error) {
	defer rows.Close()

	invoices := make([]*models.Invoice, 0)

	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return invoices, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	return scanInvoiceRow(r.pool.QueryRow(ctx, query, id))
}

// List returns all invoices, newest first.
func (r *InvoiceRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	return scanInvoiceRows(rows)
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	inv.ID = uuid.New().String()

	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.DateOfIssue.IsZero() {
		inv.DateOfIssue = now
	}

	productsJSON, err := json.Marshal(inv.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}

	query := `
		INSERT INTO invoices (id, invoice_number, client_name, client_address, products,
			total_amount, previous_dues, grand_total, bill_total, advance_paid, dues,
			date_of_issue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.pool.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.ClientName, inv.ClientAddress, productsJSON,
		inv.TotalAmount, inv.PreviousDues, inv.GrandTotal, inv.BillTotal, inv.AdvancePaid, inv.Dues,
		inv.DateOfIssue, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return inv, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, id string, inv *models.Invoice) (*models.Invoice, error) {
	inv.UpdatedAt = time.Now()

	productsJSON, err := json.Marshal(inv.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}

	query := `
		UPDATE invoices
		SET invoice_number = $2, client_name = $3, client_address = $4, products = $5,
			total_amount = $6, previous_dues = $7, grand_total = $8, bill_total = $9,
			advance_paid = $10, dues = $11, date_of_issue = $12, updated_at = $13
		WHERE id = $1
		RETURNING ` + invoiceColumns

	return scanInvoiceRow(r.pool.QueryRow(ctx, query,
		id, inv.InvoiceNumber, inv.ClientName, inv.ClientAddress, productsJSON,
		inv.TotalAmount, inv.PreviousDues, inv.GrandTotal, inv.BillTotal,
		inv.AdvancePaid, inv.Dues, inv.DateOfIssue, inv.UpdatedAt,
	))
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count returns the number of invoices, used for sequential numbering.
func (r *InvoiceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
