package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chhayaprint/billing-api/internal/ledger"
	"github.com/chhayaprint/billing-api/internal/models"
)

// InvoiceRepository defines the persistence operations the service needs
type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context) ([]*models.Invoice, error)
	Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	Update(ctx context.Context, id string, inv *models.Invoice) (*models.Invoice, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// PaymentValidationError carries the ledger's rejection message to the
// handler. It matches errors.Is(err, models.ErrInvalidPayment).
type PaymentValidationError struct {
	Message string
}

func (e *PaymentValidationError) Error() string { return e.Message }

func (e *PaymentValidationError) Is(target error) bool {
	return target == models.ErrInvalidPayment
}

// InvoiceInput is the writable portion of an invoice. Every write runs a
// full ledger recompute; the derived fields of models.Invoice are never
// taken from the caller.
type InvoiceInput struct {
	InvoiceNumber string
	ClientName    string
	ClientAddress string
	Products      []models.Product
	PreviousDues  float64
	AdvancePaid   float64
	DateOfIssue   time.Time
}

// InvoiceService owns invoice reads and writes. It is the only path that
// persists ledger-derived fields, so stored amounts always agree with
// ledger arithmetic.
type InvoiceService struct {
	repo   InvoiceRepository
	logger *slog.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(repo InvoiceRepository, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{repo: repo, logger: logger}
}

// Create computes the full payment breakdown for the input and persists a
// new invoice. Invalid payments (negative advance, advance above bill) are
// rejected before anything is written.
func (s *InvoiceService) Create(ctx context.Context, input InvoiceInput) (*models.Invoice, error) {
	totals := ledger.CalculateInvoice(input.Products, input.PreviousDues, input.AdvancePaid)
	if !totals.IsValid {
		return nil, &PaymentValidationError{Message: totals.ErrorMessage}
	}

	number := input.InvoiceNumber
	if number == "" {
		var err error
		number, err = s.NextNumber(ctx)
		if err != nil {
			return nil, err
		}
	}

	inv := buildInvoice(number, input, totals)

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("invoice created",
		slog.String("invoice_number", created.InvoiceNumber),
		slog.Float64("bill_total", created.BillTotal),
		slog.Float64("dues", created.Dues))

	return created, nil
}

// Update replaces an invoice's content and recomputes the ledger fields
// from scratch. There is no partial-mutation path.
func (s *InvoiceService) Update(ctx context.Context, id string, input InvoiceInput) (*models.Invoice, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	totals := ledger.CalculateInvoice(input.Products, input.PreviousDues, input.AdvancePaid)
	if !totals.IsValid {
		return nil, &PaymentValidationError{Message: totals.ErrorMessage}
	}

	number := input.InvoiceNumber
	if number == "" {
		number = existing.InvoiceNumber
	}

	inv := buildInvoice(number, input, totals)
	if inv.DateOfIssue.IsZero() {
		inv.DateOfIssue = existing.DateOfIssue
	}

	updated, err := s.repo.Update(ctx, id, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logger.Info("invoice updated",
		slog.String("invoice_number", updated.InvoiceNumber),
		slog.Float64("dues", updated.Dues))

	return updated, nil
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *InvoiceService) List(ctx context.Context) ([]*models.Invoice, error) {
	return s.repo.List(ctx)
}

func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("invoice deleted", slog.String("invoice_id", id))
	return nil
}

// NextNumber returns the next sequential invoice number (INV-0001 style).
func (s *InvoiceService) NextNumber(ctx context.Context) (string, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count invoices: %w", err)
	}
	return fmt.Sprintf("INV-%04d", count+1), nil
}

// Stats aggregates dashboard figures. Revenue prefers billTotal and falls
// back to grandTotal for rows written before payment tracking existed.
func (s *InvoiceService) Stats(ctx context.Context) (*models.InvoiceStats, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.InvoiceStats{TotalInvoices: len(invoices)}

	for _, inv := range invoices {
		bill := inv.BillTotal
		if bill == 0 {
			bill = inv.GrandTotal
		}
		stats.TotalRevenue += bill
		stats.TotalDues += inv.Dues

		switch ledger.PaymentStatus(inv.Dues, bill) {
		case ledger.StatusPaid:
			stats.PaidCount++
		case ledger.StatusPartial:
			stats.PartialCount++
		case ledger.StatusUnpaid:
			stats.UnpaidCount++
		}
	}

	return stats, nil
}

func buildInvoice(number string, input InvoiceInput, totals ledger.InvoiceTotals) *models.Invoice {
	products := input.Products
	if products == nil {
		products = []models.Product{}
	}

	return &models.Invoice{
		InvoiceNumber: number,
		ClientName:    input.ClientName,
		ClientAddress: input.ClientAddress,
		Products:      products,
		TotalAmount:   totals.ProductsTotal,
		PreviousDues:  totals.PreviousDues,
		// GrandTotal predates payment tracking; kept equal to the bill
		// total so old renderers stay correct.
		GrandTotal:  totals.BillTotal,
		BillTotal:   totals.BillTotal,
		AdvancePaid: totals.AdvancePaid,
		Dues:        totals.Dues,
		DateOfIssue: input.DateOfIssue,
	}
}
