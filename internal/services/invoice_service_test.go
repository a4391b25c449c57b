package services_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/chhayaprint/billing-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func TestInvoiceServiceCreate_ComputesLedgerFields(t *testing.T) {
	var persisted *models.Invoice
	repo := &services.MockInvoiceRepository{
		CreateFunc: func(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
			persisted = inv
			return inv, nil
		},
	}
	service := services.NewInvoiceService(repo, testLogger())

	input := services.InvoiceInput{
		InvoiceNumber: "INV-0042",
		ClientName:    "Sharma Traders",
		ClientAddress: "Main Road, Pune",
		Products: []models.Product{
			{Name: "Flex banner", Quantity: 2, UnitCost: 150, Total: 300},
			{Name: "Visiting cards", Quantity: 500, UnitCost: 0.5, Total: 250},
		},
		PreviousDues: 150,
		AdvancePaid:  400,
	}

	created, err := service.Create(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, 550.0, created.TotalAmount)
	assert.Equal(t, 700.0, created.BillTotal)
	assert.Equal(t, 700.0, created.GrandTotal)
	assert.Equal(t, 400.0, created.AdvancePaid)
	assert.Equal(t, 300.0, created.Dues)
}

func TestInvoiceServiceCreate_RejectsInvalidPayment(t *testing.T) {
	created := false
	repo := &services.MockInvoiceRepository{
		CreateFunc: func(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
			created = true
			return inv, nil
		},
	}
	service := services.NewInvoiceService(repo, testLogger())

	input := services.InvoiceInput{
		InvoiceNumber: "INV-0001",
		ClientName:    "Sharma Traders",
		ClientAddress: "Main Road, Pune",
		Products:      []models.Product{{Name: "Banner", Total: 200}},
		AdvancePaid:   250,
	}

	_, err := service.Create(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidPayment))
	assert.Equal(t, "Advance payment cannot be greater than the total bill amount", err.Error())
	assert.False(t, created, "invalid invoice must not be persisted")
}

func TestInvoiceServiceCreate_AssignsNextNumber(t *testing.T) {
	repo := &services.MockInvoiceRepository{
		CountFunc: func(ctx context.Context) (int, error) { return 7, nil },
	}
	service := services.NewInvoiceService(repo, testLogger())

	created, err := service.Create(context.Background(), services.InvoiceInput{
		ClientName:    "Sharma Traders",
		ClientAddress: "Main Road, Pune",
		Products:      []models.Product{{Name: "Banner", Total: 100}},
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-0008", created.InvoiceNumber)
}

func TestInvoiceServiceUpdate_FullRecompute(t *testing.T) {
	existing := &models.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-0001",
		BillTotal:     500,
		AdvancePaid:   100,
		Dues:          400,
		DateOfIssue:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	repo := &services.MockInvoiceRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Invoice, error) {
			return existing, nil
		},
	}
	service := services.NewInvoiceService(repo, testLogger())

	updated, err := service.Update(context.Background(), "inv-1", services.InvoiceInput{
		ClientName:    "Sharma Traders",
		ClientAddress: "Main Road, Pune",
		Products:      []models.Product{{Name: "Banner", Total: 800}},
		AdvancePaid:   800,
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-0001", updated.InvoiceNumber, "number carried over when not supplied")
	assert.Equal(t, 800.0, updated.BillTotal)
	assert.Equal(t, 0.0, updated.Dues)
	assert.Equal(t, existing.DateOfIssue, updated.DateOfIssue, "issue date carried over when not supplied")
}

func TestInvoiceServiceUpdate_UnknownInvoice(t *testing.T) {
	service := services.NewInvoiceService(&services.MockInvoiceRepository{}, testLogger())

	_, err := service.Update(context.Background(), "missing", services.InvoiceInput{
		Products: []models.Product{{Total: 10}},
	})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestInvoiceServiceUpdate_RejectsInvalidPayment(t *testing.T) {
	repo := &services.MockInvoiceRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Invoice, error) {
			return &models.Invoice{ID: id, InvoiceNumber: "INV-0001"}, nil
		},
	}
	service := services.NewInvoiceService(repo, testLogger())

	_, err := service.Update(context.Background(), "inv-1", services.InvoiceInput{
		Products:    []models.Product{{Total: 100}},
		AdvancePaid: -1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidPayment)
	assert.Equal(t, "Advance payment cannot be negative", err.Error())
}

func TestInvoiceServiceNextNumber_Empty(t *testing.T) {
	service := services.NewInvoiceService(&services.MockInvoiceRepository{}, testLogger())

	number, err := service.NextNumber(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "INV-0001", number)
}

func TestInvoiceServiceStats(t *testing.T) {
	repo := &services.MockInvoiceRepository{
		ListFunc: func(ctx context.Context) ([]*models.Invoice, error) {
			return []*models.Invoice{
				{BillTotal: 500, Dues: 0},
				{BillTotal: 500, Dues: 200},
				{BillTotal: 500, Dues: 500},
				// Legacy row: no payment tracking, only grandTotal
				{GrandTotal: 300, Dues: 0},
			}, nil
		},
	}
	service := services.NewInvoiceService(repo, testLogger())

	stats, err := service.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalInvoices)
	assert.Equal(t, 1800.0, stats.TotalRevenue)
	assert.Equal(t, 700.0, stats.TotalDues)
	assert.Equal(t, 2, stats.PaidCount)
	assert.Equal(t, 1, stats.PartialCount)
	assert.Equal(t, 1, stats.UnpaidCount)
}
