package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chhayaprint/billing-api/internal/handlers"
	"github.com/chhayaprint/billing-api/internal/ledger"
	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/chhayaprint/billing-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-0001",
		ClientName:    "Sharma Traders",
		ClientAddress: "Main Road, Pune",
		Products:      []models.Product{{Name: "Flex banner", Quantity: 1, UnitCost: 550, Total: 550}},
		TotalAmount:   550,
		PreviousDues:  150,
		GrandTotal:    700,
		BillTotal:     700,
		AdvancePaid:   400,
		Dues:          300,
		DateOfIssue:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sampleRequest() handlers.InvoiceRequest {
	return handlers.InvoiceRequest{
		ClientName:    "Sharma Traders",
		ClientAddress: "Main Road, Pune",
		Products: []handlers.ProductInput{
			{Name: "Flex banner", Quantity: 1, UnitCost: 550, Total: 550},
		},
		PreviousDues: 150,
		AdvancePaid:  400,
	}
}

func TestCreateInvoice_Success(t *testing.T) {
	var received services.InvoiceInput
	mockService := &handlers.MockInvoiceService{
		CreateFunc: func(ctx context.Context, input services.InvoiceInput) (*models.Invoice, error) {
			received = input
			return sampleInvoice(), nil
		},
	}

	handler := handlers.NewInvoiceHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/invoices", sampleRequest())

	w := httptest.NewRecorder()
	handler.CreateInvoice(w, req)

	var resp handlers.InvoiceResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "INV-0001", resp.InvoiceNumber)
	assert.Equal(t, ledger.StatusPartial, resp.PaymentStatus)
	assert.Equal(t, "Sharma Traders", received.ClientName)
	assert.Equal(t, 400.0, received.AdvancePaid)
}

func TestCreateInvoice_InvalidPayment(t *testing.T) {
	mockService := &handlers.MockInvoiceService{
		CreateFunc: func(ctx context.Context, input services.InvoiceInput) (*models.Invoice, error) {
			return nil, &services.PaymentValidationError{Message: ledger.MsgAdvanceExceeds}
		},
	}

	handler := handlers.NewInvoiceHandler(mockService)
	body := sampleRequest()
	body.AdvancePaid = 9999
	req := handlers.NewTestRequest(t, "POST", "/invoices", body)

	w := httptest.NewRecorder()
	handler.CreateInvoice(w, req)

	handlers.AssertErrorResponse(t, w, 422, "validation_failed")
}

func TestCreateInvoice_MissingProducts(t *testing.T) {
	handler := handlers.NewInvoiceHandler(&handlers.MockInvoiceService{})
	body := sampleRequest()
	body.Products = nil
	req := handlers.NewTestRequest(t, "POST", "/invoices", body)

	w := httptest.NewRecorder()
	handler.CreateInvoice(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestCreateInvoice_BadIssueDate(t *testing.T) {
	handler := handlers.NewInvoiceHandler(&handlers.MockInvoiceService{})
	body := sampleRequest()
	body.DateOfIssue = "01/03/2025"
	req := handlers.NewTestRequest(t, "POST", "/invoices", body)

	w := httptest.NewRecorder()
	handler.CreateInvoice(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestGetInvoice_Success(t *testing.T) {
	mockService := &handlers.MockInvoiceService{
		GetFunc: func(ctx context.Context, id string) (*models.Invoice, error) {
			require.Equal(t, "inv-1", id)
			return sampleInvoice(), nil
		},
	}

	handler := handlers.NewInvoiceHandler(mockService)
	req := handlers.WithChiIDFromURL(handlers.NewTestRequest(t, "GET", "/invoices/inv-1", nil))

	w := httptest.NewRecorder()
	handler.GetInvoice(w, req)

	var resp handlers.InvoiceResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "inv-1", resp.ID)
	assert.Equal(t, 300.0, resp.Dues)
}

func TestGetInvoice_NotFound(t *testing.T) {
	handler := handlers.NewInvoiceHandler(&handlers.MockInvoiceService{})
	req := handlers.WithChiIDFromURL(handlers.NewTestRequest(t, "GET", "/invoices/missing", nil))

	w := httptest.NewRecorder()
	handler.GetInvoice(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestListInvoices(t *testing.T) {
	mockService := &handlers.MockInvoiceService{
		ListFunc: func(ctx context.Context) ([]*models.Invoice, error) {
			paid := sampleInvoice()
			paid.ID = "inv-2"
			paid.AdvancePaid = 700
			paid.Dues = 0
			return []*models.Invoice{sampleInvoice(), paid}, nil
		},
	}

	handler := handlers.NewInvoiceHandler(mockService)
	req := handlers.NewTestRequest(t, "GET", "/invoices", nil)

	w := httptest.NewRecorder()
	handler.ListInvoices(w, req)

	var resp handlers.ListInvoicesResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, ledger.StatusPartial, resp.Invoices[0].PaymentStatus)
	assert.Equal(t, ledger.StatusPaid, resp.Invoices[1].PaymentStatus)
}

func TestUpdateInvoice_Success(t *testing.T) {
	mockService := &handlers.MockInvoiceService{
		UpdateFunc: func(ctx context.Context, id string, input services.InvoiceInput) (*models.Invoice, error) {
			inv := sampleInvoice()
			inv.AdvancePaid = 700
			inv.Dues = 0
			return inv, nil
		},
	}

	handler := handlers.NewInvoiceHandler(mockService)
	body := sampleRequest()
	body.AdvancePaid = 700
	req := handlers.WithChiIDFromURL(handlers.NewTestRequest(t, "PUT", "/invoices/inv-1", body))

	w := httptest.NewRecorder()
	handler.UpdateInvoice(w, req)

	var resp handlers.InvoiceResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, ledger.StatusPaid, resp.PaymentStatus)
}

func TestUpdateInvoice_NotFound(t *testing.T) {
	handler := handlers.NewInvoiceHandler(&handlers.MockInvoiceService{})
	req := handlers.WithChiIDFromURL(handlers.NewTestRequest(t, "PUT", "/invoices/missing", sampleRequest()))

	w := httptest.NewRecorder()
	handler.UpdateInvoice(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestDeleteInvoice_Success(t *testing.T) {
	mockService := &handlers.MockInvoiceService{
		DeleteFunc: func(ctx context.Context, id string) error { return nil },
	}

	handler := handlers.NewInvoiceHandler(mockService)
	req := handlers.WithChiIDFromURL(handlers.NewTestRequest(t, "DELETE", "/invoices/inv-1", nil))

	w := httptest.NewRecorder()
	handler.DeleteInvoice(w, req)

	assert.Equal(t, 204, w.Code)
}

func TestDeleteInvoice_NotFound(t *testing.T) {
	handler := handlers.NewInvoiceHandler(&handlers.MockInvoiceService{})
	req := handlers.WithChiIDFromURL(handlers.NewTestRequest(t, "DELETE", "/invoices/missing", nil))

	w := httptest.NewRecorder()
	handler.DeleteInvoice(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestNextNumber(t *testing.T) {
	mockService := &handlers.MockInvoiceService{
		NextNumberFunc: func(ctx context.Context) (string, error) { return "INV-0042", nil },
	}

	handler := handlers.NewInvoiceHandler(mockService)
	req := handlers.NewTestRequest(t, "GET", "/invoices/meta/next-number", nil)

	w := httptest.NewRecorder()
	handler.NextNumber(w, req)

	var resp map[string]string
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "INV-0042", resp["invoiceNumber"])
}

func TestStats(t *testing.T) {
	mockService := &handlers.MockInvoiceService{
		StatsFunc: func(ctx context.Context) (*models.InvoiceStats, error) {
			return &models.InvoiceStats{
				TotalInvoices: 3,
				TotalRevenue:  1800,
				TotalDues:     700,
				PaidCount:     1,
				PartialCount:  1,
				UnpaidCount:   1,
			}, nil
		},
	}

	handler := handlers.NewInvoiceHandler(mockService)
	req := handlers.NewTestRequest(t, "GET", "/invoices/stats", nil)

	w := httptest.NewRecorder()
	handler.Stats(w, req)

	var resp models.InvoiceStats
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 3, resp.TotalInvoices)
	assert.Equal(t, 1800.0, resp.TotalRevenue)
}
