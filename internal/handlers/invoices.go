package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chhayaprint/billing-api/internal/ledger"
	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/chhayaprint/billing-api/internal/services"
	pkghttp "github.com/chhayaprint/billing-api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// InvoiceServiceInterface defines the interface for invoice business logic
type InvoiceServiceInterface interface {
	Create(ctx context.Context, input services.InvoiceInput) (*models.Invoice, error)
	Update(ctx context.Context, id string, input services.InvoiceInput) (*models.Invoice, error)
	Get(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context) ([]*models.Invoice, error)
	Delete(ctx context.Context, id string) error
	NextNumber(ctx context.Context) (string, error)
	Stats(ctx context.Context) (*models.InvoiceStats, error)
}

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	service InvoiceServiceInterface
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service InvoiceServiceInterface) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
	}
}

// Request/Response DTOs

// ProductInput represents a line item in an invoice request
type ProductInput struct {
	Name     string   `json:"name" validate:"required,min=1"`
	Quantity int      `json:"quantity" validate:"gte=0"`
	UnitCost float64  `json:"unitCost" validate:"gte=0"`
	Total    float64  `json:"total" validate:"gte=0"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Sqft     *float64 `json:"sqft,omitempty"`
}

// InvoiceRequest represents the request body for creating or updating
// an invoice. Derived amounts are recomputed server-side, so the body
// carries only the inputs.
type InvoiceRequest struct {
	InvoiceNumber string         `json:"invoiceNumber" validate:"omitempty,min=1,max=32"`
	ClientName    string         `json:"clientName" validate:"required,min=1"`
	ClientAddress string         `json:"clientAddress" validate:"omitempty"`
	Products      []ProductInput `json:"products" validate:"required,min=1,dive"`
	PreviousDues  float64        `json:"previousDues"`
	AdvancePaid   float64        `json:"advancePaid"`
	DateOfIssue   string         `json:"dateOfIssue" validate:"omitempty"`
}

// InvoiceResponse is an invoice plus its derived payment status
type InvoiceResponse struct {
	*models.Invoice
	PaymentStatus ledger.Status `json:"paymentStatus"`
}

// ListInvoicesResponse represents a list of invoices
type ListInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	Total    int                `json:"total"`
}

func invoiceToResponse(inv *models.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:       inv,
		PaymentStatus: ledger.PaymentStatus(inv.Dues, inv.BillTotal),
	}
}

func (req *InvoiceRequest) toInput() (services.InvoiceInput, error) {
	products := make([]models.Product, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, models.Product{
			Name:     strings.TrimSpace(p.Name),
			Quantity: p.Quantity,
			UnitCost: p.UnitCost,
			Total:    p.Total,
			Width:    p.Width,
			Height:   p.Height,
			Sqft:     p.Sqft,
		})
	}

	input := services.InvoiceInput{
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		ClientName:    strings.TrimSpace(req.ClientName),
		ClientAddress: strings.TrimSpace(req.ClientAddress),
		Products:      products,
		PreviousDues:  req.PreviousDues,
		AdvancePaid:   req.AdvancePaid,
	}

	if req.DateOfIssue != "" {
		issued, err := time.Parse("2006-01-02", req.DateOfIssue)
		if err != nil {
			issued, err = time.Parse(time.RFC3339, req.DateOfIssue)
		}
		if err != nil {
			return input, errors.New("dateOfIssue must be YYYY-MM-DD or RFC 3339")
		}
		input.DateOfIssue = issued
	}

	return input, nil
}

// RegisterRoutes registers all invoice routes with the chi router
func (h *InvoiceHandler) RegisterRoutes(router chi.Router) {
	router.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.ListInvoices)          // GET /invoices
		r.Post("/", h.CreateInvoice)        // POST /invoices
		r.Get("/stats", h.Stats)                 // GET /invoices/stats
		r.Get("/meta/next-number", h.NextNumber) // GET /invoices/meta/next-number
		r.Get("/{id}", h.GetInvoice)        // GET /invoices/{id}
		r.Put("/{id}", h.UpdateInvoice)     // PUT /invoices/{id}
		r.Delete("/{id}", h.DeleteInvoice)  // DELETE /invoices/{id}
	})
}

// ListInvoices returns all invoices, newest first
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	responses := make([]*InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, invoiceToResponse(inv))
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListInvoicesResponse{
		Invoices: responses,
		Total:    len(responses),
	})
}

// CreateInvoice creates a new invoice with server-computed totals
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidPayment):
			pkghttp.WriteUnprocessableEntity(w, err.Error())
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Invoice number already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, invoiceToResponse(created))
}

// GetInvoice retrieves an invoice by ID
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Invoice ID is required")
		return
	}

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Invoice not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, invoiceToResponse(inv))
}

// UpdateInvoice replaces an invoice's inputs and recomputes its totals
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Invoice ID is required")
		return
	}

	var req InvoiceRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input, err := req.toInput()
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Invoice not found")
		case errors.Is(err, models.ErrInvalidPayment):
			pkghttp.WriteUnprocessableEntity(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, invoiceToResponse(updated))
}

// DeleteInvoice deletes an invoice by ID
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		pkghttp.WriteBadRequest(w, "Invoice ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Invoice not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NextNumber returns the next sequential invoice number
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.NextNumber(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"invoiceNumber": number})
}

// Stats returns dashboard aggregates across all invoices
func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}
