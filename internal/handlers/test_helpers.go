package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chhayaprint/billing-api/internal/auth"
	"github.com/chhayaprint/billing-api/internal/guard"
	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/chhayaprint/billing-api/internal/services"
	pkghttp "github.com/chhayaprint/billing-api/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext adds admin session claims to the request context for
// testing endpoints behind RequireAdmin
func WithSessionContext(req *http.Request) *http.Request {
	claims := &auth.SessionClaims{Role: auth.AdminRole}
	ctx := context.WithValue(req.Context(), auth.SessionContextKey, claims)
	return req.WithContext(ctx)
}

// WithChiRouteContext injects chi URL parameters into the request context
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithChiIDFromURL sets the last URL path segment as the chi "id" parameter
func WithChiIDFromURL(r *http.Request) *http.Request {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if len(parts) >= 2 {
		return WithChiRouteContext(r, map[string]string{
			"id": parts[len(parts)-1],
		})
	}
	return r
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc      func(ctx context.Context, code, ip string) (*services.LoginResult, error)
	CheckBlockFunc func(ctx context.Context, ip string) (guard.BlockStatus, error)
	UnlockFunc     func(ctx context.Context, key, ip string) error
	VerifyFunc     func(token string) (*auth.SessionClaims, error)
}

func (m *MockAuthService) Login(ctx context.Context, code, ip string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, code, ip)
	}
	return &services.LoginResult{Token: "token"}, nil
}

func (m *MockAuthService) CheckBlock(ctx context.Context, ip string) (guard.BlockStatus, error) {
	if m.CheckBlockFunc != nil {
		return m.CheckBlockFunc(ctx, ip)
	}
	return guard.BlockStatus{AttemptsLeft: 3}, nil
}

func (m *MockAuthService) Unlock(ctx context.Context, key, ip string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, key, ip)
	}
	return nil
}

func (m *MockAuthService) Verify(token string) (*auth.SessionClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	return nil, models.ErrUnauthorized
}

// MockInvoiceService implements InvoiceServiceInterface for testing
type MockInvoiceService struct {
	CreateFunc     func(ctx context.Context, input services.InvoiceInput) (*models.Invoice, error)
	UpdateFunc     func(ctx context.Context, id string, input services.InvoiceInput) (*models.Invoice, error)
	GetFunc        func(ctx context.Context, id string) (*models.Invoice, error)
	ListFunc       func(ctx context.Context) ([]*models.Invoice, error)
	DeleteFunc     func(ctx context.Context, id string) error
	NextNumberFunc func(ctx context.Context) (string, error)
	StatsFunc      func(ctx context.Context) (*models.InvoiceStats, error)
}

func (m *MockInvoiceService) Create(ctx context.Context, input services.InvoiceInput) (*models.Invoice, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return &models.Invoice{}, nil
}

func (m *MockInvoiceService) Update(ctx context.Context, id string, input services.InvoiceInput) (*models.Invoice, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, input)
	}
	return nil, models.ErrNotFound
}

func (m *MockInvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockInvoiceService) List(ctx context.Context) ([]*models.Invoice, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Invoice{}, nil
}

func (m *MockInvoiceService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return models.ErrNotFound
}

func (m *MockInvoiceService) NextNumber(ctx context.Context) (string, error) {
	if m.NextNumberFunc != nil {
		return m.NextNumberFunc(ctx)
	}
	return "INV-0001", nil
}

func (m *MockInvoiceService) Stats(ctx context.Context) (*models.InvoiceStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.InvoiceStats{}, nil
}
