package services

import (
	"context"

	"github.com/chhayaprint/billing-api/internal/models"
)

// MockInvoiceRepository implements InvoiceRepository for testing
type MockInvoiceRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.Invoice, error)
	ListFunc    func(ctx context.Context) ([]*models.Invoice, error)
	CreateFunc  func(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	UpdateFunc  func(ctx context.Context, id string, inv *models.Invoice) (*models.Invoice, error)
	DeleteFunc  func(ctx context.Context, id string) error
	CountFunc   func(ctx context.Context) (int, error)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockInvoiceRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Invoice{}, nil
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, inv)
	}
	return inv, nil
}

func (m *MockInvoiceRepository) Update(ctx context.Context, id string, inv *models.Invoice) (*models.Invoice, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, inv)
	}
	return inv, nil
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockInvoiceRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}
