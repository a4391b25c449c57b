package ledger_test

import (
	"math"
	"testing"

	"github.com/chhayaprint/billing-api/internal/ledger"
	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculatePayment_PartialPayment(t *testing.T) {
	calc := ledger.CalculatePayment(200, 180)

	assert.True(t, calc.IsValid)
	assert.Equal(t, 200.0, calc.BillTotal)
	assert.Equal(t, 180.0, calc.AdvancePaid)
	assert.Equal(t, 20.0, calc.Dues)
	assert.Empty(t, calc.ErrorMessage)
}

func TestCalculatePayment_FullPayment(t *testing.T) {
	calc := ledger.CalculatePayment(200, 200)

	assert.True(t, calc.IsValid)
	assert.Equal(t, 0.0, calc.Dues)
}

func TestCalculatePayment_NegativeAdvance(t *testing.T) {
	calc := ledger.CalculatePayment(500, -10)

	assert.False(t, calc.IsValid)
	assert.Equal(t, ledger.MsgNegativeAdvance, calc.ErrorMessage)
	assert.Equal(t, 510.0, calc.Dues)
}

func TestCalculatePayment_NegativeAdvanceRegardlessOfBill(t *testing.T) {
	for _, billTotal := range []float64{0, 1, 99.99, 100000} {
		calc := ledger.CalculatePayment(billTotal, -0.01)
		assert.False(t, calc.IsValid)
		assert.Equal(t, ledger.MsgNegativeAdvance, calc.ErrorMessage)
	}
}

func TestCalculatePayment_AdvanceExceedsTotal(t *testing.T) {
	calc := ledger.CalculatePayment(200, 250)

	assert.False(t, calc.IsValid)
	assert.Equal(t, ledger.MsgAdvanceExceeds, calc.ErrorMessage)
	assert.Equal(t, -50.0, calc.Dues)
}

func TestCalculatePayment_RoundsToTwoDecimals(t *testing.T) {
	calc := ledger.CalculatePayment(100.555, 50.115)

	assert.True(t, calc.IsValid)
	assert.Equal(t, 100.56, calc.BillTotal)
	assert.Equal(t, 50.12, calc.AdvancePaid)
	assert.Equal(t, 50.44, calc.Dues)
}

func TestCalculatePayment_FloatingPointDrift(t *testing.T) {
	// 0.1 + 0.2 style inputs must not leak drift into dues
	calc := ledger.CalculatePayment(0.3, 0.1)

	assert.True(t, calc.IsValid)
	assert.Equal(t, 0.2, calc.Dues)
}

func TestCalculatePayment_MalformedInputCoercedToZero(t *testing.T) {
	calc := ledger.CalculatePayment(math.NaN(), math.Inf(1))

	assert.True(t, calc.IsValid)
	assert.Equal(t, 0.0, calc.BillTotal)
	assert.Equal(t, 0.0, calc.AdvancePaid)
	assert.Equal(t, 0.0, calc.Dues)
}

func TestCalculatePayment_Idempotent(t *testing.T) {
	first := ledger.CalculatePayment(1234.567, 1000.001)
	second := ledger.CalculatePayment(first.BillTotal, first.AdvancePaid)

	assert.Equal(t, first.Dues, second.Dues)
	assert.Equal(t, first.BillTotal, second.BillTotal)
	assert.Equal(t, first.AdvancePaid, second.AdvancePaid)
	assert.Equal(t, first.IsValid, second.IsValid)
}

func TestProductsTotal(t *testing.T) {
	products := []models.Product{
		{Name: "Banner", Quantity: 2, UnitCost: 150, Total: 300},
		{Name: "Visiting cards", Quantity: 500, UnitCost: 0.5, Total: 250},
		{Name: "Flex print", Quantity: 1, UnitCost: 99.99, Total: 99.99},
	}

	assert.Equal(t, 649.99, ledger.ProductsTotal(products))
}

func TestProductsTotal_Empty(t *testing.T) {
	assert.Equal(t, 0.0, ledger.ProductsTotal(nil))
}

func TestProductsTotal_MalformedTotalsCountAsZero(t *testing.T) {
	products := []models.Product{
		{Name: "ok", Total: 100},
		{Name: "nan", Total: math.NaN()},
		{Name: "inf", Total: math.Inf(-1)},
	}

	assert.Equal(t, 100.0, ledger.ProductsTotal(products))
}

func TestCalculateInvoice(t *testing.T) {
	products := []models.Product{
		{Name: "Banner", Total: 300},
		{Name: "Cards", Total: 250},
	}

	totals := ledger.CalculateInvoice(products, 150, 400)

	assert.True(t, totals.IsValid)
	assert.Equal(t, 550.0, totals.ProductsTotal)
	assert.Equal(t, 150.0, totals.PreviousDues)
	assert.Equal(t, 700.0, totals.BillTotal)
	assert.Equal(t, 400.0, totals.AdvancePaid)
	assert.Equal(t, 300.0, totals.Dues)
}

func TestCalculateInvoice_AdvanceExceeds(t *testing.T) {
	totals := ledger.CalculateInvoice([]models.Product{{Total: 100}}, 0, 101)

	assert.False(t, totals.IsValid)
	assert.Equal(t, ledger.MsgAdvanceExceeds, totals.ErrorMessage)
	assert.Equal(t, -1.0, totals.Dues)
}

func TestPaymentStatus(t *testing.T) {
	tests := []struct {
		name      string
		dues      float64
		billTotal float64
		want      ledger.Status
	}{
		{"fully paid", 0, 500, ledger.StatusPaid},
		{"overpaid carry", -10, 500, ledger.StatusPaid},
		{"partial", 200, 500, ledger.StatusPartial},
		{"unpaid", 500, 500, ledger.StatusUnpaid},
		{"zero bill zero dues", 0, 0, ledger.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.PaymentStatus(tt.dues, tt.billTotal))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₹1250.00", ledger.FormatAmount(1250, ""))
	assert.Equal(t, "$99.90", ledger.FormatAmount(99.9, "$"))
	assert.Equal(t, "₹0.00", ledger.FormatAmount(math.NaN(), ""))
}
