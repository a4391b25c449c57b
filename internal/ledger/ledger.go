// Package ledger is the single source of truth for bill, advance and dues
// arithmetic. Every write path (create, edit) and every render path must go
// through these functions so the persisted record, the dashboard and the
// printed invoice can never disagree on amounts.
package ledger

import (
	"fmt"
	"math"

	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/shopspring/decimal"
)

// Validation messages surfaced to the user verbatim.
const (
	MsgNegativeAdvance = "Advance payment cannot be negative"
	MsgAdvanceExceeds  = "Advance payment cannot be greater than the total bill amount"
)

// DefaultCurrency is the symbol used when formatting amounts for display.
const DefaultCurrency = "₹"

// Status classifies how much of a bill has been settled.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusUnpaid  Status = "unpaid"
)

// Calculation is the result of a bill/advance computation. The numeric
// fields are populated even when IsValid is false so callers can echo the
// rejected values back to the user.
type Calculation struct {
	BillTotal    float64 `json:"billTotal"`
	AdvancePaid  float64 `json:"advancePaid"`
	Dues         float64 `json:"dues"`
	IsValid      bool    `json:"isValid"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// InvoiceTotals is the full breakdown for an invoice: products total,
// carry-over dues, and the payment calculation on top of them.
type InvoiceTotals struct {
	ProductsTotal float64 `json:"productsTotal"`
	PreviousDues  float64 `json:"previousDues"`
	BillTotal     float64 `json:"billTotal"`
	AdvancePaid   float64 `json:"advancePaid"`
	Dues          float64 `json:"dues"`
	IsValid       bool    `json:"isValid"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
}

// sanitize coerces malformed numeric input to zero. JSON decoding already
// rejects non-numeric tokens, so the remaining hazards are NaN and ±Inf
// smuggled in through arithmetic upstream.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

// ProductsTotal sums the Total field of each product, rounded to 2 decimal
// places. Malformed values count as zero; the function always succeeds.
func ProductsTotal(products []models.Product) float64 {
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(decimal.NewFromFloat(sanitize(p.Total)))
	}
	out, _ := sum.Round(2).Float64()
	return out
}

// CalculatePayment validates and computes payment details.
//
// Business rules:
//   - Dues = BillTotal - AdvancePaid
//   - AdvancePaid cannot be negative
//   - AdvancePaid cannot exceed BillTotal
//
// The computation is pure and never fails; invalid inputs produce a result
// with IsValid=false and a human-readable message. Callers must check
// IsValid before persisting.
func CalculatePayment(billTotal, advancePaid float64) Calculation {
	bt := round2(sanitize(billTotal))
	ap := round2(sanitize(advancePaid))
	dues := round2(bt - ap)

	calc := Calculation{
		BillTotal:   bt,
		AdvancePaid: ap,
		Dues:        dues,
	}

	if ap < 0 {
		calc.ErrorMessage = MsgNegativeAdvance
		return calc
	}
	if ap > bt {
		calc.ErrorMessage = MsgAdvanceExceeds
		return calc
	}

	calc.IsValid = true
	return calc
}

// CalculateInvoice composes ProductsTotal and CalculatePayment:
// BillTotal = products total + previous dues, then the payment breakdown.
func CalculateInvoice(products []models.Product, previousDues, advancePaid float64) InvoiceTotals {
	productsTotal := ProductsTotal(products)
	prev := sanitize(previousDues)
	billTotal := round2(productsTotal + prev)

	payment := CalculatePayment(billTotal, advancePaid)

	return InvoiceTotals{
		ProductsTotal: productsTotal,
		PreviousDues:  prev,
		BillTotal:     payment.BillTotal,
		AdvancePaid:   payment.AdvancePaid,
		Dues:          payment.Dues,
		IsValid:       payment.IsValid,
		ErrorMessage:  payment.ErrorMessage,
	}
}

// PaymentStatus classifies a bill by its remaining dues. A zero bill with
// zero dues is paid; it can never reach the unpaid branch.
func PaymentStatus(dues, billTotal float64) Status {
	if dues <= 0 {
		return StatusPaid
	}
	if dues < billTotal {
		return StatusPartial
	}
	return StatusUnpaid
}

// FormatAmount renders an amount as a currency string with fixed two
// decimals, e.g. "₹1250.00".
func FormatAmount(amount float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return fmt.Sprintf("%s%.2f", currency, sanitize(amount))
}
