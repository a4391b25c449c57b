package models

import "time"

// Product is a single line item on an invoice. Width/Height/Sqft are set
// only for area-priced items (banners, flex prints).
type Product struct {
	Name     string   `json:"name" db:"name"`
	Quantity int      `json:"quantity" db:"quantity"`
	UnitCost float64  `json:"unitCost" db:"unit_cost"`
	Total    float64  `json:"total" db:"total"`
	Width    *float64 `json:"width,omitempty" db:"width"`
	Height   *float64 `json:"height,omitempty" db:"height"`
	Sqft     *float64 `json:"sqft,omitempty" db:"sqft"`
}

// Invoice represents a persisted invoice. BillTotal, AdvancePaid and Dues
// are derived by the ledger on every write; they are never edited directly.
type Invoice struct {
	ID            string    `json:"id" db:"id"`
	InvoiceNumber string    `json:"invoiceNumber" db:"invoice_number"`
	ClientName    string    `json:"clientName" db:"client_name"`
	ClientAddress string    `json:"clientAddress" db:"client_address"`
	Products      []Product `json:"products" db:"products"`
	TotalAmount   float64   `json:"totalAmount" db:"total_amount"`
	PreviousDues  float64   `json:"previousDues" db:"previous_dues"`
	GrandTotal    float64   `json:"grandTotal" db:"grand_total"`
	BillTotal     float64   `json:"billTotal" db:"bill_total"`
	AdvancePaid   float64   `json:"advancePaid" db:"advance_paid"`
	Dues          float64   `json:"dues" db:"dues"`
	DateOfIssue   time.Time `json:"dateOfIssue" db:"date_of_issue"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// InvoiceStats aggregates dashboard figures across all invoices.
type InvoiceStats struct {
	TotalInvoices int     `json:"totalInvoices"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalDues     float64 `json:"totalDues"`
	PaidCount     int     `json:"paidCount"`
	PartialCount  int     `json:"partialCount"`
	UnpaidCount   int     `json:"unpaidCount"`
}
