package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single billable line on an invoice.
type LineItem struct {
	Description string          // What was sold or billed
	Unit        decimal.Decimal // Price per unit
	Qty         uint            // Number of units
	Amount      decimal.Decimal // Unit * Qty
}

// TaxLine is one named tax amount applied to an invoice (e.g. CGST, SGST).
type TaxLine struct {
	Name   string
	Amount decimal.Decimal
}

// Invoice is a fully prepared invoice record.
//
// Amounts are exact decimals; Total is the amount the client owes for this
// invoice and is the figure all balance computations work from.
type Invoice struct {
	// Number uniquely identifies the invoice across the whole invoice set.
	Number string

	// Client is the registry key of the billed client.
	Client string

	// Date is the issue date and the chronological sort key.
	Date time.Time

	// DueDate is the payment due date; defaults to Date when absent.
	DueDate time.Time

	// Items are the billable lines, in source order.
	Items []LineItem

	Subtotal decimal.Decimal // Sum of item amounts
	Discount decimal.Decimal // Deducted from the subtotal
	Taxes    []TaxLine       // Added on top, in configured column order

	// Total = Subtotal - Discount + sum of Taxes.
	Total decimal.Decimal
}
