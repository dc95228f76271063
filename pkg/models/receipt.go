package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a payment received from a client.
type Receipt struct {
	// Number uniquely identifies the receipt across the whole receipt set.
	Number string

	// Client is the registry key of the paying client.
	Client string

	// Date is the payment date and the chronological sort key.
	Date time.Time

	// Amount is the exact decimal amount received.
	Amount decimal.Decimal

	// PaymentMode describes how the payment was made (cash, UPI, bank transfer).
	PaymentMode string

	// Reference is an optional external transaction reference.
	Reference string
}
