package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bulkinvoicer/pkg/models"
)

// TransactionType distinguishes ledger entries.
type TransactionType string

const (
	TransactionInvoice TransactionType = "Invoice"
	TransactionReceipt TransactionType = "Receipt"
)

// Transaction is one entry of a client's chronological ledger: invoices
// carry their total as a positive amount, receipts their amount negated.
// Balance is the running per-client sum.
type Transaction struct {
	Date      time.Time       `json:"date"`
	Client    string          `json:"client"`
	Type      TransactionType `json:"type"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
}

// BuildClientTransactions merges the close views of invoices and receipts
// into a date-sorted ledger with a running balance per client. The running
// balance is computed over the full close history before the [start, end]
// window filter is applied, so a window never resets it. Zero bounds are
// open-ended. Same-day entries keep invoices before receipts.
func BuildClientTransactions(start, end time.Time, invoicesClose []models.Invoice, receiptsClose []models.Receipt) []Transaction {
	entries := make([]Transaction, 0, len(invoicesClose)+len(receiptsClose))
	for _, inv := range invoicesClose {
		entries = append(entries, Transaction{
			Date:      inv.Date,
			Client:    inv.Client,
			Type:      TransactionInvoice,
			Reference: inv.Number,
			Amount:    inv.Total,
		})
	}
	for _, rec := range receiptsClose {
		entries = append(entries, Transaction{
			Date:      rec.Date,
			Client:    rec.Client,
			Type:      TransactionReceipt,
			Reference: rec.Number,
			Amount:    rec.Amount.Neg(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	running := make(map[string]decimal.Decimal)
	for i := range entries {
		balance, ok := running[entries[i].Client]
		if !ok {
			balance = decimal.Zero
		}
		balance = balance.Add(entries[i].Amount)
		running[entries[i].Client] = balance
		entries[i].Balance = balance
	}

	out := make([]Transaction, 0, len(entries))
	for _, entry := range entries {
		if !start.IsZero() && entry.Date.Before(start) {
			continue
		}
		if !end.IsZero() && entry.Date.After(end) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
