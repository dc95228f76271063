package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"bulkinvoicer/internal/logger"
	"bulkinvoicer/pkg/models"
)

// Allocation records how much of a receipt was applied to one invoice.
// An empty Invoice number marks an unattributed advance: the receipt paid
// more than every outstanding invoice balance the client had.
type Allocation struct {
	Invoice string          `json:"invoice,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

// Advance reports whether this allocation is an advance payment rather
// than a payment against a specific invoice.
func (a Allocation) Advance() bool { return a.Invoice == "" }

// MatchedPayment is the allocation result for one receipt. Every input
// receipt produces exactly one MatchedPayment, in input order, even when
// nothing could be allocated.
type MatchedPayment struct {
	Receipt  string       `json:"receipt"`
	Invoices []Allocation `json:"invoices"`
}

// UnpaidInvoice is an invoice with a residual balance after all receipts
// have been allocated. Fully paid invoices do not appear.
type UnpaidInvoice struct {
	Number  string          `json:"number"`
	Balance decimal.Decimal `json:"balance"`
}

// MatchPayments allocates receipts against invoices for a single client,
// oldest invoice first.
//
// Both inputs must be pre-sorted ascending by date; the FIFO order is the
// business rule, not an implementation detail. Invoices without a number can
// never be paid against and are skipped with a warning.
//
// Each receipt consumes unpaid invoice balances from the head of the queue
// until its amount is exhausted; a partially covered invoice stays at the
// head for the next receipt, and any amount left over once the queue is
// empty becomes an advance allocation.
func MatchPayments(invoices []models.Invoice, receipts []models.Receipt) ([]MatchedPayment, []UnpaidInvoice) {
	log := logger.WithComponent("ledger")

	if len(invoices) == 0 && len(receipts) == 0 {
		log.Warn().Msg("No invoices or receipts to match")
		return nil, nil
	}

	unpaid := make([]UnpaidInvoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Number == "" {
			log.Warn().
				Str("client", inv.Client).
				Time("date", inv.Date).
				Msg("Invoice without number found, excluding from matching")
			continue
		}
		unpaid = append(unpaid, UnpaidInvoice{Number: inv.Number, Balance: inv.Total})
	}

	matched := make([]MatchedPayment, 0, len(receipts))
	for _, rec := range receipts {
		remaining := rec.Amount
		var allocations []Allocation

		for remaining.IsPositive() && len(unpaid) > 0 {
			head := &unpaid[0]
			if remaining.GreaterThanOrEqual(head.Balance) {
				allocations = append(allocations, Allocation{Invoice: head.Number, Amount: head.Balance})
				remaining = remaining.Sub(head.Balance)
				unpaid = unpaid[1:]
			} else {
				allocations = append(allocations, Allocation{Invoice: head.Number, Amount: remaining})
				head.Balance = head.Balance.Sub(remaining)
				remaining = decimal.Zero
			}
		}

		if remaining.IsPositive() {
			allocations = append(allocations, Allocation{Amount: remaining})
		}

		matched = append(matched, MatchedPayment{Receipt: rec.Number, Invoices: allocations})
	}

	return matched, unpaid
}

// PaymentState classifies an invoice after matching.
type PaymentState int

const (
	// PaymentStateUnpaid means receipts covered the invoice only partially,
	// or not at all, and a residual balance is outstanding.
	PaymentStateUnpaid PaymentState = iota

	// PaymentStateFullyPaid means the client's receipts cleared the invoice.
	PaymentStateFullyPaid

	// PaymentStateNoReceipts means the client never submitted a receipt, so
	// the invoice was never matched against anything. Distinct from
	// FullyPaid: the full total is still owed.
	PaymentStateNoReceipts
)

// InvoiceBalance is the post-matching balance state of one invoice.
type InvoiceBalance struct {
	State   PaymentState
	Balance decimal.Decimal // residual for Unpaid, total for NoReceipts, zero for FullyPaid
}

// Outstanding returns the amount still owed on the invoice.
func (b InvoiceBalance) Outstanding() decimal.Decimal {
	if b.State == PaymentStateFullyPaid {
		return decimal.Zero
	}
	return b.Balance
}

// MatchResult is the outcome of matching the full invoice and receipt sets.
// It is a side table keyed by document number; input records are never
// mutated, so the same records can be sliced into overlapping period views
// safely.
type MatchResult struct {
	// Balances holds the balance state per invoice number.
	Balances map[string]InvoiceBalance

	// Allocations holds the allocation list per receipt number,
	// preserving FIFO order within each receipt.
	Allocations map[string][]Allocation
}

// MatchPaymentsByClient partitions invoices and receipts by client, sorts
// each partition chronologically and runs MatchPayments per client.
//
// Clients that submitted no receipts at all have every invoice carried at
// its full total in the NoReceipts state, including when receipts exist
// only for other clients.
func MatchPaymentsByClient(invoices []models.Invoice, receipts []models.Receipt) MatchResult {
	log := logger.WithComponent("ledger")

	result := MatchResult{
		Balances:    make(map[string]InvoiceBalance),
		Allocations: make(map[string][]Allocation),
	}

	if len(invoices) == 0 && len(receipts) == 0 {
		log.Warn().Msg("No invoices or receipts to match")
		return result
	}

	if len(receipts) == 0 {
		for _, inv := range invoices {
			if inv.Number == "" {
				log.Warn().Str("client", inv.Client).Msg("Invoice without number found, excluding from matching")
				continue
			}
			result.Balances[inv.Number] = InvoiceBalance{State: PaymentStateNoReceipts, Balance: inv.Total}
		}
		return result
	}

	log.Info().
		Int("invoices", len(invoices)).
		Int("receipts", len(receipts)).
		Msg("Matching payments to invoices")

	invoicesByClient := make(map[string][]models.Invoice)
	for _, inv := range invoices {
		invoicesByClient[inv.Client] = append(invoicesByClient[inv.Client], inv)
	}
	receiptsByClient := make(map[string][]models.Receipt)
	for _, rec := range receipts {
		receiptsByClient[rec.Client] = append(receiptsByClient[rec.Client], rec)
	}

	for _, client := range sortedClientKeys(invoicesByClient, receiptsByClient) {
		clientInvoices := invoicesByClient[client]
		clientReceipts := receiptsByClient[client]

		if len(clientReceipts) == 0 {
			// Never matched anything: the full total of every invoice stands.
			for _, inv := range clientInvoices {
				if inv.Number == "" {
					log.Warn().Str("client", client).Msg("Invoice without number found, excluding from matching")
					continue
				}
				result.Balances[inv.Number] = InvoiceBalance{State: PaymentStateNoReceipts, Balance: inv.Total}
			}
			continue
		}

		// Stable sorts keep the caller's secondary ordering for same-day documents.
		sort.SliceStable(clientInvoices, func(i, j int) bool {
			return clientInvoices[i].Date.Before(clientInvoices[j].Date)
		})
		sort.SliceStable(clientReceipts, func(i, j int) bool {
			return clientReceipts[i].Date.Before(clientReceipts[j].Date)
		})

		matched, unpaid := MatchPayments(clientInvoices, clientReceipts)

		for _, payment := range matched {
			result.Allocations[payment.Receipt] = payment.Invoices
		}

		residual := make(map[string]decimal.Decimal, len(unpaid))
		for _, u := range unpaid {
			residual[u.Number] = u.Balance
		}
		for _, inv := range clientInvoices {
			if inv.Number == "" {
				continue
			}
			if balance, ok := residual[inv.Number]; ok {
				result.Balances[inv.Number] = InvoiceBalance{State: PaymentStateUnpaid, Balance: balance}
			} else {
				result.Balances[inv.Number] = InvoiceBalance{State: PaymentStateFullyPaid}
			}
		}
	}

	log.Info().Msg("Payments matched to invoices")
	return result
}

func sortedClientKeys(invoices map[string][]models.Invoice, receipts map[string][]models.Receipt) []string {
	seen := make(map[string]bool, len(invoices)+len(receipts))
	keys := make([]string, 0, len(invoices)+len(receipts))
	for client := range invoices {
		if !seen[client] {
			seen[client] = true
			keys = append(keys, client)
		}
	}
	for client := range receipts {
		if !seen[client] {
			seen[client] = true
			keys = append(keys, client)
		}
	}
	sort.Strings(keys)
	return keys
}
