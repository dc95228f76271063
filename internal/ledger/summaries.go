package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bulkinvoicer/pkg/models"
)

// ClientSummary aggregates one client's activity for a reporting period.
// Counts and totals are the delta between the close and open views, so
// they cover exactly the reporting window while the balances reflect full
// history at the window edges.
type ClientSummary struct {
	Client         models.Client   `json:"-"`
	Name           string          `json:"client"`
	DisplayName    string          `json:"client_display_name"`
	InvoiceCount   int             `json:"invoice_count"`
	ReceiptCount   int             `json:"receipt_count"`
	InvoiceTotal   decimal.Decimal `json:"invoice_total"`
	ReceiptTotal   decimal.Decimal `json:"receipt_total"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// Status buckets a client by the sign of its closing balance.
type Status string

const (
	StatusOutstanding Status = "Outstanding" // closing balance > 0, client owes
	StatusAdvance     Status = "Advance"     // closing balance < 0, client overpaid
	StatusSettled     Status = "Settled"     // closing balance == 0
)

// StatusOf classifies a closing balance.
func StatusOf(closing decimal.Decimal) Status {
	switch {
	case closing.IsPositive():
		return StatusOutstanding
	case closing.IsNegative():
		return StatusAdvance
	default:
		return StatusSettled
	}
}

// StatusBreakdown counts clients and sums closing balances per status bucket.
type StatusBreakdown struct {
	Status  Status          `json:"status"`
	Clients int             `json:"clients"`
	Amount  decimal.Decimal `json:"amount"`
}

// KeyFigure is one headline line of a summary report.
type KeyFigure struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Note  string          `json:"note,omitempty"`
}

// SummaryReport is the assembled summary for one reporting configuration,
// consumed by the rendering layer and the summary command.
type SummaryReport struct {
	Period          string             `json:"period,omitempty"`
	Generated       string             `json:"generated"`
	KeyFigures      []KeyFigure        `json:"key_figures"`
	StatusBreakdown []StatusBreakdown  `json:"status_breakdown"`
	MonthlySummary  []AggregateBalance `json:"monthly_summary"`
	ClientSummaries []ClientSummary    `json:"client_summaries"`
}

type clientTally struct {
	count int
	total decimal.Decimal
}

// BuildClientSummaries aggregates invoices and receipts per client from the
// open and close period views. Results are sorted descending by closing
// balance, then invoice total, so the largest debtors come first.
func BuildClientSummaries(
	clients []models.Client,
	invoicesOpen, invoicesClose []models.Invoice,
	receiptsOpen, receiptsClose []models.Receipt,
) []ClientSummary {
	invOpen := tallyInvoices(invoicesOpen)
	invClose := tallyInvoices(invoicesClose)
	recOpen := tallyReceipts(receiptsOpen)
	recClose := tallyReceipts(receiptsClose)

	summaries := make([]ClientSummary, 0, len(clients))
	for _, client := range clients {
		io := invOpen[client.Name]
		ic := invClose[client.Name]
		ro := recOpen[client.Name]
		rc := recClose[client.Name]

		summaries = append(summaries, ClientSummary{
			Client:         client,
			Name:           client.Name,
			DisplayName:    client.Label(),
			InvoiceCount:   ic.count - io.count,
			ReceiptCount:   rc.count - ro.count,
			InvoiceTotal:   ic.total.Sub(io.total),
			ReceiptTotal:   rc.total.Sub(ro.total),
			OpeningBalance: io.total.Sub(ro.total),
			ClosingBalance: ic.total.Sub(rc.total),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].ClosingBalance.Equal(summaries[j].ClosingBalance) {
			return summaries[i].ClosingBalance.GreaterThan(summaries[j].ClosingBalance)
		}
		return summaries[i].InvoiceTotal.GreaterThan(summaries[j].InvoiceTotal)
	})

	return summaries
}

// BuildStatusBreakdown groups client summaries into Outstanding, Advance
// and Settled buckets. Buckets with no clients are omitted.
func BuildStatusBreakdown(summaries []ClientSummary) []StatusBreakdown {
	buckets := make(map[Status]*StatusBreakdown, 3)
	for _, summary := range summaries {
		status := StatusOf(summary.ClosingBalance)
		b := buckets[status]
		if b == nil {
			b = &StatusBreakdown{Status: status, Amount: decimal.Zero}
			buckets[status] = b
		}
		b.Clients++
		b.Amount = b.Amount.Add(summary.ClosingBalance)
	}

	out := make([]StatusBreakdown, 0, len(buckets))
	for _, status := range []Status{StatusOutstanding, StatusAdvance, StatusSettled} {
		if b := buckets[status]; b != nil {
			out = append(out, *b)
		}
	}
	return out
}

// BuildSummaryReport assembles the overall report: headline key figures
// summed over all clients, the status breakdown, the monthly rollup, and
// the client summaries with all-zero clients filtered out.
func BuildSummaryReport(
	dateFormat string,
	periodText string,
	summaries []ClientSummary,
	breakdown []StatusBreakdown,
	monthly []AggregateBalance,
) SummaryReport {
	invoiceCount := 0
	receiptCount := 0
	invoiceTotal := decimal.Zero
	receiptTotal := decimal.Zero
	openingBalance := decimal.Zero
	closingBalance := decimal.Zero

	active := make([]ClientSummary, 0, len(summaries))
	for _, s := range summaries {
		invoiceCount += s.InvoiceCount
		receiptCount += s.ReceiptCount
		invoiceTotal = invoiceTotal.Add(s.InvoiceTotal)
		receiptTotal = receiptTotal.Add(s.ReceiptTotal)
		openingBalance = openingBalance.Add(s.OpeningBalance)
		closingBalance = closingBalance.Add(s.ClosingBalance)

		if s.OpeningBalance.IsZero() && s.ClosingBalance.IsZero() &&
			s.InvoiceTotal.IsZero() && s.ReceiptTotal.IsZero() {
			continue
		}
		active = append(active, s)
	}

	return SummaryReport{
		Period:    periodText,
		Generated: fmt.Sprintf("Generated: %s", time.Now().Format(dateFormat)),
		KeyFigures: []KeyFigure{
			{Label: "Opening Balance", Value: openingBalance, Note: balanceNote(openingBalance)},
			{Label: "Total Invoiced", Value: invoiceTotal, Note: fmt.Sprintf("(%d invoices)", invoiceCount)},
			{Label: "Total Received", Value: receiptTotal, Note: fmt.Sprintf("(%d receipts)", receiptCount)},
			{Label: "Closing Balance", Value: closingBalance, Note: balanceNote(closingBalance)},
		},
		StatusBreakdown: breakdown,
		MonthlySummary:  monthly,
		ClientSummaries: active,
	}
}

func balanceNote(balance decimal.Decimal) string {
	switch {
	case balance.IsPositive():
		return "(Due)"
	case balance.IsNegative():
		return "(Overpaid)"
	default:
		return ""
	}
}

func tallyInvoices(invoices []models.Invoice) map[string]clientTally {
	tallies := make(map[string]clientTally)
	for _, inv := range invoices {
		t := tallies[inv.Client]
		t.count++
		t.total = t.total.Add(inv.Total)
		tallies[inv.Client] = t
	}
	return tallies
}

func tallyReceipts(receipts []models.Receipt) map[string]clientTally {
	tallies := make(map[string]clientTally)
	for _, rec := range receipts {
		t := tallies[rec.Client]
		t.count++
		t.total = t.total.Add(rec.Amount)
		tallies[rec.Client] = t
	}
	return tallies
}
