// Package generate drives the whole pipeline: workbook in, matched
// ledger, PDFs out.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bulkinvoicer/internal/config"
	"bulkinvoicer/internal/ledger"
	"bulkinvoicer/internal/logger"
	"bulkinvoicer/internal/pdf"
	"bulkinvoicer/internal/workbook"
	"bulkinvoicer/pkg/models"
)

// Run reads the source workbook, matches payments and produces every
// configured output.
func Run(cfg *config.Config) error {
	log := logger.WithComponent("generate")
	log.Info().Msg("Starting the generation process")

	wb, err := workbook.Read(cfg.Excel.Filepath)
	if err != nil {
		return err
	}

	invoices, err := workbook.BuildInvoices(cfg, wb.Invoices)
	if err != nil {
		return err
	}
	receipts, err := workbook.BuildReceipts(cfg, wb.Receipts)
	if err != nil {
		return err
	}
	clients := workbook.BuildClients(wb.Clients)

	match := ledger.MatchPaymentsByClient(invoices, receipts)

	keys := make([]string, 0, len(cfg.Output))
	for key := range cfg.Output {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		log.Info().Str("output", key).Msg("Generating output")
		if err := runOutput(cfg, key, cfg.Output[key], invoices, receipts, clients, match); err != nil {
			return fmt.Errorf("output %q: %w", key, err)
		}
	}

	log.Info().Int("outputs", len(keys)).Msg("Generation finished")
	return nil
}

// BuildReport computes the summary report of one configured output
// without rendering any PDF.
func BuildReport(cfg *config.Config, key string) (ledger.SummaryReport, error) {
	out, ok := cfg.Output[key]
	if !ok {
		return ledger.SummaryReport{}, fmt.Errorf("no output named %q in configuration", key)
	}

	wb, err := workbook.Read(cfg.Excel.Filepath)
	if err != nil {
		return ledger.SummaryReport{}, err
	}
	invoices, err := workbook.BuildInvoices(cfg, wb.Invoices)
	if err != nil {
		return ledger.SummaryReport{}, err
	}
	receipts, err := workbook.BuildReceipts(cfg, wb.Receipts)
	if err != nil {
		return ledger.SummaryReport{}, err
	}
	clients := workbook.BuildClients(wb.Clients)

	period, err := ledger.ReportingPeriodText(cfg.Invoice.DateFormat, out.Start, out.End)
	if err != nil {
		return ledger.SummaryReport{}, err
	}

	frames := ledger.SlicePeriod(invoices, receipts, out.Start, out.End)

	registry := make(map[string]models.Client, len(clients))
	for _, client := range clients {
		registry[client.Name] = client
	}
	clientsClose := consolidateClients(registry, frames.InvoicesClose, frames.ReceiptsClose)

	summaries := ledger.BuildClientSummaries(clientsClose,
		frames.InvoicesOpen, frames.InvoicesClose,
		frames.ReceiptsOpen, frames.ReceiptsClose)
	breakdown := ledger.BuildStatusBreakdown(summaries)

	start, end := ledger.NormalizePeriod(out.Start, out.End)
	balanceRows := ledger.ComputeMonthlyClientBalances(start, end,
		frames.InvoicesClose, frames.ReceiptsClose, clientsClose)
	aggregated := ledger.SummarizeBalanceData(balanceRows)

	return ledger.BuildSummaryReport(cfg.Invoice.DateFormat, period, summaries, breakdown, aggregated), nil
}

func runOutput(
	cfg *config.Config,
	key string,
	out config.OutputConfig,
	invoices []models.Invoice,
	receipts []models.Receipt,
	clients []models.Client,
	match ledger.MatchResult,
) error {
	period, err := ledger.ReportingPeriodText(cfg.Invoice.DateFormat, out.Start, out.End)
	if err != nil {
		return err
	}

	frames := ledger.SlicePeriod(invoices, receipts, out.Start, out.End)

	registry := make(map[string]models.Client, len(clients))
	for _, client := range clients {
		registry[client.Name] = client
	}
	clientsClose := consolidateClients(registry, frames.InvoicesClose, frames.ReceiptsClose)

	var (
		summaries   []ledger.ClientSummary
		balanceRows []ledger.MonthlyBalance
		report      ledger.SummaryReport
		ledgerStart time.Time
		ledgerEnd   time.Time
	)
	if out.IncludeSummary {
		summaries = ledger.BuildClientSummaries(clientsClose,
			frames.InvoicesOpen, frames.InvoicesClose,
			frames.ReceiptsOpen, frames.ReceiptsClose)
		breakdown := ledger.BuildStatusBreakdown(summaries)

		ledgerStart, ledgerEnd = ledger.NormalizePeriod(out.Start, out.End)
		balanceRows = ledger.ComputeMonthlyClientBalances(ledgerStart, ledgerEnd,
			frames.InvoicesClose, frames.ReceiptsClose, clientsClose)
		aggregated := ledger.SummarizeBalanceData(balanceRows)

		report = ledger.BuildSummaryReport(cfg.Invoice.DateFormat, period, summaries, breakdown, aggregated)
	}

	if err := os.MkdirAll(filepath.Dir(out.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	switch out.Type {
	case config.OutputCombined:
		return writeCombined(cfg, out, registry, frames, match, report)
	case config.OutputIndividual:
		return writeIndividual(cfg, out, registry, frames, match, report)
	case config.OutputClients:
		return writeClients(cfg, out, registry, clientsClose, frames, match, report,
			period, summaries, balanceRows, ledgerStart, ledgerEnd)
	default:
		return fmt.Errorf("%w: output %q has type %q", config.ErrUnknownOutputType, key, out.Type)
	}
}

// writeCombined renders one PDF holding the optional summary followed
// by every invoice and receipt of the reporting window.
func writeCombined(
	cfg *config.Config,
	out config.OutputConfig,
	registry map[string]models.Client,
	frames ledger.PeriodFrames,
	match ledger.MatchResult,
	report ledger.SummaryReport,
) error {
	r := pdf.New(cfg, out.IncludeSummary)
	if out.IncludeSummary {
		r.CombinedSummary(report)
	}
	for _, inv := range frames.InvoicesReport {
		r.Invoice(inv, clientFor(registry, inv.Client))
	}
	for _, rec := range frames.ReceiptsReport {
		r.Receipt(rec, clientFor(registry, rec.Client), match.Allocations[rec.Number])
	}
	if err := r.Err(); err != nil {
		return err
	}
	return r.Output(out.Path)
}

// writeIndividual renders one PDF per invoice and receipt, fanned out
// across workers. The path must carry a {NUMBER} placeholder; the
// optional summary lands in the "summary" slot.
func writeIndividual(
	cfg *config.Config,
	out config.OutputConfig,
	registry map[string]models.Client,
	frames ledger.PeriodFrames,
	match ledger.MatchResult,
	report ledger.SummaryReport,
) error {
	if out.IncludeSummary {
		r := pdf.New(cfg, true)
		r.CombinedSummary(report)
		if err := r.Err(); err != nil {
			return err
		}
		if err := r.Output(numberPath(out.Path, "summary")); err != nil {
			return err
		}
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, inv := range frames.InvoicesReport {
		inv := inv
		g.Go(func() error {
			r := pdf.New(cfg, false)
			r.Invoice(inv, clientFor(registry, inv.Client))
			if err := r.Err(); err != nil {
				return err
			}
			return r.Output(numberPath(out.Path, inv.Number))
		})
	}
	for _, rec := range frames.ReceiptsReport {
		rec := rec
		g.Go(func() error {
			r := pdf.New(cfg, false)
			r.Receipt(rec, clientFor(registry, rec.Client), match.Allocations[rec.Number])
			if err := r.Err(); err != nil {
				return err
			}
			return r.Output(numberPath(out.Path, rec.Number))
		})
	}

	return g.Wait()
}

// writeClients renders one PDF per client: account statement first
// when summaries are on, then the client's invoices and receipts. The
// path must carry a {CLIENT} placeholder.
func writeClients(
	cfg *config.Config,
	out config.OutputConfig,
	registry map[string]models.Client,
	clientsClose []models.Client,
	frames ledger.PeriodFrames,
	match ledger.MatchResult,
	report ledger.SummaryReport,
	period string,
	summaries []ledger.ClientSummary,
	balanceRows []ledger.MonthlyBalance,
	ledgerStart, ledgerEnd time.Time,
) error {
	var transactions []ledger.Transaction
	if out.IncludeSummary {
		r := pdf.New(cfg, true)
		r.CombinedSummary(report)
		if err := r.Err(); err != nil {
			return err
		}
		if err := r.Output(clientPath(out.Path, "summary")); err != nil {
			return err
		}

		transactions = ledger.BuildClientTransactions(ledgerStart, ledgerEnd,
			frames.InvoicesClose, frames.ReceiptsClose)
	}

	summaryByClient := make(map[string]ledger.ClientSummary, len(summaries))
	for _, s := range summaries {
		summaryByClient[s.Name] = s
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, client := range clientsClose {
		client := client
		g.Go(func() error {
			r := pdf.New(cfg, out.IncludeSummary)

			if out.IncludeSummary {
				summary := summaryByClient[client.Name]
				generated := "Generated: " + time.Now().Format(cfg.Invoice.DateFormat)
				r.ClientStatement(client, period, generated,
					statementFigures(summary),
					clientMonths(balanceRows, client.Name),
					clientTransactions(transactions, client.Name),
					summary.ClosingBalance)
			}

			for _, inv := range frames.InvoicesReport {
				if inv.Client == client.Name {
					r.Invoice(inv, client)
				}
			}
			for _, rec := range frames.ReceiptsReport {
				if rec.Client == client.Name {
					r.Receipt(rec, client, match.Allocations[rec.Number])
				}
			}

			if err := r.Err(); err != nil {
				return err
			}
			return r.Output(clientPath(out.Path, client.Name))
		})
	}

	return g.Wait()
}

// statementFigures builds the headline numbers of one client's
// statement.
func statementFigures(summary ledger.ClientSummary) []ledger.KeyFigure {
	return []ledger.KeyFigure{
		{Label: "Opening Balance", Value: summary.OpeningBalance, Note: balanceNote(summary.OpeningBalance)},
		{Label: "Total Billed", Value: summary.InvoiceTotal, Note: fmt.Sprintf("(%d invoices)", summary.InvoiceCount)},
		{Label: "Total Paid", Value: summary.ReceiptTotal, Note: fmt.Sprintf("(%d receipts)", summary.ReceiptCount)},
		{Label: "Closing Balance", Value: summary.ClosingBalance, Note: balanceNote(summary.ClosingBalance)},
	}
}

func balanceNote(balance decimal.Decimal) string {
	switch {
	case balance.IsPositive():
		return "(Due)"
	case balance.IsZero():
		return ""
	default:
		return "(Advance)"
	}
}

// clientMonths filters the balance rows to one client's active months.
func clientMonths(rows []ledger.MonthlyBalance, client string) []ledger.MonthlyBalance {
	var months []ledger.MonthlyBalance
	for _, row := range rows {
		if row.Client != client {
			continue
		}
		if row.Invoiced.IsZero() && row.Received.IsZero() {
			continue
		}
		months = append(months, row)
	}
	return months
}

func clientTransactions(transactions []ledger.Transaction, client string) []ledger.Transaction {
	var result []ledger.Transaction
	for _, txn := range transactions {
		if txn.Client == client {
			result = append(result, txn)
		}
	}
	return result
}

// consolidateClients unions the clients seen on invoices and receipts
// up to the window close, joined with the registry. Clients missing
// from the clients sheet still get their documents.
func consolidateClients(registry map[string]models.Client, invoices []models.Invoice, receipts []models.Receipt) []models.Client {
	seen := make(map[string]bool)
	for _, inv := range invoices {
		seen[inv.Client] = true
	}
	for _, rec := range receipts {
		seen[rec.Client] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]models.Client, 0, len(names))
	for _, name := range names {
		result = append(result, clientFor(registry, name))
	}
	return result
}

func clientFor(registry map[string]models.Client, name string) models.Client {
	if client, ok := registry[name]; ok {
		return client
	}
	return models.Client{Name: name}
}

func numberPath(path, number string) string {
	return strings.ReplaceAll(path, "{NUMBER}", sanitizeFileName(number))
}

func clientPath(path, client string) string {
	return strings.ReplaceAll(path, "{CLIENT}", sanitizeFileName(client))
}

func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String()
}
