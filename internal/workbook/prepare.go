package workbook

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"bulkinvoicer/internal/config"
	"bulkinvoicer/internal/logger"
	"bulkinvoicer/pkg/models"
)

// dateLayouts covers the cell formats excelize produces for date
// columns, plus ISO dates typed in as text.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/2006",
	"02-Jan-06",
	"2 Jan 2006",
}

// BuildInvoices groups the raw invoice rows by invoice number and
// computes line amounts, subtotal, discount, taxes and total. Rows
// without a unit price are skipped.
func BuildInvoices(cfg *config.Config, rows Sheet) ([]models.Invoice, error) {
	log := logger.WithComponent("workbook")

	type group struct {
		invoice models.Invoice
		taxes   map[string]decimal.Decimal
	}

	decimals := cfg.Invoice.Decimals
	groups := make(map[string]*group)

	for i, row := range rows {
		if row["unit"] == "" {
			log.Debug().Int("row", i+2).Msg("Skipping invoice row without unit price")
			continue
		}

		unit, err := parseDecimal(row["unit"], decimals)
		if err != nil {
			return nil, fmt.Errorf("invoices row %d: invalid unit: %w", i+2, err)
		}
		qty, err := parseQty(row["qty"])
		if err != nil {
			return nil, fmt.Errorf("invoices row %d: invalid qty: %w", i+2, err)
		}
		date, err := parseDate(row["date"])
		if err != nil {
			return nil, fmt.Errorf("invoices row %d: invalid date: %w", i+2, err)
		}

		number := row["number"]
		g, ok := groups[number]
		if !ok {
			g = &group{
				invoice: models.Invoice{Number: number, Client: row["client"]},
				taxes:   make(map[string]decimal.Decimal),
			}
			groups[number] = g
		}

		amount := unit.Mul(decimal.NewFromUint64(uint64(qty))).Round(decimals)
		g.invoice.Items = append(g.invoice.Items, models.LineItem{
			Description: row["description"],
			Unit:        unit,
			Qty:         qty,
			Amount:      amount,
		})
		g.invoice.Subtotal = g.invoice.Subtotal.Add(amount)

		// The latest row date wins; the due date falls back to it.
		if date.After(g.invoice.Date) {
			g.invoice.Date = date
		}
		if due := row["due date"]; due != "" {
			dueDate, err := parseDate(due)
			if err != nil {
				return nil, fmt.Errorf("invoices row %d: invalid due date: %w", i+2, err)
			}
			if dueDate.After(g.invoice.DueDate) {
				g.invoice.DueDate = dueDate
			}
		}

		if col := cfg.Invoice.DiscountColumn; col != "" && row[col] != "" {
			discount, err := parseDecimal(row[col], decimals)
			if err != nil {
				return nil, fmt.Errorf("invoices row %d: invalid %s: %w", i+2, col, err)
			}
			g.invoice.Discount = g.invoice.Discount.Add(discount)
		}
		for _, col := range cfg.Invoice.TaxColumns {
			if row[col] == "" {
				continue
			}
			tax, err := parseDecimal(row[col], decimals)
			if err != nil {
				return nil, fmt.Errorf("invoices row %d: invalid %s: %w", i+2, col, err)
			}
			g.taxes[col] = g.taxes[col].Add(tax)
		}
	}

	numbers := make([]string, 0, len(groups))
	for number := range groups {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	invoices := make([]models.Invoice, 0, len(groups))
	for _, number := range numbers {
		g := groups[number]
		if g.invoice.DueDate.IsZero() {
			g.invoice.DueDate = g.invoice.Date
		}

		total := g.invoice.Subtotal.Sub(g.invoice.Discount)
		for _, col := range cfg.Invoice.TaxColumns {
			tax := g.taxes[col]
			g.invoice.Taxes = append(g.invoice.Taxes, models.TaxLine{Name: col, Amount: tax})
			total = total.Add(tax)
		}
		g.invoice.Total = total

		invoices = append(invoices, g.invoice)
	}

	log.Info().Int("count", len(invoices)).Msg("Invoices prepared")
	return invoices, nil
}

// BuildReceipts converts raw receipt rows. Rows without a date are
// skipped.
func BuildReceipts(cfg *config.Config, rows Sheet) ([]models.Receipt, error) {
	log := logger.WithComponent("workbook")

	receipts := make([]models.Receipt, 0, len(rows))
	for i, row := range rows {
		if row["date"] == "" {
			log.Debug().Int("row", i+2).Msg("Skipping receipt row without date")
			continue
		}

		date, err := parseDate(row["date"])
		if err != nil {
			return nil, fmt.Errorf("receipts row %d: invalid date: %w", i+2, err)
		}
		amount, err := parseDecimal(row["amount"], cfg.Receipt.Decimals)
		if err != nil {
			return nil, fmt.Errorf("receipts row %d: invalid amount: %w", i+2, err)
		}

		receipts = append(receipts, models.Receipt{
			Number:      row["number"],
			Client:      row["client"],
			Date:        date,
			Amount:      amount,
			PaymentMode: row["payment mode"],
			Reference:   row["reference"],
		})
	}

	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].Number < receipts[j].Number
	})

	log.Info().Int("count", len(receipts)).Msg("Receipts prepared")
	return receipts, nil
}

// BuildClients converts raw client rows into the client registry.
func BuildClients(rows Sheet) []models.Client {
	clients := make([]models.Client, 0, len(rows))
	for _, row := range rows {
		if row["name"] == "" {
			continue
		}
		clients = append(clients, models.Client{
			Name:        row["name"],
			DisplayName: row["display name"],
			Address:     row["address"],
			Phone:       row["phone"],
			Email:       row["email"],
		})
	}
	return clients
}

func parseDecimal(value string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(decimals), nil
}

func parseQty(value string) (uint, error) {
	if value == "" {
		return 1, nil
	}
	qty, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(qty), nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
