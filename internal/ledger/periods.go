package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"bulkinvoicer/internal/logger"
	"bulkinvoicer/pkg/models"
)

// ErrInvalidPeriod is returned when a reporting window starts after it ends.
var ErrInvalidPeriod = errors.New("reporting period start date is after end date")

// PeriodFrames are the three views of the invoice and receipt history for
// one reporting window.
//
// Report holds the records inside the window and drives document emission.
// Open holds everything strictly before the window start and establishes the
// opening balance. Close holds everything up to and including the window end
// and establishes the closing balance. Open and Close always reflect full
// history; they are never bounded by the report window itself.
type PeriodFrames struct {
	InvoicesReport []models.Invoice
	ReceiptsReport []models.Receipt
	InvoicesOpen   []models.Invoice
	ReceiptsOpen   []models.Receipt
	InvoicesClose  []models.Invoice
	ReceiptsClose  []models.Receipt
}

// SlicePeriod filters invoices and receipts into report, open and close
// views. A zero start or end means that bound is absent: without a start
// the open view is empty, without an end the close view is the full set.
// Report views are sorted by document number for deterministic emission
// order; the inputs are never modified.
func SlicePeriod(invoices []models.Invoice, receipts []models.Receipt, start, end time.Time) PeriodFrames {
	frames := PeriodFrames{
		InvoicesClose: invoices,
		ReceiptsClose: receipts,
	}

	invReport := invoices
	recReport := receipts

	if !start.IsZero() {
		invReport = filterInvoices(invReport, func(inv models.Invoice) bool { return !inv.Date.Before(start) })
		recReport = filterReceipts(recReport, func(rec models.Receipt) bool { return !rec.Date.Before(start) })
		frames.InvoicesOpen = filterInvoices(invoices, func(inv models.Invoice) bool { return inv.Date.Before(start) })
		frames.ReceiptsOpen = filterReceipts(receipts, func(rec models.Receipt) bool { return rec.Date.Before(start) })
	}

	if !end.IsZero() {
		invReport = filterInvoices(invReport, func(inv models.Invoice) bool { return !inv.Date.After(end) })
		recReport = filterReceipts(recReport, func(rec models.Receipt) bool { return !rec.Date.After(end) })
		frames.InvoicesClose = filterInvoices(invoices, func(inv models.Invoice) bool { return !inv.Date.After(end) })
		frames.ReceiptsClose = filterReceipts(receipts, func(rec models.Receipt) bool { return !rec.Date.After(end) })
	}

	frames.InvoicesReport = sortInvoicesByNumber(invReport)
	frames.ReceiptsReport = sortReceiptsByNumber(recReport)

	return frames
}

// ReportingPeriodText renders the period caption for report headers, e.g.
// "Period: 01 Jan 2024 - 31 Dec 2024". It returns an empty string when no
// bound is set and ErrInvalidPeriod when start is after end; callers must
// not slice with an invalid window.
func ReportingPeriodText(dateFormat string, start, end time.Time) (string, error) {
	log := logger.WithComponent("ledger")

	switch {
	case !start.IsZero() && !end.IsZero():
		if start.After(end) {
			log.Error().
				Time("start", start).
				Time("end", end).
				Msg("Start date is after end date, check the configuration")
			return "", fmt.Errorf("%w: %s > %s", ErrInvalidPeriod, start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		return fmt.Sprintf("Period: %s - %s", start.Format(dateFormat), end.Format(dateFormat)), nil
	case !start.IsZero():
		return fmt.Sprintf("Period: Starting %s", start.Format(dateFormat)), nil
	case !end.IsZero():
		return fmt.Sprintf("Period: Ending %s", end.Format(dateFormat)), nil
	default:
		return "", nil
	}
}

// NormalizePeriod defaults and clamps a reporting window so periodic
// summaries never span more than the trailing 12 months.
//
// A zero end defaults to today. The earliest permitted start is the first
// day of the month 11 months before end's month; a zero start defaults to
// it and an earlier start is clamped to it with a warning. The unclamped
// window still applies to plain document listing, only the monthly
// summaries are bounded.
func NormalizePeriod(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		now := time.Now()
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	var expectedStart time.Time
	if end.Month() == time.December {
		expectedStart = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	} else {
		expectedStart = time.Date(end.Year()-1, end.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	}

	if start.IsZero() {
		start = expectedStart
	} else if start.Before(expectedStart) {
		log := logger.WithComponent("ledger")
		log.Warn().
			Time("start", start).
			Time("clamped", expectedStart).
			Msg("Date range spans more than a year, periodic summary limited to last 12 months")
		start = expectedStart
	}

	return start, end
}

func filterInvoices(invoices []models.Invoice, keep func(models.Invoice) bool) []models.Invoice {
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	return out
}

func filterReceipts(receipts []models.Receipt, keep func(models.Receipt) bool) []models.Receipt {
	out := make([]models.Receipt, 0, len(receipts))
	for _, rec := range receipts {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func sortInvoicesByNumber(invoices []models.Invoice) []models.Invoice {
	out := make([]models.Invoice, len(invoices))
	copy(out, invoices)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func sortReceiptsByNumber(receipts []models.Receipt) []models.Receipt {
	out := make([]models.Receipt, len(receipts))
	copy(out, receipts)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
