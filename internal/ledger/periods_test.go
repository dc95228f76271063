package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulkinvoicer/pkg/models"
)

func sampleFrames() ([]models.Invoice, []models.Receipt) {
	invoices := []models.Invoice{
		invoice("INV-B", "C1", day(2024, 1, 1), 100),  // before start
		invoice("INV-A", "C1", day(2024, 1, 10), 200), // at start
		invoice("INV-C", "C1", day(2024, 1, 20), 300), // at end
	}
	receipts := []models.Receipt{
		receipt("REC-B", "C1", day(2024, 1, 1), 50),
		receipt("REC-A", "C1", day(2024, 1, 10), 75),
		receipt("REC-C", "C1", day(2024, 1, 25), 125), // after end
	}
	return invoices, receipts
}

func invoiceNumbers(invoices []models.Invoice) []string {
	numbers := make([]string, len(invoices))
	for i, inv := range invoices {
		numbers[i] = inv.Number
	}
	return numbers
}

func receiptNumbers(receipts []models.Receipt) []string {
	numbers := make([]string, len(receipts))
	for i, rec := range receipts {
		numbers[i] = rec.Number
	}
	return numbers
}

func TestSlicePeriod_BothBounds(t *testing.T) {
	invoices, receipts := sampleFrames()

	frames := SlicePeriod(invoices, receipts, day(2024, 1, 10), day(2024, 1, 20))

	// Report: inclusive bounds, sorted by number.
	assert.Equal(t, []string{"INV-A", "INV-C"}, invoiceNumbers(frames.InvoicesReport))
	assert.Equal(t, []string{"REC-A"}, receiptNumbers(frames.ReceiptsReport))

	// Open: strictly before start.
	assert.Equal(t, []string{"INV-B"}, invoiceNumbers(frames.InvoicesOpen))
	assert.Equal(t, []string{"REC-B"}, receiptNumbers(frames.ReceiptsOpen))

	// Close: up to and including end.
	assert.ElementsMatch(t, []string{"INV-B", "INV-A", "INV-C"}, invoiceNumbers(frames.InvoicesClose))
	assert.ElementsMatch(t, []string{"REC-B", "REC-A"}, receiptNumbers(frames.ReceiptsClose))
}

func TestSlicePeriod_StartOnly(t *testing.T) {
	invoices, receipts := sampleFrames()

	frames := SlicePeriod(invoices, receipts, day(2024, 1, 10), time.Time{})

	assert.Equal(t, []string{"INV-A", "INV-C"}, invoiceNumbers(frames.InvoicesReport))
	assert.Equal(t, []string{"REC-A", "REC-C"}, receiptNumbers(frames.ReceiptsReport))
	assert.Equal(t, []string{"INV-B"}, invoiceNumbers(frames.InvoicesOpen))

	// No end bound: close view is the full history.
	assert.Len(t, frames.InvoicesClose, 3)
	assert.Len(t, frames.ReceiptsClose, 3)
}

func TestSlicePeriod_EndOnly(t *testing.T) {
	invoices, receipts := sampleFrames()

	frames := SlicePeriod(invoices, receipts, time.Time{}, day(2024, 1, 10))

	assert.Equal(t, []string{"INV-A", "INV-B"}, invoiceNumbers(frames.InvoicesReport))
	assert.Equal(t, []string{"REC-A", "REC-B"}, receiptNumbers(frames.ReceiptsReport))

	// Open has no meaning without a window start.
	assert.Empty(t, frames.InvoicesOpen)
	assert.Empty(t, frames.ReceiptsOpen)

	assert.ElementsMatch(t, []string{"INV-A", "INV-B"}, invoiceNumbers(frames.InvoicesClose))
}

func TestSlicePeriod_NoBounds(t *testing.T) {
	invoices, receipts := sampleFrames()

	frames := SlicePeriod(invoices, receipts, time.Time{}, time.Time{})

	assert.Equal(t, []string{"INV-A", "INV-B", "INV-C"}, invoiceNumbers(frames.InvoicesReport))
	assert.Equal(t, []string{"REC-A", "REC-B", "REC-C"}, receiptNumbers(frames.ReceiptsReport))
	assert.Empty(t, frames.InvoicesOpen)
	assert.Len(t, frames.InvoicesClose, 3)
}

func TestSlicePeriod_DoesNotMutateInputs(t *testing.T) {
	invoices, receipts := sampleFrames()

	SlicePeriod(invoices, receipts, day(2024, 1, 10), day(2024, 1, 20))

	assert.Equal(t, []string{"INV-B", "INV-A", "INV-C"}, invoiceNumbers(invoices))
	assert.Equal(t, []string{"REC-B", "REC-A", "REC-C"}, receiptNumbers(receipts))
}

func TestReportingPeriodText(t *testing.T) {
	format := "2006-01-02"

	text, err := ReportingPeriodText(format, day(2024, 1, 1), day(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, "Period: 2024-01-01 - 2024-01-31", text)

	text, err = ReportingPeriodText("02 Jan 2006", day(2024, 2, 15), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Period: Starting 15 Feb 2024", text)

	text, err = ReportingPeriodText("Jan 02, 2006", time.Time{}, day(2024, 3, 10))
	require.NoError(t, err)
	assert.Equal(t, "Period: Ending Mar 10, 2024", text)

	text, err = ReportingPeriodText(format, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestReportingPeriodText_StartAfterEnd(t *testing.T) {
	_, err := ReportingPeriodText("2006-01-02", day(2024, 5, 2), day(2024, 5, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestNormalizePeriod_DecemberEnd(t *testing.T) {
	start, end := NormalizePeriod(time.Time{}, day(2024, 12, 31))
	assert.Equal(t, day(2024, 1, 1), start)
	assert.Equal(t, day(2024, 12, 31), end)
}

func TestNormalizePeriod_MidYearEnd(t *testing.T) {
	start, end := NormalizePeriod(time.Time{}, day(2024, 6, 15))
	assert.Equal(t, day(2023, 7, 1), start)
	assert.Equal(t, day(2024, 6, 15), end)
}

func TestNormalizePeriod_ClampsExcessiveStart(t *testing.T) {
	start, _ := NormalizePeriod(day(2020, 1, 1), day(2024, 6, 15))
	assert.Equal(t, day(2023, 7, 1), start)
}

func TestNormalizePeriod_KeepsStartWithinWindow(t *testing.T) {
	start, end := NormalizePeriod(day(2024, 2, 1), day(2024, 6, 15))
	assert.Equal(t, day(2024, 2, 1), start)
	assert.Equal(t, day(2024, 6, 15), end)
}

func TestNormalizePeriod_DefaultsEndToToday(t *testing.T) {
	_, end := NormalizePeriod(time.Time{}, time.Time{})
	assert.False(t, end.IsZero())
	assert.WithinDuration(t, time.Now(), end, 24*time.Hour)
}
