package workbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"bulkinvoicer/internal/logger"
)

// Sheet names expected in the source workbook.
const (
	SheetInvoices = "invoices"
	SheetReceipts = "receipts"
	SheetClients  = "clients"
)

// ErrSheetMissing is returned when the workbook lacks one of the
// required sheets.
var ErrSheetMissing = errors.New("required sheet not found in workbook")

// Row is one data row keyed by the lowercased header of its column.
type Row map[string]string

// Sheet is the data rows of one worksheet, header row excluded.
type Sheet []Row

// Workbook holds the raw rows of the three source sheets.
type Workbook struct {
	Invoices Sheet
	Receipts Sheet
	Clients  Sheet
}

// Read loads the invoices, receipts and clients sheets from an Excel
// workbook. The sheets are read concurrently, each from its own file
// handle.
func Read(path string) (*Workbook, error) {
	log := logger.WithComponent("workbook")
	log.Info().Str("file", path).Msg("Reading data from Excel workbook")

	var wb Workbook
	var g errgroup.Group

	g.Go(func() (err error) {
		wb.Invoices, err = readSheet(path, SheetInvoices)
		return err
	})
	g.Go(func() (err error) {
		wb.Receipts, err = readSheet(path, SheetReceipts)
		return err
	})
	g.Go(func() (err error) {
		wb.Clients, err = readSheet(path, SheetClients)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to read workbook")
		return nil, err
	}

	log.Info().
		Int("invoices", len(wb.Invoices)).
		Int("receipts", len(wb.Receipts)).
		Int("clients", len(wb.Clients)).
		Msg("Data loaded from Excel workbook")
	return &wb, nil
}

// readSheet opens its own handle so concurrent reads never share
// excelize state.
func readSheet(path, sheet string) (Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetMissing, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetMissing, sheet)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	data := make(Sheet, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(Row, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" || i >= len(raw) {
				continue
			}
			value := strings.TrimSpace(raw[i])
			if value != "" {
				empty = false
			}
			row[header] = value
		}
		if !empty {
			data = append(data, row)
		}
	}
	return data, nil
}
