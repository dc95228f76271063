package workbook

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRead(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]any{
		SheetInvoices: {
			{"Number", "Client", "Date", "Unit", "Qty"},
			{"INV-1", "acme", "2024-01-10", "100", "2"},
			{"", "", "", "", ""}, // fully empty row, dropped
		},
		SheetReceipts: {
			{"number", "client", "date", "amount"},
			{"REC-1", "acme", "2024-01-20", "50"},
		},
		SheetClients: {
			{"name", "display name"},
			{"acme", "Acme Corp"},
		},
	})

	wb, err := Read(path)
	require.NoError(t, err)

	require.Len(t, wb.Invoices, 1)
	// Headers are lowercased keys.
	assert.Equal(t, "INV-1", wb.Invoices[0]["number"])
	assert.Equal(t, "acme", wb.Invoices[0]["client"])

	require.Len(t, wb.Receipts, 1)
	assert.Equal(t, "50", wb.Receipts[0]["amount"])

	require.Len(t, wb.Clients, 1)
	assert.Equal(t, "Acme Corp", wb.Clients[0]["display name"])
}

func TestRead_MissingSheet(t *testing.T) {
	path := writeTestWorkbook(t, map[string][][]any{
		SheetInvoices: {{"number"}},
		SheetReceipts: {{"number"}},
	})

	_, err := Read(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSheetMissing)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
