package generate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bulkinvoicer/internal/config"
	"bulkinvoicer/internal/ledger"
	"bulkinvoicer/pkg/models"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "invoices"))

	invoiceRows := [][]any{
		{"number", "client", "date", "due date", "description", "unit", "qty"},
		{"INV-1", "acme", "2024-01-10", "2024-01-24", "Consulting", "100", "2"},
		{"INV-1", "acme", "2024-01-10", "", "Travel", "50", "1"},
		{"INV-2", "beta", "2024-02-05", "", "Retainer", "300", "1"},
	}
	for i, row := range invoiceRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("invoices", cell, &row))
	}

	_, err := f.NewSheet("receipts")
	require.NoError(t, err)
	receiptRows := [][]any{
		{"number", "client", "date", "amount", "payment mode", "reference"},
		{"REC-1", "acme", "2024-01-20", "250", "UPI", "txn-1"},
		{"REC-2", "beta", "2024-02-10", "100", "", ""},
	}
	for i, row := range receiptRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("receipts", cell, &row))
	}

	_, err = f.NewSheet("clients")
	require.NoError(t, err)
	clientRows := [][]any{
		{"name", "display name", "address", "phone", "email"},
		{"acme", "Acme Corp", "12 Main St", "555-0100", "billing@acme.example"},
		{"beta", "", "", "", ""},
	}
	for i, row := range clientRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("clients", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "books.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func decimalFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func testConfig(t *testing.T, workbookPath string) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Seller: config.SellerConfig{Name: "Acme Consulting"},
		Invoice: config.InvoiceConfig{
			Decimals:     2,
			ShowSubtotal: true,
			DateFormat:   "2006-01-02",
			StyleColor:   "#F8E6E5",
		},
		Receipt: config.ReceiptConfig{
			Decimals:   2,
			DateFormat: "2006-01-02",
			StyleColor: "#F8E6E5",
		},
		Payment: config.PaymentConfig{Currency: "INR"},
		Excel:   config.ExcelConfig{Filepath: workbookPath},
		Output:  map[string]config.OutputConfig{},
	}
	return cfg
}

func TestRun_CombinedOutput(t *testing.T) {
	workbookPath := writeWorkbook(t)
	outDir := t.TempDir()

	cfg := testConfig(t, workbookPath)
	cfg.Output["all"] = config.OutputConfig{
		Path:           filepath.Join(outDir, "all.pdf"),
		Type:           config.OutputCombined,
		IncludeSummary: true,
	}

	require.NoError(t, Run(cfg))

	info, err := os.Stat(filepath.Join(outDir, "all.pdf"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRun_IndividualOutput(t *testing.T) {
	workbookPath := writeWorkbook(t)
	outDir := t.TempDir()

	cfg := testConfig(t, workbookPath)
	cfg.Output["docs"] = config.OutputConfig{
		Path:           filepath.Join(outDir, "{NUMBER}.pdf"),
		Type:           config.OutputIndividual,
		IncludeSummary: true,
	}

	require.NoError(t, Run(cfg))

	for _, name := range []string{"summary.pdf", "INV-1.pdf", "INV-2.pdf", "REC-1.pdf", "REC-2.pdf"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_ClientsOutput(t *testing.T) {
	workbookPath := writeWorkbook(t)
	outDir := t.TempDir()

	cfg := testConfig(t, workbookPath)
	cfg.Output["statements"] = config.OutputConfig{
		Path:           filepath.Join(outDir, "{CLIENT}.pdf"),
		Type:           config.OutputClients,
		IncludeSummary: true,
	}

	require.NoError(t, Run(cfg))

	for _, name := range []string{"summary.pdf", "acme.pdf", "beta.pdf"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_WindowedOutputSkipsOutsideDocuments(t *testing.T) {
	workbookPath := writeWorkbook(t)
	outDir := t.TempDir()

	cfg := testConfig(t, workbookPath)
	cfg.Output["jan"] = config.OutputConfig{
		Path:      filepath.Join(outDir, "{NUMBER}.pdf"),
		Type:      config.OutputIndividual,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Start:     day(2024, 1, 1),
		End:       day(2024, 1, 31),
	}

	require.NoError(t, Run(cfg))

	_, err := os.Stat(filepath.Join(outDir, "INV-1.pdf"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "INV-2.pdf"))
	assert.True(t, os.IsNotExist(err), "February invoice must not be rendered")
}

func TestConsolidateClients(t *testing.T) {
	registry := map[string]models.Client{
		"acme": {Name: "acme", DisplayName: "Acme Corp"},
	}
	invoices := []models.Invoice{{Number: "INV-1", Client: "acme"}}
	receipts := []models.Receipt{{Number: "REC-1", Client: "ghost"}}

	clients := consolidateClients(registry, invoices, receipts)

	require.Len(t, clients, 2)
	assert.Equal(t, "Acme Corp", clients[0].DisplayName)
	// Unknown clients still get a bare entry.
	assert.Equal(t, models.Client{Name: "ghost"}, clients[1])
}

func TestStatementFigures(t *testing.T) {
	summary := ledger.ClientSummary{
		Name:         "acme",
		InvoiceCount: 2, ReceiptCount: 1,
	}
	summary.OpeningBalance = decimalFromInt(-50)
	summary.ClosingBalance = decimalFromInt(120)
	summary.InvoiceTotal = decimalFromInt(300)
	summary.ReceiptTotal = decimalFromInt(130)

	figures := statementFigures(summary)

	require.Len(t, figures, 4)
	assert.Equal(t, "(Advance)", figures[0].Note)
	assert.Equal(t, "(2 invoices)", figures[1].Note)
	assert.Equal(t, "(1 receipts)", figures[2].Note)
	assert.Equal(t, "(Due)", figures[3].Note)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Acme_Corp-1.pdf", sanitizeFileName("Acme Corp-1.pdf"))
	assert.Equal(t, "INV1", sanitizeFileName("INV/1"))
}
