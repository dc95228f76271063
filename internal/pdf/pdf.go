// Package pdf renders invoices, receipts, summaries and account
// statements with gofpdf.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"bulkinvoicer/internal/config"
	"bulkinvoicer/internal/ledger"
	"bulkinvoicer/internal/logger"
	"bulkinvoicer/pkg/models"
)

const (
	fontHeader  = "Helvetica"
	fontRegular = "Times"
	fontNumbers = "Courier"
)

// Renderer builds one PDF document page by page. All document types
// share the seller header and the configured footer.
type Renderer struct {
	doc   *gofpdf.Fpdf
	cfg   *config.Config
	log   zerolog.Logger
	qrSeq int
}

// New creates a renderer. With coverPage set, the first page gets a
// smaller header gap and no footer, for documents that open with a
// summary page.
func New(cfg *config.Config, coverPage bool) *Renderer {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAuthor(cfg.Seller.Name, true)
	doc.SetCreator("bulkinvoicer", true)

	r := &Renderer{
		doc: doc,
		cfg: cfg,
		log: logger.WithComponent("pdf"),
	}

	doc.SetHeaderFunc(func() {
		doc.SetFont(fontHeader, "B", 16)
		doc.CellFormat(0, 8, strings.ToUpper(cfg.Seller.Name), "", 1, "C", false, 0, "")
		if cfg.Seller.Tagline != "" {
			doc.SetFont(fontHeader, "I", 8)
			doc.CellFormat(0, 4, cfg.Seller.Tagline, "", 1, "C", false, 0, "")
		}
		if coverPage && doc.PageNo() == 1 {
			doc.Ln(10)
		} else {
			doc.Ln(20)
		}
	})

	doc.SetFooterFunc(func() {
		if coverPage && doc.PageNo() == 1 {
			return
		}
		if len(cfg.Footer.Text) == 0 {
			return
		}
		doc.SetY(-10 - float64(len(cfg.Footer.Text))*4)
		doc.SetFont(fontRegular, "", 8)
		for _, line := range cfg.Footer.Text {
			doc.CellFormat(0, 4, line, "", 1, "C", false, 0, "")
		}
	})

	return r
}

// Invoice renders one invoice page with its line items, totals,
// payment details and signature block.
func (r *Renderer) Invoice(inv models.Invoice, client models.Client) {
	r.log.Debug().Str("invoice", inv.Number).Msg("Rendering invoice")

	doc := r.doc
	cfg := r.cfg
	doc.AddPage()

	r.documentHeader(client, [][2]string{
		{"INVOICE NO", inv.Number},
		{"DATE", inv.Date.Format(cfg.Invoice.DateFormat)},
		{"DUE DATE", inv.DueDate.Format(cfg.Invoice.DateFormat)},
	})

	// Line item table.
	fr, fg, fb := hexToRGB(cfg.Invoice.StyleColor)
	doc.SetFillColor(fr, fg, fb)
	doc.SetFont(fontHeader, "B", 10)

	const (
		descW   = 95
		unitW   = 35
		qtyW    = 20
		amountW = 40
	)
	doc.CellFormat(descW, 8, "DESCRIPTION", "B", 0, "L", true, 0, "")
	doc.CellFormat(unitW, 8, "UNIT PRICE", "B", 0, "R", true, 0, "")
	doc.CellFormat(qtyW, 8, "QTY", "B", 0, "R", true, 0, "")
	doc.CellFormat(amountW, 8, "AMOUNT", "B", 1, "R", true, 0, "")

	for _, item := range inv.Items {
		doc.SetFont(fontRegular, "", 10)
		doc.CellFormat(descW, 7, item.Description, "", 0, "L", false, 0, "")
		doc.SetFont(fontNumbers, "", 10)
		doc.CellFormat(unitW, 7, r.money(item.Unit), "", 0, "R", false, 0, "")
		doc.CellFormat(qtyW, 7, fmt.Sprintf("%d", item.Qty), "", 0, "R", false, 0, "")
		doc.CellFormat(amountW, 7, r.money(item.Amount), "", 1, "R", false, 0, "")
	}
	doc.Ln(3)

	labelW := float64(descW + unitW + qtyW)
	if cfg.Invoice.ShowSubtotal {
		doc.SetFont(fontRegular, "B", 10)
		doc.CellFormat(labelW, 7, "Subtotal", "T", 0, "L", false, 0, "")
		doc.SetFont(fontNumbers, "B", 10)
		doc.CellFormat(amountW, 7, r.money(inv.Subtotal), "T", 1, "R", false, 0, "")
	}
	if cfg.Invoice.DiscountColumn != "" {
		doc.SetFont(fontRegular, "", 10)
		doc.CellFormat(labelW, 7, "Discount", "", 0, "R", false, 0, "")
		doc.SetFont(fontNumbers, "", 10)
		doc.CellFormat(amountW, 7, r.money(inv.Discount), "", 1, "R", false, 0, "")
	}
	for _, tax := range inv.Taxes {
		doc.SetFont(fontRegular, "", 10)
		doc.CellFormat(labelW, 7, strings.ToUpper(tax.Name), "", 0, "R", false, 0, "")
		doc.SetFont(fontNumbers, "", 10)
		doc.CellFormat(amountW, 7, r.money(tax.Amount), "", 1, "R", false, 0, "")
	}

	doc.SetFont(fontHeader, "B", 10)
	doc.CellFormat(labelW, 8, "TOTAL", "T", 0, "R", true, 0, "")
	doc.SetFont(fontNumbers, "B", 10)
	doc.CellFormat(amountW, 8, r.money(inv.Total), "T", 1, "R", true, 0, "")

	doc.Ln(15)

	startY := doc.GetY()
	r.paymentDetails(inv.Number, inv.Total)
	endY := doc.GetY()

	doc.SetY(startY)
	r.signature()
	if doc.GetY() < endY {
		doc.SetY(endY)
	}
}

// Receipt renders one receipt page. The rows list what the payment
// settled, one row per allocation.
func (r *Renderer) Receipt(rec models.Receipt, client models.Client, allocations []ledger.Allocation) {
	r.log.Debug().Str("receipt", rec.Number).Msg("Rendering receipt")

	doc := r.doc
	cfg := r.cfg
	doc.AddPage()

	r.documentHeader(client, [][2]string{
		{"RECEIPT NO", rec.Number},
		{"DATE", rec.Date.Format(cfg.Receipt.DateFormat)},
	})

	fr, fg, fb := hexToRGB(cfg.Receipt.StyleColor)
	doc.SetFillColor(fr, fg, fb)
	doc.SetFont(fontHeader, "B", 10)

	const (
		descW   = 145
		amountW = 45
	)
	doc.CellFormat(descW, 8, "DESCRIPTION", "B", 0, "L", true, 0, "")
	doc.CellFormat(amountW, 8, "AMOUNT", "B", 1, "R", true, 0, "")

	for _, alloc := range allocations {
		description := "Advance Payment"
		if !alloc.Advance() {
			description = "Payment for Invoice " + alloc.Invoice
		}
		doc.SetFont(fontRegular, "", 10)
		doc.CellFormat(descW, 7, description, "", 0, "L", false, 0, "")
		doc.SetFont(fontNumbers, "", 10)
		doc.CellFormat(amountW, 7, r.money(alloc.Amount), "", 1, "R", false, 0, "")
	}
	doc.Ln(3)

	doc.SetFont(fontHeader, "B", 10)
	doc.CellFormat(descW, 8, "TOTAL", "T", 0, "R", true, 0, "")
	doc.SetFont(fontNumbers, "B", 10)
	doc.CellFormat(amountW, 8, r.money(rec.Amount), "T", 1, "R", true, 0, "")

	doc.Ln(15)

	startY := doc.GetY()
	mode := rec.PaymentMode
	if mode == "" {
		mode = "cash"
	}
	doc.SetFont(fontRegular, "B", 10)
	doc.CellFormat(0, 6, "PAYMENT MODE: "+strings.ToUpper(mode), "", 1, "L", false, 0, "")
	if rec.Reference != "" {
		doc.SetFont(fontRegular, "", 10)
		doc.CellFormat(doc.GetStringWidth("Reference #: ")+2, 6, "Reference #: ", "", 0, "L", false, 0, "")
		doc.SetFont(fontNumbers, "", 10)
		doc.CellFormat(0, 6, rec.Reference, "", 1, "L", false, 0, "")
	}
	endY := doc.GetY()

	doc.SetY(startY)
	r.signature()
	if doc.GetY() < endY {
		doc.SetY(endY)
	}
}

// CombinedSummary renders the overview page with key figures, the
// status breakdown and the client-wise and monthly tables.
func (r *Renderer) CombinedSummary(report ledger.SummaryReport) {
	r.log.Debug().Msg("Rendering combined summary")

	doc := r.doc
	doc.AddPage()

	doc.SetFont(fontHeader, "B", 18)
	doc.CellFormat(0, 12, "Invoices and Receipts Summary", "", 1, "C", false, 0, "")
	if report.Period != "" {
		doc.SetFont(fontHeader, "", 11)
		doc.CellFormat(0, 6, report.Period, "", 1, "C", false, 0, "")
	}
	doc.SetFont(fontRegular, "", 10)
	doc.CellFormat(0, 6, report.Generated, "", 1, "C", false, 0, "")
	doc.Ln(10)

	r.keyFigures(report.KeyFigures)
	doc.Ln(10)

	if len(report.StatusBreakdown) > 0 {
		r.sectionTitle("Status Breakdown")
		r.tableHead([]string{"Status", "Clients", "Amount"}, []float64{60, 40, 50}, []string{"L", "R", "R"})
		for _, row := range report.StatusBreakdown {
			doc.SetFont(fontRegular, "", 10)
			doc.CellFormat(60, 7, string(row.Status), "", 0, "L", false, 0, "")
			doc.SetFont(fontNumbers, "", 10)
			doc.CellFormat(40, 7, fmt.Sprintf("%d", row.Clients), "", 0, "R", false, 0, "")
			doc.CellFormat(50, 7, r.money(row.Amount), "", 1, "R", false, 0, "")
		}
		doc.Ln(10)
	}

	if len(report.ClientSummaries) > 0 {
		r.sectionTitle("Client-wise Summary")
		widths := []float64{50, 35, 35, 35, 35}
		r.tableHead([]string{"Client", "Opening", "Invoiced", "Received", "Closing"}, widths, []string{"L", "R", "R", "R", "R"})
		for _, row := range report.ClientSummaries {
			label := row.DisplayName
			if label == "" {
				label = row.Name
			}
			doc.SetFont(fontRegular, "", 10)
			doc.CellFormat(widths[0], 7, label, "", 0, "L", false, 0, "")
			doc.SetFont(fontNumbers, "", 10)
			doc.CellFormat(widths[1], 7, r.money(row.OpeningBalance), "", 0, "R", false, 0, "")
			doc.CellFormat(widths[2], 7, r.money(row.InvoiceTotal), "", 0, "R", false, 0, "")
			doc.CellFormat(widths[3], 7, r.money(row.ReceiptTotal), "", 0, "R", false, 0, "")
			doc.CellFormat(widths[4], 7, r.money(row.ClosingBalance), "", 1, "R", false, 0, "")
		}
		doc.Ln(10)
	}

	if len(report.MonthlySummary) > 0 {
		rows := make([]monthlyRow, len(report.MonthlySummary))
		for i, m := range report.MonthlySummary {
			rows[i] = monthlyRow{m.Month, m.Open, m.Invoiced, m.Received, m.Balance}
		}
		r.monthlyTable("Monthly Summary", [4]string{"Opening", "Invoiced", "Received", "Closing"}, rows)
	}
}

// ClientStatement renders one client's account statement with key
// figures, the monthly summary and the transaction ledger. A payment
// section with the UPI QR code follows when a balance is outstanding.
func (r *Renderer) ClientStatement(
	client models.Client,
	period, generated string,
	figures []ledger.KeyFigure,
	monthly []ledger.MonthlyBalance,
	transactions []ledger.Transaction,
	outstanding decimal.Decimal,
) {
	r.log.Debug().Str("client", client.Name).Msg("Rendering client statement")

	doc := r.doc
	doc.AddPage()

	startY := doc.GetY()
	r.clientDetails(client, 12, 60)
	endY := doc.GetY()

	doc.SetY(startY)
	doc.SetFont(fontHeader, "B", 18)
	doc.CellFormat(0, 12, "Account Statement", "", 1, "C", false, 0, "")
	if period != "" {
		doc.SetFont(fontHeader, "", 11)
		doc.CellFormat(0, 6, period, "", 1, "C", false, 0, "")
	}
	doc.SetFont(fontRegular, "", 10)
	doc.CellFormat(0, 6, generated, "", 1, "C", false, 0, "")
	if doc.GetY() < endY {
		doc.SetY(endY)
	}
	doc.Ln(10)

	r.keyFigures(figures)
	doc.Ln(10)

	if len(monthly) > 0 {
		rows := make([]monthlyRow, len(monthly))
		for i, m := range monthly {
			rows[i] = monthlyRow{m.Month, m.Open, m.Invoiced, m.Received, m.Balance}
		}
		r.monthlyTable("Monthly Summary", [4]string{"Opening", "Billed", "Paid", "Closing"}, rows)
		doc.Ln(10)
	}

	if len(transactions) > 0 {
		r.sectionTitle("Transactions")
		widths := []float64{30, 25, 45, 45, 45}
		r.tableHead([]string{"Date", "Type", "Reference", "Amount", "Balance"}, widths, []string{"L", "C", "C", "R", "R"})
		for _, txn := range transactions {
			doc.SetFont(fontNumbers, "", 10)
			doc.CellFormat(widths[0], 7, txn.Date.Format(r.cfg.Invoice.DateFormat), "", 0, "L", false, 0, "")
			doc.SetFont(fontRegular, "", 10)
			doc.CellFormat(widths[1], 7, string(txn.Type), "", 0, "C", false, 0, "")
			doc.SetFont(fontNumbers, "", 10)
			doc.CellFormat(widths[2], 7, txn.Reference, "", 0, "C", false, 0, "")
			doc.CellFormat(widths[3], 7, r.money(txn.Amount), "", 0, "R", false, 0, "")
			doc.CellFormat(widths[4], 7, r.money(txn.Balance), "", 1, "R", false, 0, "")
		}
	}

	if outstanding.IsPositive() {
		doc.Ln(10)
		r.paymentDetails("Outstanding balance for "+client.Label(), outstanding)
	}
}

// Output writes the document to a file and closes it.
func (r *Renderer) Output(path string) error {
	if err := r.doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF %s: %w", path, err)
	}
	return nil
}

// Bytes closes the document and returns it as a byte slice.
func (r *Renderer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// documentHeader prints the client block on the left and the document
// metadata right-aligned at the same height.
func (r *Renderer) documentHeader(client models.Client, metadata [][2]string) {
	doc := r.doc

	startY := doc.GetY()
	r.clientDetails(client, 10, 0)
	endY := doc.GetY()

	doc.SetY(startY)
	for _, pair := range metadata {
		doc.SetFont(fontRegular, "", 10)
		doc.CellFormat(145, 6, pair[0]+": ", "", 0, "R", false, 0, "")
		doc.SetFont(fontNumbers, "", 10)
		doc.CellFormat(45, 6, pair[1], "", 1, "R", false, 0, "")
	}

	if doc.GetY() < endY {
		doc.SetY(endY)
	}
	doc.Ln(15)
}

func (r *Renderer) clientDetails(client models.Client, size float64, width float64) {
	doc := r.doc
	doc.SetFont(fontRegular, "B", size)
	doc.CellFormat(width, 6, "ISSUED TO:", "", 1, "L", false, 0, "")
	doc.SetFont(fontRegular, "", size)
	doc.CellFormat(width, 6, client.Label(), "", 1, "L", false, 0, "")
	if client.Address != "" {
		doc.MultiCell(width, 6, client.Address, "", "L", false)
	}
	if client.Phone != "" {
		doc.CellFormat(width, 6, "Phone: "+client.Phone, "", 1, "L", false, 0, "")
	}
	if client.Email != "" {
		doc.CellFormat(width, 6, "Email: "+client.Email, "", 1, "L", false, 0, "")
	}
}

func (r *Renderer) sectionTitle(title string) {
	doc := r.doc
	doc.SetFont(fontHeader, "B", 14)
	doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
}

func (r *Renderer) tableHead(labels []string, widths []float64, aligns []string) {
	doc := r.doc
	fr, fg, fb := hexToRGB(r.cfg.Invoice.StyleColor)
	doc.SetFillColor(fr, fg, fb)
	doc.SetFont(fontHeader, "B", 11)
	for i, label := range labels {
		border := "B"
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		doc.CellFormat(widths[i], 8, label, border, ln, aligns[i], true, 0, "")
	}
}

// keyFigures prints the headline numbers as a three-row table: labels,
// amounts, annotations.
func (r *Renderer) keyFigures(figures []ledger.KeyFigure) {
	if len(figures) == 0 {
		return
	}
	doc := r.doc
	width := 190.0 / float64(len(figures))

	fr, fg, fb := hexToRGB(r.cfg.Invoice.StyleColor)
	doc.SetFillColor(fr, fg, fb)
	doc.SetFont(fontHeader, "", 10)
	for i, figure := range figures {
		ln := 0
		if i == len(figures)-1 {
			ln = 1
		}
		doc.CellFormat(width, 8, figure.Label, "1", ln, "C", true, 0, "")
	}
	doc.SetFont(fontNumbers, "B", 11)
	for i, figure := range figures {
		ln := 0
		if i == len(figures)-1 {
			ln = 1
		}
		doc.CellFormat(width, 8, r.money(figure.Value), "1", ln, "C", false, 0, "")
	}
	doc.SetFont(fontRegular, "", 9)
	for i, figure := range figures {
		ln := 0
		if i == len(figures)-1 {
			ln = 1
		}
		doc.CellFormat(width, 6, figure.Note, "", ln, "C", false, 0, "")
	}
}

type monthlyRow struct {
	month    time.Time
	open     decimal.Decimal
	invoiced decimal.Decimal
	received decimal.Decimal
	balance  decimal.Decimal
}

func (r *Renderer) monthlyTable(title string, headers [4]string, rows []monthlyRow) {
	doc := r.doc
	r.sectionTitle(title)

	widths := []float64{38, 38, 38, 38, 38}
	r.tableHead([]string{"Month", headers[0], headers[1], headers[2], headers[3]}, widths, []string{"L", "R", "R", "R", "R"})
	for _, row := range rows {
		doc.SetFont(fontRegular, "", 10)
		doc.CellFormat(widths[0], 7, row.month.Format("Jan 2006"), "", 0, "L", false, 0, "")
		doc.SetFont(fontNumbers, "", 10)
		doc.CellFormat(widths[1], 7, r.money(row.open), "", 0, "R", false, 0, "")
		doc.CellFormat(widths[2], 7, r.money(row.invoiced), "", 0, "R", false, 0, "")
		doc.CellFormat(widths[3], 7, r.money(row.received), "", 0, "R", false, 0, "")
		doc.CellFormat(widths[4], 7, r.money(row.balance), "", 1, "R", false, 0, "")
	}
}

// paymentDetails prints the payment methods line and, when UPI is
// configured, the QR code for the deep link.
func (r *Renderer) paymentDetails(invoiceNumber string, amount decimal.Decimal) {
	doc := r.doc
	cfg := r.cfg

	if cfg.Payment.PaymentMethodsText != "" {
		doc.SetFont(fontRegular, "B", 10)
		doc.CellFormat(0, 6, strings.ToUpper(cfg.Payment.PaymentMethodsText), "", 1, "L", false, 0, "")
	}

	link, ok := BuildUPILink(cfg, invoiceNumber, amount)
	if !ok {
		return
	}

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		r.log.Warn().Err(err).Msg("Failed to encode UPI QR code, skipping")
		return
	}

	r.qrSeq++
	name := fmt.Sprintf("upi-qr-%d", r.qrSeq)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))

	linkStr := ""
	if cfg.Payment.UPI.IncludeLink {
		linkStr = link
	}
	doc.ImageOptions(name, doc.GetX(), doc.GetY(), 30, 30, true, opts, 0, linkStr)

	if note := cfg.Payment.UPI.BottomNote; note != "" {
		doc.SetFont(fontRegular, "", 9)
		doc.CellFormat(0, 5, note, "", 1, "L", false, 0, "")
	}
}

func (r *Renderer) signature() {
	sig := r.cfg.Signature
	if sig == nil {
		return
	}
	doc := r.doc
	if sig.Prefix != "" {
		doc.SetFont(fontRegular, "B", 10)
		doc.CellFormat(0, 6, strings.ToUpper(sig.Prefix), "", 1, "R", false, 0, "")
	}
	if sig.Text != "" {
		doc.Ln(10)
		doc.SetFont(fontHeader, "BU", 12)
		doc.CellFormat(0, 6, strings.ToUpper(sig.Text), "", 1, "R", false, 0, "")
	}
}

func (r *Renderer) money(value decimal.Decimal) string {
	return FormatCurrency(value, r.cfg.Payment.Currency, r.cfg.Invoice.Decimals)
}

// Err surfaces any drawing error accumulated by gofpdf.
func (r *Renderer) Err() error {
	if r.doc.Err() {
		return r.doc.Error()
	}
	return nil
}

