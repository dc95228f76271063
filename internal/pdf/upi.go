package pdf

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"bulkinvoicer/internal/config"
)

// BuildUPILink assembles a upi://pay deep link for the given document.
// The transaction note may carry a {INVOICE_NUMBER} placeholder. The
// second return is false when UPI is not configured.
func BuildUPILink(cfg *config.Config, invoiceNumber string, amount decimal.Decimal) (string, bool) {
	upi := cfg.Payment.UPI
	if upi == nil || upi.UPIID == "" {
		return "", false
	}

	payee := upi.PayeeName
	if payee == "" {
		payee = cfg.Seller.Name
	}
	note := strings.ReplaceAll(upi.TransactionNote, "{INVOICE_NUMBER}", invoiceNumber)

	params := url.Values{}
	params.Set("pa", upi.UPIID)
	params.Set("pn", payee)
	if upi.IncludeAmount && amount.IsPositive() {
		params.Set("am", amount.String())
	}
	params.Set("cu", cfg.Payment.Currency)
	if note != "" {
		params.Set("tn", note)
	}

	return "upi://pay?" + params.Encode(), true
}
