package pdf

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulkinvoicer/internal/config"
)

func upiConfig() *config.Config {
	return &config.Config{
		Seller:  config.SellerConfig{Name: "Acme Consulting"},
		Payment: config.PaymentConfig{
			Currency: "INR",
			UPI: &config.UPIConfig{
				UPIID:           "acme@bank",
				TransactionNote: "Payment for {INVOICE_NUMBER}",
				IncludeAmount:   true,
			},
		},
	}
}

func TestBuildUPILink(t *testing.T) {
	link, ok := BuildUPILink(upiConfig(), "INV-42", decimal.NewFromInt(150))
	require.True(t, ok)
	require.True(t, strings.HasPrefix(link, "upi://pay?"))

	params, err := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	require.NoError(t, err)
	assert.Equal(t, "acme@bank", params.Get("pa"))
	assert.Equal(t, "Acme Consulting", params.Get("pn"))
	assert.Equal(t, "150", params.Get("am"))
	assert.Equal(t, "INR", params.Get("cu"))
	assert.Equal(t, "Payment for INV-42", params.Get("tn"))
}

func TestBuildUPILink_PayeeNameOverride(t *testing.T) {
	cfg := upiConfig()
	cfg.Payment.UPI.PayeeName = "Acme Billing Desk"

	link, ok := BuildUPILink(cfg, "INV-1", decimal.NewFromInt(10))
	require.True(t, ok)
	params, _ := url.ParseQuery(strings.TrimPrefix(link, "upi://pay?"))
	assert.Equal(t, "Acme Billing Desk", params.Get("pn"))
}

func TestBuildUPILink_AmountExcluded(t *testing.T) {
	cfg := upiConfig()
	cfg.Payment.UPI.IncludeAmount = false

	link, ok := BuildUPILink(cfg, "INV-1", decimal.NewFromInt(10))
	require.True(t, ok)
	assert.NotContains(t, link, "am=")
}

func TestBuildUPILink_NotConfigured(t *testing.T) {
	cfg := upiConfig()
	cfg.Payment.UPI = nil
	_, ok := BuildUPILink(cfg, "INV-1", decimal.NewFromInt(10))
	assert.False(t, ok)

	cfg = upiConfig()
	cfg.Payment.UPI.UPIID = ""
	_, ok = BuildUPILink(cfg, "INV-1", decimal.NewFromInt(10))
	assert.False(t, ok)
}
