package pdf

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	amount := decimal.RequireFromString("1234567.5")

	assert.Equal(t, "Rs. 1,234,567.50", FormatCurrency(amount, "INR", 2))
	assert.Equal(t, "$1,234,567.50", FormatCurrency(amount, "USD", 2))
	assert.Equal(t, "1,234,567.50 AUD", FormatCurrency(amount, "AUD", 2))
	assert.Equal(t, "$-1,234.00", FormatCurrency(decimal.NewFromInt(-1234), "USD", 2))
	assert.Equal(t, "$100", FormatCurrency(decimal.NewFromInt(100), "USD", 0))
}

func TestHexToRGB(t *testing.T) {
	r, g, b := hexToRGB("#1A73E8")
	assert.Equal(t, 26, r)
	assert.Equal(t, 115, g)
	assert.Equal(t, 232, b)

	r, g, b = hexToRGB("ffffff")
	assert.Equal(t, 255, r)
	assert.Equal(t, 255, g)
	assert.Equal(t, 255, b)

	// Garbage falls back to white.
	r, g, b = hexToRGB("#zzz")
	assert.Equal(t, 255, r)
	assert.Equal(t, 255, g)
	assert.Equal(t, 255, b)
}
