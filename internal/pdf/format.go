package pdf

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols maps currency codes to prefixes the core PDF fonts
// can render. Unlisted currencies are appended as a code suffix.
var currencySymbols = map[string]string{
	"INR": "Rs. ",
	"USD": "$",
	"EUR": "EUR ",
	"GBP": "GBP ",
}

// FormatCurrency renders a decimal amount with thousands separators
// and the currency attached.
func FormatCurrency(value decimal.Decimal, currency string, decimals int32) string {
	text := groupThousands(value.StringFixed(decimals))
	if symbol, ok := currencySymbols[currency]; ok {
		return symbol + text
	}
	return text + " " + currency
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + fracPart
}

// hexToRGB parses a #RRGGBB color. Unparseable input comes back white.
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 255, 255, 255
	}
	r := hexByte(hex[0:2])
	g := hexByte(hex[2:4])
	b := hexByte(hex[4:6])
	if r < 0 || g < 0 || b < 0 {
		return 255, 255, 255
	}
	return r, g, b
}

func hexByte(s string) int {
	value := 0
	for i := 0; i < 2; i++ {
		value <<= 4
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			value |= int(c - '0')
		case c >= 'a' && c <= 'f':
			value |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			value |= int(c-'A') + 10
		default:
			return -1
		}
	}
	return value
}
