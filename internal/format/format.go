// Package format renders prices, amounts, addresses and times the way the
// exchange UI displays them (en-US).
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// dec converts v, mapping NaN and infinities to zero
func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// USD formats value as dollars with thousands separators, e.g. "$1,234.50"
func USD(value float64, decimals int) string {
	if value < 0 {
		return "-$" + Number(-value, decimals)
	}
	return "$" + Number(value, decimals)
}

// Number formats value with thousands separators and fixed decimals
func Number(value float64, decimals int) string {
	rounded := dec(value).Round(int32(decimals)).InexactFloat64()
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), rounded)
}

// Compact abbreviates large numbers with K, M or B
func Compact(value float64) string {
	d := dec(value)
	switch {
	case value >= 1e9:
		return d.Div(decimal.New(1, 9)).StringFixed(2) + "B"
	case value >= 1e6:
		return d.Div(decimal.New(1, 6)).StringFixed(2) + "M"
	case value >= 1e3:
		return d.Div(decimal.New(1, 3)).StringFixed(2) + "K"
	}
	return d.StringFixed(2)
}

// Percentage formats a signed percent, e.g. "+2.50%" or "-1.20%"
func Percentage(value float64, decimals int) string {
	sign := ""
	if value >= 0 {
		sign = "+"
	}
	return sign + dec(value).StringFixed(int32(decimals)) + "%"
}

// Address shortens a hex address to its first start and last end characters
func Address(address string, start, end int) string {
	if address == "" {
		return ""
	}
	if len(address) < start+end {
		return address
	}
	return address[:start] + "..." + address[len(address)-end:]
}

// ShortAddress uses the 6/4 split shown on the wallet button
func ShortAddress(address string) string {
	return Address(address, 6, 4)
}

func TxHash(hash string) string {
	return Address(hash, 8, 6)
}

// TokenAmount renders a decimal amount string; amounts below 0.0001 switch to
// scientific notation. Unparsable input renders as "0".
func TokenAmount(amount string, displayDecimals int) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(n) {
		return "0"
	}
	if n > 0 && n < 0.0001 {
		return exponential(n, 2)
	}
	return dec(n).StringFixed(int32(displayDecimals))
}

// exponential mirrors the compact exponent style "1.23e-5"
func exponential(n float64, digits int) string {
	s := strconv.FormatFloat(n, 'e', digits, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%se%+d", mantissa, e)
}

// Date formats t as "Jan 2, 2006, 03:04 PM" or "Jan 2, 2006"
func Date(t time.Time, includeTime bool) string {
	if includeTime {
		return t.Format("Jan 2, 2006, 03:04 PM")
	}
	return t.Format("Jan 2, 2006")
}

// RelativeTime renders the age of t at now, e.g. "5m ago"
func RelativeTime(t, now time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd ago", days)
	case hours > 0:
		return fmt.Sprintf("%dh ago", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm ago", minutes)
	}
	return fmt.Sprintf("%ds ago", seconds)
}

// ParseInputNumber keeps digits and dots from user input and parses the
// leading number; anything unparsable is 0.
func ParseInputNumber(input string) float64 {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	// Like parseFloat, stop at the second dot
	if first := strings.IndexByte(cleaned, '.'); first >= 0 {
		if second := strings.IndexByte(cleaned[first+1:], '.'); second >= 0 {
			cleaned = cleaned[:first+1+second]
		}
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}

// IsValidAddress reports whether address is 0x followed by 40 hex digits
func IsValidAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

func MarketCap(value float64) string {
	return "$" + Compact(value)
}

func Volume(value float64) string {
	return Compact(value)
}

// PriceChange is the move between two prices
type PriceChange struct {
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Formatted     string  `json:"formatted"`
}

// CalculatePriceChange reports a 0% move when previous is 0
func CalculatePriceChange(current, previous float64) PriceChange {
	change := current - previous
	percent := 0.0
	if previous != 0 {
		percent = change / previous * 100
	}
	return PriceChange{
		Change:        change,
		ChangePercent: percent,
		Formatted:     Percentage(percent, 2),
	}
}

// Truncate cuts text to maxLength runes and appends "..."
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}

func APY(value float64) string {
	return dec(value).StringFixed(2) + "%"
}
