package swap

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	quoteOutputRatio  = decimal.RequireFromString("0.95")
	quoteMinimumRatio = decimal.RequireFromString("0.99")
)

// quotePriceImpact is the fixed impact reported by the mock quote, in percent
const quotePriceImpact = 0.5

type Estimate struct {
	OutputAmount    string  `json:"outputAmount"`
	PriceImpact     float64 `json:"priceImpact"`
	MinimumReceived string  `json:"minimumReceived"`
}

// Quote estimates a swap without touching the chain. It returns nil for an
// empty, zero, negative or unparsable amount.
func Quote(amount string) *Estimate {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil
	}
	in, err := decimal.NewFromString(amount)
	if err != nil || !in.IsPositive() {
		return nil
	}
	out := in.Mul(quoteOutputRatio)
	return &Estimate{
		OutputAmount:    out.StringFixed(6),
		PriceImpact:     quotePriceImpact,
		MinimumReceived: out.Mul(quoteMinimumRatio).StringFixed(6),
	}
}
