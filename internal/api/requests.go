package api

import (
	"github.com/gookit/validate"

	"github.com/xtrntr/tradedesk/internal/market"
)

// Request payloads. Field names in validation messages are the json names.

type pairRequest struct {
	Pair string `json:"pair" validate:"required"`
}

type orderRequest struct {
	Pair   string  `json:"pair" validate:"required"`
	Type   string  `json:"type" validate:"required|in:limit,market"`
	Side   string  `json:"side" validate:"required|in:buy,sell"`
	Price  float64 `json:"price"`
	Amount float64 `json:"amount" validate:"required|minTradeAmount"`
}

func (r orderRequest) MinTradeAmount(val float64) bool {
	return val >= market.MinTradeAmount
}

func (r orderRequest) Messages() map[string]string {
	return validate.MS{
		"required":              "{field} is required",
		"in":                    "Invalid {field}",
		"amount.required":       "Invalid amount",
		"amount.minTradeAmount": "Invalid amount",
	}
}

type tradeRequest struct {
	Pair   string  `json:"pair" validate:"required"`
	Side   string  `json:"side" validate:"required|in:buy,sell"`
	Price  float64 `json:"price" validate:"required"`
	Amount float64 `json:"amount" validate:"required"`
	Total  float64 `json:"total"`
	Status string  `json:"status" validate:"in:pending,completed,failed"`
}

func (r tradeRequest) Messages() map[string]string {
	return validate.MS{
		"required": "{field} is required",
		"in":       "Invalid {field}",
	}
}

type viewRequest struct {
	View string `json:"view" validate:"required|in:value,percentage"`
}

type timeframeRequest struct {
	Timeframe string `json:"timeframe" validate:"required|knownTimeframe"`
}

func (r timeframeRequest) KnownTimeframe(val string) bool {
	_, ok := market.TimeframeByValue(val)
	return ok
}

func (r timeframeRequest) Messages() map[string]string {
	return validate.MS{
		"knownTimeframe": "Unknown timeframe",
	}
}

// Decimals may be omitted for tokens listed on ChainID (Ethereum by default)

type approveRequest struct {
	Owner    string `json:"owner"`
	Token    string `json:"token" validate:"required"`
	Amount   string `json:"amount"`
	Decimals *int   `json:"decimals"`
	ChainID  int64  `json:"chainId"`
}

type swapRequest struct {
	Owner     string  `json:"owner"`
	FromToken string  `json:"fromToken" validate:"required"`
	ToToken   string  `json:"toToken" validate:"required"`
	Amount    string  `json:"amount"`
	Slippage  float64 `json:"slippage"`
	Decimals  *int    `json:"decimals"`
	ChainID   int64   `json:"chainId"`
}

type swapETHRequest struct {
	Owner    string  `json:"owner"`
	ToToken  string  `json:"toToken" validate:"required"`
	Amount   string  `json:"amount"`
	Slippage float64 `json:"slippage"`
}

type quoteRequest struct {
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	Amount    string `json:"amount"`
}

type broadcastRequest struct {
	RawTx string `json:"rawTx" validate:"required|startsWith:0x"`
}

// validationError returns the first failed rule's message, or "" if
// payload is valid
func validationError(payload interface{}) string {
	v := validate.Struct(payload)
	if v.Validate() {
		return ""
	}
	return v.Errors.One()
}
