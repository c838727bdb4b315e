// Package swap prepares UniswapV2 router and ERC-20 approve calls for an
// external wallet to sign. Nothing here signs or sends transactions.
package swap

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/xtrntr/tradedesk/internal/chain"
	"github.com/xtrntr/tradedesk/internal/format"
	"github.com/xtrntr/tradedesk/internal/market"
	"github.com/xtrntr/tradedesk/internal/metrics"
)

const (
	RouterAddress = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	WETHAddress   = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"

	// DeadlineWindow is added to the current time to form the swap deadline
	DeadlineWindow = 20 * time.Minute
)

var (
	ErrWalletNotConnected = errors.New("Please connect your wallet")
	ErrInvalidAmount      = errors.New("Invalid amount")
	ErrInvalidAddress     = errors.New("Invalid address")
	ErrInvalidSlippage    = errors.New("Invalid slippage")
)

// Call is an unsigned contract call. Data is the ABI-encoded calldata and
// Value the wei attached, both ready to hand to a wallet.
type Call struct {
	To     string        `json:"to"`
	Data   string        `json:"data"`
	Value  string        `json:"value"`
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
}

// Params describes a token to token swap
type Params struct {
	FromToken string  `json:"fromToken"`
	ToToken   string  `json:"toToken"`
	Amount    string  `json:"amount"`
	Slippage  float64 `json:"slippage"`
	Decimals  int     `json:"decimals"`
}

type Builder struct {
	router  common.Address
	weth    common.Address
	metrics *metrics.Metrics
}

// NewBuilder targets the UniswapV2 router on Ethereum mainnet. m may be nil.
func NewBuilder(m *metrics.Metrics) *Builder {
	return &Builder{
		router:  common.HexToAddress(chain.Routers["uniswapV2"]),
		weth:    common.HexToAddress(WETHAddress),
		metrics: m,
	}
}

// Approve lets the router spend amount of token on behalf of owner
func (b *Builder) Approve(owner, token, amount string, decimals int) (*Call, error) {
	if owner == "" {
		return nil, ErrWalletNotConnected
	}
	tokenAddr, err := address(token)
	if err != nil {
		return nil, err
	}
	amountIn, err := positiveUnits(amount, decimals)
	if err != nil {
		return nil, err
	}

	data, err := ERC20ABI.Pack("approve", b.router, amountIn)
	if err != nil {
		return nil, fmt.Errorf("pack approve: %w", err)
	}
	b.metrics.ContractCall("approve")
	return &Call{
		To:     tokenAddr.Hex(),
		Data:   hexutil.Encode(data),
		Value:  "0",
		Method: "approve",
		Args:   []interface{}{b.router.Hex(), amountIn.String()},
	}, nil
}

// Swap builds swapExactTokensForTokens over the direct path from -> to
func (b *Builder) Swap(owner string, p Params, now time.Time) (*Call, error) {
	if owner == "" {
		return nil, ErrWalletNotConnected
	}
	recipient, err := address(owner)
	if err != nil {
		return nil, err
	}
	from, err := address(p.FromToken)
	if err != nil {
		return nil, err
	}
	to, err := address(p.ToToken)
	if err != nil {
		return nil, err
	}
	amountIn, err := positiveUnits(p.Amount, p.Decimals)
	if err != nil {
		return nil, err
	}
	amountOutMin, err := MinimumOut(amountIn, p.Slippage)
	if err != nil {
		return nil, err
	}
	deadline := Deadline(now)
	path := []common.Address{from, to}

	data, err := RouterABI.Pack("swapExactTokensForTokens", amountIn, amountOutMin, path, recipient, deadline)
	if err != nil {
		return nil, fmt.Errorf("pack swapExactTokensForTokens: %w", err)
	}
	b.metrics.ContractCall("swapExactTokensForTokens")
	return &Call{
		To:     b.router.Hex(),
		Data:   hexutil.Encode(data),
		Value:  "0",
		Method: "swapExactTokensForTokens",
		Args:   []interface{}{amountIn.String(), amountOutMin.String(), hexPath(path), recipient.Hex(), deadline.String()},
	}, nil
}

// SwapETHForTokens builds swapExactETHForTokens with WETH at the head of the
// path. The ether amount rides along as the call value.
func (b *Builder) SwapETHForTokens(owner, toToken, ethAmount string, slippage float64, now time.Time) (*Call, error) {
	if owner == "" {
		return nil, ErrWalletNotConnected
	}
	recipient, err := address(owner)
	if err != nil {
		return nil, err
	}
	to, err := address(toToken)
	if err != nil {
		return nil, err
	}
	amountIn, err := positiveUnits(ethAmount, format.EtherDecimals)
	if err != nil {
		return nil, err
	}
	amountOutMin, err := MinimumOut(amountIn, slippage)
	if err != nil {
		return nil, err
	}
	deadline := Deadline(now)
	path := []common.Address{b.weth, to}

	data, err := RouterABI.Pack("swapExactETHForTokens", amountOutMin, path, recipient, deadline)
	if err != nil {
		return nil, fmt.Errorf("pack swapExactETHForTokens: %w", err)
	}
	b.metrics.ContractCall("swapExactETHForTokens")
	return &Call{
		To:     b.router.Hex(),
		Data:   hexutil.Encode(data),
		Value:  amountIn.String(),
		Method: "swapExactETHForTokens",
		Args:   []interface{}{amountOutMin.String(), hexPath(path), recipient.Hex(), deadline.String()},
	}, nil
}

// MinimumOut is floor(amountIn * (1 - slippage/100))
func MinimumOut(amountIn *big.Int, slippage float64) (*big.Int, error) {
	if slippage < 0 || slippage > market.MaxSlippage {
		return nil, ErrInvalidSlippage
	}
	keep := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(slippage).Div(decimal.NewFromInt(100)))
	return decimal.NewFromBigInt(amountIn, 0).Mul(keep).Floor().BigInt(), nil
}

// Deadline is now plus DeadlineWindow in unix seconds
func Deadline(now time.Time) *big.Int {
	return big.NewInt(now.Add(DeadlineWindow).Unix())
}

func address(s string) (common.Address, error) {
	if !format.IsValidAddress(s) {
		return common.Address{}, ErrInvalidAddress
	}
	return common.HexToAddress(s), nil
}

func positiveUnits(amount string, decimals int) (*big.Int, error) {
	v, err := format.ParseUnits(strings.TrimSpace(amount), decimals)
	if err != nil || v.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	return v, nil
}

func hexPath(path []common.Address) []string {
	out := make([]string, len(path))
	for i, a := range path {
		out[i] = a.Hex()
	}
	return out
}
