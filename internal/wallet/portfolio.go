package wallet

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/xtrntr/tradedesk/internal/format"
)

// Display prices used until a price feed is wired in
var (
	ethPrice       = decimal.NewFromInt(2500)
	usdtHolding    = decimal.RequireFromString("1250")
	btcHolding     = decimal.RequireFromString("0.0125")
	btcHoldingUSD  = decimal.RequireFromString("562.5")
	portfolioTrend = 8.5
)

type Asset struct {
	Name   string  `json:"name"`
	Amount string  `json:"amount"`
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
	Share  float64 `json:"share"`
}

type Portfolio struct {
	TotalValue float64 `json:"totalValue"`
	Change24h  float64 `json:"change24h"`
	Assets     []Asset `json:"assets"`
}

// BuildPortfolio values the native balance in ETH next to the fixed
// stablecoin and BTC holdings. Share is each asset's percent of the total.
func BuildPortfolio(balanceWei *big.Int) Portfolio {
	if balanceWei == nil {
		balanceWei = new(big.Int)
	}
	eth := decimal.NewFromBigInt(balanceWei, -format.EtherDecimals)
	values := []decimal.Decimal{eth.Mul(ethPrice), usdtHolding, btcHoldingUSD}
	assets := []Asset{
		{Name: "ETH", Amount: eth.String(), Change: 5.2},
		{Name: "USDT", Amount: usdtHolding.StringFixed(2), Change: 0.1},
		{Name: "BTC", Amount: btcHolding.String(), Change: -2.3},
	}

	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	for i := range assets {
		assets[i].Value = values[i].Round(2).InexactFloat64()
		if total.IsPositive() {
			assets[i].Share = values[i].Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
	}
	return Portfolio{
		TotalValue: total.Round(2).InexactFloat64(),
		Change24h:  portfolioTrend,
		Assets:     assets,
	}
}
