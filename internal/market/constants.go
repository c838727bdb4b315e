package market

import "time"

// TradingPairs are the pairs the UI lists
var TradingPairs = []string{
	"BTC/USDT",
	"ETH/USDT",
	"BNB/USDT",
	"SOL/USDT",
	"ADA/USDT",
	"XRP/USDT",
	"DOT/USDT",
	"MATIC/USDT",
	"AVAX/USDT",
	"LINK/USDT",
	"UNI/USDT",
	"ATOM/USDT",
}

// IsTradingPair reports whether pair is one of TradingPairs
func IsTradingPair(pair string) bool {
	for _, p := range TradingPairs {
		if p == pair {
			return true
		}
	}
	return false
}

// Timeframe is one selectable chart resolution
type Timeframe struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Seconds int64  `json:"seconds"`
}

var Timeframes = []Timeframe{
	{Value: "1m", Label: "1m", Seconds: 60},
	{Value: "5m", Label: "5m", Seconds: 300},
	{Value: "15m", Label: "15m", Seconds: 900},
	{Value: "30m", Label: "30m", Seconds: 1800},
	{Value: "1H", Label: "1H", Seconds: 3600},
	{Value: "4H", Label: "4H", Seconds: 14400},
	{Value: "1D", Label: "1D", Seconds: 86400},
	{Value: "1W", Label: "1W", Seconds: 604800},
}

// TimeframeByValue looks up a chart resolution
func TimeframeByValue(value string) (Timeframe, bool) {
	for _, tf := range Timeframes {
		if tf.Value == value {
			return tf, true
		}
	}
	return Timeframe{}, false
}

// SlippageOptions are the preset slippage tolerances in percent
var SlippageOptions = []float64{0.1, 0.5, 1.0, 2.0, 5.0}

// GasPriceMultipliers scale the network gas price per tier
var GasPriceMultipliers = map[string]float64{
	"low":    0.8,
	"medium": 1.0,
	"high":   1.2,
}

const (
	MinTradeAmount  = 0.0001
	MinSwapAmount   = 0.01
	MinGasPrice     = 1
	MaxSlippage     = 50
	MaxGasPriceGwei = 1000
)

// Refresh intervals of the synthesized feeds
const (
	TickerInterval = 3 * time.Second
	DepthInterval  = 3 * time.Second
	ChartInterval  = 5 * time.Second
)

const (
	depthLevels = 15
	candleCount = 50
	printCount  = 20
)

// seedCoins is the ticker's starting point: price and 24h change in percent
var seedCoins = []struct {
	Symbol string
	Price  float64
	Change float64
}{
	{"BTC/USDT", 45000, 2.5},
	{"ETH/USDT", 2500, 3.2},
	{"BNB/USDT", 320, -1.5},
	{"SOL/USDT", 98, 5.7},
	{"ADA/USDT", 0.45, -0.8},
	{"XRP/USDT", 0.52, 1.2},
	{"DOT/USDT", 7.8, 4.3},
	{"MATIC/USDT", 0.89, -2.1},
}

// basePrices covers listed pairs that are not on the ticker
var basePrices = map[string]float64{
	"AVAX/USDT": 35,
	"LINK/USDT": 14.5,
	"UNI/USDT":  6.2,
	"ATOM/USDT": 9.8,
}
