package models

// OrderType is "limit" or "market"
type OrderType string

// Side is "buy" or "sell"
type Side string

// OrderStatus is the lifecycle state of a locally submitted order
type OrderStatus string

// TradeStatus is carried on trade log entries
type TradeStatus string

// GasPrice is the user's gas-price tier
type GasPrice string

// Theme is the UI color scheme
type Theme string

// PortfolioView selects how the portfolio is rendered
type PortfolioView string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"

	SideBuy  Side = "buy"
	SideSell Side = "sell"

	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"

	TradeStatusPending   TradeStatus = "pending"
	TradeStatusCompleted TradeStatus = "completed"
	TradeStatusFailed    TradeStatus = "failed"

	GasPriceLow    GasPrice = "low"
	GasPriceMedium GasPrice = "medium"
	GasPriceHigh   GasPrice = "high"

	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	PortfolioViewValue      PortfolioView = "value"
	PortfolioViewPercentage PortfolioView = "percentage"
)

// Order represents a locally submitted order. Nothing fills it.
type Order struct {
	ID        string      `json:"id"`
	Pair      string      `json:"pair"`
	Type      OrderType   `json:"type"`
	Side      Side        `json:"side"`
	Price     *float64    `json:"price,omitempty"` // Only set for limit orders
	Amount    float64     `json:"amount"`
	Filled    float64     `json:"filled"`
	Status    OrderStatus `json:"status"`
	Timestamp int64       `json:"timestamp"` // Unix milliseconds
}

// NewOrder is the caller-supplied part of an Order
type NewOrder struct {
	Pair   string    `json:"pair"`
	Type   OrderType `json:"type"`
	Side   Side      `json:"side"`
	Price  *float64  `json:"price,omitempty"`
	Amount float64   `json:"amount"`
}

// Trade represents an entry in the local trade log
type Trade struct {
	ID        string      `json:"id"`
	Pair      string      `json:"pair"`
	Side      Side        `json:"side"`
	Price     float64     `json:"price"`
	Amount    float64     `json:"amount"`
	Total     float64     `json:"total"`
	Timestamp int64       `json:"timestamp"`
	Status    TradeStatus `json:"status"`
}

// NewTrade is the caller-supplied part of a Trade
type NewTrade struct {
	Pair   string      `json:"pair"`
	Side   Side        `json:"side"`
	Price  float64     `json:"price"`
	Amount float64     `json:"amount"`
	Total  float64     `json:"total"`
	Status TradeStatus `json:"status,omitempty"`
}

// Settings holds user-editable preferences
type Settings struct {
	Slippage      float64  `json:"slippage"` // Percent
	GasPrice      GasPrice `json:"gasPrice"`
	Theme         Theme    `json:"theme"`
	Notifications bool     `json:"notifications"`
}

// SettingsPatch carries the fields to merge into Settings; nil means keep
type SettingsPatch struct {
	Slippage      *float64  `json:"slippage,omitempty"`
	GasPrice      *GasPrice `json:"gasPrice,omitempty"`
	Theme         *Theme    `json:"theme,omitempty"`
	Notifications *bool     `json:"notifications,omitempty"`
}

// Snapshot is the persisted subset of the trading store
type Snapshot struct {
	Favorites      []string      `json:"favorites"`
	Settings       Settings      `json:"settings"`
	SelectedPair   string        `json:"selectedPair"`
	ChartTimeframe string        `json:"chartTimeframe"`
	PortfolioView  PortfolioView `json:"portfolioView"`
}

// Ticker is one entry of the scrolling price ticker
type Ticker struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"` // 24h change in percent
}

// TokenPrice is the USD quote of a single token
type TokenPrice struct {
	Symbol    string  `json:"symbol"`
	ID        string  `json:"id"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	Volume24h float64 `json:"volume24h"`
	MarketCap float64 `json:"marketCap"`
}

// Level is one price level of an order book side
type Level struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
	Total  float64 `json:"total"`
}

// Depth is an order book snapshot. Asks are ordered highest price first.
type Depth struct {
	Pair   string  `json:"pair"`
	Bids   []Level `json:"bids"`
	Asks   []Level `json:"asks"`
	Spread float64 `json:"spread"`
}

// Candle is one point of the price chart
type Candle struct {
	Time   int64   `json:"time"` // Unix milliseconds
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// Print is a recent market trade shown under the order book
type Print struct {
	Pair      string  `json:"pair"`
	Side      Side    `json:"side"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

// Token is static ERC-20 metadata
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	ChainID  int64  `json:"chainId"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// NativeCurrency describes a chain's gas token
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Chain is static chain metadata
type Chain struct {
	ID             int64          `json:"id"`
	Key            string         `json:"key"`
	Name           string         `json:"name"`
	Network        string         `json:"network"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
	RPCURLs        []string       `json:"rpcUrls"`
	ExplorerName   string         `json:"explorerName"`
	ExplorerURL    string         `json:"explorerUrl"`
	Testnet        bool           `json:"testnet,omitempty"`
}
