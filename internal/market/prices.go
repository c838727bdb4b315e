package market

import (
	"context"
	"strings"

	"github.com/xtrntr/tradedesk/internal/models"
)

// tokenIDs maps ticker symbols to price feed ids. Other symbols use their
// lower-cased form.
var tokenIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"BNB":   "binancecoin",
	"MATIC": "matic-network",
	"AVAX":  "avalanche-2",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"WBTC":  "wrapped-bitcoin",
	"DAI":   "dai",
}

// fixedPrices are served as-is; every other id gets random figures
var fixedPrices = map[string]models.TokenPrice{
	"bitcoin":     {Price: 45000, Change24h: 2.5, Volume24h: 25e9, MarketCap: 880e9},
	"ethereum":    {Price: 2500, Change24h: 3.2, Volume24h: 12e9, MarketCap: 300e9},
	"tether":      {Price: 1, Change24h: 0.01, Volume24h: 50e9, MarketCap: 90e9},
	"usd-coin":    {Price: 1, Change24h: -0.01, Volume24h: 4e9, MarketCap: 25e9},
	"binancecoin": {Price: 320, Change24h: -1.5, Volume24h: 1.5e9, MarketCap: 48e9},
}

// TokenID returns the price feed id of symbol
func TokenID(symbol string) string {
	if id, ok := tokenIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

// FetchTokenPrice quotes symbol in USD
func (s *RandomSource) FetchTokenPrice(ctx context.Context, symbol string) (models.TokenPrice, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.TokenPrice{}, ErrNoSymbol
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenPrice(symbol), nil
}

// FetchTokenPrices quotes every non-empty symbol, keyed by the symbol as given
func (s *RandomSource) FetchTokenPrices(ctx context.Context, symbols []string) (map[string]models.TokenPrice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.TokenPrice, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}
		if _, ok := out[symbol]; !ok {
			out[symbol] = s.tokenPrice(symbol)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSymbol
	}
	return out, nil
}

// Callers hold s.mu.
func (s *RandomSource) tokenPrice(symbol string) models.TokenPrice {
	id := TokenID(symbol)
	p, ok := fixedPrices[id]
	if !ok {
		p = models.TokenPrice{
			Price:     s.rng.Float64() * 100,
			Change24h: (s.rng.Float64() - 0.5) * 10,
			Volume24h: s.rng.Float64() * 1e9,
			MarketCap: s.rng.Float64() * 1e10,
		}
	}
	p.Symbol = symbol
	p.ID = id
	return p
}
