// Package market synthesizes the ticker, order book depth, chart candles and
// recent trades shown by the exchange UI. Nothing here reflects a real
// market; DataSource exists so a real feed can replace RandomSource.
package market

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/xtrntr/tradedesk/internal/models"
)

var (
	ErrUnknownPair      = errors.New("unknown trading pair")
	ErrUnknownTimeframe = errors.New("unknown chart timeframe")
	ErrNoSymbol         = errors.New("token symbol required")
)

// DataSource is the market data capability the API and stream hub read from
type DataSource interface {
	FetchTicker(ctx context.Context) ([]models.Ticker, error)
	FetchDepth(ctx context.Context, pair string) (models.Depth, error)
	FetchCandles(ctx context.Context, pair, timeframe string) ([]models.Candle, error)
	FetchTrades(ctx context.Context, pair string) ([]models.Print, error)
	FetchTokenPrice(ctx context.Context, symbol string) (models.TokenPrice, error)
	FetchTokenPrices(ctx context.Context, symbols []string) (map[string]models.TokenPrice, error)
}

// maxCatchUp bounds how many ticker steps a single fetch replays
const maxCatchUp = 100

// RandomSource is a seeded pseudo-random DataSource. Ticker prices random-walk
// once per step of elapsed clock time; everything else is regenerated on
// every fetch around the current ticker price.
type RandomSource struct {
	mu       sync.Mutex
	rng      *rand.Rand
	now      func() time.Time
	step     time.Duration
	coins    []models.Ticker
	lastStep time.Time
}

// NewRandomSource seeds the generator. step defaults to TickerInterval and
// now to time.Now.
func NewRandomSource(seed int64, step time.Duration, now func() time.Time) *RandomSource {
	if now == nil {
		now = time.Now
	}
	if step <= 0 {
		step = TickerInterval
	}
	coins := make([]models.Ticker, 0, len(seedCoins))
	for _, c := range seedCoins {
		coins = append(coins, models.Ticker{Symbol: c.Symbol, Price: c.Price, Change: c.Change})
	}
	return &RandomSource{
		rng:      rand.New(rand.NewSource(seed)),
		now:      now,
		step:     step,
		coins:    coins,
		lastStep: now(),
	}
}

// FetchTicker returns the ticker after applying any pending random-walk steps
func (s *RandomSource) FetchTicker(ctx context.Context) ([]models.Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.advance()
	return append([]models.Ticker{}, s.coins...), nil
}

// FetchDepth builds depthLevels price levels per side around the pair price
func (s *RandomSource) FetchDepth(ctx context.Context, pair string) (models.Depth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.basePrice(pair)
	if err != nil {
		return models.Depth{}, err
	}
	step := base / 4500

	bids := make([]models.Level, 0, depthLevels)
	asks := make([]models.Level, 0, depthLevels)
	for i := 0; i < depthLevels; i++ {
		offset := float64(i+1) * step
		amount := s.rng.Float64() * 5

		bids = append(bids, models.Level{Price: base - offset, Amount: amount, Total: (base - offset) * amount})
		asks = append(asks, models.Level{Price: base + offset, Amount: amount, Total: (base + offset) * amount})
	}

	// Bids best (highest) first; asks highest first so the best ask sits
	// next to the spread when rendered top to bottom.
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price > asks[j].Price })

	return models.Depth{
		Pair:   pair,
		Bids:   bids,
		Asks:   asks,
		Spread: Spread(bids, asks),
	}, nil
}

// FetchCandles returns candleCount points spaced by the timeframe, oldest first
func (s *RandomSource) FetchCandles(ctx context.Context, pair, timeframe string) ([]models.Candle, error) {
	tf, ok := TimeframeByValue(timeframe)
	if !ok {
		return nil, ErrUnknownTimeframe
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.basePrice(pair)
	if err != nil {
		return nil, err
	}
	width := base / 90
	now := s.now()

	candles := make([]models.Candle, 0, candleCount)
	for i := 0; i < candleCount; i++ {
		at := now.Add(-time.Duration(int64(candleCount-i)*tf.Seconds) * time.Second)
		candles = append(candles, models.Candle{
			Time:   at.UnixMilli(),
			Price:  base + s.rng.Float64()*2*width - width,
			Volume: s.rng.Float64() * 1000000,
		})
	}
	return candles, nil
}

// FetchTrades returns printCount recent prints, newest first
func (s *RandomSource) FetchTrades(ctx context.Context, pair string) ([]models.Print, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.basePrice(pair)
	if err != nil {
		return nil, err
	}

	at := s.now()
	prints := make([]models.Print, 0, printCount)
	for i := 0; i < printCount; i++ {
		side := models.SideBuy
		if s.rng.Intn(2) == 1 {
			side = models.SideSell
		}
		prints = append(prints, models.Print{
			Pair:      pair,
			Side:      side,
			Price:     base * (1 + (s.rng.Float64()-0.5)*0.002),
			Amount:    s.rng.Float64() * 2,
			Timestamp: at.UnixMilli(),
		})
		at = at.Add(-time.Duration(1+s.rng.Intn(5)) * time.Second)
	}
	return prints, nil
}

// advance replays one random-walk step per elapsed step interval.
// Callers hold s.mu.
func (s *RandomSource) advance() {
	now := s.now()
	steps := int(now.Sub(s.lastStep) / s.step)
	if steps <= 0 {
		return
	}
	s.lastStep = s.lastStep.Add(time.Duration(steps) * s.step)
	if steps > maxCatchUp {
		steps = maxCatchUp
	}
	for ; steps > 0; steps-- {
		for i := range s.coins {
			s.coins[i].Price *= 1 + (s.rng.Float64()-0.5)*0.01
			s.coins[i].Change += (s.rng.Float64() - 0.5) * 0.5
		}
	}
}

// basePrice is the live ticker price for ticker pairs and a fixed price for
// the remaining listed pairs. Callers hold s.mu.
func (s *RandomSource) basePrice(pair string) (float64, error) {
	s.advance()
	for _, c := range s.coins {
		if c.Symbol == pair {
			return c.Price, nil
		}
	}
	if p, ok := basePrices[pair]; ok {
		return p, nil
	}
	return 0, ErrUnknownPair
}

// Spread is the gap between the lowest ask and the highest bid, or 0 when
// either side is empty.
func Spread(bids, asks []models.Level) float64 {
	if len(bids) == 0 || len(asks) == 0 {
		return 0
	}
	bestBid := bids[0].Price
	for _, b := range bids {
		if b.Price > bestBid {
			bestBid = b.Price
		}
	}
	bestAsk := asks[0].Price
	for _, a := range asks {
		if a.Price < bestAsk {
			bestAsk = a.Price
		}
	}
	return bestAsk - bestBid
}
