package market

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/xtrntr/tradedesk/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestSource() (*RandomSource, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewRandomSource(42, 0, clock.Now), clock
}

func TestRandomSource_TickerDrifts(t *testing.T) {
	src, clock := newTestSource()
	ctx := context.Background()

	first, err := src.FetchTicker(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 8 {
		t.Fatalf("expected 8 coins, got %d", len(first))
	}
	if first[0].Symbol != "BTC/USDT" || first[0].Price != 45000 {
		t.Errorf("expected BTC at seed price, got %+v", first[0])
	}

	// No time elapsed, no step
	again, _ := src.FetchTicker(ctx)
	if again[0].Price != first[0].Price {
		t.Errorf("price moved without elapsed time")
	}

	clock.t = clock.t.Add(TickerInterval)
	moved, _ := src.FetchTicker(ctx)
	for i := range moved {
		ratio := moved[i].Price / first[i].Price
		if ratio < 0.995 || ratio > 1.005 {
			t.Errorf("%s moved more than 0.5%% in one step: %f", moved[i].Symbol, ratio)
		}
		if math.Abs(moved[i].Change-first[i].Change) > 0.25 {
			t.Errorf("%s change moved more than 0.25: %f -> %f", moved[i].Symbol, first[i].Change, moved[i].Change)
		}
	}
}

func TestRandomSource_CustomStep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	src := NewRandomSource(42, 10*time.Second, clock.Now)
	ctx := context.Background()

	first, _ := src.FetchTicker(ctx)
	clock.t = clock.t.Add(TickerInterval)
	same, _ := src.FetchTicker(ctx)
	if same[0].Price != first[0].Price {
		t.Errorf("price moved before a full step elapsed")
	}

	clock.t = clock.t.Add(7 * time.Second)
	moved, _ := src.FetchTicker(ctx)
	if moved[0].Price == first[0].Price {
		t.Errorf("price did not move after a full step")
	}
}

func TestRandomSource_TickerIsACopy(t *testing.T) {
	src, _ := newTestSource()
	ticker, _ := src.FetchTicker(context.Background())
	ticker[0].Price = 1

	fresh, _ := src.FetchTicker(context.Background())
	if fresh[0].Price == 1 {
		t.Error("caller mutated source state")
	}
}

func TestRandomSource_Depth(t *testing.T) {
	src, _ := newTestSource()

	depth, err := src.FetchDepth(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(depth.Bids) != 15 || len(depth.Asks) != 15 {
		t.Fatalf("expected 15 levels per side, got %d/%d", len(depth.Bids), len(depth.Asks))
	}

	if depth.Bids[0].Price != 44990 {
		t.Errorf("expected best bid 44990, got %f", depth.Bids[0].Price)
	}
	if depth.Asks[len(depth.Asks)-1].Price != 45010 {
		t.Errorf("expected best ask 45010 at the bottom, got %f", depth.Asks[len(depth.Asks)-1].Price)
	}
	if depth.Asks[0].Price != 45150 {
		t.Errorf("expected highest ask 45150 first, got %f", depth.Asks[0].Price)
	}
	if math.Abs(depth.Spread-20) > 1e-9 {
		t.Errorf("expected spread 20, got %f", depth.Spread)
	}

	for i := 1; i < len(depth.Bids); i++ {
		if depth.Bids[i].Price >= depth.Bids[i-1].Price {
			t.Errorf("bids not descending at %d", i)
		}
	}
	for _, l := range append(depth.Bids, depth.Asks...) {
		if l.Amount < 0 || l.Amount >= 5 {
			t.Errorf("amount out of range: %f", l.Amount)
		}
		if math.Abs(l.Total-l.Price*l.Amount) > 1e-6 {
			t.Errorf("total mismatch: %+v", l)
		}
	}
}

func TestRandomSource_UnknownPair(t *testing.T) {
	src, _ := newTestSource()
	ctx := context.Background()

	if _, err := src.FetchDepth(ctx, "FOO/BAR"); !errors.Is(err, ErrUnknownPair) {
		t.Errorf("expected ErrUnknownPair, got %v", err)
	}
	if _, err := src.FetchCandles(ctx, "FOO/BAR", "1H"); !errors.Is(err, ErrUnknownPair) {
		t.Errorf("expected ErrUnknownPair, got %v", err)
	}
	if _, err := src.FetchTrades(ctx, "FOO/BAR"); !errors.Is(err, ErrUnknownPair) {
		t.Errorf("expected ErrUnknownPair, got %v", err)
	}

	// Listed but not on the ticker
	if _, err := src.FetchDepth(ctx, "LINK/USDT"); err != nil {
		t.Errorf("expected LINK/USDT depth, got %v", err)
	}
}

func TestRandomSource_Candles(t *testing.T) {
	src, clock := newTestSource()

	candles, err := src.FetchCandles(context.Background(), "BTC/USDT", "1H")
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 50 {
		t.Fatalf("expected 50 candles, got %d", len(candles))
	}
	if want := clock.t.Add(-50 * time.Hour).UnixMilli(); candles[0].Time != want {
		t.Errorf("expected first candle at %d, got %d", want, candles[0].Time)
	}
	for i, c := range candles {
		if i > 0 && c.Time-candles[i-1].Time != time.Hour.Milliseconds() {
			t.Errorf("candles %d and %d not one hour apart", i-1, i)
		}
		if c.Price < 44500 || c.Price > 45500 {
			t.Errorf("price out of band: %f", c.Price)
		}
		if c.Volume < 0 || c.Volume >= 1000000 {
			t.Errorf("volume out of range: %f", c.Volume)
		}
	}

	if _, err := src.FetchCandles(context.Background(), "BTC/USDT", "2H"); !errors.Is(err, ErrUnknownTimeframe) {
		t.Errorf("expected ErrUnknownTimeframe, got %v", err)
	}
}

func TestRandomSource_Trades(t *testing.T) {
	src, _ := newTestSource()

	prints, err := src.FetchTrades(context.Background(), "ETH/USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(prints) != 20 {
		t.Fatalf("expected 20 prints, got %d", len(prints))
	}
	for i, p := range prints {
		if p.Side != models.SideBuy && p.Side != models.SideSell {
			t.Errorf("bad side %q", p.Side)
		}
		if i > 0 && p.Timestamp >= prints[i-1].Timestamp {
			t.Errorf("prints not newest first at %d", i)
		}
	}
}

func TestRandomSource_SameSeedSameData(t *testing.T) {
	a, _ := newTestSource()
	b, _ := newTestSource()

	da, _ := a.FetchDepth(context.Background(), "SOL/USDT")
	db, _ := b.FetchDepth(context.Background(), "SOL/USDT")
	for i := range da.Bids {
		if da.Bids[i] != db.Bids[i] {
			t.Fatalf("depth differs at %d", i)
		}
	}
}

func TestSpread(t *testing.T) {
	if got := Spread(nil, []models.Level{{Price: 1}}); got != 0 {
		t.Errorf("expected 0 spread on empty side, got %f", got)
	}
	bids := []models.Level{{Price: 9}, {Price: 10}}
	asks := []models.Level{{Price: 13}, {Price: 12}}
	if got := Spread(bids, asks); got != 2 {
		t.Errorf("expected spread 2, got %f", got)
	}
}

func TestFormHelpers(t *testing.T) {
	if got := OrderTotal(0.1, 45000.123); got != 4500.01 {
		t.Errorf("OrderTotal = %f", got)
	}
	if got := AmountForPercent(2, 25); got != 0.5 {
		t.Errorf("AmountForPercent = %f", got)
	}
	if got := AmountForPercent(1, 33); got != 0.33 {
		t.Errorf("AmountForPercent = %f", got)
	}

	candles := []models.Candle{{Price: 100}, {Price: 90}, {Price: 110}}
	if got := SeriesChange(candles); math.Abs(got-10) > 1e-9 {
		t.Errorf("SeriesChange = %f", got)
	}
	if got := SeriesChange(candles[:1]); got != 0 {
		t.Errorf("SeriesChange of one candle = %f", got)
	}
}
