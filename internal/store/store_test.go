package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtrntr/tradedesk/internal/models"
)

func newTestStore(t *testing.T, p Persister) *Store {
	t.Helper()
	seq := 0
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return New(context.Background(), p,
		WithClock(func() time.Time {
			seq++
			return base.Add(time.Duration(seq) * time.Millisecond)
		}),
		WithIDFunc(func(prefix string, now time.Time) string {
			return fmt.Sprintf("%s_%d", prefix, now.UnixMilli())
		}),
	)
}

func floatPtr(f float64) *float64 { return &f }

func TestStore_Defaults(t *testing.T) {
	s := newTestStore(t, nil)
	st := s.State()

	assert.Equal(t, "BTC/USDT", st.SelectedPair)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, st.Favorites)
	assert.Equal(t, DefaultSettings(), st.Settings)
	assert.Equal(t, models.PortfolioViewValue, st.PortfolioView)
	assert.Equal(t, "1H", st.ChartTimeframe)
	assert.Empty(t, st.Orders)
	assert.Empty(t, st.Trades)
}

func TestStore_AddOrder(t *testing.T) {
	s := newTestStore(t, nil)

	order := s.AddOrder(models.NewOrder{
		Pair:   "ETH/USDT",
		Type:   models.OrderTypeLimit,
		Side:   models.SideBuy,
		Price:  floatPtr(2500),
		Amount: 1,
	})

	st := s.State()
	require.Len(t, st.Orders, 1)
	assert.Equal(t, order, st.Orders[0])
	assert.Equal(t, models.OrderStatusOpen, st.Orders[0].Status)
	assert.Equal(t, 0.0, st.Orders[0].Filled)
	assert.Equal(t, 2500.0, *st.Orders[0].Price)
	assert.True(t, strings.HasPrefix(order.ID, "order_"))
	assert.NotZero(t, order.Timestamp)

	second := s.AddOrder(models.NewOrder{Pair: "BTC/USDT", Type: models.OrderTypeMarket, Side: models.SideSell, Amount: 2})
	st = s.State()
	require.Len(t, st.Orders, 2)
	assert.Equal(t, second.ID, st.Orders[0].ID, "newest order first")
	assert.Nil(t, st.Orders[0].Price)
	assert.NotEqual(t, st.Orders[0].ID, st.Orders[1].ID)
}

func TestStore_CancelOrder(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.AddOrder(models.NewOrder{Pair: "BTC/USDT", Type: models.OrderTypeLimit, Side: models.SideBuy, Price: floatPtr(1), Amount: 1})
	b := s.AddOrder(models.NewOrder{Pair: "BTC/USDT", Type: models.OrderTypeLimit, Side: models.SideSell, Price: floatPtr(2), Amount: 1})

	s.CancelOrder("order_unknown")
	for _, o := range s.State().Orders {
		assert.Equal(t, models.OrderStatusOpen, o.Status)
	}

	s.CancelOrder(a.ID)
	st := s.State()
	assert.Equal(t, b.ID, st.Orders[0].ID)
	assert.Equal(t, models.OrderStatusOpen, st.Orders[0].Status)
	assert.Equal(t, models.OrderStatusCancelled, st.Orders[1].Status)
}

func TestStore_AddTradeCapsHistory(t *testing.T) {
	s := newTestStore(t, nil)

	for i := 1; i <= 105; i++ {
		s.AddTrade(models.NewTrade{
			Pair:   "BTC/USDT",
			Side:   models.SideBuy,
			Price:  float64(i),
			Amount: 1,
			Total:  float64(i),
		})
		assert.Len(t, s.State().Trades, min(i, MaxTrades))
	}

	st := s.State()
	require.Len(t, st.Trades, MaxTrades)
	assert.Equal(t, 105.0, st.Trades[0].Price, "most recent first")
	assert.Equal(t, 6.0, st.Trades[MaxTrades-1].Price, "oldest five evicted")
	for i := 1; i < len(st.Trades); i++ {
		assert.Greater(t, st.Trades[i-1].Timestamp, st.Trades[i].Timestamp)
	}
}

func TestStore_AddTradeStatus(t *testing.T) {
	s := newTestStore(t, nil)

	trade := s.AddTrade(models.NewTrade{Pair: "ETH/USDT", Side: models.SideSell, Price: 2500, Amount: 2, Total: 5000})
	assert.Equal(t, models.TradeStatusPending, trade.Status)
	assert.True(t, strings.HasPrefix(trade.ID, "trade_"))

	trade = s.AddTrade(models.NewTrade{Pair: "ETH/USDT", Side: models.SideSell, Status: models.TradeStatusCompleted})
	assert.Equal(t, models.TradeStatusCompleted, trade.Status)
}

func TestStore_Favorites(t *testing.T) {
	s := newTestStore(t, nil)

	s.AddFavorite("SOL/USDT")
	s.AddFavorite("SOL/USDT")
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}, s.State().Favorites)

	s.RemoveFavorite("DOGE/USDT")
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}, s.State().Favorites)

	s.RemoveFavorite("ETH/USDT")
	assert.Equal(t, []string{"BTC/USDT", "SOL/USDT"}, s.State().Favorites)

	s.AddFavorite("ETH/USDT")
	assert.Equal(t, []string{"BTC/USDT", "SOL/USDT", "ETH/USDT"}, s.State().Favorites)
}

func TestStore_UpdateSettings(t *testing.T) {
	s := newTestStore(t, nil)

	s.UpdateSettings(models.SettingsPatch{Slippage: floatPtr(1.0)})
	want := DefaultSettings()
	want.Slippage = 1.0
	assert.Equal(t, want, s.State().Settings)

	light := models.ThemeLight
	off := false
	s.UpdateSettings(models.SettingsPatch{Theme: &light, Notifications: &off})
	want.Theme = models.ThemeLight
	want.Notifications = false
	assert.Equal(t, want, s.State().Settings)
}

func TestStore_FieldReplacementAndClear(t *testing.T) {
	s := newTestStore(t, nil)

	s.SetSelectedPair("not a pair")
	s.SetPortfolioView(models.PortfolioViewPercentage)
	s.SetChartTimeframe("4H")
	s.AddOrder(models.NewOrder{Pair: "BTC/USDT", Amount: 1})
	s.AddTrade(models.NewTrade{Pair: "BTC/USDT", Amount: 1})

	st := s.State()
	assert.Equal(t, "not a pair", st.SelectedPair)
	assert.Equal(t, models.PortfolioViewPercentage, st.PortfolioView)
	assert.Equal(t, "4H", st.ChartTimeframe)

	s.ClearOrders()
	assert.Empty(t, s.State().Orders)
	assert.Len(t, s.State().Trades, 1)

	s.ClearTrades()
	assert.Empty(t, s.State().Trades)
}

func TestStore_StateIsACopy(t *testing.T) {
	s := newTestStore(t, nil)
	s.AddOrder(models.NewOrder{Pair: "BTC/USDT", Price: floatPtr(10), Amount: 1})

	st := s.State()
	st.Favorites[0] = "changed"
	*st.Orders[0].Price = 99
	st.Orders[0].Status = models.OrderStatusFilled

	fresh := s.State()
	assert.Equal(t, "BTC/USDT", fresh.Favorites[0])
	assert.Equal(t, 10.0, *fresh.Orders[0].Price)
	assert.Equal(t, models.OrderStatusOpen, fresh.Orders[0].Status)
}

func TestState_UpdatesArePure(t *testing.T) {
	before := DefaultState()
	now := time.Now()

	after := before.AddOrder(models.NewOrder{Pair: "BTC/USDT", Amount: 1}, "o1", now)
	after = after.AddTrade(models.NewTrade{Pair: "BTC/USDT"}, "t1", now)
	after = after.AddFavorite("SOL/USDT")
	after = after.SetSelectedPair("SOL/USDT")

	assert.Empty(t, before.Orders)
	assert.Empty(t, before.Trades)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, before.Favorites)
	assert.Equal(t, "BTC/USDT", before.SelectedPair)
	assert.Len(t, after.Orders, 1)
}

func TestStore_PersistsSubsetOnEveryMutation(t *testing.T) {
	p := NewMemoryPersister(nil)
	s := newTestStore(t, p)

	s.AddOrder(models.NewOrder{Pair: "BTC/USDT", Amount: 1})
	s.AddTrade(models.NewTrade{Pair: "BTC/USDT"})
	s.AddFavorite("XRP/USDT")
	s.SetChartTimeframe("1D")
	assert.Equal(t, 4, p.Saves())

	snap, err := p.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "XRP/USDT"}, snap.Favorites)
	assert.Equal(t, "1D", snap.ChartTimeframe)

	// Orders and trades never reach the persisted record
	restored := newTestStore(t, p)
	assert.Empty(t, restored.State().Orders)
	assert.Empty(t, restored.State().Trades)
	assert.Equal(t, "1D", restored.State().ChartTimeframe)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "XRP/USDT"}, restored.State().Favorites)
}

func TestStore_PersistFailureIsSwallowed(t *testing.T) {
	p := NewMemoryPersister(nil)
	p.FailWith(errors.New("disk full"))
	s := newTestStore(t, p)

	s.SetSelectedPair("ETH/USDT")
	assert.Equal(t, "ETH/USDT", s.State().SelectedPair)
	assert.Equal(t, 1, p.Saves())
}

func TestStore_RehydrateDedupesFavorites(t *testing.T) {
	p := NewMemoryPersister(&models.Snapshot{
		Favorites:      []string{"ETH/USDT", "ETH/USDT", "SOL/USDT"},
		Settings:       DefaultSettings(),
		SelectedPair:   "SOL/USDT",
		ChartTimeframe: "5m",
		PortfolioView:  models.PortfolioViewPercentage,
	})
	s := newTestStore(t, p)

	st := s.State()
	assert.Equal(t, []string{"ETH/USDT", "SOL/USDT"}, st.Favorites)
	assert.Equal(t, "SOL/USDT", st.SelectedPair)
	assert.Equal(t, "5m", st.ChartTimeframe)
	assert.Equal(t, models.PortfolioViewPercentage, st.PortfolioView)
}

func TestFilePersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir, RecordName("abc"))

	snap, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)

	s := newTestStore(t, p)
	s.AddFavorite("ADA/USDT")
	s.UpdateSettings(models.SettingsPatch{Slippage: floatPtr(2)})

	assert.Equal(t, filepath.Join(dir, "tradedesk-storage_abc.json"), p.Path())
	restored := newTestStore(t, NewFilePersister(dir, RecordName("abc")))
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
}

func TestFilePersister_PartialRecordKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir, "partial")
	require.NoError(t, os.WriteFile(p.Path(), []byte(`{"selectedPair":"DOT/USDT"}`), 0o644))

	snap, err := p.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "DOT/USDT", snap.SelectedPair)
	assert.Equal(t, DefaultSettings(), snap.Settings)
	assert.Equal(t, "1H", snap.ChartTimeframe)
}

func TestFilePersister_CorruptRecordFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir, "corrupt")
	require.NoError(t, os.WriteFile(p.Path(), []byte(`{not json`), 0o644))

	_, err := p.Load(context.Background())
	assert.Error(t, err)

	s := newTestStore(t, p)
	assert.Equal(t, DefaultState().Snapshot(), s.Snapshot())
}

func TestRegistry_OneStorePerSession(t *testing.T) {
	persisters := map[string]*MemoryPersister{}
	r := NewRegistry(func(name string) Persister {
		p := NewMemoryPersister(nil)
		persisters[name] = p
		return p
	})
	opened := 0
	r.OnOpen(func() { opened++ })

	a := r.Get(context.Background(), "a")
	assert.Same(t, a, r.Get(context.Background(), "a"))
	b := r.Get(context.Background(), "b")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, opened)

	a.AddFavorite("SOL/USDT")
	assert.Equal(t, 1, persisters[RecordName("a")].Saves())
	assert.Equal(t, 0, persisters[RecordName("b")].Saves())
	assert.NotContains(t, b.State().Favorites, "SOL/USDT")
}

func TestRegistry_SweepDropsIdleSessions(t *testing.T) {
	persisters := map[string]*MemoryPersister{}
	r := NewRegistry(func(name string) Persister {
		if p, ok := persisters[name]; ok {
			return p
		}
		p := NewMemoryPersister(nil)
		persisters[name] = p
		return p
	})
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	closed := 0
	r.OnClose(func() { closed++ })

	idle := r.Get(context.Background(), "idle")
	idle.AddFavorite("SOL/USDT")
	r.Get(context.Background(), "busy")

	clock = clock.Add(23 * time.Hour)
	r.Get(context.Background(), "busy")

	clock = clock.Add(2 * time.Hour)
	assert.Equal(t, 1, r.Sweep(clock.Add(-24*time.Hour)))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, closed)

	// Preferences come back from the persister
	again := r.Get(context.Background(), "idle")
	assert.NotSame(t, idle, again)
	assert.Contains(t, again.State().Favorites, "SOL/USDT")
	assert.Equal(t, 0, r.Sweep(clock.Add(-24*time.Hour)))
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	r := NewRegistry(nil)
	r.Get(context.Background(), "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 0, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID("order", now)
		assert.Regexp(t, `^order_1700000000000_[0-9a-z]{9}$`, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
