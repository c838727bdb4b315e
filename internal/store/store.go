// Package store holds the per-session trading preferences & activity state.
//
// A Store is an explicitly constructed container around State. Every
// mutation replaces the State with the result of a pure update function and
// then writes the persisted subset through the injected Persister. Store
// operations never fail; persistence errors are logged and counted.
package store

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xtrntr/tradedesk/internal/metrics"
	"github.com/xtrntr/tradedesk/internal/models"
)

const persistTimeout = 5 * time.Second

// IDFunc generates an identifier for a new order or trade
type IDFunc func(prefix string, now time.Time) string

// Store guards a State
type Store struct {
	mu        sync.RWMutex
	state     State
	persister Persister
	now       func() time.Time
	newID     IDFunc
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides the identifier generator
func WithIDFunc(fn IDFunc) Option {
	return func(s *Store) { s.newID = fn }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store and rehydrates it from persister. A failed load is
// logged and the defaults are used.
func New(ctx context.Context, persister Persister, opts ...Option) *Store {
	s := &Store{
		state:     DefaultState(),
		persister: persister,
		now:       time.Now,
		newID:     NewID,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if persister != nil {
		snap, err := persister.Load(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("failed to load persisted state, using defaults")
		} else if snap != nil {
			s.state = s.state.Rehydrate(*snap)
		}
	}
	return s
}

// NewID returns "<prefix>_<unix ms>_<9 base36 chars>"
func NewID(prefix string, now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Snapshot returns the persisted subset of the current state
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Snapshot()
}

func (s *Store) SetSelectedPair(pair string) {
	s.apply("set_selected_pair", func(st State) State { return st.SetSelectedPair(pair) })
}

// AddOrder records a new open order and returns it
func (s *Store) AddOrder(o models.NewOrder) models.Order {
	var order models.Order
	s.apply("add_order", func(st State) State {
		now := s.now()
		next := st.AddOrder(o, s.newID("order", now), now)
		order = next.Orders[0]
		return next
	})
	return order
}

func (s *Store) CancelOrder(id string) {
	s.apply("cancel_order", func(st State) State { return st.CancelOrder(id) })
}

// AddTrade records a trade log entry and returns it
func (s *Store) AddTrade(t models.NewTrade) models.Trade {
	var trade models.Trade
	s.apply("add_trade", func(st State) State {
		now := s.now()
		next := st.AddTrade(t, s.newID("trade", now), now)
		trade = next.Trades[0]
		return next
	})
	return trade
}

func (s *Store) AddFavorite(pair string) {
	s.apply("add_favorite", func(st State) State { return st.AddFavorite(pair) })
}

func (s *Store) RemoveFavorite(pair string) {
	s.apply("remove_favorite", func(st State) State { return st.RemoveFavorite(pair) })
}

func (s *Store) UpdateSettings(patch models.SettingsPatch) {
	s.apply("update_settings", func(st State) State { return st.UpdateSettings(patch) })
}

func (s *Store) SetPortfolioView(view models.PortfolioView) {
	s.apply("set_portfolio_view", func(st State) State { return st.SetPortfolioView(view) })
}

func (s *Store) SetChartTimeframe(timeframe string) {
	s.apply("set_chart_timeframe", func(st State) State { return st.SetChartTimeframe(timeframe) })
}

func (s *Store) ClearOrders() {
	s.apply("clear_orders", func(st State) State { return st.ClearOrders() })
}

func (s *Store) ClearTrades() {
	s.apply("clear_trades", func(st State) State { return st.ClearTrades() })
}

// apply swaps in the updated state and persists it while holding the lock,
// so snapshot writes land in mutation order.
func (s *Store) apply(op string, update func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = update(s.state)
	s.metrics.StoreMutation(op)

	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persister.Save(ctx, s.state.Snapshot()); err != nil {
		s.metrics.PersistFailure()
		s.logger.WithError(err).WithField("op", op).Error("failed to persist state")
	}
}
