package store

import (
	"time"

	"github.com/emirpasic/gods/sets/linkedhashset"

	"github.com/xtrntr/tradedesk/internal/models"
)

// MaxTrades is how many trade log entries are kept, newest first
const MaxTrades = 100

// State is the full trading preferences & activity state. The update
// functions below never modify their receiver; they return a new State.
type State struct {
	SelectedPair   string               `json:"selectedPair"`
	Orders         []models.Order       `json:"orders"`
	Trades         []models.Trade       `json:"trades"`
	Favorites      []string             `json:"favorites"`
	Settings       models.Settings      `json:"settings"`
	PortfolioView  models.PortfolioView `json:"portfolioView"`
	ChartTimeframe string               `json:"chartTimeframe"`
}

// DefaultSettings are applied to a fresh session
func DefaultSettings() models.Settings {
	return models.Settings{
		Slippage:      0.5,
		GasPrice:      models.GasPriceMedium,
		Theme:         models.ThemeDark,
		Notifications: true,
	}
}

// DefaultState returns the state of a session with nothing persisted
func DefaultState() State {
	return State{
		SelectedPair:   "BTC/USDT",
		Orders:         []models.Order{},
		Trades:         []models.Trade{},
		Favorites:      []string{"BTC/USDT", "ETH/USDT"},
		Settings:       DefaultSettings(),
		PortfolioView:  models.PortfolioViewValue,
		ChartTimeframe: "1H",
	}
}

// Clone returns a deep copy
func (s State) Clone() State {
	c := s
	c.Orders = make([]models.Order, len(s.Orders))
	for i, o := range s.Orders {
		if o.Price != nil {
			p := *o.Price
			o.Price = &p
		}
		c.Orders[i] = o
	}
	c.Trades = append([]models.Trade{}, s.Trades...)
	c.Favorites = append([]string{}, s.Favorites...)
	return c
}

// Snapshot extracts the persisted subset. Orders and trades are never persisted.
func (s State) Snapshot() models.Snapshot {
	return models.Snapshot{
		Favorites:      append([]string{}, s.Favorites...),
		Settings:       s.Settings,
		SelectedPair:   s.SelectedPair,
		ChartTimeframe: s.ChartTimeframe,
		PortfolioView:  s.PortfolioView,
	}
}

// Rehydrate overlays a persisted snapshot on s
func (s State) Rehydrate(snap models.Snapshot) State {
	next := s.Clone()
	next.Favorites = dedupe(snap.Favorites)
	next.Settings = snap.Settings
	next.SelectedPair = snap.SelectedPair
	next.ChartTimeframe = snap.ChartTimeframe
	next.PortfolioView = snap.PortfolioView
	return next
}

// SetSelectedPair replaces the active pair. Any string is accepted.
func (s State) SetSelectedPair(pair string) State {
	next := s.Clone()
	next.SelectedPair = pair
	return next
}

// AddOrder prepends a new open, unfilled order
func (s State) AddOrder(o models.NewOrder, id string, now time.Time) State {
	next := s.Clone()
	order := models.Order{
		ID:        id,
		Pair:      o.Pair,
		Type:      o.Type,
		Side:      o.Side,
		Amount:    o.Amount,
		Filled:    0,
		Status:    models.OrderStatusOpen,
		Timestamp: now.UnixMilli(),
	}
	if o.Price != nil {
		p := *o.Price
		order.Price = &p
	}
	next.Orders = append([]models.Order{order}, next.Orders...)
	return next
}

// CancelOrder marks the matching order cancelled; unknown ids are ignored
func (s State) CancelOrder(id string) State {
	next := s.Clone()
	for i := range next.Orders {
		if next.Orders[i].ID == id {
			next.Orders[i].Status = models.OrderStatusCancelled
		}
	}
	return next
}

// AddTrade prepends a trade log entry and keeps the newest MaxTrades
func (s State) AddTrade(t models.NewTrade, id string, now time.Time) State {
	next := s.Clone()
	status := t.Status
	if status == "" {
		status = models.TradeStatusPending
	}
	trade := models.Trade{
		ID:        id,
		Pair:      t.Pair,
		Side:      t.Side,
		Price:     t.Price,
		Amount:    t.Amount,
		Total:     t.Total,
		Timestamp: now.UnixMilli(),
		Status:    status,
	}
	next.Trades = append([]models.Trade{trade}, next.Trades...)
	if len(next.Trades) > MaxTrades {
		next.Trades = next.Trades[:MaxTrades]
	}
	return next
}

// AddFavorite appends pair unless it is already a favorite
func (s State) AddFavorite(pair string) State {
	next := s.Clone()
	set := linkedhashset.New()
	for _, f := range next.Favorites {
		set.Add(f)
	}
	set.Add(pair)
	next.Favorites = setValues(set)
	return next
}

// RemoveFavorite drops pair from the favorites
func (s State) RemoveFavorite(pair string) State {
	next := s.Clone()
	set := linkedhashset.New()
	for _, f := range next.Favorites {
		set.Add(f)
	}
	set.Remove(pair)
	next.Favorites = setValues(set)
	return next
}

// UpdateSettings shallow-merges the non-nil fields of patch
func (s State) UpdateSettings(patch models.SettingsPatch) State {
	next := s.Clone()
	if patch.Slippage != nil {
		next.Settings.Slippage = *patch.Slippage
	}
	if patch.GasPrice != nil {
		next.Settings.GasPrice = *patch.GasPrice
	}
	if patch.Theme != nil {
		next.Settings.Theme = *patch.Theme
	}
	if patch.Notifications != nil {
		next.Settings.Notifications = *patch.Notifications
	}
	return next
}

func (s State) SetPortfolioView(view models.PortfolioView) State {
	next := s.Clone()
	next.PortfolioView = view
	return next
}

func (s State) SetChartTimeframe(timeframe string) State {
	next := s.Clone()
	next.ChartTimeframe = timeframe
	return next
}

func (s State) ClearOrders() State {
	next := s.Clone()
	next.Orders = []models.Order{}
	return next
}

func (s State) ClearTrades() State {
	next := s.Clone()
	next.Trades = []models.Trade{}
	return next
}

func dedupe(pairs []string) []string {
	set := linkedhashset.New()
	for _, p := range pairs {
		set.Add(p)
	}
	return setValues(set)
}

func setValues(set *linkedhashset.Set) []string {
	values := set.Values()
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.(string))
	}
	return out
}
