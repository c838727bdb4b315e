// Package stream pushes market data to websocket clients on fixed intervals
// and mirrors every message to an optional message bus.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xtrntr/tradedesk/internal/market"
	"github.com/xtrntr/tradedesk/internal/metrics"
)

// Envelope types
const (
	TypeTicker  = "ticker"
	TypeDepth   = "depth"
	TypeCandles = "candles"
	TypeTrades  = "trades"
)

// SubjectPrefix prefixes the bus subject of every envelope type
const SubjectPrefix = "tradedesk."

// Envelope is the JSON frame sent to clients
type Envelope struct {
	Type      string      `json:"type"`
	Pair      string      `json:"pair,omitempty"`
	Timeframe string      `json:"timeframe,omitempty"`
	Data      interface{} `json:"data"`
}

// Sink receives a copy of every broadcast. *nats.Conn satisfies it.
type Sink interface {
	Publish(subject string, data []byte) error
}

type Intervals struct {
	Ticker time.Duration
	Depth  time.Duration
	Chart  time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Ticker: market.TickerInterval,
		Depth:  market.DepthInterval,
		Chart:  market.ChartInterval,
	}
}

type Hub struct {
	source    market.DataSource
	intervals Intervals
	sink      Sink
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

type Option func(*Hub)

func WithSink(s Sink) Option {
	return func(h *Hub) { h.sink = s }
}

func WithIntervals(iv Intervals) Option {
	return func(h *Hub) { h.intervals = iv }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(h *Hub) { h.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

func NewHub(source market.DataSource, opts ...Option) *Hub {
	h := &Hub{
		source:    source,
		intervals: DefaultIntervals(),
		logger:    logrus.StandardLogger(),
		clients:   make(map[*Client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithField("component", "stream")
	return h
}

// Run drives the ticker, depth and chart timers until ctx is cancelled. The
// timers are stopped and every client is closed before Run returns.
func (h *Hub) Run(ctx context.Context) {
	var wg sync.WaitGroup
	loop := func(every time.Duration, tick func(context.Context)) {
		defer wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				tick(ctx)
			}
		}
	}

	wg.Add(3)
	go loop(h.intervals.Ticker, h.broadcastTicker)
	go loop(h.intervals.Depth, h.broadcastDepth)
	go loop(h.intervals.Chart, h.broadcastCandles)
	h.logger.WithFields(logrus.Fields{
		"ticker": h.intervals.Ticker,
		"depth":  h.intervals.Depth,
		"chart":  h.intervals.Chart,
	}).Info("stream started")
	wg.Wait()
	for _, c := range h.snapshotClients() {
		h.Unregister(c)
	}
	h.logger.Info("stream stopped")
}

// Register adds c and sends it a full snapshot for its subscription
func (h *Hub) Register(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.ClientConnected()
	h.sendSnapshot(ctx, c)
}

// Unregister removes c and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.metrics.ClientDisconnected()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastTicker(ctx context.Context) {
	tickers, err := h.source.FetchTicker(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("fetch ticker")
		return
	}
	h.publish(Envelope{Type: TypeTicker, Data: tickers}, h.snapshotClients())
}

func (h *Hub) broadcastDepth(ctx context.Context) {
	for pair, clients := range h.byPair() {
		depth, err := h.source.FetchDepth(ctx, pair)
		if err != nil {
			h.logger.WithError(err).WithField("pair", pair).Warn("fetch depth")
			continue
		}
		h.publish(Envelope{Type: TypeDepth, Pair: pair, Data: depth}, clients)
	}
}

func (h *Hub) broadcastCandles(ctx context.Context) {
	for sub, clients := range h.bySubscription() {
		candles, err := h.source.FetchCandles(ctx, sub.pair, sub.timeframe)
		if err != nil {
			h.logger.WithError(err).WithField("pair", sub.pair).Warn("fetch candles")
			continue
		}
		h.publish(Envelope{Type: TypeCandles, Pair: sub.pair, Timeframe: sub.timeframe, Data: candles}, clients)
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, c *Client) {
	pair, timeframe := c.Subscription()
	targets := []*Client{c}

	if tickers, err := h.source.FetchTicker(ctx); err == nil {
		h.deliver(h.encode(Envelope{Type: TypeTicker, Data: tickers}), targets)
	}
	if depth, err := h.source.FetchDepth(ctx, pair); err == nil {
		h.deliver(h.encode(Envelope{Type: TypeDepth, Pair: pair, Data: depth}), targets)
	}
	if candles, err := h.source.FetchCandles(ctx, pair, timeframe); err == nil {
		h.deliver(h.encode(Envelope{Type: TypeCandles, Pair: pair, Timeframe: timeframe, Data: candles}), targets)
	}
	if prints, err := h.source.FetchTrades(ctx, pair); err == nil {
		h.deliver(h.encode(Envelope{Type: TypeTrades, Pair: pair, Data: prints}), targets)
	}
}

// publish fans env out to clients and mirrors it to the sink
func (h *Hub) publish(env Envelope, clients []*Client) {
	payload := h.encode(env)
	if payload == nil {
		return
	}
	h.metrics.Broadcast(env.Type)
	h.deliver(payload, clients)
	if h.sink != nil {
		if err := h.sink.Publish(SubjectPrefix+env.Type, payload); err != nil {
			h.logger.WithError(err).WithField("type", env.Type).Warn("sink publish failed")
		}
	}
}

func (h *Hub) encode(env Envelope) []byte {
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.WithError(err).WithField("type", env.Type).Error("marshal envelope")
		return nil
	}
	return payload
}

// deliver queues payload without blocking. Clients whose queue is full are
// dropped.
func (h *Hub) deliver(payload []byte, clients []*Client) {
	if payload == nil {
		return
	}
	var slow []*Client
	h.mu.RLock()
	for _, c := range clients {
		if _, ok := h.clients[c]; !ok {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("client send buffer full, dropping")
		h.Unregister(c)
	}
}

func (h *Hub) snapshotClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) byPair() map[string][]*Client {
	out := make(map[string][]*Client)
	for _, c := range h.snapshotClients() {
		pair, _ := c.Subscription()
		out[pair] = append(out[pair], c)
	}
	return out
}

type subscription struct {
	pair, timeframe string
}

func (h *Hub) bySubscription() map[subscription][]*Client {
	out := make(map[subscription][]*Client)
	for _, c := range h.snapshotClients() {
		pair, timeframe := c.Subscription()
		key := subscription{pair, timeframe}
		out[key] = append(out[key], c)
	}
	return out
}
