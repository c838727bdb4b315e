package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtrntr/tradedesk/internal/market"
	"github.com/xtrntr/tradedesk/internal/metrics"
)

type recordingSink struct {
	mu       sync.Mutex
	subjects []string
}

func (s *recordingSink) Publish(subject string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = append(s.subjects, subject)
	return nil
}

func (s *recordingSink) seen(subject string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, got := range s.subjects {
		if got == subject {
			return true
		}
	}
	return false
}

func newTestHub(opts ...Option) *Hub {
	logger, _ := test.NewNullLogger()
	opts = append([]Option{WithLogger(logger), WithMetrics(metrics.New("test"))}, opts...)
	return NewHub(market.NewRandomSource(42, 0, nil), opts...)
}

func drain(t *testing.T, c *Client) []Envelope {
	t.Helper()
	var out []Envelope
	for {
		select {
		case msg := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(msg, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func types(envs []Envelope) []string {
	out := make([]string, len(envs))
	for i, e := range envs {
		out[i] = e.Type
	}
	return out
}

func TestRegisterSendsSnapshot(t *testing.T) {
	h := newTestHub()
	c := NewClient(nil, "ETH/USDT", "15m")
	h.Register(context.Background(), c)

	envs := drain(t, c)
	assert.Equal(t, []string{TypeTicker, TypeDepth, TypeCandles, TypeTrades}, types(envs))
	assert.Equal(t, "ETH/USDT", envs[1].Pair)
	assert.Equal(t, "15m", envs[2].Timeframe)
	assert.Equal(t, 1, h.ClientCount())
}

func TestBroadcastsAreGroupedBySubscription(t *testing.T) {
	sink := &recordingSink{}
	h := newTestHub(WithSink(sink))
	ctx := context.Background()

	btc := NewClient(nil, "BTC/USDT", "1H")
	sol := NewClient(nil, "SOL/USDT", "1H")
	h.Register(ctx, btc)
	h.Register(ctx, sol)
	drain(t, btc)
	drain(t, sol)

	h.broadcastDepth(ctx)
	gotBTC, gotSOL := drain(t, btc), drain(t, sol)
	require.Len(t, gotBTC, 1)
	require.Len(t, gotSOL, 1)
	assert.Equal(t, "BTC/USDT", gotBTC[0].Pair)
	assert.Equal(t, "SOL/USDT", gotSOL[0].Pair)

	h.broadcastTicker(ctx)
	assert.Len(t, drain(t, btc), 1)
	assert.Len(t, drain(t, sol), 1)

	assert.True(t, sink.seen("tradedesk.depth"))
	assert.True(t, sink.seen("tradedesk.ticker"))
}

func TestSlowClientIsDropped(t *testing.T) {
	h := newTestHub()
	slow := &Client{send: make(chan []byte), pair: DefaultPair, timeframe: DefaultTimeframe}

	h.Register(context.Background(), slow)
	assert.Equal(t, 0, h.ClientCount())

	_, open := <-slow.send
	assert.False(t, open, "send queue is closed on drop")

	// Unregistering again is a no-op
	h.Unregister(slow)
}

func TestRunStopsOnCancel(t *testing.T) {
	sink := &recordingSink{}
	h := newTestHub(WithSink(sink), WithIntervals(Intervals{
		Ticker: 5 * time.Millisecond,
		Depth:  5 * time.Millisecond,
		Chart:  5 * time.Millisecond,
	}))
	c := NewClient(nil, DefaultPair, DefaultTimeframe)
	h.Register(context.Background(), c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return sink.seen("tradedesk.ticker") && sink.seen("tradedesk.depth") && sink.seen("tradedesk.candles")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, 0, h.ClientCount())
	for range c.send {
	}
}

func TestRunClosesWebsocketClients(t *testing.T) {
	h := newTestHub(WithIntervals(Intervals{Ticker: time.Hour, Depth: time.Hour, Chart: time.Hour}))
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 4; i++ {
		_, _, err := conn.ReadMessage()
		require.NoError(t, err)
	}

	cancel()
	<-done

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
	assert.Equal(t, 0, h.ClientCount())
}

func TestServeWS(t *testing.T) {
	h := newTestHub()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?pair=ETH/USDT", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() Envelope {
		var env Envelope
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&env))
		return env
	}

	var initial []string
	for i := 0; i < 4; i++ {
		initial = append(initial, read().Type)
	}
	assert.Equal(t, []string{TypeTicker, TypeDepth, TypeCandles, TypeTrades}, initial)

	require.NoError(t, conn.WriteJSON(subscribeRequest{Pair: "SOL/USDT"}))
	var switched bool
	for i := 0; i < 4 && !switched; i++ {
		env := read()
		switched = env.Type == TypeDepth && env.Pair == "SOL/USDT"
	}
	assert.True(t, switched)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?pair=FOO/BAR", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
