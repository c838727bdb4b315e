package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"github.com/xtrntr/tradedesk/internal/market"
)

const (
	DefaultPair      = "BTC/USDT"
	DefaultTimeframe = "1H"

	sendBuffer = 64
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket subscriber. It follows a single pair and chart
// timeframe and can switch them by sending a subscribe frame.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu        sync.Mutex
	pair      string
	timeframe string
}

func NewClient(conn *websocket.Conn, pair, timeframe string) *Client {
	return &Client{
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		pair:      pair,
		timeframe: timeframe,
	}
}

func (c *Client) Subscription() (pair, timeframe string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pair, c.timeframe
}

func (c *Client) subscribe(pair, timeframe string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pair = pair
	c.timeframe = timeframe
}

// subscribeRequest is the only frame clients send
type subscribeRequest struct {
	Pair      string `json:"pair"`
	Timeframe string `json:"timeframe"`
}

// ServeWS upgrades the request and streams to the new client until either
// side closes. Query parameters pair and timeframe pick the subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		pair = DefaultPair
	}
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	if !market.IsTradingPair(pair) {
		http.Error(w, `{"error": "Unknown trading pair"}`, http.StatusBadRequest)
		return
	}
	if _, ok := market.TimeframeByValue(timeframe); !ok {
		http.Error(w, `{"error": "Unknown timeframe"}`, http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("failed to upgrade connection")
		return
	}

	ctx := r.Context()
	c := NewClient(conn, pair, timeframe)
	go h.writePump(c)
	h.Register(ctx, c)
	h.readPump(ctx, c)
}

func (h *Hub) readPump(ctx context.Context, c *Client) {
	defer h.Unregister(c)
	for {
		var req subscribeRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("client read failed")
			}
			return
		}
		pair, timeframe := c.Subscription()
		if req.Pair != "" {
			pair = req.Pair
		}
		if req.Timeframe != "" {
			timeframe = req.Timeframe
		}
		if _, ok := market.TimeframeByValue(timeframe); !market.IsTradingPair(pair) || !ok {
			continue
		}
		c.subscribe(pair, timeframe)
		h.sendSnapshot(ctx, c)
	}
}

func (h *Hub) writePump(c *Client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.WithError(err).Debug("client write failed")
			h.Unregister(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// ConnectNATS dials the bus used as the hub's Sink
func ConnectNATS(url string) (*nats.Conn, error) {
	return nats.Connect(url, nats.Name("tradedesk"), nats.MaxReconnects(-1))
}
