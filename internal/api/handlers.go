package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/xtrntr/tradedesk/internal/auth"
	"github.com/xtrntr/tradedesk/internal/market"
	"github.com/xtrntr/tradedesk/internal/metrics"
	"github.com/xtrntr/tradedesk/internal/models"
	"github.com/xtrntr/tradedesk/internal/store"
	"github.com/xtrntr/tradedesk/internal/stream"
	"github.com/xtrntr/tradedesk/internal/swap"
	"github.com/xtrntr/tradedesk/internal/wallet"
)

type contextKey string

const storeKey contextKey = "store"

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Sessions *auth.SessionService
	Stores   *store.Registry
	Market   market.DataSource
	Swaps    *swap.Builder
	Wallet   wallet.Provider // nil when no RPC endpoint is configured
	Hub      *stream.Hub
	Metrics  *metrics.Metrics
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

// NewHandler creates a new handler
func NewHandler(sessions *auth.SessionService, stores *store.Registry, source market.DataSource, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		Sessions: sessions,
		Stores:   stores,
		Market:   source,
		Swaps:    swap.NewBuilder(nil),
		Logger:   logger.WithField("component", "api"),
		Now:      time.Now,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decode reads the JSON body into payload and validates it. On failure it
// writes the error response and returns false.
func decode(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if msg := validationError(payload); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// CreateSession issues a new anonymous session. Its store is loaded on
// first use.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, token, err := h.Sessions.NewSession()
	if err != nil {
		h.Logger.WithError(err).Error("failed to create session")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token, "sessionId": id})
}

// SessionMiddleware resolves the Bearer token to the session's store
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		session, err := h.Sessions.SessionFromToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), storeKey, h.Stores.Get(r.Context(), session))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func storeFrom(r *http.Request) *store.Store {
	s, _ := r.Context().Value(storeKey).(*store.Store)
	return s
}

// GetState returns the session's full state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storeFrom(r).State())
}

func (h *Handler) SetSelectedPair(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !decode(w, r, &req) {
		return
	}
	s := storeFrom(r)
	s.SetSelectedPair(req.Pair)
	writeJSON(w, http.StatusOK, s.State())
}

func (h *Handler) SetPortfolioView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decode(w, r, &req) {
		return
	}
	s := storeFrom(r)
	s.SetPortfolioView(models.PortfolioView(req.View))
	writeJSON(w, http.StatusOK, s.State())
}

func (h *Handler) SetChartTimeframe(w http.ResponseWriter, r *http.Request) {
	var req timeframeRequest
	if !decode(w, r, &req) {
		return
	}
	s := storeFrom(r)
	s.SetChartTimeframe(req.Timeframe)
	writeJSON(w, http.StatusOK, s.State())
}

func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storeFrom(r).State().Orders)
}

// PlaceOrder records an order locally. Nothing matches or fills it.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decode(w, r, &req) {
		return
	}

	o := models.NewOrder{
		Pair:   req.Pair,
		Type:   models.OrderType(req.Type),
		Side:   models.Side(req.Side),
		Amount: req.Amount,
	}
	if o.Type == models.OrderTypeLimit {
		if req.Price <= 0 {
			writeError(w, http.StatusBadRequest, "Limit orders require a positive price")
			return
		}
		price := req.Price
		o.Price = &price
	}

	writeJSON(w, http.StatusCreated, storeFrom(r).AddOrder(o))
}

// CancelOrder marks an order cancelled. Unknown ids are ignored.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	storeFrom(r).CancelOrder(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearOrders(w http.ResponseWriter, r *http.Request) {
	storeFrom(r).ClearOrders()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storeFrom(r).State().Trades)
}

// RecordTrade appends to the trade log. A missing total is amount * price.
func (h *Handler) RecordTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !decode(w, r, &req) {
		return
	}
	total := req.Total
	if total == 0 {
		total = market.OrderTotal(req.Amount, req.Price)
	}
	t := storeFrom(r).AddTrade(models.NewTrade{
		Pair:   req.Pair,
		Side:   models.Side(req.Side),
		Price:  req.Price,
		Amount: req.Amount,
		Total:  total,
		Status: models.TradeStatus(req.Status),
	})
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) ClearTrades(w http.ResponseWriter, r *http.Request) {
	storeFrom(r).ClearTrades()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !decode(w, r, &req) {
		return
	}
	s := storeFrom(r)
	s.AddFavorite(req.Pair)
	writeJSON(w, http.StatusOK, s.State().Favorites)
}

// RemoveFavorite takes the pair from ?pair= or from the rest of the path,
// e.g. /favorites/BTC/USDT
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		pair = chi.URLParam(r, "*")
	}
	if pair == "" {
		writeError(w, http.StatusBadRequest, "pair is required")
		return
	}
	s := storeFrom(r)
	s.RemoveFavorite(pair)
	writeJSON(w, http.StatusOK, s.State().Favorites)
}

// UpdateSettings merges the given fields into the session's settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Slippage != nil && (*patch.Slippage < 0 || *patch.Slippage > market.MaxSlippage) {
		writeError(w, http.StatusBadRequest, "Invalid slippage")
		return
	}
	if patch.GasPrice != nil {
		if _, ok := market.GasPriceMultipliers[string(*patch.GasPrice)]; !ok {
			writeError(w, http.StatusBadRequest, "Invalid gas price")
			return
		}
	}
	if patch.Theme != nil && *patch.Theme != models.ThemeDark && *patch.Theme != models.ThemeLight {
		writeError(w, http.StatusBadRequest, "Invalid theme")
		return
	}

	s := storeFrom(r)
	s.UpdateSettings(patch)
	writeJSON(w, http.StatusOK, s.State().Settings)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": h.Stores.Len(),
	})
}
