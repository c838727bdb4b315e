package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xtrntr/tradedesk/internal/chain"
	"github.com/xtrntr/tradedesk/internal/format"
	"github.com/xtrntr/tradedesk/internal/market"
	"github.com/xtrntr/tradedesk/internal/models"
)

func pairParam(r *http.Request) string {
	return chi.URLParam(r, "base") + "/" + chi.URLParam(r, "quote")
}

func (h *Handler) marketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrUnknownPair):
		writeError(w, http.StatusNotFound, "Unknown trading pair")
	case errors.Is(err, market.ErrUnknownTimeframe):
		writeError(w, http.StatusBadRequest, "Unknown timeframe")
	case errors.Is(err, market.ErrNoSymbol):
		writeError(w, http.StatusBadRequest, "Token symbol required")
	default:
		h.Logger.WithError(err).Error("market data fetch failed")
		writeError(w, http.StatusInternalServerError, "Network error occurred")
	}
}

func (h *Handler) GetTicker(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.Market.FetchTicker(r.Context())
	if err != nil {
		h.marketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickers)
}

func (h *Handler) GetPairs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pairs":      market.TradingPairs,
		"timeframes": market.Timeframes,
		"slippage":   market.SlippageOptions,
	})
}

func (h *Handler) GetDepth(w http.ResponseWriter, r *http.Request) {
	depth, err := h.Market.FetchDepth(r.Context(), pairParam(r))
	if err != nil {
		h.marketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depth)
}

// GetCandles serves chart points for ?timeframe=, 1H by default
func (h *Handler) GetCandles(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "1H"
	}
	candles, err := h.Market.FetchCandles(r.Context(), pairParam(r), timeframe)
	if err != nil {
		h.marketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pair":      pairParam(r),
		"timeframe": timeframe,
		"candles":   candles,
		"change":    market.SeriesChange(candles),
	})
}

func (h *Handler) GetMarketTrades(w http.ResponseWriter, r *http.Request) {
	prints, err := h.Market.FetchTrades(r.Context(), pairParam(r))
	if err != nil {
		h.marketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prints)
}

// GetTokens lists the tokens of ?chainId=, Ethereum mainnet by default
func (h *Handler) GetTokens(w http.ResponseWriter, r *http.Request) {
	chainID := int64(defaultChainID)
	if v := r.URL.Query().Get("chainId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid chain ID")
			return
		}
		chainID = id
	}
	tokens := chain.TokensByChain(chainID)
	if tokens == nil {
		tokens = []models.Token{}
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *Handler) GetToken(w http.ResponseWriter, r *http.Request) {
	chainID, err := strconv.ParseInt(chi.URLParam(r, "chainId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chain ID")
		return
	}
	tok, ok := chain.TokenByAddress(chi.URLParam(r, "address"), chainID)
	if !ok {
		writeError(w, http.StatusNotFound, "Token not found")
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (h *Handler) GetChains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, chain.Chains())
}

// GetChain accepts either a numeric chain id or a chain key like "polygon"
func (h *Handler) GetChain(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")
	var (
		c  models.Chain
		ok bool
	)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		c, ok = chain.ChainByID(id)
	} else {
		c, ok = chain.ChainByName(ref)
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Chain not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// tokenPrice adds display strings to a quote
type tokenPrice struct {
	models.TokenPrice
	FormattedPrice     string `json:"formattedPrice"`
	FormattedChange    string `json:"formattedChange"`
	FormattedVolume    string `json:"formattedVolume"`
	FormattedMarketCap string `json:"formattedMarketCap"`
}

func newTokenPrice(p models.TokenPrice) tokenPrice {
	return tokenPrice{
		TokenPrice:         p,
		FormattedPrice:     format.USD(p.Price, 2),
		FormattedChange:    format.Percentage(p.Change24h, 2),
		FormattedVolume:    format.Volume(p.Volume24h),
		FormattedMarketCap: format.MarketCap(p.MarketCap),
	}
}

func (h *Handler) GetTokenPrice(w http.ResponseWriter, r *http.Request) {
	p, err := h.Market.FetchTokenPrice(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.marketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenPrice(p))
}

// GetTokenPrices quotes the comma separated ?symbols=
func (h *Handler) GetTokenPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Market.FetchTokenPrices(r.Context(), strings.Split(r.URL.Query().Get("symbols"), ","))
	if err != nil {
		h.marketError(w, err)
		return
	}
	out := make(map[string]tokenPrice, len(prices))
	for symbol, p := range prices {
		out[symbol] = newTokenPrice(p)
	}
	writeJSON(w, http.StatusOK, out)
}
