package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts every route on a chi router with CORS for origins
func NewRouter(h *Handler, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler())
	}
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWS)
	}

	r.Post("/session", h.CreateSession)

	// Session-scoped endpoints (require a session token)
	r.Group(func(r chi.Router) {
		r.Use(h.SessionMiddleware)
		r.Get("/state", h.GetState)
		r.Put("/state/pair", h.SetSelectedPair)
		r.Put("/state/portfolio-view", h.SetPortfolioView)
		r.Put("/state/timeframe", h.SetChartTimeframe)

		r.Get("/orders", h.GetOrders)
		r.Post("/orders", h.PlaceOrder)
		r.Delete("/orders", h.ClearOrders)
		r.Delete("/orders/{id}", h.CancelOrder)

		r.Get("/trades", h.GetTrades)
		r.Post("/trades", h.RecordTrade)
		r.Delete("/trades", h.ClearTrades)

		r.Post("/favorites", h.AddFavorite)
		r.Delete("/favorites", h.RemoveFavorite)
		r.Delete("/favorites/*", h.RemoveFavorite)
		r.Patch("/settings", h.UpdateSettings)
	})

	r.Route("/market", func(r chi.Router) {
		r.Get("/ticker", h.GetTicker)
		r.Get("/pairs", h.GetPairs)
		r.Get("/prices", h.GetTokenPrices)
		r.Get("/prices/{symbol}", h.GetTokenPrice)
		r.Get("/{base}/{quote}/depth", h.GetDepth)
		r.Get("/{base}/{quote}/candles", h.GetCandles)
		r.Get("/{base}/{quote}/trades", h.GetMarketTrades)
	})

	r.Get("/tokens", h.GetTokens)
	r.Get("/tokens/{chainId}/{address}", h.GetToken)
	r.Get("/chains", h.GetChains)
	r.Get("/chains/{id}", h.GetChain)

	r.Route("/swap", func(r chi.Router) {
		r.Post("/", h.Swap)
		r.Post("/quote", h.Quote)
		r.Post("/approve", h.Approve)
		r.Post("/eth", h.SwapETH)
	})

	r.Route("/wallet", func(r chi.Router) {
		r.Get("/{address}/balance", h.GetBalance)
		r.Get("/{address}/portfolio", h.GetPortfolio)
		r.Post("/broadcast", h.Broadcast)
	})

	return r
}
