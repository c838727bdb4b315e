package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xtrntr/tradedesk/internal/api"
	"github.com/xtrntr/tradedesk/internal/auth"
	"github.com/xtrntr/tradedesk/internal/config"
	"github.com/xtrntr/tradedesk/internal/db"
	"github.com/xtrntr/tradedesk/internal/market"
	"github.com/xtrntr/tradedesk/internal/metrics"
	"github.com/xtrntr/tradedesk/internal/store"
	"github.com/xtrntr/tradedesk/internal/stream"
	"github.com/xtrntr/tradedesk/internal/swap"
	"github.com/xtrntr/tradedesk/internal/wallet"
)

const sessionSweepInterval = 10 * time.Minute

// Main entry point: loads config, wires persistence, market data, stream
// hub and HTTP server
func main() {
	configPath := flag.String("config", "config/tradedesk.yml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("tradedesk")

	factory, closeBackend, err := db.Open(ctx, cfg, logger.WithField("component", "db"))
	if err != nil {
		logger.Fatalf("Failed to open %s backend: %v", cfg.Backend, err)
	}
	defer closeBackend()

	registry := store.NewRegistry(factory, store.WithLogger(logger.WithField("component", "store")), store.WithMetrics(m))
	registry.OnOpen(m.SessionOpened)
	registry.OnClose(m.SessionClosed)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	source := market.NewRandomSource(seed, cfg.TickerInterval, nil)

	hubOpts := []stream.Option{
		stream.WithLogger(logger),
		stream.WithMetrics(m),
		stream.WithIntervals(stream.Intervals{
			Ticker: cfg.TickerInterval,
			Depth:  cfg.DepthInterval,
			Chart:  cfg.ChartInterval,
		}),
	}
	if cfg.NATSURL != "" {
		nc, err := stream.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, streaming to websocket clients only")
		} else {
			defer nc.Drain()
			hubOpts = append(hubOpts, stream.WithSink(nc))
		}
	}
	hub := stream.NewHub(source, hubOpts...)

	handler := api.NewHandler(auth.NewSessionService(cfg.JWTSecret), registry, source, logger)
	handler.Swaps = swap.NewBuilder(m)
	handler.Hub = hub
	handler.Metrics = m
	if cfg.EthRPCURL != "" {
		provider, err := wallet.Dial(ctx, cfg.EthRPCURL, logger)
		if err != nil {
			logger.WithError(err).Warn("Ethereum RPC unavailable, wallet endpoints disabled")
		} else {
			handler.Wallet = provider
		}
	}

	go hub.Run(ctx)
	go registry.Run(ctx, auth.SessionTTL, sessionSweepInterval)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(handler, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "backend": cfg.Backend}).Info("Starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
