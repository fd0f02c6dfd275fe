package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/services"
	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/bootstrap"
	"github.com/bimakw/coin-tracker/internal/config"
	"github.com/bimakw/coin-tracker/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-tracker/internal/logging"
	"github.com/bimakw/coin-tracker/internal/presentation/handlers"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting coin-tracker refresher",
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("interval", cfg.Refresh.Interval),
		zap.String("base_url", cfg.CoinGecko.BaseURL),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, backend, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open portfolio", zap.Error(err))
	}
	defer backend.Close()

	if backend.Name == "memory" {
		logger.Warn("The refresher shares nothing with other processes when storage is in memory")
	}

	priceClient := coingecko.NewClient(cfg.CoinGecko, logger)

	refreshService := services.NewRefreshService(
		store,
		priceClient,
		cfg.CoinGecko.MaxIDsPerRequest,
		cfg.Refresh.Workers,
		services.NewRefreshMetrics(prometheus.DefaultRegisterer),
		logger,
	)

	// Another process may edit the portfolio, so each run starts from what
	// is persisted
	refresher := &reloadingRefresher{store: store, next: refreshService, logger: logger}
	scheduler := services.NewScheduler(ctx, refresher, cfg.Refresh.Interval, logger)
	unfollow := scheduler.Follow(store)

	// Start metrics server
	healthHandler := handlers.NewHealthHandler(backend.Health, nil, priceClient)
	go startMetricsServer(cfg.Refresh.MetricsPort, healthHandler, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping refresher...")

	unfollow()
	scheduler.Stop()

	logger.Info("Refresher stopped")
}

// reloadingRefresher reloads the store before each refresh
type reloadingRefresher struct {
	store  *state.Store
	next   services.Refresher
	logger *zap.Logger
}

func (r *reloadingRefresher) Refresh(ctx context.Context) (*services.RefreshResult, error) {
	if err := r.store.Reload(ctx); err != nil {
		r.logger.Warn("Failed to reload portfolio, refreshing the loaded one", zap.Error(err))
	}
	return r.next.Refresh(ctx)
}

func startMetricsServer(port int, health *handlers.HealthHandler, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/live", health.Live)

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
