package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/services"
	"github.com/bimakw/coin-tracker/internal/bootstrap"
	"github.com/bimakw/coin-tracker/internal/config"
	"github.com/bimakw/coin-tracker/internal/domain/currency"
	"github.com/bimakw/coin-tracker/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-tracker/internal/logging"
	"github.com/bimakw/coin-tracker/internal/presentation/handlers"
	"github.com/bimakw/coin-tracker/internal/presentation/middleware"
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

	logger.Info("Starting coin-tracker API",
		zap.Int("port", cfg.API.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("refresh_interval", cfg.Refresh.Interval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the portfolio
	store, backend, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open portfolio", zap.Error(err))
	}
	defer backend.Close()

	searchCache := bootstrap.OpenCache(ctx, cfg, logger)
	defer searchCache.Close()

	converter, err := currency.NewConverter(cfg.Currency.USDToEURRate)
	if err != nil {
		logger.Fatal("Invalid currency configuration", zap.Error(err))
	}

	priceClient := coingecko.NewClient(cfg.CoinGecko, logger)

	// Create services
	refreshService := services.NewRefreshService(
		store,
		priceClient,
		cfg.CoinGecko.MaxIDsPerRequest,
		cfg.Refresh.Workers,
		services.NewRefreshMetrics(prometheus.DefaultRegisterer),
		logger,
	)
	portfolioService := services.NewPortfolioService(store, logger)
	searchService := services.NewSearchService(priceClient, store, searchCache.Cache, cfg.Cache.SearchTTL, logger)
	statsService := services.NewStatsService(store, converter, logger)

	// Refresh immediately and then on the interval, restarting whenever the
	// held id set changes
	scheduler := services.NewScheduler(ctx, refreshService, cfg.Refresh.Interval, logger)
	unfollow := scheduler.Follow(store)

	// Create handlers
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, logger)
	searchHandler := handlers.NewSearchHandler(searchService, logger)
	pricesHandler := handlers.NewPricesHandler(refreshService, logger)
	statsHandler := handlers.NewStatsHandler(statsService, logger)
	healthHandler := handlers.NewHealthHandler(backend.Health, searchCache.Health, priceClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		portfolioHandler.RegisterRoutes(r)
		searchHandler.RegisterRoutes(r)
		pricesHandler.RegisterRoutes(r)
		statsHandler.RegisterRoutes(r)
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	unfollow()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
