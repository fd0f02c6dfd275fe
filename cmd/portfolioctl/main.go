package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/coin-tracker/internal/application/services"
	"github.com/bimakw/coin-tracker/internal/bootstrap"
	"github.com/bimakw/coin-tracker/internal/cli"
	"github.com/bimakw/coin-tracker/internal/config"
	"github.com/bimakw/coin-tracker/internal/domain/currency"
	"github.com/bimakw/coin-tracker/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-tracker/internal/logging"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, open)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// open wires the services against the configured backend. Logs go to stderr
// so command output stays clean
func open(ctx context.Context) (*cli.Env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewWithOutput(cfg.Log, zapcore.Lock(os.Stderr))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	converter, err := currency.NewConverter(cfg.Currency.USDToEURRate)
	if err != nil {
		return nil, nil, err
	}

	store, backend, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	searchCache := bootstrap.OpenCache(ctx, cfg, logger)

	priceClient := coingecko.NewClient(cfg.CoinGecko, logger)

	env := &cli.Env{
		Store:     store,
		Portfolio: services.NewPortfolioService(store, logger),
		Search:    services.NewSearchService(priceClient, store, searchCache.Cache, cfg.Cache.SearchTTL, logger),
		Refresh: services.NewRefreshService(
			store,
			priceClient,
			cfg.CoinGecko.MaxIDsPerRequest,
			cfg.Refresh.Workers,
			nil,
			logger,
		),
		Stats: services.NewStatsService(store, converter, logger),
		Out:   os.Stdout,
		Err:   os.Stderr,
	}

	release := func() {
		searchCache.Close()
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close storage", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return env, release, nil
}
