package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pricerelay/internal/adapters/cache"
	"pricerelay/internal/adapters/httpclient"
	"pricerelay/internal/api"
	"pricerelay/internal/api/handler"
	"pricerelay/internal/config"
	"pricerelay/internal/gateway"
	"pricerelay/internal/host"
	"pricerelay/internal/jobs"
	httpserver "pricerelay/internal/platform/http"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Run loads the config at cfgPath, deploys the contracts and serves the API
// until SIGINT or SIGTERM. A non-empty logLevel overrides the configured one.
func Run(cfgPath, logLevel string) error {
	appCfg, err := config.Init(cfgPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		appCfg.Logging.Level = logLevel
	}
	setupLogger(appCfg.Logging.Level)
	logrus.Info("✅ Config initialization successful")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts, err := parseAccounts(appCfg.Contracts)
	if err != nil {
		return err
	}

	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(startupCtx, appCfg)
	if err != nil {
		logrus.WithError(err).Error("Error opening contract state")
		return err
	}
	defer closeStore()

	history, err := cache.NewOutcomeCache(appCfg.Runtime.HistorySize)
	if err != nil {
		return err
	}
	defer history.Close()

	rt := host.NewRuntime(store, clockwork.NewRealClock(), history)
	runDone := make(chan error, 1)
	go func() { runDone <- rt.Run(ctx) }()
	defer func() {
		stop()
		if runErr := <-runDone; runErr != nil {
			logrus.WithError(runErr).Error("Runtime stopped with error")
		}
	}()

	if err = deployContracts(startupCtx, rt, accounts, appCfg.Contracts.OwnerGatedOracle); err != nil {
		logrus.WithError(err).Error("Failed to deploy contracts")
		return err
	}

	refStore := gateway.NewRefStore(rt, accounts.Ref, accounts.Owner)
	priceCache := gateway.NewPriceCache(rt, accounts.Cache, accounts.Keeper)

	scheduler, err := newScheduler(appCfg, refStore, priceCache)
	if err != nil {
		return err
	}
	// stop jobs before the runtime goes away
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if err = scheduler.Start(ctx); err != nil {
		logrus.WithError(err).Error("Failed to start scheduler")
		return err
	}
	logrus.Info("✅ Scheduler activation successful")

	h := handler.NewHandler(handler.NewSymbolValidator(appCfg.Feeder.Symbols), rt, priceCache)
	router := api.NewRouter(h)

	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

func setupLogger(level string) {
	logrus.SetOutput(os.Stdout)
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

func newScheduler(cfg *config.AppConfig, refStore *gateway.RefStore, priceCache *gateway.PriceCache) (*jobs.Scheduler, error) {
	var list []jobs.Job

	if cfg.Feeder.Enabled {
		timeout := time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client := httpclient.NewExchangeRateClient(
			&http.Client{Timeout: timeout},
			fmt.Sprintf("%s/%s/latest", strings.TrimSuffix(cfg.ExchangeRateAPI.BaseURL, "/"), cfg.ExchangeRateAPI.APIKey),
		)
		relayer := jobs.NewRateRelayer(client, refStore, cfg.Feeder.Symbols, clockwork.NewRealClock())
		list = append(list, jobs.Job{
			Name:     "relay_rates",
			Interval: time.Duration(cfg.Feeder.IntervalSec) * time.Second,
			Run:      relayer.Run,
		})
	}

	if cfg.Keeper.Enabled {
		refresher, err := jobs.NewPriceRefresher(priceCache, cfg.Keeper.Pairs)
		if err != nil {
			return nil, fmt.Errorf("keeper.pairs: %w", err)
		}
		list = append(list, jobs.Job{
			Name:     "refresh_prices",
			Interval: time.Duration(cfg.Keeper.IntervalSec) * time.Second,
			Run:      refresher.Run,
		})
	}
	return jobs.NewScheduler(list...), nil
}
