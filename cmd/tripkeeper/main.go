// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tripkeep/go-trip-keeper/internal/adapter"
	"github.com/tripkeep/go-trip-keeper/internal/config"
	"github.com/tripkeep/go-trip-keeper/internal/connectivity"
	"github.com/tripkeep/go-trip-keeper/internal/engine"
	"github.com/tripkeep/go-trip-keeper/internal/enrich"
	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/internal/normalize"
	"github.com/tripkeep/go-trip-keeper/internal/store"
	"github.com/tripkeep/go-trip-keeper/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewEngineLogger("trip-keeper-engine")
	cfg, err := config.GetEngineConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		if !errors.Is(err, store.ErrStorageUnavailable) {
			log.Fatal().Err(err).Msg("error creating storages")
		}
		log.Warn().Err(err).Msg("running with memory-only storage")
	}
	defer func() {
		if closeErr := storages.Close(); closeErr != nil {
			log.Err(closeErr).Msg("error closing storages")
		}
	}()

	normalizer := normalize.New(nil)
	remote := adapter.NewHTTPRemoteStore(adapter.HTTPClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout,
	}, normalizer)

	monitor := connectivity.NewMonitor(true, log)
	eng := engine.New(storages, remote, monitor, normalizer, log)
	if cfg.Enrich.GeocodeBaseURL != "" && cfg.Enrich.WeatherBaseURL != "" {
		eng.SetEnricher(enrich.NewClient(enrich.ClientConfig{
			GeocodeBaseURL: cfg.Enrich.GeocodeBaseURL,
			WeatherBaseURL: cfg.Enrich.WeatherBaseURL,
			Timeout:        cfg.Remote.RequestTimeout,
		}))
	}
	scheduler := engine.NewScheduler(cfg.Engine.QuietPeriod, eng, log)

	flushWorker := workers.NewFlushWorker(
		eng,
		eng.ListAggregator(),
		monitor,
		cfg.Workers.RefreshInterval,
		log,
	)
	workers.NewWorkers(flushWorker).Run()

	if _, err = eng.Health(context.Background()); err != nil {
		log.Warn().Err(err).Msg("startup health check failed")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	scheduler.Stop()
	flushWorker.Stop()
	eng.Wait()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
