// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"net/http"

	"github.com/tripkeep/go-trip-keeper/internal/config"
	"github.com/tripkeep/go-trip-keeper/internal/devserver"
	"github.com/tripkeep/go-trip-keeper/internal/logger"
	"github.com/tripkeep/go-trip-keeper/internal/normalize"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("trip-keeper-devserver")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	address := cfg.DevServer.HTTPAddress
	if address == "" {
		address = "localhost:8080"
	}

	handler := devserver.NewHandler(devserver.NewRepo(normalize.New(nil)), log)

	log.Info().Str("address", address).Msg("devserver listening")
	if err = http.ListenAndServe(address, handler.Init()); err != nil {
		log.Fatal().Err(err).Msg("devserver stopped")
	}
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
