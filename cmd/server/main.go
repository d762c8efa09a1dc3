package main

import (
	"context"
	"fmt"

	"github.com/applock/applock-server/internal/config"
	"github.com/applock/applock-server/internal/handler/http"
	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/server"
	"github.com/applock/applock-server/internal/service"
	"github.com/applock/applock-server/internal/store"
	"github.com/applock/applock-server/internal/workers"
	"github.com/applock/applock-server/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("applock-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to postgres")
	}

	if err := migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	redisClient, err := store.NewRedisClient(ctx, cfg.Storage.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to redis")
	}

	storages := store.NewStorages(db, redisClient, cfg.WebAuthn.CeremonyTTL, log)

	services, err := service.NewServices(storages, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers := http.NewHandler(services, buildVersion, log)

	backgroundWorkers := workers.NewWorkers(
		workers.NewBlocklistJanitor(storages.TokenBlocklistRepository, cfg.Workers.BlocklistSweepInterval, log),
	)

	srv, err := server.NewServer(handlers.Init(), backgroundWorkers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
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
