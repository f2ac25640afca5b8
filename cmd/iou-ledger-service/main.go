package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/cmd/iou-ledger-service/cli"
	"github.com/basisledger/iou-ledger-service/cmd/iou-ledger-service/scripts"
	"github.com/basisledger/iou-ledger-service/internal/api"
	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/observability/healthcheck"
	"github.com/basisledger/iou-ledger-service/internal/observability/metrics"
	"github.com/basisledger/iou-ledger-service/internal/queue"
	"github.com/basisledger/iou-ledger-service/internal/services"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx := context.Background()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	metrics.Init(cfg.Metrics.Address())

	// the embedded engine needs no collections or indexes
	if cfg.Db.Type != config.LevelDbType {
		err = model.Setup(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("error while setting up ledger db model")
		}
	}
	services, err := services.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up ledger services layer")
	}
	defer services.DbClient.Close(ctx) // nolint:errcheck

	// Start the event queue processing
	queues := queue.New(&cfg.Queue, services)

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of unprocessable messages.")
		err := scripts.ReplayUnprocessableMessages(ctx, cfg, queues, services.DbClient)
		if err != nil {
			log.Fatal().Err(err).Msg("error while replaying unprocessable messages")
		}
		return
	}

	queues.StartReceivingMessages()

	err = healthcheck.StartHealthCheckCron(ctx, queues, services, cfg.Server.HealthCheckInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up ledger api service")
	}
	if err = apiServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("error while starting ledger api service")
	}
}
