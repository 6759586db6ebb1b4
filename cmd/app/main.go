package main

import (
	"context"
	"otabridge/config"
	"otabridge/di"
	"otabridge/helper"
	"otabridge/shared/logger"
	"time"

	"github.com/rs/zerolog/log"
)

const closeTimeout = 10 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg.Server.Env)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	app := di.InitializeService()
	app.HTTP.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	app.Close(ctx)
}
