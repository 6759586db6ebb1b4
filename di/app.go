package di

import (
	"context"
	"otabridge/infras/kafka"
	"otabridge/infras/otel"
	"otabridge/infras/postgres"
	"otabridge/transport/http"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App is the assembled process: the HTTP server plus the clients that need
// closing once it has stopped.
type App struct {
	HTTP  *http.HTTP
	DB    *postgres.Connection
	Redis *goRedis.Client
	Kafka kafka.Client
	Otel  otel.Otel
}

// Close releases every client. Errors are logged; shutdown carries on.
func (a *App) Close(ctx context.Context) {
	if err := a.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client")
	}

	if err := a.Redis.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis client")
	}

	a.DB.Close()

	if err := a.Otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}
}
