package health

import (
	"context"
	"net/http"
	"otabridge/infras/otel"
	"otabridge/infras/postgres"
	"otabridge/shared/constant"
	"otabridge/transport/http/response"
	"sort"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	checkTimeout = 3 * time.Second

	statusUp   = "up"
	statusDown = "down"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

type Handler struct {
	checks map[string]Check
	otel   otel.Otel
}

func New(db *postgres.Connection, redis *goRedis.Client, otel otel.Otel) Handler {
	return NewWithChecks(map[string]Check{
		"postgres": db.Ping,
		"redis": func(ctx context.Context) error {
			return redis.Ping(ctx).Err()
		},
	}, otel)
}

func NewWithChecks(checks map[string]Check, otel otel.Otel) Handler {
	return Handler{
		checks: checks,
		otel:   otel,
	}
}

// Check reports the state of every dependency.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Data[map[string]string]
// @Failure 503 {object} response.Message
// @Router /health [get]
func (handler *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Health")
	defer scope.End()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	names := make([]string, 0, len(handler.checks))
	for name := range handler.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	statuses := make(map[string]string, len(names))
	healthy := true

	for _, name := range names {
		if err := handler.checks[name](ctx); err != nil {
			log.Error().Err(err).Str("dependency", name).Msg("health check failed")

			statuses[name] = statusDown
			healthy = false

			continue
		}

		statuses[name] = statusUp
	}

	scope.SetAttributes(map[string]any{"health.healthy": healthy})

	if !healthy {
		response.WithUnhealthy(w)

		return
	}

	response.WithJSON(w, http.StatusOK, statuses)
}
