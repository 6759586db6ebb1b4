package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"otabridge/config"
	"otabridge/infras/otel"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	"otabridge/transport/http/response"

	"github.com/rs/zerolog/log"
)

const (
	defaultCaller = "api-key"
)

// Auth guards the booking-flow endpoints.
type Auth interface {
	APIKey(http.Handler) http.Handler
}

type authImpl struct {
	otel otel.Otel
	cfg  *config.Config
}

func NewAuthMiddleware(otel otel.Otel, cfg *config.Config) Auth {
	return &authImpl{
		otel: otel,
		cfg:  cfg,
	}
}

// APIKey admits requests whose X-API-Key matches APP_API_KEY. An unset key
// rejects everything. The optional X-Caller header names the actor recorded
// on reservations.
func (m *authImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")

		scope.SetAttributes(map[string]any{
			"middleware.type": "api_key",
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
		})

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)

		if apiKey == constant.Empty {
			err := failure.Unauthorized("Missing API key")
			response.WithError(writer, err)

			scope.TraceError(err)
			scope.End()

			return
		}

		expected := m.cfg.App.APIKey
		if expected == constant.Empty || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			if expected == constant.Empty {
				log.Warn().Msg("APP_API_KEY is not configured, rejecting request")
			}

			err := failure.Forbidden("Invalid API key")
			response.WithError(writer, err)

			scope.TraceError(err)
			scope.End()

			return
		}

		caller := request.Header.Get(constant.RequestHeaderCaller)
		if caller == constant.Empty {
			caller = defaultCaller
		}

		scope.SetAttribute("http.caller", caller)
		scope.End()

		ctx := context.WithValue(request.Context(), constant.ContextKeyCaller, caller)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
