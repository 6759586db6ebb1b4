package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"otabridge/config"
	"otabridge/infras/otel"
	otelMocks "otabridge/infras/otel/mocks"
	"otabridge/shared/cache"
	cacheMocks "otabridge/shared/cache/mocks"
	"otabridge/shared/constant"
	"otabridge/transport/http/middleware"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"
)

func echoCaller() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ := r.Context().Value(constant.ContextKeyCaller).(string)
		requestID, _ := r.Context().Value(constant.ContextKeyRequestID).(string)

		w.Header().Set("X-Seen-Caller", caller)
		w.Header().Set("X-Seen-Request-ID", requestID)
		w.WriteHeader(http.StatusNoContent)
	})
}

type recordingOtel struct {
	provider *sdktrace.TracerProvider
}

func (o recordingOtel) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, otel.Scope) {
	ctx, span := o.provider.Tracer(scopeName).Start(ctx, spanName)

	return ctx, otel.NewScope(span)
}

func (o recordingOtel) Shutdown(ctx context.Context) error {
	return o.provider.Shutdown(ctx)
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		headers    map[string]string
		wantCode   int
		wantCaller string
	}{
		{
			name:       "missing key",
			configured: "k3y",
			wantCode:   http.StatusUnauthorized,
		},
		{
			name:       "wrong key",
			configured: "k3y",
			headers:    map[string]string{constant.RequestHeaderAPIKey: "nope"},
			wantCode:   http.StatusForbidden,
		},
		{
			name:       "unconfigured key rejects everything",
			configured: "",
			headers:    map[string]string{constant.RequestHeaderAPIKey: "anything"},
			wantCode:   http.StatusForbidden,
		},
		{
			name:       "valid key with default caller",
			configured: "k3y",
			headers:    map[string]string{constant.RequestHeaderAPIKey: "k3y"},
			wantCode:   http.StatusNoContent,
			wantCaller: "api-key",
		},
		{
			name:       "valid key with named caller",
			configured: "k3y",
			headers:    map[string]string{constant.RequestHeaderAPIKey: "k3y", constant.RequestHeaderCaller: "booking-web"},
			wantCode:   http.StatusNoContent,
			wantCaller: "booking-web",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.App.APIKey = tt.configured

			auth := middleware.NewAuthMiddleware(otelMocks.NewOtel(), cfg)

			request := httptest.NewRequest(http.MethodGet, "/v1/reservations/r1", nil)
			for key, value := range tt.headers {
				request.Header.Set(key, value)
			}

			recorder := httptest.NewRecorder()
			auth.APIKey(echoCaller()).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Equal(t, tt.wantCaller, recorder.Header().Get("X-Seen-Caller"))
		})
	}
}

func TestRequestID(t *testing.T) {
	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, nil)

	t.Run("reuses the caller's id", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constant.RequestHeaderRequestID, "req-42")

		recorder := httptest.NewRecorder()
		app.RequestID(echoCaller()).ServeHTTP(recorder, request)

		assert.Equal(t, "req-42", recorder.Header().Get(constant.RequestHeaderRequestID))
		assert.Equal(t, "req-42", recorder.Header().Get("X-Seen-Request-ID"))
	})

	t.Run("mints one when absent", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		app.RequestID(echoCaller()).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		generated := recorder.Header().Get(constant.RequestHeaderRequestID)
		assert.NotEmpty(t, generated)
		assert.Equal(t, generated, recorder.Header().Get("X-Seen-Request-ID"))
	})
}

func TestRecoverer(t *testing.T) {
	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, nil)

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	recorder := httptest.NewRecorder()

	require.NotPanics(t, func() {
		app.Recoverer(panicking).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestRateLimit(t *testing.T) {
	newConfig := func() *config.Config {
		cfg := &config.Config{}
		cfg.App.RateLimiter.Enable = true
		cfg.App.RateLimiter.MaxRequests = 2
		cfg.App.RateLimiter.WindowSeconds = 60

		return cfg
	}

	t.Run("first request starts the window", func(t *testing.T) {
		redis := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("miss: %w", cache.Nil))
		redis.EXPECT().Save(gomock.Any(), gomock.Any(), 1, 60).Return(nil)

		app := middleware.NewAppMiddleware(otelMocks.NewOtel(), newConfig(), redis)

		recorder := httptest.NewRecorder()
		app.RateLimit()(echoCaller()).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, "1", recorder.Header().Get(constant.RequestHeaderRateLimitRemaining))
	})

	t.Run("over the limit", func(t *testing.T) {
		redis := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, _ string, value any) error {
				*(value.(*int)) = 2

				return nil
			})

		app := middleware.NewAppMiddleware(otelMocks.NewOtel(), newConfig(), redis)

		recorder := httptest.NewRecorder()
		app.RateLimit()(echoCaller()).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	})

	t.Run("separate windows for channel pushes and api calls", func(t *testing.T) {
		redis := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		redis.EXPECT().Get(gomock.Any(), "limiter:ota:203.0.113.9", gomock.Any()).Return(cache.Nil)
		redis.EXPECT().Save(gomock.Any(), "limiter:ota:203.0.113.9", 1, 60).Return(nil)
		redis.EXPECT().Get(gomock.Any(), "limiter:api:192.0.2.1", gomock.Any()).Return(cache.Nil)
		redis.EXPECT().Save(gomock.Any(), "limiter:api:192.0.2.1", 1, 60).Return(nil)

		app := middleware.NewAppMiddleware(otelMocks.NewOtel(), newConfig(), redis)
		limited := app.RateLimit()(echoCaller())

		push := httptest.NewRequest(http.MethodPost, "/v1/ota/notifications", nil)
		push.Header.Set(constant.RequestHeaderForwardedFor, "203.0.113.9, 10.0.0.1")

		recorder := httptest.NewRecorder()
		limited.ServeHTTP(recorder, push)
		assert.Equal(t, http.StatusNoContent, recorder.Code)

		recorder = httptest.NewRecorder()
		limited.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/quotes", nil))
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("redis failure lets the request through", func(t *testing.T) {
		redis := cacheMocks.NewMockRedisCache(gomock.NewController(t))

		redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("dial tcp: connection refused"))

		app := middleware.NewAppMiddleware(otelMocks.NewOtel(), newConfig(), redis)

		recorder := httptest.NewRecorder()
		app.RateLimit()(echoCaller()).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Header().Get(constant.RequestHeaderRateLimitRemaining))
	})

	t.Run("disabled", func(t *testing.T) {
		app := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, nil)

		recorder := httptest.NewRecorder()
		app.RateLimit()(echoCaller()).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}

func TestTracing(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantStatus codes.Code
	}{
		{name: "success", code: http.StatusNoContent, wantStatus: codes.Unset},
		{name: "server error", code: http.StatusBadGateway, wantStatus: codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			app := middleware.NewAppMiddleware(recordingOtel{provider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))}, &config.Config{}, nil)

			handler := app.Tracing(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
			}))

			request := httptest.NewRequest(http.MethodPost, "/v1/ota/notifications", nil)
			request.Header.Set("User-Agent", "wincloud-push/2.1")
			request.Header.Set(constant.RequestHeaderForwardedFor, "203.0.113.9, 10.0.0.1")

			response := httptest.NewRecorder()
			handler.ServeHTTP(response, request)

			assert.Equal(t, tt.code, response.Code)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, "POST /v1/ota/notifications", spans[0].Name())
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)

			attributes := map[attribute.Key]string{}
			for _, kv := range spans[0].Attributes() {
				attributes[kv.Key] = kv.Value.Emit()
			}

			assert.Equal(t, "wincloud-push/2.1", attributes["http.user_agent"])
			assert.Equal(t, "203.0.113.9", attributes["http.source"])
			assert.Equal(t, "example.com", attributes["http.host"])
			assert.Equal(t, fmt.Sprint(tt.code), attributes["http.status_code"])
		})
	}
}
