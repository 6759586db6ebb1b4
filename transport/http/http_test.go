package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"otabridge/config"
	otelMocks "otabridge/infras/otel/mocks"
	quoteMocks "otabridge/internal/domains/quote/mocks"
	quoteDto "otabridge/internal/domains/quote/model/dto"
	"otabridge/internal/handlers/health"
	"otabridge/internal/handlers/quote"
	"otabridge/shared/constant"
	transport "otabridge/transport/http"
	"otabridge/transport/http/middleware"
	"otabridge/transport/http/router"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newServer(t *testing.T) (*transport.HTTP, *quoteMocks.MockQuoteService) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.APIKey = "k3y"
	cfg.App.CORS.Enable = true
	cfg.App.CORS.AllowedOrigins = []string{"https://booking.example.com"}
	cfg.App.CORS.AllowedMethods = []string{http.MethodGet, http.MethodPost}

	ot := otelMocks.NewOtel()
	quoteService := quoteMocks.NewMockQuoteService(gomock.NewController(t))

	handlers := router.DomainHandlers{
		Quote: quote.New(quoteService, ot),
		Health: health.NewWithChecks(map[string]health.Check{
			"postgres": func(context.Context) error { return nil },
		}, ot),
	}

	server := transport.New(cfg,
		router.New(handlers, middleware.NewAuthMiddleware(ot, cfg)),
		middleware.NewAppMiddleware(ot, cfg, nil))

	return server, quoteService
}

func serve(handler http.Handler, request *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func TestHandler_Health(t *testing.T) {
	server, _ := newServer(t)
	handler := server.Handler()

	assert.Equal(t, transport.ServerStateReady, server.State())

	recorder := serve(handler, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"postgres":"up"`)
	assert.NotEmpty(t, recorder.Header().Get(constant.RequestHeaderRequestID))
}

func TestHandler_ProtectedRoutesNeedAPIKey(t *testing.T) {
	server, _ := newServer(t)

	recorder := serve(server.Handler(), httptest.NewRequest(http.MethodGet, "/v1/reservations/r1", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandler_PublicRoutes(t *testing.T) {
	server, quoteService := newServer(t)

	quoteService.EXPECT().Get(gomock.Any(), gomock.Any()).Return(quoteDto.QuoteResponse{HotelCode: "H1"}, nil)

	request := httptest.NewRequest(http.MethodGet, "/v1/quotes?hotel_code=H1&room_type_code=DBL&start_date=2030-05-01&end_date=2030-05-02&adults=1", nil)
	request.Header.Set("Origin", "https://booking.example.com")

	recorder := serve(server.Handler(), request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "https://booking.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
}
