//go:build wireinject
// +build wireinject

package di

import (
	"otabridge/config"
	"otabridge/infras/jwt"
	"otabridge/infras/kafka"
	"otabridge/infras/otel"
	"otabridge/infras/postgres"
	"otabridge/infras/redis"
	"otabridge/infras/s3"
	"otabridge/infras/wincloud"
	"otabridge/shared/cache"
	"otabridge/transport/http"
	"otabridge/transport/http/middleware"
	"otabridge/transport/http/router"

	auditLogRepository "otabridge/internal/domains/auditlog/repository"
	auditLogService "otabridge/internal/domains/auditlog/service"
	conversionService "otabridge/internal/domains/conversion/service"
	inventoryRepository "otabridge/internal/domains/inventory/repository"
	inventoryService "otabridge/internal/domains/inventory/service"
	quoteService "otabridge/internal/domains/quote/service"
	rateRepository "otabridge/internal/domains/rate/repository"
	rateService "otabridge/internal/domains/rate/service"
	reservationRepository "otabridge/internal/domains/reservation/repository"
	reservationService "otabridge/internal/domains/reservation/service"

	conversionHandler "otabridge/internal/handlers/conversion"
	healthHandler "otabridge/internal/handlers/health"
	inventoryHandler "otabridge/internal/handlers/inventory"
	notificationHandler "otabridge/internal/handlers/notification"
	quoteHandler "otabridge/internal/handlers/quote"
	rateHandler "otabridge/internal/handlers/rate"
	reservationHandler "otabridge/internal/handlers/reservation"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	wincloud.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var syncDomain = wire.NewSet(
	inventoryRepository.New,
	inventoryService.New,
	rateRepository.New,
	rateService.New,
)

var quoteDomain = wire.NewSet(
	quoteService.New,
	conversionService.New,
)

var reservationDomain = wire.NewSet(
	auditLogRepository.New,
	auditLogService.New,
	reservationRepository.New,
	reservationService.New,
)

var domains = wire.NewSet(
	syncDomain,
	quoteDomain,
	reservationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	notificationHandler.New,
	quoteHandler.New,
	conversionHandler.New,
	reservationHandler.New,
	inventoryHandler.New,
	rateHandler.New,
	healthHandler.New,
	router.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
