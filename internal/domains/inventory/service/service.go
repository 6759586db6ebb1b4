package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Inventory=MockInventoryService

import (
	"context"
	"fmt"
	"otabridge/config"
	"otabridge/infras/kafka"
	"otabridge/infras/otel"
	"otabridge/internal/domains/inventory/model"
	"otabridge/internal/domains/inventory/model/dto"
	"otabridge/internal/domains/inventory/repository"
	"otabridge/internal/ota"
	"otabridge/shared"
	"otabridge/shared/cache"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/shared/timezone"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllInventory = "inventory:gets"
	cacheCountInventory  = "inventory:count"
)

type Inventory interface {
	Sync(ctx context.Context, doc *ota.InvCountNotifRQ) (int, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetInventoriesResponse, error)
}

type serviceImpl struct {
	repo  repository.Inventory
	cfg   *config.Config
	cache cache.RedisCache
	kafka kafka.Client
	otel  otel.Otel
}

func New(repo repository.Inventory, cfg *config.Config, cache cache.RedisCache, kafka kafka.Client, otel otel.Otel) Inventory {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		kafka: kafka,
		otel:  otel,
	}
}

// Sync validates every entry of doc before storing any of them, so a
// rejected document leaves the table untouched. Entries are then upserted
// in document order. A *ota.ValidationError names the first bad entry.
func (s *serviceImpl) Sync(ctx context.Context, doc *ota.InvCountNotifRQ) (applied int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Sync")
	defer scope.EndWith(&err)

	actor := doc.Requestor().ID
	now := timezone.Now()
	today := timezone.DateOnly(now)

	rows := make([]model.Inventory, 0, len(doc.Inventories.Inventory))

	for index, entry := range doc.Inventories.Inventory {
		row, verr := toModel(doc.Inventories, entry, index, today)
		if verr != nil {
			log.Warn().Str("echoToken", doc.EchoToken).Str("field", verr.Field).Int("entry", index).Msg(verr.Message)

			return 0, verr
		}

		row.Stamp(now, actor)
		rows = append(rows, row)
	}

	for _, row := range rows {
		if err = s.repo.Save(ctx, row); err != nil {
			log.Error().Err(err).Str("hotelCode", row.HotelCode).Str("roomTypeCode", row.RoomTypeCode).Msg("failed to save inventory")

			return applied, fmt.Errorf("failed to save inventory: %w", err)
		}

		applied++
	}

	log.Info().Str("echoToken", doc.EchoToken).Str("hotelCode", doc.Inventories.HotelCode).Int("entries", applied).Msg("inventory sync applied")

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, constant.CachePrefixQuote)
		shared.InvalidateCaches(c, s.cache, cacheGetAllInventory)
		shared.InvalidateCaches(c, s.cache, cacheCountInventory)

		event := gDto.SyncAppliedEvent{
			Event:     constant.EventSyncApplied,
			Message:   doc.Root(),
			HotelCode: doc.Inventories.HotelCode,
			EchoToken: doc.EchoToken,
			Entries:   applied,
			AppliedAt: now.Format(time.RFC3339),
		}

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topic.Sync, kafka.Message{Key: doc.Inventories.HotelCode, Value: event}); err != nil {
			log.Error().Err(err).Msg("failed to publish inventory sync event")
		}
	}()

	return applied, nil
}

func toModel(inventories *ota.Inventories, entry ota.Inventory, index int, today time.Time) (model.Inventory, *ota.ValidationError) {
	control := entry.StatusApplicationControl

	start, err := timezone.ParseDate(control.Start)
	if err != nil {
		return model.Inventory{}, ota.Invalid(ota.ErrTypeInvalidDateFormat, "Start", index, "Start %q is not a valid YYYY-MM-DD date", control.Start)
	}

	end, err := timezone.ParseDate(control.End)
	if err != nil {
		return model.Inventory{}, ota.Invalid(ota.ErrTypeInvalidDateFormat, "End", index, "End %q is not a valid YYYY-MM-DD date", control.End)
	}

	if end.Before(start) {
		return model.Inventory{}, ota.Invalid(ota.ErrTypeDateRange, "End", index, "End %s is before Start %s", control.End, control.Start)
	}

	if start.Before(today) {
		return model.Inventory{}, ota.Invalid(ota.ErrTypeInvalidStartDate, "Start", index, "Start %s is earlier than today", control.Start)
	}

	raw := strings.TrimSpace(entry.InvCounts.InvCount[0].Count)

	count, ok := ota.ParseCount(raw)
	if !ok {
		return model.Inventory{}, ota.Invalid(ota.ErrTypeInvalidCount, "Count", index, "Count %q must be a non-negative integer", raw)
	}

	return model.Inventory{
		ID:           uuid.NewString(),
		HotelCode:    inventories.HotelCode,
		HotelName:    inventories.HotelName,
		RoomTypeCode: control.InvTypeCode,
		StartDate:    start,
		EndDate:      end,
		Count:        count,
	}, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetInventoriesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.GetAll")
	defer scope.EndWith(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllInventory, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for inventories")

		return res, nil
	}

	total, err := s.count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inventories")

		return res, fmt.Errorf("failed to get inventories: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save inventories to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountInventory, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count inventories")

		return res, fmt.Errorf("failed to count inventories: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save inventory count to cache")
		}
	}()

	return res, nil
}
