package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=AuditLog=MockAuditLogService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"otabridge/config"
	"otabridge/infras/otel"
	"otabridge/infras/s3"
	"otabridge/internal/domains/auditlog/model"
	"otabridge/internal/domains/auditlog/model/dto"
	"otabridge/internal/domains/auditlog/repository"
	"otabridge/shared"
	"otabridge/shared/cache"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/shared/failure"
	"otabridge/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetAllAuditLog = "auditlog:gets"

	archiveDirectory   = "reservations"
	archiveContentType = "application/json"
)

var emptyInput = []byte("{}")

type AuditLog interface {
	Record(ctx context.Context, entry model.AuditLog) (model.AuditLog, error)
	ListByReservation(ctx context.Context, reservationID string, params gDto.QueryParams) (dto.GetAuditLogsResponse, error)
	Archive(ctx context.Context, reservationID, auditLogID string) ([]byte, error)
}

type serviceImpl struct {
	repo  repository.AuditLog
	cfg   *config.Config
	cache cache.RedisCache
	s3    s3.S3
	otel  otel.Otel
}

func New(repo repository.AuditLog, cfg *config.Config, cache cache.RedisCache, s3 s3.S3, otel otel.Otel) AuditLog {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		s3:    s3,
		otel:  otel,
	}
}

// Record stores entry, archiving the exchange to object storage first when
// it is enabled. An archive failure is logged and leaves ArchiveKey empty.
func (s *serviceImpl) Record(ctx context.Context, entry model.AuditLog) (_ model.AuditLog, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auditlog.Record")
	defer scope.EndWith(&err)

	if entry.ID == constant.Empty {
		entry.ID = uuid.NewString()
	}

	if len(entry.Input) == 0 {
		entry.Input = emptyInput
	}

	entry.CreatedAt = timezone.Now()

	if s.s3.Enabled() {
		entry.ArchiveKey = s.archive(ctx, entry)
	}

	if err = s.repo.Insert(ctx, entry); err != nil {
		log.Error().Err(err).Str("reservationId", entry.ReservationID).Str("process", entry.Process).Msg("failed to insert audit log")

		return entry, fmt.Errorf("failed to insert audit log: %w", err)
	}

	log.Info().
		Str("auditLogId", entry.ID).
		Str("reservationId", entry.ReservationID).
		Str("process", entry.Process).
		Str("status", entry.Status).
		Int("attempts", entry.Attempts).
		Int("httpStatus", entry.HTTPStatus).
		Msg("audit log recorded")

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, shared.BuildCacheKey(cacheGetAllAuditLog, entry.ReservationID))
	}()

	return entry, nil
}

func (s *serviceImpl) archive(ctx context.Context, entry model.AuditLog) string {
	body, err := json.Marshal(dto.Exchange{
		AuditLogID:    entry.ID,
		ReservationID: entry.ReservationID,
		Process:       entry.Process,
		Status:        entry.Status,
		Request:       entry.XMLSent,
		Response:      entry.Response,
		RecordedAt:    entry.CreatedAt.Format(constant.DateFormat),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal audit exchange")

		return constant.Empty
	}

	key, err := s.s3.Put(ctx, archiveDirectory+"/"+entry.ReservationID, entry.ID+".json", archiveContentType, body)
	if err != nil {
		log.Error().Err(err).Str("auditLogId", entry.ID).Msg("failed to archive audit exchange")

		return constant.Empty
	}

	return key
}

// ListByReservation returns entries oldest first.
func (s *serviceImpl) ListByReservation(ctx context.Context, reservationID string, params gDto.QueryParams) (res dto.GetAuditLogsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auditlog.ListByReservation")
	defer scope.EndWith(&err)

	params.SortBy = model.FieldCreatedAt
	params.SortDir = "ASC"

	filter := gDto.And(gDto.Eq(model.FieldReservationID, reservationID))
	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(cacheGetAllAuditLog, reservationID), params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for audit logs")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count audit logs")

		return res, fmt.Errorf("failed to count audit logs: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get audit logs")

		return res, fmt.Errorf("failed to get audit logs: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save audit logs to cache")
		}
	}()

	return res, nil
}

// Archive downloads the archived exchange of one entry.
func (s *serviceImpl) Archive(ctx context.Context, reservationID, auditLogID string) (data []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auditlog.Archive")
	defer scope.EndWith(&err)

	entry, err := s.repo.Get(ctx, gDto.And(
		gDto.Eq(model.FieldID, auditLogID),
		gDto.Eq(model.FieldReservationID, reservationID),
	))
	if err != nil {
		log.Error().Err(err).Msg("failed to get audit log")

		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}

	if entry.ID == constant.Empty {
		return nil, failure.NotFound("audit log not found") // nolint:wrapcheck
	}

	if entry.ArchiveKey == constant.Empty {
		return nil, failure.NotFound("audit log has no archived exchange") // nolint:wrapcheck
	}

	data, err = s.s3.Get(ctx, entry.ArchiveKey)
	if errors.Is(err, s3.ErrDisabled) {
		return nil, failure.NotFound("archive storage is disabled") // nolint:wrapcheck
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read archived exchange: %w", err)
	}

	return data, nil
}
