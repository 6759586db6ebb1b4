package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Reservation=MockReservationService

import (
	"context"
	"encoding/json"
	"fmt"
	"otabridge/config"
	"otabridge/infras/kafka"
	"otabridge/infras/otel"
	"otabridge/infras/wincloud"
	auditModel "otabridge/internal/domains/auditlog/model"
	auditService "otabridge/internal/domains/auditlog/service"
	conversionService "otabridge/internal/domains/conversion/service"
	"otabridge/internal/domains/reservation/model"
	"otabridge/internal/domains/reservation/model/dto"
	"otabridge/internal/domains/reservation/repository"
	"otabridge/internal/ota"
	"otabridge/shared"
	"otabridge/shared/cache"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	"otabridge/shared/timezone"
	"otabridge/shared/validator"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetReservation = "reservation:get"

	defaultActor = "api"

	claimMargin = 30 * time.Second
)

type Reservation interface {
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.CreateReservationResponse, error)
	Amend(ctx context.Context, id string, req dto.AmendReservationRequest) (dto.ReservationResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelReservationRequest) (dto.ReservationResponse, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
}

type serviceImpl struct {
	repo       repository.Reservation
	audit      auditService.AuditLog
	conversion conversionService.Conversion
	client     wincloud.Client
	kafka      kafka.Client
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
}

func New(
	repo repository.Reservation,
	audit auditService.AuditLog,
	conversion conversionService.Conversion,
	client wincloud.Client,
	kafka kafka.Client,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Reservation {
	return &serviceImpl{
		repo:       repo,
		audit:      audit,
		conversion: conversion,
		client:     client,
		kafka:      kafka,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
	}
}

// ReservationEvent is published after every accepted remote change.
type ReservationEvent struct {
	Event         string            `json:"event"`
	ReservationID string            `json:"reservation_id"`
	HotelCode     string            `json:"hotel_code"`
	Status        string            `json:"status"`
	RemoteIDs     map[string]string `json:"remote_ids"`
	Version       int               `json:"version"`
	OccurredAt    string            `json:"occurred_at"`
}

func actor(ctx context.Context) string {
	if caller, ok := ctx.Value(constant.ContextKeyCaller).(string); ok && caller != constant.Empty {
		return caller
	}

	return defaultActor
}

func (s *serviceImpl) credentials() ota.Credentials {
	return ota.Credentials{
		RequestorID:     s.cfg.Wincloud.Requestor.ID,
		Context:         s.cfg.Wincloud.Requestor.Context,
		MessagePassword: s.cfg.Wincloud.Requestor.MessagePassword,
		CompanyCode:     s.cfg.Wincloud.CompanyCode,
	}
}

func envelope(now time.Time) ota.Envelope {
	return ota.NewEnvelope(uuid.NewString(), ota.FormatTimeStamp(now))
}

// Create sends a new reservation to the remote system and stores it as
// Confirmed once accepted. Nothing is stored locally when the remote side
// refuses it; the audit log keeps the attempt under the generated id.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.CreateReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer scope.EndWith(&err)

	req.Normalize()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	now := timezone.Now()

	reservation, err := req.ToModel(uuid.NewString(), timezone.DateOnly(now))
	if err != nil {
		return res, err
	}

	if req.ConversionToken != constant.Empty {
		if err = s.conversion.Verify(ctx, req.ConversionToken, reservation.TotalAmount, reservation.CurrencyCode); err != nil {
			return res, err
		}
	}

	body, err := ota.EncodeResNotif(s.credentials(), envelope(now), reservation.ToStay())
	if err != nil {
		log.Error().Err(err).Msg("failed to encode reservation")

		return res, fmt.Errorf("failed to encode reservation: %w", err)
	}

	req.ConversionToken = constant.Empty

	result, err := s.exchange(ctx, reservation.ID, auditModel.ProcessCreate, req, body)
	if err != nil {
		return res, err
	}

	if !reservation.Status.CanTransition(model.StatusConfirmed) {
		return res, fmt.Errorf("reservation %s cannot be confirmed from %s", reservation.ID, reservation.Status)
	}

	reservation.Status = model.StatusConfirmed
	reservation.RemoteIDs = reservation.RemoteIDs.Merge(result.ReservationIDs)
	reservation.Version = 1
	reservation.Stamp(now, actor(ctx))

	// The remote side has committed; finish the write even if the caller left.
	if err = s.repo.Insert(context.WithoutCancel(ctx), reservation); err != nil {
		log.Error().Err(err).Str("reservationId", reservation.ID).Interface("remoteIds", reservation.RemoteIDs).Msg("failed to store reservation confirmed by remote system")

		return res, fmt.Errorf("failed to store reservation: %w", err)
	}

	s.publish(ctx, reservation)

	return dto.CreateReservationResponse{
		ID:        reservation.ID,
		Status:    string(reservation.Status),
		RemoteIDs: reservation.RemoteIDs,
	}, nil
}

// Amend replaces the stay of an existing reservation. A Cancelled
// reservation is refused before anything is sent.
func (s *serviceImpl) Amend(ctx context.Context, id string, req dto.AmendReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Amend")
	defer scope.EndWith(&err)

	req.Normalize()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !current.Status.CanTransition(model.StatusModified) {
		return res, failure.Conflict(fmt.Sprintf("reservation is %s and cannot be amended", current.Status)) // nolint:wrapcheck
	}

	now := timezone.Now()

	updated := current
	if err = req.Apply(&updated, timezone.DateOnly(now)); err != nil {
		return res, err
	}

	body, err := ota.EncodeResModifyNotif(s.credentials(), envelope(now), updated.ToStay())
	if err != nil {
		log.Error().Err(err).Msg("failed to encode reservation modification")

		return res, fmt.Errorf("failed to encode reservation modification: %w", err)
	}

	if err = s.claim(ctx, current, now); err != nil {
		return res, err
	}

	result, err := s.exchange(ctx, id, auditModel.ProcessAmend, req, body)
	if err != nil {
		s.release(ctx, current)

		return res, err
	}

	updated.Status = model.StatusModified
	updated.RemoteIDs = current.RemoteIDs.Merge(result.ReservationIDs)
	updated.Version = current.Version + 1
	updated.ModifiedAt = now
	updated.ModifiedBy = actor(ctx)

	if err = s.transition(ctx, current, updated, map[string]any{
		model.FieldRoomTypeCode: updated.RoomTypeCode,
		model.FieldRatePlanCode: updated.RatePlanCode,
		model.FieldStartDate:    updated.StartDate,
		model.FieldEndDate:      updated.EndDate,
		model.FieldAdults:       updated.Adults,
		model.FieldChildren:     updated.Children,
		model.FieldRooms:        updated.Rooms,
		model.FieldGuests:       updated.Guests,
		model.FieldCurrencyCode: updated.CurrencyCode,
		model.FieldTotalAmount:  updated.TotalAmount,
	}); err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

// Cancel cancels a reservation remotely and marks it Cancelled. Cancelling
// twice is refused before anything is sent.
func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Cancel")
	defer scope.EndWith(&err)

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	if !current.Status.CanTransition(model.StatusCancelled) {
		return res, failure.Conflict(fmt.Sprintf("reservation is %s and cannot be cancelled", current.Status)) // nolint:wrapcheck
	}

	now := timezone.Now()

	body, err := ota.EncodeCancel(s.credentials(), envelope(now), current.ToCancellation(req.Reason))
	if err != nil {
		log.Error().Err(err).Msg("failed to encode cancellation")

		return res, fmt.Errorf("failed to encode cancellation: %w", err)
	}

	if err = s.claim(ctx, current, now); err != nil {
		return res, err
	}

	result, err := s.exchange(ctx, id, auditModel.ProcessCancel, req, body)
	if err != nil {
		s.release(ctx, current)

		return res, err
	}

	remoteIDs := map[string]string{}
	for _, uniqueID := range result.UniqueIDs {
		if uniqueID.Type != ota.UniqueIDTypeReservation && uniqueID.ID != constant.Empty {
			remoteIDs[uniqueID.Type] = uniqueID.ID
		}
	}

	updated := current
	updated.Status = model.StatusCancelled
	updated.RemoteIDs = current.RemoteIDs.Merge(result.ReservationIDs).Merge(remoteIDs)
	updated.Version = current.Version + 1
	updated.ModifiedAt = now
	updated.ModifiedBy = actor(ctx)

	if err = s.transition(ctx, current, updated, map[string]any{}); err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.EndWith(&err)

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation")

		return res, nil
	}

	reservation, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Reservation, error) {
	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return reservation, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	return reservation, nil
}

// claimTTL covers every attempt the client may make plus a margin, so a
// claim left behind by a crashed process expires on its own.
func (s *serviceImpl) claimTTL() time.Duration {
	remote := s.cfg.Wincloud
	attempt := time.Duration(remote.TimeoutSeconds)*time.Second + time.Duration(remote.RetryWaitMS)*time.Millisecond

	return time.Duration(max(1, remote.MaxAttempts))*attempt + claimMargin
}

// claim takes the reservation for one remote amend or cancel. A second
// request against the same version is refused before anything is sent.
func (s *serviceImpl) claim(ctx context.Context, current model.Reservation, now time.Time) error {
	ok, err := s.repo.Claim(ctx, current, now, now.Add(s.claimTTL()))
	if err != nil {
		log.Error().Err(err).Str("reservationId", current.ID).Msg("failed to claim reservation")

		return fmt.Errorf("failed to claim reservation: %w", err)
	}

	if !ok {
		log.Warn().Str("reservationId", current.ID).Int("version", current.Version).Msg("reservation is being changed by another request")

		return failure.Conflict("reservation is being changed by another request") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) release(ctx context.Context, current model.Reservation) {
	if err := s.repo.Release(context.WithoutCancel(ctx), current); err != nil {
		log.Error().Err(err).Str("reservationId", current.ID).Msg("failed to release reservation claim")
	}
}

// transition stores updated over current with a compare-and-swap on status
// and version and drops the claim. mod carries the fields that changed
// besides the lifecycle ones. The remote side has already accepted the change
// so the write does not follow the caller's cancellation.
func (s *serviceImpl) transition(ctx context.Context, current, updated model.Reservation, mod map[string]any) error {
	mod[model.FieldStatus] = string(updated.Status)
	mod[model.FieldRemoteIDs] = updated.RemoteIDs
	mod[model.FieldVersion] = updated.Version
	mod[model.FieldClaimedUntil] = nil
	mod[constant.FieldModifiedAt] = updated.ModifiedAt
	mod[constant.FieldModifiedBy] = updated.ModifiedBy

	ok, err := s.repo.Transition(context.WithoutCancel(ctx), current, mod)
	if err != nil {
		log.Error().Err(err).Str("reservationId", current.ID).Str("status", string(updated.Status)).Msg("failed to update reservation accepted by remote system")

		return fmt.Errorf("failed to update reservation: %w", err)
	}

	if !ok {
		log.Warn().Str("reservationId", current.ID).Str("from", string(current.Status)).Int("version", current.Version).Msg("reservation changed concurrently")

		return failure.Conflict("reservation was changed by another request") // nolint:wrapcheck
	}

	s.publish(ctx, updated)

	return nil
}

// exchange posts body and writes exactly one audit entry for the attempt,
// whatever its outcome, even when the caller has gone away. Failures come
// back as *RemoteError.
func (s *serviceImpl) exchange(ctx context.Context, reservationID, process string, input any, body []byte) (ota.Result, error) {
	response, err := s.client.Post(ctx, reservationID, body)

	var result ota.Result
	if err == nil {
		result, err = ota.ParseResponse(response.Body)
	}

	remoteErr := classify(err)

	entry := auditModel.AuditLog{
		ReservationID: reservationID,
		Process:       process,
		Input:         marshalInput(input),
		XMLSent:       string(body),
		Response:      string(response.Body),
		Status:        auditModel.StatusSuccess,
		Attempts:      response.Attempts,
		HTTPStatus:    response.StatusCode,
	}

	if remoteErr != nil {
		entry.Status = auditModel.StatusFailure
		entry.ErrorMessage = remoteErr.Message

		log.Error().
			Err(err).
			Str("reservationId", reservationID).
			Str("process", process).
			Str("kind", remoteErr.Kind).
			Int("attempts", response.Attempts).
			Int("httpStatus", response.StatusCode).
			Str("request", entry.XMLSent).
			Str("response", entry.Response).
			Msg("remote reservation call failed")
	} else {
		log.Info().
			Str("reservationId", reservationID).
			Str("process", process).
			Int("attempts", response.Attempts).
			Interface("remoteIds", result.ReservationIDs).
			Msg("remote reservation call succeeded")
	}

	if _, auditErr := s.audit.Record(context.WithoutCancel(ctx), entry); auditErr != nil {
		log.Error().Err(auditErr).Str("reservationId", reservationID).Str("process", process).Msg("failed to record audit log")
	}

	if remoteErr != nil {
		return result, remoteErr
	}

	return result, nil
}

func marshalInput(input any) []byte {
	data, err := json.Marshal(input)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal audit input")

		return []byte("{}")
	}

	return data
}

func (s *serviceImpl) publish(ctx context.Context, reservation model.Reservation) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, reservation.ID)); err != nil {
			log.Error().Err(err).Str("reservationId", reservation.ID).Msg("failed to invalidate reservation cache")
		}

		event := ReservationEvent{
			Event:         constant.EventReservationPrefix + reservation.Status.Event(),
			ReservationID: reservation.ID,
			HotelCode:     reservation.HotelCode,
			Status:        string(reservation.Status),
			RemoteIDs:     reservation.RemoteIDs,
			Version:       reservation.Version,
			OccurredAt:    timezone.Now().Format(time.RFC3339),
		}

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topic.Reservation, kafka.Message{Key: reservation.ID, Value: event}); err != nil {
			log.Error().Err(err).Str("reservationId", reservation.ID).Msg("failed to publish reservation event")
		}
	}()
}
