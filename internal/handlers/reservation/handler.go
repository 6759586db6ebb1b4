package reservation

import (
	"net/http"
	"otabridge/infras/otel"
	auditLogDto "otabridge/internal/domains/auditlog/model/dto"
	auditLogService "otabridge/internal/domains/auditlog/service"
	"otabridge/internal/domains/reservation/model/dto"
	"otabridge/internal/domains/reservation/service"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/shared/validator"
	"otabridge/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	paramAuditLogID = "auditLogID"
)

type Handler struct {
	service  service.Reservation
	auditLog auditLogService.AuditLog
	otel     otel.Otel
}

func New(service service.Reservation, auditLog auditLogService.AuditLog, otel otel.Otel) Handler {
	return Handler{
		service:  service,
		auditLog: auditLog,
		otel:     otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateReservation)
		routerGroup.Get("/{id}", handler.GetReservationByID)
		routerGroup.Patch("/{id}", handler.AmendReservation)
		routerGroup.Post("/{id}/cancel", handler.CancelReservation)
		routerGroup.Get("/{id}/audit-logs", handler.GetAuditLogs)
		routerGroup.Get("/{id}/audit-logs/{auditLogID}/archive", handler.GetAuditLogArchive)
	})
}

// CreateReservation commits a new booking to the channel manager.
// @Summary Create a reservation
// @Description Sends OTA_HotelResNotifRQ and stores the reservation once the channel manager accepts it.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.CreateReservationRequest true "Reservation"
// @Success 201 {object} response.Data[dto.CreateReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 502 {object} response.Error "Channel manager rejected or unreachable"
// @Failure 504 {object} response.Error "Channel manager timed out"
// @Router /v1/reservations [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReservation")
	defer scope.End()

	var req dto.CreateReservationRequest

	if err := validator.Decode(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode reservation request")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("hotelCode", req.HotelCode).Msg("failed to create reservation")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation created " + res.ID)

	response.WithJSON(w, http.StatusCreated, res)
}

// GetReservationByID returns the stored reservation.
// @Summary Get a reservation
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 404 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security ApiKeyAuth
func (handler *Handler) GetReservationByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to get reservation")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// AmendReservation replaces the stay details of a live reservation.
// @Summary Amend a reservation
// @Description Sends OTA_HotelResModifyNotifRQ carrying the remote reservation ids.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.AmendReservationRequest true "New stay details"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Cancelled or changed concurrently"
// @Failure 502 {object} response.Error
// @Failure 504 {object} response.Error
// @Router /v1/reservations/{id} [patch]
// @Security ApiKeyAuth
func (handler *Handler) AmendReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AmendReservation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.AmendReservationRequest

	if err := validator.Decode(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode amend request")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Amend(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to amend reservation")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation amended " + id)

	response.WithJSON(w, http.StatusOK, res)
}

// CancelReservation cancels a reservation at the channel manager.
// @Summary Cancel a reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.CancelReservationRequest false "Cancellation reason"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error "Already cancelled"
// @Failure 502 {object} response.Error
// @Failure 504 {object} response.Error
// @Router /v1/reservations/{id}/cancel [post]
// @Security ApiKeyAuth
func (handler *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelReservation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.CancelReservationRequest

	if r.ContentLength != 0 {
		if err := validator.Decode(r.Body, &req); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to decode cancel request")

			response.WithError(w, err)

			return
		}
	}

	res, err := handler.service.Cancel(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("id", id).Msg("failed to cancel reservation")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation cancelled " + id)

	response.WithJSON(w, http.StatusOK, res)
}

// GetAuditLogs lists every exchange with the channel manager for a reservation.
// @Summary List reservation audit logs
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[auditLogDto.GetAuditLogsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id}/audit-logs [get]
// @Security ApiKeyAuth
func (handler *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAuditLogs")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	var res auditLogDto.GetAuditLogsResponse

	res, err := handler.auditLog.ListByReservation(ctx, id, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservationID", id).Msg("failed to get audit logs")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetAuditLogArchive streams the archived XML exchange of one audit entry.
// @Summary Download an archived exchange
// @Tags Reservation
// @Produce json
// @Param id path string true "Reservation ID"
// @Param auditLogID path string true "Audit log ID"
// @Success 200 {string} string "Archived exchange as JSON"
// @Failure 404 {object} response.Error
// @Router /v1/reservations/{id}/audit-logs/{auditLogID}/archive [get]
// @Security ApiKeyAuth
func (handler *Handler) GetAuditLogArchive(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAuditLogArchive")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	auditLogID := chi.URLParam(r, paramAuditLogID)

	body, err := handler.auditLog.Archive(ctx, id, auditLogID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("reservationID", id).Str("auditLogID", auditLogID).Msg("failed to get audit log archive")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, constant.ContentTypeJSON, body)
}
