package notification

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"otabridge/config"
	"otabridge/infras/otel"
	inventoryService "otabridge/internal/domains/inventory/service"
	rateService "otabridge/internal/domains/rate/service"
	"otabridge/internal/ota"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	"otabridge/shared/password"
	"otabridge/shared/timezone"
	"otabridge/transport/http/response"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	inventory inventoryService.Inventory
	rate      rateService.Rate
	cfg       *config.Config
	otel      otel.Otel
}

func New(inventory inventoryService.Inventory, rate rateService.Rate, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		inventory: inventory,
		rate:      rate,
		cfg:       cfg,
		otel:      otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/ota", func(routerGroup chi.Router) {
		routerGroup.Post("/notifications", handler.Receive)
	})
}

// Receive accepts an inbound OTA sync notification.
// @Summary Receive an OTA notification
// @Description Accepts OTA_HotelInvCountNotifRQ and OTA_HotelRateAmountNotifRQ documents, dispatching by root element. Replies with the matching RS document.
// @Tags OTA
// @Accept xml
// @Produce xml
// @Success 200 {string} string "RS document with Success"
// @Failure 400 {string} string "RS document with Errors"
// @Failure 401 {string} string "RS document with Errors"
// @Failure 415 {string} string "RS document with Errors"
// @Failure 500 {string} string "RS document with Errors"
// @Router /v1/ota/notifications [post]
func (handler *Handler) Receive(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Receive")
	defer scope.End()

	now := timezone.Now()

	if contentType := request.Header.Get(constant.RequestHeaderContentType); !isXML(contentType) {
		scope.AddEvent("Unsupported media type")
		log.Warn().Str("contentType", contentType).Msg("rejected notification with a non-XML content type")

		handler.respond(writer, http.StatusUnsupportedMediaType, ota.Header{}, now,
			ota.Invalid(ota.ErrTypeMediaType, "Content-Type", ota.NoIndex, "content type must be %s or %s", constant.ContentTypeXML, constant.ContentTypeTextXML))

		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, constant.RequestMaxMemory))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read notification body")

		handler.respond(writer, http.StatusBadRequest, ota.Header{}, now,
			ota.Invalid(ota.ErrTypeMalformedXML, "document", ota.NoIndex, "failed to read request body"))

		return
	}

	header, err := ota.ReadHeader(body)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Msg("rejected notification without a readable root element")

		handler.respond(writer, http.StatusBadRequest, header, now, asValidationError(err))

		return
	}

	scope.SetAttributes(map[string]any{
		"ota.root":       header.Root,
		"ota.echo_token": header.EchoToken,
	})

	doc, err := ota.Decode(body)
	if err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("root", header.Root).Str("echoToken", header.EchoToken).Msg("rejected notification")

		handler.respond(writer, http.StatusBadRequest, header, now, asValidationError(err))

		return
	}

	if verr := handler.authenticate(doc.Requestor()); verr != nil {
		scope.TraceError(verr)
		log.Warn().Str("requestorID", doc.Requestor().ID).Str("echoToken", header.EchoToken).Msg(verr.Message)

		handler.respond(writer, http.StatusUnauthorized, header, now, verr)

		return
	}

	var applied int

	switch typed := doc.(type) {
	case *ota.InvCountNotifRQ:
		applied, err = handler.inventory.Sync(ctx, typed)
	case *ota.RateAmountNotifRQ:
		applied, err = handler.rate.Sync(ctx, typed)
	}

	if err != nil {
		scope.TraceError(err)

		var verr *ota.ValidationError
		if errors.As(err, &verr) {
			handler.respond(writer, http.StatusBadRequest, header, now, verr)

			return
		}

		log.Error().Err(err).Str("root", header.Root).Str("echoToken", header.EchoToken).Msg("failed to process notification")

		handler.respond(writer, http.StatusInternalServerError, header, now,
			ota.Invalid(ota.ErrTypeProcessingFailed, "document", ota.NoIndex, "unable to process notification"))

		return
	}

	scope.AddEvent("Notification applied")
	scope.SetAttribute("ota.entries", applied)

	handler.respond(writer, http.StatusOK, header, now, nil)
}

// authenticate checks the POS requestor against the configured partner
// credentials. Blank settings are not enforced.
func (handler *Handler) authenticate(requestor ota.RequestorID) *ota.ValidationError {
	inbound := handler.cfg.Wincloud.Inbound

	if inbound.RequestorID != constant.Empty && requestor.ID != inbound.RequestorID {
		return ota.Invalid(ota.ErrTypeAuthentication, "RequestorID.ID", ota.NoIndex, "unknown requestor %s", requestor.ID)
	}

	if inbound.MessagePasswordHash != constant.Empty {
		if err := password.Verify(requestor.MessagePassword, inbound.MessagePasswordHash); err != nil {
			return ota.Invalid(ota.ErrTypeAuthentication, "RequestorID.MessagePassword", ota.NoIndex, "invalid message password")
		}
	}

	return nil
}

func (handler *Handler) respond(writer http.ResponseWriter, code int, header ota.Header, now time.Time, verr *ota.ValidationError) {
	body, err := ota.EncodeNotifRS(header.Root, header.EchoToken, now, verr)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode notification response")

		response.WithError(writer, failure.InternalError(err))

		return
	}

	response.WithXML(writer, code, body)
}

// isXML accepts application/xml and text/xml with any parameters such as
// charset.
func isXML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == constant.ContentTypeXML || mediaType == constant.ContentTypeTextXML
}

func asValidationError(err error) *ota.ValidationError {
	var verr *ota.ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	return ota.Invalid(ota.ErrTypeMalformedXML, "document", ota.NoIndex, "%s", err.Error())
}
