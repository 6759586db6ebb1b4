package conversion

import (
	"net/http"
	"otabridge/infras/otel"
	"otabridge/internal/domains/conversion/model/dto"
	"otabridge/internal/domains/conversion/service"
	"otabridge/shared/constant"
	"otabridge/shared/validator"
	"otabridge/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Conversion
	otel    otel.Otel
}

func New(service service.Conversion, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/conversions", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.Convert)
	})
}

// Convert converts an amount and signs the result.
// @Summary Convert an amount between currencies
// @Description Converts with the configured rate table and returns a short lived token that a reservation may present.
// @Tags Conversion
// @Accept json
// @Produce json
// @Param request body dto.ConvertRequest true "Conversion request"
// @Success 200 {object} response.Data[dto.ConvertResponse]
// @Failure 400 {object} response.Error
// @Failure 422 {object} response.Error "Unknown currency pair"
// @Failure 500 {object} response.Error
// @Router /v1/conversions [post]
func (handler *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Convert")
	defer scope.End()

	var req dto.ConvertRequest

	if err := validator.Decode(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to decode conversion request")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Convert(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("from", req.From).Str("to", req.To).Msg("failed to convert amount")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Amount converted")

	response.WithJSON(w, http.StatusOK, res)
}
