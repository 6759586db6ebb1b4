package rate

import (
	"net/http"
	"otabridge/infras/otel"
	"otabridge/internal/domains/rate/model"
	"otabridge/internal/domains/rate/model/dto"
	"otabridge/internal/domains/rate/service"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Rate
	otel    otel.Otel
}

func New(service service.Rate, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rates", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetRates)
	})
}

// GetRates lists synced rate plans.
// @Summary List rates
// @Description Lists the rate plans received from the channel manager with their guest tiers and surcharges.
// @Tags Rate
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param hotel_code query string false "Filter by hotel code"
// @Param room_type_code query string false "Filter by room type code"
// @Param rate_plan_code query string false "Filter by rate plan code"
// @Success 200 {object} response.Data[dto.GetRatesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/rates [get]
// @Security ApiKeyAuth
func (handler *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRates")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSort(model.FieldRatePlanCode, model.FieldStartDate, model.FieldEndDate, constant.FieldCreatedAt, constant.FieldModifiedAt)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	for _, field := range []string{model.FieldHotelCode, model.FieldRoomTypeCode, model.FieldRatePlanCode} {
		if value := r.URL.Query().Get(field); value != constant.Empty {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	var rates dto.GetRatesResponse

	rates, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rates")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rates retrieved successfully")

	response.WithJSON(w, http.StatusOK, rates)
}
