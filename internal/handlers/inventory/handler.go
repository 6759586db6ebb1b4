package inventory

import (
	"net/http"
	"otabridge/infras/otel"
	"otabridge/internal/domains/inventory/model"
	"otabridge/internal/domains/inventory/model/dto"
	"otabridge/internal/domains/inventory/service"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Inventory
	otel    otel.Otel
}

func New(service service.Inventory, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/inventories", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetInventories)
	})
}

// GetInventories lists synced availability windows.
// @Summary List inventories
// @Description Lists the availability windows received from the channel manager.
// @Tags Inventory
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param hotel_code query string false "Filter by hotel code"
// @Param room_type_code query string false "Filter by room type code"
// @Success 200 {object} response.Data[dto.GetInventoriesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/inventories [get]
// @Security ApiKeyAuth
func (handler *Handler) GetInventories(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetInventories")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSort(model.FieldStartDate, model.FieldEndDate, model.FieldCount, constant.FieldCreatedAt, constant.FieldModifiedAt)

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	for _, field := range []string{model.FieldHotelCode, model.FieldRoomTypeCode} {
		if value := r.URL.Query().Get(field); value != constant.Empty {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	var inventories dto.GetInventoriesResponse

	inventories, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get inventories")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Inventories retrieved successfully")

	response.WithJSON(w, http.StatusOK, inventories)
}
