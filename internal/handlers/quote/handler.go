package quote

import (
	"errors"
	"net/http"
	"net/url"
	"otabridge/infras/otel"
	"otabridge/internal/domains/quote/model"
	"otabridge/internal/domains/quote/model/dto"
	"otabridge/internal/domains/quote/service"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	"otabridge/transport/http/response"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	queryHotelCode    = "hotel_code"
	queryRoomTypeCode = "room_type_code"
	queryStartDate    = "start_date"
	queryEndDate      = "end_date"
	queryAdults       = "adults"
	queryChildren     = "children"
	queryRooms        = "rooms"
)

type Handler struct {
	service service.Quote
	otel    otel.Otel
}

func New(service service.Quote, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/quotes", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetQuote)
	})
}

// GetQuote prices a stay night by night.
// @Summary Quote a stay
// @Description Checks availability over the stay and returns the cheapest applicable rate for every night.
// @Tags Quote
// @Produce json
// @Param hotel_code query string true "Hotel code"
// @Param room_type_code query string true "Room type code"
// @Param start_date query string true "Arrival date (YYYY-MM-DD)"
// @Param end_date query string true "Departure date (YYYY-MM-DD)"
// @Param adults query integer true "Adults"
// @Param children query integer false "Children"
// @Param rooms query integer false "Rooms, defaults to 1"
// @Success 200 {object} response.Data[dto.QuoteResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Not enough rooms"
// @Failure 422 {object} response.Error "A night has no rate"
// @Failure 500 {object} response.Error
// @Router /v1/quotes [get]
func (handler *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetQuote")
	defer scope.End()

	req, err := parseRequest(r.URL.Query())
	if err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.Get(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("hotelCode", req.HotelCode).Str("roomTypeCode", req.RoomTypeCode).Msg("failed to quote stay")

		response.WithError(w, toFailure(err))

		return
	}

	scope.AddEvent("Quote calculated")

	response.WithJSON(w, http.StatusOK, res)
}

func parseRequest(query url.Values) (dto.QuoteRequest, error) {
	req := dto.QuoteRequest{
		HotelCode:    query.Get(queryHotelCode),
		RoomTypeCode: query.Get(queryRoomTypeCode),
		StartDate:    query.Get(queryStartDate),
		EndDate:      query.Get(queryEndDate),
		Rooms:        1,
	}

	counts := []struct {
		name   string
		target *int
	}{
		{queryAdults, &req.Adults},
		{queryChildren, &req.Children},
		{queryRooms, &req.Rooms},
	}

	for _, count := range counts {
		raw := query.Get(count.name)
		if raw == constant.Empty {
			continue
		}

		value, err := strconv.Atoi(raw)
		if err != nil {
			return req, failure.BadRequestFromString(count.name + " must be an integer")
		}

		*count.target = value
	}

	return req, nil
}

func toFailure(err error) error {
	switch {
	case errors.Is(err, model.ErrUnavailable):
		return failure.Conflict(err.Error())
	case errors.Is(err, model.ErrNoRate):
		return failure.UnprocessableEntity(err.Error())
	default:
		return err
	}
}
