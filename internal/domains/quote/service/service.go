package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Quote=MockQuoteService

import (
	"context"
	"fmt"
	"otabridge/config"
	"otabridge/infras/otel"
	invModel "otabridge/internal/domains/inventory/model"
	invRepo "otabridge/internal/domains/inventory/repository"
	"otabridge/internal/domains/quote/model"
	"otabridge/internal/domains/quote/model/dto"
	rateModel "otabridge/internal/domains/rate/model"
	rateRepo "otabridge/internal/domains/rate/repository"
	"otabridge/shared"
	"otabridge/shared/cache"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/shared/timezone"
	"otabridge/shared/validator"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Quote interface {
	Get(ctx context.Context, req dto.QuoteRequest) (dto.QuoteResponse, error)
	Calculate(ctx context.Context, stay model.Stay) (model.Quote, error)
}

type serviceImpl struct {
	inventories invRepo.Inventory
	rates       rateRepo.Rate
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(inventories invRepo.Inventory, rates rateRepo.Rate, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Quote {
	return &serviceImpl{
		inventories: inventories,
		rates:       rates,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

// Get validates req, serves a cached quote when one exists and otherwise
// prices the stay. Inventory and rate syncs drop every cached quote.
func (s *serviceImpl) Get(ctx context.Context, req dto.QuoteRequest) (res dto.QuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".quote.Get")
	defer scope.EndWith(&err)

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	stay, err := req.ToStay()
	if err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(constant.CachePrefixQuote, stay.HotelCode, stay.RoomTypeCode,
		req.StartDate, req.EndDate, stay.Adults, stay.Children, stay.Rooms)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for quote")

		return res, nil
	}

	quote, err := s.Calculate(ctx, stay)
	if err != nil {
		return res, err
	}

	res.FromModel(quote)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save quote to cache")
		}
	}()

	return res, nil
}

// Calculate prices every night from stay.Start up to the checkout day. It
// returns a *model.UnavailableError when inventory cannot hold stay.Rooms and
// a *model.NoRateError for the first night no rate covers.
func (s *serviceImpl) Calculate(ctx context.Context, stay model.Stay) (quote model.Quote, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".quote.Calculate")
	defer scope.EndWith(&err)

	if err = stay.Validate(); err != nil {
		return quote, err
	}

	available, err := s.available(ctx, stay)
	if err != nil {
		return quote, err
	}

	nights := stay.Nights()
	if len(nights) != timezone.DaysBetween(stay.Start, stay.End) {
		return quote, fmt.Errorf("night enumeration produced %d nights for %d days", len(nights), timezone.DaysBetween(stay.Start, stay.End))
	}

	rates, err := s.rates.GetAll(ctx, gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: "ASC"}, overlapping(stay, nights[len(nights)-1]))
	if err != nil {
		log.Error().Err(err).Msg("failed to get rates")

		return quote, fmt.Errorf("failed to get rates: %w", err)
	}

	quote = model.Quote{
		Stay:      stay,
		Available: available,
		Nights:    make([]model.Night, 0, len(nights)),
		Total:     decimal.Zero,
	}

	rooms := decimal.NewFromInt(int64(stay.Rooms))

	for _, night := range nights {
		rate, charge, ok := cheapest(rates, night, stay)
		if !ok {
			log.Warn().Str("hotelCode", stay.HotelCode).Str("roomTypeCode", stay.RoomTypeCode).Str("date", timezone.FormatDate(night)).Msg("no rate for night")

			return model.Quote{}, &model.NoRateError{Date: night}
		}

		warnSurchargeGaps(stay, rate, night, charge)

		if quote.CurrencyCode == "" {
			quote.CurrencyCode = rate.CurrencyCode
		} else if quote.CurrencyCode != rate.CurrencyCode {
			log.Warn().Str("hotelCode", stay.HotelCode).Str("ratePlanCode", rate.RatePlanCode).Str("currency", rate.CurrencyCode).Str("quoteCurrency", quote.CurrencyCode).Msg("rate currency differs within one stay")
		}

		line := model.Night{
			Date:         night,
			Weekday:      night.Weekday(),
			RatePlanCode: rate.RatePlanCode,
			CurrencyCode: rate.CurrencyCode,
			Charge:       charge,
			Total:        charge.PerRoom.Mul(rooms),
		}

		quote.Nights = append(quote.Nights, line)
		quote.Total = quote.Total.Add(line.Total)
	}

	return quote, nil
}

// available returns the smallest inventory count across every row touching
// the stay, checkout day included.
func (s *serviceImpl) available(ctx context.Context, stay model.Stay) (int, error) {
	rows, err := s.inventories.GetAll(ctx, gDto.QueryParams{}, overlapping(stay, stay.End))
	if err != nil {
		log.Error().Err(err).Msg("failed to get inventories")

		return 0, fmt.Errorf("failed to get inventories: %w", err)
	}

	if len(rows) == 0 {
		return 0, &model.UnavailableError{Requested: stay.Rooms}
	}

	available := minCount(rows)
	if available < stay.Rooms {
		return available, &model.UnavailableError{Requested: stay.Rooms, Available: available}
	}

	return available, nil
}

func minCount(rows []invModel.Inventory) int {
	available := rows[0].Count

	for _, row := range rows[1:] {
		available = min(available, row.Count)
	}

	return available
}

// overlapping matches rows of the stay's hotel and room type whose window
// intersects [stay.Start, last].
func overlapping(stay model.Stay, last time.Time) gDto.FilterGroup {
	return gDto.And(
		gDto.Eq(invModel.FieldHotelCode, stay.HotelCode),
		gDto.Eq(invModel.FieldRoomTypeCode, stay.RoomTypeCode),
		gDto.Filter{ArgName: "window_end", Field: invModel.FieldStartDate, Value: last, Operator: gDto.FilterOperatorLessEq},
		gDto.Filter{ArgName: "window_start", Field: invModel.FieldEndDate, Value: stay.Start, Operator: gDto.FilterOperatorGreaterEq},
	)
}

// cheapest picks the lowest per-room charge among rates that cover night
// and apply on its weekday. The first rate wins a tie.
func cheapest(rates []rateModel.Rate, night time.Time, stay model.Stay) (rateModel.Rate, model.Charge, bool) {
	var (
		best       rateModel.Rate
		bestCharge model.Charge
		found      bool
	)

	for _, rate := range rates {
		if !rate.Covers(night) || !rate.AppliesOn(night.Weekday()) || len(rate.BaseGuestAmounts) == 0 {
			continue
		}

		charge := model.Price(rate, stay.Adults, stay.Children)

		if !found || charge.PerRoom.LessThan(bestCharge.PerRoom) {
			best, bestCharge, found = rate, charge, true
		}
	}

	return best, bestCharge, found
}

func warnSurchargeGaps(stay model.Stay, rate rateModel.Rate, night time.Time, charge model.Charge) {
	if !charge.MissingAdultSurcharge && !charge.MissingChildSurcharge {
		return
	}

	log.Warn().
		Str("hotelCode", stay.HotelCode).
		Str("roomTypeCode", stay.RoomTypeCode).
		Str("ratePlanCode", rate.RatePlanCode).
		Str("date", timezone.FormatDate(night)).
		Bool("missingAdultSurcharge", charge.MissingAdultSurcharge).
		Bool("missingChildSurcharge", charge.MissingChildSurcharge).
		Msg("rate has no surcharge for additional guests, charging zero")
}
