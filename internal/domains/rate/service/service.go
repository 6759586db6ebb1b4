package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Rate=MockRateService

import (
	"cmp"
	"context"
	"fmt"
	"otabridge/config"
	"otabridge/infras/kafka"
	"otabridge/infras/otel"
	"otabridge/internal/domains/rate/model"
	"otabridge/internal/domains/rate/model/dto"
	"otabridge/internal/domains/rate/repository"
	"otabridge/internal/ota"
	"otabridge/shared"
	"otabridge/shared/cache"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/shared/timezone"
	"otabridge/shared/validator"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	cacheGetAllRate = "rate:gets"
	cacheCountRate  = "rate:count"
)

var weekdayFields = [7]string{"Mon", "Tue", "Weds", "Thur", "Fri", "Sat", "Sun"}

type Rate interface {
	Sync(ctx context.Context, doc *ota.RateAmountNotifRQ) (int, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRatesResponse, error)
}

type serviceImpl struct {
	repo  repository.Rate
	cfg   *config.Config
	cache cache.RedisCache
	kafka kafka.Client
	otel  otel.Otel
}

func New(repo repository.Rate, cfg *config.Config, cache cache.RedisCache, kafka kafka.Client, otel otel.Otel) Rate {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		kafka: kafka,
		otel:  otel,
	}
}

// Sync validates the whole document first and then upserts one row per Rate
// element in document order. Rows sharing a rate plan overwrite each other.
func (s *serviceImpl) Sync(ctx context.Context, doc *ota.RateAmountNotifRQ) (applied int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".rate.Sync")
	defer scope.EndWith(&err)

	actor := doc.Requestor().ID
	now := timezone.Now()
	today := timezone.DateOnly(now)
	messages := doc.RateAmountMessages

	rows := []model.Rate{}

	for index, message := range messages.RateAmountMessage {
		parsed, verr := toModels(messages, message, index, today)
		if verr != nil {
			log.Warn().Str("echoToken", doc.EchoToken).Str("field", verr.Field).Int("entry", index).Msg(verr.Message)

			return 0, verr
		}

		for i := range parsed {
			parsed[i].Stamp(now, actor)
		}

		rows = append(rows, parsed...)
	}

	for _, row := range rows {
		if err = s.repo.Save(ctx, row); err != nil {
			log.Error().Err(err).Str("hotelCode", row.HotelCode).Str("ratePlanCode", row.RatePlanCode).Msg("failed to save rate")

			return applied, fmt.Errorf("failed to save rate: %w", err)
		}

		applied++
	}

	log.Info().Str("echoToken", doc.EchoToken).Str("hotelCode", messages.HotelCode).Int("entries", applied).Msg("rate sync applied")

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, constant.CachePrefixQuote)
		shared.InvalidateCaches(c, s.cache, cacheGetAllRate)
		shared.InvalidateCaches(c, s.cache, cacheCountRate)

		event := gDto.SyncAppliedEvent{
			Event:     constant.EventSyncApplied,
			Message:   doc.Root(),
			HotelCode: messages.HotelCode,
			EchoToken: doc.EchoToken,
			Entries:   applied,
			AppliedAt: now.Format(time.RFC3339),
		}

		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topic.Sync, kafka.Message{Key: messages.HotelCode, Value: event}); err != nil {
			log.Error().Err(err).Msg("failed to publish rate sync event")
		}
	}()

	return applied, nil
}

func toModels(messages *ota.RateAmountMessages, message ota.RateAmountMessage, index int, today time.Time) ([]model.Rate, *ota.ValidationError) {
	control := message.StatusApplicationControl

	start, err := timezone.ParseDate(control.Start)
	if err != nil {
		return nil, ota.Invalid(ota.ErrTypeInvalidDateFormat, "Start", index, "Start %q is not a valid YYYY-MM-DD date", control.Start)
	}

	end, err := timezone.ParseDate(control.End)
	if err != nil {
		return nil, ota.Invalid(ota.ErrTypeInvalidDateFormat, "End", index, "End %q is not a valid YYYY-MM-DD date", control.End)
	}

	if end.Before(start) {
		return nil, ota.Invalid(ota.ErrTypeDateRange, "End", index, "End %s is before Start %s", control.End, control.Start)
	}

	if start.Before(today) {
		return nil, ota.Invalid(ota.ErrTypeInvalidStartDate, "Start", index, "Start %s is earlier than today", control.Start)
	}

	rows := make([]model.Rate, 0, len(message.Rates.Rate))

	for _, rate := range message.Rates.Rate {
		days, verr := weekdays(rate, index)
		if verr != nil {
			return nil, verr
		}

		currency := strings.ToUpper(strings.TrimSpace(rate.CurrencyCode))
		if validator.ValidateVar(currency, "iso4217") != nil {
			return nil, ota.Invalid(ota.ErrTypeInvalidCurrency, "CurrencyCode", index, "CurrencyCode %q is not an ISO 4217 code", rate.CurrencyCode)
		}

		base, verr := baseGuestAmounts(rate.BaseByGuestAmts, index)
		if verr != nil {
			return nil, verr
		}

		extra, verr := additionalGuestAmounts(rate.AdditionalGuestAmounts, index)
		if verr != nil {
			return nil, verr
		}

		row := model.Rate{
			ID:                     uuid.NewString(),
			HotelCode:              messages.HotelCode,
			HotelName:              messages.HotelName,
			RoomTypeCode:           control.InvTypeCode,
			RatePlanCode:           control.RatePlanCode,
			StartDate:              start,
			EndDate:                end,
			CurrencyCode:           currency,
			BaseGuestAmounts:       base,
			AdditionalGuestAmounts: extra,
		}
		row.SetWeekdays(days)

		rows = append(rows, row)
	}

	return rows, nil
}

// weekdays reads the Mon..Sun flags. A missing flag means false; anything
// other than a boolean literal is rejected, as is a mask with no day set.
func weekdays(rate ota.Rate, index int) ([7]bool, *ota.ValidationError) {
	var days [7]bool

	for i, raw := range rate.Weekdays() {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		flag := shared.ConvertStringToBool(raw)
		if flag == nil {
			return days, ota.Invalid(ota.ErrTypeInvalidRateDays, weekdayFields[i], index, "%s %q must be true or false", weekdayFields[i], raw)
		}

		days[i] = *flag
	}

	if !slices.Contains(days[:], true) {
		return days, ota.Invalid(ota.ErrTypeInvalidRateDays, "Rate", index, "at least one weekday flag must be true")
	}

	return days, nil
}

func baseGuestAmounts(amounts *ota.BaseByGuestAmts, index int) (model.BaseGuestAmounts, *ota.ValidationError) {
	tiers := make(model.BaseGuestAmounts, 0, len(amounts.BaseByGuestAmt))

	for _, tier := range amounts.BaseByGuestAmt {
		amount, err := decimal.NewFromString(strings.TrimSpace(tier.AmountBeforeTax))
		if err != nil || amount.IsNegative() {
			return nil, ota.Invalid(ota.ErrTypeInvalidAmount, "AmountBeforeTax", index, "AmountBeforeTax %q must be a non-negative number", tier.AmountBeforeTax)
		}

		guests, ok := ota.ParseCount(strings.TrimSpace(tier.NumberOfGuests))
		if !ok || guests < 1 {
			return nil, ota.Invalid(ota.ErrTypeInvalidGuestCount, "NumberOfGuests", index, "NumberOfGuests %q must be a positive integer", tier.NumberOfGuests)
		}

		tiers = append(tiers, model.BaseGuestAmount{Amount: amount, NumberOfGuests: guests})
	}

	slices.SortStableFunc(tiers, func(a, b model.BaseGuestAmount) int {
		return cmp.Compare(a.NumberOfGuests, b.NumberOfGuests)
	})

	return tiers, nil
}

func additionalGuestAmounts(amounts *ota.AdditionalGuestAmounts, index int) (model.AdditionalGuestAmounts, *ota.ValidationError) {
	extra := model.AdditionalGuestAmounts{}
	if amounts == nil {
		return extra, nil
	}

	for _, surcharge := range amounts.AdditionalGuestAmount {
		code := strings.TrimSpace(surcharge.AgeQualifyingCode)
		if code == "" {
			return nil, ota.MissingAttribute("AgeQualifyingCode", index)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(surcharge.Amount))
		if err != nil || amount.IsNegative() {
			return nil, ota.Invalid(ota.ErrTypeInvalidAmount, "Amount", index, "Amount %q must be a non-negative number", surcharge.Amount)
		}

		extra = append(extra, model.AdditionalGuestAmount{AgeQualifyingCode: code, Amount: amount})
	}

	return extra, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRatesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".rate.GetAll")
	defer scope.EndWith(&err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRate, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rates")

		return res, nil
	}

	countKey := shared.BuildCacheKeyWithQuery(cacheCountRate, req, filter)

	var total int
	if err = s.cache.Get(ctx, countKey, &total); err != nil {
		total, err = s.repo.Count(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to count rates")

			return res, fmt.Errorf("failed to count rates: %w", err)
		}
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rates")

		return res, fmt.Errorf("failed to get rates: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, countKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rate count to cache")
		}

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rates to cache")
		}
	}()

	return res, nil
}
