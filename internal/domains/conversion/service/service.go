package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"otabridge/config"
	"otabridge/infras/jwt"
	"otabridge/infras/otel"
	"otabridge/internal/domains/conversion/model/dto"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	"otabridge/shared/validator"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	ratePairSeparator = "_"
	convertedPlaces   = 2
)

type Conversion interface {
	Convert(ctx context.Context, req dto.ConvertRequest) (dto.ConvertResponse, error)
	Verify(ctx context.Context, token string, amount decimal.Decimal, currency string) error
}

type serviceImpl struct {
	rates map[string]decimal.Decimal
	jwt   jwt.JWT
	otel  otel.Otel
}

// New reads the rate table from config. Keys are currency pairs such as
// "EUR_USD"; the inverse pair is derived when only one direction is listed.
func New(cfg *config.Config, jwt jwt.JWT, otel otel.Otel) Conversion {
	rates := make(map[string]decimal.Decimal, len(cfg.App.Conversion.Rates))

	for pair, rate := range cfg.App.Conversion.Rates {
		if rate <= 0 {
			log.Warn().Str("pair", pair).Float64("rate", rate).Msg("ignoring non-positive conversion rate")

			continue
		}

		rates[strings.ToUpper(pair)] = decimal.NewFromFloat(rate)
	}

	return &serviceImpl{
		rates: rates,
		jwt:   jwt,
		otel:  otel,
	}
}

func (s *serviceImpl) rate(from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}

	if rate, ok := s.rates[from+ratePairSeparator+to]; ok {
		return rate, true
	}

	if inverse, ok := s.rates[to+ratePairSeparator+from]; ok {
		return decimal.NewFromInt(1).Div(inverse), true
	}

	return decimal.Zero, false
}

// Convert prices amount in the target currency and returns a signed token
// binding the result until it expires.
func (s *serviceImpl) Convert(ctx context.Context, req dto.ConvertRequest) (res dto.ConvertResponse, err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".conversion.Convert")
	defer scope.EndWith(&err)

	req.From, req.To = strings.ToUpper(req.From), strings.ToUpper(req.To)

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	from, to := req.From, req.To

	rate, ok := s.rate(from, to)
	if !ok {
		return res, failure.UnprocessableEntity(fmt.Sprintf("no conversion rate from %s to %s", from, to)) // nolint:wrapcheck
	}

	amount := decimal.RequireFromString(req.Amount)
	converted := amount.Mul(rate).Round(convertedPlaces)

	claims := jwt.ConversionClaims{
		Amount:          amount.String(),
		Currency:        from,
		Rate:            rate.String(),
		ConvertedAmount: converted.String(),
		ConvertedTo:     to,
	}

	token, expiresAt, err := s.jwt.SignConversion(claims)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign conversion token")

		return res, fmt.Errorf("failed to sign conversion token: %w", err)
	}

	return dto.ConvertResponse{
		Amount:          claims.Amount,
		Currency:        claims.Currency,
		Rate:            claims.Rate,
		ConvertedAmount: converted.StringFixed(convertedPlaces),
		ConvertedTo:     to,
		ExpiresAt:       expiresAt.Format(constant.DateFormat),
		Token:           token,
	}, nil
}

// Verify checks that token is live and that amount and currency are the
// converted values it was issued for.
func (s *serviceImpl) Verify(ctx context.Context, token string, amount decimal.Decimal, currency string) (err error) {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".conversion.Verify")
	defer scope.EndWith(&err)

	claims, err := s.jwt.ParseConversion(token)
	if errors.Is(err, jwt.ErrExpiredToken) {
		return failure.BadRequestFromString("conversion token has expired") // nolint:wrapcheck
	}

	if err != nil {
		return failure.BadRequestFromString("conversion token is invalid") // nolint:wrapcheck
	}

	converted, err := decimal.NewFromString(claims.ConvertedAmount)
	if err != nil {
		return failure.BadRequestFromString("conversion token is invalid") // nolint:wrapcheck
	}

	if !converted.Equal(amount) || !strings.EqualFold(claims.ConvertedTo, currency) {
		log.Warn().
			Str("tokenAmount", claims.ConvertedAmount).
			Str("tokenCurrency", claims.ConvertedTo).
			Str("amount", amount.String()).
			Str("currency", currency).
			Msg("reservation total does not match conversion token")

		return failure.BadRequestFromString("reservation total does not match the converted amount") // nolint:wrapcheck
	}

	return nil
}
