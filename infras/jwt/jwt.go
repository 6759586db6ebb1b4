package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"errors"
	"fmt"
	"otabridge/config"
	"otabridge/shared/timezone"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultExpireMin = 15
	subjectConvert   = "conversion"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidClaim = errors.New("invalid token claim")
)

// ConversionClaims bind a quoted currency conversion to its expiry.
// Amounts and rate are decimal strings so nothing is lost to float rounding.
type ConversionClaims struct {
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Rate            string `json:"rate"`
	ConvertedAmount string `json:"converted_amount"`
	ConvertedTo     string `json:"converted_to"`
	jwt.RegisteredClaims
}

type JWT interface {
	SignConversion(claims ConversionClaims) (token string, expiresAt time.Time, err error)
	ParseConversion(token string) (*ConversionClaims, error)
}

type Service struct {
	secret    []byte
	issuer    string
	expireMin int
}

func New(cfg *config.Config) JWT {
	expireMin := cfg.App.Conversion.ExpireMin
	if expireMin <= 0 {
		expireMin = defaultExpireMin
	}

	return &Service{
		secret:    []byte(cfg.App.Conversion.Secret),
		issuer:    cfg.App.Name,
		expireMin: expireMin,
	}
}

// SignConversion stamps the registered claims and signs with HS256.
func (s *Service) SignConversion(claims ConversionClaims) (string, time.Time, error) {
	issuedAt := timezone.Now()
	expiresAt := issuedAt.Add(time.Duration(s.expireMin) * time.Minute)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		Issuer:    s.issuer,
		Subject:   subjectConvert,
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

func (s *Service) ParseConversion(tokenString string) (*ConversionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ConversionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithSubject(subjectConvert))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ConversionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Amount == "" || claims.Currency == "" {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}
