package middleware

import (
	"errors"
	"net"
	"net/http"
	"otabridge/shared"
	"otabridge/shared/cache"
	"otabridge/shared/constant"
	"otabridge/transport/http/response"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"

	surfaceOTA = "ota"
	surfaceAPI = "api"

	otaPathPrefix = "/v1/ota/"
)

// RateLimit counts requests per client in a fixed window kept in Redis.
// Channel-manager pushes and booking-flow calls are counted separately so a
// burst of sync documents cannot lock callers out of quotes. The limiter
// fails open when Redis is unreachable.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limits := a.config.App.RateLimiter
			if !limits.Enable {
				next.ServeHTTP(w, r)

				return
			}

			client := clientAddress(r)
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, surface(r), client)

			count, err := a.hit(r, cacheKey)
			if err != nil {
				log.Warn().Err(err).Str("client", client).Msg("rate limiter unavailable, letting request through")
				next.ServeHTTP(w, r)

				return
			}

			if count > limits.MaxRequests {
				log.Warn().Str("client", client).Str("path", r.URL.Path).Int("count", count).Msg("request limit exceeded")
				response.WithRequestLimitExceeded(w)

				return
			}

			if err = a.cache.Save(r.Context(), cacheKey, count, limits.WindowSeconds); err != nil {
				log.Warn().Err(err).Str("client", client).Msg("failed to store request count")
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limits.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, limits.MaxRequests-count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limits.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

// hit returns the request count including this request. The first request of
// a window counts as one.
func (a *appMiddleware) hit(r *http.Request, cacheKey string) (int, error) {
	var count int

	err := a.cache.Get(r.Context(), cacheKey, &count)
	if errors.Is(err, cache.Nil) {
		return 1, nil
	}

	if err != nil {
		return 0, err
	}

	return count + 1, nil
}

func surface(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, otaPathPrefix) {
		return surfaceOTA
	}

	return surfaceAPI
}

// clientAddress prefers the first hop of X-Forwarded-For, then X-Real-IP, and
// finally the host part of RemoteAddr.
func clientAddress(r *http.Request) string {
	if forwarded := r.Header.Get(constant.RequestHeaderForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")

		return strings.TrimSpace(first)
	}

	if realIP := strings.TrimSpace(r.Header.Get(constant.RequestHeaderRealIP)); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
