package wincloud

//go:generate go run go.uber.org/mock/mockgen -source=./wincloud.go -destination=./mocks/wincloud_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"otabridge/config"
	"otabridge/infras/otel"
	"otabridge/shared/constant"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultRetryWait   = 200 * time.Millisecond
	maxRetryWait       = 5 * time.Second
	maxResponseBytes   = 4 << 20 // 4 MB

	otelAttrEndpoint = "endpoint"
	otelAttrAttempts = "attempts"
	otelAttrStatus   = "http_status"
)

var (
	ErrTimeout   = errors.New("remote call timed out")
	ErrTransport = errors.New("remote call failed")

	errServerStatus = errors.New("remote server error")
)

// Response is the raw outcome of a Post. Attempts counts every HTTP round
// trip made, including retried ones.
type Response struct {
	Body       []byte
	StatusCode int
	Attempts   int
}

type Client interface {
	Post(ctx context.Context, idempotencyKey string, body []byte) (Response, error)
}

type clientImpl struct {
	http        *http.Client
	endpoint    string
	timeout     time.Duration
	maxAttempts int
	retryWait   time.Duration
	otel        otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Client {
	timeout := time.Duration(cfg.Wincloud.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxAttempts := cfg.Wincloud.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	retryWait := time.Duration(cfg.Wincloud.RetryWaitMS) * time.Millisecond
	if retryWait <= 0 {
		retryWait = defaultRetryWait
	}

	return &clientImpl{
		http:        &http.Client{},
		endpoint:    cfg.Wincloud.Endpoint,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		retryWait:   retryWait,
		otel:        otel,
	}
}

// Post sends body to the remote endpoint. Network failures and 5xx answers
// are retried with exponential backoff up to the configured attempt count;
// any other status is returned as is for the caller to interpret. When the
// last attempt still ends in 5xx the response is returned without error.
func (c *clientImpl) Post(ctx context.Context, idempotencyKey string, body []byte) (res Response, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".wincloud.Post")
	defer scope.EndWith(&err)

	attempts := 0

	operation := func() (Response, error) {
		attempts++

		out, err := c.send(ctx, idempotencyKey, body)
		out.Attempts = attempts

		if err != nil {
			log.Warn().Err(err).Int("attempt", attempts).Str("idempotencyKey", idempotencyKey).Msg("wincloud request failed")

			return out, err
		}

		if out.StatusCode >= http.StatusInternalServerError {
			log.Warn().Int("status", out.StatusCode).Int("attempt", attempts).Str("idempotencyKey", idempotencyKey).Msg("wincloud answered with server error")

			return out, fmt.Errorf("%w: status %d", errServerStatus, out.StatusCode)
		}

		return out, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryWait
	policy.MaxInterval = maxRetryWait

	res, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(c.maxAttempts)),
	)
	res.Attempts = attempts

	scope.SetAttributes(map[string]any{
		otelAttrEndpoint: c.endpoint,
		otelAttrAttempts: attempts,
		otelAttrStatus:   res.StatusCode,
	})

	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, errServerStatus):
		return res, nil
	case isTimeout(err):
		log.Error().Err(err).Int("attempts", attempts).Msg("wincloud request timed out")

		return res, fmt.Errorf("%w after %d attempt(s): %w", ErrTimeout, attempts, err)
	default:
		log.Error().Err(err).Int("attempts", attempts).Msg("wincloud request failed")

		return res, fmt.Errorf("%w after %d attempt(s): %w", ErrTransport, attempts, err)
	}
}

func (c *clientImpl) send(ctx context.Context, idempotencyKey string, body []byte) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}

	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeXML)
	req.Header.Set(constant.RequestHeaderIdempotencyKey, idempotencyKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("failed to read response: %w", err)
	}

	return Response{Body: payload, StatusCode: resp.StatusCode}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
