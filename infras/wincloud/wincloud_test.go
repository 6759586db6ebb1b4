package wincloud_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"otabridge/config"
	"otabridge/infras/otel/mocks"
	"otabridge/infras/wincloud"
	"otabridge/shared/constant"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(endpoint string, maxAttempts int) *config.Config {
	cfg := &config.Config{}
	cfg.Wincloud.Endpoint = endpoint
	cfg.Wincloud.TimeoutSeconds = 1
	cfg.Wincloud.MaxAttempts = maxAttempts
	cfg.Wincloud.RetryWaitMS = 1

	return cfg
}

func TestClient_Post(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		maxAttempts  int
		wantStatus   int
		wantAttempts int
		wantBody     string
	}{
		{
			name:         "success on first attempt",
			statuses:     []int{http.StatusOK},
			maxAttempts:  3,
			wantStatus:   http.StatusOK,
			wantAttempts: 1,
			wantBody:     "reply-1",
		},
		{
			name:         "retries server errors until success",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusOK},
			maxAttempts:  3,
			wantStatus:   http.StatusOK,
			wantAttempts: 3,
			wantBody:     "reply-3",
		},
		{
			name:         "client errors are not retried",
			statuses:     []int{http.StatusBadRequest, http.StatusOK},
			maxAttempts:  3,
			wantStatus:   http.StatusBadRequest,
			wantAttempts: 1,
			wantBody:     "reply-1",
		},
		{
			name:         "server error returned after last attempt",
			statuses:     []int{http.StatusInternalServerError, http.StatusInternalServerError, http.StatusOK},
			maxAttempts:  2,
			wantStatus:   http.StatusInternalServerError,
			wantAttempts: 2,
			wantBody:     "reply-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				call := int(calls.Add(1))

				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, "<OTA_CancelRQ/>", string(body))
				assert.Equal(t, constant.ContentTypeXML, r.Header.Get(constant.RequestHeaderContentType))
				assert.Equal(t, "R-1", r.Header.Get(constant.RequestHeaderIdempotencyKey))

				w.WriteHeader(tt.statuses[call-1])
				_, _ = io.WriteString(w, "reply-"+string(rune('0'+call)))
			}))
			defer server.Close()

			client := wincloud.New(newConfig(server.URL, tt.maxAttempts), mocks.NewOtel())

			res, err := client.Post(context.Background(), "R-1", []byte("<OTA_CancelRQ/>"))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantAttempts, res.Attempts)
			assert.Equal(t, tt.wantBody, string(res.Body))
			assert.Equal(t, int32(tt.wantAttempts), calls.Load())
		})
	}
}

func TestClient_Post_Timeout(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(3 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	client := wincloud.New(newConfig(server.URL, 1), mocks.NewOtel())

	res, err := client.Post(context.Background(), "R-2", []byte("<OTA_HotelResNotifRQ/>"))

	require.Error(t, err)
	assert.ErrorIs(t, err, wincloud.ErrTimeout)
	assert.Equal(t, 1, res.Attempts)
}

func TestClient_Post_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := wincloud.New(newConfig(endpoint, 2), mocks.NewOtel())

	res, err := client.Post(context.Background(), "R-3", []byte("<OTA_CancelRQ/>"))

	require.Error(t, err)
	assert.ErrorIs(t, err, wincloud.ErrTransport)
	assert.Equal(t, 2, res.Attempts)
}
