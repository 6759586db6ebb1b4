package reservation_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	otelMocks "otabridge/infras/otel/mocks"
	auditLogMocks "otabridge/internal/domains/auditlog/mocks"
	auditLogDto "otabridge/internal/domains/auditlog/model/dto"
	"otabridge/internal/domains/reservation/mocks"
	"otabridge/internal/domains/reservation/model/dto"
	"otabridge/internal/handlers/reservation"
	"otabridge/shared/constant"
	gDto "otabridge/shared/dto"
	"otabridge/shared/failure"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const createBody = `{
	"hotel_code": "H1",
	"room_type_code": "DBL",
	"rate_plan_code": "BAR",
	"start_date": "2030-05-01",
	"end_date": "2030-05-03",
	"adults": 2,
	"rooms": 1,
	"guests": [{"given_name": "Ada", "surname": "Lovelace", "email": "ada@example.com"}],
	"currency_code": "eur",
	"total_amount": "360.00"
}`

type fixture struct {
	service  *mocks.MockReservationService
	auditLog *auditLogMocks.MockAuditLogService
	router   chi.Router
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		service:  mocks.NewMockReservationService(ctrl),
		auditLog: auditLogMocks.NewMockAuditLogService(ctrl),
		router:   chi.NewRouter(),
	}

	handler := reservation.New(f.service, f.auditLog, otelMocks.NewOtel())
	handler.Router(f.router)

	return f
}

func (f fixture) do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, httptest.NewRequest(method, target, body))

	return recorder
}

func TestCreateReservation(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req dto.CreateReservationRequest) (dto.CreateReservationResponse, error) {
				assert.Equal(t, "H1", req.HotelCode)
				assert.Equal(t, "eur", req.CurrencyCode)
				assert.Len(t, req.Guests, 1)

				return dto.CreateReservationResponse{ID: "res-1", Status: "Confirmed", RemoteIDs: map[string]string{"10": "WC-1"}}, nil
			})

		recorder := f.do(http.MethodPost, "/reservations/", strings.NewReader(createBody))

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"id":"res-1"`)
		assert.Contains(t, recorder.Body.String(), `"WC-1"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)

		recorder := f.do(http.MethodPost, "/reservations/", strings.NewReader(`{"hotel_code":`))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("remote rejection", func(t *testing.T) {
		f := newFixture(t)

		f.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(dto.CreateReservationResponse{}, failure.BadGateway("Rate plan closed"))

		recorder := f.do(http.MethodPost, "/reservations/", strings.NewReader(createBody))

		assert.Equal(t, http.StatusBadGateway, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Rate plan closed")
	})
}

func TestAmendReservation(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().Amend(gomock.Any(), "res-1", gomock.Any()).
		Return(dto.ReservationResponse{}, failure.Conflict("reservation res-1 is Cancelled"))

	recorder := f.do(http.MethodPatch, "/reservations/res-1", strings.NewReader(createBody))

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestCancelReservation(t *testing.T) {
	tests := []struct {
		name       string
		body       io.Reader
		wantReason string
	}{
		{name: "without body", body: nil},
		{name: "with reason", body: strings.NewReader(`{"reason":"guest request"}`), wantReason: "guest request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.service.EXPECT().Cancel(gomock.Any(), "res-1", dto.CancelReservationRequest{Reason: tt.wantReason}).
				Return(dto.ReservationResponse{ID: "res-1", Status: "Cancelled"}, nil)

			recorder := f.do(http.MethodPost, "/reservations/res-1/cancel", tt.body)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"status":"Cancelled"`)
		})
	}
}

func TestGetReservationByID_NotFound(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().Get(gomock.Any(), "missing").
		Return(dto.ReservationResponse{}, failure.NotFound("reservation missing not found"))

	recorder := f.do(http.MethodGet, "/reservations/missing", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetAuditLogs(t *testing.T) {
	f := newFixture(t)

	f.auditLog.EXPECT().ListByReservation(gomock.Any(), "res-1", gomock.Any()).DoAndReturn(
		func(_ any, _ string, params gDto.QueryParams) (auditLogDto.GetAuditLogsResponse, error) {
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, constant.DefaultValueLimit, params.Limit)

			return auditLogDto.GetAuditLogsResponse{
				AuditLogs: []auditLogDto.AuditLogResponse{{ID: "log-1", Process: "Reservation", Status: "Success"}},
				TotalPage: 2,
				TotalData: 11,
			}, nil
		})

	recorder := f.do(http.MethodGet, "/reservations/res-1/audit-logs?page=2", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"log-1"`)
}

func TestGetAuditLogArchive(t *testing.T) {
	t.Run("archived", func(t *testing.T) {
		f := newFixture(t)

		f.auditLog.EXPECT().Archive(gomock.Any(), "res-1", "log-1").Return([]byte(`{"audit_log_id":"log-1"}`), nil)

		recorder := f.do(http.MethodGet, "/reservations/res-1/audit-logs/log-1/archive", nil)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, constant.ContentTypeJSON, recorder.Header().Get(constant.RequestHeaderContentType))
		assert.JSONEq(t, `{"audit_log_id":"log-1"}`, recorder.Body.String())
	})

	t.Run("not archived", func(t *testing.T) {
		f := newFixture(t)

		f.auditLog.EXPECT().Archive(gomock.Any(), "res-1", "log-2").Return(nil, failure.NotFound("audit log log-2 has no archive"))

		recorder := f.do(http.MethodGet, "/reservations/res-1/audit-logs/log-2/archive", nil)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
