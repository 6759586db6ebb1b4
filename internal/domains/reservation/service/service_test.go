package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"otabridge/config"
	kafkaMocks "otabridge/infras/kafka/mocks"
	"otabridge/infras/otel/mocks"
	"otabridge/infras/wincloud"
	wincloudMocks "otabridge/infras/wincloud/mocks"
	auditMocks "otabridge/internal/domains/auditlog/mocks"
	auditModel "otabridge/internal/domains/auditlog/model"
	conversionMocks "otabridge/internal/domains/conversion/mocks"
	reservationMocks "otabridge/internal/domains/reservation/mocks"
	"otabridge/internal/domains/reservation/model"
	"otabridge/internal/domains/reservation/model/dto"
	"otabridge/internal/domains/reservation/service"
	cacheMocks "otabridge/shared/cache/mocks"
	gDto "otabridge/shared/dto"
	"otabridge/shared/failure"
	"otabridge/shared/timezone"
)

const (
	createSuccess = `<?xml version="1.0" encoding="UTF-8"?>
<OTA_HotelResNotifRS xmlns="http://www.opentravel.org/OTA/2003/05" EchoToken="e" TimeStamp="2030-01-01T00:00:00" Version="1.0">
  <Success/>
  <HotelReservations>
    <HotelReservation>
      <UniqueID Type="14" ID="ignored"/>
      <ResGlobalInfo>
        <HotelReservationIDs>
          <HotelReservationID ResID_Type="Wincloud" ResID_Value="W-9"/>
        </HotelReservationIDs>
      </ResGlobalInfo>
    </HotelReservation>
  </HotelReservations>
</OTA_HotelResNotifRS>`
	modifySuccess = `<?xml version="1.0"?><OTA_HotelResModifyNotifRS><Success/></OTA_HotelResModifyNotifRS>`
	cancelSuccess = `<?xml version="1.0"?><OTA_CancelRS Status="Cancelled"><Success/><UniqueID Type="14" ID="R-1"/><UniqueID Type="15" ID="CXL-7"/></OTA_CancelRS>`
	rejected      = `<?xml version="1.0"?><OTA_HotelResNotifRS><Errors><Error Type="3" ShortText="Rate plan closed"/></Errors></OTA_HotelResNotifRS>`
)

type fixture struct {
	repo       *reservationMocks.MockReservation
	audit      *auditMocks.MockAuditLogService
	conversion *conversionMocks.MockConversion
	client     *wincloudMocks.MockClient
	svc        service.Reservation
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:       reservationMocks.NewMockReservation(ctrl),
		audit:      auditMocks.NewMockAuditLogService(ctrl),
		conversion: conversionMocks.NewMockConversion(ctrl),
		client:     wincloudMocks.NewMockClient(ctrl),
	}

	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockKafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Wincloud.Requestor.ID = "bridge"
	cfg.Wincloud.Requestor.Context = "WINCLOUD"
	cfg.Wincloud.Requestor.MessagePassword = "secret"

	f.svc = service.New(f.repo, f.audit, f.conversion, f.client, mockKafka, cfg, mockCache, mocks.NewOtel())

	return f
}

func daysFromToday(days int) string {
	return timezone.FormatDate(timezone.Today().AddDate(0, 0, days))
}

func stayRequest() dto.StayRequest {
	return dto.StayRequest{
		RoomTypeCode: "DBL",
		RatePlanCode: "BAR",
		StartDate:    daysFromToday(10),
		EndDate:      daysFromToday(12),
		Adults:       2,
		Children:     1,
		Rooms:        1,
		Guests: []dto.GuestRequest{
			{GivenName: "Ada", Surname: "Lovelace", Email: "ada@example.com", Phone: "+44 20 0000"},
		},
		CurrencyCode: "eur",
		TotalAmount:  "400.00",
	}
}

func createRequest() dto.CreateReservationRequest {
	return dto.CreateReservationRequest{HotelCode: "H1", StayRequest: stayRequest()}
}

func stored(status model.Status) model.Reservation {
	return model.Reservation{
		ID:           "R-1",
		HotelCode:    "H1",
		RatePlanCode: "BAR",
		RoomTypeCode: "DBL",
		StartDate:    timezone.Today().AddDate(0, 0, 10),
		EndDate:      timezone.Today().AddDate(0, 0, 12),
		Adults:       2,
		Rooms:        1,
		Guests:       model.Guests{{GivenName: "Ada", Surname: "Lovelace", Email: "ada@example.com"}},
		CurrencyCode: "EUR",
		TotalAmount:  decimal.NewFromInt(400),
		Status:       status,
		RemoteIDs:    model.RemoteIDs{"Wincloud": "W-9"},
		Version:      3,
	}
}

func expectClaim(f fixture, current model.Reservation) {
	f.repo.EXPECT().Claim(gomock.Any(), current, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ model.Reservation, now, until time.Time) (bool, error) {
			return until.After(now), nil
		})
}

func intPtr(v int) *int {
	return &v
}

func respond(body string) wincloud.Response {
	return wincloud.Response{Body: []byte(body), StatusCode: http.StatusOK, Attempts: 1}
}

func expectAudit(t *testing.T, f fixture, process string) *auditModel.AuditLog {
	var recorded auditModel.AuditLog

	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(1).
		DoAndReturn(func(_ context.Context, entry auditModel.AuditLog) (auditModel.AuditLog, error) {
			assert.Equal(t, process, entry.Process)

			recorded = entry

			return entry, nil
		})

	return &recorded
}

func TestReservationService_Create(t *testing.T) {
	f := newFixture(t)

	f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, body []byte) (wincloud.Response, error) {
			assert.NotEmpty(t, key)
			assert.Contains(t, string(body), `ID="`+key+`"`)

			return respond(createSuccess), nil
		})

	audit := expectAudit(t, f, "Reservation")

	var inserted model.Reservation
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r model.Reservation) error {
		inserted = r

		return nil
	})

	res, err := f.svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "Confirmed", res.Status)
	assert.Equal(t, map[string]string{"Wincloud": "W-9"}, res.RemoteIDs)

	assert.Equal(t, res.ID, inserted.ID)
	assert.Equal(t, model.StatusConfirmed, inserted.Status)
	assert.Equal(t, 1, inserted.Version)
	assert.Equal(t, "EUR", inserted.CurrencyCode)
	assert.Equal(t, "api", inserted.CreatedBy)

	assert.Equal(t, res.ID, audit.ReservationID)
	assert.Equal(t, "Reservation", audit.Process)
	assert.Equal(t, auditModel.StatusSuccess, audit.Status)
	assert.NotEmpty(t, audit.XMLSent)
	assert.Equal(t, 1, audit.Attempts)
	assert.NotContains(t, string(audit.Input), "conversion_token")
}

func TestReservationService_Create_RemoteFailures(t *testing.T) {
	tests := []struct {
		name     string
		response wincloud.Response
		postErr  error
		kind     string
		message  string
		code     int
	}{
		{name: "rejected", response: respond(rejected), kind: service.KindRemote, message: "Rate plan closed", code: http.StatusBadGateway},
		{name: "non-xml body", response: respond("<html>502</html>"), kind: service.KindNonXML, code: http.StatusBadGateway},
		{name: "unknown shape", response: respond(`<?xml version="1.0"?><OTA_HotelResNotifRS/>`), kind: service.KindUnknown, message: "Unknown error in API response", code: http.StatusBadGateway},
		{name: "timeout", response: wincloud.Response{Attempts: 1}, postErr: wincloud.ErrTimeout, kind: service.KindTimeout, code: http.StatusGatewayTimeout},
		{name: "transport", response: wincloud.Response{Attempts: 3}, postErr: wincloud.ErrTransport, kind: service.KindTransport, code: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.response, tt.postErr)
			audit := expectAudit(t, f, "Reservation")

			_, err := f.svc.Create(context.Background(), createRequest())

			var remoteErr *service.RemoteError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.kind, remoteErr.Kind)
			assert.Equal(t, tt.code, failure.GetCode(err))

			if tt.message != "" {
				assert.Equal(t, tt.message, err.Error())
			}

			assert.Equal(t, auditModel.StatusFailure, audit.Status)
			assert.Equal(t, remoteErr.Message, audit.ErrorMessage)
			assert.NotEmpty(t, audit.XMLSent)
			assert.Equal(t, tt.response.Attempts, audit.Attempts)
		})
	}
}

func TestReservationService_Create_GuestAgeCodes(t *testing.T) {
	f := newFixture(t)

	req := createRequest()
	req.Guests = append(req.Guests,
		dto.GuestRequest{GivenName: "Tom", Surname: "Lovelace", Email: "tom@example.com", Age: intPtr(9)},
		dto.GuestRequest{GivenName: "Eve", Surname: "Lovelace", Email: "eve@example.com", BirthDate: timezone.FormatDate(timezone.Today().AddDate(-1, 0, 0))},
		dto.GuestRequest{GivenName: "Sam", Surname: "Lovelace", Email: "sam@example.com", Age: intPtr(18)},
	)

	f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(respond(createSuccess), nil)
	audit := expectAudit(t, f, "Reservation")

	var inserted model.Reservation
	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r model.Reservation) error {
		inserted = r

		return nil
	})

	_, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, audit.XMLSent, `ResGuestRPH="1" AgeQualifyingCode="10"`)
	assert.Contains(t, audit.XMLSent, `ResGuestRPH="2" AgeQualifyingCode="8"`)
	assert.Contains(t, audit.XMLSent, `ResGuestRPH="3" AgeQualifyingCode="7"`)
	assert.Contains(t, audit.XMLSent, `ResGuestRPH="4" AgeQualifyingCode="10"`)
	assert.NotContains(t, audit.XMLSent, `AgeQualifyingCode=""`)

	require.Len(t, inserted.Guests, 4)
	assert.Equal(t, []model.AgeCategory{model.AgeCategoryAdult, model.AgeCategoryChild, model.AgeCategoryInfant, model.AgeCategoryAdult},
		[]model.AgeCategory{inserted.Guests[0].AgeCategory, inserted.Guests[1].AgeCategory, inserted.Guests[2].AgeCategory, inserted.Guests[3].AgeCategory})
	assert.Equal(t, "7", inserted.Guests[2].AgeQualifyingCode)
}

// The caller disconnects while the remote call is in flight. The remote side
// has already committed, so the audit entry and the local row still land.
func TestReservationService_CallerGoneAfterRemoteCommit(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		f := newFixture(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, string, []byte) (wincloud.Response, error) {
				cancel()

				return respond(createSuccess), nil
			})
		f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(c context.Context, entry auditModel.AuditLog) (auditModel.AuditLog, error) {
				assert.NoError(t, c.Err())

				return entry, nil
			})
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(c context.Context, _ model.Reservation) error {
				assert.NoError(t, c.Err())

				return nil
			})

		res, err := f.svc.Create(ctx, createRequest())
		require.NoError(t, err)
		assert.Equal(t, "Confirmed", res.Status)
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture(t)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		current := stored(model.StatusConfirmed)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		expectClaim(f, current)
		f.client.EXPECT().Post(gomock.Any(), "R-1", gomock.Any()).
			DoAndReturn(func(context.Context, string, []byte) (wincloud.Response, error) {
				cancel()

				return respond(cancelSuccess), nil
			})
		f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(c context.Context, entry auditModel.AuditLog) (auditModel.AuditLog, error) {
				assert.NoError(t, c.Err())

				return entry, nil
			})
		f.repo.EXPECT().Transition(gomock.Any(), current, gomock.Any()).
			DoAndReturn(func(c context.Context, _ model.Reservation, _ map[string]any) (bool, error) {
				assert.NoError(t, c.Err())

				return true, nil
			})

		res, err := f.svc.Cancel(ctx, "R-1", dto.CancelReservationRequest{Reason: "guest request"})
		require.NoError(t, err)
		assert.Equal(t, "Cancelled", res.Status)
	})
}

func TestReservationService_Create_RejectedBeforeSending(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CreateReservationRequest)
	}{
		{name: "missing guest surname", mutate: func(r *dto.CreateReservationRequest) { r.Guests[0].Surname = "" }},
		{name: "no guests", mutate: func(r *dto.CreateReservationRequest) { r.Guests = nil }},
		{name: "missing hotel", mutate: func(r *dto.CreateReservationRequest) { r.HotelCode = "" }},
		{name: "missing room type", mutate: func(r *dto.CreateReservationRequest) { r.RoomTypeCode = "" }},
		{name: "past arrival", mutate: func(r *dto.CreateReservationRequest) { r.StartDate = daysFromToday(-1) }},
		{name: "inverted dates", mutate: func(r *dto.CreateReservationRequest) { r.EndDate = daysFromToday(9) }},
		{name: "zero amount", mutate: func(r *dto.CreateReservationRequest) { r.TotalAmount = "0" }},
		{name: "negative amount", mutate: func(r *dto.CreateReservationRequest) { r.TotalAmount = "-5" }},
		{name: "bad email", mutate: func(r *dto.CreateReservationRequest) { r.Guests[0].Email = "nope" }},
		{name: "child lead guest", mutate: func(r *dto.CreateReservationRequest) { r.Guests[0].Age = intPtr(9) }},
		{name: "age and birth date together", mutate: func(r *dto.CreateReservationRequest) {
			r.Guests[0].Age = intPtr(30)
			r.Guests[0].BirthDate = "1990-01-01"
		}},
		{name: "birth date after arrival", mutate: func(r *dto.CreateReservationRequest) { r.Guests[0].BirthDate = daysFromToday(30) }},
		{name: "negative age", mutate: func(r *dto.CreateReservationRequest) { r.Guests[0].Age = intPtr(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			req := createRequest()
			tt.mutate(&req)

			_, err := f.svc.Create(context.Background(), req)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestReservationService_Create_ConversionToken(t *testing.T) {
	f := newFixture(t)

	req := createRequest()
	req.ConversionToken = "token"

	f.conversion.EXPECT().Verify(gomock.Any(), "token", gomock.Any(), "EUR").
		DoAndReturn(func(_ context.Context, _ string, amount decimal.Decimal, _ string) error {
			assert.True(t, amount.Equal(decimal.NewFromInt(400)))

			return failure.BadRequestFromString("conversion token has expired")
		})

	_, err := f.svc.Create(context.Background(), req)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.Equal(t, "conversion token has expired", err.Error())
}

func TestReservationService_CancelledIsTerminal(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusCancelled), nil).Times(2)

	_, err := f.svc.Amend(context.Background(), "R-1", dto.AmendReservationRequest{StayRequest: stayRequest()})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	_, err = f.svc.Cancel(context.Background(), "R-1", dto.CancelReservationRequest{Reason: "again"})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestReservationService_Amend(t *testing.T) {
	f := newFixture(t)

	current := stored(model.StatusConfirmed)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
	expectClaim(f, current)
	f.client.EXPECT().Post(gomock.Any(), "R-1", gomock.Any()).Return(respond(modifySuccess), nil)
	audit := expectAudit(t, f, "Amend Reservation")

	f.repo.EXPECT().Transition(gomock.Any(), current, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ model.Reservation, mod map[string]any) (bool, error) {
			assert.Equal(t, "Modified", mod[model.FieldStatus])
			assert.Equal(t, 4, mod[model.FieldVersion])
			assert.Equal(t, 1, mod[model.FieldChildren])
			assert.Contains(t, mod, model.FieldClaimedUntil)
			assert.Nil(t, mod[model.FieldClaimedUntil])

			return true, nil
		})

	res, err := f.svc.Amend(context.Background(), "R-1", dto.AmendReservationRequest{StayRequest: stayRequest()})
	require.NoError(t, err)
	assert.Equal(t, "Modified", res.Status)
	assert.Equal(t, 4, res.Version)
	assert.Equal(t, "W-9", res.RemoteIDs["Wincloud"])
	assert.Contains(t, audit.XMLSent, "OTA_HotelResModifyNotifRQ")
}

func TestReservationService_Amend_LostRace(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusModified), nil)
	expectClaim(f, stored(model.StatusModified))
	f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(respond(modifySuccess), nil)
	expectAudit(t, f, "Amend Reservation")
	f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := f.svc.Amend(context.Background(), "R-1", dto.AmendReservationRequest{StayRequest: stayRequest()})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestReservationService_ClaimedElsewhere(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusConfirmed), nil).Times(2)
	f.repo.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)

	_, err := f.svc.Amend(context.Background(), "R-1", dto.AmendReservationRequest{StayRequest: stayRequest()})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	_, err = f.svc.Cancel(context.Background(), "R-1", dto.CancelReservationRequest{})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

// A second cancel arrives while the first is still waiting on the remote
// system. Only the first one is sent.
func TestReservationService_OverlappingCancels(t *testing.T) {
	f := newFixture(t)

	var claimedUntil *time.Time

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusConfirmed), nil).Times(2)
	f.repo.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ model.Reservation, now, until time.Time) (bool, error) {
			if claimedUntil != nil && claimedUntil.After(now) {
				return false, nil
			}

			claimedUntil = &until

			return true, nil
		}).Times(2)

	f.client.EXPECT().Post(gomock.Any(), "R-1", gomock.Any()).Times(1).
		DoAndReturn(func(context.Context, string, []byte) (wincloud.Response, error) {
			_, err := f.svc.Cancel(context.Background(), "R-1", dto.CancelReservationRequest{Reason: "second"})
			assert.Equal(t, http.StatusConflict, failure.GetCode(err))

			return respond(cancelSuccess), nil
		})

	audit := expectAudit(t, f, "Cancellation")
	f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	res, err := f.svc.Cancel(context.Background(), "R-1", dto.CancelReservationRequest{Reason: "first"})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", res.Status)
	assert.Contains(t, audit.XMLSent, "first")
}

func TestReservationService_Cancel(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusModified), nil)
	expectClaim(f, stored(model.StatusModified))
	f.client.EXPECT().Post(gomock.Any(), "R-1", gomock.Any()).Return(respond(cancelSuccess), nil)
	audit := expectAudit(t, f, "Cancellation")
	f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	res, err := f.svc.Cancel(context.Background(), "R-1", dto.CancelReservationRequest{Reason: "guest request"})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", res.Status)
	assert.Equal(t, "CXL-7", res.RemoteIDs["15"])
	assert.NotContains(t, res.RemoteIDs, "14")
	assert.Contains(t, audit.XMLSent, "guest request")
}

func TestReservationService_Cancel_RemoteFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored(model.StatusConfirmed), nil)
	expectClaim(f, stored(model.StatusConfirmed))
	f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(respond(rejected), nil)
	audit := expectAudit(t, f, "Cancellation")
	f.repo.EXPECT().Release(gomock.Any(), stored(model.StatusConfirmed)).Return(nil)

	_, err := f.svc.Cancel(context.Background(), "R-1", dto.CancelReservationRequest{})
	assert.Equal(t, "Rate plan closed", err.Error())
	assert.Equal(t, "Rate plan closed", audit.ErrorMessage)
}

func TestReservationService_NotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Reservation{}, nil).Times(3)

	_, err := f.svc.Get(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	_, err = f.svc.Amend(context.Background(), "missing", dto.AmendReservationRequest{StayRequest: stayRequest()})
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	_, err = f.svc.Cancel(context.Background(), "missing", dto.CancelReservationRequest{})
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

// The store below tracks one reservation across calls so the whole
// lifecycle runs against the same row.
func TestReservationService_Lifecycle(t *testing.T) {
	f := newFixture(t)

	var (
		row     model.Reservation
		entries []auditModel.AuditLog
	)

	f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r model.Reservation) error {
		row = r

		return nil
	})
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, gDto.FilterGroup, ...string) (model.Reservation, error) {
		return row, nil
	}).AnyTimes()
	f.repo.EXPECT().Transition(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, current model.Reservation, mod map[string]any) (bool, error) {
			if current.Status != row.Status || current.Version != row.Version {
				return false, nil
			}

			row.Status = model.Status(mod[model.FieldStatus].(string))
			row.Version = mod[model.FieldVersion].(int)
			row.ClaimedUntil = nil

			return true, nil
		}).AnyTimes()
	f.repo.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, current model.Reservation, now, until time.Time) (bool, error) {
			if current.Status != row.Status || current.Version != row.Version {
				return false, nil
			}

			if row.ClaimedUntil != nil && row.ClaimedUntil.After(now) {
				return false, nil
			}

			row.ClaimedUntil = &until

			return true, nil
		}).AnyTimes()
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry auditModel.AuditLog) (auditModel.AuditLog, error) {
			entries = append(entries, entry)

			return entry, nil
		}).AnyTimes()

	gomock.InOrder(
		f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(respond(createSuccess), nil),
		f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(respond(modifySuccess), nil),
		f.client.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(respond(cancelSuccess), nil),
	)

	created, err := f.svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = f.svc.Amend(context.Background(), created.ID, dto.AmendReservationRequest{StayRequest: stayRequest()})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), created.ID, dto.CancelReservationRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, row.Status)
	assert.Equal(t, 3, row.Version)
	assert.Nil(t, row.ClaimedUntil)

	_, err = f.svc.Amend(context.Background(), created.ID, dto.AmendReservationRequest{StayRequest: stayRequest()})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	_, err = f.svc.Cancel(context.Background(), created.ID, dto.CancelReservationRequest{})
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	require.Len(t, entries, 3)
	assert.Equal(t, []string{"Reservation", "Amend Reservation", "Cancellation"},
		[]string{entries[0].Process, entries[1].Process, entries[2].Process})

	for _, entry := range entries {
		assert.Equal(t, auditModel.StatusSuccess, entry.Status)
		assert.NotEmpty(t, entry.XMLSent)
	}
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to model.Status
		allowed  bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusModified, false},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusModified, true},
		{model.StatusConfirmed, model.StatusConfirmed, false},
		{model.StatusModified, model.StatusModified, true},
		{model.StatusModified, model.StatusCancelled, true},
		{model.StatusCancelled, model.StatusModified, false},
		{model.StatusCancelled, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}
