package dto

import (
	"otabridge/internal/domains/reservation/model"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	gDto "otabridge/shared/dto"
	"otabridge/shared/timezone"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type GuestRequest struct {
	GivenName string `json:"given_name" validate:"required,max=64"`
	Surname   string `json:"surname" validate:"required,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Age       *int   `json:"age,omitempty" validate:"omitempty,gte=0,lte=120,excluded_with=BirthDate"`
	BirthDate string `json:"birth_date,omitempty" validate:"omitempty,calendardate"`
}

// AgeCategory derives the guest's category on the arrival date. A guest
// without an age or birth date counts as an adult.
func (g GuestRequest) AgeCategory(arrival time.Time) (model.AgeCategory, error) {
	switch {
	case g.Age != nil:
		return model.AgeCategoryOf(*g.Age), nil
	case g.BirthDate != constant.Empty:
		birthDate, err := timezone.ParseDate(g.BirthDate)
		if err != nil || birthDate.After(arrival) {
			return "", failure.BadRequestFromString("birth_date must be a YYYY-MM-DD date before start_date") // nolint:wrapcheck
		}

		return model.AgeCategoryOf(model.AgeOn(birthDate, arrival)), nil
	default:
		return model.AgeCategoryAdult, nil
	}
}

// StayRequest holds the fields both create and amend send in full.
type StayRequest struct {
	RoomTypeCode string         `json:"room_type_code" validate:"required,max=32"`
	RatePlanCode string         `json:"rate_plan_code" validate:"required,max=32"`
	StartDate    string         `json:"start_date" validate:"required,calendardate"`
	EndDate      string         `json:"end_date" validate:"required,calendardate"`
	Adults       int            `json:"adults" validate:"gte=1"`
	Children     int            `json:"children" validate:"gte=0"`
	Rooms        int            `json:"rooms" validate:"gte=1"`
	Guests       []GuestRequest `json:"guests" validate:"required,min=1,dive"`
	CurrencyCode string         `json:"currency_code" validate:"required,iso4217"`
	TotalAmount  string         `json:"total_amount" validate:"required,positiveamount"`
}

type CreateReservationRequest struct {
	HotelCode string `json:"hotel_code" validate:"required,max=32"`
	StayRequest
	ConversionToken string `json:"conversion_token,omitempty"`
}

type AmendReservationRequest struct {
	StayRequest
}

type CancelReservationRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

// Normalize upper-cases codes so validation and storage agree.
func (r *StayRequest) Normalize() {
	r.CurrencyCode = strings.ToUpper(strings.TrimSpace(r.CurrencyCode))
}

// Apply copies the stay onto reservation. Arrival must not be before today
// and departure must follow arrival.
func (r StayRequest) Apply(reservation *model.Reservation, today time.Time) error {
	start, err := timezone.ParseDate(r.StartDate)
	if err != nil {
		return failure.BadRequestFromString("start_date must be a YYYY-MM-DD date") // nolint:wrapcheck
	}

	end, err := timezone.ParseDate(r.EndDate)
	if err != nil {
		return failure.BadRequestFromString("end_date must be a YYYY-MM-DD date") // nolint:wrapcheck
	}

	if start.Before(today) {
		return failure.BadRequestFromString("start_date must not be in the past") // nolint:wrapcheck
	}

	if !end.After(start) {
		return failure.BadRequestFromString("end_date must be after start_date") // nolint:wrapcheck
	}

	total, err := decimal.NewFromString(r.TotalAmount)
	if err != nil || !total.IsPositive() {
		return failure.BadRequestFromString("total_amount must be a positive amount") // nolint:wrapcheck
	}

	guests := make(model.Guests, len(r.Guests))
	for i, guest := range r.Guests {
		category, err := guest.AgeCategory(start)
		if err != nil {
			return err
		}

		if i == 0 && category != model.AgeCategoryAdult {
			return failure.BadRequestFromString("the lead guest must be an adult") // nolint:wrapcheck
		}

		guests[i] = model.Guest{
			GivenName:         strings.TrimSpace(guest.GivenName),
			Surname:           strings.TrimSpace(guest.Surname),
			Email:             strings.TrimSpace(guest.Email),
			Phone:             strings.TrimSpace(guest.Phone),
			AgeCategory:       category,
			AgeQualifyingCode: category.QualifyingCode(),
		}
	}

	reservation.RoomTypeCode = r.RoomTypeCode
	reservation.RatePlanCode = r.RatePlanCode
	reservation.StartDate = start
	reservation.EndDate = end
	reservation.Adults = r.Adults
	reservation.Children = r.Children
	reservation.Rooms = r.Rooms
	reservation.Guests = guests
	reservation.CurrencyCode = r.CurrencyCode
	reservation.TotalAmount = total

	return nil
}

// ToModel builds a Pending reservation with the given id.
func (r CreateReservationRequest) ToModel(id string, today time.Time) (model.Reservation, error) {
	reservation := model.Reservation{
		ID:        id,
		HotelCode: r.HotelCode,
		Status:    model.StatusPending,
		RemoteIDs: model.RemoteIDs{},
	}

	if err := r.StayRequest.Apply(&reservation, today); err != nil {
		return model.Reservation{}, err
	}

	return reservation, nil
}

type ReservationResponse struct {
	ID           string            `json:"id"`
	HotelCode    string            `json:"hotel_code"`
	RoomTypeCode string            `json:"room_type_code"`
	RatePlanCode string            `json:"rate_plan_code"`
	StartDate    string            `json:"start_date"`
	EndDate      string            `json:"end_date"`
	Adults       int               `json:"adults"`
	Children     int               `json:"children"`
	Rooms        int               `json:"rooms"`
	Guests       []model.Guest     `json:"guests"`
	CurrencyCode string            `json:"currency_code"`
	TotalAmount  string            `json:"total_amount"`
	Status       string            `json:"status"`
	RemoteIDs    map[string]string `json:"remote_ids"`
	Version      int               `json:"version"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.HotelCode = model.HotelCode
	r.RoomTypeCode = model.RoomTypeCode
	r.RatePlanCode = model.RatePlanCode
	r.StartDate = timezone.FormatDate(model.StartDate)
	r.EndDate = timezone.FormatDate(model.EndDate)
	r.Adults = model.Adults
	r.Children = model.Children
	r.Rooms = model.Rooms
	r.Guests = model.Guests
	r.CurrencyCode = model.CurrencyCode
	r.TotalAmount = model.TotalAmount.StringFixed(constant.DisplayDecimalPlaces)
	r.Status = string(model.Status)
	r.RemoteIDs = model.RemoteIDs
	r.Version = model.Version
	r.Metadata.FromModel(model.Metadata)

	if r.RemoteIDs == nil {
		r.RemoteIDs = map[string]string{}
	}
}

type CreateReservationResponse struct {
	ID        string            `json:"id"`
	Status    string            `json:"status"`
	RemoteIDs map[string]string `json:"remote_ids"`
}
