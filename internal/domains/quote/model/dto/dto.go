package dto

import (
	"otabridge/internal/domains/quote/model"
	"otabridge/shared/constant"
	"otabridge/shared/failure"
	"otabridge/shared/timezone"
)

type QuoteRequest struct {
	HotelCode    string `json:"hotel_code" validate:"required"`
	RoomTypeCode string `json:"room_type_code" validate:"required"`
	StartDate    string `json:"start_date" validate:"required,calendardate"`
	EndDate      string `json:"end_date" validate:"required,calendardate"`
	Adults       int    `json:"adults" validate:"gte=1"`
	Children     int    `json:"children" validate:"gte=0"`
	Rooms        int    `json:"rooms" validate:"gte=1"`
}

// ToStay parses the request dates. The request must already be validated.
func (r QuoteRequest) ToStay() (model.Stay, error) {
	start, err := timezone.ParseDate(r.StartDate)
	if err != nil {
		return model.Stay{}, failure.BadRequestFromString("start_date must be a YYYY-MM-DD date")
	}

	end, err := timezone.ParseDate(r.EndDate)
	if err != nil {
		return model.Stay{}, failure.BadRequestFromString("end_date must be a YYYY-MM-DD date")
	}

	stay := model.Stay{
		HotelCode:    r.HotelCode,
		RoomTypeCode: r.RoomTypeCode,
		Start:        start,
		End:          end,
		Adults:       r.Adults,
		Children:     r.Children,
		Rooms:        r.Rooms,
	}

	return stay, stay.Validate()
}

type NightResponse struct {
	Date                string `json:"date"`
	Weekday             string `json:"weekday"`
	RatePlanCode        string `json:"rate_plan_code"`
	BaseRate            string `json:"base_rate"`
	BaseGuests          int    `json:"base_guests"`
	AdditionalAdults    int    `json:"additional_adults"`
	AdditionalAdultRate string `json:"additional_adult_charge"`
	AdditionalChildRate string `json:"additional_child_charge"`
	PerRoom             string `json:"per_room"`
	Total               string `json:"total"`
	CurrencyCode        string `json:"currency_code"`
}

type QuoteResponse struct {
	HotelCode    string          `json:"hotel_code"`
	RoomTypeCode string          `json:"room_type_code"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Adults       int             `json:"adults"`
	Children     int             `json:"children"`
	Rooms        int             `json:"rooms"`
	Available    int             `json:"available"`
	CurrencyCode string          `json:"currency_code"`
	Nights       []NightResponse `json:"nights"`
	Total        string          `json:"total"`
	TotalDisplay string          `json:"total_display"`
}

func (r *QuoteResponse) FromModel(quote model.Quote) {
	r.HotelCode = quote.HotelCode
	r.RoomTypeCode = quote.RoomTypeCode
	r.StartDate = timezone.FormatDate(quote.Start)
	r.EndDate = timezone.FormatDate(quote.End)
	r.Adults = quote.Adults
	r.Children = quote.Children
	r.Rooms = quote.Rooms
	r.Available = quote.Available
	r.CurrencyCode = quote.CurrencyCode
	r.Total = quote.Total.String()
	r.TotalDisplay = quote.Total.StringFixed(constant.DisplayDecimalPlaces)

	r.Nights = make([]NightResponse, len(quote.Nights))
	for i, night := range quote.Nights {
		r.Nights[i] = NightResponse{
			Date:                timezone.FormatDate(night.Date),
			Weekday:             night.Weekday.String(),
			RatePlanCode:        night.RatePlanCode,
			BaseRate:            night.BaseRate.String(),
			BaseGuests:          night.BaseGuests,
			AdditionalAdults:    night.AdditionalAdults,
			AdditionalAdultRate: night.AdultCharge.String(),
			AdditionalChildRate: night.ChildCharge.String(),
			PerRoom:             night.PerRoom.String(),
			Total:               night.Total.String(),
			CurrencyCode:        night.CurrencyCode,
		}
	}
}
