package dto

import (
	"otabridge/internal/domains/rate/model"
	"otabridge/shared"
	gDto "otabridge/shared/dto"
	"otabridge/shared/timezone"
)

type GuestAmountResponse struct {
	Amount            string `json:"amount"`
	NumberOfGuests    int    `json:"number_of_guests,omitempty"`
	AgeQualifyingCode string `json:"age_qualifying_code,omitempty"`
}

type RateResponse struct {
	ID                     string                `json:"id"`
	HotelCode              string                `json:"hotel_code"`
	HotelName              string                `json:"hotel_name"`
	RoomTypeCode           string                `json:"room_type_code"`
	RatePlanCode           string                `json:"rate_plan_code"`
	StartDate              string                `json:"start_date"`
	EndDate                string                `json:"end_date"`
	Weekdays               [7]bool               `json:"weekdays"`
	CurrencyCode           string                `json:"currency_code"`
	BaseGuestAmounts       []GuestAmountResponse `json:"base_guest_amounts"`
	AdditionalGuestAmounts []GuestAmountResponse `json:"additional_guest_amounts"`
	gDto.Metadata
}

func (r *RateResponse) FromModel(model model.Rate) {
	r.ID = model.ID
	r.HotelCode = model.HotelCode
	r.HotelName = model.HotelName
	r.RoomTypeCode = model.RoomTypeCode
	r.RatePlanCode = model.RatePlanCode
	r.StartDate = timezone.FormatDate(model.StartDate)
	r.EndDate = timezone.FormatDate(model.EndDate)
	r.Weekdays = [7]bool{model.Mon, model.Tue, model.Wed, model.Thu, model.Fri, model.Sat, model.Sun}
	r.CurrencyCode = model.CurrencyCode

	r.BaseGuestAmounts = make([]GuestAmountResponse, len(model.BaseGuestAmounts))
	for i, tier := range model.BaseGuestAmounts {
		r.BaseGuestAmounts[i] = GuestAmountResponse{Amount: tier.Amount.String(), NumberOfGuests: tier.NumberOfGuests}
	}

	r.AdditionalGuestAmounts = make([]GuestAmountResponse, len(model.AdditionalGuestAmounts))
	for i, extra := range model.AdditionalGuestAmounts {
		r.AdditionalGuestAmounts[i] = GuestAmountResponse{Amount: extra.Amount.String(), AgeQualifyingCode: extra.AgeQualifyingCode}
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetRatesResponse struct {
	Rates     []RateResponse `json:"rates"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRatesResponse) FromModels(models []model.Rate, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rates = make([]RateResponse, len(models))
	for i, mod := range models {
		r.Rates[i].FromModel(mod)
	}
}
