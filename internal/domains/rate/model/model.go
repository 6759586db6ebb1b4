package model

import (
	"database/sql/driver"
	"otabridge/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "rates"
	EntityName = "rate"

	FieldID                     = "id"
	FieldHotelCode              = "hotel_code"
	FieldHotelName              = "hotel_name"
	FieldRoomTypeCode           = "room_type_code"
	FieldRatePlanCode           = "rate_plan_code"
	FieldStartDate              = "start_date"
	FieldEndDate                = "end_date"
	FieldMon                    = "mon"
	FieldTue                    = "tue"
	FieldWed                    = "wed"
	FieldThu                    = "thu"
	FieldFri                    = "fri"
	FieldSat                    = "sat"
	FieldSun                    = "sun"
	FieldCurrencyCode           = "currency_code"
	FieldBaseGuestAmounts       = "base_guest_amounts"
	FieldAdditionalGuestAmounts = "additional_guest_amounts"
)

type BaseGuestAmount struct {
	Amount         decimal.Decimal `json:"amount"`
	NumberOfGuests int             `json:"number_of_guests"`
}

// BaseGuestAmounts is kept sorted by NumberOfGuests, ascending.
type BaseGuestAmounts []BaseGuestAmount

func (b BaseGuestAmounts) Value() (driver.Value, error) {
	return model.JSONValue(b)
}

func (b *BaseGuestAmounts) Scan(src any) error {
	return model.JSONScan(src, b)
}

type AdditionalGuestAmount struct {
	AgeQualifyingCode string          `json:"age_qualifying_code"`
	Amount            decimal.Decimal `json:"amount"`
}

type AdditionalGuestAmounts []AdditionalGuestAmount

func (a AdditionalGuestAmounts) Value() (driver.Value, error) {
	return model.JSONValue(a)
}

func (a *AdditionalGuestAmounts) Scan(src any) error {
	return model.JSONScan(src, a)
}

// Surcharge returns the per-guest amount for an age qualifying code.
func (a AdditionalGuestAmounts) Surcharge(code string) (decimal.Decimal, bool) {
	for _, amount := range a {
		if amount.AgeQualifyingCode == code {
			return amount.Amount, true
		}
	}

	return decimal.Zero, false
}

type Rate struct {
	ID                     string                 `db:"id"`
	HotelCode              string                 `db:"hotel_code"`
	HotelName              string                 `db:"hotel_name"`
	RoomTypeCode           string                 `db:"room_type_code"`
	RatePlanCode           string                 `db:"rate_plan_code"`
	StartDate              time.Time              `db:"start_date"`
	EndDate                time.Time              `db:"end_date"`
	Mon                    bool                   `db:"mon"`
	Tue                    bool                   `db:"tue"`
	Wed                    bool                   `db:"wed"`
	Thu                    bool                   `db:"thu"`
	Fri                    bool                   `db:"fri"`
	Sat                    bool                   `db:"sat"`
	Sun                    bool                   `db:"sun"`
	CurrencyCode           string                 `db:"currency_code"`
	BaseGuestAmounts       BaseGuestAmounts       `db:"base_guest_amounts"`
	AdditionalGuestAmounts AdditionalGuestAmounts `db:"additional_guest_amounts"`
	model.Metadata
}

// AppliesOn reports whether the weekday mask allows day.
func (r Rate) AppliesOn(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return r.Mon
	case time.Tuesday:
		return r.Tue
	case time.Wednesday:
		return r.Wed
	case time.Thursday:
		return r.Thu
	case time.Friday:
		return r.Fri
	case time.Saturday:
		return r.Sat
	default:
		return r.Sun
	}
}

// Covers reports whether date lies inside the inclusive validity window.
func (r Rate) Covers(date time.Time) bool {
	return !date.Before(r.StartDate) && !date.After(r.EndDate)
}

// SetWeekdays assigns the mask from Monday..Sunday flags.
func (r *Rate) SetWeekdays(days [7]bool) {
	r.Mon, r.Tue, r.Wed, r.Thu, r.Fri, r.Sat, r.Sun = days[0], days[1], days[2], days[3], days[4], days[5], days[6]
}
