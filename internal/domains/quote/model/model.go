package model

import (
	"errors"
	"fmt"
	"otabridge/shared/failure"
	"otabridge/shared/timezone"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnavailable = errors.New("requested rooms are not available")
	ErrNoRate      = errors.New("no rate covers the requested stay")
)

// UnavailableError carries the smallest count found across the stay.
type UnavailableError struct {
	Requested int
	Available int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: requested %d, available %d", ErrUnavailable, e.Requested, e.Available)
}

func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NoRateError names the first night without an applicable rate.
type NoRateError struct {
	Date time.Time
}

func (e *NoRateError) Error() string {
	return fmt.Sprintf("%s: no rate for %s", ErrNoRate, timezone.FormatDate(e.Date))
}

func (e *NoRateError) Unwrap() error {
	return ErrNoRate
}

// Stay is a validated quote request. Start and End are calendar dates; End
// is the checkout day and is never charged.
type Stay struct {
	HotelCode    string
	RoomTypeCode string
	Start        time.Time
	End          time.Time
	Adults       int
	Children     int
	Rooms        int
}

func (s Stay) Validate() error {
	switch {
	case s.HotelCode == "" || s.RoomTypeCode == "":
		return failure.BadRequestFromString("hotel code and room type code are required")
	case s.Adults < 1:
		return failure.BadRequestFromString("adults must be at least 1")
	case s.Children < 0:
		return failure.BadRequestFromString("children must not be negative")
	case s.Rooms < 1:
		return failure.BadRequestFromString("rooms must be at least 1")
	case !s.End.After(s.Start):
		return failure.BadRequestFromString("end date must be after start date")
	}

	return nil
}

// Nights lists every charged date, from Start up to but excluding End.
func (s Stay) Nights() []time.Time {
	nights := []time.Time{}

	for night := timezone.DateOnly(s.Start); night.Before(timezone.DateOnly(s.End)); night = night.AddDate(0, 0, 1) {
		nights = append(nights, night)
	}

	return nights
}

// Night is one line of the price breakdown.
type Night struct {
	Date         time.Time
	Weekday      time.Weekday
	RatePlanCode string
	CurrencyCode string
	Charge
	Total decimal.Decimal
}

type Quote struct {
	Stay
	Available    int
	CurrencyCode string
	Nights       []Night
	Total        decimal.Decimal
}
