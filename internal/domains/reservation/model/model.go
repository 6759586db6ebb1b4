package model

import (
	"database/sql/driver"
	"maps"
	"otabridge/internal/ota"
	"otabridge/shared/model"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID           = "id"
	FieldHotelCode    = "hotel_code"
	FieldRatePlanCode = "rate_plan_code"
	FieldRoomTypeCode = "room_type_code"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldAdults       = "adults"
	FieldChildren     = "children"
	FieldRooms        = "rooms"
	FieldGuests       = "guests"
	FieldCurrencyCode = "currency_code"
	FieldTotalAmount  = "total_amount"
	FieldStatus       = "status"
	FieldRemoteIDs    = "remote_ids"
	FieldVersion      = "version"
	FieldClaimedUntil = "claimed_until"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusModified  Status = "Modified"
	StatusCancelled Status = "Cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusModified, StatusCancelled},
	StatusModified:  {StatusModified, StatusCancelled},
}

// CanTransition reports whether a reservation in s may move to next.
// Nothing leaves Cancelled.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func (s Status) Event() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusModified:
		return "modified"
	case StatusCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// AgeCategory groups guests the way rate surcharges and guest profiles do.
type AgeCategory string

const (
	AgeCategoryAdult  AgeCategory = "adult"
	AgeCategoryChild  AgeCategory = "child"
	AgeCategoryInfant AgeCategory = "infant"
)

const (
	adultFromAge = 18
	childFromAge = 2
)

// AgeCategoryOf maps an age in whole years on the arrival date to its category.
func AgeCategoryOf(age int) AgeCategory {
	switch {
	case age >= adultFromAge:
		return AgeCategoryAdult
	case age >= childFromAge:
		return AgeCategoryChild
	default:
		return AgeCategoryInfant
	}
}

// AgeOn returns the age in whole years of someone born on birthDate at date.
func AgeOn(birthDate, date time.Time) int {
	age := date.Year() - birthDate.Year()

	if date.Month() < birthDate.Month() || (date.Month() == birthDate.Month() && date.Day() < birthDate.Day()) {
		age--
	}

	return age
}

// QualifyingCode is the OTA age-qualifying code. Unknown categories count
// as adults.
func (c AgeCategory) QualifyingCode() string {
	switch c {
	case AgeCategoryChild:
		return ota.AgeQualifyingChild
	case AgeCategoryInfant:
		return ota.AgeQualifyingInfant
	default:
		return ota.AgeQualifyingAdult
	}
}

type Guest struct {
	GivenName         string      `json:"given_name"`
	Surname           string      `json:"surname"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone,omitempty"`
	AgeCategory       AgeCategory `json:"age_category"`
	AgeQualifyingCode string      `json:"age_qualifying_code"`
}

// QualifyingCode prefers the derived category and falls back to a stored
// code for rows written before categories were kept.
func (g Guest) QualifyingCode() string {
	if g.AgeCategory == "" && g.AgeQualifyingCode != "" {
		return g.AgeQualifyingCode
	}

	return g.AgeCategory.QualifyingCode()
}

type Guests []Guest

func (g Guests) Value() (driver.Value, error) {
	if g == nil {
		g = Guests{}
	}

	return model.JSONValue(g)
}

func (g *Guests) Scan(src any) error {
	return model.JSONScan(src, g)
}

// RemoteIDs maps a remote id type to its value.
type RemoteIDs map[string]string

func (r RemoteIDs) Value() (driver.Value, error) {
	if r == nil {
		r = RemoteIDs{}
	}

	return model.JSONValue(r)
}

func (r *RemoteIDs) Scan(src any) error {
	return model.JSONScan(src, r)
}

// Merge returns a copy of r with every entry of other added or replaced.
func (r RemoteIDs) Merge(other map[string]string) RemoteIDs {
	merged := RemoteIDs{}
	maps.Copy(merged, r)
	maps.Copy(merged, other)

	return merged
}

type Reservation struct {
	ID           string          `db:"id"`
	HotelCode    string          `db:"hotel_code"`
	RatePlanCode string          `db:"rate_plan_code"`
	RoomTypeCode string          `db:"room_type_code"`
	StartDate    time.Time       `db:"start_date"`
	EndDate      time.Time       `db:"end_date"`
	Adults       int             `db:"adults"`
	Children     int             `db:"children"`
	Rooms        int             `db:"rooms"`
	Guests       Guests          `db:"guests"`
	CurrencyCode string          `db:"currency_code"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	Status       Status          `db:"status"`
	RemoteIDs    RemoteIDs       `db:"remote_ids"`
	Version      int             `db:"version"`
	ClaimedUntil *time.Time      `db:"claimed_until"`
	model.Metadata
}

// ToStay renders the reservation for create and modify messages.
func (r Reservation) ToStay() ota.Stay {
	guests := make([]ota.Guest, len(r.Guests))
	for i, guest := range r.Guests {
		guests[i] = ota.Guest{
			GivenName:         guest.GivenName,
			Surname:           guest.Surname,
			Email:             guest.Email,
			Phone:             guest.Phone,
			AgeQualifyingCode: guest.QualifyingCode(),
		}
	}

	return ota.Stay{
		ReservationID: r.ID,
		HotelCode:     r.HotelCode,
		RoomTypeCode:  r.RoomTypeCode,
		RatePlanCode:  r.RatePlanCode,
		Start:         r.StartDate,
		End:           r.EndDate,
		Adults:        r.Adults,
		Children:      r.Children,
		Rooms:         r.Rooms,
		Guests:        guests,
		Total:         r.TotalAmount,
		CurrencyCode:  r.CurrencyCode,
		RemoteIDs:     r.RemoteIDs,
		CreatedAt:     r.CreatedAt,
	}
}

// ToCancellation names the lead guest when there is one.
func (r Reservation) ToCancellation(reason string) ota.Cancellation {
	cancel := ota.Cancellation{
		ReservationID: r.ID,
		HotelCode:     r.HotelCode,
		Start:         r.StartDate,
		End:           r.EndDate,
		Reason:        reason,
		RemoteIDs:     r.RemoteIDs,
	}

	if len(r.Guests) > 0 {
		cancel.GivenName = r.Guests[0].GivenName
		cancel.Surname = r.Guests[0].Surname
	}

	return cancel
}
