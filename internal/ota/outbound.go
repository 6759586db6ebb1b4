package ota

import (
	"encoding/xml"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	resStatusCommit  = "Commit"
	resStatusModify  = "Modify"
	cancelTypeCancel = "Cancel"
	dateFormat       = "2006-01-02"
	amountPlaces     = 2
)

// Guest is one entry of the reservation roster.
type Guest struct {
	GivenName         string
	Surname           string
	Email             string
	Phone             string
	AgeQualifyingCode string
}

// Stay is the reservation content rendered into create and modify messages.
type Stay struct {
	ReservationID string
	HotelCode     string
	RoomTypeCode  string
	RatePlanCode  string
	Start         time.Time
	End           time.Time
	Adults        int
	Children      int
	Rooms         int
	Guests        []Guest
	Total         decimal.Decimal
	CurrencyCode  string
	RemoteIDs     map[string]string
	CreatedAt     time.Time
}

// Cancellation is the content of a cancel message.
type Cancellation struct {
	ReservationID string
	HotelCode     string
	Start         time.Time
	End           time.Time
	GivenName     string
	Surname       string
	Reason        string
	RemoteIDs     map[string]string
}

type HotelResNotifRQ struct {
	XMLName xml.Name `xml:"OTA_HotelResNotifRQ"`
	Envelope
	ResStatus         string             `xml:"ResStatus,attr"`
	POS               *POS               `xml:"POS"`
	HotelReservations *HotelReservations `xml:"HotelReservations"`
}

type HotelReservations struct {
	HotelReservation []HotelReservation `xml:"HotelReservation"`
}

type HotelResModifyNotifRQ struct {
	XMLName xml.Name `xml:"OTA_HotelResModifyNotifRQ"`
	Envelope
	POS              *POS              `xml:"POS"`
	HotelResModifies *HotelResModifies `xml:"HotelResModifies"`
}

type HotelResModifies struct {
	HotelResModify []HotelReservation `xml:"HotelResModify"`
}

type HotelReservation struct {
	CreateDateTime string         `xml:"CreateDateTime,attr,omitempty"`
	ResStatus      string         `xml:"ResStatus,attr,omitempty"`
	UniqueID       *UniqueID      `xml:"UniqueID"`
	RoomStays      *RoomStays     `xml:"RoomStays,omitempty"`
	ResGuests      *ResGuests     `xml:"ResGuests,omitempty"`
	ResGlobalInfo  *ResGlobalInfo `xml:"ResGlobalInfo"`
}

type RoomStays struct {
	RoomStay []RoomStay `xml:"RoomStay"`
}

type RoomStay struct {
	RoomTypes         RoomTypes         `xml:"RoomTypes"`
	RatePlans         RatePlans         `xml:"RatePlans"`
	GuestCounts       GuestCounts       `xml:"GuestCounts"`
	TimeSpan          TimeSpan          `xml:"TimeSpan"`
	Total             *Total            `xml:"Total"`
	BasicPropertyInfo BasicPropertyInfo `xml:"BasicPropertyInfo"`
}

type RoomTypes struct {
	RoomType []RoomType `xml:"RoomType"`
}

type RoomType struct {
	RoomTypeCode  string `xml:"RoomTypeCode,attr"`
	NumberOfUnits int    `xml:"NumberOfUnits,attr"`
}

type RatePlans struct {
	RatePlan []RatePlan `xml:"RatePlan"`
}

type RatePlan struct {
	RatePlanCode string `xml:"RatePlanCode,attr"`
}

type GuestCounts struct {
	GuestCount []GuestCount `xml:"GuestCount"`
}

type GuestCount struct {
	AgeQualifyingCode string `xml:"AgeQualifyingCode,attr"`
	Count             int    `xml:"Count,attr"`
}

type TimeSpan struct {
	Start string `xml:"Start,attr"`
	End   string `xml:"End,attr"`
}

type Total struct {
	AmountAfterTax string `xml:"AmountAfterTax,attr"`
	CurrencyCode   string `xml:"CurrencyCode,attr"`
}

type BasicPropertyInfo struct {
	HotelCode string `xml:"HotelCode,attr"`
}

type ResGuests struct {
	ResGuest []ResGuest `xml:"ResGuest"`
}

type ResGuest struct {
	ResGuestRPH       string   `xml:"ResGuestRPH,attr"`
	AgeQualifyingCode string   `xml:"AgeQualifyingCode,attr"`
	Profiles          Profiles `xml:"Profiles"`
}

type Profiles struct {
	ProfileInfo ProfileInfo `xml:"ProfileInfo"`
}

type ProfileInfo struct {
	Profile Profile `xml:"Profile"`
}

type Profile struct {
	ProfileType string   `xml:"ProfileType,attr"`
	Customer    Customer `xml:"Customer"`
}

type Customer struct {
	PersonName PersonName `xml:"PersonName"`
	Telephone  *Telephone `xml:"Telephone,omitempty"`
	Email      string     `xml:"Email,omitempty"`
}

type PersonName struct {
	GivenName string `xml:"GivenName,omitempty"`
	Surname   string `xml:"Surname,omitempty"`
}

type Telephone struct {
	PhoneNumber string `xml:"PhoneNumber,attr"`
}

type ResGlobalInfo struct {
	Total               *Total               `xml:"Total,omitempty"`
	HotelReservationIDs *HotelReservationIDs `xml:"HotelReservationIDs,omitempty"`
}

type HotelReservationIDs struct {
	HotelReservationID []HotelReservationID `xml:"HotelReservationID"`
}

type HotelReservationID struct {
	ResIDType  string `xml:"ResID_Type,attr"`
	ResIDValue string `xml:"ResID_Value,attr"`
}

type CancelRQ struct {
	XMLName xml.Name `xml:"OTA_CancelRQ"`
	Envelope
	CancelType   string        `xml:"CancelType,attr"`
	POS          *POS          `xml:"POS"`
	UniqueID     []UniqueID    `xml:"UniqueID"`
	Verification *Verification `xml:"Verification"`
	Reasons      *Reasons      `xml:"Reasons,omitempty"`
}

type Verification struct {
	PersonName          *PersonName        `xml:"PersonName,omitempty"`
	ReservationTimeSpan TimeSpan           `xml:"ReservationTimeSpan"`
	TPAExtensions       *BasicPropertyInfo `xml:"TPA_Extensions>BasicPropertyInfo"`
}

type Reasons struct {
	Reason []string `xml:"Reason"`
}

// FormatTimeStamp renders t the way OTA TimeStamp attributes expect.
func FormatTimeStamp(t time.Time) string {
	return t.Format(TimeStampFormat)
}

func localID(reservationID string) *UniqueID {
	return &UniqueID{Type: UniqueIDTypeReservation, ID: reservationID, IDContext: UniqueIDContext}
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(amountPlaces)
}

// reservationIDs renders remote ids sorted by type so output is stable.
func reservationIDs(ids map[string]string) *HotelReservationIDs {
	if len(ids) == 0 {
		return nil
	}

	out := &HotelReservationIDs{}
	for _, idType := range slices.Sorted(maps.Keys(ids)) {
		out.HotelReservationID = append(out.HotelReservationID, HotelReservationID{ResIDType: idType, ResIDValue: ids[idType]})
	}

	return out
}

func guestCounts(stay Stay) GuestCounts {
	counts := GuestCounts{GuestCount: []GuestCount{{AgeQualifyingCode: AgeQualifyingAdult, Count: stay.Adults}}}

	if stay.Children > 0 {
		counts.GuestCount = append(counts.GuestCount, GuestCount{AgeQualifyingCode: AgeQualifyingChild, Count: stay.Children})
	}

	return counts
}

func resGuests(guests []Guest) *ResGuests {
	out := &ResGuests{}

	for idx, guest := range guests {
		customer := Customer{
			PersonName: PersonName{GivenName: guest.GivenName, Surname: guest.Surname},
			Email:      guest.Email,
		}

		if guest.Phone != "" {
			customer.Telephone = &Telephone{PhoneNumber: guest.Phone}
		}

		code := guest.AgeQualifyingCode
		if code == "" {
			code = AgeQualifyingAdult
		}

		out.ResGuest = append(out.ResGuest, ResGuest{
			ResGuestRPH:       strconv.Itoa(idx + 1),
			AgeQualifyingCode: code,
			Profiles:          Profiles{ProfileInfo: ProfileInfo{Profile: Profile{ProfileType: "1", Customer: customer}}},
		})
	}

	return out
}

func hotelReservation(stay Stay, status string, includeRemoteIDs bool) HotelReservation {
	total := &Total{AmountAfterTax: formatAmount(stay.Total), CurrencyCode: stay.CurrencyCode}

	reservation := HotelReservation{
		ResStatus: status,
		UniqueID:  localID(stay.ReservationID),
		RoomStays: &RoomStays{RoomStay: []RoomStay{{
			RoomTypes:         RoomTypes{RoomType: []RoomType{{RoomTypeCode: stay.RoomTypeCode, NumberOfUnits: stay.Rooms}}},
			RatePlans:         RatePlans{RatePlan: []RatePlan{{RatePlanCode: stay.RatePlanCode}}},
			GuestCounts:       guestCounts(stay),
			TimeSpan:          TimeSpan{Start: stay.Start.Format(dateFormat), End: stay.End.Format(dateFormat)},
			Total:             total,
			BasicPropertyInfo: BasicPropertyInfo{HotelCode: stay.HotelCode},
		}}},
		ResGuests:     resGuests(stay.Guests),
		ResGlobalInfo: &ResGlobalInfo{Total: total},
	}

	if !stay.CreatedAt.IsZero() {
		reservation.CreateDateTime = FormatTimeStamp(stay.CreatedAt)
	}

	if includeRemoteIDs {
		reservation.ResGlobalInfo.HotelReservationIDs = reservationIDs(stay.RemoteIDs)
	}

	return reservation
}

// EncodeResNotif builds the OTA_HotelResNotifRQ that creates a reservation.
func EncodeResNotif(cred Credentials, env Envelope, stay Stay) ([]byte, error) {
	return Marshal(&HotelResNotifRQ{
		Envelope:  env,
		ResStatus: resStatusCommit,
		POS:       NewPOS(cred),
		HotelReservations: &HotelReservations{
			HotelReservation: []HotelReservation{hotelReservation(stay, resStatusCommit, false)},
		},
	})
}

// EncodeResModifyNotif builds the OTA_HotelResModifyNotifRQ that amends a reservation.
func EncodeResModifyNotif(cred Credentials, env Envelope, stay Stay) ([]byte, error) {
	return Marshal(&HotelResModifyNotifRQ{
		Envelope: env,
		POS:      NewPOS(cred),
		HotelResModifies: &HotelResModifies{
			HotelResModify: []HotelReservation{hotelReservation(stay, resStatusModify, true)},
		},
	})
}

// EncodeCancel builds the OTA_CancelRQ for a reservation. Remote ids follow
// the local UniqueID so the remote side can match on either.
func EncodeCancel(cred Credentials, env Envelope, cancel Cancellation) ([]byte, error) {
	ids := []UniqueID{*localID(cancel.ReservationID)}

	for _, idType := range slices.Sorted(maps.Keys(cancel.RemoteIDs)) {
		ids = append(ids, UniqueID{Type: idType, ID: cancel.RemoteIDs[idType]})
	}

	doc := &CancelRQ{
		Envelope:   env,
		CancelType: cancelTypeCancel,
		POS:        NewPOS(cred),
		UniqueID:   ids,
		Verification: &Verification{
			ReservationTimeSpan: TimeSpan{Start: cancel.Start.Format(dateFormat), End: cancel.End.Format(dateFormat)},
			TPAExtensions:       &BasicPropertyInfo{HotelCode: cancel.HotelCode},
		},
	}

	if cancel.GivenName != "" || cancel.Surname != "" {
		doc.Verification.PersonName = &PersonName{GivenName: cancel.GivenName, Surname: cancel.Surname}
	}

	if cancel.Reason != "" {
		doc.Reasons = &Reasons{Reason: []string{cancel.Reason}}
	}

	return Marshal(doc)
}

// EncodeInvCountNotif renders an inventory push, the inverse of Decode.
func EncodeInvCountNotif(cred Credentials, env Envelope, inventories Inventories) ([]byte, error) {
	return Marshal(&InvCountNotifRQ{Envelope: env, POS: NewPOS(cred), Inventories: &inventories})
}

// EncodeRateAmountNotif renders a rate push, the inverse of Decode.
func EncodeRateAmountNotif(cred Credentials, env Envelope, messages RateAmountMessages) ([]byte, error) {
	return Marshal(&RateAmountNotifRQ{Envelope: env, POS: NewPOS(cred), RateAmountMessages: &messages})
}
