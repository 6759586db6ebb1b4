package ota

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnknownResponseMessage is surfaced when a response is neither a success nor an error.
const UnknownResponseMessage = "Unknown error in API response"

const (
	xmlDeclaration = "<?xml"
	snippetLength  = 120
)

var (
	ErrNonXMLResponse  = errors.New("response is not an XML document")
	ErrUnknownResponse = errors.New(UnknownResponseMessage)
)

// RemoteRejection is an Errors/Error element returned by the remote system.
type RemoteRejection struct {
	Type      string
	Code      string
	ShortText string
}

func (e *RemoteRejection) Error() string {
	return e.ShortText
}

// Result is the useful content of a successful response.
type Result struct {
	Root           string
	ReservationIDs map[string]string
	UniqueIDs      []UniqueID
}

// UniqueIDValue returns the ID of the first UniqueID with the given Type.
func (r Result) UniqueIDValue(idType string) string {
	for _, id := range r.UniqueIDs {
		if id.Type == idType {
			return id.ID
		}
	}

	return ""
}

type Errors struct {
	Error []Error `xml:"Error"`
}

type Error struct {
	Type      string `xml:"Type,attr"`
	Code      string `xml:"Code,attr,omitempty"`
	ShortText string `xml:"ShortText,attr"`
	Value     string `xml:",chardata"`
}

type reservationRS struct {
	UniqueID      []UniqueID     `xml:"UniqueID"`
	ResGlobalInfo *ResGlobalInfo `xml:"ResGlobalInfo"`
}

type responseDoc struct {
	XMLName           xml.Name
	Success           *struct{}  `xml:"Success"`
	Errors            *Errors    `xml:"Errors"`
	UniqueID          []UniqueID `xml:"UniqueID"`
	HotelReservations *struct {
		HotelReservation []reservationRS `xml:"HotelReservation"`
	} `xml:"HotelReservations"`
	HotelResModifies *struct {
		HotelResModify []reservationRS `xml:"HotelResModify"`
	} `xml:"HotelResModifies"`
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > snippetLength {
		return text[:snippetLength] + "..."
	}

	return text
}

// ParseResponse interprets the raw body returned for a reservation message.
// A body that does not start with an XML declaration yields ErrNonXMLResponse,
// an Errors element yields *RemoteRejection carrying the first ShortText, and
// any other shape yields ErrUnknownResponse.
func ParseResponse(body []byte) (Result, error) {
	trimmed := bytes.TrimSpace(body)
	if !bytes.HasPrefix(trimmed, []byte(xmlDeclaration)) {
		return Result{}, fmt.Errorf("%w: %s", ErrNonXMLResponse, snippet(body))
	}

	var doc responseDoc
	if err := xml.Unmarshal(trimmed, &doc); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownResponse, err.Error())
	}

	if doc.Success == nil {
		if doc.Errors != nil && len(doc.Errors.Error) > 0 {
			first := doc.Errors.Error[0]

			text := strings.TrimSpace(first.ShortText)
			if text == "" {
				text = strings.TrimSpace(first.Value)
			}

			if text == "" {
				return Result{}, ErrUnknownResponse
			}

			return Result{}, &RemoteRejection{Type: first.Type, Code: first.Code, ShortText: text}
		}

		return Result{}, ErrUnknownResponse
	}

	result := Result{
		Root:           doc.XMLName.Local,
		ReservationIDs: map[string]string{},
		UniqueIDs:      doc.UniqueID,
	}

	var reservations []reservationRS
	if doc.HotelReservations != nil {
		reservations = append(reservations, doc.HotelReservations.HotelReservation...)
	}

	if doc.HotelResModifies != nil {
		reservations = append(reservations, doc.HotelResModifies.HotelResModify...)
	}

	for _, reservation := range reservations {
		result.UniqueIDs = append(result.UniqueIDs, reservation.UniqueID...)

		if reservation.ResGlobalInfo == nil || reservation.ResGlobalInfo.HotelReservationIDs == nil {
			continue
		}

		for _, id := range reservation.ResGlobalInfo.HotelReservationIDs.HotelReservationID {
			if id.ResIDType == "" {
				continue
			}

			result.ReservationIDs[id.ResIDType] = id.ResIDValue
		}
	}

	return result, nil
}

// NotifRS acknowledges an inbound notification.
type NotifRS struct {
	XMLName xml.Name
	Envelope
	Success *struct{} `xml:"Success,omitempty"`
	Errors  *Errors   `xml:"Errors,omitempty"`
}

// EncodeNotifRS renders the response document for an inbound request root.
// A nil failure produces a Success acknowledgement.
func EncodeNotifRS(requestRoot, echoToken string, now time.Time, failure *ValidationError) ([]byte, error) {
	doc := &NotifRS{
		XMLName:  xml.Name{Local: ResponseRoot(requestRoot)},
		Envelope: NewEnvelope(echoToken, FormatTimeStamp(now)),
	}

	if failure == nil {
		doc.Success = &struct{}{}
	} else {
		doc.Errors = &Errors{Error: []Error{{Type: failure.Type, ShortText: failure.Message}}}
	}

	return Marshal(doc)
}
