// Package ota encodes and decodes the OpenTravel Alliance XML messages
// exchanged with the wincloud channel manager. It performs no I/O.
package ota

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	Namespace    = "http://www.opentravel.org/OTA/2003/05"
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"
	Version      = "1.0"

	TimeStampFormat = "2006-01-02T15:04:05"
)

// Root element names.
const (
	RootInvCountNotifRQ   = "OTA_HotelInvCountNotifRQ"
	RootRateAmountNotifRQ = "OTA_HotelRateAmountNotifRQ"
	RootResNotifRQ        = "OTA_HotelResNotifRQ"
	RootResModifyNotifRQ  = "OTA_HotelResModifyNotifRQ"
	RootCancelRQ          = "OTA_CancelRQ"
	RootErrorRS           = "OTA_ErrorRS"

	requestSuffix  = "RQ"
	responseSuffix = "RS"
)

// Age qualifying codes.
const (
	AgeQualifyingAdult  = "10"
	AgeQualifyingChild  = "8"
	AgeQualifyingInfant = "7"
)

// UniqueIDTypeReservation tags the local reservation id in UniqueID elements.
const (
	UniqueIDTypeReservation = "14"
	UniqueIDContext         = "WINCLOUD"
)

// Validation error labels.
const (
	ErrTypeMalformedXML       = "Malformed XML"
	ErrTypeMediaType          = "Unsupported Media Type"
	ErrTypeUnsupportedMessage = "Unsupported Message Type"
	ErrTypeMissingNamespace   = "Missing Namespace Declaration"
	ErrTypeMissingAttribute   = "Missing Required Attribute"
	ErrTypeMissingElement     = "Missing Required Element"
	ErrTypeInvalidDateFormat  = "Invalid Date Format"
	ErrTypeInvalidStartDate   = "Invalid Start Date"
	ErrTypeDateRange          = "Date Range Error"
	ErrTypeInvalidCount       = "Invalid Count Value"
	ErrTypeInvalidRateDays    = "Invalid Rate Days"
	ErrTypeInvalidAmount      = "Invalid Amount Value"
	ErrTypeInvalidGuestCount  = "Invalid Guest Count"
	ErrTypeInvalidCurrency    = "Invalid Currency Code"
	ErrTypeAuthentication     = "Authentication Failed"
	ErrTypeProcessingFailed   = "Processing Failed"
)

// NoIndex marks a ValidationError that is not tied to a repeated entry.
const NoIndex = -1

// ValidationError is the first structural or semantic violation found in an
// inbound document.
type ValidationError struct {
	Type    string
	Field   string
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(errType, field string, index int, format string, args ...any) *ValidationError {
	message := fmt.Sprintf(format, args...)
	if index != NoIndex {
		message = fmt.Sprintf("%s (entry %d)", message, index)
	}

	return &ValidationError{
		Type:    errType,
		Field:   field,
		Index:   index,
		Message: message,
	}
}

// MissingAttribute reports a required attribute that is absent or blank.
func MissingAttribute(field string, index int) *ValidationError {
	return newValidationError(ErrTypeMissingAttribute, field, index, "%s is required", field)
}

// MissingElement reports a required element that is absent.
func MissingElement(field string, index int) *ValidationError {
	return newValidationError(ErrTypeMissingElement, field, index, "%s element is required", field)
}

// Invalid reports a present but unacceptable value.
func Invalid(errType, field string, index int, format string, args ...any) *ValidationError {
	return newValidationError(errType, field, index, format, args...)
}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// ParseCount reads a numeric string attribute such as InvCount/@Count. Only
// plain decimal digits are accepted, so signs and blanks are rejected.
func ParseCount(raw string) (int, bool) {
	if !digitsOnly.MatchString(raw) {
		return 0, false
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return count, true
}

// ResponseRoot maps a request root element to its response root element.
func ResponseRoot(requestRoot string) string {
	if !strings.HasSuffix(requestRoot, requestSuffix) {
		return RootErrorRS
	}

	return strings.TrimSuffix(requestRoot, requestSuffix) + responseSuffix
}

// Envelope carries the attributes shared by every OTA root element.
type Envelope struct {
	Xmlns     string `xml:"xmlns,attr,omitempty"`
	XmlnsXSI  string `xml:"xmlns:xsi,attr,omitempty"`
	EchoToken string `xml:"EchoToken,attr"`
	TimeStamp string `xml:"TimeStamp,attr"`
	Target    string `xml:"Target,attr,omitempty"`
	Version   string `xml:"Version,attr"`
}

// NewEnvelope fills the namespace declarations and fixed version.
func NewEnvelope(echoToken, timeStamp string) Envelope {
	return Envelope{
		Xmlns:     Namespace,
		XmlnsXSI:  XSINamespace,
		EchoToken: echoToken,
		TimeStamp: timeStamp,
		Version:   Version,
	}
}

type RequestorID struct {
	ID              string `xml:"ID,attr"`
	IDContext       string `xml:"ID_Context,attr"`
	MessagePassword string `xml:"MessagePassword,attr"`
	CompanyName     string `xml:"CompanyName,omitempty"`
}

type Source struct {
	RequestorID *RequestorID `xml:"RequestorID"`
}

type POS struct {
	Source *Source `xml:"Source"`
}

// Credentials identify this bridge to the remote system.
type Credentials struct {
	RequestorID     string
	Context         string
	MessagePassword string
	CompanyCode     string
}

// NewPOS renders credentials as a POS block.
func NewPOS(cred Credentials) *POS {
	return &POS{Source: &Source{RequestorID: &RequestorID{
		ID:              cred.RequestorID,
		IDContext:       cred.Context,
		MessagePassword: cred.MessagePassword,
		CompanyName:     cred.CompanyCode,
	}}}
}

type UniqueID struct {
	Type      string `xml:"Type,attr"`
	ID        string `xml:"ID,attr"`
	IDContext string `xml:"ID_Context,attr,omitempty"`
}

type StatusApplicationControl struct {
	Start        string `xml:"Start,attr"`
	End          string `xml:"End,attr"`
	InvTypeCode  string `xml:"InvTypeCode,attr"`
	RatePlanCode string `xml:"RatePlanCode,attr,omitempty"`
}

// Marshal renders doc with the XML declaration prepended.
func Marshal(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal OTA document: %w", err)
	}

	return append([]byte(xml.Header), body...), nil
}
