package ota

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const xmlnsPrefix = "xmlns"

// Document is a decoded inbound notification.
type Document interface {
	Root() string
	Head() Envelope
	Requestor() RequestorID
}

type InvCountNotifRQ struct {
	XMLName xml.Name `xml:"OTA_HotelInvCountNotifRQ"`
	Envelope
	POS         *POS         `xml:"POS"`
	Inventories *Inventories `xml:"Inventories"`
}

type Inventories struct {
	HotelCode string      `xml:"HotelCode,attr"`
	HotelName string      `xml:"HotelName,attr"`
	Inventory []Inventory `xml:"Inventory"`
}

type Inventory struct {
	StatusApplicationControl *StatusApplicationControl `xml:"StatusApplicationControl"`
	InvCounts                *InvCounts                `xml:"InvCounts"`
}

type InvCounts struct {
	InvCount []InvCount `xml:"InvCount"`
}

type InvCount struct {
	CountType string `xml:"CountType,attr,omitempty"`
	Count     string `xml:"Count,attr"`
}

type RateAmountNotifRQ struct {
	XMLName xml.Name `xml:"OTA_HotelRateAmountNotifRQ"`
	Envelope
	POS                *POS                `xml:"POS"`
	RateAmountMessages *RateAmountMessages `xml:"RateAmountMessages"`
}

type RateAmountMessages struct {
	HotelCode         string              `xml:"HotelCode,attr"`
	HotelName         string              `xml:"HotelName,attr"`
	RateAmountMessage []RateAmountMessage `xml:"RateAmountMessage"`
}

type RateAmountMessage struct {
	StatusApplicationControl *StatusApplicationControl `xml:"StatusApplicationControl"`
	Rates                    *Rates                    `xml:"Rates"`
}

type Rates struct {
	Rate []Rate `xml:"Rate"`
}

// Rate carries weekday flags as the raw "true"/"false" strings sent on the wire.
type Rate struct {
	Mon                    string                  `xml:"Mon,attr"`
	Tue                    string                  `xml:"Tue,attr"`
	Weds                   string                  `xml:"Weds,attr"`
	Thur                   string                  `xml:"Thur,attr"`
	Fri                    string                  `xml:"Fri,attr"`
	Sat                    string                  `xml:"Sat,attr"`
	Sun                    string                  `xml:"Sun,attr"`
	CurrencyCode           string                  `xml:"CurrencyCode,attr"`
	BaseByGuestAmts        *BaseByGuestAmts        `xml:"BaseByGuestAmts"`
	AdditionalGuestAmounts *AdditionalGuestAmounts `xml:"AdditionalGuestAmounts"`
}

// Weekdays returns the flags in Monday..Sunday order.
func (r Rate) Weekdays() [7]string {
	return [7]string{r.Mon, r.Tue, r.Weds, r.Thur, r.Fri, r.Sat, r.Sun}
}

type BaseByGuestAmts struct {
	BaseByGuestAmt []BaseByGuestAmt `xml:"BaseByGuestAmt"`
}

type BaseByGuestAmt struct {
	AmountBeforeTax string `xml:"AmountBeforeTax,attr"`
	NumberOfGuests  string `xml:"NumberOfGuests,attr"`
}

type AdditionalGuestAmounts struct {
	AdditionalGuestAmount []AdditionalGuestAmount `xml:"AdditionalGuestAmount"`
}

type AdditionalGuestAmount struct {
	AgeQualifyingCode string `xml:"AgeQualifyingCode,attr"`
	Amount            string `xml:"Amount,attr"`
}

func (d *InvCountNotifRQ) Root() string { return RootInvCountNotifRQ }

func (d *InvCountNotifRQ) Head() Envelope { return d.Envelope }

func (d *RateAmountNotifRQ) Root() string { return RootRateAmountNotifRQ }

func (d *RateAmountNotifRQ) Head() Envelope { return d.Envelope }

func (d *InvCountNotifRQ) Requestor() RequestorID {
	return requestorOf(d.POS)
}

func (d *RateAmountNotifRQ) Requestor() RequestorID {
	return requestorOf(d.POS)
}

func requestorOf(pos *POS) RequestorID {
	if pos == nil || pos.Source == nil || pos.Source.RequestorID == nil {
		return RequestorID{}
	}

	return *pos.Source.RequestorID
}

// Header is what can be read from the root start tag alone.
type Header struct {
	Root      string
	EchoToken string
}

// ReadHeader reads the root element name and EchoToken without decoding the body.
func ReadHeader(data []byte) (Header, error) {
	start, err := rootElement(data)
	if err != nil {
		return Header{}, err
	}

	return Header{Root: start.Name.Local, EchoToken: attrValue(start, "", "EchoToken")}, nil
}

// Decode parses and structurally validates an inbound notification. The
// returned error is always a *ValidationError.
func Decode(data []byte) (Document, error) {
	start, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	var doc Document

	switch start.Name.Local {
	case RootInvCountNotifRQ:
		doc = &InvCountNotifRQ{}
	case RootRateAmountNotifRQ:
		doc = &RateAmountNotifRQ{}
	default:
		return nil, Invalid(ErrTypeUnsupportedMessage, "root", NoIndex, "unsupported message type %s", start.Name.Local)
	}

	if verr := validateRoot(start); verr != nil {
		return nil, verr
	}

	if err = xml.Unmarshal(data, doc); err != nil {
		return nil, Invalid(ErrTypeMalformedXML, "document", NoIndex, "malformed XML: %s", err.Error())
	}

	if verr := validatePOS(doc.Requestor(), hasRequestor(doc)); verr != nil {
		return nil, verr
	}

	switch typed := doc.(type) {
	case *InvCountNotifRQ:
		err = validateInvCount(typed)
	case *RateAmountNotifRQ:
		err = validateRateAmount(typed)
	}

	if err != nil {
		return nil, err
	}

	return doc, nil
}

func rootElement(data []byte) (xml.StartElement, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, Invalid(ErrTypeMalformedXML, "document", NoIndex, "document has no root element")
		}

		if err != nil {
			return xml.StartElement{}, Invalid(ErrTypeMalformedXML, "document", NoIndex, "malformed XML: %s", err.Error())
		}

		if start, ok := token.(xml.StartElement); ok {
			return start, nil
		}
	}
}

func attrValue(start xml.StartElement, space, local string) string {
	for _, attr := range start.Attr {
		if attr.Name.Space == space && attr.Name.Local == local {
			return attr.Value
		}
	}

	return ""
}

func hasAttr(start xml.StartElement, space, local string) bool {
	for _, attr := range start.Attr {
		if attr.Name.Space == space && attr.Name.Local == local {
			return true
		}
	}

	return false
}

func validateRoot(start xml.StartElement) *ValidationError {
	if attrValue(start, "", xmlnsPrefix) != Namespace {
		return Invalid(ErrTypeMissingNamespace, xmlnsPrefix, NoIndex, "xmlns must declare %s", Namespace)
	}

	if !hasAttr(start, xmlnsPrefix, "xsi") {
		return Invalid(ErrTypeMissingNamespace, "xmlns:xsi", NoIndex, "xmlns:xsi is required")
	}

	for _, name := range []string{"EchoToken", "TimeStamp", "Version"} {
		if strings.TrimSpace(attrValue(start, "", name)) == "" {
			return MissingAttribute(name, NoIndex)
		}
	}

	return nil
}

func hasRequestor(doc Document) bool {
	var pos *POS

	switch typed := doc.(type) {
	case *InvCountNotifRQ:
		pos = typed.POS
	case *RateAmountNotifRQ:
		pos = typed.POS
	}

	switch {
	case pos == nil:
		return false
	case pos.Source == nil:
		return false
	default:
		return pos.Source.RequestorID != nil
	}
}

func validatePOS(requestor RequestorID, present bool) *ValidationError {
	if !present {
		return MissingElement("POS/Source/RequestorID", NoIndex)
	}

	required := []struct {
		field string
		value string
	}{
		{"RequestorID.ID", requestor.ID},
		{"RequestorID.ID_Context", requestor.IDContext},
		{"RequestorID.MessagePassword", requestor.MessagePassword},
	}

	for _, attr := range required {
		if strings.TrimSpace(attr.value) == "" {
			return MissingAttribute(attr.field, NoIndex)
		}
	}

	return nil
}

func validateControl(control *StatusApplicationControl, index int, needRatePlan bool) *ValidationError {
	if control == nil {
		return MissingElement("StatusApplicationControl", index)
	}

	required := []struct {
		field string
		value string
	}{
		{"InvTypeCode", control.InvTypeCode},
		{"Start", control.Start},
		{"End", control.End},
	}

	if needRatePlan {
		required = append(required, struct {
			field string
			value string
		}{"RatePlanCode", control.RatePlanCode})
	}

	for _, attr := range required {
		if strings.TrimSpace(attr.value) == "" {
			return MissingAttribute(attr.field, index)
		}
	}

	return nil
}

func validateInvCount(doc *InvCountNotifRQ) error {
	if doc.Inventories == nil {
		return MissingElement("Inventories", NoIndex)
	}

	if strings.TrimSpace(doc.Inventories.HotelCode) == "" {
		return MissingAttribute("HotelCode", NoIndex)
	}

	if len(doc.Inventories.Inventory) == 0 {
		return MissingElement("Inventory", NoIndex)
	}

	for index, inventory := range doc.Inventories.Inventory {
		if verr := validateControl(inventory.StatusApplicationControl, index, false); verr != nil {
			return verr
		}

		if inventory.InvCounts == nil || len(inventory.InvCounts.InvCount) == 0 {
			return MissingElement("InvCounts/InvCount", index)
		}

		if strings.TrimSpace(inventory.InvCounts.InvCount[0].Count) == "" {
			return MissingAttribute("Count", index)
		}
	}

	return nil
}

func validateRateAmount(doc *RateAmountNotifRQ) error {
	if doc.RateAmountMessages == nil {
		return MissingElement("RateAmountMessages", NoIndex)
	}

	if strings.TrimSpace(doc.RateAmountMessages.HotelCode) == "" {
		return MissingAttribute("HotelCode", NoIndex)
	}

	if len(doc.RateAmountMessages.RateAmountMessage) == 0 {
		return MissingElement("RateAmountMessage", NoIndex)
	}

	for index, message := range doc.RateAmountMessages.RateAmountMessage {
		if verr := validateControl(message.StatusApplicationControl, index, true); verr != nil {
			return verr
		}

		if message.Rates == nil || len(message.Rates.Rate) == 0 {
			return MissingElement("Rates/Rate", index)
		}

		for _, rate := range message.Rates.Rate {
			if strings.TrimSpace(rate.CurrencyCode) == "" {
				return MissingAttribute("CurrencyCode", index)
			}

			if rate.BaseByGuestAmts == nil || len(rate.BaseByGuestAmts.BaseByGuestAmt) == 0 {
				return MissingElement("BaseByGuestAmts/BaseByGuestAmt", index)
			}
		}
	}

	return nil
}
