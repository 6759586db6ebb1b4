package service

import (
	"errors"
	"otabridge/infras/wincloud"
	"otabridge/internal/ota"
	"otabridge/shared/failure"
)

// Remote failure kinds.
const (
	KindTransport = "transport"
	KindTimeout   = "timeout"
	KindNonXML    = "non_xml"
	KindRemote    = "remote"
	KindUnknown   = "unknown"
)

const (
	messageTimeout = "Remote reservation system did not respond in time"
	messageNonXML  = "Remote reservation system returned a non-XML response"
)

// RemoteError is a failed exchange with the remote reservation system.
// Message is what the caller sees; for KindRemote it is the remote
// ShortText verbatim.
type RemoteError struct {
	Kind    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap exposes both the cause and the HTTP failure, so failure.GetCode
// maps timeouts to 504 and every other kind to 502.
func (e *RemoteError) Unwrap() []error {
	var status error
	if e.Kind == KindTimeout {
		status = failure.GatewayTimeout(e.Message)
	} else {
		status = failure.BadGateway(e.Message)
	}

	if e.Err == nil {
		return []error{status}
	}

	return []error{status, e.Err}
}

// classify turns a transport or parse error into a *RemoteError.
func classify(err error) *RemoteError {
	if err == nil {
		return nil
	}

	var rejection *ota.RemoteRejection

	switch {
	case errors.Is(err, wincloud.ErrTimeout):
		return &RemoteError{Kind: KindTimeout, Message: messageTimeout, Err: err}
	case errors.Is(err, wincloud.ErrTransport):
		return &RemoteError{Kind: KindTransport, Message: err.Error(), Err: err}
	case errors.Is(err, ota.ErrNonXMLResponse):
		return &RemoteError{Kind: KindNonXML, Message: messageNonXML, Err: err}
	case errors.As(err, &rejection):
		return &RemoteError{Kind: KindRemote, Message: rejection.ShortText, Err: err}
	default:
		return &RemoteError{Kind: KindUnknown, Message: ota.UnknownResponseMessage, Err: err}
	}
}
