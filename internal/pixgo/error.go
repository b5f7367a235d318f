package pixgo

import (
	"errors"
	"fmt"
)

const defaultTransportMessage = "Erro ao conectar com servidor de pagamento"

var (
	ErrEmptyPaymentID    = errors.New("payment id is required")
	ErrMalformedResponse = errors.New("malformed pixgo response")
)

// TransportError means no usable response came back from the gateway.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pixgo %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the payer.
func (e *TransportError) Message() string {
	if e.Err == nil || e.Err.Error() == "" {
		return defaultTransportMessage
	}
	return e.Err.Error()
}

// StatusError is a non-2xx answer on the status/details endpoints.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pixgo %s: http %d: %s", e.Op, e.StatusCode, e.Body)
}
