package checkout

import (
	"errors"
	"strings"
)

const (
	fallbackBusinessMessage  = "Ocorreu um erro ao gerar o PIX."
	fallbackTransportMessage = "Falha na conexão com o servidor de pagamento."
)

var (
	ErrSubmissionInProgress = errors.New("payment submission already in progress")
	ErrAlreadySettled       = errors.New("payment already settled")
	ErrSessionClosed        = errors.New("checkout session closed")
)

// GatewayError is a business rejection from the gateway (success=false).
// Message is shown to the payer verbatim.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// ValidationError lists the payer form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid customer fields: " + strings.Join(e.Fields, ", ")
}
