package intent

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultDescription = "Pagamento PIX"

// MinAmount is the smallest transaction the gateway accepts.
var MinAmount = decimal.NewFromInt(10)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a record in status from may move to status to.
// Terminal statuses are final.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	return from != to
}

type PaymentIntent struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	Status      Status          `json:"status"`
}

type CreateIntentInput struct {
	Amount      string
	Description string
}
