package intent

import "errors"

var (
	// -- Validation --
	ErrInvalidAmount = errors.New("minimum PIX amount is R$ 10,00")
	ErrAmountFormat  = errors.New("amount must use a decimal comma, e.g. 1.234,50 or 25,50")

	// -- Configuration --
	ErrMissingAPIKey = errors.New("PixGo API key not found, check the .env file")

	// -- Resource State --
	ErrIntentNotFound = errors.New("payment link is invalid or expired")
	ErrDuplicateID    = errors.New("payment intent id already exists")

	// -- Storage --
	ErrFailedLoadIntents  = errors.New("failed to load payment intents")
	ErrFailedSaveIntents  = errors.New("failed to save payment intents")
	ErrFailedCreateIntent = errors.New("failed to create payment intent")
	ErrFailedDeleteIntent = errors.New("failed to delete payment intent")
)
