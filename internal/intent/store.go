package intent

import "context"

// Store persists payment intents. List returns the most recent first.
// FindByID returns ErrIntentNotFound for unknown ids and Delete is a no-op
// for them.
type Store interface {
	Create(ctx context.Context, pi *PaymentIntent) error
	List(ctx context.Context) ([]*PaymentIntent, error)
	FindByID(ctx context.Context, id string) (*PaymentIntent, error)
	Delete(ctx context.Context, id string) error
}
