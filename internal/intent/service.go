package intent

import (
	"context"
	"errors"
	"strings"
	"time"

	"pixlink/internal/logger"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxIDAttempts = 3

// Service is the operator-facing side of payment intents.
type Service interface {
	Create(ctx context.Context, input CreateIntentInput) (*PaymentIntent, error)
	List(ctx context.Context) ([]*PaymentIntent, error)
	Get(ctx context.Context, id string) (*PaymentIntent, error)
	Delete(ctx context.Context, id string) error
	CheckoutURL(id string) string
	CreationEnabled() bool
}

type service struct {
	store            Store
	apiKeyConfigured bool
	checkoutBaseURL  string

	now   func() time.Time
	newID func() string
}

func NewService(store Store, apiKeyConfigured bool, checkoutBaseURL string) Service {
	return &service{
		store:            store,
		apiKeyConfigured: apiKeyConfigured,
		checkoutBaseURL:  checkoutBaseURL,
		now:              time.Now,
		newID:            func() string { return xid.New().String() },
	}
}

func (s *service) CreationEnabled() bool {
	return s.apiKeyConfigured
}

func (s *service) Create(ctx context.Context, input CreateIntentInput) (*PaymentIntent, error) {
	log := logger.FromCtx(ctx)

	if !s.apiKeyConfigured {
		return nil, ErrMissingAPIKey
	}

	amount, err := ParseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = DefaultDescription
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		pi := &PaymentIntent{
			ID:          s.newID(),
			Amount:      amount,
			Description: description,
			CreatedAt:   s.now().UTC(),
			Status:      StatusPending,
		}

		err = s.store.Create(ctx, pi)
		if errors.Is(err, ErrDuplicateID) {
			log.Warn("intent id collision, regenerating", zap.String("intent_id", pi.ID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		log.Info("payment intent created",
			zap.String("intent_id", pi.ID),
			zap.String("amount", pi.Amount.StringFixed(2)),
		)
		return pi, nil
	}

	return nil, ErrDuplicateID
}

func (s *service) List(ctx context.Context) ([]*PaymentIntent, error) {
	return s.store.List(ctx)
}

func (s *service) Get(ctx context.Context, id string) (*PaymentIntent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrIntentNotFound
	}
	return s.store.FindByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("payment intent deleted", zap.String("intent_id", id))
	return nil
}

func (s *service) CheckoutURL(id string) string {
	return s.checkoutBaseURL + id
}

// ParseAmount accepts "25.50", "25,50" and "1.234,50" and enforces MinAmount.
// Once a comma is present it is the decimal separator, so "1,000.50" and
// "1,000,00" are ErrAmountFormat. The result is rounded to cents.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if comma := strings.LastIndex(raw, ","); comma >= 0 {
		if strings.Count(raw, ",") > 1 || strings.LastIndex(raw, ".") > comma {
			return decimal.Zero, ErrAmountFormat
		}
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.LessThan(MinAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount.Round(2), nil
}
