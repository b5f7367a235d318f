package intent

import (
	"context"
	"database/sql"
	"errors"

	"pixlink/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type repository struct {
	db *sql.DB
}

// NewRepository returns a PostgreSQL backed Store. The payment_intents table
// is created by cmd/migrate.
func NewRepository(db *sql.DB) Store {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, pi *PaymentIntent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_intents (id, amount, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, pi.ID, pi.Amount, pi.Description, string(pi.Status), pi.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return ErrDuplicateID
		}
		logger.FromCtx(ctx).Error("failed inserting payment intent", zap.String("intent_id", pi.ID), zap.Error(err))
		return ErrFailedCreateIntent
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]*PaymentIntent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, description, status, created_at
		FROM payment_intents
		ORDER BY created_at DESC, seq DESC
	`)
	if err != nil {
		logger.FromCtx(ctx).Error("failed listing payment intents", zap.Error(err))
		return nil, ErrFailedLoadIntents
	}
	defer rows.Close()

	intents := []*PaymentIntent{}
	for rows.Next() {
		pi, err := scanIntent(rows)
		if err != nil {
			return nil, ErrFailedLoadIntents
		}
		intents = append(intents, pi)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrFailedLoadIntents
	}
	return intents, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*PaymentIntent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount, description, status, created_at
		FROM payment_intents
		WHERE id = $1
	`, id)

	pi, err := scanIntent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIntentNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed loading payment intent", zap.String("intent_id", id), zap.Error(err))
		return nil, ErrFailedLoadIntents
	}
	return pi, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payment_intents WHERE id = $1`, id)
	if err != nil {
		logger.FromCtx(ctx).Error("failed deleting payment intent", zap.String("intent_id", id), zap.Error(err))
		return ErrFailedDeleteIntent
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntent(s rowScanner) (*PaymentIntent, error) {
	var (
		pi     PaymentIntent
		status string
	)
	if err := s.Scan(&pi.ID, &pi.Amount, &pi.Description, &status, &pi.CreatedAt); err != nil {
		return nil, err
	}
	pi.Status = Status(status)
	return &pi, nil
}
