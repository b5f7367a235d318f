package intent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntent(id string, created time.Time) *PaymentIntent {
	return &PaymentIntent{
		ID:          id,
		Amount:      decimal.RequireFromString("25.50"),
		Description: "Consultoria",
		CreatedAt:   created,
		Status:      StatusPending,
	}
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ListEmpty", func(t *testing.T) {
		intents, err := newStore(t).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, intents)
	})

	t.Run("MostRecentFirst", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newIntent("a", base)))
		require.NoError(t, s.Create(ctx, newIntent("b", base.Add(time.Minute))))
		require.NoError(t, s.Create(ctx, newIntent("c", base.Add(2*time.Minute))))

		intents, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, intents, 3)
		assert.Equal(t, "c", intents[0].ID)
		assert.Equal(t, "b", intents[1].ID)
		assert.Equal(t, "a", intents[2].ID)
	})

	t.Run("FindByID", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newIntent("a", base)))

		pi, err := s.FindByID(ctx, "a")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("25.5").Equal(pi.Amount))
		assert.Equal(t, "Consultoria", pi.Description)
		assert.Equal(t, StatusPending, pi.Status)
		assert.True(t, base.Equal(pi.CreatedAt))

		_, err = s.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrIntentNotFound)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newIntent("a", base)))
		assert.ErrorIs(t, s.Create(ctx, newIntent("a", base)), ErrDuplicateID)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newIntent("a", base)))
		require.NoError(t, s.Create(ctx, newIntent("b", base)))

		require.NoError(t, s.Delete(ctx, "a"))
		require.NoError(t, s.Delete(ctx, "a"))
		require.NoError(t, s.Delete(ctx, "never-existed"))

		intents, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, intents, 1)
		assert.Equal(t, "b", intents[0].ID)
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		s := newStore(t)
		pi := newIntent("a", base)
		require.NoError(t, s.Create(ctx, pi))
		pi.Description = "mutated"

		got, err := s.FindByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Consultoria", got.Description)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestFileStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewFileStore(filepath.Join(t.TempDir(), "payment_intents.json"))
	})
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "payment_intents.json")

	require.NoError(t, NewFileStore(path).Create(ctx, newIntent("a", time.Now().UTC())))

	pi, err := NewFileStore(path).FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", pi.ID)
}

func TestFileStore_ReadsNumericAmounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payment_intents.json")
	doc := `[{"id":"x1","amount":25.5,"description":"Pagamento PIX","createdAt":"2026-10-01T12:00:00Z","status":"pending"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	pi, err := NewFileStore(path).FindByID(context.Background(), "x1")
	require.NoError(t, err)
	assert.Equal(t, "25.50", pi.Amount.StringFixed(2))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payment_intents.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).List(context.Background())
	assert.ErrorIs(t, err, ErrFailedLoadIntents)
}
