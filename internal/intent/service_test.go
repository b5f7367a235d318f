package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, pi *PaymentIntent) error {
	args := m.Called(ctx, pi)
	return args.Error(0)
}

func (m *MockStore) List(ctx context.Context) ([]*PaymentIntent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*PaymentIntent), args.Error(1)
}

func (m *MockStore) FindByID(ctx context.Context, id string) (*PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestService_Create_RejectsBelowMinimum(t *testing.T) {
	amounts := []string{"9.99", "9,999", "0", "-10", "", "abc", "10..0"}

	for _, amount := range amounts {
		t.Run(amount, func(t *testing.T) {
			store := new(MockStore)
			svc := NewService(store, true, "")

			pi, err := svc.Create(context.Background(), CreateIntentInput{Amount: amount})

			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Nil(t, pi)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_NothingPersistedOnRejection(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, true, "")

	_, err := svc.Create(context.Background(), CreateIntentInput{Amount: "9.99"})
	require.ErrorIs(t, err, ErrInvalidAmount)

	intents, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestParseAmount_MixedSeparators(t *testing.T) {
	for _, amount := range []string{"1,000.50", "1,000,00", "10,5.0"} {
		t.Run(amount, func(t *testing.T) {
			_, err := ParseAmount(amount)
			assert.ErrorIs(t, err, ErrAmountFormat)
		})
	}

	got, err := ParseAmount("10.000,5")
	require.NoError(t, err)
	assert.Equal(t, "10000.50", got.StringFixed(2))
}

func TestService_Create_MissingAPIKey(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, false, "")

	assert.False(t, svc.CreationEnabled())

	_, err := svc.Create(context.Background(), CreateIntentInput{Amount: "50"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_PendingAndUnique(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, true, "")
	ctx := context.Background()

	seen := map[string]bool{}
	for _, amount := range []string{"10", "10.00", "25.50", "25,50", "1.234,56", "999999.99"} {
		pi, err := svc.Create(ctx, CreateIntentInput{Amount: amount, Description: "Consultoria"})
		require.NoError(t, err)

		assert.Equal(t, StatusPending, pi.Status)
		assert.False(t, seen[pi.ID], "duplicate id %s", pi.ID)
		assert.True(t, pi.Amount.GreaterThanOrEqual(MinAmount))
		seen[pi.ID] = true
	}

	intents, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, intents, 6)
}

func TestService_Create_Fields(t *testing.T) {
	store := new(MockStore)
	s := NewService(store, true, "").(*service)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("BRT", -3*3600))
	s.now = func() time.Time { return fixed }
	s.newID = func() string { return "intent-1" }

	store.On("Create", mock.Anything, mock.MatchedBy(func(pi *PaymentIntent) bool {
		return pi.ID == "intent-1" && pi.Description == DefaultDescription
	})).Return(nil)

	pi, err := s.Create(context.Background(), CreateIntentInput{Amount: " 25,5 ", Description: "   "})
	require.NoError(t, err)

	assert.Equal(t, "intent-1", pi.ID)
	assert.True(t, decimal.RequireFromString("25.50").Equal(pi.Amount))
	assert.Equal(t, DefaultDescription, pi.Description)
	assert.Equal(t, fixed.UTC(), pi.CreatedAt)
	store.AssertExpectations(t)
}

func TestService_Create_RegeneratesOnCollision(t *testing.T) {
	store := new(MockStore)
	s := NewService(store, true, "").(*service)

	ids := []string{"dup", "fresh"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	store.On("Create", mock.Anything, mock.MatchedBy(func(pi *PaymentIntent) bool { return pi.ID == "dup" })).Return(ErrDuplicateID).Once()
	store.On("Create", mock.Anything, mock.MatchedBy(func(pi *PaymentIntent) bool { return pi.ID == "fresh" })).Return(nil).Once()

	pi, err := s.Create(context.Background(), CreateIntentInput{Amount: "10"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", pi.ID)
	store.AssertExpectations(t)
}

func TestService_Create_StoreError(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, true, "")
	store.On("Create", mock.Anything, mock.Anything).Return(ErrFailedCreateIntent)

	_, err := svc.Create(context.Background(), CreateIntentInput{Amount: "10"})
	assert.ErrorIs(t, err, ErrFailedCreateIntent)
}

func TestService_GetListDelete(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, true, "https://pay.example.com/#/checkout/")
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		store.On("FindByID", mock.Anything, "abc").Return(&PaymentIntent{ID: "abc"}, nil).Once()

		pi, err := svc.Get(ctx, " abc ")
		assert.NoError(t, err)
		assert.Equal(t, "abc", pi.ID)
	})

	t.Run("GetEmptyID", func(t *testing.T) {
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIntentNotFound)
	})

	t.Run("List", func(t *testing.T) {
		store.On("List", mock.Anything).Return([]*PaymentIntent{{ID: "b"}, {ID: "a"}}, nil).Once()

		intents, err := svc.List(ctx)
		assert.NoError(t, err)
		assert.Len(t, intents, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		store.On("Delete", mock.Anything, "abc").Return(nil).Once()
		assert.NoError(t, svc.Delete(ctx, "abc"))
	})

	t.Run("DeleteError", func(t *testing.T) {
		store.On("Delete", mock.Anything, "boom").Return(errors.New("db down")).Once()
		assert.Error(t, svc.Delete(ctx, "boom"))
	})

	t.Run("CheckoutURL", func(t *testing.T) {
		assert.Equal(t, "https://pay.example.com/#/checkout/abc", svc.CheckoutURL("abc"))
	})
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCompleted))
	assert.True(t, CanTransition(StatusPending, StatusExpired))
	assert.False(t, CanTransition(StatusPending, StatusPending))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusExpired, StatusCompleted))
	assert.False(t, CanTransition(StatusCancelled, StatusPending))
}
