package intent

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	intents []*PaymentIntent
}

func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Create(_ context.Context, pi *PaymentIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if indexOf(m.intents, pi.ID) >= 0 {
		return ErrDuplicateID
	}

	cp := *pi
	m.intents = append([]*PaymentIntent{&cp}, m.intents...)
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]*PaymentIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneAll(m.intents), nil
}

func (m *memoryStore) FindByID(_ context.Context, id string) (*PaymentIntent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := indexOf(m.intents, id)
	if i < 0 {
		return nil, ErrIntentNotFound
	}
	cp := *m.intents[i]
	return &cp, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intents = without(m.intents, id)
	return nil
}

func indexOf(intents []*PaymentIntent, id string) int {
	for i, pi := range intents {
		if pi.ID == id {
			return i
		}
	}
	return -1
}

func without(intents []*PaymentIntent, id string) []*PaymentIntent {
	out := make([]*PaymentIntent, 0, len(intents))
	for _, pi := range intents {
		if pi.ID != id {
			out = append(out, pi)
		}
	}
	return out
}

func cloneAll(intents []*PaymentIntent) []*PaymentIntent {
	out := make([]*PaymentIntent, len(intents))
	for i, pi := range intents {
		cp := *pi
		out[i] = &cp
	}
	return out
}
