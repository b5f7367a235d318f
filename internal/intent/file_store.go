package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pixlink/internal/logger"

	"go.uber.org/zap"
)

// fileStore keeps the whole ordered collection in one JSON array, newest
// first.
type fileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (f *fileStore) Create(_ context.Context, pi *PaymentIntent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	intents, err := f.load()
	if err != nil {
		return err
	}
	if indexOf(intents, pi.ID) >= 0 {
		return ErrDuplicateID
	}

	cp := *pi
	return f.save(append([]*PaymentIntent{&cp}, intents...))
}

func (f *fileStore) List(_ context.Context) ([]*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load()
}

func (f *fileStore) FindByID(_ context.Context, id string) (*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	intents, err := f.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(intents, id)
	if i < 0 {
		return nil, ErrIntentNotFound
	}
	return intents[i], nil
}

func (f *fileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	intents, err := f.load()
	if err != nil {
		return err
	}
	if indexOf(intents, id) < 0 {
		return nil
	}
	return f.save(without(intents, id))
}

func (f *fileStore) load() ([]*PaymentIntent, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*PaymentIntent{}, nil
	}
	if err != nil {
		logger.L().Error("failed reading intent file", zap.String("path", f.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadIntents, err)
	}
	if len(data) == 0 {
		return []*PaymentIntent{}, nil
	}

	var intents []*PaymentIntent
	if err := json.Unmarshal(data, &intents); err != nil {
		logger.L().Error("failed decoding intent file", zap.String("path", f.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadIntents, err)
	}
	return intents, nil
}

// save writes through a temp file so a crash never leaves a truncated document.
func (f *fileStore) save(intents []*PaymentIntent) error {
	data, err := json.MarshalIndent(intents, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveIntents, err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".intents-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveIntents, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrFailedSaveIntents, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveIntents, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		logger.L().Error("failed replacing intent file", zap.String("path", f.path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrFailedSaveIntents, err)
	}
	return nil
}
