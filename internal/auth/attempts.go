package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	maxFailures    = 5
	lockoutWindow  = 5 * time.Minute
	attemptsSuffix = ".attempts"
)

type attemptState struct {
	Failures int       `json:"failures"`
	Last     time.Time `json:"last"`
}

// attemptLog keeps consecutive login failures on disk so the lockout
// survives across invocations.
type attemptLog struct {
	path string
}

func newAttemptLog(sessionPath string) *attemptLog {
	return &attemptLog{path: sessionPath + attemptsSuffix}
}

// load treats a missing or unreadable file as a clean slate.
func (l *attemptLog) load() attemptState {
	var st attemptState
	b, err := os.ReadFile(l.path)
	if err != nil {
		return st
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return attemptState{}
	}
	return st
}

func (l *attemptLog) lockedOut(now time.Time) bool {
	st := l.load()
	return st.Failures >= maxFailures && now.Sub(st.Last) < lockoutWindow
}

func (l *attemptLog) recordFailure(now time.Time) error {
	st := l.load()
	if st.Failures >= maxFailures {
		// the previous lockout has expired
		st.Failures = 0
	}
	st.Failures++
	st.Last = now

	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.WriteFile(l.path, b, 0o600); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

func (l *attemptLog) reset() error {
	err := os.Remove(l.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
