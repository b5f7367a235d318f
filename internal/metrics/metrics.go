package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Checkout counts gateway traffic for one or more checkout sessions.
type Checkout struct {
	Submissions    Counter
	SubmitFailures Counter
	Polls          Counter
	PollFailures   Counter
}

type CheckoutSnapshot struct {
	Submissions    uint64
	SubmitFailures uint64
	Polls          uint64
	PollFailures   uint64
}

func (c *Checkout) Snapshot() CheckoutSnapshot {
	return CheckoutSnapshot{
		Submissions:    c.Submissions.Load(),
		SubmitFailures: c.SubmitFailures.Load(),
		Polls:          c.Polls.Load(),
		PollFailures:   c.PollFailures.Load(),
	}
}
