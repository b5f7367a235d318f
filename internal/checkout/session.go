package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"pixlink/internal/intent"
	"pixlink/internal/logger"
	"pixlink/internal/metrics"
	"pixlink/internal/pixgo"
	"pixlink/internal/utils"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 5 * time.Second

	// StateTopic receives a View after every state or status change.
	StateTopic = "checkout:state"
)

type Deps struct {
	Store   intent.Store
	Gateway pixgo.Gateway

	// PaymentsDisabled refuses every submission before the gateway is
	// contacted; set when no API key is configured.
	PaymentsDisabled bool

	// Optional.
	Bus          EventBus.Bus
	PollInterval time.Duration
	Metrics      *metrics.Checkout
}

// View is a read-only snapshot for rendering. Amount always comes from the
// intent, never from the gateway.
type View struct {
	SessionID     string
	State         State
	IntentID      string
	Description   string
	Amount        decimal.Decimal
	AmountDisplay string
	PaymentID     string
	QRCode        string
	QRImageURL    string
	ExpiresAt     string
	Status        pixgo.PaymentStatus
	Error         string
}

// Session drives one payment intent from the payer form to settlement.
// Close (or cancelling the ctx given to Open) stops any polling.
type Session struct {
	id       string
	store    intent.Store
	gateway  pixgo.Gateway
	bus      EventBus.Bus
	interval time.Duration
	metrics  *metrics.Checkout
	disabled bool

	ctx    context.Context
	cancel context.CancelFunc

	// pubMu orders publishes so the last view delivered is the newest one.
	pubMu sync.Mutex

	mu       sync.Mutex
	state    State
	intent   *intent.PaymentIntent
	payment  *pixgo.PaymentData
	status   pixgo.PaymentStatus
	errMsg   string
	closed   bool
	pollStop context.CancelFunc
	pollDone chan struct{}
	settled  chan struct{}
	awaiting *metrics.Timer
}

// Open loads the intent and returns a session in StateIdle. An unknown id
// yields a session in StateNotFound together with intent.ErrIntentNotFound;
// the gateway is not contacted in that case.
func Open(ctx context.Context, deps Deps, intentID string) (*Session, error) {
	interval := deps.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	m := deps.Metrics
	if m == nil {
		m = &metrics.Checkout{}
	}

	id := uuid.NewString()
	sessCtx, cancel := context.WithCancel(logger.WithSessionID(ctx, id))

	s := &Session{
		id:       id,
		store:    deps.Store,
		gateway:  deps.Gateway,
		bus:      deps.Bus,
		interval: interval,
		metrics:  m,
		disabled: deps.PaymentsDisabled,
		ctx:      sessCtx,
		cancel:   cancel,
		settled:  make(chan struct{}),
	}

	log := logger.FromCtx(sessCtx).With(zap.String("intent_id", intentID))

	pi, err := deps.Store.FindByID(sessCtx, intentID)
	if errors.Is(err, intent.ErrIntentNotFound) {
		log.Warn("checkout opened for unknown intent")
		s.mu.Lock()
		s.state = StateNotFound
		s.errMsg = intent.ErrIntentNotFound.Error()
		s.mu.Unlock()
		s.publish()
		return s, err
	}
	if err != nil {
		cancel()
		log.Error("failed loading intent for checkout", zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.intent = pi
	s.state = StateIdle
	s.mu.Unlock()

	log.Info("checkout session opened")
	s.publish()
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// Done is closed once the session reaches StateSettled and the settled view
// has been published.
func (s *Session) Done() <-chan struct{} {
	return s.settled
}

func (s *Session) Metrics() metrics.CheckoutSnapshot {
	return s.metrics.Snapshot()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID: s.id,
		State:     s.state,
		Status:    s.status,
		Error:     s.errMsg,
	}
	if s.intent != nil {
		v.IntentID = s.intent.ID
		v.Description = s.intent.Description
		v.Amount = s.intent.Amount
		v.AmountDisplay = utils.FormatBRL(s.intent.Amount)
	}
	if s.payment != nil {
		v.PaymentID = s.payment.PaymentID
		v.QRCode = s.payment.QRCode
		v.QRImageURL = s.payment.QRImageURL
		v.ExpiresAt = s.payment.ExpiresAt
	}
	return v
}

// Submit sends the payer form to the gateway. It is accepted only from
// StateIdle and StateSubmitError; a second call while a submission is in
// flight or a payment is awaited returns ErrSubmissionInProgress.
func (s *Session) Submit(ctx context.Context, c Customer) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrSessionClosed
	case s.state == StateNotFound:
		s.mu.Unlock()
		return intent.ErrIntentNotFound
	case s.state == StateSettled:
		s.mu.Unlock()
		return ErrAlreadySettled
	case !s.state.CanSubmit():
		s.mu.Unlock()
		return ErrSubmissionInProgress
	case s.disabled:
		s.mu.Unlock()
		return intent.ErrMissingAPIKey
	}

	c = c.normalize()
	if err := c.validate(); err != nil {
		s.mu.Unlock()
		return err
	}

	pi := s.intent
	s.state = StateSubmitting
	s.errMsg = ""
	s.mu.Unlock()
	s.publish()

	callCtx, cancelCall := context.WithCancel(logger.WithSessionID(ctx, s.id))
	stopAfter := context.AfterFunc(s.ctx, cancelCall)
	defer stopAfter()
	defer cancelCall()

	log := logger.FromCtx(callCtx).With(zap.String("intent_id", pi.ID))

	s.metrics.Submissions.Inc()
	resp, err := s.gateway.CreatePayment(callCtx, pixgo.CreateRequest{
		Amount:      json.Number(pi.Amount.StringFixed(2)),
		Description: pi.Description,
		Customer:    c.toGateway(),
		ExternalID:  pi.ID,
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}

	if err != nil {
		s.metrics.SubmitFailures.Inc()
		s.state = StateSubmitError
		s.errMsg = transportMessage(err)
		s.mu.Unlock()
		log.Error("payment submission failed", zap.Error(err))
		s.publish()
		return err
	}

	if !resp.Success {
		s.metrics.SubmitFailures.Inc()
		msg := resp.Message
		if msg == "" {
			msg = fallbackBusinessMessage
		}
		s.state = StateSubmitError
		s.errMsg = msg
		s.mu.Unlock()
		log.Warn("payment rejected by gateway", zap.String("message", msg))
		s.publish()
		return &GatewayError{Message: msg}
	}

	data := resp.Data
	s.payment = &data
	s.status = pixgo.StatusPending
	s.state = StateAwaitingPayment
	s.awaiting = metrics.StartTimer()
	s.startPollingLocked()
	s.mu.Unlock()

	log.Info("awaiting payment", zap.String("payment_id", data.PaymentID))
	s.publish()
	return nil
}

// Close tears the session down and waits for the poller to exit. It must not
// be called from a StateTopic handler.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.pollStop != nil {
		s.pollStop()
	}
	done := s.pollDone
	s.mu.Unlock()

	s.cancel()
	if done != nil {
		<-done
	}
	logger.FromCtx(s.ctx).Debug("checkout session closed")
}

func (s *Session) startPollingLocked() {
	pollCtx, stop := context.WithCancel(s.ctx)
	done := make(chan struct{})
	s.pollStop = stop
	s.pollDone = done

	go s.poll(pollCtx, s.payment.PaymentID, done)
}

// poll runs on its own goroutine; a tick is only handled after the previous
// status call returned, so requests for one payment never overlap.
func (s *Session) poll(ctx context.Context, paymentID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.pollOnce(ctx, paymentID) {
				return
			}
		}
	}
}

// pollOnce reports whether polling should stop. Transport errors are logged
// and polling goes on, without any cap.
func (s *Session) pollOnce(ctx context.Context, paymentID string) bool {
	log := logger.FromCtx(ctx).With(zap.String("payment_id", paymentID))

	s.metrics.Polls.Inc()
	resp, err := s.gateway.CheckStatus(ctx, paymentID)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		s.metrics.PollFailures.Inc()
		log.Warn("status check failed", zap.Error(err))
		return false
	}
	if !resp.Success {
		log.Debug("status check unsuccessful", zap.String("message", resp.Message))
		return false
	}

	return s.applyStatus(resp.Data.Status)
}

// applyStatus records a gateway status. Once settled nothing changes.
func (s *Session) applyStatus(status pixgo.PaymentStatus) bool {
	s.mu.Lock()
	if s.state != StateAwaitingPayment {
		settled := s.state == StateSettled
		s.mu.Unlock()
		return settled
	}
	if status == "" || !intent.CanTransition(intent.Status(s.status), intent.Status(status)) {
		s.mu.Unlock()
		return false
	}

	s.status = status
	settled := status.IsTerminal()
	if settled {
		s.state = StateSettled
		s.pollStop()
	}
	elapsed := s.awaiting.Duration()
	s.mu.Unlock()

	log := logger.FromCtx(s.ctx).With(zap.String("status", string(status)))
	if settled {
		m := s.metrics.Snapshot()
		log.Info("payment settled",
			zap.Duration("waited", elapsed),
			zap.Uint64("polls", m.Polls),
			zap.Uint64("poll_failures", m.PollFailures),
		)
	} else {
		log.Info("payment status changed")
	}

	s.publish()
	if settled {
		close(s.settled)
	}
	return settled
}

// publish sends a fresh View, taken under pubMu, so a slow publisher can
// never deliver an older state after a newer one.
func (s *Session) publish() {
	if s.bus == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.bus.Publish(StateTopic, s.View())
}

func transportMessage(err error) string {
	var te *pixgo.TransportError
	if errors.As(err, &te) {
		return te.Message()
	}
	if err.Error() != "" {
		return err.Error()
	}
	return fallbackTransportMessage
}
