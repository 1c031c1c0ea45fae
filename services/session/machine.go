// Package session is the kiosk orchestration core: a finite-state machine that sequences
// screens from asynchronous events and keeps the status board current.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"visionvend/models"
	"visionvend/services/payment"
	"visionvend/services/status"
	"visionvend/services/unlock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultQueueSize = 64

// Observer receives every published snapshot. Observe is called from the event loop
// and must not block.
type Observer interface {
	Observe(snap models.Snapshot)
}

// Options tunes a Machine.
type Options struct {
	// Authenticated marks the kiosk customer as pre-authenticated.
	Authenticated bool
	QueueSize     int
	Observers     []Observer
	// NewID generates session tokens and request ids. Defaults to uuid.
	NewID func() string
}

// Machine owns the Session and the status board. All mutation happens on the goroutine
// running Run; other goroutines talk to it through Submit and Post.
type Machine struct {
	logger    *zap.Logger
	unlocker  unlock.Unlocker
	payments  payment.Saver
	newID     func() string
	observers []Observer

	// loop-owned state
	session       models.Session
	board         *status.Board
	authenticated bool
	version       uint64
	ctx           context.Context
	wg            sync.WaitGroup

	events  chan envelope
	stopped chan struct{}
	running atomic.Bool
	current atomic.Pointer[models.Snapshot]
}

// NewMachine builds a Machine on the home screen. Call Run to start its event loop.
func NewMachine(unlocker unlock.Unlocker, payments payment.Saver, logger *zap.Logger, opts Options) *Machine {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	m := &Machine{
		logger:        logger,
		unlocker:      unlocker,
		payments:      payments,
		newID:         opts.NewID,
		observers:     opts.Observers,
		board:         status.NewBoard(),
		authenticated: opts.Authenticated,
		ctx:           context.Background(),
		events:        make(chan envelope, opts.QueueSize),
		stopped:       make(chan struct{}),
	}
	m.session = models.NewSession(m.newID())
	snap := m.snapshot()
	m.current.Store(&snap)
	return m
}

// transition applies ev to the loop-owned state.
func (m *Machine) transition(ev models.Event) error {
	switch ev.Name {
	case models.EventCancel:
		return m.cancel()
	case models.EventTrainingStarted:
		m.board.Set(models.SubsystemTraining, models.StatusInfo)
		return nil
	case models.EventTrainingFinished:
		if ev.Success {
			m.board.Set(models.SubsystemTraining, models.StatusSuccess)
		} else {
			m.board.Set(models.SubsystemTraining, models.StatusError)
		}
		return nil
	case models.EventUnlockSuccess, models.EventUnlockFailure:
		return m.unlockResult(ev)
	case models.EventPaymentSuccess, models.EventPaymentFailure:
		return m.paymentResult(ev)
	case models.EventItemsTracked:
		return m.itemsTracked(ev)
	case models.EventDoorOpened:
		return m.doorOpened(ev)
	}

	switch m.session.Screen {
	case models.ScreenHome:
		switch ev.Name {
		case models.EventScanTrigger:
			return m.startUnlock()
		case models.EventNeedsSignIn:
			if m.authenticated {
				return ErrGuardRejected
			}
			m.session.Screen = models.ScreenSignIn
			return nil
		case models.EventAcknowledge:
			// the session already ended
			return nil
		}
	case models.ScreenUnlocking:
		if ev.Name == models.EventScanTrigger {
			return ErrAlreadyPending
		}
	case models.ScreenSignIn:
		if ev.Name == models.EventSignInSuccess {
			m.authenticated = true
			m.session.Screen = models.ScreenPaymentSetup
			return nil
		}
	case models.ScreenPaymentSetup:
		if ev.Name == models.EventSubmitPayment {
			return m.startPayment(ev)
		}
	case models.ScreenTransaction:
		if ev.Name == models.EventClose {
			m.session.Screen = models.ScreenReceipt
			return nil
		}
	case models.ScreenReceipt:
		if ev.Name == models.EventAcknowledge {
			m.resetSession()
			m.board.Reset()
			return nil
		}
	}
	return &TransitionError{Screen: m.session.Screen, Event: ev.Name}
}

func (m *Machine) startUnlock() error {
	if m.session.PendingUnlockRequestID != "" {
		return ErrAlreadyPending
	}
	requestID := m.newID()
	token := m.session.Token
	m.session.PendingUnlockRequestID = requestID
	m.session.Screen = models.ScreenUnlocking
	m.session.Message = ""
	m.board.Set(models.SubsystemLock, models.StatusInfo)

	m.goAsync(func(ctx context.Context) {
		outcome, err := m.unlocker.RequestUnlock(ctx, token, requestID)
		switch {
		case errors.Is(err, ErrSuperseded):
			m.logger.Debug("session: unlock outcome superseded", zap.String("requestId", requestID))
			return
		case err != nil:
			m.logger.Warn("session: unlock request rejected", zap.String("requestId", requestID), zap.Error(err))
			m.Post(models.Event{Name: models.EventUnlockFailure, RequestID: requestID, Message: models.MessageAlreadyPending})
			return
		}
		if outcome.Succeeded() {
			m.Post(models.Event{Name: models.EventUnlockSuccess, RequestID: requestID, TransactionID: outcome.TransactionID})
			return
		}
		m.Post(models.Event{Name: models.EventUnlockFailure, RequestID: requestID, Message: outcome.Message})
	})
	return nil
}

func (m *Machine) unlockResult(ev models.Event) error {
	pending := m.session.PendingUnlockRequestID
	if pending == "" || ev.RequestID != pending {
		return ErrSuperseded
	}
	m.session.PendingUnlockRequestID = ""

	if ev.Name == models.EventUnlockSuccess && ev.TransactionID == "" {
		m.logger.Warn("session: unlock success without transaction id", zap.Error(ErrMalformedResponse))
		m.failUnlock(models.MessageMalformedResponse)
		return nil
	}
	if ev.Name == models.EventUnlockFailure {
		msg := ev.Message
		if msg == "" {
			msg = "unlock_failed"
		}
		m.failUnlock(msg)
		return nil
	}

	m.session.Screen = models.ScreenTransaction
	m.session.Transaction = models.NewTransaction(ev.TransactionID)
	m.session.Message = ""
	m.board.Set(models.SubsystemLock, models.StatusSuccess)
	m.board.Set(models.SubsystemDoor, models.StatusInfo)
	return nil
}

func (m *Machine) failUnlock(message string) {
	m.session.Screen = models.ScreenHome
	m.session.Transaction = models.NewTransaction("")
	m.session.Message = message
	m.board.Set(models.SubsystemLock, models.StatusError)
}

func (m *Machine) startPayment(ev models.Event) error {
	if m.session.PendingPaymentRequestID != "" {
		return ErrPaymentPending
	}
	if ev.Card == nil {
		return ErrGuardRejected
	}
	requestID := m.newID()
	card := *ev.Card
	m.session.PendingPaymentRequestID = requestID
	m.session.LastPayment = nil
	m.session.Message = ""

	m.goAsync(func(ctx context.Context) {
		outcome := m.payments.Save(ctx, card)
		if outcome.Succeeded() {
			m.Post(models.Event{Name: models.EventPaymentSuccess, RequestID: requestID, Stage: outcome.Stage})
			return
		}
		m.Post(models.Event{
			Name:      models.EventPaymentFailure,
			RequestID: requestID,
			Stage:     outcome.Stage,
			Message:   outcome.Detail,
		})
	})
	return nil
}

// paymentResult accepts results of our own payment requests, and externally driven
// results (empty request id) when nothing is pending.
func (m *Machine) paymentResult(ev models.Event) error {
	if ev.RequestID != m.session.PendingPaymentRequestID {
		return ErrSuperseded
	}
	if m.session.Screen != models.ScreenPaymentSetup {
		return &TransitionError{Screen: m.session.Screen, Event: ev.Name}
	}
	m.session.PendingPaymentRequestID = ""

	if ev.Name == models.EventPaymentSuccess {
		m.session.Screen = models.ScreenHome
		m.session.Message = ""
		m.session.LastPayment = nil
		return nil
	}
	m.session.Message = ev.Message
	m.session.LastPayment = &models.PaymentOutcome{
		Stage:  ev.Stage,
		Status: models.OutcomeFailure,
		Detail: ev.Message,
	}
	return nil
}

// staleHardware reports whether a hardware event tagged with a transaction id belongs
// to a transaction that is no longer on screen.
func (m *Machine) staleHardware(ev models.Event) bool {
	if ev.TransactionID == "" {
		return false
	}
	return m.session.Screen != models.ScreenTransaction || ev.TransactionID != m.session.Transaction.ID
}

func (m *Machine) doorOpened(ev models.Event) error {
	if m.staleHardware(ev) {
		return ErrSuperseded
	}
	if m.session.Screen != models.ScreenTransaction {
		return &TransitionError{Screen: m.session.Screen, Event: ev.Name}
	}
	m.board.Set(models.SubsystemDoor, models.StatusSuccess)
	return nil
}

func (m *Machine) itemsTracked(ev models.Event) error {
	if m.staleHardware(ev) {
		return ErrSuperseded
	}
	if m.session.Screen != models.ScreenTransaction {
		return &TransitionError{Screen: m.session.Screen, Event: ev.Name}
	}
	if ev.Total.IsNegative() {
		return ErrGuardRejected
	}

	items := make([]string, len(ev.Items))
	copy(items, ev.Items)
	m.session.Transaction.Items = items
	m.session.Transaction.Total = ev.Total
	if ev.Complete {
		m.board.Set(models.SubsystemTransaction, models.StatusSuccess)
	} else {
		m.board.Set(models.SubsystemTransaction, models.StatusInfo)
	}
	return nil
}

// cancel ends the session from any screen. A pending unlock is superseded so its late
// outcome is dropped; training is owner-side and keeps its status.
func (m *Machine) cancel() error {
	s := m.session
	if s.Screen == models.ScreenHome && s.PendingUnlockRequestID == "" && s.PendingPaymentRequestID == "" {
		return nil
	}

	unlocking := s.PendingUnlockRequestID != ""
	if unlocking {
		m.unlocker.Cancel(s.Token, s.PendingUnlockRequestID)
	}
	m.resetSession()
	m.board.ResetExcept(models.SubsystemTraining)
	if unlocking {
		m.board.Set(models.SubsystemLock, models.StatusWarning)
		m.session.Message = models.MessageCancelled
	}
	return nil
}

func (m *Machine) resetSession() {
	m.session = models.NewSession(m.newID())
}

func (m *Machine) goAsync(fn func(ctx context.Context)) {
	ctx := m.ctx
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn(ctx)
	}()
}
