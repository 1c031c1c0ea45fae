package session

import (
	"context"
	"errors"
	"time"

	"visionvend/models"
	"visionvend/services/metrics"

	"go.uber.org/zap"
)

type envelope struct {
	ev    models.Event
	reply chan result
}

type result struct {
	snap models.Snapshot
	err  error
}

var screenLabels = func() []string {
	out := make([]string, 0, len(models.Screens))
	for _, s := range models.Screens {
		out = append(out, string(s))
	}
	return out
}()

// Run consumes events one at a time until ctx is cancelled. Async work started by
// transitions is bounded by ctx and awaited before Run returns.
func (m *Machine) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.ctx = ctx

	m.logger.Info("session: event loop started", zap.String("session", m.session.Token))
	m.publish()

	for {
		select {
		case <-ctx.Done():
			close(m.stopped)
			cancel()
			m.wg.Wait()
			m.logger.Info("session: event loop stopped")
			return nil
		case env := <-m.events:
			err := m.apply(env.ev, env.reply != nil)
			snap := m.publish()
			if env.reply != nil {
				env.reply <- result{snap: snap, err: err}
			}
		}
	}
}

// Submit enqueues an external event and waits for the snapshot it produced.
func (m *Machine) Submit(ctx context.Context, ev models.Event) (models.Snapshot, error) {
	if !ev.Name.Known() {
		return models.Snapshot{}, ErrUnknownEvent
	}
	reply := make(chan result, 1)
	select {
	case m.events <- envelope{ev: ev, reply: reply}:
	case <-m.stopped:
		return models.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.snap, r.err
	case <-m.stopped:
		return models.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	}
}

// Post enqueues an event without waiting for it to be applied. Used for async results
// and simulated hardware; dropped once the loop has stopped.
func (m *Machine) Post(ev models.Event) {
	select {
	case m.events <- envelope{ev: ev}:
	case <-m.stopped:
		m.logger.Debug("session: dropping event after stop", zap.String("event", string(ev.Name)))
	}
}

// Snapshot returns the most recently published snapshot. Safe from any goroutine.
func (m *Machine) Snapshot() models.Snapshot {
	return *m.current.Load()
}

// apply runs one transition and records its effect. external is true for events that
// came through Submit; an invalid transition there is the caller's error. One from Post
// is an orchestration bug and asserts via DPanic, except for hardware reports, which
// are dropped as stale.
func (m *Machine) apply(ev models.Event, external bool) error {
	from := m.session.Screen
	err := m.transition(ev)
	to := m.session.Screen

	var transErr *TransitionError
	if !external && ev.Name.Hardware() && errors.As(err, &transErr) {
		// hardware reports race the customer; one that lands off its screen is stale
		err = ErrSuperseded
	}
	switch {
	case err == nil:
		metrics.TransitionsTotal.WithLabelValues(string(from), string(ev.Name), string(to)).Inc()
		m.recordOutcome(ev)
		m.logger.Info("session: event applied",
			zap.String("event", string(ev.Name)), zap.String("from", string(from)), zap.String("to", string(to)))
	case errors.Is(err, ErrSuperseded):
		metrics.RejectedEventsTotal.WithLabelValues(string(ev.Name), metrics.ReasonSuperseded).Inc()
		m.logger.Debug("session: discarding stale result",
			zap.String("event", string(ev.Name)), zap.String("requestId", ev.RequestID))
	case errors.Is(err, ErrAlreadyPending), errors.Is(err, ErrPaymentPending):
		metrics.RejectedEventsTotal.WithLabelValues(string(ev.Name), metrics.ReasonAlreadyPending).Inc()
		m.logger.Info("session: request already pending", zap.String("event", string(ev.Name)))
	case errors.As(err, &transErr):
		metrics.RejectedEventsTotal.WithLabelValues(string(ev.Name), metrics.ReasonInvalidTransition).Inc()
		if external {
			m.logger.Error("session: invalid transition", zap.Error(err))
		} else {
			m.logger.DPanic("session: invalid transition from internal source", zap.Error(err))
		}
	default:
		metrics.RejectedEventsTotal.WithLabelValues(string(ev.Name), metrics.ReasonGuard).Inc()
		m.logger.Info("session: event rejected", zap.String("event", string(ev.Name)), zap.Error(err))
	}
	return err
}

func (m *Machine) recordOutcome(ev models.Event) {
	switch ev.Name {
	case models.EventUnlockSuccess, models.EventUnlockFailure:
		status := string(models.OutcomeSuccess)
		if m.session.Screen != models.ScreenTransaction {
			status = string(models.OutcomeFailure)
		}
		metrics.UnlockOutcomesTotal.WithLabelValues(status).Inc()
	case models.EventPaymentSuccess:
		metrics.PaymentOutcomesTotal.WithLabelValues(string(models.StagePersistence), string(models.OutcomeSuccess)).Inc()
	case models.EventPaymentFailure:
		metrics.PaymentOutcomesTotal.WithLabelValues(string(ev.Stage), string(models.OutcomeFailure)).Inc()
	}
}

func (m *Machine) publish() models.Snapshot {
	m.version++
	snap := m.snapshot()
	m.current.Store(&snap)
	metrics.SetScreen(string(snap.Screen), screenLabels)
	for _, o := range m.observers {
		o.Observe(snap)
	}
	return snap
}

func (m *Machine) snapshot() models.Snapshot {
	var lastPayment *models.PaymentOutcome
	if m.session.LastPayment != nil {
		p := *m.session.LastPayment
		lastPayment = &p
	}
	return models.Snapshot{
		Screen:         m.session.Screen,
		Transaction:    m.session.Transaction.Clone(),
		StatusBoard:    m.board.Snapshot(),
		Message:        m.session.Message,
		Authenticated:  m.authenticated,
		UnlockPending:  m.session.PendingUnlockRequestID != "",
		PaymentPending: m.session.PendingPaymentRequestID != "",
		LastPayment:    lastPayment,
		Version:        m.version,
		TakenAt:        time.Now().UTC(),
	}
}
