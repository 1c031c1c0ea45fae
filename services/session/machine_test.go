package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"visionvend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeUnlocker struct {
	mu        sync.Mutex
	outcome   models.UnlockOutcome
	block     chan struct{}
	requests  []string
	cancelled map[string]bool
}

func newFakeUnlocker(outcome models.UnlockOutcome) *fakeUnlocker {
	return &fakeUnlocker{outcome: outcome, cancelled: map[string]bool{}}
}

func (f *fakeUnlocker) RequestUnlock(ctx context.Context, _, requestID string) (models.UnlockOutcome, error) {
	f.mu.Lock()
	f.requests = append(f.requests, requestID)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return models.UnlockOutcome{Status: models.OutcomeFailure, Message: models.MessageNetworkError}, nil
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelled[requestID] {
		return models.UnlockOutcome{}, ErrSuperseded
	}
	return f.outcome, nil
}

func (f *fakeUnlocker) Cancel(_, requestID string) {
	f.mu.Lock()
	f.cancelled[requestID] = true
	f.mu.Unlock()
}

func (f *fakeUnlocker) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeSaver struct {
	mu       sync.Mutex
	outcomes []models.PaymentOutcome
	block    chan struct{}
}

func (f *fakeSaver) Save(ctx context.Context, _ models.CardInput) models.PaymentOutcome {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.outcomes[0]
	if len(f.outcomes) > 1 {
		f.outcomes = f.outcomes[1:]
	}
	return out
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func startMachine(t *testing.T, u *fakeUnlocker, s *fakeSaver, opts Options) *Machine {
	t.Helper()
	if s == nil {
		s = &fakeSaver{outcomes: []models.PaymentOutcome{{Stage: models.StagePersistence, Status: models.OutcomeSuccess}}}
	}
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	m := NewMachine(u, s, zap.NewNop(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m
}

func submit(t *testing.T, m *Machine, ev models.Event) models.Snapshot {
	t.Helper()
	snap, err := m.Submit(context.Background(), ev)
	require.NoError(t, err)
	return snap
}

func waitForScreen(t *testing.T, m *Machine, screen models.Screen) models.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.Snapshot().Screen == screen
	}, 2*time.Second, 5*time.Millisecond, "screen never became %s", screen)
	return m.Snapshot()
}

func ev(name models.EventName) models.Event {
	return models.Event{Name: name}
}

func TestScanTriggerUnlockSuccess(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "abc123"})
	m := startMachine(t, u, nil, Options{})

	snap := submit(t, m, ev(models.EventScanTrigger))
	assert.Contains(t, []models.Screen{models.ScreenUnlocking, models.ScreenTransaction}, snap.Screen)

	snap = waitForScreen(t, m, models.ScreenTransaction)
	assert.Equal(t, "abc123", snap.Transaction.ID)
	assert.Empty(t, snap.Transaction.Items)
	assert.True(t, snap.Transaction.Total.IsZero())
	assert.Equal(t, models.StatusSuccess, snap.StatusBoard[models.SubsystemLock])
	assert.Equal(t, models.StatusInfo, snap.StatusBoard[models.SubsystemDoor])
	assert.False(t, snap.UnlockPending)
	assert.Empty(t, snap.Message)
}

func TestScanTriggerUnlockFailure(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeFailure, Message: "door_jammed"})
	m := startMachine(t, u, nil, Options{})

	submit(t, m, ev(models.EventScanTrigger))

	require.Eventually(t, func() bool {
		return m.Snapshot().StatusBoard[models.SubsystemLock] == models.StatusError
	}, 2*time.Second, 5*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, models.ScreenHome, snap.Screen)
	assert.Equal(t, "door_jammed", snap.Message)
	assert.False(t, snap.UnlockPending)
}

func TestUnlockSuccessWithoutTransactionIDIsMalformed(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess})
	m := startMachine(t, u, nil, Options{})

	submit(t, m, ev(models.EventScanTrigger))

	require.Eventually(t, func() bool {
		return m.Snapshot().Message == models.MessageMalformedResponse
	}, 2*time.Second, 5*time.Millisecond)
	snap := m.Snapshot()
	assert.Equal(t, models.ScreenHome, snap.Screen)
	assert.Equal(t, models.StatusError, snap.StatusBoard[models.SubsystemLock])
}

func TestScanTriggerWhilePendingFailsFast(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "abc"})
	u.block = make(chan struct{})
	m := startMachine(t, u, nil, Options{})

	snap := submit(t, m, ev(models.EventScanTrigger))
	require.Equal(t, models.ScreenUnlocking, snap.Screen)
	require.True(t, snap.UnlockPending)

	snap, err := m.Submit(context.Background(), ev(models.EventScanTrigger))
	assert.ErrorIs(t, err, ErrAlreadyPending)
	assert.Equal(t, models.ScreenUnlocking, snap.Screen)

	require.Eventually(t, func() bool { return u.requestCount() == 1 }, time.Second, 5*time.Millisecond)
	close(u.block)
	waitForScreen(t, m, models.ScreenTransaction)
	assert.Equal(t, 1, u.requestCount())
}

func TestCancelDiscardsLateUnlockResult(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "late"})
	u.block = make(chan struct{})
	m := startMachine(t, u, nil, Options{})

	// id-1 is the session token, id-2 the unlock request.
	submit(t, m, ev(models.EventScanTrigger))
	snap := submit(t, m, ev(models.EventCancel))

	assert.Equal(t, models.ScreenHome, snap.Screen)
	assert.False(t, snap.UnlockPending)
	assert.Equal(t, models.StatusWarning, snap.StatusBoard[models.SubsystemLock])
	assert.Equal(t, models.MessageCancelled, snap.Message)

	stale, err := m.Submit(context.Background(), models.Event{
		Name:          models.EventUnlockSuccess,
		RequestID:     "id-2",
		TransactionID: "late",
	})
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, snap.Screen, stale.Screen)
	assert.Equal(t, snap.StatusBoard, stale.StatusBoard)
	assert.Equal(t, snap.Transaction, stale.Transaction)

	close(u.block)
	time.Sleep(50 * time.Millisecond)
	final := m.Snapshot()
	assert.Equal(t, models.ScreenHome, final.Screen)
	assert.Empty(t, final.Transaction.ID)
	assert.Equal(t, models.StatusWarning, final.StatusBoard[models.SubsystemLock])
}

func TestUnlockResultWithMismatchedIDIsNoop(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "abc"})
	u.block = make(chan struct{})
	m := startMachine(t, u, nil, Options{})

	before := submit(t, m, ev(models.EventScanTrigger))

	after, err := m.Submit(context.Background(), models.Event{
		Name:          models.EventUnlockSuccess,
		RequestID:     "someone-else",
		TransactionID: "forged",
	})
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, before.Screen, after.Screen)
	assert.Equal(t, before.StatusBoard, after.StatusBoard)
	assert.True(t, after.UnlockPending)

	close(u.block)
}

func TestFullPurchaseThenAcknowledge(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx-9"})
	m := startMachine(t, u, nil, Options{})

	submit(t, m, ev(models.EventScanTrigger))
	waitForScreen(t, m, models.ScreenTransaction)

	snap := submit(t, m, ev(models.EventDoorOpened))
	assert.Equal(t, models.StatusSuccess, snap.StatusBoard[models.SubsystemDoor])

	snap = submit(t, m, models.Event{Name: models.EventItemsTracked, Items: []string{"coke"}, Total: decimal.RequireFromString("1.50")})
	assert.Equal(t, models.StatusInfo, snap.StatusBoard[models.SubsystemTransaction])

	snap = submit(t, m, models.Event{
		Name:          models.EventItemsTracked,
		TransactionID: "tx-9",
		Items:         []string{"coke", "chips"},
		Total:         decimal.RequireFromString("3.25"),
		Complete:      true,
	})
	assert.Equal(t, models.StatusSuccess, snap.StatusBoard[models.SubsystemTransaction])
	assert.Equal(t, []string{"coke", "chips"}, snap.Transaction.Items)

	snap = submit(t, m, ev(models.EventClose))
	require.Equal(t, models.ScreenReceipt, snap.Screen)
	assert.True(t, decimal.RequireFromString("3.25").Equal(snap.Transaction.Total))

	// tracking results after close do not touch the frozen receipt
	late, err := m.Submit(context.Background(), models.Event{
		Name:          models.EventItemsTracked,
		TransactionID: "tx-9",
		Items:         []string{"coke", "chips", "gum"},
		Total:         decimal.RequireFromString("4.00"),
		Complete:      true,
	})
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, []string{"coke", "chips"}, late.Transaction.Items)

	snap = submit(t, m, ev(models.EventAcknowledge))
	assert.Equal(t, models.ScreenHome, snap.Screen)
	assert.Equal(t, "", snap.Transaction.ID)
	assert.Empty(t, snap.Transaction.Items)
	assert.True(t, snap.Transaction.Total.IsZero())
	for _, s := range models.Subsystems {
		assert.Equal(t, models.StatusIdle, snap.StatusBoard[s], "subsystem %s", s)
	}

	again := submit(t, m, ev(models.EventAcknowledge))
	assert.Equal(t, models.ScreenHome, again.Screen)
}

func TestSnapshotIsImmutable(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx"})
	m := startMachine(t, u, nil, Options{})

	submit(t, m, ev(models.EventScanTrigger))
	waitForScreen(t, m, models.ScreenTransaction)
	snap := submit(t, m, models.Event{Name: models.EventItemsTracked, Items: []string{"coke"}, Total: decimal.NewFromInt(1)})

	snap.Transaction.Items[0] = "tampered"
	snap.StatusBoard[models.SubsystemLock] = models.StatusError

	fresh := m.Snapshot()
	assert.Equal(t, []string{"coke"}, fresh.Transaction.Items)
	assert.Equal(t, models.StatusSuccess, fresh.StatusBoard[models.SubsystemLock])
}

func TestSignInAndPaymentSetup(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx"})
	s := &fakeSaver{outcomes: []models.PaymentOutcome{
		{Stage: models.StagePersistence, Status: models.OutcomeFailure, Detail: "card_declined"},
		{Stage: models.StagePersistence, Status: models.OutcomeSuccess, Detail: "pm_1"},
	}}
	m := startMachine(t, u, s, Options{})

	snap := submit(t, m, ev(models.EventNeedsSignIn))
	require.Equal(t, models.ScreenSignIn, snap.Screen)

	snap = submit(t, m, ev(models.EventSignInSuccess))
	require.Equal(t, models.ScreenPaymentSetup, snap.Screen)
	assert.True(t, snap.Authenticated)

	card := &models.CardInput{Number: "4242424242424242", ExpMonth: 1, ExpYear: 2030, CVC: "123"}
	submit(t, m, models.Event{Name: models.EventSubmitPayment, Card: card})

	require.Eventually(t, func() bool {
		return m.Snapshot().LastPayment != nil
	}, 2*time.Second, 5*time.Millisecond)
	snap = m.Snapshot()
	assert.Equal(t, models.ScreenPaymentSetup, snap.Screen, "a failed save must not leave payment setup")
	assert.Equal(t, &models.PaymentOutcome{Stage: models.StagePersistence, Status: models.OutcomeFailure, Detail: "card_declined"}, snap.LastPayment)
	assert.Equal(t, "card_declined", snap.Message)

	submit(t, m, models.Event{Name: models.EventSubmitPayment, Card: card})
	snap = waitForScreen(t, m, models.ScreenHome)
	assert.Nil(t, snap.LastPayment)
	assert.Empty(t, snap.Message)
}

func TestSubmitPaymentRequiresCard(t *testing.T) {
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), nil, Options{})
	submit(t, m, ev(models.EventNeedsSignIn))
	submit(t, m, ev(models.EventSignInSuccess))

	_, err := m.Submit(context.Background(), ev(models.EventSubmitPayment))
	assert.ErrorIs(t, err, ErrGuardRejected)
}

func TestSubmitPaymentWhilePending(t *testing.T) {
	s := &fakeSaver{
		outcomes: []models.PaymentOutcome{{Stage: models.StagePersistence, Status: models.OutcomeSuccess}},
		block:    make(chan struct{}),
	}
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), s, Options{})
	submit(t, m, ev(models.EventNeedsSignIn))
	submit(t, m, ev(models.EventSignInSuccess))

	card := &models.CardInput{Number: "4242"}
	snap := submit(t, m, models.Event{Name: models.EventSubmitPayment, Card: card})
	assert.True(t, snap.PaymentPending)

	_, err := m.Submit(context.Background(), models.Event{Name: models.EventSubmitPayment, Card: card})
	assert.ErrorIs(t, err, ErrPaymentPending)

	close(s.block)
	waitForScreen(t, m, models.ScreenHome)
}

func TestCancelDuringPaymentDropsLateResult(t *testing.T) {
	s := &fakeSaver{
		outcomes: []models.PaymentOutcome{{Stage: models.StagePersistence, Status: models.OutcomeSuccess}},
		block:    make(chan struct{}),
	}
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), s, Options{})
	submit(t, m, ev(models.EventNeedsSignIn))
	submit(t, m, ev(models.EventSignInSuccess))
	submit(t, m, models.Event{Name: models.EventSubmitPayment, Card: &models.CardInput{Number: "4242"}})

	snap := submit(t, m, ev(models.EventCancel))
	assert.Equal(t, models.ScreenHome, snap.Screen)
	assert.False(t, snap.PaymentPending)

	close(s.block)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, models.ScreenHome, m.Snapshot().Screen)
}

func TestExternalPaymentSuccess(t *testing.T) {
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), nil, Options{})
	submit(t, m, ev(models.EventNeedsSignIn))
	submit(t, m, ev(models.EventSignInSuccess))

	snap := submit(t, m, ev(models.EventPaymentSuccess))
	assert.Equal(t, models.ScreenHome, snap.Screen)
}

func TestNeedsSignInWhenAuthenticated(t *testing.T) {
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), nil, Options{Authenticated: true})

	snap, err := m.Submit(context.Background(), ev(models.EventNeedsSignIn))
	assert.ErrorIs(t, err, ErrGuardRejected)
	assert.Equal(t, models.ScreenHome, snap.Screen)
}

func TestInvalidTransitionIsReported(t *testing.T) {
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), nil, Options{})

	snap, err := m.Submit(context.Background(), ev(models.EventClose))
	var transErr *TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, models.ScreenHome, transErr.Screen)
	assert.Equal(t, models.EventClose, transErr.Event)
	assert.Equal(t, models.ScreenHome, snap.Screen)
}

func TestUnknownEventRejectedBeforeQueue(t *testing.T) {
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), nil, Options{})

	_, err := m.Submit(context.Background(), ev("teleport"))
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestTrainingIsIndependentOfSession(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx"})
	m := startMachine(t, u, nil, Options{})

	submit(t, m, ev(models.EventScanTrigger))
	waitForScreen(t, m, models.ScreenTransaction)

	snap := submit(t, m, ev(models.EventTrainingStarted))
	assert.Equal(t, models.StatusInfo, snap.StatusBoard[models.SubsystemTraining])
	assert.Equal(t, models.StatusSuccess, snap.StatusBoard[models.SubsystemLock])
	assert.Equal(t, models.ScreenTransaction, snap.Screen)

	snap = submit(t, m, models.Event{Name: models.EventItemsTracked, Items: []string{"a"}, Total: decimal.NewFromInt(2)})
	assert.Equal(t, models.StatusInfo, snap.StatusBoard[models.SubsystemTraining])

	snap = submit(t, m, models.Event{Name: models.EventTrainingFinished, Success: false})
	assert.Equal(t, models.StatusError, snap.StatusBoard[models.SubsystemTraining])
	assert.Equal(t, models.StatusInfo, snap.StatusBoard[models.SubsystemTransaction])

	// cancel ends the customer session but leaves the owner's training status alone
	snap = submit(t, m, ev(models.EventCancel))
	assert.Equal(t, models.StatusError, snap.StatusBoard[models.SubsystemTraining])
	assert.Equal(t, models.StatusIdle, snap.StatusBoard[models.SubsystemTransaction])
}

func TestNegativeTotalRejected(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx"})
	m := startMachine(t, u, nil, Options{})
	submit(t, m, ev(models.EventScanTrigger))
	waitForScreen(t, m, models.ScreenTransaction)

	_, err := m.Submit(context.Background(), models.Event{Name: models.EventItemsTracked, Total: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrGuardRejected)
}

func TestRandomEventSequencesKeepInvariants(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx"})
	m := startMachine(t, u, nil, Options{})

	names := []models.EventName{
		models.EventScanTrigger, models.EventUnlockSuccess, models.EventUnlockFailure,
		models.EventNeedsSignIn, models.EventSignInSuccess, models.EventSubmitPayment,
		models.EventPaymentSuccess, models.EventPaymentFailure, models.EventItemsTracked,
		models.EventDoorOpened, models.EventClose, models.EventAcknowledge, models.EventCancel,
		models.EventTrainingStarted, models.EventTrainingFinished,
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		e := models.Event{
			Name:      names[rng.Intn(len(names))],
			RequestID: fmt.Sprintf("id-%d", rng.Intn(6)),
			Items:     []string{"coke"},
			Total:     decimal.NewFromInt(int64(rng.Intn(5))),
			Card:      &models.CardInput{Number: "4242"},
		}
		before := m.Snapshot()
		snap, err := m.Submit(context.Background(), e)
		if err != nil {
			snap = m.Snapshot()
		}
		require.True(t, snap.Screen.Valid(), "step %d: invalid screen %q", i, snap.Screen)
		if snap.UnlockPending {
			require.Equal(t, models.ScreenUnlocking, snap.Screen, "step %d: pending unlock outside unlocking", i)
		}
		if err != nil && before.Screen != models.ScreenUnlocking && before.Screen != models.ScreenPaymentSetup {
			// async results may land between reads only while a request is in flight
			require.Equal(t, before.Screen, snap.Screen, "step %d: rejected %s changed screen", i, e.Name)
		}
	}
}

func TestRunTwice(t *testing.T) {
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), nil, Options{})
	require.Eventually(t, func() bool { return m.running.Load() }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, m.Run(context.Background()), ErrAlreadyRunning)
}

func TestLateHardwareEventsAreStale(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx-1"})
	// development loggers panic on DPanic
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.Development()))
	m := NewMachine(u, &fakeSaver{}, logger, Options{NewID: sequentialIDs()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	// untagged reports before any unlock
	m.Post(ev(models.EventDoorOpened))
	m.Post(models.Event{Name: models.EventItemsTracked, Items: []string{"coke"}, Total: decimal.NewFromInt(1)})
	snap := submit(t, m, ev(models.EventScanTrigger))
	assert.Equal(t, models.StatusIdle, snap.StatusBoard[models.SubsystemDoor])

	waitForScreen(t, m, models.ScreenTransaction)
	submit(t, m, ev(models.EventClose))

	// reports scheduled for the transaction that just closed
	m.Post(models.Event{Name: models.EventDoorOpened, TransactionID: "tx-1"})
	m.Post(models.Event{Name: models.EventItemsTracked, TransactionID: "tx-1", Items: []string{"coke"}, Total: decimal.NewFromInt(1)})
	snap = submit(t, m, ev(models.EventAcknowledge))
	assert.Equal(t, models.ScreenHome, snap.Screen)
	assert.Empty(t, snap.Transaction.Items)
	assert.Equal(t, models.StatusIdle, snap.StatusBoard[models.SubsystemDoor])
}

func TestDoorReportForOtherTransactionIgnored(t *testing.T) {
	u := newFakeUnlocker(models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: "tx-2"})
	m := startMachine(t, u, nil, Options{})

	submit(t, m, ev(models.EventScanTrigger))
	waitForScreen(t, m, models.ScreenTransaction)

	_, err := m.Submit(context.Background(), models.Event{Name: models.EventDoorOpened, TransactionID: "tx-1"})
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, models.StatusInfo, m.Snapshot().StatusBoard[models.SubsystemDoor])

	snap := submit(t, m, models.Event{Name: models.EventDoorOpened, TransactionID: "tx-2"})
	assert.Equal(t, models.StatusSuccess, snap.StatusBoard[models.SubsystemDoor])
}

func TestExternalDoorReportOffTransactionRejected(t *testing.T) {
	m := startMachine(t, newFakeUnlocker(models.UnlockOutcome{}), nil, Options{})

	_, err := m.Submit(context.Background(), ev(models.EventDoorOpened))
	var transErr *TransitionError
	assert.ErrorAs(t, err, &transErr)
}
