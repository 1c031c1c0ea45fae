// Package simulator stands in for the kiosk hardware and unlock backend. Actions resolve
// after a delay through a Resolver and feed the session machine the same events and
// outcomes the real clients produce.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"visionvend/models"
	"visionvend/services/payment"
	"visionvend/services/unlock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrUnknownItem is returned by Track for an item missing from the catalog.
var ErrUnknownItem = errors.New("item not in catalog")

// ErrNotAttached is returned by hardware actions before a Poster is attached.
var ErrNotAttached = errors.New("simulator has no event sink")

// Poster accepts events without waiting for them to be applied.
type Poster interface {
	Post(ev models.Event)
}

// Delays is how long each trigger takes to resolve.
type Delays struct {
	Tap   time.Duration
	Door  time.Duration
	Track time.Duration
	Train time.Duration
}

func (d Delays) of(t Trigger) time.Duration {
	switch t {
	case TriggerTap:
		return d.Tap
	case TriggerDoor:
		return d.Door
	case TriggerTrack:
		return d.Track
	case TriggerTrain:
		return d.Train
	}
	return 0
}

// Source implements unlock.Unlocker and payment.Tokenizer, and drives door, tracking and
// training events into a Poster.
type Source struct {
	logger   *zap.Logger
	resolver Resolver
	delays   Delays
	catalog  map[string]decimal.Decimal
	tracker  *unlock.Tracker
	wg       sync.WaitGroup

	mu            sync.Mutex
	poster        Poster
	transactionID string
}

var (
	_ unlock.Unlocker   = (*Source)(nil)
	_ payment.Tokenizer = (*Source)(nil)
)

// NewSource builds a Source. Hardware actions fail with ErrNotAttached until Attach.
func NewSource(resolver Resolver, delays Delays, catalog map[string]decimal.Decimal, logger *zap.Logger) *Source {
	return &Source{
		logger:   logger,
		resolver: resolver,
		delays:   delays,
		catalog:  catalog,
		tracker:  unlock.NewTracker(),
	}
}

// ParseCatalog converts configured prices into decimals.
func ParseCatalog(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for sku, price := range raw {
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("catalog price for %q: %w", sku, err)
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("catalog price for %q is negative", sku)
		}
		out[sku] = d
	}
	return out, nil
}

// Attach sets the sink for hardware events. The machine usually depends on the Source as
// its Unlocker, so this is called after both exist.
func (s *Source) Attach(p Poster) {
	s.mu.Lock()
	s.poster = p
	s.mu.Unlock()
}

// RequestUnlock simulates the unlock backend: one request per session, resolved after the
// tap delay. A cancelled request yields unlock.ErrSuperseded.
func (s *Source) RequestUnlock(ctx context.Context, sessionToken, requestID string) (models.UnlockOutcome, error) {
	if err := s.tracker.Begin(sessionToken, requestID); err != nil {
		return models.UnlockOutcome{}, err
	}
	waitErr := sleep(ctx, s.delays.Tap)
	if s.tracker.Finish(sessionToken, requestID) {
		return models.UnlockOutcome{}, unlock.ErrSuperseded
	}
	if waitErr != nil {
		return models.UnlockOutcome{Status: models.OutcomeFailure, Message: models.MessageNetworkError}, nil
	}

	out := s.resolver.Resolve(TriggerTap)
	if !out.Success {
		s.logger.Info("simulator: unlock failed", zap.String("requestId", requestID), zap.String("reason", out.Message))
		return models.UnlockOutcome{Status: models.OutcomeFailure, Message: out.Message}, nil
	}
	txID := uuid.New().String()
	s.mu.Lock()
	s.transactionID = txID
	s.mu.Unlock()
	s.logger.Info("simulator: unlocked", zap.String("requestId", requestID), zap.String("transactionId", txID))
	return models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: txID}, nil
}

// Cancel supersedes an in-flight unlock request.
func (s *Source) Cancel(sessionToken, requestID string) {
	s.tracker.Cancel(sessionToken, requestID)
}

// Tokenize issues a fake payment method id for any card with a number.
func (s *Source) Tokenize(ctx context.Context, card models.CardInput) (string, error) {
	if card.Number == "" {
		return "", &payment.ProviderValidationError{Code: "incomplete_number", Message: "Your card number is incomplete."}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "pm_sim_" + uuid.New().String(), nil
}

// OpenDoor posts door_opened, tagged with the transaction unlocked last, once the door delay elapses and the door resolves.
func (s *Source) OpenDoor(ctx context.Context) error {
	poster, err := s.sink()
	if err != nil {
		return err
	}
	txID := s.currentTransaction()
	s.after(ctx, TriggerDoor, func(out Outcome) {
		if !out.Success {
			s.logger.Warn("simulator: door did not open", zap.String("reason", out.Message))
			return
		}
		poster.Post(models.Event{Name: models.EventDoorOpened, TransactionID: txID})
	})
	return nil
}

// Track reports items as in progress immediately and complete after the tracking delay.
// The total is priced from the catalog.
func (s *Source) Track(ctx context.Context, items []string) (decimal.Decimal, error) {
	poster, err := s.sink()
	if err != nil {
		return decimal.Zero, err
	}
	total, err := s.price(items)
	if err != nil {
		return decimal.Zero, err
	}
	txID := s.currentTransaction()

	tracked := models.Event{
		Name:          models.EventItemsTracked,
		TransactionID: txID,
		Items:         append([]string(nil), items...),
		Total:         total,
	}
	poster.Post(tracked)
	s.after(ctx, TriggerTrack, func(out Outcome) {
		if !out.Success {
			s.logger.Warn("simulator: tracking incomplete", zap.String("reason", out.Message))
			return
		}
		tracked.Complete = true
		poster.Post(tracked)
	})
	return total, nil
}

// Train starts a training run that finishes after the training delay.
func (s *Source) Train(ctx context.Context) error {
	poster, err := s.sink()
	if err != nil {
		return err
	}
	poster.Post(models.Event{Name: models.EventTrainingStarted})
	s.after(ctx, TriggerTrain, func(out Outcome) {
		poster.Post(models.Event{Name: models.EventTrainingFinished, Success: out.Success, Message: out.Message})
	})
	return nil
}

// Wait blocks until every scheduled action has resolved or been abandoned.
func (s *Source) Wait() {
	s.wg.Wait()
}

func (s *Source) currentTransaction() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactionID
}

func (s *Source) sink() (Poster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poster == nil {
		return nil, ErrNotAttached
	}
	return s.poster, nil
}

func (s *Source) price(items []string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		p, ok := s.catalog[item]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownItem, item)
		}
		total = total.Add(p)
	}
	return total, nil
}

// after resolves trigger once its delay elapses; abandoned if ctx ends first.
func (s *Source) after(ctx context.Context, trigger Trigger, fn func(Outcome)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := sleep(ctx, s.delays.of(trigger)); err != nil {
			s.logger.Debug("simulator: action abandoned", zap.String("trigger", string(trigger)))
			return
		}
		fn(s.resolver.Resolve(trigger))
	}()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
