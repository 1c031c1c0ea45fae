package session

import (
	"errors"
	"fmt"

	"visionvend/models"
	"visionvend/services/unlock"
)

var (
	// ErrAlreadyPending is returned for scan_trigger while an unlock request is in flight.
	ErrAlreadyPending = unlock.ErrAlreadyPending
	// ErrSuperseded is returned for a result whose correlation id no longer matches the session.
	ErrSuperseded = unlock.ErrSuperseded
	// ErrMalformedResponse marks an unlock success that carried no transaction id.
	ErrMalformedResponse = errors.New("unlock success without transaction id")
	// ErrPaymentPending is returned for submit_payment while a payment setup is in flight.
	ErrPaymentPending = errors.New("payment setup already pending")
	// ErrGuardRejected is returned when an event is legal for the screen but its guard fails.
	ErrGuardRejected = errors.New("guard rejected event")
	// ErrUnknownEvent is returned for names outside the accepted event set.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrStopped is returned once the event loop has exited.
	ErrStopped = errors.New("session event loop stopped")
	// ErrAlreadyRunning is returned by a second concurrent Run.
	ErrAlreadyRunning = errors.New("session event loop already running")
)

// TransitionError reports an event delivered on a screen with no transition for it.
// It signals an orchestration bug, not a runtime failure.
type TransitionError struct {
	Screen models.Screen
	Event  models.EventName
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no transition for event %q on screen %q", e.Event, e.Screen)
}
