package models

import "github.com/shopspring/decimal"

// EventName is one of the closed set of events the session core accepts.
type EventName string

const (
	EventScanTrigger      EventName = "scan_trigger"
	EventUnlockSuccess    EventName = "unlock_success"
	EventUnlockFailure    EventName = "unlock_failure"
	EventNeedsSignIn      EventName = "needs_signin"
	EventSignInSuccess    EventName = "signin_success"
	EventSubmitPayment    EventName = "submit_payment"
	EventPaymentSuccess   EventName = "payment_success"
	EventPaymentFailure   EventName = "payment_failure"
	EventItemsTracked     EventName = "items_tracked"
	EventDoorOpened       EventName = "door_opened"
	EventClose            EventName = "close"
	EventAcknowledge      EventName = "acknowledge"
	EventCancel           EventName = "cancel"
	EventTrainingStarted  EventName = "training_started"
	EventTrainingFinished EventName = "training_finished"
)

var eventNames = map[EventName]struct{}{
	EventScanTrigger:      {},
	EventUnlockSuccess:    {},
	EventUnlockFailure:    {},
	EventNeedsSignIn:      {},
	EventSignInSuccess:    {},
	EventSubmitPayment:    {},
	EventPaymentSuccess:   {},
	EventPaymentFailure:   {},
	EventItemsTracked:     {},
	EventDoorOpened:       {},
	EventClose:            {},
	EventAcknowledge:      {},
	EventCancel:           {},
	EventTrainingStarted:  {},
	EventTrainingFinished: {},
}

// Known reports whether n belongs to the accepted event set.
func (n EventName) Known() bool {
	_, ok := eventNames[n]
	return ok
}

// Hardware reports whether n originates from kiosk hardware (door sensor, item
// tracking) rather than the customer or a backend call.
func (n EventName) Hardware() bool {
	return n == EventDoorOpened || n == EventItemsTracked
}

// Event is a single input to the session state machine. Only the fields relevant
// to Name are read.
type Event struct {
	Name EventName `json:"name"`

	// RequestID correlates unlock and payment results with the request that produced them.
	RequestID     string `json:"requestId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message,omitempty"`

	// items_tracked
	Items    []string        `json:"items,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Complete bool            `json:"complete,omitempty"`

	// training_finished
	Success bool `json:"success,omitempty"`

	// payment_failure
	Stage PaymentStage `json:"stage,omitempty"`

	// submit_payment
	Card *CardInput `json:"card,omitempty"`
}
