package models

import "github.com/shopspring/decimal"

// Screen is the kiosk display state.
type Screen string

const (
	ScreenHome         Screen = "home"
	ScreenSignIn       Screen = "signin"
	ScreenPaymentSetup Screen = "payment"
	ScreenUnlocking    Screen = "unlocking"
	ScreenTransaction  Screen = "transaction"
	ScreenReceipt      Screen = "receipt"
)

// Screens lists every valid Screen.
var Screens = []Screen{
	ScreenHome,
	ScreenSignIn,
	ScreenPaymentSetup,
	ScreenUnlocking,
	ScreenTransaction,
	ScreenReceipt,
}

// Valid reports whether s is a member of the Screen enum.
func (s Screen) Valid() bool {
	for _, known := range Screens {
		if s == known {
			return true
		}
	}
	return false
}

// Transaction is the purchase attached to an unlocked session.
type Transaction struct {
	ID    string          `json:"id"`
	Items []string        `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// NewTransaction returns an empty transaction with the given id.
func NewTransaction(id string) Transaction {
	return Transaction{ID: id, Items: []string{}, Total: decimal.Zero}
}

// Clone returns a copy that shares no memory with t.
func (t Transaction) Clone() Transaction {
	items := make([]string, len(t.Items))
	copy(items, t.Items)
	return Transaction{ID: t.ID, Items: items, Total: t.Total}
}

// Session is one customer interaction, from tap to receipt.
type Session struct {
	Token                   string      `json:"token"`
	Screen                  Screen      `json:"screen"`
	Transaction             Transaction `json:"transaction"`
	PendingUnlockRequestID  string      `json:"pendingUnlockRequestId,omitempty"`
	PendingPaymentRequestID string      `json:"pendingPaymentRequestId,omitempty"`
	// Message is the last user-facing error or notice; cleared on the next successful step.
	Message string `json:"message,omitempty"`
	// LastPayment is the most recent payment setup failure shown on the payment screen.
	LastPayment *PaymentOutcome `json:"lastPayment,omitempty"`
}

// NewSession returns a session in its initial state.
func NewSession(token string) Session {
	return Session{
		Token:       token,
		Screen:      ScreenHome,
		Transaction: NewTransaction(""),
	}
}
