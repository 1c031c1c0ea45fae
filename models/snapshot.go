package models

import "time"

// Snapshot is the read-only view handed to the presentation layer after every transition.
type Snapshot struct {
	Screen         Screen                    `json:"screen"`
	Transaction    Transaction               `json:"transaction"`
	StatusBoard    map[Subsystem]StatusValue `json:"statusBoard"`
	Message        string                    `json:"message,omitempty"`
	Authenticated  bool                      `json:"authenticated"`
	UnlockPending  bool                      `json:"unlockPending"`
	PaymentPending bool                      `json:"paymentPending"`
	LastPayment    *PaymentOutcome           `json:"lastPayment,omitempty"`
	Version        uint64                    `json:"version"`
	TakenAt        time.Time                 `json:"takenAt"`
}
