package models

// OutcomeStatus is the terminal result of an asynchronous operation.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// UnlockOutcome is delivered exactly once per unlock request.
type UnlockOutcome struct {
	Status        OutcomeStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	Message       string        `json:"message,omitempty"`
}

// Succeeded reports whether the outcome is a success.
func (o UnlockOutcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// PaymentStage names the phase of payment setup an outcome refers to.
type PaymentStage string

const (
	StageTokenization PaymentStage = "tokenization"
	StagePersistence  PaymentStage = "persistence"
)

// PaymentOutcome distinguishes which phase of payment setup failed.
type PaymentOutcome struct {
	Stage  PaymentStage  `json:"stage"`
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail"`
}

// Succeeded reports whether both phases completed.
func (o PaymentOutcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// CardInput is the raw card data handed to the payment provider for tokenization.
type CardInput struct {
	Number   string `json:"number"`
	ExpMonth int64  `json:"expMonth"`
	ExpYear  int64  `json:"expYear"`
	CVC      string `json:"cvc"`
}

// User-facing messages for failures that carry no server-provided reason.
const (
	MessageNetworkError      = "network_error"
	MessageMalformedResponse = "malformed_response"
	MessageAlreadyPending    = "already_pending"
	MessageCancelled         = "cancelled"
)
