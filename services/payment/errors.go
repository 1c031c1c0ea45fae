package payment

import "fmt"

// ProviderValidationError is the payment provider rejecting the card input.
type ProviderValidationError struct {
	Code    string
	Message string
}

func (e *ProviderValidationError) Error() string {
	if e.Code == "" {
		return "provider validation: " + e.Message
	}
	return fmt.Sprintf("provider validation (%s): %s", e.Code, e.Message)
}

// fallbackPersistenceDetail is shown when the backend rejects without a message.
const fallbackPersistenceDetail = "Failed to save payment method."
