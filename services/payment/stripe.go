package payment

import (
	"context"
	"errors"
	"fmt"

	"visionvend/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Tokenizer turns raw card input into a provider payment-method handle.
type Tokenizer interface {
	Tokenize(ctx context.Context, card models.CardInput) (string, error)
}

// StripeTokenizer creates card payment methods through the Stripe API.
type StripeTokenizer struct {
	api *client.API
}

// NewStripeTokenizer uses the default Stripe backends when backends is nil.
func NewStripeTokenizer(key string, backends *stripe.Backends) *StripeTokenizer {
	api := &client.API{}
	api.Init(key, backends)
	return &StripeTokenizer{api: api}
}

func (t *StripeTokenizer) Tokenize(ctx context.Context, card models.CardInput) (string, error) {
	params := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(card.ExpMonth),
			ExpYear:  stripe.Int64(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
	}
	params.Context = ctx

	pm, err := t.api.PaymentMethods.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) &&
			(stripeErr.Type == stripe.ErrorTypeCard || stripeErr.Type == stripe.ErrorTypeInvalidRequest) {
			return "", &ProviderValidationError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
		}
		return "", fmt.Errorf("stripe: create payment method: %w", err)
	}
	return pm.ID, nil
}
