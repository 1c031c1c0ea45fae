// Package payment saves a customer's card: tokenize with the provider, then persist the
// resulting handle with the backend.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"visionvend/models"

	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// Saver runs the two-phase payment setup.
type Saver interface {
	Save(ctx context.Context, card models.CardInput) models.PaymentOutcome
}

// Client implements Saver against a Tokenizer and POST /save-payment.
type Client struct {
	tokenizer  Tokenizer
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client posting to baseURL with the given request timeout.
func NewClient(tokenizer Tokenizer, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		tokenizer:  tokenizer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type savePaymentRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

type savePaymentResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	CustomerID string `json:"customer_id"`
}

// Save tokenizes the card and persists the handle. Persistence is attempted only after
// tokenization succeeds; nothing is retried.
func (c *Client) Save(ctx context.Context, card models.CardInput) models.PaymentOutcome {
	paymentMethodID, err := c.tokenizer.Tokenize(ctx, card)
	if err != nil {
		var validation *ProviderValidationError
		if errors.As(err, &validation) {
			c.logger.Info("payment: card rejected by provider", zap.String("code", validation.Code))
			return outcome(models.StageTokenization, models.OutcomeFailure, validation.Message)
		}
		c.logger.Warn("payment: tokenization failed", zap.Error(err))
		return outcome(models.StageTokenization, models.OutcomeFailure, models.MessageNetworkError)
	}

	if detail, ok := c.persist(ctx, paymentMethodID); !ok {
		return outcome(models.StagePersistence, models.OutcomeFailure, detail)
	}

	c.logger.Info("payment: payment method saved", zap.String("paymentMethodId", paymentMethodID))
	return outcome(models.StagePersistence, models.OutcomeSuccess, paymentMethodID)
}

func (c *Client) persist(ctx context.Context, paymentMethodID string) (string, bool) {
	body, err := json.Marshal(savePaymentRequest{PaymentMethodID: paymentMethodID})
	if err != nil {
		return fallbackPersistenceDetail, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/save-payment", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("payment: failed to build request", zap.Error(err))
		return models.MessageNetworkError, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("payment: transport failure", zap.Error(err))
		return models.MessageNetworkError, false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return "", true
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	var parsed savePaymentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Message == "" {
		c.logger.Warn("payment: backend rejected without message", zap.Int("status", resp.StatusCode))
		return fallbackPersistenceDetail, false
	}
	c.logger.Info("payment: backend rejected payment method",
		zap.Int("status", resp.StatusCode), zap.String("message", parsed.Message))
	return parsed.Message, false
}

func outcome(stage models.PaymentStage, status models.OutcomeStatus, detail string) models.PaymentOutcome {
	return models.PaymentOutcome{Stage: stage, Status: status, Detail: detail}
}
