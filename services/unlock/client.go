// Package unlock talks to the backend door-lock service.
package unlock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"visionvend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// Unlocker issues unlock requests. Implemented by Client and by the simulator.
type Unlocker interface {
	RequestUnlock(ctx context.Context, sessionToken, requestID string) (models.UnlockOutcome, error)
	Cancel(sessionToken, requestID string)
}

// Client calls POST /unlock on the backend, allowing one outstanding call per session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	tracker *Tracker
}

// NewClient builds a client against baseURL. A zero timeout leaves the http.Client unbounded.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		tracker:    NewTracker(),
	}
}

type unlockRequest struct {
	ID string `json:"id"`
}

type unlockResponse struct {
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Message       string          `json:"message"`
	Detail        json.RawMessage `json:"detail"`
}

// RequestUnlock asks the backend to open the door for the session. Transport and
// server failures come back as failure outcomes; the error is reserved for
// ErrAlreadyPending and ErrSuperseded.
func (c *Client) RequestUnlock(ctx context.Context, sessionToken, requestID string) (models.UnlockOutcome, error) {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if err := c.tracker.Begin(sessionToken, requestID); err != nil {
		return models.UnlockOutcome{}, err
	}

	outcome := c.send(ctx, requestID)

	if superseded := c.tracker.Finish(sessionToken, requestID); superseded {
		c.logger.Debug("unlock: dropping outcome for superseded request",
			zap.String("requestId", requestID), zap.String("status", string(outcome.Status)))
		return models.UnlockOutcome{}, ErrSuperseded
	}
	return outcome, nil
}

// Cancel marks the request superseded and frees the session slot. The transport is not aborted.
func (c *Client) Cancel(sessionToken, requestID string) {
	if c.tracker.Cancel(sessionToken, requestID) {
		c.logger.Info("unlock: request cancelled", zap.String("requestId", requestID))
	}
}

func (c *Client) send(ctx context.Context, requestID string) models.UnlockOutcome {
	body, err := json.Marshal(unlockRequest{ID: requestID})
	if err != nil {
		return failure(models.MessageMalformedResponse)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/unlock", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("unlock: failed to build request", zap.Error(err))
		return failure(models.MessageNetworkError)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("unlock: transport failure", zap.String("requestId", requestID), zap.Error(err))
		return failure(models.MessageNetworkError)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("unlock: failed to read response", zap.String("requestId", requestID), zap.Error(err))
		return failure(models.MessageNetworkError)
	}

	parsed, err := decodeResponse(raw)
	if err != nil {
		c.logger.Warn("unlock: malformed response",
			zap.String("requestId", requestID), zap.Int("status", resp.StatusCode), zap.Error(err))
		return failure(models.MessageMalformedResponse)
	}

	switch parsed.Status {
	case "success":
		c.logger.Info("unlock: door unlock accepted",
			zap.String("requestId", requestID), zap.String("transactionId", parsed.TransactionID))
		return models.UnlockOutcome{Status: models.OutcomeSuccess, TransactionID: parsed.TransactionID}
	case "error":
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("unlock_failed_%d", resp.StatusCode)
		}
		c.logger.Info("unlock: backend refused unlock", zap.String("requestId", requestID), zap.String("message", msg))
		return failure(msg)
	default:
		c.logger.Warn("unlock: unexpected status in response",
			zap.String("requestId", requestID), zap.String("status", parsed.Status))
		return failure(models.MessageMalformedResponse)
	}
}

// decodeResponse accepts both a bare body and one wrapped in a "detail" object.
func decodeResponse(raw []byte) (unlockResponse, error) {
	var parsed unlockResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return unlockResponse{}, err
	}
	if parsed.Status != "" || len(parsed.Detail) == 0 {
		return parsed, nil
	}

	var nested unlockResponse
	if err := json.Unmarshal(parsed.Detail, &nested); err == nil && nested.Status != "" {
		return nested, nil
	}
	var text string
	if err := json.Unmarshal(parsed.Detail, &text); err == nil && text != "" {
		return unlockResponse{Status: "error", Message: text}, nil
	}
	return parsed, nil
}

func failure(message string) models.UnlockOutcome {
	return models.UnlockOutcome{Status: models.OutcomeFailure, Message: message}
}
