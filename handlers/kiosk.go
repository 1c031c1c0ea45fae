package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"visionvend/models"
	"visionvend/services/session"
	"visionvend/services/snapshot"
	"visionvend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionCore is the part of session.Machine the HTTP layer talks to.
type SessionCore interface {
	Submit(ctx context.Context, ev models.Event) (models.Snapshot, error)
	Snapshot() models.Snapshot
}

// SnapshotReader reads the persisted read model.
type SnapshotReader interface {
	Get(ctx context.Context) (models.Snapshot, error)
}

type KioskHandler struct {
	core  SessionCore
	store SnapshotReader
}

func NewKioskHandler(core SessionCore, store SnapshotReader) *KioskHandler {
	return &KioskHandler{core: core, store: store}
}

type eventRequest struct {
	Name          string            `json:"name" binding:"required"`
	RequestID     string            `json:"requestId"`
	TransactionID string            `json:"transactionId"`
	Message       string            `json:"message"`
	Items         []string          `json:"items"`
	Total         decimal.Decimal   `json:"total"`
	Complete      bool              `json:"complete"`
	Success       bool              `json:"success"`
	Stage         string            `json:"stage"`
	Card          *models.CardInput `json:"card"`
	Token         string            `json:"token"`
}

func (r eventRequest) event() models.Event {
	return models.Event{
		Name:          models.EventName(r.Name),
		RequestID:     r.RequestID,
		TransactionID: r.TransactionID,
		Message:       r.Message,
		Items:         r.Items,
		Total:         r.Total,
		Complete:      r.Complete,
		Success:       r.Success,
		Stage:         models.PaymentStage(r.Stage),
		Card:          r.Card,
	}
}

// GetSessionHandler returns the current snapshot.
func (h *KioskHandler) GetSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.core.Snapshot())
}

// GetStoredSnapshotHandler returns the snapshot last written to the read model.
func (h *KioskHandler) GetStoredSnapshotHandler(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot store not configured"})
		return
	}
	snap, err := h.store.Get(c.Request.Context())
	if errors.Is(err, snapshot.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot published yet"})
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "snapshot store unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PostEventHandler submits one event and answers with the snapshot it produced.
// signin_success needs a customer token, either in the body or from KioskAuthMiddleware.
func (h *KioskHandler) PostEventHandler(c *gin.Context) {
	logger := utils.ContextLogger(c)
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	ev := req.event()
	if ev.Name == models.EventSignInSuccess {
		customerID, err := customerFrom(c, req.Token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid sign-in token", "details": err.Error()})
			return
		}
		logger.Info("kiosk: customer signed in", zap.String("customerId", customerID))
	}

	snap, err := h.core.Submit(c.Request.Context(), ev)
	if err != nil {
		status, code := statusFor(err)
		logger.Info("kiosk: event not applied", zap.String("event", req.Name), zap.String("reason", code), zap.Error(err))
		body := gin.H{"error": code, "details": err.Error()}
		if snap.Screen != "" {
			body["snapshot"] = snap
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// IssueTokenHandler signs a short-lived customer token. Development only; production
// tokens come from the authentication provider.
func IssueTokenHandler(c *gin.Context) {
	var input struct {
		CustomerID string `json:"customerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	token, err := utils.GenerateToken(input.CustomerID, 15*time.Minute)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to sign token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func customerFrom(c *gin.Context, bodyToken string) (string, error) {
	if id := c.GetString("customerID"); id != "" {
		return id, nil
	}
	if bodyToken == "" {
		return "", errors.New("missing token")
	}
	return utils.ExtractIDFromToken(bodyToken)
}

// statusFor maps session errors onto HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	var transErr *session.TransitionError
	switch {
	case errors.Is(err, session.ErrUnknownEvent):
		return http.StatusBadRequest, "unknown_event"
	case errors.Is(err, session.ErrAlreadyPending), errors.Is(err, session.ErrPaymentPending):
		return http.StatusConflict, "already_pending"
	case errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict, "superseded"
	case errors.Is(err, session.ErrGuardRejected):
		return http.StatusConflict, "guard_rejected"
	case errors.As(err, &transErr):
		return http.StatusUnprocessableEntity, "invalid_transition"
	case errors.Is(err, session.ErrStopped):
		return http.StatusServiceUnavailable, "stopped"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}
