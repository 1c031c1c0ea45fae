package handlers

import (
	"context"
	"errors"
	"net/http"

	"visionvend/models"
	"visionvend/services/simulator"
	"visionvend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Hardware is the simulated kiosk hardware.
type Hardware interface {
	OpenDoor(ctx context.Context) error
	Track(ctx context.Context, items []string) (decimal.Decimal, error)
	Train(ctx context.Context) error
}

// SimHandler drives the session from simulator controls. Hardware actions outlive the
// request, so they run under the handler's own context.
type SimHandler struct {
	ctx      context.Context
	core     SessionCore
	hardware Hardware
}

func NewSimHandler(ctx context.Context, core SessionCore, hardware Hardware) *SimHandler {
	return &SimHandler{ctx: ctx, core: core, hardware: hardware}
}

// TapHandler simulates an NFC tap.
func (h *SimHandler) TapHandler(c *gin.Context) {
	h.submit(c, models.EventScanTrigger)
}

// CloseHandler simulates the customer closing the door.
func (h *SimHandler) CloseHandler(c *gin.Context) {
	h.submit(c, models.EventClose)
}

func (h *SimHandler) DoorHandler(c *gin.Context) {
	if err := h.hardware.OpenDoor(h.ctx); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "simulator unavailable", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "opening"})
}

func (h *SimHandler) TrackHandler(c *gin.Context) {
	var input struct {
		Items []string `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	total, err := h.hardware.Track(h.ctx, input.Items)
	if errors.Is(err, simulator.ErrUnknownItem) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown item", "details": err.Error()})
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "simulator unavailable", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "tracking", "total": total})
}

func (h *SimHandler) TrainHandler(c *gin.Context) {
	if err := h.hardware.Train(h.ctx); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "simulator unavailable", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "training"})
}

// SavePaymentHandler stands in for the backend's POST /save-payment.
func SavePaymentHandler(c *gin.Context) {
	var input struct {
		PaymentMethodID string `json:"paymentMethodId"`
	}
	_ = c.ShouldBindJSON(&input)
	if input.PaymentMethodID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing paymentMethodId"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "customer_id": "cus_sim"})
}

func (h *SimHandler) submit(c *gin.Context, name models.EventName) {
	snap, err := h.core.Submit(c.Request.Context(), models.Event{Name: name})
	if err != nil {
		status, code := statusFor(err)
		c.JSON(status, gin.H{"error": code, "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}
