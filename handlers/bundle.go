package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers routes are registered with.
type HandlerBundle struct {
	// Kiosk endpoints
	GetSessionHandler        gin.HandlerFunc
	GetStoredSnapshotHandler gin.HandlerFunc
	PostEventHandler         gin.HandlerFunc
	IssueTokenHandler        gin.HandlerFunc

	// Simulator endpoints; nil outside the simulator.
	SimTapHandler         gin.HandlerFunc
	SimDoorHandler        gin.HandlerFunc
	SimTrackHandler       gin.HandlerFunc
	SimCloseHandler       gin.HandlerFunc
	SimTrainHandler       gin.HandlerFunc
	SimSavePaymentHandler gin.HandlerFunc
}
