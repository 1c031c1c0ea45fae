package routes

import (
	"net/http"
	"time"

	"visionvend/handlers"
	"visionvend/middleware"
	"visionvend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RegisterKioskRoutes registers the presentation boundary: snapshot reads and event submission.
func RegisterKioskRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/kiosk")
	{
		api.GET("/session", hb.GetSessionHandler)
		api.GET("/session/stored", hb.GetStoredSnapshotHandler)

		// signin_success may carry the customer token in the Authorization header.
		api.POST("/events", middleware.KioskAuthMiddleware(true), hb.PostEventHandler)

		if hb.IssueTokenHandler != nil {
			api.POST("/dev/token", hb.IssueTokenHandler)
		}
	}
}

// RegisterSimRoutes registers simulator controls and the stand-in payment backend.
func RegisterSimRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	sim := r.Group("/api/sim")
	{
		sim.POST("/tap", hb.SimTapHandler)
		sim.POST("/door", hb.SimDoorHandler)
		sim.POST("/track", hb.SimTrackHandler)
		sim.POST("/close", hb.SimCloseHandler)
		sim.POST("/train", hb.SimTrainHandler)
	}
	r.POST("/save-payment", hb.SimSavePaymentHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm VisionVend", "services": utils.GetHealthStatus()})
	})
}

// RegisterMetricsRoute exposes prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
	RegisterKioskRoutes(r, hb)
	if hb.SimTapHandler != nil {
		RegisterSimRoutes(r, hb)
	}
}

// NewRouter builds the gin engine with the global middleware stack.
func NewRouter(logger *zap.Logger, maxRequestsPerMin int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(maxRequestsPerMin))
	return router
}
