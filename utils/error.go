package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by middleware.RequestLogger.
const (
	LoggerKey    = "logger"
	RequestIDKey = "requestId"
)

// ErrorResponse is the body of every error the kiosk API returns outside the session
// event endpoint. RequestID echoes X-Request-ID so kiosk logs can be matched up.
type ErrorResponse struct {
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ContextLogger returns the request-scoped logger, or the global one outside a request.
func ContextLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(LoggerKey); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return GetLogger()
}

// ErrorHandler recovers panics from kiosk handlers and answers 500 with the request id.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ContextLogger(c).Error("unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message:   "Internal Server Error",
					Details:   "The kiosk hit an unexpected error. Please try again.",
					RequestID: c.GetString(RequestIDKey),
				})
			}
		}()
		c.Next()
	}
}

// JSONError logs at Warn and writes an ErrorResponse.
func JSONError(c *gin.Context, status int, message string, details string) {
	ContextLogger(c).Warn(message, zap.String("details", details), zap.Int("status", status))
	c.JSON(status, ErrorResponse{Message: message, Details: details, RequestID: c.GetString(RequestIDKey)})
}
