package server

import (
	"log/slog"
	"net/http"
	"time"

	"athing/internal/procedure"
	"athing/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id for log correlation.
// A well-formed incoming X-Request-ID is kept.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()
	}
}

// LoggingMiddleware logs every request with structured attributes
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"response_size", rw.Size(),
		}

		if query := c.Request.URL.RawQuery; query != "" {
			attrs = append(attrs, "query", query)
		}
		if accountID, ok := procedure.AccountID(c); ok {
			attrs = append(attrs, "account_id", accountID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("Request failed - server error", attrs...)
		case status >= 400:
			slog.Warn("Request failed - client error", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}

// RouteGuard sends visitors without a session cookie to the login page. It
// only checks that the cookie is present; protected procedures still verify it.
func RouteGuard(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.TokenFromRequest(c.Request) == "" {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
