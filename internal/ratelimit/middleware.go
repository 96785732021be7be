package ratelimit

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"athing/internal/procedure"

	"github.com/gin-gonic/gin"
)

// ErrUntrustedHost is returned when a request reaches a rate-limited route
// through a host other than the expected deployment host.
var ErrUntrustedHost = errors.New("untrusted ingress host")

// MiddlewareConfig controls how Middleware keys and charges requests.
type MiddlewareConfig struct {
	// Scope prefixes every key so separate route groups get separate budgets.
	Scope string
	// Points is charged per request.
	Points int
	// TrustedHost is the deployment host. When set, requests for other hosts are
	// refused and the client IP is read from ForwardedHeader.
	TrustedHost     string
	ForwardedHeader string
}

// Middleware charges each request against the budget of its client IP.
func Middleware(limiter Limiter, cfg MiddlewareConfig) gin.HandlerFunc {
	if cfg.Points <= 0 {
		cfg.Points = 1
	}
	if cfg.ForwardedHeader == "" {
		cfg.ForwardedHeader = "X-Forwarded-For"
	}

	return func(c *gin.Context) {
		ip, err := ClientIP(c.Request, cfg)
		if err != nil {
			slog.Warn("Rate limited route reached through untrusted host",
				"host", c.Request.Host,
				"request_id", c.GetString("request_id"),
			)
			procedure.Abort(c, procedure.New(procedure.KindForbidden, "untrusted host"))
			return
		}

		key := ip
		if cfg.Scope != "" {
			key = cfg.Scope + ":" + ip
		}

		err = limiter.Consume(c.Request.Context(), key, cfg.Points)
		switch {
		case errors.Is(err, ErrLimited):
			procedure.Abort(c, procedure.ErrTooManyRequests)
			return
		case err != nil:
			slog.Error("Rate limiter failed", "error", err, "request_id", c.GetString("request_id"))
			procedure.Abort(c, procedure.ErrInternal)
			return
		}

		c.Next()
	}
}

// ClientIP returns the address the budget is charged to. The forwarding header
// is only believed when the request host is the trusted deployment host.
func ClientIP(r *http.Request, cfg MiddlewareConfig) (string, error) {
	if cfg.TrustedHost == "" {
		return remoteIP(r), nil
	}

	if !strings.EqualFold(stripPort(r.Host), cfg.TrustedHost) {
		return "", ErrUntrustedHost
	}

	header := cfg.ForwardedHeader
	if header == "" {
		header = "X-Forwarded-For"
	}
	if forwarded := r.Header.Get(header); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if net.ParseIP(first) != nil {
			return first, nil
		}
	}

	return remoteIP(r), nil
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func stripPort(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	return host
}
