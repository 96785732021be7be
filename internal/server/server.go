// Package server assembles the HTTP surface of the API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"athing/internal/accounts"
	"athing/internal/config"
	"athing/internal/database"
	"athing/internal/journals"
	"athing/internal/notes"
	"athing/internal/procedure"
	"athing/internal/ratelimit"

	"github.com/redis/go-redis/v9"
)

// Deps are the components the server routes to. Nil handlers leave their
// routes unregistered; a nil DB or Redis is reported as not configured.
type Deps struct {
	DB       database.Service
	Redis    redis.UniversalClient
	Limiter  ratelimit.Limiter
	Resolver procedure.Resolver
	Accounts *accounts.Handler
	Notes    *notes.Handler
	Journals *journals.Handler
}

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg  *config.Config
	deps Deps
}

// New creates a Server.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewMemory(ratelimit.Config{
			Points: cfg.RateLimitPoints,
			Window: cfg.RateLimitWindow,
		})
	}
	if deps.Resolver == nil {
		deps.Resolver = procedure.ResolverFunc(func(*http.Request) (string, bool) { return "", false })
	}
	return &Server{cfg: cfg, deps: deps}
}

// HTTPServer returns an http.Server serving the API on the configured port.
func (s *Server) HTTPServer() *http.Server {
	slog.Info("HTTP server configured", "addr", s.cfg.Addr())

	return &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

func (s *Server) redisHealth(ctx context.Context) map[string]string {
	if s.deps.Redis == nil {
		return map[string]string{"status": "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}
