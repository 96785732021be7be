package server

import (
	"net/http"
	"path/filepath"
	"time"

	"athing/internal/procedure"
	"athing/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// LoginPath is where the route guard sends visitors without a session.
const LoginPath = "/auth/login"

// RegisterRoutes builds the router.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	// Client IPs come from ratelimit.ClientIP; gin must not trust forwarding headers itself.
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthHandler)
	r.GET(LoginPath, s.page("auth", "login.html"))
	r.GET("/auth/signup", s.page("auth", "signup.html"))

	auth := r.Group("/auth", ratelimit.Middleware(s.deps.Limiter, ratelimit.MiddlewareConfig{
		Scope:           "auth",
		Points:          1,
		TrustedHost:     s.cfg.TrustedHost,
		ForwardedHeader: s.cfg.ForwardedHeader,
	}))

	api := r.Group("/api", procedure.Protected(s.deps.Resolver))

	if s.deps.Accounts != nil {
		s.deps.Accounts.RegisterRoutes(auth, api)
	}
	if s.deps.Notes != nil {
		s.deps.Notes.RegisterRoutes(api)
	}
	if s.deps.Journals != nil {
		s.deps.Journals.RegisterRoutes(api)
	}

	app := r.Group("/app", RouteGuard(LoginPath))
	app.Static("/", s.cfg.WebRoot)

	return r
}

func (s *Server) page(elem ...string) gin.HandlerFunc {
	path := filepath.Join(append([]string{s.cfg.WebRoot}, elem...)...)
	return func(c *gin.Context) {
		c.File(path)
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	response := make(map[string]interface{})
	status := http.StatusOK

	if s.deps.DB != nil {
		dbHealth := s.deps.DB.Health()
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		response["database"] = dbHealth
	} else {
		response["database"] = map[string]string{"status": "not configured"}
	}

	response["redis"] = s.redisHealth(c.Request.Context())

	c.JSON(status, response)
}
