package accounts

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"sync"

	"athing/internal/procedure"
	"athing/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	registerOnce    sync.Once
)

// registerValidations adds the "username" binding tag to gin's validator.
func registerValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

// Handler handles account-related HTTP requests
type Handler struct {
	service       *Service
	secureCookies bool
}

// NewHandler creates a new accounts handler. secureCookies marks the session
// cookie Secure and should be true in production.
func NewHandler(service *Service, secureCookies bool) *Handler {
	registerValidations()
	return &Handler{service: service, secureCookies: secureCookies}
}

// RegisterRoutes wires the public auth procedures and the protected account
// procedures.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)
	public.POST("/signup", h.Signup)
	public.POST("/logout", h.Logout)

	protected.GET("/me", h.Me)
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			procedure.Fail(c, procedure.KindUnauthorized, "invalid username or password")
		case errors.Is(err, ErrBlacklisted):
			procedure.Fail(c, procedure.KindForbidden, "account is blacklisted")
		case errors.Is(err, ErrMaintenance):
			procedure.Fail(c, procedure.KindServiceUnavailable, "logins are disabled during maintenance")
		default:
			slog.Error("Login failed", "username", req.Username, "error", err)
			procedure.Abort(c, err)
		}
		return
	}

	session.SetCookie(c, sess.Token, sess.TTL, h.secureCookies)

	slog.Info("Account logged in", "account_id", sess.Account.ID, "remember_me", req.RememberMe)

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: LoginResponse{
			ID:        sess.Account.ID,
			Username:  sess.Account.Username,
			Token:     sess.Token,
			ExpiresAt: sess.ExpiresAt,
		},
	})
}

// Signup handles POST /auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		procedure.Fail(c, procedure.KindBadRequest, err.Error())
		return
	}

	acct, err := h.service.Signup(c.Request.Context(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordTooLong):
			procedure.Fail(c, procedure.KindBadRequest, "password is too long")
		case errors.Is(err, ErrUsernameExhausted):
			slog.Warn("Signup could not allocate a username")
			procedure.Fail(c, procedure.KindConflict, "could not allocate a username, try again")
		default:
			slog.Error("Signup failed", "error", err)
			procedure.Abort(c, err)
		}
		return
	}

	slog.Info("Account created", "account_id", acct.ID, "username", acct.Username)

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    SignupResponse{ID: acct.ID, Username: acct.Username},
	})
}

// Logout handles POST /auth/logout. The token stays valid until it expires;
// only the cookie is removed.
func (h *Handler) Logout(c *gin.Context) {
	session.ClearCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, Response{Success: true, Message: "logged out"})
}

// Me handles GET /api/me
func (h *Handler) Me(c *gin.Context) {
	accountID, ok := procedure.AccountID(c)
	if !ok {
		procedure.Abort(c, procedure.ErrUnauthorized)
		return
	}

	acct, err := h.service.Me(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			procedure.Fail(c, procedure.KindNotFound, "account not found")
			return
		}
		slog.Error("Failed to load account", "account_id", accountID, "error", err)
		procedure.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: acct})
}
