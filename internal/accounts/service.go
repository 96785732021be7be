// Package accounts implements login, signup and the account procedures.
package accounts

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"athing/internal/credentials"

	"github.com/google/uuid"
)

const (
	// usernameSpace bounds the numeric suffix of generated usernames.
	usernameSpace = 1000000
	// defaultUsernameAttempts caps the retries on username collisions.
	defaultUsernameAttempts = 10
	// maxPasswordBytes is the longest input bcrypt accepts.
	maxPasswordBytes = 72
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMaintenance is returned for logins while maintenance mode is on.
	ErrMaintenance = errors.New("logins are disabled for maintenance")
	// ErrBlacklisted is returned when a blacklisted account tries to log in.
	ErrBlacklisted = errors.New("account is blacklisted")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password is too long")
	// ErrUsernameExhausted is returned when no free username was found.
	ErrUsernameExhausted = errors.New("could not allocate a username")
)

// Store is the persistence the service needs.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, id, username, passwordHash string) (*Account, error)
}

// TokenIssuer issues signed session tokens.
type TokenIssuer interface {
	Issue(accountID string, rememberMe bool) (string, time.Duration, error)
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	MaintenanceMode           bool
	MaintenanceBypassUsername string
	// UsernameAttempts caps signup retries; 0 means the default.
	UsernameAttempts int
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
	// GenerateUsername overrides username generation.
	GenerateUsername func() string
	// VerifyPassword overrides the password check; nil means credentials.VerifyPassword.
	VerifyPassword func(password, hash string) bool
}

// dummyPasswordHash is compared against when the username is unknown, so a
// failed login costs one bcrypt comparison either way.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := credentials.HashPassword("athing-unknown-account-password")
	if err != nil {
		panic(fmt.Sprintf("failed to hash dummy password: %v", err))
	}
	return hash
})

// Service implements the account procedures.
type Service struct {
	store  Store
	tokens TokenIssuer
	cfg    ServiceConfig
}

// NewService creates a new accounts service
func NewService(store Store, tokens TokenIssuer, cfg ServiceConfig) *Service {
	if cfg.UsernameAttempts <= 0 {
		cfg.UsernameAttempts = defaultUsernameAttempts
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.GenerateUsername == nil {
		cfg.GenerateUsername = generateUsername
	}
	if cfg.VerifyPassword == nil {
		cfg.VerifyPassword = credentials.VerifyPassword
	}
	return &Service{store: store, tokens: tokens, cfg: cfg}
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if s.cfg.MaintenanceMode && !s.maintenanceBypass(req.Username) {
		return nil, ErrMaintenance
	}

	acct, err := s.store.FindByUsername(ctx, req.Username)
	if errors.Is(err, ErrAccountNotFound) {
		s.cfg.VerifyPassword(req.Password, dummyPasswordHash())
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !s.cfg.VerifyPassword(req.Password, acct.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if acct.IsBlacklisted {
		return nil, ErrBlacklisted
	}

	token, ttl, err := s.tokens.Issue(acct.ID, req.RememberMe)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &Session{
		Account:   acct,
		Token:     token,
		TTL:       ttl,
		ExpiresAt: s.cfg.Now().Add(ttl),
	}, nil
}

// Signup creates an account with a generated username.
func (s *Service) Signup(ctx context.Context, password string) (*Account, error) {
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := credentials.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	for attempt := 1; attempt <= s.cfg.UsernameAttempts; attempt++ {
		username := s.cfg.GenerateUsername()

		acct, err := s.store.Create(ctx, uuid.NewString(), username, hash)
		if errors.Is(err, ErrUsernameTaken) {
			slog.Debug("Generated username collided", "username", username, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		return acct, nil
	}

	return nil, ErrUsernameExhausted
}

// Me returns the account of the authenticated caller.
func (s *Service) Me(ctx context.Context, accountID string) (*Account, error) {
	return s.store.FindByID(ctx, accountID)
}

func (s *Service) maintenanceBypass(username string) bool {
	bypass := s.cfg.MaintenanceBypassUsername
	return bypass != "" && bypass == username
}

// generateUsername returns anon followed by a random number below one million.
func generateUsername() string {
	n, err := rand.Int(rand.Reader, big.NewInt(usernameSpace))
	if err != nil {
		panic(fmt.Sprintf("failed to generate secure random number: %v", err))
	}
	return fmt.Sprintf("anon%d", n.Int64())
}
