package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultIssuer is written to and required in the iss claim.
	DefaultIssuer = "athing"
	// DefaultShortTTL is the expiry of a session issued without remember-me.
	DefaultShortTTL = 24 * time.Hour
	// DefaultLongTTL is the expiry of a remember-me session.
	DefaultLongTTL = 7 * 24 * time.Hour
)

var (
	// ErrInvalidToken is returned for every token that fails verification.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrEmptyAccountID is returned when issuing a token without an account.
	ErrEmptyAccountID = errors.New("account id is required")
	// ErrEmptySecret is returned when the signing secret is missing.
	ErrEmptySecret = errors.New("signing secret is required")
)

// TokenConfig configures a Tokens instance.
type TokenConfig struct {
	Secret   []byte
	ShortTTL time.Duration
	LongTTL  time.Duration
	Issuer   string
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Claims is the payload of a session token. Subject carries the account id.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens. Validity depends only on the
// signature, the issuer and the expiry; nothing is stored server-side.
type Tokens struct {
	secret   []byte
	shortTTL time.Duration
	longTTL  time.Duration
	issuer   string
	now      func() time.Time
	parser   *jwt.Parser
}

// NewTokens validates cfg and returns a Tokens ready for concurrent use.
func NewTokens(cfg TokenConfig) (*Tokens, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if cfg.ShortTTL == 0 {
		cfg.ShortTTL = DefaultShortTTL
	}
	if cfg.LongTTL == 0 {
		cfg.LongTTL = DefaultLongTTL
	}
	if cfg.ShortTTL < 0 || cfg.LongTTL < 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	t := &Tokens{
		secret:   cfg.Secret,
		shortTTL: cfg.ShortTTL,
		longTTL:  cfg.LongTTL,
		issuer:   cfg.Issuer,
		now:      cfg.Now,
	}
	t.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithTimeFunc(cfg.Now),
	)
	return t, nil
}

// TTL returns the expiry class selected by rememberMe.
func (t *Tokens) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return t.longTTL
	}
	return t.shortTTL
}

// Issue signs a token for accountID and returns it with its lifetime.
func (t *Tokens) Issue(accountID string, rememberMe bool) (string, time.Duration, error) {
	if accountID == "" {
		return "", 0, ErrEmptyAccountID
	}

	ttl := t.TTL(rememberMe)
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, ttl, nil
}

// Verify checks the signature and expiry of token and returns the account id it
// carries. Any failure, including malformed input, yields ErrInvalidToken.
func (t *Tokens) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var claims Claims
	parsed, err := t.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
