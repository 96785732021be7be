package session

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned by an AccountLookup when no account has the id.
var ErrAccountNotFound = errors.New("account not found")

// Account is the slice of an account the resolver needs.
type Account struct {
	ID            string
	IsBlacklisted bool
}

// AccountLookup finds an account by id. It is the resolver's only read against
// the persistence layer.
type AccountLookup interface {
	LookupAccount(ctx context.Context, id string) (*Account, error)
}

// TokenVerifier verifies a signed session token and returns its account id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}
