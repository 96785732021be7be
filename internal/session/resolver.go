// Package session turns the session cookie of an incoming request into an
// authenticated account id.
//
// A session is valid only if the token signature verifies, the token has not
// expired, and the account it names exists and is not blacklisted. Anything
// else is treated as no session at all.
package session

import (
	"errors"
	"log/slog"
	"net/http"
)

// Resolver resolves the account behind a request's session cookie.
type Resolver struct {
	tokens   TokenVerifier
	accounts AccountLookup
	logger   *slog.Logger
}

// NewResolver creates a Resolver. A nil logger uses slog.Default.
func NewResolver(tokens TokenVerifier, accounts AccountLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		tokens:   tokens,
		accounts: accounts,
		logger:   logger,
	}
}

// Resolve returns the account id for the request's session, or false when the
// request has no usable session. It never mutates state.
func (r *Resolver) Resolve(req *http.Request) (string, bool) {
	token := TokenFromRequest(req)
	if token == "" {
		return "", false
	}

	accountID, err := r.tokens.Verify(token)
	if err != nil {
		r.logger.Debug("Rejected session token", "error", err.Error())
		return "", false
	}

	account, err := r.accounts.LookupAccount(req.Context(), accountID)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		r.logger.Debug("Session account no longer exists", "account_id", accountID)
		return "", false
	case err != nil:
		r.logger.Warn("Session account lookup failed", "account_id", accountID, "error", err)
		return "", false
	case account == nil:
		return "", false
	}

	if account.IsBlacklisted {
		r.logger.Info("Rejected session of blacklisted account", "account_id", accountID)
		return "", false
	}

	return account.ID, true
}
