package procedure

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AccountIDKey is the gin context key holding the authenticated account id.
const AccountIDKey = "account_id"

type accountIDContextKey struct{}

// Resolver produces the account id of a request's session, or false when the
// request carries no valid session.
type Resolver interface {
	Resolve(r *http.Request) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(r *http.Request) (string, bool)

// Resolve calls f(r).
func (f ResolverFunc) Resolve(r *http.Request) (string, bool) {
	return f(r)
}

// Protect runs handler with the resolved account id bound into ctx. Without a
// session it returns ErrUnauthorized and never calls handler. The handler's
// error is returned unchanged.
func Protect(ctx context.Context, accountID string, ok bool, handler func(ctx context.Context) error) error {
	if !ok || accountID == "" {
		return ErrUnauthorized
	}
	return handler(WithAccountID(ctx, accountID))
}

// Protected is the gin form of Protect. Routes registered behind it only run
// for requests with a valid session.
func Protected(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := resolver.Resolve(c.Request)

		err := Protect(c.Request.Context(), accountID, ok, func(ctx context.Context) error {
			c.Set(AccountIDKey, accountID)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return nil
		})
		if err != nil {
			Abort(c, err)
		}
	}
}

// WithAccountID returns a copy of ctx carrying accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDContextKey{}, accountID)
}

// AccountIDFromContext extracts the authenticated account id from ctx.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDContextKey{}).(string)
	return id, ok && id != ""
}

// AccountID is a helper to extract the account id set by Protected.
func AccountID(c *gin.Context) (string, bool) {
	value, exists := c.Get(AccountIDKey)
	if !exists {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
