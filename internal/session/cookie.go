package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "token"

// SetCookie writes the session cookie with a Max-Age matching the token lifetime.
func SetCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		CookieName,
		token,
		int(ttl/time.Second),
		"/",
		"",
		secure,
		true, // httpOnly
	)
}

// ClearCookie expires the session cookie on the client. The token itself stays
// valid until its expiry; there is no server-side revocation.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

// TokenFromRequest returns the raw session token, or "" when the cookie is absent.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
