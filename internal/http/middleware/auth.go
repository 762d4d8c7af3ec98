package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-survey-backend/internal/auth"
)

const (
	// ctxKeyUserID holds the decimal user ID of an authenticated caller.
	ctxKeyUserID = "userID"
	ctxKeyClaims = "claims"
)

// TokenVerifier parses bearer tokens.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// Authenticate reads an optional "Authorization: Bearer <token>" header.
// Valid tokens store their claims and user ID in the context; missing or
// invalid tokens leave the request anonymous. Routes that require an
// identity add RequireAuth.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" || v == nil {
			c.Next()
			return
		}
		claims, err := v.Verify(raw)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("ignoring invalid bearer token")
			c.Next()
			return
		}
		c.Set(ctxKeyClaims, claims)
		c.Set(ctxKeyUserID, strconv.FormatUint(uint64(claims.UserID), 10))
		c.Next()
	}
}

func bearerToken(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// ClaimsFrom returns the verified claims of the caller, if any.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxKeyClaims)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok && cl != nil
}

// RequireAuth answers 401 unauthorized when Authenticate found no valid token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFrom(c); !ok {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		c.Next()
	}
}

// RequireRole answers 401 without a token and 403 forbidden when the token
// lacks role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := ClaimsFrom(c)
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		if !cl.HasRole(role) {
			abortJSON(c, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		c.Next()
	}
}
