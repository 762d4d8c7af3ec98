package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client key that deduplicates retried
// submissions.
const HeaderIdempotencyKey = "Idempotency-Key"

// anonymousUser is the log identity of unauthenticated requests.
const anonymousUser = "anonymous"

// anonymousOwnerPrefix prefixes the client address that owns the keys of
// unauthenticated requests.
const anonymousOwnerPrefix = "anon:"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the validated key stored by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether a stored result exists for this request's key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Scope names the resource the key is bound to. The default is the :id
	// route parameter. An empty scope skips the lookup.
	Scope func(c *gin.Context) string
}

// IdempotencyLookup reports whether a still-valid result exists for
// (userID, scope, key). Errors never block the request.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present and
// stashes it for handlers. When lookup finds an earlier result the request is
// flagged as a replay and exempted from rate limiting. Malformed keys get 400.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}
	scopeOf := opts.Scope
	if scopeOf == nil {
		scopeOf = func(c *gin.Context) string { return c.Param("id") }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			abortJSON(c, http.StatusBadRequest, "bad_idempotency_key", "invalid Idempotency-Key")
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			if scope := scopeOf(c); scope != "" {
				exists, err := lookup(c.Request.Context(), IdempotencyOwner(c), scope, key, time.Now().UTC())
				if err != nil {
					LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
				}
				if exists {
					c.Set(ctxKeyIdemReplay, true)
					c.Set(ctxKeyRateBypass, true)
				}
			}
		}
		c.Next()
	}
}

// IdempotencyOwner returns the owner idempotency keys are bound to: the
// authenticated user ID, or "anon:" plus the client address so that
// anonymous respondents never share keys.
func IdempotencyOwner(c *gin.Context) string {
	if id := userIDFromCtx(c); id != anonymousUser {
		return id
	}
	return AnonymousOwner(c.ClientIP())
}

// AnonymousOwner builds the idempotency owner for an unauthenticated client
// address.
func AnonymousOwner(clientIP string) string {
	return anonymousOwnerPrefix + clientIP
}

// userIDFromCtx returns the authenticated user ID set by Authenticate, or
// "anonymous".
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return anonymousUser
}
