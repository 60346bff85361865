package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/internal/sessions"
)

const sessionKey = "session"

// SessionReader is the minimal interface the middleware depends on
type SessionReader interface {
	CurrentUser(ctx context.Context) (sessions.Lookup, error)
}

// SessionUser resolves the current session once per request and stores
// the lookup in the gin context. Storage failures abort with 503.
func SessionUser(r SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := r.CurrentUser(c.Request.Context())
		if err != nil {
			Log(c).Errorf("session lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}
		c.Set(sessionKey, l)
		c.Next()
	}
}

// CurrentSession returns the lookup stored by SessionUser, or a guest lookup.
func CurrentSession(c *gin.Context) sessions.Lookup {
	if v, ok := c.Get(sessionKey); ok {
		if l, ok := v.(sessions.Lookup); ok {
			return l
		}
	}
	return sessions.Lookup{Status: sessions.LookupAbsent}
}

// CurrentUser returns the signed-in user, or nil for guests.
func CurrentUser(c *gin.Context) *sessions.User {
	return CurrentSession(c).User
}

// RequireUser rejects guests with 401. It must run after SessionUser.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		c.Next()
	}
}
