package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// fakeSessions implements SessionReader
type fakeSessions struct {
	lookup sessions.Lookup
	err    error
}

func (f *fakeSessions) CurrentUser(ctx context.Context) (sessions.Lookup, error) {
	return f.lookup, f.err
}

func signedIn(id int64) *fakeSessions {
	return &fakeSessions{lookup: sessions.Lookup{User: &sessions.User{ID: id, Username: "u"}, Status: sessions.LookupFound}}
}

// get issues a GET from the given client address
func get(r http.Handler, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2)) // generous rate
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	// two quick requests should pass
	require.Equal(t, http.StatusOK, get(r, "/ok", "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusOK, get(r, "/ok", "10.0.0.1:1234").Code)

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	// very low rate to force rejections
	r.Use(RateLimitMiddleware(2, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/limited", "10.0.0.2:1234").Code)

	// immediate second request -> should be rate-limited
	w := get(r, "/limited", "10.0.0.2:1234")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))

	// another client has its own bucket
	require.Equal(t, http.StatusOK, get(r, "/limited", "10.0.0.3:1234").Code)

	// one token is back after 0.5s
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, get(r, "/limited", "10.0.0.2:1234").Code)
}

func TestRateLimitMiddleware_UsesSessionUserWhenPresent(t *testing.T) {
	r := gin.New()
	r.Use(SessionUser(signedIn(123)))
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/u", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, get(r, "/u", "10.0.0.4:1234").Code)

	// same user from another address shares the bucket
	require.Equal(t, http.StatusTooManyRequests, get(r, "/u", "10.0.0.5:1234").Code)
}
