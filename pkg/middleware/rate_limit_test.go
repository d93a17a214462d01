package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware_BurstThenReject(t *testing.T) {
	g := gin.New()
	// tiny budget so the test exhausts it immediately
	g.GET("/", RateLimitMiddleware(1, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 4; i++ {
		rw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		g.ServeHTTP(rw, req)
		codes = append(codes, rw.Code)
	}

	require.Equal(t, http.StatusOK, codes[0])
	require.Equal(t, http.StatusOK, codes[1])
	require.Equal(t, http.StatusTooManyRequests, codes[2])
	require.Equal(t, http.StatusTooManyRequests, codes[3])
}

// Mounted behind RequireAuth the limiter must budget per editor, so two
// editors sharing an office IP do not starve each other.
func TestRateLimitMiddleware_IdentityKeyedBehindAuth(t *testing.T) {
	g := gin.New()
	setIdentity := func(c *gin.Context) {
		c.Set("identity", Identity{UserID: c.GetHeader("X-Test-Subject")})
	}
	g.GET("/", setIdentity, RateLimitMiddleware(0.0001, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(subject string) int {
		rw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.4.4.4:2000"
		req.Header.Set("X-Test-Subject", subject)
		g.ServeHTTP(rw, req)
		return rw.Code
	}

	require.Equal(t, http.StatusOK, do("kb-editor-anu"))
	require.Equal(t, http.StatusOK, do("kb-editor-ravi"))
	require.Equal(t, http.StatusTooManyRequests, do("kb-editor-anu"))
	require.Equal(t, http.StatusTooManyRequests, do("kb-editor-ravi"))
}

func TestRateLimitMiddleware_KeysAreIndependent(t *testing.T) {
	g := gin.New()
	g.GET("/", RateLimitMiddleware(1, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	// exhaust the first client's bucket
	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.9.9.1:1000"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)

	rw = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.9.9.1:1000"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusTooManyRequests, rw.Code)

	// a different client still has budget
	rw = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.9.9.2:1000"
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
}
