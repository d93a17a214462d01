package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vedicroots/vedicroots/backend/cms-services/internal/sessions"
	"github.com/vedicroots/vedicroots/backend/cms-services/pkg/metrics"
)

// AccessTokenCookie carries the access token for browser clients that do not
// set an Authorization header.
const AccessTokenCookie = "cms_access_token"

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Identity is the minimal authenticated principal attached to the request context.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// GetIdentity returns the identity set by RequireAuth, if any.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get("identity")
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// RequireAuth returns a Gin middleware that resolves a bearer or cookie access
// token using the provided verifier and attaches the identity to the context.
// Requests without a valid token are rejected with 401 before the wrapped
// handler runs.
func RequireAuth(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			metrics.AuthFailures.WithLabelValues("missing_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing credentials"})
			return
		}

		if black, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token); err == nil && black {
			metrics.AuthFailures.WithLabelValues("blacklisted").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			metrics.AuthFailures.WithLabelValues("bad_claims").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "failed to parse claims"})
			return
		}

		id := Identity{}
		id.UserID, _ = claims["sub"].(string)
		id.Email, _ = claims["email"].(string)
		id.Role, _ = claims["role"].(string)
		if id.UserID == "" {
			metrics.AuthFailures.WithLabelValues("bad_claims").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		c.Set("claims", claims)
		c.Set("identity", id)
		c.Next()
	}
}

// extractToken prefers 'Authorization: Bearer <token>' and falls back to the
// access-token cookie.
func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n == 1 {
			return token
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}
