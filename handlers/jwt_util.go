package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ""
	}
	var token string
	if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n == 1 {
		return token
	}
	return ""
}

// jwtPayloadClaims decodes the JWT payload without verifying the signature.
// Only for best-effort bookkeeping (blacklist TTLs, audit subjects), never for
// authentication decisions.
func jwtPayloadClaims(tok string) (map[string]interface{}, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid token")
	}
	payload := parts[1]
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		// try standard base64 (pad) as a fallback
		b, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, err
		}
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(b, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// parseSubFromJWT returns the sub claim, or "" when the token does not carry one.
func parseSubFromJWT(tok string) string {
	claims, err := jwtPayloadClaims(tok)
	if err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

// parseExpFromJWT returns the exp claim as time.Time, for computing the
// remaining TTL when blacklisting an access token.
func parseExpFromJWT(tok string) (time.Time, error) {
	claims, err := jwtPayloadClaims(tok)
	if err != nil {
		return time.Time{}, err
	}
	v, ok := claims["exp"]
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	// exp may be float64 (json number) or json.Number; handle common cases
	switch vv := v.(type) {
	case float64:
		return time.Unix(int64(vv), 0), nil
	case int64:
		return time.Unix(vv, 0), nil
	case json.Number:
		i64, err := vv.Int64()
		if err != nil {
			f, err2 := vv.Float64()
			if err2 != nil {
				return time.Time{}, err
			}
			return time.Unix(int64(f), 0), nil
		}
		return time.Unix(i64, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", v)
	}
}
