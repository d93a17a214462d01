package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "cms:blacklist:access:"

// Optional package-level Redis client for the access-token blacklist. When it
// is nil (no Redis configured) logout cannot revoke access tokens early; they
// simply age out at their exp claim.
var blacklistClient *redis.Client

// SetBlacklistClient configures the Redis client used for blacklist checks.
// Passing nil disables the blacklist.
func SetBlacklistClient(c *redis.Client) {
	blacklistClient = c
}

// BlacklistAccessToken marks an access token as revoked for ttl, which the
// caller derives from the token's remaining lifetime. No-op without Redis.
func BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	if blacklistClient == nil {
		return nil
	}
	return blacklistClient.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
}

// IsAccessTokenBlacklisted reports whether the token was revoked. Without a
// configured Redis client every token passes.
func IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if blacklistClient == nil {
		return false, nil
	}
	exists, err := blacklistClient.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
