package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// Denylist records revoked bearer tokens in Redis until they would have
// expired anyway. A Denylist with a nil client is disabled: Revoke is a
// no-op and IsRevoked reports false.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(c *redis.Client) *Denylist {
	return &Denylist{client: c}
}

// Enabled reports whether revocations are persisted.
func (d *Denylist) Enabled() bool {
	return d != nil && d.client != nil
}

// tokens are stored hashed so the denylist never holds usable credentials
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Revoke denylists token for ttl. A non-positive ttl means the token has
// already expired and nothing is stored.
func (d *Denylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if !d.Enabled() || ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, key(token), "1", ttl).Err()
}

// IsRevoked returns true when the token exists in the denylist.
func (d *Denylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if !d.Enabled() {
		return false, nil
	}
	exists, err := d.client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
