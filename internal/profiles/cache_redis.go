package profiles

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scavhunt/scavhunt/backend/internal/models"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
)

// CachedStore is a read-through Redis cache in front of another Store.
// Profiles are stored as JSON under "<prefix><userId>" with a fixed TTL.
// Redis failures degrade to the backing store.
type CachedStore struct {
	next   Store
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedStore wraps next. Prefix may be empty.
func NewCachedStore(next Store, client *redis.Client, prefix string, ttl time.Duration) *CachedStore {
	if prefix == "" {
		prefix = "profile:"
	}
	return &CachedStore{next: next, client: client, prefix: prefix, ttl: ttl}
}

func (c *CachedStore) key(userID string) string {
	return c.prefix + userID
}

func (c *CachedStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	b, err := c.client.Get(ctx, c.key(userID)).Bytes()
	switch {
	case err == nil:
		var p models.UserProfile
		if err := json.Unmarshal(b, &p); err == nil {
			return &p, nil
		}
		logger.Warnf("profile cache: dropping undecodable entry for %s", userID)
		c.evict(ctx, userID)
	case err != redis.Nil:
		logger.Warnf("profile cache: get %s: %v", userID, err)
	}

	p, err := c.next.Get(ctx, userID)
	if err != nil || p == nil {
		return p, err
	}
	c.store(ctx, p)
	return p, nil
}

func (c *CachedStore) Create(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	created, err := c.next.Create(ctx, p)
	if err != nil {
		if err == ErrProfileExists {
			c.evict(ctx, p.UserID)
		}
		return nil, err
	}
	c.store(ctx, created)
	return created, nil
}

func (c *CachedStore) Put(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	updated, err := c.next.Put(ctx, p)
	if err != nil {
		c.evict(ctx, p.UserID)
		return nil, err
	}
	c.store(ctx, updated)
	return updated, nil
}

func (c *CachedStore) store(ctx context.Context, p *models.UserProfile) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(p.UserID), b, c.ttl).Err(); err != nil {
		logger.Warnf("profile cache: set %s: %v", p.UserID, err)
	}
}

func (c *CachedStore) evict(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		logger.Warnf("profile cache: del %s: %v", userID, err)
	}
}
