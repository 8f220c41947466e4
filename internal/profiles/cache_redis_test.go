package profiles

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/models"
	"github.com/stretchr/testify/require"
)

type countingGets struct {
	Store
	gets int
}

func (s *countingGets) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.gets++
	return s.Store.Get(ctx, userID)
}

func newCached(t *testing.T, next Store) (*CachedStore, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewCachedStore(next, client, "", 5*time.Minute), m
}

func TestCachedStore_ReadThrough(t *testing.T) {
	backing := &countingGets{Store: NewMemoryStore(nil)}
	seed(t, backing, &models.UserProfile{UserID: "u1", DisplayName: "Jane Doe", Email: "jane@x.com"})
	cs, m := newCached(t, backing)

	first, err := cs.Get(context.Background(), "u1")
	require.NoError(t, err)
	second, err := cs.Get(context.Background(), "u1")
	require.NoError(t, err)

	require.Equal(t, 1, backing.gets)
	require.Equal(t, first.DisplayName, second.DisplayName)
	require.True(t, first.CreatedAt.Equal(second.CreatedAt))
	require.True(t, m.Exists("profile:u1"))
	require.Equal(t, 5*time.Minute, m.TTL("profile:u1"))
}

func TestCachedStore_MissIsNotCached(t *testing.T) {
	cs, m := newCached(t, NewMemoryStore(nil))

	p, err := cs.Get(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, p)
	require.False(t, m.Exists("profile:ghost"))
}

func TestCachedStore_WritesRefreshCache(t *testing.T) {
	cs, m := newCached(t, NewMemoryStore(nil))
	ctx := context.Background()

	created, err := cs.Create(ctx, &models.UserProfile{UserID: "u1", DisplayName: "User"})
	require.NoError(t, err)

	next := created.Clone()
	next.DisplayName = "Ada Lovelace"
	_, err = cs.Put(ctx, next)
	require.NoError(t, err)

	raw, err := m.Get("profile:u1")
	require.NoError(t, err)
	var cached models.UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	require.Equal(t, "Ada Lovelace", cached.DisplayName)
	require.True(t, created.CreatedAt.Equal(cached.CreatedAt))
}

func TestCachedStore_CreateConflictEvicts(t *testing.T) {
	backing := NewMemoryStore(nil)
	cs, m := newCached(t, backing)
	ctx := context.Background()

	seed(t, backing, &models.UserProfile{UserID: "u1", DisplayName: "Jane Doe"})
	require.NoError(t, m.Set("profile:u1", `{"userId":"u1","displayName":"stale"}`))

	_, err := cs.Create(ctx, &models.UserProfile{UserID: "u1", DisplayName: "User"})
	require.ErrorIs(t, err, ErrProfileExists)
	require.False(t, m.Exists("profile:u1"))

	p, err := cs.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", p.DisplayName)
}

func TestCachedStore_FallsBackWhenRedisDown(t *testing.T) {
	backing := NewMemoryStore(nil)
	seed(t, backing, &models.UserProfile{UserID: "u1", DisplayName: "Jane Doe"})
	cs, m := newCached(t, backing)
	m.Close()

	p, err := cs.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", p.DisplayName)
}

func TestCachedStore_ReconcileRoundTrip(t *testing.T) {
	clk := newClock()
	backing := &countingStore{Store: NewMemoryStore(clk.Now)}
	cs, _ := newCached(t, backing)
	id := &auth.AuthenticatedUser{UserID: "u1", Email: "a@b.com"}

	first, err := Reconcile(context.Background(), id, cs)
	require.NoError(t, err)
	second, err := Reconcile(context.Background(), id, cs)
	require.NoError(t, err)

	require.Equal(t, 1, backing.writes())
	require.Equal(t, first.DisplayName, second.DisplayName)
	require.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
}

func TestCachedStore_DropsUndecodableEntry(t *testing.T) {
	backing := NewMemoryStore(nil)
	seed(t, backing, &models.UserProfile{UserID: "u1", DisplayName: "Jane Doe"})
	cs, m := newCached(t, backing)
	require.NoError(t, m.Set("profile:u1", "not json"))

	p, err := cs.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", p.DisplayName)

	raw, err := m.Get("profile:u1")
	require.NoError(t, err)
	require.NotEqual(t, "not json", raw)
}
