package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/models"
	"github.com/scavhunt/scavhunt/backend/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestService_ReconcileCountsWrites(t *testing.T) {
	svc := NewService(NewMemoryStore(nil))
	ctx := context.Background()
	creates := testutil.ToFloat64(metrics.ProfileWrites.WithLabelValues("create"))
	updates := testutil.ToFloat64(metrics.ProfileWrites.WithLabelValues("update"))

	_, err := svc.Reconcile(ctx, &auth.AuthenticatedUser{UserID: "svc-1"})
	require.NoError(t, err)
	_, err = svc.Reconcile(ctx, &auth.AuthenticatedUser{UserID: "svc-1"})
	require.NoError(t, err)
	p, err := svc.Reconcile(ctx, &auth.AuthenticatedUser{UserID: "svc-1", GivenName: "Ada", FamilyName: "Lovelace"})
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", p.DisplayName)

	require.Equal(t, creates+1, testutil.ToFloat64(metrics.ProfileWrites.WithLabelValues("create")))
	require.Equal(t, updates+1, testutil.ToFloat64(metrics.ProfileWrites.WithLabelValues("update")))
}

func TestService_SetAvatar(t *testing.T) {
	clk := newClock()
	svc := NewService(NewMemoryStore(clk.Now))
	ctx := context.Background()

	_, err := svc.SetAvatar(ctx, "nobody", "https://cdn/x.png")
	require.ErrorIs(t, err, ErrProfileNotFound)

	orig, err := svc.Reconcile(ctx, &auth.AuthenticatedUser{UserID: "u1", Email: "a@b.com"})
	require.NoError(t, err)
	clk.Advance(time.Minute)

	p, err := svc.SetAvatar(ctx, "u1", "https://cdn/x.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn/x.png", p.AvatarURL)
	require.Equal(t, orig.CreatedAt, p.CreatedAt)
	require.True(t, p.UpdatedAt.After(orig.UpdatedAt))

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestMemoryStore(t *testing.T) {
	clk := newClock()
	s := NewMemoryStore(clk.Now)
	ctx := context.Background()

	p, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, p)

	in := &models.UserProfile{UserID: "u1", DisplayName: "User"}
	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	require.True(t, in.CreatedAt.IsZero(), "input must not be modified")
	require.Equal(t, clk.Now(), created.CreatedAt)

	_, err = s.Create(ctx, in)
	require.ErrorIs(t, err, ErrProfileExists)

	// callers cannot mutate stored state through returned values
	created.DisplayName = "mutated"
	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "User", got.DisplayName)

	clk.Advance(time.Second)
	put, err := s.Put(ctx, &models.UserProfile{UserID: "u2", DisplayName: "New"})
	require.NoError(t, err)
	require.Equal(t, put.CreatedAt, put.UpdatedAt)
	require.Equal(t, 2, s.Len())

	_, err = s.Create(ctx, &models.UserProfile{})
	require.Error(t, err)
}
