package profiles

import (
	"context"

	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/models"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
	"github.com/scavhunt/scavhunt/backend/pkg/metrics"
)

// Service encapsulates profile business logic
type Service struct {
	store Store
}

func NewService(s Store) *Service {
	return &Service{store: s}
}

// Reconcile returns the caller's profile, creating or refreshing it from
// the verified identity.
func (s *Service) Reconcile(ctx context.Context, id *auth.AuthenticatedUser) (*models.UserProfile, error) {
	p, op, err := reconcile(ctx, id, s.store)
	if err != nil {
		logger.Errorf("profiles: reconcile %s: %v", id.UserID, err)
		return nil, err
	}
	if op != opNone {
		metrics.ProfileWrites.WithLabelValues(string(op)).Inc()
		logger.Debugf("profiles: %s %s (displayName=%q)", op, p.UserID, p.DisplayName)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.store.Get(ctx, userID)
}

// SetAvatar points an existing profile at a new avatar URL.
func (s *Service) SetAvatar(ctx context.Context, userID, url string) (*models.UserProfile, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	next := p.Clone()
	next.AvatarURL = url
	updated, err := s.store.Put(ctx, next)
	if err != nil {
		return nil, err
	}
	metrics.ProfileWrites.WithLabelValues("avatar").Inc()
	return updated, nil
}
