package profiles

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scavhunt/scavhunt/backend/internal/models"
)

// MemoryStore keeps profiles in process memory. It backs local runs
// without MongoDB and the package tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserProfile
	now      func() time.Time
}

// NewMemoryStore creates an empty store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{profiles: make(map[string]*models.UserProfile), now: now}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[userID].Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if p.UserID == "" {
		return nil, errors.New("userId is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; ok {
		return nil, ErrProfileExists
	}
	stored := p.Clone()
	stored.CreatedAt = s.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	s.profiles[p.UserID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if p.UserID == "" {
		return nil, errors.New("userId is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := p.Clone()
	now := s.now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.profiles[p.UserID] = stored
	return stored.Clone(), nil
}

// Len returns the number of stored profiles.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
