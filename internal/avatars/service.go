// Package avatars stores profile pictures in object storage and links them
// to the owner's profile.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/scavhunt/scavhunt/backend/internal/models"
	"github.com/scavhunt/scavhunt/backend/internal/profiles"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
)

var (
	ErrUnsupportedType = errors.New("unsupported avatar content type")
	ErrTooLarge        = errors.New("avatar exceeds size limit")
	ErrEmpty           = errors.New("avatar is empty")
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ObjectStore is the subset of object storage the service needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	ObjectURL(key string) string
}

// Profiles reads and updates the profile an avatar belongs to.
type Profiles interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	SetAvatar(ctx context.Context, userID, url string) (*models.UserProfile, error)
}

type Service struct {
	objects  ObjectStore
	profiles Profiles
	maxBytes int64
}

func NewService(objects ObjectStore, p Profiles, maxBytes int64) *Service {
	return &Service{objects: objects, profiles: p, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Upload stores body as the new avatar of userID and returns the updated
// profile. The profile must already exist.
func (s *Service) Upload(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (*models.UserProfile, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if size <= 0 {
		return nil, ErrEmpty
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, size, s.maxBytes)
	}

	existing, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, profiles.ErrProfileNotFound
	}

	key := ObjectKey(userID, uuid.NewString(), ext)
	if err := s.objects.Put(ctx, key, io.LimitReader(body, size), size, contentType); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	updated, err := s.profiles.SetAvatar(ctx, userID, s.objects.ObjectURL(key))
	if err != nil {
		if rerr := s.objects.Remove(ctx, key); rerr != nil {
			logger.Warnf("avatars: orphaned object %s: %v", key, rerr)
		}
		return nil, err
	}
	logger.Infof("avatars: %s uploaded %s (%d bytes)", userID, key, size)
	return updated, nil
}

// ObjectKey lays out avatar objects per user.
func ObjectKey(userID, id, ext string) string {
	return "avatars/" + userID + "/" + id + "." + ext
}
