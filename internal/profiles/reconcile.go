package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/models"
)

// FallbackDisplayName is used when a token carries neither names nor email.
const FallbackDisplayName = "User"

// DisplayName derives the name a profile should carry for id.
func DisplayName(id *auth.AuthenticatedUser) string {
	given := strings.TrimSpace(id.GivenName)
	family := strings.TrimSpace(id.FamilyName)
	if given != "" && family != "" {
		return given + " " + family
	}
	if email := strings.TrimSpace(id.Email); email != "" {
		return email
	}
	return FallbackDisplayName
}

type writeOp string

const (
	opNone   writeOp = "none"
	opCreate writeOp = "create"
	opUpdate writeOp = "update"
)

// Reconcile loads the profile for id and brings it in line with the
// verified claims, creating it on first visit. It writes at most once and
// not at all when the stored record already agrees with the claims.
func Reconcile(ctx context.Context, id *auth.AuthenticatedUser, store Store) (*models.UserProfile, error) {
	p, _, err := reconcile(ctx, id, store)
	return p, err
}

func reconcile(ctx context.Context, id *auth.AuthenticatedUser, store Store) (*models.UserProfile, writeOp, error) {
	p, op, err := reconcileOnce(ctx, id, store)
	if errors.Is(err, ErrProfileExists) {
		// a concurrent first visit created the profile; reconcile against it
		p, op, err = reconcileOnce(ctx, id, store)
	}
	return p, op, err
}

func reconcileOnce(ctx context.Context, id *auth.AuthenticatedUser, store Store) (*models.UserProfile, writeOp, error) {
	existing, err := store.Get(ctx, id.UserID)
	if err != nil {
		return nil, opNone, fmt.Errorf("load profile %s: %w", id.UserID, err)
	}

	derived := DisplayName(id)
	email := strings.TrimSpace(id.Email)
	claimedEmail := email
	if email == "" && existing != nil {
		email = existing.Email
	}

	if existing == nil {
		created, err := store.Create(ctx, &models.UserProfile{
			UserID:      id.UserID,
			DisplayName: derived,
			Email:       email,
		})
		if err != nil {
			return nil, opNone, fmt.Errorf("create profile %s: %w", id.UserID, err)
		}
		return created, opCreate, nil
	}

	name := existing.DisplayName
	if replaceableName(existing.DisplayName, claimedEmail) {
		name = derived
	}

	if name == existing.DisplayName && (email == "" || email == existing.Email) {
		return existing, opNone, nil
	}

	next := existing.Clone()
	next.DisplayName = name
	if email != "" {
		next.Email = email
	}
	updated, err := store.Put(ctx, next)
	if err != nil {
		return nil, opNone, fmt.Errorf("update profile %s: %w", id.UserID, err)
	}
	return updated, opUpdate, nil
}

// replaceableName reports whether a stored name is a placeholder that
// fresh claims should supersede.
func replaceableName(stored, claimedEmail string) bool {
	switch {
	case stored == "", stored == FallbackDisplayName:
		return true
	case claimedEmail != "" && stored == claimedEmail:
		return true
	}
	return false
}
