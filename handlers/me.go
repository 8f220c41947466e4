package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/avatars"
	"github.com/scavhunt/scavhunt/backend/internal/models"
	"github.com/scavhunt/scavhunt/backend/internal/profiles"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
	"github.com/scavhunt/scavhunt/backend/pkg/middleware"
)

// Reconciler resolves the caller's stored profile.
type Reconciler interface {
	Reconcile(ctx context.Context, id *auth.AuthenticatedUser) (*models.UserProfile, error)
}

// AvatarUploader stores a new avatar for an existing profile.
type AvatarUploader interface {
	Upload(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (*models.UserProfile, error)
	MaxBytes() int64
}

// Revoker denylists a bearer token until it expires.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// MeHandler serves the authenticated caller's own profile.
// Avatars and Revoker are optional; their routes are only registered when set.
type MeHandler struct {
	Profiles Reconciler
	Avatars  AvatarUploader
	Revoker  Revoker
}

// Register routes on a group that already runs AuthMiddleware.
func (h *MeHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	if h.Avatars != nil {
		rg.PUT("/me/avatar", h.UploadAvatar)
	}
	if h.Revoker != nil {
		rg.POST("/logout", h.Logout)
	}
}

// Me reconciles and returns the caller's profile.
func (h *MeHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	p, err := h.Profiles.Reconcile(c.Request.Context(), user)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.View())
}

// UploadAvatar accepts the raw image as the request body.
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	size := c.Request.ContentLength
	if size < 0 {
		c.JSON(http.StatusLengthRequired, gin.H{"message": "Content-Length required"})
		return
	}
	if limit := h.Avatars.MaxBytes(); limit > 0 && size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Avatar too large"})
		return
	}

	// the profile must exist before it can carry an avatar
	if _, err := h.Profiles.Reconcile(c.Request.Context(), user); err != nil {
		internalError(c, err)
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, size)
	p, err := h.Avatars.Upload(c.Request.Context(), user.UserID, body, size, c.ContentType())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p.View())
	case errors.Is(err, avatars.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"message": "Unsupported avatar type"})
	case errors.Is(err, avatars.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Avatar too large"})
	case errors.Is(err, avatars.ErrEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Avatar is empty"})
	case errors.Is(err, profiles.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Profile not found"})
	default:
		internalError(c, err)
	}
}

// Logout revokes the presented token for the rest of its lifetime.
func (h *MeHandler) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.Unauthorized(c)
		return
	}
	ttl := time.Until(user.ExpiresAt)
	if err := h.Revoker.Revoke(c.Request.Context(), middleware.CurrentToken(c), ttl); err != nil {
		internalError(c, err)
		return
	}
	logger.Infof("logout: revoked token of %s for %s", user.UserID, ttl.Round(time.Second))
	c.Status(http.StatusNoContent)
}

func internalError(c *gin.Context, err error) {
	logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
}
