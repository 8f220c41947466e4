package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
	"github.com/scavhunt/scavhunt/backend/pkg/metrics"
)

// Context keys set by AuthMiddleware.
const (
	UserKey  = "user"
	TokenKey = "token"
)

// TokenVerifier is the minimal interface the middleware depends on
type TokenVerifier interface {
	Verify(ctx context.Context, authorizationHeader string) (*auth.AuthenticatedUser, error)
}

// RevocationChecker reports whether a verified token was revoked early.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier.
// Every rejection is the same 401 body; the cause is only logged. revoked may be nil.
func AuthMiddleware(ver TokenVerifier, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		user, err := ver.Verify(c.Request.Context(), header)
		if err != nil {
			reject(c, auth.Reason(err), auth.Describe(err))
			return
		}

		token, _ := auth.BearerToken(header)
		if revoked != nil {
			gone, err := revoked.IsRevoked(c.Request.Context(), token)
			if err != nil {
				logger.Errorf("auth: revocation check failed: %v", err)
				reject(c, "revocation_check", err.Error())
				return
			}
			if gone {
				reject(c, "revoked", "token revoked")
				return
			}
		}

		c.Set(UserKey, user)
		c.Set(TokenKey, token)
		c.Next()
	}
}

func reject(c *gin.Context, reason, detail string) {
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	logger.Debugf("auth: rejected %s %s: %s", c.Request.Method, c.Request.URL.Path, detail)
	Unauthorized(c)
}

// Unauthorized aborts with the uniform authentication failure response.
func Unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

// CurrentUser returns the identity stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*auth.AuthenticatedUser, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*auth.AuthenticatedUser)
	return u, ok && u != nil
}

// CurrentToken returns the raw bearer token of the authenticated request.
func CurrentToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
