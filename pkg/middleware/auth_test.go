package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/revocation"
	"github.com/scavhunt/scavhunt/backend/pkg/metrics"
	"github.com/stretchr/testify/require"
)

// fakeVerifier implements TokenVerifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, header string) (*auth.AuthenticatedUser, error) {
	token, err := auth.BearerToken(header)
	if err != nil {
		return nil, &auth.AuthenticationError{Cause: err}
	}
	if token == "goodtoken" || token == "black-token" {
		return &auth.AuthenticatedUser{UserID: "user1", Email: "test@example.com"}, nil
	}
	return nil, &auth.AuthenticationError{Cause: auth.ErrInvalidSignature}
}

func serve(t *testing.T, h gin.HandlerFunc, header string) *httptest.ResponseRecorder {
	t.Helper()
	g := gin.New()
	g.GET("/", h, func(c *gin.Context) {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": u.UserID, "token": CurrentToken(c)})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func requireUnauthorized(t *testing.T, rw *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.JSONEq(t, `{"message":"Unauthorized"}`, rw.Body.String())
}

func TestAuthMiddleware_UniformRejections(t *testing.T) {
	mw := AuthMiddleware(&fakeVerifier{}, nil)
	for _, header := range []string{"", "BadHeader", "Basic xyz", "Bearer", "Bearer  ", "Bearer forged"} {
		t.Run(header, func(t *testing.T) {
			requireUnauthorized(t, serve(t, mw, header))
		})
	}
}

func TestAuthMiddleware_CountsFailureReasons(t *testing.T) {
	before := testutil.ToFloat64(metrics.AuthFailures.WithLabelValues("signature"))
	requireUnauthorized(t, serve(t, AuthMiddleware(&fakeVerifier{}, nil), "Bearer forged"))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.AuthFailures.WithLabelValues("signature")))
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serve(t, AuthMiddleware(&fakeVerifier{}, nil), "Bearer goodtoken")

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "user1", got["userId"])
	require.Equal(t, "goodtoken", got["token"])
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	denylist := revocation.NewDenylist(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	token := "black-token"
	require.NoError(t, denylist.Revoke(context.Background(), token, 5*time.Second))

	mw := AuthMiddleware(&fakeVerifier{}, denylist)
	requireUnauthorized(t, serve(t, mw, "Bearer "+token))
	require.Equal(t, http.StatusOK, serve(t, mw, "Bearer goodtoken").Code)
}

func TestAuthMiddleware_RevocationCheckFailureRejects(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	denylist := revocation.NewDenylist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	m.Close()

	requireUnauthorized(t, serve(t, AuthMiddleware(&fakeVerifier{}, denylist), "Bearer goodtoken"))
}
