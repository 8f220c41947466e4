package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setCognitoEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_testPool")
	t.Setenv("COGNITO_REGION", "us-east-1")
}

func TestLoadConfig(t *testing.T) {
	setCognitoEnv(t)
	t.Setenv("COGNITO_CLIENT_IDS", " client-a, ,client-b ")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "us-east-1", cfg.Cognito.Region)
	require.Equal(t, []string{"client-a", "client-b"}, cfg.Cognito.ClientIDs)
	require.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_testPool", cfg.Cognito.Issuer())
	require.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_testPool/.well-known/jwks.json", cfg.Cognito.JWKSURL())
	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "users", cfg.MongoDB.UsersCollection)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, 5*time.Minute, cfg.Redis.ProfileCacheTTL)
	require.Equal(t, 10, cfg.Cognito.JWKSPerMinute)
	require.Equal(t, "4000", cfg.Server.Port)
}

func TestLoadConfig_EmptyAudienceList(t *testing.T) {
	setCognitoEnv(t)
	t.Setenv("COGNITO_CLIENT_IDS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Empty(t, cfg.Cognito.ClientIDs)
}

func TestLoadConfig_RegionFallsBackToAWSRegion(t *testing.T) {
	t.Setenv("COGNITO_USER_POOL_ID", "eu-west-1_pool")
	t.Setenv("COGNITO_REGION", "")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "eu-west-1", cfg.Cognito.Region)
}

func TestLoadConfig_MissingCognitoSettings(t *testing.T) {
	t.Setenv("COGNITO_USER_POOL_ID", "")
	t.Setenv("COGNITO_REGION", "")
	t.Setenv("AWS_REGION", "")

	cfg, err := LoadConfig()
	require.Nil(t, cfg)

	var cerr *ConfigurationError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, []string{"COGNITO_USER_POOL_ID", "COGNITO_REGION"}, cerr.Missing)
	require.Contains(t, err.Error(), "COGNITO_USER_POOL_ID")
}

func TestIssuerOverride(t *testing.T) {
	c := CognitoConfig{Region: "us-east-1", UserPoolID: "p", IssuerURL: "http://localhost:9229/local_pool/"}
	require.Equal(t, "http://localhost:9229/local_pool", c.Issuer())
	require.Equal(t, "http://localhost:9229/local_pool/.well-known/jwks.json", c.JWKSURL())
}
