package oidc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/scavhunt/scavhunt/backend/internal/auth"
	"github.com/scavhunt/scavhunt/backend/internal/config"
	"github.com/scavhunt/scavhunt/backend/internal/jwks"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
)

// NewVerifier creates a token verifier for the configured user pool, backed
// by a cached key-set client. With JWKSDiscovery set, the key-set location
// is read from the issuer's OpenID configuration instead of derived.
func NewVerifier(ctx context.Context, cfg config.CognitoConfig) (*auth.Verifier, error) {
	hc := &http.Client{Timeout: cfg.JWKSHTTPTimeout}
	issuer := cfg.Issuer()

	jwksURL := cfg.JWKSURL()
	if cfg.JWKSDiscovery {
		discovered, err := DiscoverJWKSURL(ctx, issuer, hc)
		if err != nil {
			return nil, err
		}
		jwksURL = discovered
	}
	logger.Infof("token verifier: issuer=%s jwks=%s audiences=%v", issuer, jwksURL, cfg.ClientIDs)

	keys := jwks.NewClient(jwksURL, jwks.Options{RequestsPerMinute: cfg.JWKSPerMinute, HTTPClient: hc})
	v, err := auth.NewVerifier(auth.Config{
		Issuer:    issuer,
		Audiences: cfg.ClientIDs,
		Leeway:    cfg.ClockSkew,
	}, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	return v, nil
}
