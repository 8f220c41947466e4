package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// DiscoverJWKSURL reads the issuer's OpenID configuration and returns the
// jwks_uri it advertises. The issuer in the document must match issuer.
func DiscoverJWKSURL(ctx context.Context, issuer string, client *http.Client) (string, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	var doc struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&doc); err != nil {
		return "", fmt.Errorf("failed to read provider metadata: %w", err)
	}
	if doc.JWKSURI == "" {
		return "", errors.New("provider metadata has no jwks_uri")
	}
	return doc.JWKSURI, nil
}
