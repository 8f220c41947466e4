// Package jwks resolves token signing keys from a remote JSON Web Key Set.
//
// Keys are cached by kid for the lifetime of the Client. Network fetches are
// rate limited and concurrent misses share one fetch.
package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-jose/go-jose/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/scavhunt/scavhunt/backend/pkg/logger"
	"github.com/scavhunt/scavhunt/backend/pkg/metrics"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	ErrKeyNotFound = errors.New("jwks: key not found")
	ErrRateLimited = errors.New("jwks: fetch rate limit exceeded")
)

// DefaultRequestsPerMinute matches the usual jwks client default.
const DefaultRequestsPerMinute = 10

// Options tune a Client. Zero values select defaults.
type Options struct {
	RequestsPerMinute int
	HTTPClient        *http.Client
}

// Client fetches and caches RSA signing keys by kid.
type Client struct {
	url     string
	http    *http.Client
	keys    *gocache.Cache
	limiter *rate.Limiter
	group   singleflight.Group
}

// NewClient creates a client for the key set published at url.
func NewClient(url string, opts Options) *Client {
	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		url:     url,
		http:    hc,
		keys:    gocache.New(gocache.NoExpiration, 0),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
	}
}

// URL returns the key set location this client reads.
func (c *Client) URL() string { return c.url }

// SigningKey returns the public key for kid, fetching the key set on a miss.
func (c *Client) SigningKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := c.cached(kid); ok {
		return key, nil
	}

	// shared by all waiting callers; bounded by the HTTP client timeout
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("jwks", func() (interface{}, error) {
		if _, ok := c.cached(kid); ok {
			return nil, nil
		}
		if !c.limiter.Allow() {
			metrics.JWKSFetches.WithLabelValues("rate_limited").Inc()
			return nil, ErrRateLimited
		}
		if err := c.refresh(fetchCtx); err != nil {
			metrics.JWKSFetches.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.JWKSFetches.WithLabelValues("ok").Inc()
		return nil, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
	}

	if key, ok := c.cached(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
}

func (c *Client) cached(kid string) (*rsa.PublicKey, bool) {
	v, ok := c.keys.Get(kid)
	if !ok {
		return nil, false
	}
	key, ok := v.(*rsa.PublicKey)
	return key, ok
}

// refresh downloads the key set and caches every RSA signing key in it.
func (c *Client) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	var set struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	stored := 0
	for _, raw := range set.Keys {
		var jwk jose.JSONWebKey
		if err := jwk.UnmarshalJSON(raw); err != nil {
			logger.Warnf("jwks: skipping undecodable key: %v", err)
			continue
		}
		if jwk.KeyID == "" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		pub, ok := jwk.Key.(*rsa.PublicKey)
		if !ok {
			continue
		}
		c.keys.Set(jwk.KeyID, pub, gocache.NoExpiration)
		stored++
	}
	logger.Debugf("jwks: fetched %d signing keys from %s", stored, c.url)
	return nil
}

// StaticKeys is a fixed key directory for tests and local development.
type StaticKeys map[string]*rsa.PublicKey

func (s StaticKeys) SigningKey(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok := s[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
}
