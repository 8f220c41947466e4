package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm is the only signing algorithm accepted for identity tokens.
const Algorithm = "RS256"

// KeySource resolves the public key a token's kid refers to.
type KeySource interface {
	SigningKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// Config is resolved once at startup; Verify never re-reads configuration.
type Config struct {
	Issuer    string
	Audiences []string // empty accepts any audience
	Leeway    time.Duration
}

// Verifier validates bearer tokens issued by the configured user pool.
type Verifier struct {
	cfg    Config
	keys   KeySource
	parser *jwt.Parser
}

// NewVerifier creates a verifier for the given issuer and key directory.
func NewVerifier(cfg Config, keys KeySource) (*Verifier, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if keys == nil {
		return nil, errors.New("key source is required")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	)
	return &Verifier{cfg: cfg, keys: keys, parser: parser}, nil
}

// Verify checks an Authorization header value and returns the caller's identity.
// Every failure is an *AuthenticationError.
func (v *Verifier) Verify(ctx context.Context, header string) (*AuthenticatedUser, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return nil, fail(err, nil)
	}
	return v.VerifyToken(ctx, raw)
}

// VerifyToken verifies a raw token string.
func (v *Verifier) VerifyToken(ctx context.Context, raw string) (*AuthenticatedUser, error) {
	unverified, _, err := v.parser.ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fail(ErrMalformedToken, err)
	}
	if alg, _ := unverified.Header["alg"].(string); alg != Algorithm {
		return nil, fail(ErrUnsupportedAlgorithm, fmt.Errorf("alg %q", alg))
	}
	kid, _ := unverified.Header["kid"].(string)
	if strings.TrimSpace(kid) == "" {
		return nil, fail(ErrMissingKeyID, nil)
	}

	key, err := v.keys.SigningKey(ctx, kid)
	if err != nil {
		return nil, fail(ErrKeyLookup, err)
	}

	token, err := v.parser.ParseWithClaims(raw, jwt.MapClaims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, fail(classify(err), err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fail(ErrMalformedToken, nil)
	}

	if err := v.checkAudience(claims); err != nil {
		return nil, err
	}

	user, err := UserFromClaims(claims)
	if err != nil {
		return nil, fail(ErrMissingSubject, nil)
	}
	return user, nil
}

func (v *Verifier) checkAudience(claims jwt.MapClaims) error {
	if len(v.cfg.Audiences) == 0 {
		return nil
	}
	aud, err := claims.GetAudience()
	if err != nil {
		return fail(ErrAudienceMismatch, err)
	}
	for _, want := range v.cfg.Audiences {
		for _, got := range aud {
			if got == want {
				return nil
			}
		}
	}
	return fail(ErrAudienceMismatch, fmt.Errorf("aud %v", []string(aud)))
}

// classify maps parser errors onto the verifier's causes.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}
