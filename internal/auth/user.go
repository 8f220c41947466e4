package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthenticatedUser is the normalized identity carried by a verified token.
// Optional claims are empty when the token did not carry them.
type AuthenticatedUser struct {
	UserID     string `json:"userId"`
	Email      string `json:"email,omitempty"`
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`

	// ExpiresAt is the token's exp; it bounds how long a revocation must be kept.
	ExpiresAt time.Time `json:"-"`
}

// UserFromClaims maps a verified claim set onto AuthenticatedUser. The
// subject is mandatory; optional claims of a non-string type are ignored.
func UserFromClaims(claims jwt.MapClaims) (*AuthenticatedUser, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSubject
	}
	u := &AuthenticatedUser{
		UserID:     sub,
		Email:      stringClaim(claims, "email"),
		GivenName:  stringClaim(claims, "given_name"),
		FamilyName: stringClaim(claims, "family_name"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		u.ExpiresAt = exp.Time
	}
	return u, nil
}

func stringClaim(claims jwt.MapClaims, name string) string {
	v, _ := claims[name].(string)
	return v
}
