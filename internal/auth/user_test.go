package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestUserFromClaims(t *testing.T) {
	u, err := UserFromClaims(jwt.MapClaims{
		"sub":         "user-1",
		"email":       "a@example.com",
		"given_name":  "Ada",
		"family_name": "Lovelace",
	})
	require.NoError(t, err)
	require.Equal(t, &AuthenticatedUser{
		UserID:     "user-1",
		Email:      "a@example.com",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
	}, u)
}

func TestUserFromClaims_OptionalClaimsAbsentOrWrongType(t *testing.T) {
	u, err := UserFromClaims(jwt.MapClaims{"sub": "user-1", "email": 42, "given_name": nil})
	require.NoError(t, err)
	require.Equal(t, "user-1", u.UserID)
	require.Empty(t, u.Email)
	require.Empty(t, u.GivenName)
	require.Empty(t, u.FamilyName)
}

func TestUserFromClaims_RequiresSubject(t *testing.T) {
	_, err := UserFromClaims(jwt.MapClaims{"email": "a@example.com"})
	require.ErrorIs(t, err, ErrMissingSubject)

	_, err = UserFromClaims(jwt.MapClaims{"sub": ""})
	require.ErrorIs(t, err, ErrMissingSubject)
}

func TestReasonAndDescribe(t *testing.T) {
	err := fail(ErrTokenExpired, errors.New("exp in the past"))
	require.Equal(t, "unauthorized", err.Error())
	require.Equal(t, "expired", Reason(err))
	require.Equal(t, "token expired: exp in the past", Describe(err))
	require.ErrorIs(t, err, ErrTokenExpired)

	require.Equal(t, "unknown", Reason(errors.New("boom")))
	require.Equal(t, "boom", Describe(errors.New("boom")))
}
