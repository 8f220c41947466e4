package auth

import "strings"

// BearerToken extracts the token from an Authorization header value of the
// exact form "Bearer <token>" (scheme matched case-insensitively, single space).
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}
