package auth

import "errors"

// Internal causes of a rejected token. They never reach the caller's
// response; use errors.Is against an *AuthenticationError to inspect them.
var (
	ErrMissingHeader        = errors.New("missing Authorization header")
	ErrMalformedHeader      = errors.New("invalid Authorization header")
	ErrMalformedToken       = errors.New("token cannot be decoded")
	ErrMissingKeyID         = errors.New("token header has no kid")
	ErrUnsupportedAlgorithm = errors.New("token algorithm not allowed")
	ErrKeyLookup            = errors.New("signing key lookup failed")
	ErrInvalidSignature     = errors.New("token signature invalid")
	ErrIssuerMismatch       = errors.New("token issuer mismatch")
	ErrAudienceMismatch     = errors.New("token audience mismatch")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenNotYetValid     = errors.New("token not yet valid")
	ErrMissingSubject       = errors.New("token has no sub claim")
)

var reasons = map[error]string{
	ErrMissingHeader:        "missing_header",
	ErrMalformedHeader:      "malformed_header",
	ErrMalformedToken:       "malformed_token",
	ErrMissingKeyID:         "missing_kid",
	ErrUnsupportedAlgorithm: "algorithm",
	ErrKeyLookup:            "key_lookup",
	ErrInvalidSignature:     "signature",
	ErrIssuerMismatch:       "issuer",
	ErrAudienceMismatch:     "audience",
	ErrTokenExpired:         "expired",
	ErrTokenNotYetValid:     "not_yet_valid",
	ErrMissingSubject:       "missing_sub",
}

// AuthenticationError is the single failure type returned by Verify. Its
// message is opaque; Cause keeps the real reason for logs.
type AuthenticationError struct {
	Cause  error
	Detail error
}

func (e *AuthenticationError) Error() string { return "unauthorized" }

// Unwrap exposes both the sentinel cause and any underlying library error.
func (e *AuthenticationError) Unwrap() []error {
	if e.Detail == nil {
		return []error{e.Cause}
	}
	return []error{e.Cause, e.Detail}
}

func fail(cause error, detail error) *AuthenticationError {
	return &AuthenticationError{Cause: cause, Detail: detail}
}

// Reason returns a short label describing why err rejected a token, or
// "unknown" when err is not an AuthenticationError.
func Reason(err error) string {
	var ae *AuthenticationError
	if !errors.As(err, &ae) {
		return "unknown"
	}
	if r, ok := reasons[ae.Cause]; ok {
		return r
	}
	return "unknown"
}

// Describe renders the internal cause for log lines.
func Describe(err error) string {
	var ae *AuthenticationError
	if !errors.As(err, &ae) {
		return err.Error()
	}
	if ae.Detail != nil {
		return ae.Cause.Error() + ": " + ae.Detail.Error()
	}
	return ae.Cause.Error()
}
