package certificates

import "errors"

var (
	// ErrTokenBuild means the consultant has no currently valid certificate
	// to bind a verification token to.
	ErrTokenBuild = errors.New("certificate issue timestamp is required to build a token")
)

// User-facing verification failure reasons. These strings are rendered
// verbatim on the public verification page, so they never carry internal
// identifiers.
const (
	ReasonInvalid    = "Invalid Certificate"
	ReasonRevoked    = "Certificate has been revoked."
	ReasonExpired    = "Certificate has expired."
	ReasonSuperseded = "Token is no longer valid for this certificate."
	ReasonNotActive  = "Certificate is not currently active."
)

// TokenError is a verification failure with a reason suitable for direct
// display. Callers map it to a 400-class response.
type TokenError struct {
	Reason string
}

func (e *TokenError) Error() string {
	return e.Reason
}

func tokenErr(reason string) *TokenError {
	return &TokenError{Reason: reason}
}
