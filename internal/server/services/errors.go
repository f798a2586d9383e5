package services

import "errors"

// Failures of session token resolution.
var (
	ErrMissingToken   = errors.New("missing access token")
	ErrUnknownSession = errors.New("unknown session")
	ErrExpiredToken   = errors.New("expired access token")
)

// FailureCode returns the wire code for a resolution failure, or "".
func FailureCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrUnknownSession):
		return "unknown_session"
	case errors.Is(err, ErrExpiredToken):
		return "expired_token"
	default:
		return ""
	}
}
