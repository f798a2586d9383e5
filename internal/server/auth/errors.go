package auth

import "errors"

// Failures of Authenticate. They are terminal for the attempt and are
// returned wrapped with the username only.
var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrOneTimePasswordRequired  = errors.New("one-time password required")
	ErrOneTimePasswordInvalid   = errors.New("one-time password invalid")
	ErrLoginNotAllowed          = errors.New("login not allowed")
	ErrAccountDisabled          = errors.New("account disabled")
	ErrInconsistentAccountState = errors.New("inconsistent account state")
)

// FailureCode returns the stable wire code for an Authenticate failure, or
// "" when err is not one of them.
func FailureCode(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrOneTimePasswordRequired):
		return "one_time_password_required"
	case errors.Is(err, ErrOneTimePasswordInvalid):
		return "one_time_password_invalid"
	case errors.Is(err, ErrLoginNotAllowed):
		return "login_not_allowed"
	case errors.Is(err, ErrAccountDisabled):
		return "account_disabled"
	case errors.Is(err, ErrInconsistentAccountState):
		return "inconsistent_account_state"
	default:
		return ""
	}
}
