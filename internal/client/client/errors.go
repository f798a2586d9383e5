package client

import "errors"

var (
	ErrUnavailable             = errors.New("server unavailable")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("login not allowed")
	ErrOneTimePasswordRequired = errors.New("one-time password required")
	ErrSessionNotFound         = errors.New("session not found")
	ErrInvalidToken            = errors.New("invalid access token")
)
