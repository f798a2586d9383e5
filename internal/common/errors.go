// Package common defines shared constants and sentinel errors used across
// client and server layers of casauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Client-side transport errors.
	ErrUnavailable = errors.New("server unavailable")
)
