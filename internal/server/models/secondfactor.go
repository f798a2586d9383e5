package models

import (
	"encoding/base32"
	"encoding/hex"
	"errors"
)

// ErrNoTOTPSecret is returned by SecretBase32 when no secret is stored.
var ErrNoTOTPSecret = errors.New("no totp secret")

// SecondFactor is a user's time-based one-time password settings. The secret
// is stored hex-encoded.
type SecondFactor struct {
	OwnerID    int64
	TOTPSecret *string
	Confirmed  bool
	Deleted    bool
}

// Active reports whether the record must be enforced at login.
func (s *SecondFactor) Active() bool {
	return s != nil && s.TOTPSecret != nil && s.Confirmed && !s.Deleted
}

// SecretBase32 returns the shared secret in the base32 form used by
// authenticator apps.
func (s *SecondFactor) SecretBase32() (string, error) {
	if s == nil || s.TOTPSecret == nil {
		return "", ErrNoTOTPSecret
	}
	raw, err := hex.DecodeString(*s.TOTPSecret)
	if err != nil {
		return "", err
	}
	return base32.StdEncoding.EncodeToString(raw), nil
}
