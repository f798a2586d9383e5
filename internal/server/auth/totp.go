package auth

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Second-factor parameters used at login.
const (
	TOTPStepSeconds = 30
	TOTPWindow      = 1
)

const (
	totpDigits       = otp.DigitsSix
	maxOneTimeDigits = 10
	maxSixDigitCode  = 999999
)

// TOTPVerifier checks RFC 6238 codes (SHA1, six digits) against a clock.
type TOTPVerifier struct {
	now func() time.Time
}

// NewTOTPVerifier returns a verifier reading time from now; nil means time.Now.
func NewTOTPVerifier(now func() time.Time) *TOTPVerifier {
	if now == nil {
		now = time.Now
	}
	return &TOTPVerifier{now: now}
}

// Verify reports whether code is valid for secretBase32 at any step in
// [-window, +window] around the current one. Every decoding or computation
// problem is a rejection.
func (v *TOTPVerifier) Verify(secretBase32 string, code int64, stepSeconds, window int) bool {
	if code < 0 || code > maxSixDigitCode || stepSeconds <= 0 || window < 0 || secretBase32 == "" {
		return false
	}

	now := time.Now
	if v != nil && v.now != nil {
		now = v.now
	}

	ok, err := totp.ValidateCustom(fmt.Sprintf("%0*d", totpDigits.Length(), code), secretBase32, now(), totp.ValidateOpts{
		Period:    uint(stepSeconds),
		Skew:      uint(window),
		Digits:    totpDigits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

// ParseOneTimePassword accepts 1 to 10 ASCII digits and returns their value.
func ParseOneTimePassword(s string) (int64, bool) {
	if len(s) == 0 || len(s) > maxOneTimeDigits {
		return 0, false
	}
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}
