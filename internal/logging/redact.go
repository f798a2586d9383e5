package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces the value of any attribute whose key is a secret key.
const RedactedValue = "[REDACTED]"

// SecretKeys lists attribute keys whose values are never written.
var SecretKeys = []string{
	"password",
	"one_time_password",
	"otp",
	"verification_key",
	"access_token",
	"authorization",
	"totp_secret",
	"token",
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, k := range SecretKeys {
		if key == k {
			return true
		}
	}
	return false
}

// RedactingHandlerOptions returns slog handler options at the given level
// that blank out secret attributes, including ones nested in groups.
func RedactingHandlerOptions(level slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Value.Kind() != slog.KindGroup && isSecretKey(a.Key) {
				return slog.String(a.Key, RedactedValue)
			}
			return a
		},
	}
}
