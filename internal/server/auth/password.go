package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/casauth/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// Stored hash prefixes written by the user store.
const (
	SchemeBCrypt       = "bcrypt$"
	SchemeBCryptSHA256 = "bcrypt_sha256$"
)

// UnusablePasswordPrefix marks a stored hash for which no password was ever set.
const UnusablePasswordPrefix = "!"

// IsUnusablePassword reports whether hash is absent or the unusable sentinel.
func IsUnusablePassword(hash *string) bool {
	return hash == nil || strings.HasPrefix(*hash, UnusablePasswordPrefix)
}

// HasRecognizedScheme reports whether hash carries one of the supported prefixes.
func HasRecognizedScheme(hash *string) bool {
	return hash != nil && (strings.HasPrefix(*hash, SchemeBCrypt) || strings.HasPrefix(*hash, SchemeBCryptSHA256))
}

// NormalizeBCryptIdentifier rewrites the minor version of a bcrypt hash to the
// canonical "a", so "$2b$" and "$2y$" hashes read as "$2a$". Hashes whose
// third character is already '$' are returned unchanged. It fails only for
// hashes too short to carry a version.
func NormalizeBCryptIdentifier(hash string) (string, bool) {
	if len(hash) < 3 {
		return "", false
	}
	if hash[2] == '$' {
		return hash, true
	}
	b := []byte(hash)
	b[2] = 'a'
	return string(b), true
}

// PasswordVerifier checks plaintext passwords against stored hashes. The zero
// value is usable and silent.
type PasswordVerifier struct {
	logger logging.Logger
}

// NewPasswordVerifier returns a verifier that reports comparison problems to
// l. Only the error class is logged.
func NewPasswordVerifier(l logging.Logger) *PasswordVerifier {
	return &PasswordVerifier{logger: l}
}

// Verify reports whether plaintext matches storedHash. It never fails loudly:
// unknown schemes and malformed hashes are simply a mismatch.
func (v *PasswordVerifier) Verify(plaintext, storedHash string) bool {
	var candidate, hash string

	switch {
	case strings.HasPrefix(storedHash, SchemeBCrypt):
		hash = strings.TrimPrefix(storedHash, SchemeBCrypt)
		candidate = plaintext
	case strings.HasPrefix(storedHash, SchemeBCryptSHA256):
		hash = strings.TrimPrefix(storedHash, SchemeBCryptSHA256)
		candidate = sha256Hex(plaintext)
	default:
		return false
	}

	normalized, ok := NormalizeBCryptIdentifier(hash)
	if !ok {
		v.report("malformed bcrypt hash")
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(normalized), []byte(candidate))
	switch {
	case err == nil:
		return true
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false
	default:
		v.report(bcryptErrorClass(err))
		return false
	}
}

// VerifyPassword is Verify on a silent verifier.
func VerifyPassword(plaintext, storedHash string) bool {
	var v PasswordVerifier
	return v.Verify(plaintext, storedHash)
}

func (v *PasswordVerifier) report(class string) {
	if v == nil || v.logger == nil {
		return
	}
	v.logger.Warn(context.Background(), "problem verifying password", "reason", class)
}

// bcryptErrorClass keeps bcrypt error text, which can embed hash fragments,
// out of the logs.
func bcryptErrorClass(err error) string {
	switch err.(type) {
	case bcrypt.InvalidCostError:
		return "invalid cost"
	case bcrypt.HashVersionTooNewError:
		return "unsupported version"
	case bcrypt.InvalidHashPrefixError:
		return "invalid prefix"
	}
	switch err {
	case bcrypt.ErrHashTooShort:
		return "hash too short"
	case bcrypt.ErrPasswordTooLong:
		return "password too long"
	}
	return "comparison failed"
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
