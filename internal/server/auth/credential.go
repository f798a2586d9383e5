package auth

import "strings"

// Credential is the material presented for one authentication attempt.
// Empty strings mean "not supplied". It is never persisted.
type Credential struct {
	Username        string
	Password        string
	VerificationKey string
	OneTimePassword string
	RemotePrincipal bool
}

// String omits every secret. Use it, never %+v, when a credential has to be
// described.
func (c Credential) String() string {
	return "Credential[" + c.Username + "]"
}

// NameTransformer normalises the presented username before lookup. An empty
// result rejects the attempt.
type NameTransformer func(string) string

// NoOpTransformer returns the username unchanged.
func NoOpTransformer(s string) string { return s }

// TrimSpaceTransformer strips surrounding whitespace.
func TrimSpaceTransformer(s string) string { return strings.TrimSpace(s) }

// SuffixStrippingTransformer removes a trailing suffix such as "@osf.io",
// so that scoped logins resolve to the bare username.
func SuffixStrippingTransformer(suffix string) NameTransformer {
	return func(s string) string {
		return strings.TrimSuffix(strings.TrimSpace(s), suffix)
	}
}
