// Package client talks to the casauth CredentialService over gRPC.
//
// GRPCClient logs in with a username and password (plus an optional
// one-time password), resolves the profile behind an access token and ends
// the session. Status codes are mapped to the sentinel errors in errors.go
// so callers can match them with errors.Is.
package client
