// Package common contains shared constants and sentinel errors used across
// casauth components.
package common

// AccessTokenHeaderName is the request parameter and gRPC metadata key that
// carries the access token.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the header (and gRPC metadata key) that may carry
// the access token in bearer form.
const AuthorizationHeaderName = "Authorization"

// BearerTokenPrefix is the case-sensitive scheme prefix of a bearer
// authorization header, including the single separating space.
const BearerTokenPrefix = "Bearer "

// MissingAccessTokenCode is the text body written for any unusable token.
const MissingAccessTokenCode = "missing_accessToken"
