// Package models holds the records read from the user directory and the
// principal handed to callers after authentication.
package models

// User is a row of the user directory. It is read fresh per request and never
// written by casauth.
type User struct {
	ID              int64
	Username        string
	PasswordHash    *string
	VerificationKey *string
	GivenName       string
	FamilyName      string
	Registered      bool
	Confirmed       bool
	Claimed         bool
	Merged          bool
	Disabled        bool
	Active          bool
}

// Password returns the stored hash, or "" when none is set.
func (u *User) Password() string {
	if u.PasswordHash == nil {
		return ""
	}
	return *u.PasswordHash
}

// String deliberately omits the password hash and verification key.
func (u *User) String() string {
	return "User[" + u.Username + "]"
}
