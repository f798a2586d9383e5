// Package cli provides the interactive casauth command-line client.
//
// The REPL logs in against the CredentialService, prompting for a
// one-time password when the account requires one, shows the profile
// behind the current access token and logs out. App.Run blocks until the
// user types exit or input ends.
package cli
