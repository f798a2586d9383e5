// Package auth is the credential verification core: password and one-time
// password checks, account status classification, and the Authenticator
// that combines them against a user Directory.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/models"
)

// Directory is the read-only user store. Lookups that find nothing return
// common.ErrorNotFound.
type Directory interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindSecondFactorByOwnerID(ctx context.Context, ownerID int64) (*models.SecondFactor, error)
	FindExternalIDForUser(ctx context.Context, user *models.User) (string, error)
}

// Authenticator decides whether a credential authenticates a user. It holds
// no mutable state and is safe for concurrent use.
type Authenticator struct {
	directory   Directory
	logger      logging.Logger
	transform   NameTransformer
	passwords   *PasswordVerifier
	oneTimeCode *TOTPVerifier
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger; the default discards.
func WithLogger(l logging.Logger) Option {
	return func(a *Authenticator) { a.logger = l }
}

// WithNameTransformer sets the username transformer; the default is NoOpTransformer.
func WithNameTransformer(t NameTransformer) Option {
	return func(a *Authenticator) { a.transform = t }
}

// WithTOTPVerifier replaces the one-time password verifier, mainly to pin its clock.
func WithTOTPVerifier(v *TOTPVerifier) Option {
	return func(a *Authenticator) { a.oneTimeCode = v }
}

func NewAuthenticator(d Directory, opts ...Option) *Authenticator {
	a := &Authenticator{
		directory:   d,
		logger:      logging.Nop(),
		transform:   NoOpTransformer,
		oneTimeCode: NewTOTPVerifier(nil),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("module", "authenticator")
	a.passwords = NewPasswordVerifier(a.logger)
	return a
}

// Authenticate verifies cred and returns the principal to assert. Failures
// are the sentinel errors of this package wrapped with the username;
// directory outages are wrapped in common.ErrorInternal.
func (a *Authenticator) Authenticate(ctx context.Context, cred Credential) (*models.Principal, error) {
	if cred.Username == "" {
		return nil, fmt.Errorf("%w: username is empty", ErrAccountNotFound)
	}
	transformed := a.transform(cred.Username)
	if transformed == "" {
		return nil, fmt.Errorf("%w: transformed username is empty", ErrAccountNotFound)
	}
	username := strings.ToLower(transformed)

	user, err := a.directory.FindUserByEmail(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, username)
		}
		return nil, a.internal(ctx, "user lookup failed", username, err)
	}

	if !a.validPassphrase(cred, user) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, username)
	}

	if err := a.checkSecondFactor(ctx, cred.OneTimePassword, user, username); err != nil {
		return nil, err
	}

	status := Classify(*user)
	a.logger.Info(ctx, "user status check", "username", username, "status", status.String())
	if err := StatusError(status); err != nil {
		if errors.Is(err, ErrInconsistentAccountState) {
			a.logger.Error(ctx, "account in inconsistent state", "username", username, "status", status.String(), "alert", true)
		}
		return nil, fmt.Errorf("%w: %s is %s", err, username, status)
	}

	externalID, err := a.directory.FindExternalIDForUser(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			a.logger.Error(ctx, "active account without external id", "username", username, "alert", true)
			return nil, fmt.Errorf("%w: %s has no external id", ErrInconsistentAccountState, username)
		}
		return nil, a.internal(ctx, "external id lookup failed", username, err)
	}

	return &models.Principal{
		ID: externalID,
		Attributes: map[string]any{
			models.AttributeUsername:   user.Username,
			models.AttributeGivenName:  user.GivenName,
			models.AttributeFamilyName: user.FamilyName,
		},
	}, nil
}

func (a *Authenticator) validPassphrase(cred Credential, user *models.User) bool {
	switch {
	case cred.RemotePrincipal:
		return true
	case cred.VerificationKey != "" && user.VerificationKey != nil && cred.VerificationKey == *user.VerificationKey:
		return true
	case cred.Password != "" && user.PasswordHash != nil:
		return a.passwords.Verify(cred.Password, *user.PasswordHash)
	default:
		return false
	}
}

func (a *Authenticator) checkSecondFactor(ctx context.Context, oneTimePassword string, user *models.User, username string) error {
	sf, err := a.directory.FindSecondFactorByOwnerID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return a.internal(ctx, "second factor lookup failed", username, err)
	}
	if !sf.Active() {
		return nil
	}
	if oneTimePassword == "" {
		return fmt.Errorf("%w: %s", ErrOneTimePasswordRequired, username)
	}

	code, ok := ParseOneTimePassword(oneTimePassword)
	if !ok {
		return fmt.Errorf("%w: %s", ErrOneTimePasswordInvalid, username)
	}
	secret, err := sf.SecretBase32()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOneTimePasswordInvalid, username)
	}
	if !a.oneTimeCode.Verify(secret, code, TOTPStepSeconds, TOTPWindow) {
		return fmt.Errorf("%w: %s", ErrOneTimePasswordInvalid, username)
	}
	return nil
}

func (a *Authenticator) internal(ctx context.Context, msg, username string, err error) error {
	a.logger.Error(ctx, msg, "username", username, "error", err)
	return fmt.Errorf("%w: %s", common.ErrorInternal, msg)
}
