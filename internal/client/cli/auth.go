package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/casauth/internal/client/client"
	"github.com/dmitrijs2005/casauth/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for an email and password and opens a session. When the
// server asks for a second factor the user is prompted for the one-time
// password and the login is retried once.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	cred := client.Credentials{Username: userName, Password: string(password)}

	session, err := a.login(ctx, cred)
	if errors.Is(err, client.ErrOneTimePasswordRequired) {
		cred.OneTimePassword, err = getSimpleText(a.reader, "Enter one-time password", a.out)
		if err != nil {
			return err
		}
		session, err = a.login(ctx, cred)
	}
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", err)
		return err
	}

	a.session = session
	fmt.Fprintf(a.out, "Logged in as %s\n", session.ID)
	return nil
}

func (a *App) login(ctx context.Context, cred client.Credentials) (*client.Session, error) {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	return a.api.Login(ctx, cred)
}

// Profile prints the principal behind the current access token.
func (a *App) Profile(ctx context.Context) error {
	if a.session == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return client.ErrUnauthorized
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.api.ResolveProfile(ctx, a.session.AccessToken)
	if err != nil {
		fmt.Fprintf(a.out, "Profile unavailable: %s\n", err)
		if errors.Is(err, client.ErrSessionNotFound) {
			a.session = nil
		}
		return err
	}

	fmt.Fprintf(a.out, "id: %s\n", p.ID)
	names := make([]string, 0, len(p.Attributes))
	for name := range p.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s: %v\n", name, p.Attributes[name])
	}
	return nil
}

// Logout ends the server session and forgets it locally, even when the
// server call fails.
func (a *App) Logout(ctx context.Context) error {
	if a.session == nil {
		return nil
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	err := a.api.Logout(ctx, a.session.AccessToken)
	a.session = nil
	if err != nil && !errors.Is(err, client.ErrSessionNotFound) {
		fmt.Fprintf(a.out, "Logout failed: %s\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
