package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/auth"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/tickets"
	"github.com/dmitrijs2005/casauth/internal/server/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	out *models.Principal
	err error
}

func (f *fakeAuthenticator) Authenticate(context.Context, auth.Credential) (*models.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out.Clone(), nil
}

const service = "https://osf.io/"

type fixture struct {
	codec    *tokens.Codec
	registry *tickets.Registry
	login    *LoginService
	profile  *ProfileService
	now      time.Time
}

func (f *fixture) clock() time.Time { return f.now }

func newFixture(t *testing.T, a Authenticator) *fixture {
	t.Helper()
	f := &fixture{now: time.Now()}
	codec, err := tokens.NewCodec("sign", "encrypt")
	require.NoError(t, err)
	f.codec = codec
	f.registry = tickets.NewRegistry(tickets.NewMemoryStorage(time.Minute), tickets.WithRegistryClock(f.clock))
	f.login = NewLoginService(a, f.registry, codec, logging.Nop())
	f.profile = NewProfileService(f.registry, codec, logging.Nop())
	return f
}

func principal() *models.Principal {
	return &models.Principal{ID: "abc12", Attributes: map[string]any{
		"username": "jane@example.org", "givenName": "Jane", "familyName": "Doe",
	}}
}

func TestLoginThenResolveProfile(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()

	res, err := f.login.Login(ctx, auth.Credential{Username: "jane@example.org", Password: "x"}, service)
	require.NoError(t, err)
	assert.Equal(t, "abc12", res.Principal.ID)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, tickets.PrefixTicketGrantingTicket, tickets.Kind(res.TGTID))

	for i := 0; i < 2; i++ {
		p, err := f.profile.ResolveProfile(ctx, res.AccessToken)
		require.NoError(t, err, "a session token resolves repeatedly")
		assert.Equal(t, principal(), p)
	}
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{err: auth.ErrOneTimePasswordRequired})
	_, err := f.login.Login(context.Background(), auth.Credential{Username: "jane@example.org"}, service)
	assert.ErrorIs(t, err, auth.ErrOneTimePasswordRequired)

	_, err = f.login.Login(context.Background(), auth.Credential{Username: "jane@example.org"}, "")
	assert.Error(t, err)
}

func TestResolveProfile_MissingAndTampered(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()
	res, err := f.login.Login(ctx, auth.Credential{Username: "jane@example.org"}, service)
	require.NoError(t, err)

	tampered := []byte(res.AccessToken)
	tampered[len(tampered)/2] ^= 0x01

	for _, raw := range []string{"", "garbage", string(tampered)} {
		_, err := f.profile.ResolveProfile(ctx, raw)
		assert.ErrorIs(t, err, ErrMissingToken, "token %q", raw)
		assert.Equal(t, "missing_token", FailureCode(err))
	}
}

func TestResolveProfile_UnknownSession(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()

	raw, err := f.codec.Encode(tokens.AccessToken{TicketGrantingTicket: "TGT-77-gone", ServiceID: service})
	require.NoError(t, err)
	_, err = f.profile.ResolveProfile(ctx, raw)
	assert.ErrorIs(t, err, ErrUnknownSession)

	raw, err = f.codec.Encode(tokens.AccessToken{ServiceTicket: "ST-77-gone", ServiceID: service})
	require.NoError(t, err)
	_, err = f.profile.ResolveProfile(ctx, raw)
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestResolveProfile_ServiceTicketToken(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()

	tgt, err := f.registry.CreateTicketGrantingTicket(ctx, principal())
	require.NoError(t, err)
	st, err := f.registry.GrantServiceTicket(ctx, tgt.ID(), service)
	require.NoError(t, err)

	raw, err := f.codec.Encode(tokens.AccessToken{ServiceTicket: st.ID(), ServiceID: service})
	require.NoError(t, err)

	p, err := f.profile.ResolveProfile(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "abc12", p.ID)

	_, err = f.profile.ResolveProfile(ctx, raw)
	assert.ErrorIs(t, err, ErrUnknownSession, "service ticket was consumed")
}

func TestResolveProfile_ServiceTicketValidatesAgainstItsService(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()

	policy := tickets.ReleasePolicy{"another-service": {"username"}}
	registry := tickets.NewRegistry(tickets.NewMemoryStorage(time.Minute), tickets.WithReleasePolicy(policy))
	profiles := NewProfileService(registry, f.codec, logging.Nop())

	tgt, err := registry.CreateTicketGrantingTicket(ctx, principal())
	require.NoError(t, err)
	st, err := registry.GrantServiceTicket(ctx, tgt.ID(), "another-service")
	require.NoError(t, err)

	raw, err := f.codec.Encode(tokens.AccessToken{ServiceTicket: st.ID(), ServiceID: service})
	require.NoError(t, err)
	p, err := profiles.ResolveProfile(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"username": "jane@example.org"}, p.Attributes,
		"the ticket's own service decides the released attributes")
}

func TestResolveProfile_ExpiredServiceTicket(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()

	tgt, err := f.registry.CreateTicketGrantingTicket(ctx, principal())
	require.NoError(t, err)
	st, err := f.registry.GrantServiceTicket(ctx, tgt.ID(), service)
	require.NoError(t, err)
	raw, err := f.codec.Encode(tokens.AccessToken{ServiceTicket: st.ID(), ServiceID: service})
	require.NoError(t, err)

	f.now = f.now.Add(tickets.DefaultServiceTicketTTL + time.Second)

	_, err = f.profile.ResolveProfile(ctx, raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Equal(t, "expired_token", FailureCode(err))
}

func TestResolveProfile_ExpiredSession(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()

	res, err := f.login.Login(ctx, auth.Credential{Username: "jane@example.org"}, service)
	require.NoError(t, err)

	f.now = f.now.Add(tickets.DefaultTicketGrantingTTL + time.Second)

	_, err = f.profile.ResolveProfile(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.ErrorIs(t, f.login.Logout(ctx, res.AccessToken), ErrUnknownSession, "an expired session cannot be ended again")
}

func TestResolveProfile_AttributesAreCopied(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()
	res, err := f.login.Login(ctx, auth.Credential{Username: "jane@example.org"}, service)
	require.NoError(t, err)

	p1, err := f.profile.ResolveProfile(ctx, res.AccessToken)
	require.NoError(t, err)
	p1.Attributes["givenName"] = "changed"

	p2, err := f.profile.ResolveProfile(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Jane", p2.Attributes["givenName"])
}

func TestLogout(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()
	res, err := f.login.Login(ctx, auth.Credential{Username: "jane@example.org"}, service)
	require.NoError(t, err)

	require.NoError(t, f.login.Logout(ctx, res.AccessToken))
	_, err = f.profile.ResolveProfile(ctx, res.AccessToken)
	assert.ErrorIs(t, err, ErrUnknownSession)

	assert.ErrorIs(t, f.login.Logout(ctx, res.AccessToken), ErrUnknownSession)
	assert.ErrorIs(t, f.login.Logout(ctx, ""), ErrMissingToken)
	assert.ErrorIs(t, f.login.Logout(ctx, "junk"), ErrMissingToken)
}

func TestLogout_ServiceTicketToken(t *testing.T) {
	f := newFixture(t, &fakeAuthenticator{out: principal()})
	ctx := context.Background()
	tgt, err := f.registry.CreateTicketGrantingTicket(ctx, principal())
	require.NoError(t, err)
	st, err := f.registry.GrantServiceTicket(ctx, tgt.ID(), service)
	require.NoError(t, err)
	raw, err := f.codec.Encode(tokens.AccessToken{ServiceTicket: st.ID(), ServiceID: service})
	require.NoError(t, err)

	require.NoError(t, f.login.Logout(ctx, raw))
	_, err = f.registry.GetTicket(ctx, tgt.ID())
	assert.ErrorIs(t, err, tickets.ErrTicketNotFound)
}

type brokenStore struct {
	TicketStore
	err error
}

func (b brokenStore) GetTicket(context.Context, string) (tickets.Ticket, error) { return nil, b.err }

func TestResolveProfile_StoreOutageIsInternal(t *testing.T) {
	codec, err := tokens.NewCodec("sign", "encrypt")
	require.NoError(t, err)
	p := NewProfileService(brokenStore{err: errors.New("redis down")}, codec, logging.Nop())

	raw, err := codec.Encode(tokens.AccessToken{TicketGrantingTicket: "TGT-1-a", ServiceID: service})
	require.NoError(t, err)
	_, err = p.ResolveProfile(context.Background(), raw)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Empty(t, FailureCode(err))
}

func TestExtractAccessToken(t *testing.T) {
	tests := []struct {
		name, param, header, want string
	}{
		{name: "param", param: "tok", header: "Bearer other", want: "tok"},
		{name: "header", header: "Bearer tok", want: "tok"},
		{name: "blank param uses header", param: "  ", header: "Bearer tok", want: "tok"},
		{name: "lowercase scheme", header: "bearer tok", want: ""},
		{name: "two spaces", header: "Bearer  tok", want: " tok"},
		{name: "no scheme", header: "tok", want: ""},
		{name: "nothing", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAccessToken(tt.param, tt.header))
		})
	}
}
