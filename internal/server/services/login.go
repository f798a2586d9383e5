package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/auth"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/tickets"
	"github.com/dmitrijs2005/casauth/internal/server/tokens"
)

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Principal   *models.Principal
	TGTID       string
	AccessToken string
}

// LoginService authenticates credentials and opens sessions.
type LoginService struct {
	authenticator Authenticator
	tickets       TicketStore
	codec         TokenCodec
	logger        logging.Logger
}

func NewLoginService(a Authenticator, t TicketStore, c TokenCodec, l logging.Logger) *LoginService {
	return &LoginService{authenticator: a, tickets: t, codec: c, logger: l.With("module", "login")}
}

// Authenticate only verifies the credential.
func (s *LoginService) Authenticate(ctx context.Context, cred auth.Credential) (*models.Principal, error) {
	return s.authenticator.Authenticate(ctx, cred)
}

// Login verifies cred, creates a ticket-granting ticket and returns an access
// token bound to serviceID. Authentication failures are returned unchanged.
func (s *LoginService) Login(ctx context.Context, cred auth.Credential, serviceID string) (*LoginResult, error) {
	if serviceID == "" {
		return nil, errors.New("service is required")
	}
	principal, err := s.authenticator.Authenticate(ctx, cred)
	if err != nil {
		s.logger.Info(ctx, "login rejected", "username", cred.Username, "reason", auth.FailureCode(err))
		return nil, err
	}

	tgt, err := s.tickets.CreateTicketGrantingTicket(ctx, principal)
	if err != nil {
		s.logger.Error(ctx, "error creating session", "error", err)
		return nil, fmt.Errorf("%w: create session", common.ErrorInternal)
	}
	token, err := s.codec.Encode(tokens.AccessToken{TicketGrantingTicket: tgt.ID(), ServiceID: serviceID})
	if err != nil {
		s.logger.Error(ctx, "error encoding access token", "error", err)
		return nil, fmt.Errorf("%w: encode access token", common.ErrorInternal)
	}

	s.logger.Info(ctx, "login succeeded", "principal", principal.ID, "ticket", tgt.ID(), "service", serviceID)
	return &LoginResult{Principal: principal, TGTID: tgt.ID(), AccessToken: token}, nil
}

// Logout ends the session behind rawToken.
func (s *LoginService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return ErrMissingToken
	}
	at, err := s.codec.Decode(rawToken)
	if err != nil {
		return ErrMissingToken
	}

	tgtID := at.TicketGrantingTicket
	if tgtID == "" {
		t, err := s.tickets.GetTicket(ctx, at.ServiceTicket)
		if err != nil {
			return s.lookupError(ctx, at.ServiceTicket, err)
		}
		st, ok := t.(*tickets.ServiceTicket)
		if !ok {
			return ErrUnknownSession
		}
		tgtID = st.GrantingTicketID
	}

	if _, err := s.tickets.GetTicket(ctx, tgtID); err != nil {
		return s.lookupError(ctx, tgtID, err)
	}
	if err := s.tickets.DestroyTicketGrantingTicket(ctx, tgtID); err != nil {
		s.logger.Error(ctx, "error destroying session", "ticket", tgtID, "error", err)
		return fmt.Errorf("%w: destroy session", common.ErrorInternal)
	}
	return nil
}

func (s *LoginService) lookupError(ctx context.Context, id string, err error) error {
	if errors.Is(err, tickets.ErrTicketNotFound) {
		return ErrUnknownSession
	}
	s.logger.Error(ctx, "ticket lookup failed", "ticket", id, "error", err)
	return fmt.Errorf("%w: ticket lookup", common.ErrorInternal)
}
