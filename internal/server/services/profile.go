package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/tickets"
)

// ExtractAccessToken returns the request parameter when it is not blank,
// otherwise the token of an "Authorization: Bearer <token>" header. The
// scheme match is case-sensitive with a single space.
func ExtractAccessToken(param, authorization string) string {
	if strings.TrimSpace(param) != "" {
		return param
	}
	if token, ok := strings.CutPrefix(authorization, common.BearerTokenPrefix); ok {
		return token
	}
	return ""
}

// ProfileService resolves access tokens to the principal of a live session.
// It holds no mutable state.
type ProfileService struct {
	tickets TicketStore
	codec   TokenCodec
	logger  logging.Logger
}

func NewProfileService(t TicketStore, c TokenCodec, l logging.Logger) *ProfileService {
	return &ProfileService{tickets: t, codec: c, logger: l.With("module", "profile")}
}

// ResolveProfile decodes rawToken, obtains a service ticket for the session
// it names and validates it against the service the ticket was issued for.
// Undecodable tokens are ErrMissingToken, absent tickets ErrUnknownSession,
// and expired tickets or tickets that fail validation ErrExpiredToken. The
// returned principal's attributes are a fresh map.
func (s *ProfileService) ResolveProfile(ctx context.Context, rawToken string) (*models.Principal, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}
	at, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil, ErrMissingToken
	}

	var st *tickets.ServiceTicket
	if at.ServiceTicket == "" {
		t, err := s.tickets.GetTicket(ctx, at.TicketGrantingTicket)
		if err != nil {
			return nil, s.lookupError(ctx, at.TicketGrantingTicket, err)
		}
		if _, ok := t.(*tickets.TicketGrantingTicket); !ok {
			return nil, ErrUnknownSession
		}
		st, err = s.tickets.GrantServiceTicket(ctx, at.TicketGrantingTicket, at.ServiceID)
		if err != nil {
			return nil, s.validationError(ctx, at.TicketGrantingTicket, err)
		}
	} else {
		t, err := s.tickets.GetTicket(ctx, at.ServiceTicket)
		if err != nil {
			return nil, s.lookupError(ctx, at.ServiceTicket, err)
		}
		var ok bool
		if st, ok = t.(*tickets.ServiceTicket); !ok {
			return nil, ErrUnknownSession
		}
	}

	assertion, err := s.tickets.ValidateServiceTicket(ctx, st.ID(), st.ServiceID)
	if err != nil {
		return nil, s.validationError(ctx, st.ID(), err)
	}
	return assertion.Principal.Clone(), nil
}

func (s *ProfileService) lookupError(ctx context.Context, id string, err error) error {
	if errors.Is(err, tickets.ErrTicketExpired) {
		s.logger.Debug(ctx, "ticket expired", "ticket", id)
		return ErrExpiredToken
	}
	if errors.Is(err, tickets.ErrTicketNotFound) {
		s.logger.Debug(ctx, "unknown session", "ticket", id)
		return ErrUnknownSession
	}
	s.logger.Error(ctx, "ticket lookup failed", "ticket", id, "error", err)
	return fmt.Errorf("%w: ticket lookup", common.ErrorInternal)
}

func (s *ProfileService) validationError(ctx context.Context, id string, err error) error {
	if errors.Is(err, tickets.ErrInvalidTicket) {
		s.logger.Debug(ctx, "ticket failed validation", "ticket", id)
		return ErrExpiredToken
	}
	s.logger.Error(ctx, "ticket validation failed", "ticket", id, "error", err)
	return fmt.Errorf("%w: ticket validation", common.ErrorInternal)
}
