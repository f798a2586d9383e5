// Package services holds the server use cases: logging a user in, resolving
// an access token to a profile and logging out.
package services

import (
	"context"

	"github.com/dmitrijs2005/casauth/internal/server/auth"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/tickets"
	"github.com/dmitrijs2005/casauth/internal/server/tokens"
)

type Authenticator interface {
	Authenticate(ctx context.Context, cred auth.Credential) (*models.Principal, error)
}

type TicketStore interface {
	CreateTicketGrantingTicket(ctx context.Context, p *models.Principal) (*tickets.TicketGrantingTicket, error)
	GetTicket(ctx context.Context, id string) (tickets.Ticket, error)
	GrantServiceTicket(ctx context.Context, tgtID, serviceID string) (*tickets.ServiceTicket, error)
	ValidateServiceTicket(ctx context.Context, stID, serviceID string) (*tickets.Assertion, error)
	DestroyTicketGrantingTicket(ctx context.Context, id string) error
}

type TokenCodec interface {
	Encode(t tokens.AccessToken) (string, error)
	Decode(raw string) (*tokens.AccessToken, error)
}
