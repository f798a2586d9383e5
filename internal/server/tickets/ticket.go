// Package tickets is the CAS ticket registry: ticket-granting tickets for a
// login session and single-use service tickets granted from them.
package tickets

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/casauth/internal/server/models"
)

// Ticket id prefixes.
const (
	PrefixTicketGrantingTicket = "TGT"
	PrefixServiceTicket        = "ST"
)

// Ticket is either a *TicketGrantingTicket or a *ServiceTicket.
type Ticket interface {
	ID() string
	CreatedAt() time.Time
	ExpiresAt() time.Time
	IsExpired(now time.Time) bool
}

type base struct {
	id        string
	createdAt time.Time
	expiresAt time.Time
}

func (b base) ID() string                   { return b.id }
func (b base) CreatedAt() time.Time         { return b.createdAt }
func (b base) ExpiresAt() time.Time         { return b.expiresAt }
func (b base) IsExpired(now time.Time) bool { return !now.Before(b.expiresAt) }

// TicketGrantingTicket represents an authenticated login session.
type TicketGrantingTicket struct {
	base
	Principal *models.Principal
}

// ServiceTicket grants one access to a service on behalf of a session.
type ServiceTicket struct {
	base
	GrantingTicketID string
	ServiceID        string
}

// Assertion is the result of a successful service ticket validation.
type Assertion struct {
	Principal *models.Principal
	ServiceID string
}

// Kind returns the prefix of a ticket id, "" when it has none we issue.
func Kind(id string) string {
	prefix, _, ok := strings.Cut(id, "-")
	if !ok {
		return ""
	}
	switch prefix {
	case PrefixTicketGrantingTicket, PrefixServiceTicket:
		return prefix
	default:
		return ""
	}
}

type envelope struct {
	Kind             string            `json:"kind"`
	ID               string            `json:"id"`
	CreatedAt        time.Time         `json:"created_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	Principal        *models.Principal `json:"principal,omitempty"`
	GrantingTicketID string            `json:"tgt,omitempty"`
	ServiceID        string            `json:"service,omitempty"`
}

func (e envelope) ticket() (Ticket, bool) {
	b := base{id: e.ID, createdAt: e.CreatedAt, expiresAt: e.ExpiresAt}
	switch e.Kind {
	case PrefixTicketGrantingTicket:
		if e.Principal == nil {
			return nil, false
		}
		return &TicketGrantingTicket{base: b, Principal: e.Principal}, true
	case PrefixServiceTicket:
		if e.GrantingTicketID == "" || e.ServiceID == "" {
			return nil, false
		}
		return &ServiceTicket{base: b, GrantingTicketID: e.GrantingTicketID, ServiceID: e.ServiceID}, true
	default:
		return nil, false
	}
}

func envelopeOf(t Ticket) envelope {
	e := envelope{ID: t.ID(), CreatedAt: t.CreatedAt(), ExpiresAt: t.ExpiresAt()}
	switch v := t.(type) {
	case *TicketGrantingTicket:
		e.Kind = PrefixTicketGrantingTicket
		e.Principal = v.Principal
	case *ServiceTicket:
		e.Kind = PrefixServiceTicket
		e.GrantingTicketID = v.GrantingTicketID
		e.ServiceID = v.ServiceID
	}
	return e
}
