package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/google/uuid"
)

var (
	// ErrTicketNotFound means no live ticket has the requested id.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrInvalidTicket means a ticket exists or existed but cannot be used
	// for the request: consumed, expired, issued for another service or
	// granted by a session that has ended.
	ErrInvalidTicket = errors.New("invalid ticket")
	// ErrTicketExpired means the ticket is still stored but its lifetime
	// has passed. It matches ErrTicketNotFound too.
	ErrTicketExpired = fmt.Errorf("%w: expired", ErrTicketNotFound)
)

// expiredRetention keeps tickets in storage past their lifetime so lookups
// can tell an expired ticket from an unknown one.
const expiredRetention = time.Minute

// Default lifetimes.
const (
	DefaultTicketGrantingTTL = 8 * time.Hour
	DefaultServiceTicketTTL  = 10 * time.Second
)

// ReleasePolicy lists, per service id, the attribute names released to that
// service. Services without an entry receive every attribute.
type ReleasePolicy map[string][]string

// Apply returns a copy of p holding only the attributes released to serviceID.
func (rp ReleasePolicy) Apply(serviceID string, p *models.Principal) *models.Principal {
	out := p.Clone()
	allowed, ok := rp[serviceID]
	if !ok {
		return out
	}
	keep := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		keep[name] = struct{}{}
	}
	for name := range out.Attributes {
		if _, ok := keep[name]; !ok {
			delete(out.Attributes, name)
		}
	}
	return out
}

// Registry issues, looks up and validates tickets over a Storage. It is safe
// for concurrent use.
type Registry struct {
	storage     Storage
	logger      logging.Logger
	now         func() time.Time
	grantingTTL time.Duration
	serviceTTL  time.Duration
	policy      ReleasePolicy
	grantingSeq atomic.Uint64
	serviceSeq  atomic.Uint64
}

type RegistryOption func(*Registry)

func WithLifetimes(grantingTTL, serviceTTL time.Duration) RegistryOption {
	return func(r *Registry) {
		if grantingTTL > 0 {
			r.grantingTTL = grantingTTL
		}
		if serviceTTL > 0 {
			r.serviceTTL = serviceTTL
		}
	}
}

func WithReleasePolicy(p ReleasePolicy) RegistryOption {
	return func(r *Registry) { r.policy = p }
}

func WithRegistryLogger(l logging.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(s Storage, opts ...RegistryOption) *Registry {
	r := &Registry{
		storage:     s,
		logger:      logging.Nop(),
		now:         time.Now,
		grantingTTL: DefaultTicketGrantingTTL,
		serviceTTL:  DefaultServiceTicketTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("module", "tickets")
	return r
}

func (r *Registry) newID(prefix string, seq *atomic.Uint64) string {
	return prefix + "-" + strconv.FormatUint(seq.Add(1), 10) + "-" + uuid.NewString()
}

// CreateTicketGrantingTicket starts a session for principal.
func (r *Registry) CreateTicketGrantingTicket(ctx context.Context, principal *models.Principal) (*TicketGrantingTicket, error) {
	if principal == nil || principal.ID == "" {
		return nil, errors.New("principal is required")
	}
	now := r.now()
	tgt := &TicketGrantingTicket{
		base: base{
			id:        r.newID(PrefixTicketGrantingTicket, &r.grantingSeq),
			createdAt: now,
			expiresAt: now.Add(r.grantingTTL),
		},
		Principal: principal.Clone(),
	}
	if err := r.put(ctx, tgt, r.grantingTTL); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "ticket granting ticket created", "ticket", tgt.ID(), "principal", principal.ID)
	return tgt, nil
}

// GetTicket returns the live ticket with id. Unknown ids are
// ErrTicketNotFound; tickets past their lifetime are ErrTicketExpired.
func (r *Registry) GetTicket(ctx context.Context, id string) (Ticket, error) {
	if Kind(id) == "" {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	data, err := r.storage.Get(ctx, id)
	if err != nil {
		return nil, r.storageError(id, err)
	}
	t, err := decodeTicket(data)
	if err != nil {
		r.logger.Error(ctx, "stored ticket is corrupt", "ticket", id)
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	if t.IsExpired(r.now()) {
		return nil, fmt.Errorf("%w: %s", ErrTicketExpired, id)
	}
	return t, nil
}

// GrantServiceTicket issues a service ticket for serviceID from a live
// ticket-granting ticket. A missing or expired session is ErrInvalidTicket.
func (r *Registry) GrantServiceTicket(ctx context.Context, tgtID, serviceID string) (*ServiceTicket, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("%w: service is required", ErrInvalidTicket)
	}
	if _, err := r.grantingTicket(ctx, tgtID); err != nil {
		return nil, err
	}

	now := r.now()
	st := &ServiceTicket{
		base: base{
			id:        r.newID(PrefixServiceTicket, &r.serviceSeq),
			createdAt: now,
			expiresAt: now.Add(r.serviceTTL),
		},
		GrantingTicketID: tgtID,
		ServiceID:        serviceID,
	}
	if err := r.put(ctx, st, r.serviceTTL); err != nil {
		return nil, err
	}
	r.logger.Debug(ctx, "service ticket granted", "ticket", st.ID(), "service", serviceID)
	return st, nil
}

// ValidateServiceTicket consumes the service ticket and returns the assertion
// for the session it was granted from, with the release policy applied.
// Every reason the ticket cannot be honoured is ErrInvalidTicket.
func (r *Registry) ValidateServiceTicket(ctx context.Context, stID, serviceID string) (*Assertion, error) {
	if Kind(stID) != PrefixServiceTicket {
		return nil, fmt.Errorf("%w: %s is not a service ticket", ErrInvalidTicket, stID)
	}
	data, err := r.storage.Take(ctx, stID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTicket, stID)
		}
		return nil, fmt.Errorf("take %s: %w", stID, err)
	}
	t, err := decodeTicket(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is corrupt", ErrInvalidTicket, stID)
	}
	st, ok := t.(*ServiceTicket)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a service ticket", ErrInvalidTicket, stID)
	}
	if st.IsExpired(r.now()) {
		return nil, fmt.Errorf("%w: %s expired", ErrInvalidTicket, stID)
	}
	if st.ServiceID != serviceID {
		r.logger.Warn(ctx, "service ticket presented by another service", "ticket", stID, "service", serviceID)
		return nil, fmt.Errorf("%w: %s was not issued for this service", ErrInvalidTicket, stID)
	}

	tgt, err := r.grantingTicket(ctx, st.GrantingTicketID)
	if err != nil {
		return nil, err
	}
	return &Assertion{
		Principal: r.policy.Apply(serviceID, tgt.Principal),
		ServiceID: serviceID,
	}, nil
}

// DestroyTicketGrantingTicket ends a session. Service tickets granted from
// it stop validating.
func (r *Registry) DestroyTicketGrantingTicket(ctx context.Context, id string) error {
	if Kind(id) != PrefixTicketGrantingTicket {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	if err := r.storage.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	r.logger.Info(ctx, "ticket granting ticket destroyed", "ticket", id)
	return nil
}

// Purge removes expired tickets when the storage keeps them.
func (r *Registry) Purge(ctx context.Context) (int64, error) {
	p, ok := r.storage.(Purger)
	if !ok {
		return 0, nil
	}
	return p.Purge(ctx)
}

// RunPurger calls Purge every interval until ctx is done.
func (r *Registry) RunPurger(ctx context.Context, interval time.Duration) {
	if _, ok := r.storage.(Purger); !ok || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.Purge(ctx)
			if err != nil {
				r.logger.Error(ctx, "ticket purge failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Debug(ctx, "expired tickets purged", "count", n)
			}
		}
	}
}

func (r *Registry) grantingTicket(ctx context.Context, id string) (*TicketGrantingTicket, error) {
	t, err := r.GetTicket(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return nil, fmt.Errorf("%w: session %s has ended", ErrInvalidTicket, id)
		}
		return nil, err
	}
	tgt, ok := t.(*TicketGrantingTicket)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a ticket granting ticket", ErrInvalidTicket, id)
	}
	return tgt, nil
}

func (r *Registry) put(ctx context.Context, t Ticket, ttl time.Duration) error {
	data, err := json.Marshal(envelopeOf(t))
	if err != nil {
		return fmt.Errorf("encode ticket: %w", err)
	}
	if err := r.storage.Put(ctx, t.ID(), data, ttl+expiredRetention); err != nil {
		return fmt.Errorf("store %s: %w", t.ID(), err)
	}
	return nil
}

func (r *Registry) storageError(id string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	return fmt.Errorf("load %s: %w", id, err)
}

func decodeTicket(data []byte) (Ticket, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	t, ok := e.ticket()
	if !ok {
		return nil, errors.New("unknown ticket envelope")
	}
	return t, nil
}
