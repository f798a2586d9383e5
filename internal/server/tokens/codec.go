// Package tokens encodes OAuth access tokens. A token is an HS512 JWT
// carrying the ticket ids and service it was issued for, wrapped in a
// compact JWE (dir, A256GCM) so clients see an opaque string.
package tokens

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	jose "gopkg.in/square/go-jose.v2"
)

// ErrDecode is returned for every token that cannot be decrypted, verified or
// parsed. Callers treat it as an absent token.
var ErrDecode = errors.New("token cannot be decoded")

// DefaultIssuer is the JWT issuer when none is configured.
const DefaultIssuer = "casauth"

// AccessToken is the decoded content of an access token.
type AccessToken struct {
	ID                   string
	TicketGrantingTicket string
	ServiceTicket        string
	ServiceID            string
	IssuedAt             time.Time
}

// TicketID returns the ticket the token resolves through: the ticket-granting
// ticket when present, otherwise the service ticket.
func (t *AccessToken) TicketID() string {
	if t.TicketGrantingTicket != "" {
		return t.TicketGrantingTicket
	}
	return t.ServiceTicket
}

type claims struct {
	TicketGrantingTicket string `json:"tgt,omitempty"`
	ServiceTicket        string `json:"st,omitempty"`
	ServiceID            string `json:"svc"`
	jwt.RegisteredClaims
}

// Codec is safe for concurrent use.
type Codec struct {
	signingKey    []byte
	encryptionKey []byte
	issuer        string
	now           func() time.Time
}

type CodecOption func(*Codec)

func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec derives the AES-256 content key from encryptionSecret. Both
// secrets must be non-empty.
func NewCodec(signingSecret, encryptionSecret string, opts ...CodecOption) (*Codec, error) {
	if signingSecret == "" || encryptionSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	key := sha256.Sum256([]byte(encryptionSecret))
	c := &Codec{
		signingKey:    []byte(signingSecret),
		encryptionKey: key[:],
		issuer:        DefaultIssuer,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs and encrypts t. A zero ID or IssuedAt is filled in.
func (c *Codec) Encode(t AccessToken) (string, error) {
	if t.ServiceID == "" || t.TicketID() == "" {
		return "", errors.New("access token needs a service and a ticket")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.IssuedAt.IsZero() {
		t.IssuedAt = c.now()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		TicketGrantingTicket: t.TicketGrantingTicket,
		ServiceTicket:        t.ServiceTicket,
		ServiceID:            t.ServiceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       t.ID,
			Issuer:   c.issuer,
			IssuedAt: jwt.NewNumericDate(t.IssuedAt),
		},
	}).SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	enc, err := jose.NewEncrypter(jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.encryptionKey},
		(&jose.EncrypterOptions{}).WithContentType("JWT"))
	if err != nil {
		return "", fmt.Errorf("create encrypter: %w", err)
	}
	obj, err := enc.Encrypt([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("encrypt access token: %w", err)
	}
	return obj.CompactSerialize()
}

// Decode reverses Encode. Any failure is ErrDecode.
func (c *Codec) Decode(raw string) (*AccessToken, error) {
	if raw == "" {
		return nil, ErrDecode
	}
	obj, err := jose.ParseEncrypted(raw)
	if err != nil {
		return nil, ErrDecode
	}
	plain, err := obj.Decrypt(c.encryptionKey)
	if err != nil {
		return nil, ErrDecode
	}

	var cl claims
	_, err = jwt.ParseWithClaims(string(plain), &cl, func(*jwt.Token) (any, error) {
		return c.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, ErrDecode
	}
	if cl.ServiceID == "" || (cl.TicketGrantingTicket == "" && cl.ServiceTicket == "") {
		return nil, ErrDecode
	}

	t := &AccessToken{
		ID:                   cl.ID,
		TicketGrantingTicket: cl.TicketGrantingTicket,
		ServiceTicket:        cl.ServiceTicket,
		ServiceID:            cl.ServiceID,
	}
	if cl.IssuedAt != nil {
		t.IssuedAt = cl.IssuedAt.Time
	}
	return t, nil
}
