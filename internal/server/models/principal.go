package models

// Attribute names released for every authenticated user.
const (
	AttributeUsername   = "username"
	AttributeGivenName  = "givenName"
	AttributeFamilyName = "familyName"
)

// Principal is the authenticated identity: the stable external id plus the
// attributes asserted about it.
type Principal struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
}

// Clone returns a copy whose attribute map can be modified independently.
// Values are copied shallowly.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	attrs := make(map[string]any, len(p.Attributes))
	for k, v := range p.Attributes {
		attrs[k] = v
	}
	return &Principal{ID: p.ID, Attributes: attrs}
}
