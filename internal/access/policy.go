// Package access decides which participants are eligible to receive replies.
package access

// Policy authorizes participants against a configured allow-list.
//
// The empty-list semantics differ between the two bot variants: the
// generative bot treats an empty allow-list as "everyone allowed", while the
// static bot treats it as "nobody allowed". The flag is fixed at
// construction time together with the rest of the variant selection.
type Policy struct {
	allowed        map[int64]struct{}
	emptyAllowsAll bool
}

// NewPolicy creates a Policy over the given allow-list. When emptyAllowsAll
// is true and the list is empty, every participant is authorized.
func NewPolicy(allowed map[int64]struct{}, emptyAllowsAll bool) *Policy {
	if allowed == nil {
		allowed = make(map[int64]struct{})
	}
	return &Policy{allowed: allowed, emptyAllowsAll: emptyAllowsAll}
}

// Allowed reports whether the participant is authorized to receive replies.
func (p *Policy) Allowed(userID int64) bool {
	if len(p.allowed) == 0 {
		return p.emptyAllowsAll
	}
	_, ok := p.allowed[userID]
	return ok
}
