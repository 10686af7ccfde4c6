package rbac

import "sort"

// CapabilitySet is an immutable set of capabilities.
type CapabilitySet struct {
	members map[Capability]struct{}
}

func newCapabilitySet(caps ...Capability) CapabilitySet {
	members := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		members[c] = struct{}{}
	}
	return CapabilitySet{members: members}
}

// Has reports whether c is granted.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s.members[c]
	return ok
}

// Len returns the number of capabilities.
func (s CapabilitySet) Len() int {
	return len(s.members)
}

// List returns the capabilities sorted by name.
func (s CapabilitySet) List() []Capability {
	out := make([]Capability, 0, len(s.members))
	for c := range s.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// catalog is built once at package initialisation and never written again,
// so concurrent readers need no synchronisation.
var catalog = map[Role]CapabilitySet{
	RoleOwner:  newCapabilitySet(CapTaskCreate, CapTaskRead, CapTaskUpdate, CapTaskDelete, CapAuditRead),
	RoleAdmin:  newCapabilitySet(CapTaskCreate, CapTaskRead, CapTaskUpdate, CapTaskDelete, CapAuditRead),
	RoleViewer: newCapabilitySet(CapTaskRead),
}

// CapabilitiesFor returns the capabilities granted to role. Unknown roles get
// the empty set.
func CapabilitiesFor(role Role) CapabilitySet {
	set, ok := catalog[role]
	if !ok {
		return CapabilitySet{}
	}
	return set
}

// IsAuthorized reports whether role holds every capability in required. An
// empty requirement marks a public operation and is always satisfied.
func IsAuthorized(role Role, required ...Capability) bool {
	if len(required) == 0 {
		return true
	}
	granted := CapabilitiesFor(role)
	for _, c := range required {
		if !granted.Has(c) {
			return false
		}
	}
	return true
}
