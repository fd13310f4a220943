// Package types provides type definitions for structured data used throughout the group-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Role classifies a student, post, or group member by the position they fill.
type Role string

const (
	RoleFrontend Role = "frontend"
	RoleBackend  Role = "backend"
	RoleOther    Role = "other"
	RoleUnknown  Role = "unknown"
)

// Known reports whether the role is one of the three concrete classifications.
func (r Role) Known() bool {
	return r == RoleFrontend || r == RoleBackend || r == RoleOther
}

// RoleMix is the per-group count of members classified frontend/backend/other.
// It is a value type: updates produce a new value rather than mutating in place.
type RoleMix struct {
	Frontend int `json:"frontend"`
	Backend  int `json:"backend"`
	Other    int `json:"other"`
}

// WithRoleAdded returns a copy of the mix with one member of the given role added.
// Unknown roles count toward the "other" bucket.
func (m RoleMix) WithRoleAdded(role Role) RoleMix {
	switch role {
	case RoleFrontend:
		m.Frontend++
	case RoleBackend:
		m.Backend++
	default:
		m.Other++
	}
	return m
}

// Count returns the number of members holding the given role.
func (m RoleMix) Count(role Role) int {
	switch role {
	case RoleFrontend:
		return m.Frontend
	case RoleBackend:
		return m.Backend
	default:
		return m.Other
	}
}

// Total returns the total member count across all roles.
func (m RoleMix) Total() int {
	return m.Frontend + m.Backend + m.Other
}

// RoleMixSet maps group IDs to their role mixes.
type RoleMixSet map[string]RoleMix

// MixFor returns the mix for a group, or a zero mix when the group is absent.
// Absence is a normal condition for freshly created or empty groups.
func (s RoleMixSet) MixFor(groupID string) RoleMix {
	if s == nil {
		return RoleMix{}
	}
	return s[groupID]
}
