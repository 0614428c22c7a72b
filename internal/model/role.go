package model

import "strings"

// Role is a normalized role name used as the join key between team members,
// BU default rates and feature task breakdowns. Comparison is trimmed and
// case-insensitive; the original casing is kept for display.
type Role struct {
	display string
}

func NewRole(raw string) Role {
	return Role{display: strings.TrimSpace(raw)}
}

func (r Role) Display() string {
	return r.display
}

// Key is the canonical lookup form.
func (r Role) Key() string {
	return strings.ToLower(r.display)
}

func (r Role) IsZero() bool {
	return r.display == ""
}

func (r Role) Equal(other Role) bool {
	return r.Key() == other.Key()
}

// DistinctRoles returns the distinct roles of a team in first-seen order.
func DistinctRoles(members []TeamMember) []Role {
	seen := make(map[string]struct{}, len(members))
	roles := make([]Role, 0, len(members))
	for _, m := range members {
		role := NewRole(m.Role)
		if role.IsZero() {
			continue
		}
		if _, ok := seen[role.Key()]; ok {
			continue
		}
		seen[role.Key()] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}
