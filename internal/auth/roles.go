package auth

import "github.com/Raj-Randive/soar-school-management-system/internal/domain"

// RoleSet is the immutable set of roles a route admits.
type RoleSet struct {
	roles map[domain.Role]struct{}
}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...domain.Role) RoleSet {
	set := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return RoleSet{roles: set}
}

// Contains reports whether role is admitted. An empty set admits any authenticated role.
func (s RoleSet) Contains(role domain.Role) bool {
	if len(s.roles) == 0 {
		return true
	}
	_, ok := s.roles[role]
	return ok
}

// Len returns the number of declared roles.
func (s RoleSet) Len() int {
	return len(s.roles)
}
