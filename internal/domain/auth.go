package domain

// Role enumerates the closed set of caller roles carried in session tokens.
type Role string

const (
	RoleSuperAdmin  Role = "superadmin"
	RoleSchoolAdmin Role = "schooladmin"
)

// Roles lists every valid role in declaration order.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleSchoolAdmin}
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleSchoolAdmin:
		return true
	}
	return false
}
