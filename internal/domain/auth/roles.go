package auth

// RoleSet holds role name tokens assigned to an identity. Unlike permissions
// there is no wildcard matching; role checks are exact.
type RoleSet struct {
	TokenSet
}

// HasRole reports membership by role name.
func (r *RoleSet) HasRole(name string) bool {
	return r.Has(name)
}

// HasRoleID reports membership by numeric role id.
func (r *RoleSet) HasRoleID(id int) bool {
	return r.HasID(id)
}

// Role is a named grouping of permissions that can be assigned to users.
// Role permission checks have no admin bypass; that rule belongs to Identity.
type Role struct {
	ID          *int64
	Name        string
	Active      bool
	Permissions PermissionSet
}

// IsAllowed evaluates the requested permission names against the role's
// stored permissions.
func (r *Role) IsAllowed(names []string, allRequired bool) bool {
	return r.Permissions.IsAllowed(names, allRequired)
}
