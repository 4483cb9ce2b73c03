package auth

// Identity represents the authenticatable principal loaded from a user store.
// PasswordHash is populated only transiently during credential verification
// and must be cleared before the identity leaves the auth flow.
type Identity struct {
	// ID is the store's primary key; nil until persisted or loaded.
	ID       *int64
	Active   bool
	UserName string
	FullName string

	// PasswordHash holds the stored bcrypt hash during verification only.
	PasswordHash string

	// Admin grants an unconditional pass on every permission and role check.
	Admin bool

	Roles       RoleSet
	Permissions PermissionSet
}

// ClearPasswordHash drops the password material from the identity.
func (u *Identity) ClearPasswordHash() {
	u.PasswordHash = ""
}

// IsAllowed reports whether all requested permission names are satisfied.
// Administrators pass unconditionally.
func (u *Identity) IsAllowed(names ...string) bool {
	if u.Admin {
		return true
	}
	return u.Permissions.IsAllowed(names, true)
}

// IsAllowedAny reports whether at least one requested permission name is
// satisfied. Administrators pass unconditionally.
func (u *Identity) IsAllowedAny(names ...string) bool {
	if u.Admin {
		return true
	}
	return u.Permissions.IsAllowed(names, false)
}

// HasPermission reports exact permission membership by name, with admin bypass.
func (u *Identity) HasPermission(name string) bool {
	if u.Admin {
		return true
	}
	return u.Permissions.HasPermission(name)
}

// HasPermissionID reports permission membership by numeric id, with admin bypass.
func (u *Identity) HasPermissionID(id int) bool {
	if u.Admin {
		return true
	}
	return u.Permissions.HasPermissionID(id)
}

// HasRole reports role membership by name, with admin bypass.
func (u *Identity) HasRole(name string) bool {
	if u.Admin {
		return true
	}
	return u.Roles.HasRole(name)
}

// HasRoleID reports role membership by numeric id, with admin bypass.
func (u *Identity) HasRoleID(id int) bool {
	if u.Admin {
		return true
	}
	return u.Roles.HasRoleID(id)
}
