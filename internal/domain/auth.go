package domain

// Session identifies the caller of a service operation.
type Session struct {
	UserID string
	Role   Role
}

// IsAdministrator reports whether the session carries the administrator role.
func (s Session) IsAdministrator() bool {
	return s.Role == RoleAdministrator
}
