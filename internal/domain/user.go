package domain

import (
	"strings"
	"time"
)

// Role enumerates the closed set of user roles.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleRequester     Role = "REQUESTER"
	RoleGrantee       Role = "GRANTEE"
)

var roles = []Role{RoleAdministrator, RoleRequester, RoleGrantee}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts user input into a Role. It returns false for unknown values.
func ParseRole(raw string) (Role, bool) {
	r := Role(normalizeEnum(raw))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// Roles returns every known role.
func Roles() []Role {
	return append([]Role(nil), roles...)
}

// User is an account able to authenticate against the service.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

// NormalizeEmail lowercases and trims an email so it can act as identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeEnum(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}
