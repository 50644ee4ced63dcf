package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of account privilege levels.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleStandard  Role = "standard"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleStandard:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User represents a platform account.
type User struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      []byte
	Role              Role
	Active            bool
	Confirmed         bool
	Avatar            string
	RenewalCredential string
	CreatedAt         time.Time
}
