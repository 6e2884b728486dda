package models

import "fmt"

// Role is the authorization tier attached to a user. It is a closed set:
// anything outside user/moderator/admin is rejected at the boundary where
// the value enters the system (signup, admin patch, CSV import).
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role may moderate other users' reviews and comments.
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// ParseRole validates a raw string coming from a request or an import row.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}
