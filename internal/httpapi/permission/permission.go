// Package permission holds the stateless access policies handlers consult
// before and after loading a resource. Routing stays open; every write goes
// through a Policy so the role rules live in one place instead of scattered
// string comparisons.
package permission

import "reviewhub/internal/httpapi/models"

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Identity is the authenticated caller, built from JWT claims by the auth
// middleware. A nil *Identity means an anonymous request.
type Identity struct {
	UserID   int64
	Username string
	Role     models.Role
}

// Authored is implemented by resources that belong to a user (reviews,
// comments) so the object-level check can compare ownership.
type Authored interface {
	AuthorUserID() int64
}

// Policy evaluates a coarse pre-load check and a fine post-load check.
// Reads always pass both.
type Policy interface {
	CanAccess(action Action, id *Identity) bool
	CanAccessObject(action Action, id *Identity, obj Authored) bool
}

// AdminOrReadOnly guards catalog resources: anyone may read, only admins
// may write.
type AdminOrReadOnly struct{}

func (AdminOrReadOnly) CanAccess(action Action, id *Identity) bool {
	if action == ActionRead {
		return true
	}
	return id != nil && id.Role == models.RoleAdmin
}

func (p AdminOrReadOnly) CanAccessObject(action Action, id *Identity, _ Authored) bool {
	return p.CanAccess(action, id)
}

// AuthorModeratorOrReadOnly guards reviews and comments: anyone may read,
// any authenticated user may create, and update/delete require the caller
// to be the author or hold a staff role.
type AuthorModeratorOrReadOnly struct{}

func (AuthorModeratorOrReadOnly) CanAccess(action Action, id *Identity) bool {
	if action == ActionRead {
		return true
	}
	return id != nil
}

func (AuthorModeratorOrReadOnly) CanAccessObject(action Action, id *Identity, obj Authored) bool {
	if action == ActionRead {
		return true
	}
	if id == nil {
		return false
	}
	if action == ActionCreate {
		return true
	}
	return id.Role.IsStaff() || obj.AuthorUserID() == id.UserID
}

// AdminOnly guards the user administration surface. Nothing is public here:
// a non-admin gets forbidden, not a filtered view.
type AdminOnly struct{}

func (AdminOnly) CanAccess(_ Action, id *Identity) bool {
	return id != nil && id.Role == models.RoleAdmin
}

func (p AdminOnly) CanAccessObject(action Action, id *Identity, _ Authored) bool {
	return p.CanAccess(action, id)
}
