package authz

import "errors"

// ErrForbidden is returned when a valid principal lacks permission for an
// action. Distinct from a token failure: the identity is fine, the
// permission is absent.
var ErrForbidden = errors.New("forbidden")

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a raw role string onto the closed enum. Anything other
// than the two known values is rejected so a typo can never grant access.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Principal is the identity resolved from a verified token for the
// duration of one request. It is never persisted.
type Principal struct {
	Username string
	Role     Role
}

type Action string

const (
	ActionCreatePost  Action = "create_post"
	ActionViewPost    Action = "view_post"
	ActionEditPost    Action = "edit_post"
	ActionDeletePost  Action = "delete_post"
	ActionViewProfile Action = "view_profile"
	ActionListUsers   Action = "list_users"
	ActionChangeRole  Action = "change_role"
	ActionDeleteUser  Action = "delete_user"
)

// Can decides whether p may perform action on a resource owned by owner.
// owner is the post author for post actions and ignored elsewhere. A zero
// principal is denied everything, including reads.
func Can(action Action, p Principal, owner string) bool {
	if p.Username == "" {
		return false
	}
	if p.Role != RoleUser && p.Role != RoleAdmin {
		return false
	}

	switch action {
	case ActionCreatePost, ActionViewPost, ActionViewProfile:
		return true
	case ActionEditPost, ActionDeletePost:
		return p.Username == owner || p.Role == RoleAdmin
	case ActionListUsers, ActionChangeRole, ActionDeleteUser:
		return p.Role == RoleAdmin
	}
	return false
}

// Require is Can with an error result for handler call sites.
func Require(action Action, p Principal, owner string) error {
	if !Can(action, p, owner) {
		return ErrForbidden
	}
	return nil
}
