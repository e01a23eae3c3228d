// Package authz is the single decision point for who may do what. It is a
// pure function over (actor, action, resource) with no storage access, so
// every handler and service delegates here instead of re-deriving role
// checks.
package authz

import (
	"reviewhub/proj/internal/domain/models"
)

type Action int

const (
	// Reads of categories, genres, titles, reviews and comments are public.
	ActionReadContent Action = iota
	// Create/update/delete of categories, genres and titles.
	ActionWriteCatalog
	ActionCreateReview
	ActionCreateComment
	// Update/delete of an existing review or comment; authorship matters.
	ActionModifyReview
	ActionModifyComment
	// List/create/retrieve/update/delete arbitrary users.
	ActionManageUsers
	// Read/update the actor's own profile (non-role fields).
	ActionReadSelf
	ActionUpdateSelf
	// Change any user's role, own included.
	ActionAssignRole
)

// Resource carries the attributes of the object being acted on that the
// decision depends on. AuthorID is zero when authorship is not applicable.
type Resource struct {
	AuthorID int64
}

// Allowed reports whether actor may perform action on res. A nil or
// zero-ID actor is anonymous.
func Allowed(actor *models.User, action Action, res Resource) bool {
	switch action {
	case ActionReadContent:
		return true
	case ActionWriteCatalog, ActionManageUsers, ActionAssignRole:
		return actor.IsAdmin()
	case ActionCreateReview, ActionCreateComment, ActionReadSelf, ActionUpdateSelf:
		return !actor.IsAnonymous()
	case ActionModifyReview, ActionModifyComment:
		if actor.IsAnonymous() {
			return false
		}
		return actor.ID == res.AuthorID || actor.IsModerator() || actor.IsAdmin()
	}
	return false
}
