// Package policy decides whether an actor may perform an action on a post or
// comment. It never touches storage: callers load the resource first and pass
// it in.
package policy

import (
	"errors"
	"fmt"

	"blog_api/internal/models"
)

// Action is one of the abstract operations a policy evaluates.
type Action string

const (
	ViewAny Action = "viewAny"
	View    Action = "view"
	Create  Action = "create"
	Update  Action = "update"
	Delete  Action = "delete"
)

// Kind names a protected resource type.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// ErrForbidden is matched by every denial returned from Authorize.
var ErrForbidden = errors.New("forbidden")

// DeniedError describes which check failed.
type DeniedError struct {
	Kind   Kind
	Action Action
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("forbidden: %s %s", e.Action, e.Kind)
}

func (e *DeniedError) Is(target error) bool { return target == ErrForbidden }

// Owned is a loaded resource instance that knows its author.
type Owned interface {
	AuthorID() int
}

// Policy holds the rules for one resource kind. target is nil for
// type-level checks (ViewAny, Create).
type Policy interface {
	Allows(actor models.User, action Action, target Owned) bool
}

// PostPolicy: anyone signed in reads and creates, only the author changes.
type PostPolicy struct{}

func (PostPolicy) Allows(actor models.User, action Action, target Owned) bool {
	return authorOnlyWrites(actor, action, target)
}

// CommentPolicy mirrors PostPolicy; replies get no extra rights on the parent.
type CommentPolicy struct{}

func (CommentPolicy) Allows(actor models.User, action Action, target Owned) bool {
	return authorOnlyWrites(actor, action, target)
}

func authorOnlyWrites(actor models.User, action Action, target Owned) bool {
	if actor.ID <= 0 {
		return false
	}
	switch action {
	case ViewAny, Create:
		return true
	case View:
		return target != nil
	case Update, Delete:
		return target != nil && target.AuthorID() == actor.ID
	default:
		return false
	}
}

// Engine dispatches a check to the policy registered for its kind.
type Engine struct {
	policies map[Kind]Policy
}

// NewEngine returns an engine with the post and comment policies registered.
func NewEngine() *Engine {
	return &Engine{policies: map[Kind]Policy{
		KindPost:    PostPolicy{},
		KindComment: CommentPolicy{},
	}}
}

// Can reports whether actor may perform action. Unknown kinds are denied.
func (e *Engine) Can(actor models.User, action Action, kind Kind, target Owned) bool {
	p, ok := e.policies[kind]
	if !ok {
		return false
	}
	return p.Allows(actor, action, target)
}

// Authorize is Can returning a *DeniedError on refusal.
func (e *Engine) Authorize(actor models.User, action Action, kind Kind, target Owned) error {
	if e.Can(actor, action, kind, target) {
		return nil
	}
	return &DeniedError{Kind: kind, Action: action}
}
