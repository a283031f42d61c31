// Package access carries the caller's identity, role and organisation
// through request handling as an explicit value.
package access

import (
	"context"
	"errors"
	"strings"
)

// Role is a user's permission level.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a stored role name to a Role. Unknown names fall back to viewer.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEditor:
		return RoleEditor
	default:
		return RoleViewer
	}
}

// Action is something a caller may be allowed to do.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionManage Action = "manage"
)

var (
	ErrForbidden      = errors.New("access: permission denied")
	ErrNoOrganization = errors.New("access: organization is not selected")
)

// Context is the permission and organisation context of one request.
type Context struct {
	UserID         string
	Role           Role
	OrganizationID string
}

// Can reports whether the context's role allows action.
func (c Context) Can(action Action) bool {
	switch c.Role {
	case RoleAdmin:
		return true
	case RoleEditor:
		return action == ActionRead || action == ActionWrite
	case RoleViewer:
		return action == ActionRead
	}
	return false
}

// Require returns ErrForbidden unless action is allowed and an organisation
// is selected.
func (c Context) Require(action Action) error {
	if !c.Can(action) {
		return ErrForbidden
	}
	if c.OrganizationID == "" {
		return ErrNoOrganization
	}
	return nil
}

type ctxKey struct{}

// With attaches ac to ctx.
func With(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// From returns the access context stored in ctx.
func From(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(ctxKey{}).(Context)
	return ac, ok
}
