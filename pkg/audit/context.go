package audit

import (
	"context"

	"github.com/google/uuid"
)

// Context identifies the principal behind a hierarchy mutation and the
// reason for it. It is passed through the core untouched and attached to
// the persisted record by the store.
type Context struct {
	// Modifier is the distinguished name or login of the acting principal.
	Modifier string `json:"modifier"`

	// ModCode is a short operation code describing the change, e.g.
	// "role.addInheritance".
	ModCode string `json:"mod_code"`

	// ModID uniquely identifies this modification across the system.
	ModID string `json:"mod_id"`
}

// New creates an audit Context with a freshly generated modification ID.
func New(modifier, modCode string) *Context {
	return &Context{
		Modifier: modifier,
		ModCode:  modCode,
		ModID:    uuid.NewString(),
	}
}

// contextKey is the type for context keys
type contextKey string

// auditContextKey is the context key for the audit Context
const auditContextKey contextKey = "audit_context"

// WithContext attaches an audit Context to a context.Context.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, auditContextKey, ac)
}

// FromContext retrieves the audit Context, or nil if none is attached.
func FromContext(ctx context.Context) *Context {
	if ac, ok := ctx.Value(auditContextKey).(*Context); ok {
		return ac
	}
	return nil
}
