package principal

import (
	"context"

	"github.com/instreg/registration-admin/internal/core/port"
)

type userIDKey struct{}

// WithUserID stores the acting user id on the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// ContextResolver resolves the acting user from the context. Audit entries
// fall back to user id 0 when no principal is present.
type ContextResolver struct{}

// NewContextResolver constructs a ContextResolver.
func NewContextResolver() ContextResolver {
	return ContextResolver{}
}

// CurrentUserID returns the acting user id, or 0 when unresolved.
func (ContextResolver) CurrentUserID(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if id, ok := ctx.Value(userIDKey{}).(int64); ok {
		return id
	}
	return 0
}

var _ port.PrincipalResolver = ContextResolver{}
