package port

import "context"

// PrincipalResolver resolves the acting user for audit attribution. It
// returns 0 when no principal can be resolved from the context.
type PrincipalResolver interface {
	CurrentUserID(ctx context.Context) int64
}
