package port

import (
	"context"

	"github.com/instreg/registration-admin/internal/core/domain"
)

// OverrideRepository stores per-user permission overrides. Zero or one row
// exists per (user, permission) pair.
type OverrideRepository interface {
	Get(ctx context.Context, userID, permissionID int64) (*domain.PermissionOverride, error)
	// Set inserts the override or updates the granted flag of an existing row.
	Set(ctx context.Context, override domain.PermissionOverride) error
	Remove(ctx context.Context, userID, permissionID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.PermissionOverride, error)
}
