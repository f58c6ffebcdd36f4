package port

import (
	"context"

	"github.com/instreg/registration-admin/internal/core/domain"
)

// RoleRepository handles role CRUD, user membership and permission grants.
//
// AssignToUser, RemoveFromUser, Grant and Revoke report whether a row was
// actually inserted or deleted so callers can surface already-assigned and
// not-assigned conditions without a separate existence check.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
	GetBySystemName(ctx context.Context, systemName string) (*domain.Role, error)
	List(ctx context.Context, onlyActive bool) ([]domain.Role, error)
	Update(ctx context.Context, role domain.Role) error
	Delete(ctx context.Context, id int64) error

	// ListByUser returns the active roles assigned to the user.
	ListByUser(ctx context.Context, userID int64) ([]domain.Role, error)
	AssignToUser(ctx context.Context, userID, roleID int64) (bool, error)
	RemoveFromUser(ctx context.Context, userID, roleID int64) (bool, error)
	ClearAssignments(ctx context.Context, userID int64) (int, error)

	Grant(ctx context.Context, roleID, permissionID int64) (bool, error)
	Revoke(ctx context.Context, roleID, permissionID int64) (bool, error)
	// GrantExists reports whether any of the given roles is granted the permission.
	GrantExists(ctx context.Context, permissionID int64, roleIDs []int64) (bool, error)
	PermissionsForRole(ctx context.Context, roleID int64) ([]domain.Permission, error)
}
