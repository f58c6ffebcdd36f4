package port

import (
	"context"

	"github.com/instreg/registration-admin/internal/core/domain"
)

// PermissionRepository manages permission storage.
type PermissionRepository interface {
	Create(ctx context.Context, permission domain.Permission) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Permission, error)
	GetBySystemName(ctx context.Context, systemName string) (*domain.Permission, error)
	List(ctx context.Context, onlyActive bool) ([]domain.Permission, error)
	Update(ctx context.Context, permission domain.Permission) error
	Delete(ctx context.Context, id int64) error
}
