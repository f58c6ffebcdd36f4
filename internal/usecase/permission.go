package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/repository"
)

var (
	// ErrPermissionExists indicates a permission with the provided system name already exists.
	ErrPermissionExists = errors.New("permission already exists")
	// ErrPermissionNotFound is returned when operating on an unknown permission.
	ErrPermissionNotFound = errors.New("permission not found")
)

// CreatePermissionInput captures the payload for creating a permission.
type CreatePermissionInput struct {
	SystemName  string
	Name        string
	Category    string
	Description string
	IsActive    bool
}

// UpdatePermissionInput captures the payload for updating a permission. Nil
// fields are left unchanged; the system name is immutable.
type UpdatePermissionInput struct {
	ID          int64
	Name        *string
	Category    *string
	Description *string
	IsActive    *bool
}

// PermissionService manages the permission catalog.
type PermissionService struct {
	permissions port.PermissionRepository
	audit       port.AuditLog
	principal   port.PrincipalResolver
	logger      *zap.Logger
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(permissions port.PermissionRepository, audit port.AuditLog, principal port.PrincipalResolver, logger *zap.Logger) *PermissionService {
	return &PermissionService{
		permissions: permissions,
		audit:       audit,
		principal:   principal,
		logger:      logger,
	}
}

// GetBySystemName retrieves a permission by its stable system name.
func (s *PermissionService) GetBySystemName(ctx context.Context, systemName string) (*domain.Permission, error) {
	permission, err := s.permissions.GetBySystemName(ctx, strings.TrimSpace(systemName))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("get permission by system name: %w", err)
	}
	return permission, nil
}

// GetByID retrieves a permission by id.
func (s *PermissionService) GetByID(ctx context.Context, id int64) (*domain.Permission, error) {
	permission, err := s.permissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return permission, nil
}

// List returns the catalog, optionally restricted to active permissions.
func (s *PermissionService) List(ctx context.Context, onlyActive bool) ([]domain.Permission, error) {
	permissions, err := s.permissions.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return permissions, nil
}

// Create provisions a new permission. The name defaults to the system name
// and the category to the segment before the first dot when left empty.
func (s *PermissionService) Create(ctx context.Context, input CreatePermissionInput) (*domain.Permission, error) {
	systemName := strings.TrimSpace(input.SystemName)
	if systemName == "" {
		return nil, fmt.Errorf("permission system name is required")
	}

	if existing, err := s.permissions.GetBySystemName(ctx, systemName); err == nil && existing != nil {
		return nil, ErrPermissionExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup permission by system name: %w", err)
	}

	permission := domain.Permission{
		SystemName:  systemName,
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		IsActive:    input.IsActive,
	}
	if permission.Name == "" {
		permission.Name = systemName
	}
	if permission.Category == "" {
		permission.Category = domain.CategoryOf(systemName)
	}

	id, err := s.permissions.Create(ctx, permission)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPermissionExists
		}
		return nil, fmt.Errorf("create permission: %w", err)
	}
	permission.ID = id

	s.logChange(ctx, permission.ID, "SystemName", "", fmt.Sprintf("Created %s", permission.SystemName))

	return &permission, nil
}

// Update modifies an existing permission, auditing the prior and new name.
func (s *PermissionService) Update(ctx context.Context, input UpdatePermissionInput) (*domain.Permission, error) {
	permission, err := s.permissions.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}

	priorName := permission.Name

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("permission name is required")
		}
		permission.Name = trimmed
	}
	if input.Category != nil {
		permission.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		permission.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		permission.IsActive = *input.IsActive
	}

	if err := s.permissions.Update(ctx, *permission); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("update permission: %w", err)
	}

	s.logChange(ctx, permission.ID, "Name", priorName, permission.Name)

	return permission, nil
}

// Delete removes a permission by id. Dependent role grants and user overrides
// are removed by the storage cascade.
func (s *PermissionService) Delete(ctx context.Context, id int64) error {
	permission, err := s.permissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("get permission: %w", err)
	}

	if err := s.permissions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("delete permission: %w", err)
	}

	s.logChange(ctx, id, "Name", permission.Name, "")

	return nil
}

func (s *PermissionService) logChange(ctx context.Context, entityID int64, field, oldValue, newValue string) {
	actor := s.principal.CurrentUserID(ctx)
	if err := s.audit.LogChange(ctx, "Permission", entityID, field, oldValue, newValue, actor); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("entity", "Permission"),
			zap.Int64("entity_id", entityID),
			zap.Error(err),
		)
	}
}
