package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/repository"
)

var (
	// ErrRoleExists indicates a role with the provided system name already exists.
	ErrRoleExists = errors.New("role already exists")
	// ErrRoleNotFound is returned when operating on an unknown role.
	ErrRoleNotFound = errors.New("role not found")
	// ErrAlreadyAssigned indicates the user already holds the role.
	ErrAlreadyAssigned = errors.New("user already assigned to role")
	// ErrNotAssigned indicates the user does not hold the role.
	ErrNotAssigned = errors.New("user not assigned to role")
	// ErrNotGranted indicates the role does not hold the permission.
	ErrNotGranted = errors.New("permission not granted to role")
)

// CreateRoleInput captures the payload for creating a role.
type CreateRoleInput struct {
	SystemName   string
	Name         string
	Description  string
	IsActive     bool
	IsSystemRole bool
}

// UpdateRoleInput captures the payload for updating a role. Nil fields are
// left unchanged; the system name is immutable.
type UpdateRoleInput struct {
	ID          int64
	Name        *string
	Description *string
	IsActive    *bool
}

// RoleService manages the role catalog, user membership and permission grants.
type RoleService struct {
	roles       port.RoleRepository
	permissions port.PermissionRepository
	audit       port.AuditLog
	principal   port.PrincipalResolver
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles port.RoleRepository, permissions port.PermissionRepository, audit port.AuditLog, principal port.PrincipalResolver, events port.EventPublisher, logger *zap.Logger) *RoleService {
	return &RoleService{
		roles:       roles,
		permissions: permissions,
		audit:       audit,
		principal:   principal,
		events:      events,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetByID retrieves a role by id.
func (s *RoleService) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// GetBySystemName retrieves a role by its system name, active or not.
func (s *RoleService) GetBySystemName(ctx context.Context, systemName string) (*domain.Role, error) {
	role, err := s.roles.GetBySystemName(ctx, strings.TrimSpace(systemName))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role by system name: %w", err)
	}
	return role, nil
}

// List returns roles, optionally restricted to active ones.
func (s *RoleService) List(ctx context.Context, onlyActive bool) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// Create provisions a new role, stamps its timestamps and raises a
// role-created notification event.
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*domain.Role, error) {
	systemName := strings.TrimSpace(input.SystemName)
	if systemName == "" {
		return nil, fmt.Errorf("role system name is required")
	}

	if existing, err := s.roles.GetBySystemName(ctx, systemName); err == nil && existing != nil {
		return nil, ErrRoleExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup role by system name: %w", err)
	}

	now := s.now()
	role := domain.Role{
		SystemName:   systemName,
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		IsActive:     input.IsActive,
		IsSystemRole: input.IsSystemRole,
		CreatedOnUTC: now,
		UpdatedOnUTC: now,
	}
	if role.Name == "" {
		role.Name = systemName
	}

	id, err := s.roles.Create(ctx, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("create role: %w", err)
	}
	role.ID = id

	actor := s.principal.CurrentUserID(ctx)
	s.logChange(ctx, "Role", role.ID, "SystemName", "", fmt.Sprintf("Created %s", role.SystemName))

	event := domain.RoleCreatedEvent{
		EventID:   uuid.NewString(),
		RoleID:    role.ID,
		RoleName:  role.Name,
		CreatedBy: actor,
		CreatedAt: now,
	}
	if err := s.events.PublishRoleCreated(ctx, event); err != nil {
		s.logger.Warn("publish role created event failed",
			zap.Int64("role_id", role.ID),
			zap.Error(err),
		)
	}

	return &role, nil
}

// Update modifies an existing role and stamps its update timestamp.
func (s *RoleService) Update(ctx context.Context, input UpdateRoleInput) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	priorName := role.Name

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("role name is required")
		}
		role.Name = trimmed
	}
	if input.Description != nil {
		role.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}
	role.UpdatedOnUTC = s.now()

	if err := s.roles.Update(ctx, *role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.logChange(ctx, "Role", role.ID, "Name", priorName, role.Name)

	return role, nil
}

// Delete removes a role by id. Grants and user assignments are removed by the
// storage cascade. Protection of system roles is the caller's policy.
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("get role: %w", err)
	}

	if err := s.roles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("delete role: %w", err)
	}

	s.logChange(ctx, "Role", id, "Name", role.Name, "")

	return nil
}

// RolesByUser returns the active roles assigned to the user.
func (s *RoleService) RolesByUser(ctx context.Context, userID int64) ([]domain.Role, error) {
	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles by user: %w", err)
	}
	return roles, nil
}

// AddUserToRole assigns the role to the user.
func (s *RoleService) AddUserToRole(ctx context.Context, userID, roleID int64) error {
	if _, err := s.GetByID(ctx, roleID); err != nil {
		return err
	}

	inserted, err := s.roles.AssignToUser(ctx, userID, roleID)
	if err != nil {
		return fmt.Errorf("assign role to user: %w", err)
	}
	if !inserted {
		return ErrAlreadyAssigned
	}

	s.logChange(ctx, "UserRoleAssignment", roleID, "UserId", "", fmt.Sprintf("%d", userID))

	return nil
}

// RemoveUserFromRole removes the role from the user.
func (s *RoleService) RemoveUserFromRole(ctx context.Context, userID, roleID int64) error {
	removed, err := s.roles.RemoveFromUser(ctx, userID, roleID)
	if err != nil {
		return fmt.Errorf("remove role from user: %w", err)
	}
	if !removed {
		return ErrNotAssigned
	}

	s.logChange(ctx, "UserRoleAssignment", roleID, "UserId", fmt.Sprintf("%d", userID), "")

	return nil
}

// ClearRoles removes every role assignment of the user. Bulk removal is not
// audited per row.
func (s *RoleService) ClearRoles(ctx context.Context, userID int64) error {
	removed, err := s.roles.ClearAssignments(ctx, userID)
	if err != nil {
		return fmt.Errorf("clear role assignments: %w", err)
	}

	s.logger.Info("cleared role assignments",
		zap.Int64("user_id", userID),
		zap.Int("removed", removed),
	)

	return nil
}

// GrantPermission links the permission to the role. The grant is an
// idempotent upsert; the returned flag reports whether a new grant row was
// created. A fresh grant is audited and raises a permission-granted event.
func (s *RoleService) GrantPermission(ctx context.Context, roleID, permissionID int64) (bool, error) {
	role, err := s.GetByID(ctx, roleID)
	if err != nil {
		return false, err
	}

	permission, err := s.permissions.GetByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrPermissionNotFound
		}
		return false, fmt.Errorf("get permission: %w", err)
	}

	inserted, err := s.roles.Grant(ctx, roleID, permissionID)
	if err != nil {
		return false, fmt.Errorf("grant permission: %w", err)
	}
	if !inserted {
		return false, nil
	}

	actor := s.principal.CurrentUserID(ctx)
	s.logChange(ctx, "RoleGrant", role.ID, "PermissionSystemName", "", permission.SystemName)

	event := domain.PermissionGrantedEvent{
		EventID:              uuid.NewString(),
		RoleID:               role.ID,
		PermissionID:         permission.ID,
		PermissionSystemName: permission.SystemName,
		GrantedBy:            actor,
		GrantedAt:            s.now(),
	}
	if err := s.events.PublishPermissionGranted(ctx, event); err != nil {
		s.logger.Warn("publish permission granted event failed",
			zap.Int64("role_id", role.ID),
			zap.String("permission", permission.SystemName),
			zap.Error(err),
		)
	}

	return true, nil
}

// RevokePermission removes the permission from the role.
func (s *RoleService) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	if _, err := s.GetByID(ctx, roleID); err != nil {
		return err
	}

	permission, err := s.permissions.GetByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("get permission: %w", err)
	}

	removed, err := s.roles.Revoke(ctx, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	if !removed {
		return ErrNotGranted
	}

	s.logChange(ctx, "RoleGrant", roleID, "PermissionSystemName", permission.SystemName, "")

	return nil
}

// PermissionsForRole returns the permissions currently granted to the role.
func (s *RoleService) PermissionsForRole(ctx context.Context, roleID int64) ([]domain.Permission, error) {
	permissions, err := s.roles.PermissionsForRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	return permissions, nil
}

func (s *RoleService) logChange(ctx context.Context, entity string, entityID int64, field, oldValue, newValue string) {
	actor := s.principal.CurrentUserID(ctx)
	if err := s.audit.LogChange(ctx, entity, entityID, field, oldValue, newValue, actor); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("entity", entity),
			zap.Int64("entity_id", entityID),
			zap.Error(err),
		)
	}
}
