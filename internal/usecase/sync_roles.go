package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
)

// KeyPermissionAlreadyGranted is the localization resource for the non-fatal
// notice emitted when a template grant already exists.
const KeyPermissionAlreadyGranted = "Access.Roles.PermissionAlreadyGranted"

// RoleTemplateSynchronizer bootstraps the default roles and their grants from
// declarative templates. It must run after the permission synchronizer:
// granting a template permission missing from the catalog is a deployment
// error and fails fast.
type RoleTemplateSynchronizer struct {
	templates   []domain.RoleTemplate
	roles       *RoleService
	permissions *PermissionService
	localizer   port.Localizer
	logger      *zap.Logger
}

// NewRoleTemplateSynchronizer constructs a synchronizer over the provided
// templates.
func NewRoleTemplateSynchronizer(templates []domain.RoleTemplate, roles *RoleService, permissions *PermissionService, localizer port.Localizer, logger *zap.Logger) *RoleTemplateSynchronizer {
	return &RoleTemplateSynchronizer{
		templates:   templates,
		roles:       roles,
		permissions: permissions,
		localizer:   localizer,
		logger:      logger,
	}
}

// Run ensures every template role exists and holds every permission its
// template names. Grants are idempotent upserts; a second run with unchanged
// templates changes nothing.
func (s *RoleTemplateSynchronizer) Run(ctx context.Context) error {
	for _, template := range s.templates {
		role, err := s.roles.GetBySystemName(ctx, template.RoleSystemName)
		if err != nil {
			if !errors.Is(err, ErrRoleNotFound) {
				return fmt.Errorf("lookup role %q: %w", template.RoleSystemName, err)
			}

			role, err = s.roles.Create(ctx, CreateRoleInput{
				SystemName:   template.RoleSystemName,
				Name:         template.RoleSystemName,
				IsActive:     true,
				IsSystemRole: true,
			})
			if err != nil {
				return fmt.Errorf("create role %q: %w", template.RoleSystemName, err)
			}

			s.logger.Info("created system role",
				zap.String("system_name", role.SystemName),
				zap.Int64("role_id", role.ID),
			)
		}

		for _, permissionName := range template.PermissionSystemNames {
			permission, err := s.permissions.GetBySystemName(ctx, permissionName)
			if err != nil {
				if errors.Is(err, ErrPermissionNotFound) {
					return fmt.Errorf("role template %q names unknown permission %q: %w",
						template.RoleSystemName, permissionName, ErrPermissionNotFound)
				}
				return fmt.Errorf("lookup permission %q: %w", permissionName, err)
			}

			granted, err := s.roles.GrantPermission(ctx, role.ID, permission.ID)
			if err != nil {
				return fmt.Errorf("grant %q to role %q: %w", permissionName, template.RoleSystemName, err)
			}
			if !granted {
				s.logger.Info(s.localizer.Get(KeyPermissionAlreadyGranted),
					zap.String("role", role.SystemName),
					zap.String("permission", permission.SystemName),
				)
			}
		}
	}

	s.logger.Info("role templates synchronized", zap.Int("templates", len(s.templates)))

	return nil
}
