package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/repository"
)

// ErrOverrideNotFound is returned when removing an override that does not exist.
var ErrOverrideNotFound = errors.New("permission override not found")

// OverrideService administers per-user permission overrides. Overrides are
// independent of role membership and always win over role-derived grants.
type OverrideService struct {
	overrides   port.OverrideRepository
	permissions port.PermissionRepository
	audit       port.AuditLog
	principal   port.PrincipalResolver
	logger      *zap.Logger
}

// NewOverrideService constructs an OverrideService.
func NewOverrideService(overrides port.OverrideRepository, permissions port.PermissionRepository, audit port.AuditLog, principal port.PrincipalResolver, logger *zap.Logger) *OverrideService {
	return &OverrideService{
		overrides:   overrides,
		permissions: permissions,
		audit:       audit,
		principal:   principal,
		logger:      logger,
	}
}

// Set creates or updates the override for the (user, permission) pair.
func (s *OverrideService) Set(ctx context.Context, userID, permissionID int64, granted bool) error {
	permission, err := s.permissions.GetByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("get permission: %w", err)
	}

	prior := ""
	if existing, err := s.overrides.Get(ctx, userID, permissionID); err == nil {
		prior = strconv.FormatBool(existing.IsGranted)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("get override: %w", err)
	}

	override := domain.PermissionOverride{
		UserID:       userID,
		PermissionID: permissionID,
		IsGranted:    granted,
	}
	if err := s.overrides.Set(ctx, override); err != nil {
		return fmt.Errorf("set override: %w", err)
	}

	s.logChange(ctx, permission.ID, "IsGranted", prior, strconv.FormatBool(granted))

	return nil
}

// Remove deletes the override for the (user, permission) pair.
func (s *OverrideService) Remove(ctx context.Context, userID, permissionID int64) error {
	removed, err := s.overrides.Remove(ctx, userID, permissionID)
	if err != nil {
		return fmt.Errorf("remove override: %w", err)
	}
	if !removed {
		return ErrOverrideNotFound
	}

	s.logChange(ctx, permissionID, "IsGranted", "", "")

	return nil
}

// ListByUser returns every override of the user.
func (s *OverrideService) ListByUser(ctx context.Context, userID int64) ([]domain.PermissionOverride, error) {
	overrides, err := s.overrides.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return overrides, nil
}

func (s *OverrideService) logChange(ctx context.Context, permissionID int64, field, oldValue, newValue string) {
	actor := s.principal.CurrentUserID(ctx)
	if err := s.audit.LogChange(ctx, "UserPermissionOverride", permissionID, field, oldValue, newValue, actor); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("entity", "UserPermissionOverride"),
			zap.Int64("permission_id", permissionID),
			zap.Error(err),
		)
	}
}
