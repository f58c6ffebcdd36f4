package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/repository"
)

// Decision outcomes and reasons reported to the decision recorder.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"

	ReasonOverride           = "override"
	ReasonRoleGrant          = "role_grant"
	ReasonUnknownPermission  = "unknown_permission"
	ReasonInactivePermission = "inactive_permission"
	ReasonNoRoles            = "no_roles"
	ReasonNoGrant            = "no_grant"
)

// AuthorizationService computes authorization decisions from current
// persisted state. It is read-only: authorization attempts are not audited.
type AuthorizationService struct {
	permissions port.PermissionRepository
	roles       port.RoleRepository
	overrides   port.OverrideRepository
	decisions   port.DecisionRecorder
}

// NewAuthorizationService constructs an AuthorizationService.
func NewAuthorizationService(permissions port.PermissionRepository, roles port.RoleRepository, overrides port.OverrideRepository, decisions port.DecisionRecorder) *AuthorizationService {
	return &AuthorizationService{
		permissions: permissions,
		roles:       roles,
		overrides:   overrides,
		decisions:   decisions,
	}
}

// Authorize decides whether the user holds the named permission.
//
// Unknown and inactive permissions deny without error. An explicit per-user
// override, when present, is the final decision in either direction and
// short-circuits the role path. Otherwise the user is allowed iff any of the
// user's active roles is granted the permission. Storage errors surface to
// the caller alongside a deny.
func (s *AuthorizationService) Authorize(ctx context.Context, userID int64, permissionSystemName string) (bool, error) {
	name := strings.TrimSpace(permissionSystemName)
	if name == "" {
		return s.deny(ReasonUnknownPermission), nil
	}

	permission, err := s.permissions.GetBySystemName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.deny(ReasonUnknownPermission), nil
		}
		return false, fmt.Errorf("resolve permission: %w", err)
	}
	if !permission.IsActive {
		return s.deny(ReasonInactivePermission), nil
	}

	override, err := s.overrides.Get(ctx, userID, permission.ID)
	if err == nil {
		if override.IsGranted {
			return s.allow(ReasonOverride), nil
		}
		return s.deny(ReasonOverride), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("resolve override: %w", err)
	}

	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("resolve user roles: %w", err)
	}
	if len(roles) == 0 {
		return s.deny(ReasonNoRoles), nil
	}

	roleIDs := make([]int64, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	granted, err := s.roles.GrantExists(ctx, permission.ID, roleIDs)
	if err != nil {
		return false, fmt.Errorf("resolve role grants: %w", err)
	}
	if !granted {
		return s.deny(ReasonNoGrant), nil
	}

	return s.allow(ReasonRoleGrant), nil
}

func (s *AuthorizationService) allow(reason string) bool {
	if s.decisions != nil {
		s.decisions.Record(OutcomeAllow, reason)
	}
	return true
}

func (s *AuthorizationService) deny(reason string) bool {
	if s.decisions != nil {
		s.decisions.Record(OutcomeDeny, reason)
	}
	return false
}
