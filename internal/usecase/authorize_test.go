package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
)

func TestAuthorizeUnknownPermissionDenies(t *testing.T) {
	permRepo := newPermissionRepoMock()
	roleRepo := newRoleRepoMock()
	overrideRepo := newOverrideRepoMock()
	recorder := &recorderMock{}
	service := NewAuthorizationService(permRepo, roleRepo, overrideRepo, recorder)

	allowed, err := service.Authorize(context.Background(), 7, "Registration.Vaporize")
	if err != nil {
		t.Fatalf("expected no error for unknown permission, got %v", err)
	}
	if allowed {
		t.Fatal("expected deny for unknown permission")
	}

	last, ok := recorder.last()
	if !ok || last.outcome != OutcomeDeny || last.reason != ReasonUnknownPermission {
		t.Fatalf("expected deny/unknown_permission decision, got %+v", last)
	}
}

func TestAuthorizeInactivePermissionDenies(t *testing.T) {
	permRepo := newPermissionRepoMock()
	permission := permRepo.seed(domain.Permission{SystemName: domain.PermissionRegistrationApprove, IsActive: false})
	roleRepo := newRoleRepoMock()
	role := roleRepo.seed(domain.Role{SystemName: domain.RoleRegulator, IsActive: true})
	if _, err := roleRepo.AssignToUser(context.Background(), 7, role.ID); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if _, err := roleRepo.Grant(context.Background(), role.ID, permission.ID); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	recorder := &recorderMock{}
	service := NewAuthorizationService(permRepo, roleRepo, newOverrideRepoMock(), recorder)

	allowed, err := service.Authorize(context.Background(), 7, domain.PermissionRegistrationApprove)
	if err != nil {
		t.Fatalf("expected no error for inactive permission, got %v", err)
	}
	if allowed {
		t.Fatal("expected deny for inactive permission despite role grant")
	}

	last, _ := recorder.last()
	if last.reason != ReasonInactivePermission {
		t.Fatalf("expected inactive_permission reason, got %q", last.reason)
	}
}

func TestAuthorizeNoRolesDenies(t *testing.T) {
	permRepo := newPermissionRepoMock()
	permRepo.seed(domain.Permission{SystemName: domain.PermissionRegistrationRead, IsActive: true})
	recorder := &recorderMock{}
	service := NewAuthorizationService(permRepo, newRoleRepoMock(), newOverrideRepoMock(), recorder)

	allowed, err := service.Authorize(context.Background(), 7, domain.PermissionRegistrationRead)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if allowed {
		t.Fatal("expected deny for user with no roles")
	}

	last, _ := recorder.last()
	if last.reason != ReasonNoRoles {
		t.Fatalf("expected no_roles reason, got %q", last.reason)
	}
}

func TestAuthorizeRoleGrantAllows(t *testing.T) {
	permRepo := newPermissionRepoMock()
	permission := permRepo.seed(domain.Permission{SystemName: domain.PermissionRegistrationApprove, IsActive: true})
	roleRepo := newRoleRepoMock()
	role := roleRepo.seed(domain.Role{SystemName: domain.RoleRegulator, IsActive: true})
	if _, err := roleRepo.AssignToUser(context.Background(), 7, role.ID); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if _, err := roleRepo.Grant(context.Background(), role.ID, permission.ID); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	recorder := &recorderMock{}
	service := NewAuthorizationService(permRepo, roleRepo, newOverrideRepoMock(), recorder)

	allowed, err := service.Authorize(context.Background(), 7, domain.PermissionRegistrationApprove)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !allowed {
		t.Fatal("expected allow via role grant")
	}

	last, _ := recorder.last()
	if last.outcome != OutcomeAllow || last.reason != ReasonRoleGrant {
		t.Fatalf("expected allow/role_grant decision, got %+v", last)
	}
}

func TestAuthorizeInactiveRoleDoesNotCount(t *testing.T) {
	permRepo := newPermissionRepoMock()
	permission := permRepo.seed(domain.Permission{SystemName: domain.PermissionRegistrationApprove, IsActive: true})
	roleRepo := newRoleRepoMock()
	role := roleRepo.seed(domain.Role{SystemName: domain.RoleRegulator, IsActive: false})
	if _, err := roleRepo.AssignToUser(context.Background(), 7, role.ID); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if _, err := roleRepo.Grant(context.Background(), role.ID, permission.ID); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	recorder := &recorderMock{}
	service := NewAuthorizationService(permRepo, roleRepo, newOverrideRepoMock(), recorder)

	allowed, err := service.Authorize(context.Background(), 7, domain.PermissionRegistrationApprove)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if allowed {
		t.Fatal("expected deny when the only granting role is inactive")
	}

	last, _ := recorder.last()
	if last.reason != ReasonNoRoles {
		t.Fatalf("expected no_roles reason, got %q", last.reason)
	}
}

func TestAuthorizeDenyOverrideBeatsRoleGrant(t *testing.T) {
	permRepo := newPermissionRepoMock()
	permission := permRepo.seed(domain.Permission{SystemName: domain.PermissionRegistrationApprove, IsActive: true})
	roleRepo := newRoleRepoMock()
	role := roleRepo.seed(domain.Role{SystemName: domain.RoleRegulator, IsActive: true})
	if _, err := roleRepo.AssignToUser(context.Background(), 7, role.ID); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if _, err := roleRepo.Grant(context.Background(), role.ID, permission.ID); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	overrideRepo := newOverrideRepoMock()
	overrideRepo.rows[overrideKey{7, permission.ID}] = false
	recorder := &recorderMock{}
	service := NewAuthorizationService(permRepo, roleRepo, overrideRepo, recorder)

	allowed, err := service.Authorize(context.Background(), 7, domain.PermissionRegistrationApprove)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if allowed {
		t.Fatal("expected deny override to beat role grant")
	}

	last, _ := recorder.last()
	if last.outcome != OutcomeDeny || last.reason != ReasonOverride {
		t.Fatalf("expected deny/override decision, got %+v", last)
	}
}

func TestAuthorizeAllowOverrideWithoutRoles(t *testing.T) {
	permRepo := newPermissionRepoMock()
	permission := permRepo.seed(domain.Permission{SystemName: domain.PermissionRegistrationApprove, IsActive: true})
	overrideRepo := newOverrideRepoMock()
	overrideRepo.rows[overrideKey{7, permission.ID}] = true
	recorder := &recorderMock{}
	service := NewAuthorizationService(permRepo, newRoleRepoMock(), overrideRepo, recorder)

	allowed, err := service.Authorize(context.Background(), 7, domain.PermissionRegistrationApprove)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !allowed {
		t.Fatal("expected allow override to grant access without any role")
	}

	last, _ := recorder.last()
	if last.outcome != OutcomeAllow || last.reason != ReasonOverride {
		t.Fatalf("expected allow/override decision, got %+v", last)
	}
}

func TestAuthorizeStorageErrorSurfaces(t *testing.T) {
	permRepo := newPermissionRepoMock()
	storageErr := errors.New("connection reset")
	permRepo.getErr = storageErr
	service := NewAuthorizationService(permRepo, newRoleRepoMock(), newOverrideRepoMock(), &recorderMock{})

	allowed, err := service.Authorize(context.Background(), 7, domain.PermissionRegistrationApprove)
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error to surface, got %v", err)
	}
	if allowed {
		t.Fatal("expected deny alongside storage error")
	}
}

// Exercises the full lifecycle: role grant allows, revoking denies, and a
// subsequent allow override restores access.
func TestAuthorizeDecisionFollowsGrantLifecycle(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	permRepo := newPermissionRepoMock()
	roleRepo := newRoleRepoMock()
	overrideRepo := newOverrideRepoMock()
	audit := &auditLogMock{}
	publisher := &publisherMock{}

	permissionService := NewPermissionService(permRepo, audit, staticPrincipal(1), logger)
	roleService := NewRoleService(roleRepo, permRepo, audit, staticPrincipal(1), publisher, logger)
	overrideService := NewOverrideService(overrideRepo, permRepo, audit, staticPrincipal(1), logger)
	authorizer := NewAuthorizationService(permRepo, roleRepo, overrideRepo, nil)

	permission, err := permissionService.Create(ctx, CreatePermissionInput{
		SystemName: domain.PermissionRegistrationApprove,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create permission: %v", err)
	}
	role, err := roleService.Create(ctx, CreateRoleInput{SystemName: domain.RoleRegulator, IsActive: true})
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	if err := roleService.AddUserToRole(ctx, 7, role.ID); err != nil {
		t.Fatalf("assign role: %v", err)
	}
	if _, err := roleService.GrantPermission(ctx, role.ID, permission.ID); err != nil {
		t.Fatalf("grant permission: %v", err)
	}

	if allowed, err := authorizer.Authorize(ctx, 7, domain.PermissionRegistrationApprove); err != nil || !allowed {
		t.Fatalf("expected allow after grant, got allowed=%v err=%v", allowed, err)
	}

	if err := roleService.RevokePermission(ctx, role.ID, permission.ID); err != nil {
		t.Fatalf("revoke permission: %v", err)
	}
	if allowed, err := authorizer.Authorize(ctx, 7, domain.PermissionRegistrationApprove); err != nil || allowed {
		t.Fatalf("expected deny after revoke, got allowed=%v err=%v", allowed, err)
	}

	if err := overrideService.Set(ctx, 7, permission.ID, true); err != nil {
		t.Fatalf("set override: %v", err)
	}
	if allowed, err := authorizer.Authorize(ctx, 7, domain.PermissionRegistrationApprove); err != nil || !allowed {
		t.Fatalf("expected allow via override, got allowed=%v err=%v", allowed, err)
	}

	if err := overrideService.Remove(ctx, 7, permission.ID); err != nil {
		t.Fatalf("remove override: %v", err)
	}
	if allowed, err := authorizer.Authorize(ctx, 7, domain.PermissionRegistrationApprove); err != nil || allowed {
		t.Fatalf("expected deny after override removal, got allowed=%v err=%v", allowed, err)
	}
}
