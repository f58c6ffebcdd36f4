package usecase

import (
	"context"

	"github.com/instreg/registration-admin/internal/core/domain"
)

// Authorizer is the decision function the access facade delegates to.
type Authorizer interface {
	Authorize(ctx context.Context, userID int64, permissionSystemName string) (bool, error)
}

// AccessControl translates entity/action pairs and raw permission names into
// authorization checks.
type AccessControl struct {
	authorizer Authorizer
}

// NewAccessControl constructs an AccessControl facade.
func NewAccessControl(authorizer Authorizer) *AccessControl {
	return &AccessControl{authorizer: authorizer}
}

// Can reports whether the user may perform the CRUD action on the named
// entity. An unrecognized action denies without consulting the authorizer.
func (a *AccessControl) Can(ctx context.Context, userID int64, entityName string, action domain.CRUDAction) (bool, error) {
	if !action.Valid() {
		return false, nil
	}
	return a.authorizer.Authorize(ctx, userID, domain.PermissionName(entityName, action))
}

// CanDo reports whether the user holds the named permission.
func (a *AccessControl) CanDo(ctx context.Context, userID int64, permissionSystemName string) (bool, error) {
	return a.authorizer.Authorize(ctx, userID, permissionSystemName)
}
