package domain

import (
	"fmt"
	"strings"
	"time"
)

// Permission is an atomic named capability identified by a stable system name,
// e.g. "Registration.Approve".
type Permission struct {
	ID          int64
	SystemName  string
	Name        string
	Category    string
	Description string
	IsActive    bool
}

// Role is a named bundle of permissions assignable to users.
type Role struct {
	ID           int64
	SystemName   string
	Name         string
	Description  string
	IsActive     bool
	IsSystemRole bool
	CreatedOnUTC time.Time
	UpdatedOnUTC time.Time
}

// RoleGrant links a role with a permission. At most one row per pair.
type RoleGrant struct {
	RoleID       int64
	PermissionID int64
}

// UserRoleAssignment assigns a role to a user. At most one row per pair.
type UserRoleAssignment struct {
	UserID     int64
	RoleID     int64
	AssignedAt time.Time
}

// PermissionOverride is a per-user explicit allow or deny on a single
// permission. An override always wins over any role-derived decision,
// in either direction.
type PermissionOverride struct {
	UserID       int64
	PermissionID int64
	IsGranted    bool
}

// CRUDAction enumerates the entity actions the access facade understands.
type CRUDAction string

const (
	ActionCreate CRUDAction = "Create"
	ActionRead   CRUDAction = "Read"
	ActionUpdate CRUDAction = "Update"
	ActionDelete CRUDAction = "Delete"
)

// Valid reports whether the action is one of the four known CRUD actions.
func (a CRUDAction) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// PermissionName builds the canonical "<entity>.<action>" permission system name.
func PermissionName(entityName string, action CRUDAction) string {
	return fmt.Sprintf("%s.%s", entityName, action)
}

// CategoryOf derives the display category from a permission system name: the
// segment before the first dot, or the whole name when there is none.
func CategoryOf(systemName string) string {
	if idx := strings.Index(systemName, "."); idx > 0 {
		return systemName[:idx]
	}
	return systemName
}
