package domain

import "time"

// RoleCreatedEvent represents the payload for access.role.created messages.
type RoleCreatedEvent struct {
	EventID   string
	RoleID    int64
	RoleName  string
	CreatedBy int64
	CreatedAt time.Time
	Metadata  map[string]any
}

// PermissionGrantedEvent represents the payload for
// access.role.permission.granted messages.
type PermissionGrantedEvent struct {
	EventID              string
	RoleID               int64
	PermissionID         int64
	PermissionSystemName string
	GrantedBy            int64
	GrantedAt            time.Time
	Metadata             map[string]any
}
