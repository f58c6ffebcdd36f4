package port

import "context"

// AuditLog records field-level change entries for catalog mutations. Entries
// are written after the underlying mutation and are not transactionally
// coupled to it.
type AuditLog interface {
	LogChange(ctx context.Context, entityName string, entityID int64, fieldName, oldValue, newValue string, actingUserID int64) error
}
