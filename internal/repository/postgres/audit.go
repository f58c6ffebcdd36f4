package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/instreg/registration-admin/internal/core/port"
)

// AuditEntryRepository persists field-level audit entries for catalog
// mutations.
type AuditEntryRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditEntryRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewAuditEntryRepository(exec pgExecutor) *AuditEntryRepository {
	repo := &AuditEntryRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// LogChange appends an audit entry. Entries are written after the mutation
// they describe and are not part of its transaction.
func (r *AuditEntryRepository) LogChange(ctx context.Context, entityName string, entityID int64, fieldName, oldValue, newValue string, actingUserID int64) error {
	stmt, args, err := r.builder.Insert("access.audit_entries").
		Columns("entity_name", "entity_id", "field_name", "old_value", "new_value", "acting_user_id", "created_at").
		Values(entityName, entityID, fieldName, oldValue, newValue, actingUserID, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit entry sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

var _ port.AuditLog = (*AuditEntryRepository)(nil)
