package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/repository"
)

// OverrideRepository implements port.OverrideRepository over PostgreSQL.
type OverrideRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewOverrideRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewOverrideRepository(exec pgExecutor) *OverrideRepository {
	repo := &OverrideRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Get retrieves the override for a (user, permission) pair.
func (r *OverrideRepository) Get(ctx context.Context, userID, permissionID int64) (*domain.PermissionOverride, error) {
	stmt, args, err := r.builder.Select("user_id", "permission_id", "is_granted").
		From("access.user_permission_overrides").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"permission_id": permissionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select override sql: %w", err)
	}

	var override domain.PermissionOverride
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&override.UserID,
		&override.PermissionID,
		&override.IsGranted,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan override: %w", err)
	}

	return &override, nil
}

// Set inserts the override or updates the granted flag of an existing row.
func (r *OverrideRepository) Set(ctx context.Context, override domain.PermissionOverride) error {
	stmt, args, err := r.builder.Insert("access.user_permission_overrides").
		Columns("user_id", "permission_id", "is_granted").
		Values(override.UserID, override.PermissionID, override.IsGranted).
		Suffix("ON CONFLICT (user_id, permission_id) DO UPDATE SET is_granted = EXCLUDED.is_granted").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert override sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}

	return nil
}

// Remove deletes the override for a (user, permission) pair. It reports false
// when no row existed.
func (r *OverrideRepository) Remove(ctx context.Context, userID, permissionID int64) (bool, error) {
	stmt, args, err := r.builder.Delete("access.user_permission_overrides").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"permission_id": permissionID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete override sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("delete override: %w", err)
	}

	return res.RowsAffected() > 0, nil
}

// ListByUser returns every override of the user ordered by permission id.
func (r *OverrideRepository) ListByUser(ctx context.Context, userID int64) ([]domain.PermissionOverride, error) {
	stmt, args, err := r.builder.Select("user_id", "permission_id", "is_granted").
		From("access.user_permission_overrides").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("permission_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list overrides sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	overrides := make([]domain.PermissionOverride, 0)
	for rows.Next() {
		var override domain.PermissionOverride
		if err := rows.Scan(&override.UserID, &override.PermissionID, &override.IsGranted); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}

	return overrides, nil
}

var _ port.OverrideRepository = (*OverrideRepository)(nil)
