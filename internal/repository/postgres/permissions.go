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

// PermissionRepository implements port.PermissionRepository over PostgreSQL.
type PermissionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	repo := &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new permission row and returns the generated id.
func (r *PermissionRepository) Create(ctx context.Context, permission domain.Permission) (int64, error) {
	stmt, args, err := r.builder.Insert("access.permissions").
		Columns("system_name", "name", "category", "description", "is_active").
		Values(permission.SystemName, permission.Name, permission.Category, permission.Description, permission.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert permission sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicate
		}
		return 0, fmt.Errorf("insert permission: %w", err)
	}

	return id, nil
}

// GetByID retrieves a permission by its id.
func (r *PermissionRepository) GetByID(ctx context.Context, id int64) (*domain.Permission, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "by id")
}

// GetBySystemName retrieves a permission by its unique system name.
func (r *PermissionRepository) GetBySystemName(ctx context.Context, systemName string) (*domain.Permission, error) {
	return r.getOne(ctx, squirrel.Eq{"system_name": systemName}, "by system name")
}

func (r *PermissionRepository) getOne(ctx context.Context, where squirrel.Eq, label string) (*domain.Permission, error) {
	stmt, args, err := r.builder.Select("id", "system_name", "name", "category", "description", "is_active").
		From("access.permissions").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select permission %s sql: %w", label, err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var permission domain.Permission
	if err := row.Scan(
		&permission.ID,
		&permission.SystemName,
		&permission.Name,
		&permission.Category,
		&permission.Description,
		&permission.IsActive,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan permission %s: %w", label, err)
	}

	return &permission, nil
}

// List retrieves permissions sorted by system name, optionally restricted to
// active entries.
func (r *PermissionRepository) List(ctx context.Context, onlyActive bool) ([]domain.Permission, error) {
	query := r.builder.Select("id", "system_name", "name", "category", "description", "is_active").
		From("access.permissions").
		OrderBy("system_name ASC")
	if onlyActive {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	var permissions []domain.Permission
	for rows.Next() {
		var permission domain.Permission
		if err := rows.Scan(
			&permission.ID,
			&permission.SystemName,
			&permission.Name,
			&permission.Category,
			&permission.Description,
			&permission.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}

// Update modifies an existing permission. The system name is immutable.
func (r *PermissionRepository) Update(ctx context.Context, permission domain.Permission) error {
	stmt, args, err := r.builder.Update("access.permissions").
		Set("name", permission.Name).
		Set("category", permission.Category).
		Set("description", permission.Description).
		Set("is_active", permission.IsActive).
		Where(squirrel.Eq{"id": permission.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update permission sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update permission: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a permission by id. Dependent grants and overrides are
// removed by FK cascade.
func (r *PermissionRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("access.permissions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete permission sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.PermissionRepository = (*PermissionRepository)(nil)
