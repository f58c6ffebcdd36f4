package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/repository"
)

// RoleRepository implements role persistence including user membership and
// permission grants.
type RoleRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	repo := &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository configured to execute within the provided transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new role and returns the generated id.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) (int64, error) {
	stmt, args, err := r.builder.Insert("access.roles").
		Columns("system_name", "name", "description", "is_active", "is_system_role", "created_on_utc", "updated_on_utc").
		Values(role.SystemName, role.Name, role.Description, role.IsActive, role.IsSystemRole, role.CreatedOnUTC, role.UpdatedOnUTC).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert role sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicate
		}
		return 0, fmt.Errorf("insert role: %w", err)
	}

	return id, nil
}

const roleColumns = "id, system_name, name, description, is_active, is_system_role, created_on_utc, updated_on_utc"

func scanRole(row pgx.Row) (*domain.Role, error) {
	var role domain.Role
	if err := row.Scan(
		&role.ID,
		&role.SystemName,
		&role.Name,
		&role.Description,
		&role.IsActive,
		&role.IsSystemRole,
		&role.CreatedOnUTC,
		&role.UpdatedOnUTC,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByID retrieves a role by its id.
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, "by id")
}

// GetBySystemName retrieves a role by its unique system name, active or not.
func (r *RoleRepository) GetBySystemName(ctx context.Context, systemName string) (*domain.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"system_name": systemName}, "by system name")
}

func (r *RoleRepository) getOne(ctx context.Context, where squirrel.Eq, label string) (*domain.Role, error) {
	stmt, args, err := r.builder.Select(roleColumns).
		From("access.roles").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role %s sql: %w", label, err)
	}

	role, err := scanRole(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role %s: %w", label, err)
	}

	return role, nil
}

// List retrieves roles sorted by system name, optionally restricted to active
// entries.
func (r *RoleRepository) List(ctx context.Context, onlyActive bool) ([]domain.Role, error) {
	query := r.builder.Select(roleColumns).
		From("access.roles").
		OrderBy("system_name ASC")
	if onlyActive {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, *role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}

// Update modifies an existing role. The system name is immutable.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Update("access.roles").
		Set("name", role.Name).
		Set("description", role.Description).
		Set("is_active", role.IsActive).
		Set("is_system_role", role.IsSystemRole).
		Set("updated_on_utc", role.UpdatedOnUTC).
		Where(squirrel.Eq{"id": role.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a role by id. Grants and user assignments are removed by FK
// cascade.
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("access.roles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByUser returns the active roles assigned to the user.
func (r *RoleRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Role, error) {
	stmt, args, err := r.builder.Select(
		"r.id", "r.system_name", "r.name", "r.description",
		"r.is_active", "r.is_system_role", "r.created_on_utc", "r.updated_on_utc",
	).
		From("access.roles r").
		Join("access.user_role_assignments ura ON ura.role_id = r.id").
		Where(squirrel.Eq{"ura.user_id": userID}).
		Where(squirrel.Eq{"r.is_active": true}).
		OrderBy("r.system_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build roles by user sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles by user: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role by user: %w", err)
		}
		roles = append(roles, *role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles by user: %w", err)
	}

	return roles, nil
}

// AssignToUser inserts a user-role assignment. It reports false when the pair
// already existed.
func (r *RoleRepository) AssignToUser(ctx context.Context, userID, roleID int64) (bool, error) {
	stmt, args, err := r.builder.Insert("access.user_role_assignments").
		Columns("user_id", "role_id", "assigned_at").
		Values(userID, roleID, time.Now().UTC()).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build assign role to user sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("assign role to user: %w", err)
	}

	return res.RowsAffected() > 0, nil
}

// RemoveFromUser deletes a user-role assignment. It reports false when no row
// existed for the pair.
func (r *RoleRepository) RemoveFromUser(ctx context.Context, userID, roleID int64) (bool, error) {
	stmt, args, err := r.builder.Delete("access.user_role_assignments").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build remove role from user sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("remove role from user: %w", err)
	}

	return res.RowsAffected() > 0, nil
}

// ClearAssignments removes every role assignment of the user and returns the
// number of rows deleted.
func (r *RoleRepository) ClearAssignments(ctx context.Context, userID int64) (int, error) {
	stmt, args, err := r.builder.Delete("access.user_role_assignments").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build clear role assignments sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("clear role assignments: %w", err)
	}

	return int(res.RowsAffected()), nil
}

// Grant links the permission to the role. It reports false when the grant
// already existed.
func (r *RoleRepository) Grant(ctx context.Context, roleID, permissionID int64) (bool, error) {
	stmt, args, err := r.builder.Insert("access.role_grants").
		Columns("role_id", "permission_id").
		Values(roleID, permissionID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build grant permission sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("grant permission: %w", err)
	}

	return res.RowsAffected() > 0, nil
}

// Revoke removes the permission from the role. It reports false when no grant
// existed for the pair.
func (r *RoleRepository) Revoke(ctx context.Context, roleID, permissionID int64) (bool, error) {
	stmt, args, err := r.builder.Delete("access.role_grants").
		Where(squirrel.Eq{"role_id": roleID}).
		Where(squirrel.Eq{"permission_id": permissionID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build revoke permission sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("revoke permission: %w", err)
	}

	return res.RowsAffected() > 0, nil
}

// GrantExists reports whether any of the given roles is granted the permission.
func (r *RoleRepository) GrantExists(ctx context.Context, permissionID int64, roleIDs []int64) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}

	stmt, args, err := r.builder.Select("1").
		From("access.role_grants").
		Where(squirrel.Eq{"permission_id": permissionID}).
		Where(squirrel.Eq{"role_id": roleIDs}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build grant exists sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan grant exists: %w", err)
	}

	return true, nil
}

// PermissionsForRole returns the permissions currently granted to the role.
func (r *RoleRepository) PermissionsForRole(ctx context.Context, roleID int64) ([]domain.Permission, error) {
	stmt, args, err := r.builder.Select(
		"p.id", "p.system_name", "p.name", "p.category", "p.description", "p.is_active",
	).
		From("access.permissions p").
		Join("access.role_grants rg ON rg.permission_id = p.id").
		Where(squirrel.Eq{"rg.role_id": roleID}).
		OrderBy("p.system_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build role permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query role permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]domain.Permission, 0)
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
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		permissions = append(permissions, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}

	return permissions, nil
}

var _ port.RoleRepository = (*RoleRepository)(nil)
