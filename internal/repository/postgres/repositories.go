package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Permissions *PermissionRepository
	Roles       *RoleRepository
	Overrides   *OverrideRepository
	Audit       *AuditEntryRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Permissions: NewPermissionRepository(pool),
		Roles:       NewRoleRepository(pool),
		Overrides:   NewOverrideRepository(pool),
		Audit:       NewAuditEntryRepository(pool),
	}
}
