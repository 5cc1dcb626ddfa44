package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Repository defines persistence operations for roles.
type Repository interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, id int64, role Role) (Role, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Role, error) {
	const query = `SELECT id, role_name, description, created_at, updated_at FROM roles ORDER BY role_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.RoleName, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Role, error) {
	const query = `SELECT id, role_name, description, created_at, updated_at FROM roles WHERE id = $1`
	var role Role
	err := r.pool.QueryRow(ctx, query, id).Scan(&role.ID, &role.RoleName, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

func (r *repository) Create(ctx context.Context, role Role) (Role, error) {
	const query = `INSERT INTO roles (role_name, description, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, role_name, description, created_at, updated_at`
	var created Role
	err := r.pool.QueryRow(ctx, query, role.RoleName, role.Description).Scan(
		&created.ID, &created.RoleName, &created.Description, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return Role{}, mapRoleError(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, role Role) (Role, error) {
	const query = `UPDATE roles SET role_name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, role_name, description, created_at, updated_at`
	var updated Role
	err := r.pool.QueryRow(ctx, query, role.RoleName, role.Description, id).Scan(
		&updated.ID, &updated.RoleName, &updated.Description, &updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, mapRoleError(err)
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return mapRoleError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// mapRoleError translates constraint violations into domain errors. The
// employees.role_id foreign key is RESTRICT, so deleting a referenced role
// surfaces SQLSTATE 23503.
func mapRoleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.ErrDuplicateIdentifier
		case "23503":
			return shared.ErrReferentialConflict
		}
	}
	return err
}
