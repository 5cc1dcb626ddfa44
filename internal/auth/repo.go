package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-hrm/atlas-hrm/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	CreateSession(ctx context.Context, token string, principalID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a principal by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	const query = `SELECT id, email, password_hash, role, employee_id, is_active, created_at, updated_at
		FROM principals WHERE email = $1`
	var p Principal
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.Role, &p.EmployeeID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateSession persists session metadata in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, token string, principalID int64, expiresAt time.Time, ip, ua string) error {
	const query = `INSERT INTO sessions (token, principal_id, created_at, expires_at, ip, ua)
		VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))`
	_, err := r.pool.Exec(ctx, query, token, principalID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session audit record.
func (r *PGRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpiredSessions purges audit rows whose expiry has passed.
func (r *PGRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
