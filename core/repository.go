package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// UserRecord represents a staff credential stored in persistence layer.
type UserRecord struct {
	ID             int64
	Login          string
	PasswordDigest string
	CreatedAt      time.Time
}

// UserRepository defines persistence operations for staff credentials.
type UserRepository interface {
	FindByLogin(ctx context.Context, login string) (*UserRecord, error)
	FindByCredentials(ctx context.Context, login, digest string) (*UserRecord, error)
	Upsert(ctx context.Context, login, digest string) (int64, error)
	Count(ctx context.Context) (int, error)
}

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func (r *PgUserRepository) FindByLogin(ctx context.Context, login string) (*UserRecord, error) {
	const q = `SELECT id, login, password_digest, created_at FROM users WHERE login=$1`
	return r.findOne(ctx, q, login)
}

func (r *PgUserRepository) FindByCredentials(ctx context.Context, login, digest string) (*UserRecord, error) {
	const q = `SELECT id, login, password_digest, created_at FROM users WHERE login=$1 AND password_digest=$2`
	return r.findOne(ctx, q, login, digest)
}

func (r *PgUserRepository) findOne(ctx context.Context, q string, args ...any) (*UserRecord, error) {
	var u UserRecord
	if err := r.db.QueryRow(ctx, q, args...).Scan(&u.ID, &u.Login, &u.PasswordDigest, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "query user")
	}
	return &u, nil
}

// Upsert creates the user or replaces the digest of an existing login.
func (r *PgUserRepository) Upsert(ctx context.Context, login, digest string) (int64, error) {
	const q = `
INSERT INTO users (login, password_digest) VALUES ($1,$2)
ON CONFLICT (login) DO UPDATE SET password_digest = EXCLUDED.password_digest
RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, q, login, digest).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "upsert user")
	}
	return id, nil
}

func (r *PgUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return n, nil
}
