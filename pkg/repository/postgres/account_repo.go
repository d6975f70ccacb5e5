package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nodalcv/server/pkg/auth"
)

const uniqueViolation = "23505"

// AccountRepository implements auth.Accounts on the users table.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, email, password_hash, created_at, last_login_at`

func (r *AccountRepository) Create(ctx context.Context, a auth.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.Email, a.PasswordHash, a.CreatedAt, a.LastLoginAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return auth.ErrEmailTaken
	}
	return err
}

func (r *AccountRepository) ByEmail(ctx context.Context, email string) (auth.Account, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE email = $1`, email))
}

func (r *AccountRepository) ByID(ctx context.Context, id uuid.UUID) (auth.Account, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id))
}

func (r *AccountRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.update(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *AccountRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
}

func (r *AccountRepository) update(ctx context.Context, sql string, id uuid.UUID, arg any) error {
	tag, err := r.pool.Exec(ctx, sql, id, arg)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) scan(row pgx.Row) (auth.Account, error) {
	var a auth.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.LastLoginAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Account{}, auth.ErrNotFound
		}
		return auth.Account{}, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}
