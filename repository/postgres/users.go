package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/photoshare/identity/domain"
	"github.com/photoshare/identity/repository"
)

// Store implements repository.UserStore on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ repository.UserStore = (*Store)(nil)

const userColumns = `id, username, email, password_hash, role, active, confirmed, avatar, renewal_credential, created_at`

// CreateUser inserts a user. Duplicate email or username maps to ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, username, email, password_hash, role, active, confirmed, avatar, renewal_credential, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Active,
		user.Confirmed,
		user.Avatar,
		user.RenewalCredential,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return infra("insert user", err)
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves a user by identifier.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.pool.QueryRow(ctx, query, id))
}

// CountUsers returns the number of registered accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM users`
	var count int
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, infra("count users", err)
	}
	return count, nil
}

// SetRole updates the role of the user with the given email.
func (s *Store) SetRole(ctx context.Context, email string, role domain.Role) error {
	const query = `UPDATE users SET role = $2 WHERE email = $1`
	return s.updateOne(ctx, "set role", query, email, string(role))
}

// SetActive flips the active flag for the user with the given email.
func (s *Store) SetActive(ctx context.Context, email string, active bool) error {
	const query = `UPDATE users SET active = $2 WHERE email = $1`
	return s.updateOne(ctx, "set active", query, email, active)
}

// SetAvatar replaces the avatar URL for the user with the given email.
func (s *Store) SetAvatar(ctx context.Context, email string, url string) error {
	const query = `UPDATE users SET avatar = $2 WHERE email = $1`
	return s.updateOne(ctx, "set avatar", query, email, url)
}

// MarkConfirmed records a completed email verification.
func (s *Store) MarkConfirmed(ctx context.Context, email string) error {
	const query = `UPDATE users SET confirmed = TRUE WHERE email = $1`
	return s.updateOne(ctx, "mark confirmed", query, email)
}

// SetRenewalCredential stores the single active renewal credential,
// unconditionally replacing any prior value.
func (s *Store) SetRenewalCredential(ctx context.Context, email string, credential string) error {
	const query = `UPDATE users SET renewal_credential = $2 WHERE email = $1`
	return s.updateOne(ctx, "set renewal credential", query, email, credential)
}

// ClearRenewalCredential removes the stored renewal credential, invalidating
// all outstanding sessions at their next renewal.
func (s *Store) ClearRenewalCredential(ctx context.Context, email string) error {
	const query = `UPDATE users SET renewal_credential = '' WHERE email = $1`
	return s.updateOne(ctx, "clear renewal credential", query, email)
}

// RotateRenewalCredential swaps the stored credential only when it still holds
// the presented value. The WHERE clause is the compare-and-swap that keeps two
// concurrent renewals from both succeeding.
func (s *Store) RotateRenewalCredential(ctx context.Context, email string, previous, next string) error {
	const query = `UPDATE users SET renewal_credential = $3 WHERE email = $1 AND renewal_credential = $2`
	tag, err := s.pool.Exec(ctx, query, email, previous, next)
	if err != nil {
		return infra("rotate renewal credential", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStaleCredential
	}
	return nil
}

func (s *Store) updateOne(ctx context.Context, op, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return infra(op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.Active, &u.Confirmed, &u.Avatar, &u.RenewalCredential, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, infra("select user", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func infra(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, repository.ErrUnavailable, err)
}
