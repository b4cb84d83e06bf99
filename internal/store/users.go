package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is an account row.
type User struct {
	ID                      string
	Email                   string
	Username                string
	PasswordHash            string
	IsActive                bool
	VerificationToken       string
	VerificationTokenExpiry time.Time // zero when no token is pending
	OrganizationName        string
	IntendedUse             string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

const userColumns = `id, email, username, password_hash, is_active, verification_token,
	verification_token_expiry, organization_name, intended_use, created_at, updated_at`

// CreateUser inserts u. Returns ErrEmailTaken if the email is already
// registered.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	var expiry sql.NullInt64
	if !u.VerificationTokenExpiry.IsZero() {
		expiry = sql.NullInt64{Int64: toUnix(u.VerificationTokenExpiry), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.IsActive,
		nullString(u.VerificationToken),
		expiry,
		nullString(u.OrganizationName),
		nullString(u.IntendedUse),
		toUnix(u.CreatedAt),
		toUnix(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UserByID returns the user with the given id or ErrNotFound.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.queryUser(ctx, "id", id)
}

// UserByEmail returns the user with the given (already normalized) email
// or ErrNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.queryUser(ctx, "email", email)
}

// UserByVerificationToken returns the user holding token or ErrNotFound.
func (s *Store) UserByVerificationToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	return s.queryUser(ctx, "verification_token", token)
}

// ActivateUser marks a pending user active and clears the verification
// token. Returns ErrNotFound if the user does not exist or is already
// active, so activation happens at most once.
func (s *Store) ActivateUser(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_active = 1,
		    verification_token = NULL,
		    verification_token_expiry = NULL,
		    updated_at = ?
		WHERE id = ? AND is_active = 0
	`, toUnix(now), id)
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// queryUser looks a user up by a unique column. column is never caller
// input.
func (s *Store) queryUser(ctx context.Context, column, value string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+column+` = ?
	`, value)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user by %s: %w", column, err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (User, error) {
	var (
		u        User
		token    sql.NullString
		expiry   sql.NullInt64
		org      sql.NullString
		intended sql.NullString
		created  int64
		updated  int64
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.IsActive,
		&token,
		&expiry,
		&org,
		&intended,
		&created,
		&updated,
	)
	if err != nil {
		return User{}, err
	}

	u.VerificationToken = token.String
	if expiry.Valid {
		u.VerificationTokenExpiry = fromUnix(expiry.Int64)
	}
	u.OrganizationName = org.String
	u.IntendedUse = intended.String
	u.CreatedAt = fromUnix(created)
	u.UpdatedAt = fromUnix(updated)
	return u, nil
}
