package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mentorai/mentorai/internal/auth"
	"github.com/mentorai/mentorai/internal/errorz"
	"github.com/mentorai/mentorai/internal/krypto"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

const userColumns = `id, email, password_hash, is_verified, verification_token, verification_token_expires_at, created_at, updated_at`

func insertUser(ef execFunc, u *auth.User) error {
	if u.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	token, expiresAt := tokenColumns(u)

	const q = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := ef(q,
		u.ID.String(),
		string(u.Email),
		u.PasswordHash.String(),
		u.IsVerified,
		token,
		expiresAt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func updateUser(ef execFunc, u *auth.User) error {
	token, expiresAt := tokenColumns(u)

	const q = `UPDATE users SET
		email = ?,
		password_hash = ?,
		is_verified = ?,
		verification_token = ?,
		verification_token_expires_at = ?,
		created_at = ?,
		updated_at = ?
	WHERE id = ?`

	result, err := ef(q,
		string(u.Email),
		u.PasswordHash.String(),
		u.IsVerified,
		token,
		expiresAt,
		u.CreatedAt,
		u.UpdatedAt,
		u.ID.String(),
	)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return errorz.ErrNotFound
	}

	return nil
}

func selectUsers(qf queryFunc, filter *auth.UserFilter) ([]auth.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`

	var (
		conditions []string
		params     []any
	)

	if len(filter.IDs) > 0 {
		conditions = append(conditions, `id IN (`+placeholders(len(filter.IDs))+`)`)
		for _, id := range filter.IDs {
			params = append(params, id.String())
		}
	}

	if len(filter.Emails) > 0 {
		conditions = append(conditions, `email IN (`+placeholders(len(filter.Emails))+`)`)
		for _, addr := range filter.Emails {
			params = append(params, string(addr))
		}
	}

	if len(filter.VerificationTokens) > 0 {
		conditions = append(conditions, `verification_token IN (`+placeholders(len(filter.VerificationTokens))+`)`)
		for _, token := range filter.VerificationTokens {
			params = append(params, token.String())
		}
	}

	if filter.IsVerified != nil {
		conditions = append(conditions, `is_verified = ?`)
		params = append(params, *filter.IsVerified)
	}

	if len(conditions) > 0 {
		q += ` WHERE ` + strings.Join(conditions, ` AND `)
	}

	q += ` ORDER BY created_at, id`

	rows, err := qf(q, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}
	defer rows.Close()

	users := make([]auth.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return users, nil
}

func scanUser(rows *sql.Rows) (auth.User, error) {
	var (
		u         auth.User
		id        string
		token     sql.NullString
		expiresAt sql.NullTime
	)

	err := rows.Scan(&id, &u.Email, &u.PasswordHash, &u.IsVerified, &token, &expiresAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return auth.User{}, err
	}

	u.ID, err = uuid.Parse(id)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to parse user id: %w", err)
	}

	// Both set or both absent, the store schema guarantees this.
	if token.Valid && expiresAt.Valid {
		parsed, err := krypto.ParseToken(token.String)
		if err != nil {
			return auth.User{}, fmt.Errorf("failed to parse verification token: %w", err)
		}

		u.VerificationToken = &parsed
		u.VerificationTokenExpiresAt = &expiresAt.Time
	}

	return u, nil
}

// tokenColumns returns the nullable verification token columns for a user.
func tokenColumns(u *auth.User) (any, any) {
	var token, expiresAt any
	if u.VerificationToken != nil {
		token = u.VerificationToken.String()
	}
	if u.VerificationTokenExpiresAt != nil {
		expiresAt = *u.VerificationTokenExpiresAt
	}
	return token, expiresAt
}

// placeholders returns n comma separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
