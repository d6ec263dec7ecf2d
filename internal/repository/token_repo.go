package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog_api/internal/models"
)

type TokenSQLite struct {
	db *sql.DB
}

func NewTokenSQLite(db *sql.DB) *TokenSQLite {
	return &TokenSQLite{db: db}
}

var _ Tokens = (*TokenSQLite)(nil)

const (
	insertTokenSQL = `INSERT INTO personal_access_tokens (id, user_id, name, token_hash, created_at) VALUES (?, ?, ?, ?, ?)`

	// A single statement so a concurrent revoke is either fully before or
	// fully after the lookup.
	selectTokenUserSQL = `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at
		FROM personal_access_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.id = ? AND t.token_hash = ?`

	deleteTokensByUserSQL = `DELETE FROM personal_access_tokens WHERE user_id = ?`
)

// Create stores a token record. The plaintext token never reaches this layer.
func (r *TokenSQLite) Create(ctx context.Context, t models.AccessToken) error {
	_, err := r.db.ExecContext(ctx, insertTokenSQL, t.ID, t.UserID, t.Name, t.TokenHash, dbTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert token for user %d: %w", t.UserID, err)
	}
	return nil
}

// FindUser resolves a live token to its owner. Returns (nil, nil) when the
// token was revoked, never existed, or its user is gone.
func (r *TokenSQLite) FindUser(ctx context.Context, id, hash string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectTokenUserSQL, id, hash).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select token %q: %w", id, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// DeleteByUserID revokes every token of a user and reports how many went.
func (r *TokenSQLite) DeleteByUserID(ctx context.Context, userID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteTokensByUserSQL, userID)
	if err != nil {
		return 0, fmt.Errorf("delete tokens of user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for user %d tokens: %w", userID, err)
	}
	return n, nil
}
