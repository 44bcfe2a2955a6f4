package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TokenRepo persists the per-user set of valid session tokens (single
// 'token_hash' column). A signed token authenticates only while its hash
// is present here, which is what makes logout and logout-all work without
// any external revocation list.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a token hash row for the user.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_tokens (user_id, token_hash) VALUES (?,?)",
		userID, tokenHash)
	return err
}

// Exists reports whether the hash is currently listed for the user.
func (r *TokenRepo) Exists(ctx context.Context, userID uint64, tokenHash string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM auth_tokens WHERE user_id=? AND token_hash=? LIMIT 1",
		userID, tokenHash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes exactly one token from the user's set. Removing a hash
// that is not listed is not an error.
func (r *TokenRepo) Delete(ctx context.Context, userID uint64, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM auth_tokens WHERE user_id=? AND token_hash=?",
		userID, tokenHash)
	return err
}

// DeleteAllForUser clears the user's entire token set.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM auth_tokens WHERE user_id=?", userID)
	return err
}
