package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrRememberNotFound = errors.New("remember token not found")
	ErrRememberExpired  = errors.New("remember token expired")
)

// RememberRepo handles persistent-login token database operations.
// A user has at most one active token; issuing replaces the previous one.
type RememberRepo struct{}

// NewRememberRepo creates a new remember-token repository
func NewRememberRepo() *RememberRepo {
	return &RememberRepo{}
}

// Issue generates a new token for the user and returns the plaintext.
// Only the SHA-256 hash is stored. The upsert is a single statement so
// concurrent logins for the same user cannot leave two active tokens.
func (r *RememberRepo) Issue(userID int64, ttl time.Duration) (string, time.Time, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(tokenBytes)

	now := time.Now()
	expiresAt := now.Add(ttl)

	_, err := DB.Exec(`
		INSERT INTO remember_tokens (user_id, token_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			token_hash = excluded.token_hash,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, userID, HashToken(token), now, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Validate resolves a presented plaintext token to a user ID. Expired
// tokens are deleted on sight and never authenticate.
func (r *RememberRepo) Validate(token string) (int64, error) {
	tokenHash := HashToken(token)

	var userID int64
	var expiresAt time.Time
	err := DB.QueryRow(`
		SELECT user_id, expires_at FROM remember_tokens WHERE token_hash = ?
	`, tokenHash).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return 0, ErrRememberNotFound
	}
	if err != nil {
		return 0, err
	}

	if time.Now().After(expiresAt) {
		DB.Exec("DELETE FROM remember_tokens WHERE token_hash = ?", tokenHash)
		return 0, ErrRememberExpired
	}

	return userID, nil
}

// Revoke deletes the token matching the presented plaintext
func (r *RememberRepo) Revoke(token string) error {
	_, err := DB.Exec("DELETE FROM remember_tokens WHERE token_hash = ?", HashToken(token))
	return err
}

// RevokeUser deletes the user's active token, if any
func (r *RememberRepo) RevokeUser(userID int64) error {
	_, err := DB.Exec("DELETE FROM remember_tokens WHERE user_id = ?", userID)
	return err
}

// DeleteExpired removes all expired remember tokens
func (r *RememberRepo) DeleteExpired() (int64, error) {
	result, err := DB.Exec("DELETE FROM remember_tokens WHERE expires_at < ?", time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
