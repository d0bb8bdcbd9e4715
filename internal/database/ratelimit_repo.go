package database

import (
	"database/sql"
	"time"
)

// RateLimitRepo persists windowed attempt counters keyed by (action, identifier).
// Increment-and-check runs inside a transaction so two concurrent requests
// cannot both observe a count below the threshold that only admits one.
type RateLimitRepo struct{}

// NewRateLimitRepo creates a new rate-limit counter repository
func NewRateLimitRepo() *RateLimitRepo {
	return &RateLimitRepo{}
}

// Increment bumps the counter for the key and returns the count within the
// current window. A window older than the given duration is reset to a fresh
// window containing only this attempt.
func (r *RateLimitRepo) Increment(action, identifier string, window time.Duration) (int, error) {
	tx, err := DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now()

	var count int
	var windowStart time.Time
	err = tx.QueryRow(`
		SELECT count, window_start FROM rate_limits WHERE action = ? AND identifier = ?
	`, action, identifier).Scan(&count, &windowStart)

	switch {
	case err == sql.ErrNoRows:
		count = 1
		_, err = tx.Exec(`
			INSERT INTO rate_limits (action, identifier, count, window_start)
			VALUES (?, ?, 1, ?)
		`, action, identifier, now)
	case err != nil:
		return 0, err
	case now.Sub(windowStart) > window:
		// Window elapsed, start over
		count = 1
		_, err = tx.Exec(`
			UPDATE rate_limits SET count = 1, window_start = ? WHERE action = ? AND identifier = ?
		`, now, action, identifier)
	default:
		count++
		_, err = tx.Exec(`
			UPDATE rate_limits SET count = count + 1 WHERE action = ? AND identifier = ?
		`, action, identifier)
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return count, nil
}

// Reset clears the counter for the key, used after a successful attempt
func (r *RateLimitRepo) Reset(action, identifier string) error {
	_, err := DB.Exec("DELETE FROM rate_limits WHERE action = ? AND identifier = ?", action, identifier)
	return err
}

// DeleteStale removes counters whose window started before the cutoff
func (r *RateLimitRepo) DeleteStale(cutoff time.Time) (int64, error) {
	result, err := DB.Exec("DELETE FROM rate_limits WHERE window_start < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
