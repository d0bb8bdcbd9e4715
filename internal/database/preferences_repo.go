package database

import (
	"database/sql"
	"time"

	"challengehub-backend/internal/models"
)

// PreferencesRepo handles user preference database operations
type PreferencesRepo struct{}

// NewPreferencesRepo creates a new preferences repository
func NewPreferencesRepo() *PreferencesRepo {
	return &PreferencesRepo{}
}

// Get retrieves the user's preferences blob. A user without stored
// preferences gets an empty JSON object.
func (r *PreferencesRepo) Get(userID int64) (*models.UserPreferences, error) {
	prefs := &models.UserPreferences{UserID: userID}

	err := DB.QueryRow(
		"SELECT preferences, updated_at FROM user_preferences WHERE user_id = ?", userID,
	).Scan(&prefs.Preferences, &prefs.UpdatedAt)
	if err == sql.ErrNoRows {
		prefs.Preferences = "{}"
		return prefs, nil
	}
	if err != nil {
		return nil, err
	}

	return prefs, nil
}

// Set upserts the user's preferences blob
func (r *PreferencesRepo) Set(userID int64, preferencesJSON string) error {
	_, err := DB.Exec(`
		INSERT INTO user_preferences (user_id, preferences, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			preferences = excluded.preferences,
			updated_at = excluded.updated_at
	`, userID, preferencesJSON, time.Now())
	return err
}
