package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"challengehub-backend/internal/models"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrAlreadyJoined     = errors.New("already joined challenge")
	ErrNotJoined         = errors.New("not a challenge participant")
)

// ChallengeRepo handles challenge database operations
type ChallengeRepo struct{}

// NewChallengeRepo creates a new challenge repository
func NewChallengeRepo() *ChallengeRepo {
	return &ChallengeRepo{}
}

// Create creates a new challenge
func (r *ChallengeRepo) Create(c *models.Challenge) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = models.ChallengeOpen
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := DB.Exec(`
		INSERT INTO challenges (id, title, description, creator_id, status, starts_at, ends_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Title, c.Description, c.CreatorID, c.Status, c.StartsAt, c.EndsAt, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetByID retrieves a challenge by ID
func (r *ChallengeRepo) GetByID(id string) (*models.Challenge, error) {
	c := &models.Challenge{}
	var startsAt, endsAt sql.NullTime

	err := DB.QueryRow(`
		SELECT id, title, description, creator_id, status, starts_at, ends_at, created_at, updated_at
		FROM challenges WHERE id = ?
	`, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.CreatorID, &c.Status,
		&startsAt, &endsAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}

	if startsAt.Valid {
		c.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		c.EndsAt = &endsAt.Time
	}

	return c, nil
}

// List retrieves challenges, newest first, optionally filtered by status
func (r *ChallengeRepo) List(status models.ChallengeStatus, limit, offset int) ([]*models.Challenge, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, title, description, creator_id, status, starts_at, ends_at, created_at, updated_at
		FROM challenges`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		c := &models.Challenge{}
		var startsAt, endsAt sql.NullTime
		err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.CreatorID, &c.Status,
			&startsAt, &endsAt, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if startsAt.Valid {
			c.StartsAt = &startsAt.Time
		}
		if endsAt.Valid {
			c.EndsAt = &endsAt.Time
		}
		challenges = append(challenges, c)
	}

	return challenges, nil
}

// Update updates a challenge
func (r *ChallengeRepo) Update(c *models.Challenge) error {
	c.UpdatedAt = time.Now()

	result, err := DB.Exec(`
		UPDATE challenges SET
			title = ?,
			description = ?,
			status = ?,
			starts_at = ?,
			ends_at = ?,
			updated_at = ?
		WHERE id = ?
	`, c.Title, c.Description, c.Status, c.StartsAt, c.EndsAt, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrChallengeNotFound
	}

	return nil
}

// Delete deletes a challenge
func (r *ChallengeRepo) Delete(id string) error {
	result, err := DB.Exec("DELETE FROM challenges WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrChallengeNotFound
	}

	return nil
}

// Join adds a user to a challenge
func (r *ChallengeRepo) Join(challengeID string, userID int64) error {
	_, err := DB.Exec(`
		INSERT INTO challenge_participants (challenge_id, user_id) VALUES (?, ?)
		ON CONFLICT(challenge_id, user_id) DO NOTHING
	`, challengeID, userID)
	return err
}

// Leave removes a user from a challenge
func (r *ChallengeRepo) Leave(challengeID string, userID int64) error {
	result, err := DB.Exec(
		"DELETE FROM challenge_participants WHERE challenge_id = ? AND user_id = ?",
		challengeID, userID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotJoined
	}

	return nil
}

// Participants lists the users who joined a challenge
func (r *ChallengeRepo) Participants(challengeID string) ([]*models.ChallengeParticipant, error) {
	rows, err := DB.Query(`
		SELECT challenge_id, user_id, joined_at
		FROM challenge_participants WHERE challenge_id = ? ORDER BY joined_at
	`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*models.ChallengeParticipant
	for rows.Next() {
		p := &models.ChallengeParticipant{}
		if err := rows.Scan(&p.ChallengeID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, nil
}

// IsParticipant reports whether the user has joined the challenge
func (r *ChallengeRepo) IsParticipant(challengeID string, userID int64) (bool, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM challenge_participants WHERE challenge_id = ? AND user_id = ?",
		challengeID, userID,
	).Scan(&count)
	return count > 0, err
}
