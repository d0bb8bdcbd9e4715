package models

import "time"

// ChallengeStatus represents the lifecycle of a challenge
type ChallengeStatus string

const (
	ChallengeDraft    ChallengeStatus = "draft"
	ChallengeOpen     ChallengeStatus = "open"
	ChallengeClosed   ChallengeStatus = "closed"
	ChallengeArchived ChallengeStatus = "archived"
)

// Challenge represents a community challenge users can join
type Challenge struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CreatorID   int64           `json:"creator_id"`
	Status      ChallengeStatus `json:"status"`
	StartsAt    *time.Time      `json:"starts_at,omitempty"`
	EndsAt      *time.Time      `json:"ends_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ChallengeParticipant represents a user's membership in a challenge
type ChallengeParticipant struct {
	ChallengeID string    `json:"challenge_id"`
	UserID      int64     `json:"user_id"`
	JoinedAt    time.Time `json:"joined_at"`
}

// CreateChallengeRequest represents the request body for creating a challenge
type CreateChallengeRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

// UpdateChallengeRequest represents the request body for updating a challenge
type UpdateChallengeRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *ChallengeStatus `json:"status,omitempty"`
	StartsAt    *time.Time       `json:"starts_at,omitempty"`
	EndsAt      *time.Time       `json:"ends_at,omitempty"`
}
