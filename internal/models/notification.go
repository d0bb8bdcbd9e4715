package models

import "time"

// Notification types
const (
	NotificationWelcome        = "welcome"
	NotificationChallengeJoin  = "challenge_join"
	NotificationChallengeLeave = "challenge_leave"
)

// Notification represents a message shown in a user's notification feed
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
