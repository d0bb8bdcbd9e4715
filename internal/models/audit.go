package models

import "time"

// AuditLog represents a record of authentication and account events
type AuditLog struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     int64     `json:"user_id,omitempty"`
	Identifier string    `json:"identifier"` // email or pseudo as submitted
	Action     string    `json:"action"`
	Outcome    string    `json:"outcome"`
	Details    string    `json:"details,omitempty"` // JSON string
	IPAddress  string    `json:"ip_address,omitempty"`
}

// Common audit actions
const (
	ActionLogin        = "auth.login"
	ActionLogout       = "auth.logout"
	ActionRegister     = "auth.register"
	ActionRememberAuth = "auth.remember"
	ActionOIDCLogin    = "auth.oidc"
)

// Audit outcomes
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeRateLimited = "rate_limited"
)

// AuditFilter controls audit log listing
type AuditFilter struct {
	UserID *int64
	Action string
	Limit  int
	Offset int
}
