package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"challengehub-backend/internal/models"
)

// AuditRepo handles audit log database operations
type AuditRepo struct{}

// NewAuditRepo creates a new audit repository
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

// Create creates a new audit log entry
func (r *AuditRepo) Create(log *models.AuditLog) error {
	var userID interface{}
	if log.UserID != 0 {
		userID = log.UserID
	}

	result, err := DB.Exec(`
		INSERT INTO audit_logs (timestamp, user_id, identifier, action, outcome, details, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, log.Timestamp, userID, log.Identifier, log.Action, log.Outcome, log.Details, log.IPAddress)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = id
	return nil
}

// Log is a convenience method to record an event with the current timestamp
func (r *AuditRepo) Log(userID int64, identifier, action, outcome string, details interface{}, ipAddress string) error {
	var detailsJSON string
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			detailsJSON = "{}"
		} else {
			detailsJSON = string(b)
		}
	}

	log := &models.AuditLog{
		Timestamp:  time.Now(),
		UserID:     userID,
		Identifier: identifier,
		Action:     action,
		Outcome:    outcome,
		Details:    detailsJSON,
		IPAddress:  ipAddress,
	}
	return r.Create(log)
}

// List retrieves audit logs with pagination and optional filters
func (r *AuditRepo) List(filter models.AuditFilter) ([]*models.AuditLog, int, error) {
	baseQuery := "FROM audit_logs WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != nil {
		baseQuery += " AND user_id = ?"
		args = append(args, *filter.UserID)
	}
	if filter.Action != "" {
		baseQuery += " AND action = ?"
		args = append(args, filter.Action)
	}

	// Get total count
	var total int
	if err := DB.QueryRow("SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT id, timestamp, user_id, identifier, action, outcome, details, ip_address " + baseQuery
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log := &models.AuditLog{}
		var userID sql.NullInt64
		var identifier, details, ipAddress sql.NullString

		err := rows.Scan(&log.ID, &log.Timestamp, &userID, &identifier,
			&log.Action, &log.Outcome, &details, &ipAddress)
		if err != nil {
			return nil, 0, err
		}

		if userID.Valid {
			log.UserID = userID.Int64
		}
		log.Identifier = identifier.String
		log.Details = details.String
		log.IPAddress = ipAddress.String

		logs = append(logs, log)
	}

	return logs, total, nil
}
