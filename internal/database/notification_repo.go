package database

import (
	"errors"

	"challengehub-backend/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepo handles notification database operations
type NotificationRepo struct{}

// NewNotificationRepo creates a new notification repository
func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{}
}

// Create creates a new notification for a user
func (r *NotificationRepo) Create(userID int64, notifType, message string) (*models.Notification, error) {
	result, err := DB.Exec(`
		INSERT INTO notifications (user_id, type, message) VALUES (?, ?, ?)
	`, userID, notifType, message)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	n := &models.Notification{ID: id, UserID: userID, Type: notifType, Message: message}
	err = DB.QueryRow("SELECT created_at FROM notifications WHERE id = ?", id).Scan(&n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListByUser retrieves a page of the user's notifications, newest first
func (r *NotificationRepo) ListByUser(userID int64, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := DB.Query(`
		SELECT id, user_id, type, message, read, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// UnreadCount returns the number of unread notifications for a user
func (r *NotificationRepo) UnreadCount(userID int64) (int, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0", userID,
	).Scan(&count)
	return count, err
}

// MarkRead marks one of the user's notifications as read
func (r *NotificationRepo) MarkRead(userID, id int64) error {
	result, err := DB.Exec(
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead marks all of the user's notifications as read
func (r *NotificationRepo) MarkAllRead(userID int64) error {
	_, err := DB.Exec("UPDATE notifications SET read = 1 WHERE user_id = ?", userID)
	return err
}
