package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/auth"
	"challengehub-backend/internal/database"
)

// listNotificationsHandler handles GET /api/notifications
func listNotificationsHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	notifications, err := notifRepo.ListByUser(user.ID, limit, offset)
	if err != nil {
		c.Logger().Error("list notifications error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list notifications",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

// unreadCountHandler handles GET /api/notifications/unread_count
func unreadCountHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	count, err := notifRepo.UnreadCount(user.ID)
	if err != nil {
		c.Logger().Error("unread count error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to count notifications",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"unread_count": count,
	})
}

// markNotificationReadHandler handles POST /api/notifications/:id/read
func markNotificationReadHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid notification id",
		})
	}

	if err := notifRepo.MarkRead(user.ID, id); err != nil {
		if errors.Is(err, database.ErrNotificationNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "notification not found",
			})
		}
		c.Logger().Error("mark read error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update notification",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "notification marked read",
	})
}

// markAllNotificationsReadHandler handles POST /api/notifications/read_all
func markAllNotificationsReadHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	if err := notifRepo.MarkAllRead(user.ID); err != nil {
		c.Logger().Error("mark all read error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update notifications",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "all notifications marked read",
	})
}

// notificationFeedHandler handles GET /api/notifications/ws. The
// connection receives the current unread count immediately and again
// whenever a new notification arrives.
func notificationFeedHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	notifyHub.Add(user.ID, ws)
	defer notifyHub.Remove(user.ID, ws)

	if count, err := notifRepo.UnreadCount(user.ID); err == nil {
		ws.WriteJSON(map[string]interface{}{"unread_count": count})
	}

	// Hold the connection open; pushes come from the hub. The read loop
	// only notices the client going away.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	return nil
}
