package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/models"
)

// listAuditLogsHandler handles GET /api/audit (admin only)
func listAuditLogsHandler(c echo.Context) error {
	filter := models.AuditFilter{
		Action: c.QueryParam("action"),
		Limit:  50,
	}

	if v := c.QueryParam("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 500 {
			filter.Limit = limit
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if v := c.QueryParam("user_id"); v != "" {
		if userID, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.UserID = &userID
		}
	}

	logs, total, err := auditRepo.List(filter)
	if err != nil {
		c.Logger().Error("list audit logs error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list audit logs",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}
