package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/auth"
	"challengehub-backend/internal/database"
	"challengehub-backend/internal/notify"
	"challengehub-backend/internal/sso"
)

// Shared handler dependencies, wired in RegisterRoutes
var (
	authService *auth.Service
	csrfGuard   *auth.CSRFProtection
	oidcClient  *sso.Client
	notifyHub   *notify.Hub

	userRepo  *database.UserRepo
	notifRepo *database.NotificationRepo
	chalRepo  *database.ChallengeRepo
	prefsRepo *database.PreferencesRepo
	auditRepo *database.AuditRepo
)

// healthCheck handles GET /api/health
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
