package api

import (
	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/auth"
	"challengehub-backend/internal/database"
	"challengehub-backend/internal/notify"
	"challengehub-backend/internal/sso"
)

// RegisterRoutes sets up all API routes. oidc may be nil when social
// login is not configured.
func RegisterRoutes(api *echo.Group, authSvc *auth.Service, csrf *auth.CSRFProtection, hub *notify.Hub, oidc *sso.Client) {
	authService = authSvc
	csrfGuard = csrf
	notifyHub = hub
	oidcClient = oidc

	userRepo = database.NewUserRepo()
	notifRepo = database.NewNotificationRepo()
	chalRepo = database.NewChallengeRepo()
	prefsRepo = database.NewPreferencesRepo()
	auditRepo = database.NewAuditRepo()

	// Every state-changing submission must carry a CSRF token
	api.Use(csrf.Middleware())

	// Health check (public)
	api.GET("/health", healthCheck)

	// Auth routes (login/register use the anonymous CSRF token)
	authGroup := api.Group("/auth")
	authGroup.GET("/csrf", csrfTokenHandler)
	authGroup.POST("/login", loginHandler)
	authGroup.POST("/register", registerHandler)
	authGroup.POST("/logout", logoutHandler)

	if oidc != nil {
		authGroup.GET("/oidc/start", oidcStartHandler)
		authGroup.POST("/oidc/callback", oidcCallbackHandler)
	}

	// Protected auth routes
	authProtected := authGroup.Group("")
	authProtected.Use(auth.RequireAuth(authSvc))
	authProtected.GET("/me", getCurrentUser)
	authProtected.GET("/sessions", getUserSessions)
	authProtected.DELETE("/sessions/:id", revokeSession)

	// Per-user preferences (theming)
	userGroup := api.Group("/user")
	userGroup.Use(auth.RequireAuth(authSvc))
	userGroup.GET("/preferences", getUserPreferencesHandler)
	userGroup.PUT("/preferences", updateUserPreferencesHandler)

	// Notifications
	notifications := api.Group("/notifications")
	notifications.Use(auth.RequireAuth(authSvc))
	notifications.GET("", listNotificationsHandler)
	notifications.GET("/unread_count", unreadCountHandler)
	notifications.GET("/ws", notificationFeedHandler)
	notifications.POST("/:id/read", markNotificationReadHandler)
	notifications.POST("/read_all", markAllNotificationsReadHandler)

	// Challenges: listing is public, everything else needs an account
	challenges := api.Group("/challenges")
	challenges.Use(auth.OptionalAuth(authSvc))
	challenges.GET("", listChallengesHandler)
	challenges.GET("/:id", getChallengeHandler)

	challengesProtected := api.Group("/challenges")
	challengesProtected.Use(auth.RequireAuth(authSvc))
	challengesProtected.POST("", createChallengeHandler)
	challengesProtected.PUT("/:id", updateChallengeHandler)
	challengesProtected.DELETE("/:id", deleteChallengeHandler)
	challengesProtected.POST("/:id/join", joinChallengeHandler)
	challengesProtected.DELETE("/:id/join", leaveChallengeHandler)

	// Audit trail (admin only)
	audit := api.Group("/audit")
	audit.Use(auth.RequireAuth(authSvc))
	audit.Use(auth.RequireAdmin())
	audit.GET("", listAuditLogsHandler)
}
