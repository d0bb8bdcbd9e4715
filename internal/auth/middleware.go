package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/models"
)

// Context keys for storing user data
const (
	ContextKeyUser    = "user"
	ContextKeySession = "session"
)

// Cookie names
const (
	SessionCookie  = "session_token"
	RememberCookie = "remember_token"
)

// RequireAuth middleware checks for valid authentication. A request with
// no live session but a valid remember token gets a fresh session issued
// transparently.
func RequireAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authenticate(c, authSvc) {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}
			return next(c)
		}
	}
}

// OptionalAuth middleware attempts to authenticate but doesn't require it
func OptionalAuth(authSvc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authenticate(c, authSvc)
			return next(c)
		}
	}
}

// RequireAdmin middleware checks for the admin role.
// Must be used after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get(ContextKeyUser).(*models.User)
			if !ok || user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}
			if !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "insufficient permissions",
				})
			}
			return next(c)
		}
	}
}

// authenticate resolves the request to a user, first by session token and
// then by remember token. On remember restoration new cookies are set.
func authenticate(c echo.Context, authSvc *Service) bool {
	if token := getTokenFromRequest(c); token != "" {
		user, session, err := authSvc.ValidateToken(token)
		if err == nil {
			c.Set(ContextKeyUser, user)
			c.Set(ContextKeySession, session)
			return true
		}
	}

	cookie, err := c.Cookie(RememberCookie)
	if err != nil || cookie.Value == "" {
		return false
	}

	result, err := authSvc.AuthenticateRemember(cookie.Value, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		// A rejected remember token is cleared so the client stops
		// presenting it
		ClearCookie(c, RememberCookie)
		return false
	}

	SetSessionCookie(c, result.Token, result.ExpiresAt)
	SetRememberCookie(c, result.RememberToken, result.RememberExpiry)

	_, session, err := authSvc.ValidateToken(result.Token)
	if err != nil {
		return false
	}

	c.Set(ContextKeyUser, result.User)
	c.Set(ContextKeySession, session)
	return true
}

// getTokenFromRequest extracts the session token from the request
func getTokenFromRequest(c echo.Context) string {
	// Try Authorization header first (Bearer token)
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Try cookie
	cookie, err := c.Cookie(SessionCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// GetTokenFromRequest is the exported form for handlers that need the raw
// presented token (logout, session regeneration)
func GetTokenFromRequest(c echo.Context) string {
	return getTokenFromRequest(c)
}

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetSessionFromContext retrieves the current session from the context
func GetSessionFromContext(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// SetSessionCookie sets the session token cookie (HttpOnly, Secure on TLS)
func SetSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

// SetRememberCookie sets the persistent-login cookie
func SetRememberCookie(c echo.Context, token string, expiresAt time.Time) {
	if token == "" {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     RememberCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

// ClearCookie expires a cookie by name
func ClearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
