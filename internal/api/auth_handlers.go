package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/auth"
	"challengehub-backend/internal/database"
	"challengehub-backend/internal/models"
)

// csrfTokenHandler handles GET /api/auth/csrf. Anonymous clients get an
// anchor cookie so their token is bound to something; authenticated
// clients get a token bound to their session.
func csrfTokenHandler(c echo.Context) error {
	owner := csrfGuard.Owner(c)
	if owner == "" {
		anchor := auth.NewAnchor()
		c.SetCookie(&http.Cookie{
			Name:     auth.CSRFAnchorCookie,
			Value:    anchor,
			Path:     "/",
			HttpOnly: true,
			Secure:   c.Request().TLS != nil,
			SameSite: http.SameSiteStrictMode,
		})
		owner = "anchor:" + anchor
	}

	return c.JSON(http.StatusOK, map[string]string{
		"csrf_token": csrfGuard.GenerateToken(owner),
	})
}

// loginHandler handles POST /api/auth/login
func loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "email and password are required",
		})
	}

	presented := auth.GetTokenFromRequest(c)
	result, err := authService.Login(req, presented, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return authErrorResponse(c, err)
	}

	return loginSuccess(c, result)
}

// registerHandler handles POST /api/auth/register
func registerHandler(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	presented := auth.GetTokenFromRequest(c)
	result, err := authService.Register(&req, presented, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return authErrorResponse(c, err)
	}

	return loginSuccess(c, result)
}

// loginSuccess finishes login/register: sets cookies, rotates the CSRF
// token onto the new session, and returns the session details
func loginSuccess(c echo.Context, result *auth.LoginResult) error {
	auth.SetSessionCookie(c, result.Token, result.ExpiresAt)
	auth.SetRememberCookie(c, result.RememberToken, result.RememberExpiry)

	// The anonymous anchor has done its job
	auth.ClearCookie(c, auth.CSRFAnchorCookie)

	csrfToken := csrfGuard.GenerateToken("session:" + database.HashToken(result.Token))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":        result.User,
		"token":       result.Token,
		"expires_at":  result.ExpiresAt,
		"redirect_to": result.RedirectTo,
		"csrf_token":  csrfToken,
	})
}

// authErrorResponse maps auth service failures to HTTP responses.
// Credential failures stay generic; validation failures are per-field.
func authErrorResponse(c echo.Context, err error) error {
	var fieldErrs auth.FieldErrors
	var rateErr *auth.RateLimitedError

	switch {
	case errors.As(err, &fieldErrs):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": fieldErrs,
		})
	case errors.As(err, &rateErr):
		retryAfter := int(rateErr.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
		return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
			"error":       "too many attempts, please try again later",
			"retry_after": retryAfter,
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid email or password",
		})
	case errors.Is(err, auth.ErrRegistrationDisabled):
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "registration is disabled",
		})
	default:
		c.Logger().Error("auth error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "authentication failed",
		})
	}
}

// logoutHandler handles POST /api/auth/logout. Reaching it requires a
// valid CSRF token, which is the logout confirmation: a bare link cannot
// force it.
func logoutHandler(c echo.Context) error {
	token := auth.GetTokenFromRequest(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "no session token",
		})
	}

	if err := authService.Logout(token, c.RealIP()); err != nil {
		if !errors.Is(err, database.ErrSessionNotFound) && !errors.Is(err, database.ErrSessionExpired) {
			c.Logger().Error("logout error: ", err)
		}
	}

	if csrfToken := c.Request().Header.Get(auth.CSRFHeader); csrfToken != "" {
		csrfGuard.InvalidateToken(csrfToken)
	}

	auth.ClearCookie(c, auth.SessionCookie)
	auth.ClearCookie(c, auth.RememberCookie)
	auth.ClearCookie(c, auth.CSRFAnchorCookie)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "logged out successfully",
		"redirect_to": "/",
	})
}

// getCurrentUser handles GET /api/auth/me
func getCurrentUser(c echo.Context) error {
	user := auth.GetUserFromContext(c)
	session := auth.GetSessionFromContext(c)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":       user,
		"expires_at": session.ExpiresAt,
	})
}

// getUserSessions handles GET /api/auth/sessions
func getUserSessions(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	sessions, err := authService.GetUserSessions(user.ID)
	if err != nil {
		c.Logger().Error("list sessions error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list sessions",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// revokeSession handles DELETE /api/auth/sessions/:id
func revokeSession(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid session id",
		})
	}

	// A user can only revoke their own sessions
	sessions, err := authService.GetUserSessions(user.ID)
	if err != nil {
		c.Logger().Error("revoke session error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to revoke session",
		})
	}

	for _, s := range sessions {
		if s.ID == id {
			if err := authService.RevokeSession(id); err != nil {
				c.Logger().Error("revoke session error: ", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "failed to revoke session",
				})
			}
			return c.JSON(http.StatusOK, map[string]string{
				"message": "session revoked",
			})
		}
	}

	return c.JSON(http.StatusNotFound, map[string]string{
		"error": "session not found",
	})
}
