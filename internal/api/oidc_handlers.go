package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/auth"
	"challengehub-backend/internal/database"
	"challengehub-backend/internal/models"
	"challengehub-backend/internal/sso"
)

// oidcStartHandler handles GET /api/auth/oidc/start
func oidcStartHandler(c echo.Context) error {
	authURL, state := oidcClient.Begin()
	return c.JSON(http.StatusOK, map[string]string{
		"auth_url": authURL,
		"state":    state,
	})
}

type oidcCallbackRequest struct {
	State string `json:"state"`
	Code  string `json:"code"`
}

// oidcCallbackHandler handles POST /api/auth/oidc/callback. The one-time
// state value stands in for the CSRF token on this endpoint.
func oidcCallbackHandler(c echo.Context) error {
	var req oidcCallbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if req.State == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "state and code are required",
		})
	}

	info, err := oidcClient.Authenticate(c.Request().Context(), req.State, req.Code)
	if err != nil {
		if errors.Is(err, sso.ErrInvalidState) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "unknown or expired login attempt",
			})
		}
		c.Logger().Error("oidc authenticate error: ", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "social login failed",
		})
	}

	user, err := findOrCreateOIDCUser(info)
	if err != nil {
		c.Logger().Error("oidc user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "social login failed",
		})
	}
	if !user.Active {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "user account is inactive",
		})
	}

	presented := auth.GetTokenFromRequest(c)
	result, err := authService.EstablishSession(user, presented, false, "",
		c.RealIP(), c.Request().UserAgent(), models.ActionOIDCLogin)
	if err != nil {
		return authErrorResponse(c, err)
	}

	return loginSuccess(c, result)
}

// findOrCreateOIDCUser links a verified provider identity to a local
// account by email, creating one on first login
func findOrCreateOIDCUser(info *sso.UserInfo) (*models.User, error) {
	email := auth.NormalizeEmail(info.Email)

	user, err := userRepo.GetByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		Pseudo:   uniquePseudo(email),
		Email:    email,
		Role:     models.RoleMember,
		AuthType: models.AuthTypeOIDC,
		Active:   true,
	}
	splitDisplayName(info.DisplayName, user)

	if err := userRepo.Create(user); err != nil {
		return nil, err
	}

	authService.Notify(user.ID, models.NotificationWelcome,
		"Welcome to ChallengeHub, "+user.Pseudo+"!")

	return user, nil
}

// uniquePseudo derives a pseudo from the email local part, suffixing a
// counter until it is free
func uniquePseudo(email string) string {
	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}

	// Keep only characters valid in a pseudo
	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	base = b.String()
	if len(base) < 3 {
		base = "member"
	}
	if len(base) > 24 {
		base = base[:24]
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := userRepo.ExistsByPseudo(candidate)
		if err != nil || !taken {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

// splitDisplayName fills first/last name from a provider display name
func splitDisplayName(name string, user *models.User) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	parts := strings.SplitN(name, " ", 2)
	user.FirstName = parts[0]
	if len(parts) > 1 {
		user.LastName = parts[1]
	}
}
