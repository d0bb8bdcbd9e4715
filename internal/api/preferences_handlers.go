package api

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"challengehub-backend/internal/auth"
	"challengehub-backend/internal/models"
)

// getUserPreferencesHandler handles GET /api/user/preferences
func getUserPreferencesHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	prefs, err := prefsRepo.Get(user.ID)
	if err != nil {
		c.Logger().Error("get preferences error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load preferences",
		})
	}

	// Parse the JSON string into a map for the response
	var preferences map[string]interface{}
	if err := json.Unmarshal([]byte(prefs.Preferences), &preferences); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to parse preferences",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"preferences": preferences,
		"updated_at":  prefs.UpdatedAt,
	})
}

// updateUserPreferencesHandler handles PUT /api/user/preferences
func updateUserPreferencesHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	var req models.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Preferences == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "preferences object is required",
		})
	}

	prefsJSON, err := json.Marshal(req.Preferences)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to serialize preferences",
		})
	}

	if err := prefsRepo.Set(user.ID, string(prefsJSON)); err != nil {
		c.Logger().Error("update preferences error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to save preferences",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"preferences": req.Preferences,
	})
}
