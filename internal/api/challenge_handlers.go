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
)

// listChallengesHandler handles GET /api/challenges
func listChallengesHandler(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	status := models.ChallengeStatus(c.QueryParam("status"))

	challenges, err := chalRepo.List(status, limit, offset)
	if err != nil {
		c.Logger().Error("list challenges error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list challenges",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"challenges": challenges,
	})
}

// createChallengeHandler handles POST /api/challenges
func createChallengeHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	var req models.CreateChallengeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": map[string]string{"title": auth.CodeRequired},
		})
	}
	if len(req.Title) > 120 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": map[string]string{"title": auth.CodeTooLong},
		})
	}

	challenge := &models.Challenge{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   user.ID,
		Status:      models.ChallengeOpen,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := chalRepo.Create(challenge); err != nil {
		c.Logger().Error("create challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to create challenge",
		})
	}

	// The creator participates in their own challenge
	if err := chalRepo.Join(challenge.ID, user.ID); err != nil {
		c.Logger().Error("join own challenge error: ", err)
	}

	return c.JSON(http.StatusCreated, challenge)
}

// getChallengeHandler handles GET /api/challenges/:id
func getChallengeHandler(c echo.Context) error {
	challenge, err := chalRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrChallengeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "challenge not found",
			})
		}
		c.Logger().Error("get challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load challenge",
		})
	}

	participants, err := chalRepo.Participants(challenge.ID)
	if err != nil {
		c.Logger().Error("challenge participants error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load challenge",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"challenge":    challenge,
		"participants": participants,
	})
}

// updateChallengeHandler handles PUT /api/challenges/:id
func updateChallengeHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	challenge, err := chalRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrChallengeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "challenge not found",
			})
		}
		c.Logger().Error("get challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load challenge",
		})
	}

	if challenge.CreatorID != user.ID && !user.IsAdmin() {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "only the creator can modify a challenge",
		})
	}

	var req models.UpdateChallengeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "validation failed",
				"fields": map[string]string{"title": auth.CodeRequired},
			})
		}
		challenge.Title = title
	}
	if req.Description != nil {
		challenge.Description = *req.Description
	}
	if req.Status != nil {
		challenge.Status = *req.Status
	}
	if req.StartsAt != nil {
		challenge.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		challenge.EndsAt = req.EndsAt
	}

	if err := chalRepo.Update(challenge); err != nil {
		c.Logger().Error("update challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update challenge",
		})
	}

	return c.JSON(http.StatusOK, challenge)
}

// deleteChallengeHandler handles DELETE /api/challenges/:id
func deleteChallengeHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	challenge, err := chalRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrChallengeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "challenge not found",
			})
		}
		c.Logger().Error("get challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load challenge",
		})
	}

	if challenge.CreatorID != user.ID && !user.IsAdmin() {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "only the creator can delete a challenge",
		})
	}

	if err := chalRepo.Delete(challenge.ID); err != nil {
		c.Logger().Error("delete challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete challenge",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "challenge deleted",
	})
}

// joinChallengeHandler handles POST /api/challenges/:id/join
func joinChallengeHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	challenge, err := chalRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrChallengeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "challenge not found",
			})
		}
		c.Logger().Error("get challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load challenge",
		})
	}

	if challenge.Status != models.ChallengeOpen {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "challenge is not open",
		})
	}

	if err := chalRepo.Join(challenge.ID, user.ID); err != nil {
		c.Logger().Error("join challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to join challenge",
		})
	}

	if challenge.CreatorID != user.ID {
		authService.Notify(challenge.CreatorID, models.NotificationChallengeJoin,
			user.Pseudo+" joined your challenge \""+challenge.Title+"\"")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "joined challenge",
	})
}

// leaveChallengeHandler handles DELETE /api/challenges/:id/join
func leaveChallengeHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	challenge, err := chalRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrChallengeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "challenge not found",
			})
		}
		c.Logger().Error("get challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load challenge",
		})
	}

	if err := chalRepo.Leave(challenge.ID, user.ID); err != nil {
		if errors.Is(err, database.ErrNotJoined) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "not a participant",
			})
		}
		c.Logger().Error("leave challenge error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to leave challenge",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "left challenge",
	})
}
