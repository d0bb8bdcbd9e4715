package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challengehub-backend/internal/auth"
)

// apiAccount registers a fresh account through the HTTP surface
func apiAccount(t *testing.T) (sessionToken, csrfToken string) {
	t.Helper()
	pseudo, email := nextCredentials()
	return registerViaAPI(t, pseudo, email, "secret123")
}

func authed(sessionToken, csrfToken string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
		if csrfToken != "" {
			req.Header.Set(auth.CSRFHeader, csrfToken)
		}
	}
}

func createChallengeViaAPI(t *testing.T, sessionToken, csrfToken, title string) string {
	t.Helper()

	rec, body := doJSON(t, http.MethodPost, "/api/challenges", map[string]interface{}{
		"title":       title,
		"description": "a test challenge",
	}, authed(sessionToken, csrfToken))
	require.Equal(t, http.StatusCreated, rec.Code, "create challenge: %s", rec.Body.String())

	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestChallengeListIsPublic(t *testing.T) {
	rec, body := doJSON(t, http.MethodGet, "/api/challenges", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, hasKey := body["challenges"]
	assert.True(t, hasKey)
}

func TestChallengeCreateRequiresAuth(t *testing.T) {
	token, anchor := fetchCSRF(t)

	rec, _ := doJSON(t, http.MethodPost, "/api/challenges", map[string]interface{}{
		"title": "unauthenticated",
	}, func(req *http.Request) {
		req.Header.Set(auth.CSRFHeader, token)
		req.AddCookie(anchor)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChallengeCreateValidatesTitle(t *testing.T) {
	sessionToken, csrfToken := apiAccount(t)

	rec, body := doJSON(t, http.MethodPost, "/api/challenges", map[string]interface{}{
		"title": "   ",
	}, authed(sessionToken, csrfToken))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := body["fields"].(map[string]interface{})
	assert.Equal(t, "required", fields["title"])
}

func TestChallengeCreateAndGet(t *testing.T) {
	sessionToken, csrfToken := apiAccount(t)
	id := createChallengeViaAPI(t, sessionToken, csrfToken, "100 pushups a day")

	rec, body := doJSON(t, http.MethodGet, "/api/challenges/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	challenge := body["challenge"].(map[string]interface{})
	assert.Equal(t, "100 pushups a day", challenge["title"])
	assert.Equal(t, "open", challenge["status"])

	// The creator joined automatically
	participants := body["participants"].([]interface{})
	assert.Len(t, participants, 1)
}

func TestChallengeJoinAndLeave(t *testing.T) {
	creatorToken, creatorCSRF := apiAccount(t)
	id := createChallengeViaAPI(t, creatorToken, creatorCSRF, "group hike")

	memberToken, memberCSRF := apiAccount(t)

	rec, _ := doJSON(t, http.MethodPost, "/api/challenges/"+id+"/join", nil,
		authed(memberToken, memberCSRF))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, http.MethodGet, "/api/challenges/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["participants"].([]interface{}), 2)

	// The creator was notified about the join
	rec, body = doJSON(t, http.MethodGet, "/api/notifications/unread_count", nil,
		authed(creatorToken, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	// welcome + join
	assert.Equal(t, float64(2), body["unread_count"])

	rec, _ = doJSON(t, http.MethodDelete, "/api/challenges/"+id+"/join", nil,
		authed(memberToken, memberCSRF))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, http.MethodDelete, "/api/challenges/"+id+"/join", nil,
		authed(memberToken, memberCSRF))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChallengeJoinClosedRejected(t *testing.T) {
	creatorToken, creatorCSRF := apiAccount(t)
	id := createChallengeViaAPI(t, creatorToken, creatorCSRF, "closing soon")

	rec, _ := doJSON(t, http.MethodPut, "/api/challenges/"+id, map[string]interface{}{
		"status": "closed",
	}, authed(creatorToken, creatorCSRF))
	require.Equal(t, http.StatusOK, rec.Code)

	memberToken, memberCSRF := apiAccount(t)
	rec, body := doJSON(t, http.MethodPost, "/api/challenges/"+id+"/join", nil,
		authed(memberToken, memberCSRF))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "challenge is not open", body["error"])
}

func TestChallengeUpdateOnlyByCreator(t *testing.T) {
	creatorToken, creatorCSRF := apiAccount(t)
	id := createChallengeViaAPI(t, creatorToken, creatorCSRF, "mine")

	otherToken, otherCSRF := apiAccount(t)
	rec, _ := doJSON(t, http.MethodPut, "/api/challenges/"+id, map[string]interface{}{
		"title": "hijacked",
	}, authed(otherToken, otherCSRF))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := doJSON(t, http.MethodPut, "/api/challenges/"+id, map[string]interface{}{
		"title": "renamed",
	}, authed(creatorToken, creatorCSRF))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "renamed", body["title"])
}

func TestChallengeDelete(t *testing.T) {
	creatorToken, creatorCSRF := apiAccount(t)
	id := createChallengeViaAPI(t, creatorToken, creatorCSRF, "short lived")

	rec, _ := doJSON(t, http.MethodDelete, "/api/challenges/"+id, nil,
		authed(creatorToken, creatorCSRF))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, http.MethodGet, "/api/challenges/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreferencesRoundTrip(t *testing.T) {
	sessionToken, csrfToken := apiAccount(t)

	rec, body := doJSON(t, http.MethodGet, "/api/user/preferences", nil,
		authed(sessionToken, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["preferences"])

	rec, _ = doJSON(t, http.MethodPut, "/api/user/preferences", map[string]interface{}{
		"preferences": map[string]interface{}{"theme": "dark"},
	}, authed(sessionToken, csrfToken))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, http.MethodGet, "/api/user/preferences", nil,
		authed(sessionToken, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	prefs := body["preferences"].(map[string]interface{})
	assert.Equal(t, "dark", prefs["theme"])
}

func TestNotificationsFlow(t *testing.T) {
	sessionToken, csrfToken := apiAccount(t)

	// Registration produced a welcome notification
	rec, body := doJSON(t, http.MethodGet, "/api/notifications", nil,
		authed(sessionToken, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := body["notifications"].([]interface{})
	require.NotEmpty(t, notifications)

	first := notifications[0].(map[string]interface{})
	assert.Equal(t, "welcome", first["type"])
	id := int64(first["id"].(float64))

	rec, _ = doJSON(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", id), nil,
		authed(sessionToken, csrfToken))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, http.MethodGet, "/api/notifications/unread_count", nil,
		authed(sessionToken, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["unread_count"])
}

func TestAuditRequiresAdmin(t *testing.T) {
	sessionToken, _ := apiAccount(t)

	rec, _ := doJSON(t, http.MethodGet, "/api/audit", nil, authed(sessionToken, ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, http.MethodGet, "/api/audit", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
