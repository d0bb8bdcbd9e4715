package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	csrf := NewCSRFProtection()

	token := csrf.GenerateToken("anchor:abc")
	require.NotEmpty(t, token)

	assert.True(t, csrf.ValidateToken(token, "anchor:abc"))
}

func TestCSRFTokenBoundToOwner(t *testing.T) {
	csrf := NewCSRFProtection()

	token := csrf.GenerateToken("anchor:abc")

	assert.False(t, csrf.ValidateToken(token, "anchor:other"))
	assert.False(t, csrf.ValidateToken(token, "session:deadbeef"))
	assert.False(t, csrf.ValidateToken(token, ""))
}

func TestCSRFUnknownTokenRejected(t *testing.T) {
	csrf := NewCSRFProtection()
	assert.False(t, csrf.ValidateToken("never-issued", "anchor:abc"))
	assert.False(t, csrf.ValidateToken("", "anchor:abc"))
}

func TestCSRFInvalidateToken(t *testing.T) {
	csrf := NewCSRFProtection()

	token := csrf.GenerateToken("anchor:abc")
	require.True(t, csrf.ValidateToken(token, "anchor:abc"))

	csrf.InvalidateToken(token)
	assert.False(t, csrf.ValidateToken(token, "anchor:abc"))
}

func TestCSRFTokenExpiry(t *testing.T) {
	csrf := NewCSRFProtection()

	token := csrf.GenerateToken("anchor:abc")

	csrf.mu.Lock()
	csrf.tokens[hashOwnerToken(token)].createdAt = time.Now().Add(-csrfTokenTTL - time.Minute)
	csrf.mu.Unlock()

	assert.False(t, csrf.ValidateToken(token, "anchor:abc"))
}

func TestCSRFTokensAreUnique(t *testing.T) {
	csrf := NewCSRFProtection()
	assert.NotEqual(t, csrf.GenerateToken("anchor:abc"), csrf.GenerateToken("anchor:abc"))
}

func TestCSRFOwnerPrefersSession(t *testing.T) {
	csrf := NewCSRFProtection()
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	req.AddCookie(&http.Cookie{Name: CSRFAnchorCookie, Value: "abc"})
	ctx := e.NewContext(req, httptest.NewRecorder())

	owner := csrf.Owner(ctx)
	assert.True(t, strings.HasPrefix(owner, "session:"))
	assert.NotContains(t, owner, "sometoken", "owner must not embed the raw token")
}

func TestCSRFOwnerFallsBackToAnchor(t *testing.T) {
	csrf := NewCSRFProtection()
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFAnchorCookie, Value: "abc"})
	ctx := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "anchor:abc", csrf.Owner(ctx))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	ctx = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "", csrf.Owner(ctx))
}

func csrfTestServer(csrf *CSRFProtection) *echo.Echo {
	e := echo.New()
	e.Use(csrf.Middleware())
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/thing", ok)
	e.POST("/thing", ok)
	e.POST("/auth/oidc/callback", ok)
	return e
}

func TestCSRFMiddlewareSkipsSafeMethods(t *testing.T) {
	e := csrfTestServer(NewCSRFProtection())

	req := httptest.NewRequest(http.MethodGet, "/thing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareRejectsMissingToken(t *testing.T) {
	e := csrfTestServer(NewCSRFProtection())

	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareRejectsForeignToken(t *testing.T) {
	csrf := NewCSRFProtection()
	e := csrfTestServer(csrf)

	// Token issued to one anchor, presented by another browser
	token := csrf.GenerateToken("anchor:victim")

	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.Header.Set(CSRFHeader, token)
	req.AddCookie(&http.Cookie{Name: CSRFAnchorCookie, Value: "attacker"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareAcceptsValidToken(t *testing.T) {
	csrf := NewCSRFProtection()
	e := csrfTestServer(csrf)

	token := csrf.GenerateToken("anchor:abc")

	req := httptest.NewRequest(http.MethodPost, "/thing", nil)
	req.Header.Set(CSRFHeader, token)
	req.AddCookie(&http.Cookie{Name: CSRFAnchorCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareAcceptsFormField(t *testing.T) {
	csrf := NewCSRFProtection()
	e := csrfTestServer(csrf)

	token := csrf.GenerateToken("anchor:abc")

	form := strings.NewReader("_csrf=" + token)
	req := httptest.NewRequest(http.MethodPost, "/thing", form)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: CSRFAnchorCookie, Value: "abc"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMiddlewareSkipsOIDCCallback(t *testing.T) {
	e := csrfTestServer(NewCSRFProtection())

	// The callback carries the one-time state value instead of a token
	req := httptest.NewRequest(http.MethodPost, "/auth/oidc/callback", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
