package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// CSRFHeader is the request header carrying the CSRF token
const CSRFHeader = "X-CSRF-Token"

// CSRFAnchorCookie identifies an anonymous browser so pre-login submissions
// (login, register) can carry a token bound to something
const CSRFAnchorCookie = "csrf_anchor"

const csrfTokenTTL = time.Hour

// CSRFProtection provides CSRF token generation and validation. Tokens are
// bound to an owner: the hash of the presented session token for
// authenticated requests, the anchor cookie value for anonymous ones.
type CSRFProtection struct {
	mu     sync.RWMutex
	tokens map[string]*csrfToken
}

type csrfToken struct {
	token     string
	createdAt time.Time
	owner     string
}

// NewCSRFProtection creates a new CSRF protection instance
func NewCSRFProtection() *CSRFProtection {
	csrf := &CSRFProtection{
		tokens: make(map[string]*csrfToken),
	}
	go csrf.cleanup()
	return csrf
}

// GenerateToken generates a new CSRF token bound to the given owner
func (c *CSRFProtection) GenerateToken(owner string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokenBytes := make([]byte, 32)
	rand.Read(tokenBytes)
	token := hex.EncodeToString(tokenBytes)

	// Hash for storage key
	hash := sha256.Sum256([]byte(token))
	key := hex.EncodeToString(hash[:])

	c.tokens[key] = &csrfToken{
		token:     token,
		createdAt: time.Now(),
		owner:     owner,
	}

	return token
}

// ValidateToken validates a CSRF token against the presenting owner.
// Comparisons are constant-time so validation cannot leak token bytes.
func (c *CSRFProtection) ValidateToken(token, owner string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hash := sha256.Sum256([]byte(token))
	key := hex.EncodeToString(hash[:])

	t, exists := c.tokens[key]
	if !exists {
		return false
	}

	if time.Since(t.createdAt) > csrfTokenTTL {
		return false
	}

	tokenOK := subtle.ConstantTimeCompare([]byte(t.token), []byte(token)) == 1
	ownerOK := subtle.ConstantTimeCompare([]byte(t.owner), []byte(owner)) == 1
	return tokenOK && ownerOK
}

// InvalidateToken invalidates a CSRF token (e.g., on logout)
func (c *CSRFProtection) InvalidateToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := sha256.Sum256([]byte(token))
	key := hex.EncodeToString(hash[:])
	delete(c.tokens, key)
}

// cleanup removes expired tokens periodically
func (c *CSRFProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, token := range c.tokens {
			if now.Sub(token.createdAt) > csrfTokenTTL {
				delete(c.tokens, key)
			}
		}
		c.mu.Unlock()
	}
}

// Owner derives the CSRF owner for a request: the session token hash when
// one is presented, otherwise the anonymous anchor cookie value.
func (c *CSRFProtection) Owner(ctx echo.Context) string {
	if token := getTokenFromRequest(ctx); token != "" {
		return "session:" + hashOwnerToken(token)
	}
	if cookie, err := ctx.Cookie(CSRFAnchorCookie); err == nil && cookie.Value != "" {
		return "anchor:" + cookie.Value
	}
	return ""
}

// NewAnchor generates a value for the anonymous anchor cookie
func NewAnchor() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func hashOwnerToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Middleware returns an Echo middleware that validates CSRF tokens for
// state-changing requests (POST, PUT, DELETE, PATCH). Login and register
// submissions use a token issued against the anonymous anchor cookie.
func (c *CSRFProtection) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			method := ctx.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(ctx)
			}

			// The OIDC callback is protected by the one-time state value
			// instead of a CSRF token
			if strings.HasSuffix(ctx.Path(), "/auth/oidc/callback") {
				return next(ctx)
			}

			token := ctx.Request().Header.Get(CSRFHeader)
			if token == "" {
				// Also check the form field
				token = ctx.FormValue("_csrf")
			}

			if token == "" {
				return ctx.JSON(http.StatusForbidden, map[string]string{
					"error": "CSRF token required",
				})
			}

			owner := c.Owner(ctx)
			if owner == "" || !c.ValidateToken(token, owner) {
				return ctx.JSON(http.StatusForbidden, map[string]string{
					"error": "invalid CSRF token",
				})
			}

			return next(ctx)
		}
	}
}
