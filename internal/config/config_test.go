package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./challengehub.db", cfg.DBPath)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.OIDCEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHALLENGEHUB_PORT", "9999")
	t.Setenv("CHALLENGEHUB_DB_PATH", "/tmp/test.db")
	t.Setenv("CHALLENGEHUB_FRONTEND_ORIGIN", "https://challengehub.example.com")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, []string{"https://challengehub.example.com"}, cfg.AllowedOrigins)
}

func TestOIDCEnabledNeedsIssuerAndClient(t *testing.T) {
	t.Setenv("CHALLENGEHUB_OIDC_ISSUER", "https://id.example.com")
	cfg := Load()
	assert.False(t, cfg.OIDCEnabled(), "issuer alone is not enough")

	t.Setenv("CHALLENGEHUB_OIDC_CLIENT_ID", "challengehub")
	cfg = Load()
	assert.True(t, cfg.OIDCEnabled())
}
