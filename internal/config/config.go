// Package config loads application configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the backend
type Config struct {
	// Server settings
	Port   string
	DBPath string

	// CORS settings
	AllowedOrigins []string

	// OIDC social login (optional, disabled when IssuerURL is empty)
	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	// Missing .env is fine, real deployments set variables directly
	godotenv.Load()

	return &Config{
		Port:   getEnv("CHALLENGEHUB_PORT", "8080"),
		DBPath: getEnv("CHALLENGEHUB_DB_PATH", "./challengehub.db"),
		AllowedOrigins: []string{
			getEnv("CHALLENGEHUB_FRONTEND_ORIGIN", "http://localhost:3000"),
		},
		OIDCIssuerURL:    getEnv("CHALLENGEHUB_OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("CHALLENGEHUB_OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("CHALLENGEHUB_OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("CHALLENGEHUB_OIDC_REDIRECT_URL", ""),
	}
}

// OIDCEnabled reports whether social login is configured
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuerURL != "" && c.OIDCClientID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
