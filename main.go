package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"challengehub-backend/internal/api"
	"challengehub-backend/internal/auth"
	"challengehub-backend/internal/config"
	"challengehub-backend/internal/database"
	"challengehub-backend/internal/models"
	"challengehub-backend/internal/notify"
	"challengehub-backend/internal/sso"
)

func main() {
	cfg := config.Load()

	dbPath := cfg.DBPath
	if !filepath.IsAbs(dbPath) {
		cwd, _ := os.Getwd()
		dbPath = filepath.Join(cwd, dbPath)
	}

	// Initialize database
	log.Printf("Initializing database at %s", dbPath)
	if err := database.Open(database.Config{Path: dbPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Create default admin user if no users exist
	if err := createDefaultAdminIfNeeded(); err != nil {
		log.Printf("Warning: failed to create default admin: %v", err)
	}

	// Rate limiter over persistent counters, budgets from settings
	limiter := auth.NewLimiter(database.NewRateLimitRepo())
	applyRateLimitSettings(limiter)

	authSvc := auth.NewService(limiter)
	csrf := auth.NewCSRFProtection()
	hub := notify.NewHub()
	authSvc.SetNotifier(hub)

	// Optional OIDC social login
	var oidcClient *sso.Client
	if cfg.OIDCEnabled() {
		client, err := sso.NewClient(context.Background(), cfg)
		if err != nil {
			log.Printf("Warning: OIDC disabled: %v", err)
		} else {
			oidcClient = client
			log.Printf("OIDC social login enabled (issuer %s)", cfg.OIDCIssuerURL)
		}
	}

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, auth.CSRFHeader},
		AllowCredentials: true,
	}))

	// API routes
	apiGroup := e.Group("/api")
	api.RegisterRoutes(apiGroup, authSvc, csrf, hub, oidcClient)

	// Expired sessions and remember tokens are purged in the background
	go cleanupLoop()

	log.Printf("Starting ChallengeHub backend on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// applyRateLimitSettings overrides the limiter's default budgets with
// values from the settings table
func applyRateLimitSettings(limiter *auth.Limiter) {
	settings := database.NewSettingsRepo()

	if max, err := settings.GetInt(database.SettingLoginMaxAttempts); err == nil && max > 0 {
		if window, err := settings.GetInt(database.SettingLoginWindowSeconds); err == nil && window > 0 {
			limiter.SetLimit(auth.ActionLogin, max, time.Duration(window)*time.Second)
		}
	}
	if max, err := settings.GetInt(database.SettingRegisterMaxAttempts); err == nil && max > 0 {
		if window, err := settings.GetInt(database.SettingRegisterWindowSeconds); err == nil && window > 0 {
			limiter.SetLimit(auth.ActionRegister, max, time.Duration(window)*time.Second)
		}
	}
}

// cleanupLoop periodically removes expired sessions, remember tokens and
// stale rate-limit counters
func cleanupLoop() {
	sessionRepo := database.NewSessionRepo()
	rememberRepo := database.NewRememberRepo()
	rateLimitRepo := database.NewRateLimitRepo()

	ticker := time.NewTicker(15 * time.Minute)
	for range ticker.C {
		if n, err := sessionRepo.DeleteExpired(); err == nil && n > 0 {
			log.Printf("Cleaned up %d expired sessions", n)
		}
		if n, err := rememberRepo.DeleteExpired(); err == nil && n > 0 {
			log.Printf("Cleaned up %d expired remember tokens", n)
		}
		rateLimitRepo.DeleteStale(time.Now().Add(-24 * time.Hour))
	}
}

// createDefaultAdminIfNeeded creates a default admin user if no users exist
func createDefaultAdminIfNeeded() error {
	userRepo := database.NewUserRepo()

	count, err := userRepo.Count()
	if err != nil {
		return err
	}

	if count > 0 {
		return nil // Users already exist
	}

	// Create default admin
	log.Println("Creating default admin user (admin@localhost/admin12345) - CHANGE THIS PASSWORD!")

	passwordHash, err := auth.HashPassword("admin12345")
	if err != nil {
		return err
	}

	admin := &models.User{
		Pseudo:       "admin",
		Email:        "admin@localhost",
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		AuthType:     models.AuthTypeLocal,
		Active:       true,
	}

	return userRepo.Create(admin)
}
