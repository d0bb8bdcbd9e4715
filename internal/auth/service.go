package auth

import (
	"errors"
	"fmt"
	"time"

	"challengehub-backend/internal/database"
	"challengehub-backend/internal/models"
)

var (
	// ErrInvalidCredentials covers unknown identifier and wrong password
	// alike so a caller cannot probe which accounts exist
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrRateLimited          = errors.New("too many attempts")
)

// RateLimitedError carries retry guidance alongside ErrRateLimited
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// Notifier receives live notification pushes for connected users
type Notifier interface {
	Push(userID int64, payload interface{})
}

// Service handles authentication logic
type Service struct {
	userRepo     *database.UserRepo
	sessionRepo  *database.SessionRepo
	rememberRepo *database.RememberRepo
	settingsRepo *database.SettingsRepo
	auditRepo    *database.AuditRepo
	notifRepo    *database.NotificationRepo
	limiter      *Limiter
	notifier     Notifier
}

// NewService creates a new auth service
func NewService(limiter *Limiter) *Service {
	return &Service{
		userRepo:     database.NewUserRepo(),
		sessionRepo:  database.NewSessionRepo(),
		rememberRepo: database.NewRememberRepo(),
		settingsRepo: database.NewSettingsRepo(),
		auditRepo:    database.NewAuditRepo(),
		notifRepo:    database.NewNotificationRepo(),
		limiter:      limiter,
	}
}

// SetNotifier wires the live notification feed; nil disables pushes
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// LoginResult is everything a transport handler needs to finish a
// successful authentication: cookie values and the redirect target
type LoginResult struct {
	User           *models.User
	Token          string
	ExpiresAt      time.Time
	RememberToken  string // empty unless persistence was requested
	RememberExpiry time.Time
	RedirectTo     string
}

// Login authenticates a user and establishes a fresh session.
// presentedToken is the session token the request carried, if any; it is
// retired on success so the session identifier always changes at login.
func (s *Service) Login(req models.LoginRequest, presentedToken, ipAddress, userAgent string) (*LoginResult, error) {
	email := NormalizeEmail(req.Email)

	allowed, retryAfter, err := s.limiter.Allow(ActionLogin, email)
	if err != nil {
		// Fail closed: a broken counter store must not open the door to
		// brute force
		s.auditRepo.Log(0, email, models.ActionLogin, models.OutcomeRateLimited,
			map[string]string{"reason": "counter store error"}, ipAddress)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}
	if !allowed {
		s.auditRepo.Log(0, email, models.ActionLogin, models.OutcomeRateLimited, nil, ipAddress)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	user, err := s.userRepo.GetActiveByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			// Burn a hash comparison so a miss costs the same as a wrong
			// password
			verifyDummy(req.Password)
			s.auditRepo.Log(0, email, models.ActionLogin, models.OutcomeFailure, nil, ipAddress)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(req.Password, user.PasswordHash) {
		s.auditRepo.Log(user.ID, email, models.ActionLogin, models.OutcomeFailure, nil, ipAddress)
		return nil, ErrInvalidCredentials
	}

	s.limiter.Reset(ActionLogin, email)

	return s.EstablishSession(user, presentedToken, req.Remember, req.Redirect,
		ipAddress, userAgent, models.ActionLogin)
}

// Register validates and creates a new account, then authenticates it.
// Validation and uniqueness failures come back as FieldErrors.
func (s *Service) Register(req *models.RegisterRequest, presentedToken, ipAddress, userAgent string) (*LoginResult, error) {
	if enabled, err := s.settingsRepo.GetBool(database.SettingRegistrationEnabled); err == nil && !enabled {
		return nil, ErrRegistrationDisabled
	}

	email := NormalizeEmail(req.Email)

	allowed, retryAfter, err := s.limiter.Allow(ActionRegister, email)
	if err != nil {
		s.auditRepo.Log(0, email, models.ActionRegister, models.OutcomeRateLimited,
			map[string]string{"reason": "counter store error"}, ipAddress)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}
	if !allowed {
		s.auditRepo.Log(0, email, models.ActionRegister, models.OutcomeRateLimited, nil, ipAddress)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	if errs := ValidateRegistration(req); errs != nil {
		return nil, errs
	}

	// Uniqueness is reported per field so the form can mark both
	conflicts := FieldErrors{}
	if taken, err := s.userRepo.ExistsByPseudo(req.Pseudo); err != nil {
		return nil, err
	} else if taken {
		conflicts["pseudo"] = CodeTaken
	}
	if taken, err := s.userRepo.ExistsByEmail(req.Email); err != nil {
		return nil, err
	} else if taken {
		conflicts["email"] = CodeTaken
	}
	if len(conflicts) > 0 {
		s.auditRepo.Log(0, req.Email, models.ActionRegister, models.OutcomeFailure,
			map[string]string{"reason": "conflict"}, ipAddress)
		return nil, conflicts
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Pseudo:       req.Pseudo,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleMember,
		AuthType:     models.AuthTypeLocal,
		Active:       true,
	}
	if err := s.userRepo.Create(user); err != nil {
		// A concurrent registration can still hit the unique constraints;
		// that surfaces here as a generic persistence failure
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.limiter.Reset(ActionRegister, email)

	s.Notify(user.ID, models.NotificationWelcome,
		fmt.Sprintf("Welcome to ChallengeHub, %s!", user.Pseudo))

	// Auto-login: the login success path minus the credential check
	return s.EstablishSession(user, presentedToken, req.Remember, req.Redirect,
		ipAddress, userAgent, models.ActionRegister)
}

// EstablishSession is the shared success path for login, registration,
// remember-token restoration and OIDC: retire any presented session,
// issue a fresh one, optionally issue a remember token, and audit.
func (s *Service) EstablishSession(user *models.User, presentedToken string, remember bool, redirect, ipAddress, userAgent, action string) (*LoginResult, error) {
	if presentedToken != "" {
		s.sessionRepo.DeleteByToken(presentedToken)
	}

	timeoutMinutes, err := s.settingsRepo.GetInt(database.SettingSessionTimeout)
	if err != nil || timeoutMinutes <= 0 {
		timeoutMinutes = 60
	}
	duration := time.Duration(timeoutMinutes) * time.Minute

	token, session, err := s.sessionRepo.Create(user.ID, ipAddress, userAgent, duration)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{
		User:       user,
		Token:      token,
		ExpiresAt:  session.ExpiresAt,
		RedirectTo: SanitizeRedirect(redirect),
	}

	if remember {
		ttlDays, err := s.settingsRepo.GetInt(database.SettingRememberTTLDays)
		if err != nil || ttlDays <= 0 {
			ttlDays = 30
		}
		plain, expiry, err := s.rememberRepo.Issue(user.ID, time.Duration(ttlDays)*24*time.Hour)
		if err != nil {
			return nil, err
		}
		result.RememberToken = plain
		result.RememberExpiry = expiry
	}

	s.userRepo.UpdateLastLogin(user.ID)
	s.auditRepo.Log(user.ID, user.Email, action, models.OutcomeSuccess, nil, ipAddress)

	return result, nil
}

// Logout invalidates the session and revokes the user's remember token
func (s *Service) Logout(token, ipAddress string) error {
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return err
	}

	s.rememberRepo.RevokeUser(session.UserID)
	if err := s.sessionRepo.Delete(session.ID); err != nil {
		return err
	}

	s.auditRepo.Log(session.UserID, "", models.ActionLogout, models.OutcomeSuccess, nil, ipAddress)
	return nil
}

// ValidateToken validates a session token and returns the user
func (s *Service) ValidateToken(token string) (*models.User, *models.Session, error) {
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		return nil, nil, err
	}

	if !user.Active {
		return nil, nil, ErrUserInactive
	}

	return user, session, nil
}

// AuthenticateRemember restores a session from a persistent-login token.
// The remember token is rotated: a new one replaces the presented one.
func (s *Service) AuthenticateRemember(token, ipAddress, userAgent string) (*LoginResult, error) {
	userID, err := s.rememberRepo.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		s.rememberRepo.RevokeUser(userID)
		return nil, ErrUserInactive
	}

	return s.EstablishSession(user, "", true, "", ipAddress, userAgent, models.ActionRememberAuth)
}

// GetUserSessions returns all sessions for a user
func (s *Service) GetUserSessions(userID int64) ([]*models.Session, error) {
	return s.sessionRepo.GetByUserID(userID)
}

// RevokeSession revokes a specific session
func (s *Service) RevokeSession(sessionID int64) error {
	return s.sessionRepo.Delete(sessionID)
}

// Notify records a notification and pushes the new unread count to any
// live feed connection the user has open
func (s *Service) Notify(userID int64, notifType, message string) {
	if _, err := s.notifRepo.Create(userID, notifType, message); err != nil {
		return
	}
	if s.notifier == nil {
		return
	}
	if count, err := s.notifRepo.UnreadCount(userID); err == nil {
		s.notifier.Push(userID, map[string]interface{}{"unread_count": count})
	}
}
