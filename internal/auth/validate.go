package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"challengehub-backend/internal/models"
)

// Field error codes reported to the client
const (
	CodeRequired    = "required"
	CodeFormat      = "format"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodeMismatch    = "mismatch"
	CodeNotAccepted = "not_accepted"
	CodeTaken       = "taken"
)

// FieldErrors maps form fields to error codes. It satisfies error so a
// validation failure can travel through the normal error return.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var pseudoPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const (
	pseudoMinLen   = 3
	pseudoMaxLen   = 32
	passwordMinLen = 8
	nameMaxLen     = 64
)

// NormalizeEmail lowercases and trims an email identifier
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address parses as a bare RFC 5322 address
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// validatePassword enforces the composition policy: minimum length with at
// least one letter and one digit
func validatePassword(password string) string {
	if password == "" {
		return CodeRequired
	}
	if len(password) < passwordMinLen {
		return CodeTooShort
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return CodeFormat
	}

	return ""
}

// ValidateRegistration checks field constraints on a registration request
// and normalizes the pseudo and email in place. Uniqueness is checked
// separately against the user store.
func ValidateRegistration(req *models.RegisterRequest) FieldErrors {
	errs := FieldErrors{}

	req.Pseudo = strings.TrimSpace(req.Pseudo)
	req.Email = NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	switch {
	case req.Pseudo == "":
		errs["pseudo"] = CodeRequired
	case len(req.Pseudo) < pseudoMinLen:
		errs["pseudo"] = CodeTooShort
	case len(req.Pseudo) > pseudoMaxLen:
		errs["pseudo"] = CodeTooLong
	case !pseudoPattern.MatchString(req.Pseudo):
		errs["pseudo"] = CodeFormat
	}

	switch {
	case req.Email == "":
		errs["email"] = CodeRequired
	case !ValidEmail(req.Email):
		errs["email"] = CodeFormat
	}

	if code := validatePassword(req.Password); code != "" {
		errs["password"] = code
	}
	if req.PasswordConfirm != req.Password {
		errs["password_confirm"] = CodeMismatch
	}

	if len(req.FirstName) > nameMaxLen {
		errs["first_name"] = CodeTooLong
	}
	if len(req.LastName) > nameMaxLen {
		errs["last_name"] = CodeTooLong
	}

	if !req.AcceptTerms {
		errs["accept_terms"] = CodeNotAccepted
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SanitizeRedirect restricts a post-login redirect target to a local path.
// Anything else falls back to the default landing location.
func SanitizeRedirect(target string) string {
	const defaultTarget = "/home"

	if target == "" {
		return defaultTarget
	}
	// Local paths only: no scheme-relative ("//host") or absolute URLs
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return defaultTarget
	}
	if strings.ContainsAny(target, "\r\n") {
		return defaultTarget
	}
	return target
}
