package database

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"challengehub-backend/internal/models"
)

func TestMain(m *testing.M) {
	if err := Open(Config{Path: ":memory:"}); err != nil {
		fmt.Fprintln(os.Stderr, "failed to open test database:", err)
		os.Exit(1)
	}
	code := m.Run()
	Close()
	os.Exit(code)
}

var testUserSeq int

// createTestUser inserts a user with a unique pseudo/email pair
func createTestUser(t *testing.T) *models.User {
	t.Helper()
	testUserSeq++

	user := &models.User{
		Pseudo:   fmt.Sprintf("tester%d", testUserSeq),
		Email:    fmt.Sprintf("tester%d@example.com", testUserSeq),
		Role:     models.RoleMember,
		AuthType: models.AuthTypeLocal,
		Active:   true,
	}
	require.NoError(t, NewUserRepo().Create(user))
	require.NotZero(t, user.ID)
	return user
}

func TestMigrationsAreIdempotent(t *testing.T) {
	// Open already ran them once; a second pass must be a no-op
	require.NoError(t, migrate())

	var count int
	require.NoError(t, DB.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	require.Equal(t, len(migrations), count)
}

func TestDefaultSettingsSeeded(t *testing.T) {
	settings := NewSettingsRepo()

	enabled, err := settings.GetBool(SettingRegistrationEnabled)
	require.NoError(t, err)
	require.True(t, enabled)

	timeout, err := settings.GetInt(SettingSessionTimeout)
	require.NoError(t, err)
	require.Equal(t, 60, timeout)

	maxAttempts, err := settings.GetInt(SettingLoginMaxAttempts)
	require.NoError(t, err)
	require.Equal(t, 5, maxAttempts)
}
