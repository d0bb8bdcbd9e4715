package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesRepoDefaultsToEmptyObject(t *testing.T) {
	repo := NewPreferencesRepo()
	user := createTestUser(t)

	prefs, err := repo.Get(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "{}", prefs.Preferences)
}

func TestPreferencesRepoSetAndGet(t *testing.T) {
	repo := NewPreferencesRepo()
	user := createTestUser(t)

	require.NoError(t, repo.Set(user.ID, `{"theme":"dark"}`))

	prefs, err := repo.Get(user.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, prefs.Preferences)

	// Set replaces, it does not merge
	require.NoError(t, repo.Set(user.ID, `{"theme":"light","lang":"fr"}`))

	prefs, err = repo.Get(user.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light","lang":"fr"}`, prefs.Preferences)
}
