package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"challengehub-backend/internal/models"
)

func TestUserRepoCreateAndGet(t *testing.T) {
	repo := NewUserRepo()
	user := createTestUser(t)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Pseudo, byID.Pseudo)
	assert.Equal(t, user.Email, byID.Email)
	assert.True(t, byID.Active)

	byEmail, err := repo.GetByEmail(user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byPseudo, err := repo.GetByPseudo(user.Pseudo)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPseudo.ID)
}

func TestUserRepoNotFound(t *testing.T) {
	repo := NewUserRepo()

	_, err := repo.GetByID(999999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoUniqueConstraints(t *testing.T) {
	repo := NewUserRepo()
	user := createTestUser(t)

	dup := &models.User{
		Pseudo:   user.Pseudo,
		Email:    user.Email,
		Role:     models.RoleMember,
		AuthType: models.AuthTypeLocal,
		Active:   true,
	}
	assert.Error(t, repo.Create(dup))
}

func TestUserRepoGetActiveByEmail(t *testing.T) {
	repo := NewUserRepo()
	user := createTestUser(t)

	found, err := repo.GetActiveByEmail(user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	user.Active = false
	require.NoError(t, repo.Update(user))

	// An inactive account is indistinguishable from a missing one
	_, err = repo.GetActiveByEmail(user.Email)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepoUpdate(t *testing.T) {
	repo := NewUserRepo()
	user := createTestUser(t)

	user.FirstName = "Marie"
	user.Role = models.RoleAdmin
	require.NoError(t, repo.Update(user))

	updated, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marie", updated.FirstName)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestUserRepoUpdateMissingUser(t *testing.T) {
	repo := NewUserRepo()
	assert.ErrorIs(t, repo.Update(&models.User{ID: 999999, Pseudo: "ghost", Email: "ghost@example.com"}), ErrUserNotFound)
}

func TestUserRepoExists(t *testing.T) {
	repo := NewUserRepo()
	user := createTestUser(t)

	taken, err := repo.ExistsByPseudo(user.Pseudo)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByEmail(user.Email)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByPseudo("nobody-" + user.Pseudo)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepoUpdateLastLogin(t *testing.T) {
	repo := NewUserRepo()
	user := createTestUser(t)
	require.True(t, user.LastLogin.IsZero())

	require.NoError(t, repo.UpdateLastLogin(user.ID))

	updated, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.False(t, updated.LastLogin.IsZero())
}
