package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery1", hash)

	assert.True(t, VerifyPassword("correct horse battery1", hash))
	assert.False(t, VerifyPassword("wrong password9", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestVerifyPasswordAgainstGarbageHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything1", "not-a-bcrypt-hash"))
	assert.False(t, VerifyPassword("anything1", ""))
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same password1")
	require.NoError(t, err)
	h2, err := HashPassword("same password1")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
