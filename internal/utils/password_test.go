package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_VerifiesOnlyOriginal(t *testing.T) {
	for _, pw := range []string{"pw", "correct horse battery staple", "ünïcødé", ""} {
		hash, err := HashPassword(pw)
		require.NoError(t, err)

		assert.True(t, CheckPassword(pw, hash), "password %q", pw)
		assert.False(t, CheckPassword(pw+"x", hash), "password %q", pw)
	}
}

func TestHashPassword_SaltedAndFixedCost(t *testing.T) {
	first, err := HashPassword("pw")
	require.NoError(t, err)
	second, err := HashPassword("pw")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "$2a$10$"))

	cost, err := bcrypt.Cost([]byte(first))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("pw", "not-a-hash"))
	assert.False(t, CheckPassword("pw", ""))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 80))
	require.Error(t, err)
}
