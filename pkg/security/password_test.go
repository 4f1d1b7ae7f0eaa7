package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wishboardapp/wishboard-backend/pkg/config"
)

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep the test fast; production values come from env.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple", testPasswordConfig())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := VerifyPassword("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("", testPasswordConfig())
	assert.Error(t, err)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "$bcrypt$not-argon")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestHashesAreSalted(t *testing.T) {
	cfg := testPasswordConfig()
	first, err := HashPassword("same input", cfg)
	require.NoError(t, err)
	second, err := HashPassword("same input", cfg)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
