package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, h)
	assert.NotEqual(t, "Secret123", h)

	assert.True(t, CheckPassword(h, "Secret123"))
	assert.False(t, CheckPassword(h, "secret123"))
	assert.False(t, CheckPassword(h, ""))
}

func TestCheckPassword_UnknownScheme(t *testing.T) {
	t.Parallel()

	assert.False(t, CheckPassword("$argon2id$v=19$m=65536$abc", "Secret123"))
	assert.False(t, CheckPassword("plaintext", "plaintext"))
	assert.False(t, CheckPassword("", "Secret123"))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("Secret123")
	require.NoError(t, err)
	b, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
