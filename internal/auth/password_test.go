// internal/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := CreateHash("hunter2", Params)
	require.NoError(t, err)

	match, err := ComparePasswordAndHash("hunter2", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestPasswordHashMismatch(t *testing.T) {
	hash, err := CreateHash("hunter2", Params)
	require.NoError(t, err)

	match, err := ComparePasswordAndHash("*******", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

// Hashes are salted: the same password never encodes to the same string.
func TestPasswordHashSalted(t *testing.T) {
	first, err := CreateHash("hunter2", Params)
	require.NoError(t, err)
	second, err := CreateHash("hunter2", Params)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestComparePasswordAndHashInvalidFormat(t *testing.T) {
	_, err := ComparePasswordAndHash("hunter2", "not-an-encoded-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
