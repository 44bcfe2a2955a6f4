package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseToken(t *testing.T) {
	raw, err := SignToken("secret", 42, 0)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	id, err := ParseToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestParseToken_WrongSecret(t *testing.T) {
	raw, err := SignToken("secret", 42, 0)
	require.NoError(t, err)

	_, err = ParseToken("other", raw)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestParseToken_Garbage(t *testing.T) {
	for _, raw := range []string{"", "x", "a.b.c"} {
		_, err := ParseToken("secret", raw)
		assert.ErrorIs(t, err, ErrBadToken, "raw=%q", raw)
	}
}

func TestSignToken_ExpiryClaim(t *testing.T) {
	// Non-positive ttl means no expiry claim at all.
	raw, err := SignToken("secret", 42, -time.Minute)
	require.NoError(t, err)
	id, err := ParseToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	raw, err = SignToken("secret", 42, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("secret", raw)
	assert.NoError(t, err)

	// A token past its exp stops parsing.
	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 42,
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	raw, err = stale.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseToken("secret", raw)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestSignToken_DistinctPerCall(t *testing.T) {
	// Two sessions minted back to back, same user and same second, must
	// still be distinguishable so one can be revoked without the other.
	a, err := SignToken("secret", 42, 0)
	require.NoError(t, err)
	b, err := SignToken("secret", 42, 0)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashToken_StableAndHex(t *testing.T) {
	a := HashToken("some-token")
	b := HashToken("some-token")
	c := HashToken("another-token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, VerifyPassword(hash, "secret1"))
	assert.False(t, VerifyPassword(hash, "secret2"))
}
