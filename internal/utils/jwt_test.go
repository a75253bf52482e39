package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "VOLUNTEER", 5)
	require.NoError(t, err)

	uid, role, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
	assert.Equal(t, "VOLUNTEER", role)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, "ADMIN", 5)
	require.NoError(t, err)

	_, _, err = ParseAccessToken("other", tok.Token)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	_, _, err := ParseAccessToken("secret", "not-a-jwt")
	assert.Error(t, err)
}

func TestHashRefreshRawIsDeterministic(t *testing.T) {
	a := HashRefreshRaw("raw-token")
	b := HashRefreshRaw("raw-token")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex SHA-256
	assert.NotEqual(t, a, HashRefreshRaw("other-token"))
}
