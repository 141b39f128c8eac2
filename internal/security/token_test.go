package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("test-secret", 42, "admin", "sess-1", "superadmin", time.Hour)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseAccessToken(token, "test-secret")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.PrincipalID)
	assert.Equal(t, "admin", claims.PrincipalType)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "superadmin", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("test-secret", 1, "user", "sess-2", "user", time.Hour)
	assert.NoError(t, err)

	_, err = ParseAccessToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseAccessToken_Expired(t *testing.T) {
	token, err := GenerateAccessToken("test-secret", 1, "user", "sess-3", "user", -time.Minute)
	assert.NoError(t, err)

	_, err = ParseAccessToken(token, "test-secret")
	assert.Error(t, err)
}

func TestParseAccessToken_Garbage(t *testing.T) {
	_, err := ParseAccessToken("not.a.token", "test-secret")
	assert.Error(t, err)
}

func TestGenerateRefreshToken(t *testing.T) {
	token, hash, err := GenerateRefreshToken(64)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Len(t, hash, 32)
	assert.Equal(t, hash, HashRefreshToken(token))

	other, _, err := GenerateRefreshToken(64)
	assert.NoError(t, err)
	assert.NotEqual(t, token, other)
}
