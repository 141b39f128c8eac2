package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", string(hash))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("dental-admin-pw")
	assert.NoError(t, err)

	assert.True(t, VerifyPassword("dental-admin-pw", hash))
	assert.False(t, VerifyPassword("wrong-password", hash))
	assert.False(t, VerifyPassword("dental-admin-pw", []byte("not a bcrypt hash")))
}
