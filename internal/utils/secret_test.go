package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifySecretPlain(t *testing.T) {
	assert.True(t, VerifySecret("hunter2", "hunter2"))
	assert.False(t, VerifySecret("hunter2", "hunter3"))
	assert.False(t, VerifySecret("", "anything"), "unset secret disables the role")
	assert.False(t, VerifySecret("hunter2", ""))
}

func TestVerifySecretBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifySecret(string(hash), "hunter2"))
	assert.False(t, VerifySecret(string(hash), "hunter3"))
	// The hash itself is not a valid presentation of the secret.
	assert.False(t, VerifySecret(string(hash), string(hash)))
}
