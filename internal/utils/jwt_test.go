package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	tok, err := NewAdminToken("secret", "admin", 60)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), tok.Exp, 5*time.Second)

	role, err := ParseAdminToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}

func TestAdminTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAdminToken("secret", "analyst", 60)
	require.NoError(t, err)

	_, err = ParseAdminToken("other-secret", tok.Token)
	assert.Error(t, err)
}

func TestAdminTokenRejectsExpired(t *testing.T) {
	tok, err := NewAdminToken("secret", "admin", -1)
	require.NoError(t, err)

	_, err = ParseAdminToken("secret", tok.Token)
	assert.Error(t, err)
}

func TestAdminTokenRejectsUnknownRole(t *testing.T) {
	claims := jwt.MapClaims{
		"role": "superuser",
		"exp":  time.Now().UTC().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseAdminToken("secret", signed)
	assert.Error(t, err)
}

func TestAdminTokenRejectsUnsigned(t *testing.T) {
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().UTC().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAdminToken("secret", unsigned)
	assert.Error(t, err)
}
