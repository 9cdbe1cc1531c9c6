package utils

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// VerifySecret compares a presented admin/analyst code against the
// configured value. The configured value may be a bcrypt hash (any "$2"
// prefix) or a plain string; plain comparison is constant-time. An empty
// configured value never matches, so an unset ANALYST_CODE disables the
// analyst role entirely.
func VerifySecret(configured, presented string) bool {
	if configured == "" || presented == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}
