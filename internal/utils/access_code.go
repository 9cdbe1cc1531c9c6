package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

var accessCodePattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{2}$`)

// NewAccessCode returns a random six-character access code: four uppercase
// letters followed by two digits. Codes are bearer credentials, so they are
// drawn from crypto/rand; uniqueness against existing users is the
// repository's job (unique column plus regenerate-on-conflict).
func NewAccessCode() (string, error) {
	var b strings.Builder
	b.Grow(6)
	for i := 0; i < 4; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeLetters))))
		if err != nil {
			return "", err
		}
		b.WriteByte(codeLetters[n.Int64()])
	}
	for i := 0; i < 2; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeDigits))))
		if err != nil {
			return "", err
		}
		b.WriteByte(codeDigits[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeAccessCode canonicalizes a client-supplied code for lookup.
func NormalizeAccessCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidAccessCode reports whether a normalized code matches the expected
// shape.
func ValidAccessCode(code string) bool {
	return accessCodePattern.MatchString(code)
}
