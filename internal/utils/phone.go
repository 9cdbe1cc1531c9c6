package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a phone number cannot be normalized.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone canonicalizes a client-supplied phone number to a single
// "+<digits>" form. countryCode is the calling code (e.g. "+971") used for
// local numbers; it is configuration, not a hard-coded business rule.
// Accepted inputs: "+<cc><number>", "00<cc><number>", "0<local>" and bare
// local digits. Spaces, dashes, dots and parentheses are stripped.
func NormalizePhone(raw, countryCode string) (string, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if s == "" {
		return "", ErrInvalidPhone
	}

	cc := strings.TrimPrefix(countryCode, "+")
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "00"):
		s = s[2:]
	case strings.HasPrefix(s, "0"):
		s = cc + s[1:]
	default:
		s = cc + s
	}

	if len(s) < 7 || len(s) > 15 {
		return "", ErrInvalidPhone
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return "+" + s, nil
}
