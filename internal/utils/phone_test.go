package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+971501234567", "+971501234567"},
		{"00971501234567", "+971501234567"},
		{"0501234567", "+971501234567"},
		{"501234567", "+971501234567"},
		{"+971 50 123 4567", "+971501234567"},
		{"(050) 123-4567", "+971501234567"},
		{"050.123.4567", "+971501234567"},
	}
	for _, c := range cases {
		got, err := NormalizePhone(c.in, "+971")
		require.NoError(t, err, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestNormalizePhoneRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "   ", "+971abc1234", "12345", "+9715012345678901234"} {
		_, err := NormalizePhone(bad, "+971")
		assert.ErrorIs(t, err, ErrInvalidPhone, "%q", bad)
	}
}
