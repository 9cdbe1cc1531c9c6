package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessCodeShape(t *testing.T) {
	// Shape only. The ~45.7M code space is small enough that raw draws DO
	// collide at this volume (birthday bound); uniqueness is the
	// repository's job, backed by the unique column. See
	// TestCreateAssignsUniqueCodes and TestCreateRetriesOnAccessCodeCollision.
	for i := 0; i < 10000; i++ {
		code, err := NewAccessCode()
		require.NoError(t, err)
		require.True(t, ValidAccessCode(code), "code %q", code)
	}
}

func TestNormalizeAccessCode(t *testing.T) {
	assert.Equal(t, "ABCD12", NormalizeAccessCode("  abcd12 "))
	assert.Equal(t, "ABCD12", NormalizeAccessCode("ABCD12"))
}

func TestValidAccessCode(t *testing.T) {
	for _, bad := range []string{"", "ABC12", "ABCDE1", "abcd12", "ABCD1X", "ABCD123", " ABCD12"} {
		assert.False(t, ValidAccessCode(bad), "%q", bad)
	}
	assert.True(t, ValidAccessCode("QWER07"))
}
