package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDateRange(t *testing.T) {
	t.Run("explicit bounds", func(t *testing.T) {
		start, end, err := normalizeDateRange("2025-06-01", "2025-06-30")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-01T00:00:00Z", start)
		assert.Equal(t, "2025-06-30T23:59:59Z", end)
	})

	t.Run("single day range", func(t *testing.T) {
		start, end, err := normalizeDateRange("2025-06-15", "2025-06-15")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-15T00:00:00Z", start)
		assert.Equal(t, "2025-06-15T23:59:59Z", end)
	})

	t.Run("defaults fill empty bounds", func(t *testing.T) {
		start, end, err := normalizeDateRange("", "")
		require.NoError(t, err)
		assert.NotEmpty(t, start)
		assert.NotEmpty(t, end)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, _, err := normalizeDateRange("2025-06-30", "2025-06-01")
		assert.Error(t, err)
	})

	t.Run("bad format rejected", func(t *testing.T) {
		_, _, err := normalizeDateRange("30/06/2025", "")
		assert.Error(t, err)
	})
}
