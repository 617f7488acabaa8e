package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomHandle(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-zA-Z0-9]+$`)

	for _, length := range []int{4, 10, 20} {
		handle, err := RandomHandle(length)
		require.NoError(t, err)
		assert.Len(t, handle, length)
		assert.Regexp(t, pattern, handle)
	}
}

func TestRandomHandleVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		handle, err := RandomHandle(10)
		require.NoError(t, err)
		seen[handle] = true
	}
	assert.Len(t, seen, 50, "candidates must not repeat in practice")
}
