//go:build windows

package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessMatchesOwnImage(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	assert.True(t, processMatches(os.Getpid(), filepath.Base(exe)))
	assert.False(t, processMatches(os.Getpid(), "challenge-server"))
}
