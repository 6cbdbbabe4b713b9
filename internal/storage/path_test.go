package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "h.db")
	got, err := ResolvePath(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)

	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err = ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultDir, DefaultFile), got)
	assert.DirExists(t, filepath.Join(home, DefaultDir))
}
