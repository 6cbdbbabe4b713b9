package acquire

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSource(t *testing.T) {
	ctx := context.Background()

	t.Run("local directory", func(t *testing.T) {
		detail, err := CheckSource(ctx, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "local directory", detail)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := CheckSource(ctx, " ")
		assert.ErrorIs(t, err, ErrEmptySource)
	})

	t.Run("missing remote", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "no-such-repo")
		_, err := CheckSource(ctx, "file://"+missing)
		assert.ErrorIs(t, err, ErrUnreachable)
	})

	t.Run("remote refs", func(t *testing.T) {
		if _, err := exec.LookPath("git-upload-pack"); err != nil {
			t.Skip("git-upload-pack not available for the file transport")
		}
		origin := initRepo(t)

		detail, err := CheckSource(ctx, "file://"+origin)
		require.NoError(t, err)
		assert.Contains(t, detail, "remote with")
	})
}
