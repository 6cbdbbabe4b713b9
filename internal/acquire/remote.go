package acquire

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
)

// ErrUnreachable is returned when a remote source cannot be listed
var ErrUnreachable = errors.New("source unreachable")

// CheckSource verifies that source can be acquired without fetching it. A
// local directory is always acceptable; a URL is checked by listing its
// references.
func CheckSource(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", ErrEmptySource
	}
	if IsLocal(source) {
		return "local directory", nil
	}

	remote := gogit.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{source},
	})
	refs, err := remote.ListContext(ctx, &gogit.ListOptions{})
	switch {
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		return "", fmt.Errorf("%w: %s: empty repository", ErrUnreachable, source)
	case err != nil:
		return "", fmt.Errorf("%w: %s: %v", ErrUnreachable, source, err)
	}
	return fmt.Sprintf("remote with %d refs", len(refs)), nil
}
