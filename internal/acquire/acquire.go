// Package acquire materializes the repository to document into a fresh local
// directory and removes it afterwards.
//
// A source that names an existing local directory is copied; anything else is
// treated as a git URL and cloned with go-git. The destination never
// overwrites an existing path: UniquePath picks the first free sibling.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

var (
	// ErrEmptySource is returned when no repository was named
	ErrEmptySource = errors.New("source cannot be empty")
	// ErrCloneFailed wraps go-git clone failures
	ErrCloneFailed = errors.New("clone failed")
	// ErrCopyFailed wraps local copy failures
	ErrCopyFailed = errors.New("copy failed")
)

// UniquePath returns the absolute form of base when nothing exists there,
// otherwise the first of base_1, base_2, ... that does not exist.
func UniquePath(base string) (string, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", base, err)
	}
	abs = strings.TrimRight(abs, string(filepath.Separator))
	if !exists(abs) {
		return abs, nil
	}
	for i := 1; ; i++ {
		candidate := abs + "_" + strconv.Itoa(i)
		if !exists(candidate) {
			return candidate, nil
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// Workspace is a materialized copy of the source
type Workspace struct {
	Path   string // Absolute root of the copy
	Source string
	Cloned bool // True when fetched with git rather than copied
	Keep   bool // Cleanup leaves the tree in place
}

// Cleanup removes the workspace unless Keep is set. It reports whether the
// tree was removed.
func (w *Workspace) Cleanup() (bool, error) {
	if w == nil || w.Path == "" || w.Keep {
		return false, nil
	}
	if err := os.RemoveAll(w.Path); err != nil {
		return false, fmt.Errorf("remove workspace %s: %w", w.Path, err)
	}
	return true, nil
}

// Acquirer fetches sources into workspaces
type Acquirer struct {
	Depth    int       // Clone depth; 0 fetches full history
	SkipDirs []string  // Directory names not copied from local sources
	Keep     bool      // Keep workspaces after Cleanup
	Progress io.Writer // Optional git progress output
}

// New returns an Acquirer performing shallow clones
func New() *Acquirer {
	return &Acquirer{Depth: 1}
}

// IsLocal reports whether source names an existing local directory
func IsLocal(source string) bool {
	info, err := os.Stat(source)
	return err == nil && info.IsDir()
}

// Acquire materializes source at UniquePath(dest). On failure any partial
// destination is removed.
func (a *Acquirer) Acquire(ctx context.Context, source, dest string) (*Workspace, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	path, err := UniquePath(dest)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{Path: path, Source: source, Keep: a.Keep}
	if IsLocal(source) {
		err = a.copyTree(ctx, source, path)
	} else {
		ws.Cloned = true
		err = a.clone(ctx, source, path)
	}
	if err != nil {
		_ = os.RemoveAll(path)
		return nil, err
	}
	return ws, nil
}

func (a *Acquirer) clone(ctx context.Context, url, path string) error {
	opts := &gogit.CloneOptions{
		URL:      url,
		Depth:    a.Depth,
		Progress: a.Progress,
	}
	if _, err := gogit.PlainCloneContext(ctx, path, false, opts); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCloneFailed, url, err)
	}
	return nil
}

// copyTree copies regular files and directories of src into dst, recreating
// symlinks as links. Directories named in SkipDirs are not copied, and dst
// itself is never entered when it lies inside src.
func (a *Acquirer) copyTree(ctx context.Context, src, dst string) error {
	skip := make(map[string]struct{}, len(a.SkipDirs))
	for _, name := range a.SkipDirs {
		skip[name] = struct{}{}
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCopyFailed, src, err)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if _, ok := skip[d.Name()]; ok && rel != "." {
				return filepath.SkipDir
			}
			if abs, err := filepath.Abs(path); err == nil && abs == absDst {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0755)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCopyFailed, src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
