package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dshills/repodoc/pkg/types"
)

// SkipReason explains why a frontier directory yielded no entries
type SkipReason string

const (
	SkipPermission SkipReason = "permission denied"
	SkipUnreadable SkipReason = "unreadable"
	SkipVisited    SkipReason = "already visited"
)

// Visit is the result of scanning one directory from the frontier
type Visit struct {
	Dir      string
	Files    []types.FileRecord // Eligible files found directly in Dir
	Subdirs  []string           // Directories enqueued for later visits
	Excluded []string           // Subdirectory names matched by the exclusion set
	Skipped  bool
	Reason   SkipReason
	Err      error
}

// Frontier is the FIFO of directories still to be scanned
type Frontier struct {
	root    string
	queue   []string
	visited map[string]struct{}
	exclude map[string]struct{}
	allowed map[string]struct{}
	follow  bool
}

// NewFrontier creates a frontier seeded with root
func NewFrontier(root string, opts Options) *Frontier {
	return &Frontier{
		root:    root,
		queue:   []string{root},
		visited: make(map[string]struct{}),
		exclude: nameSet(opts.ExcludeDirs),
		allowed: extensionSet(opts.Extensions),
		follow:  opts.FollowSymlinks,
	}
}

// Len returns the number of directories waiting to be visited
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Visit dequeues and scans the next directory. It returns false once the
// frontier is empty. Directories that cannot be read are reported as skipped
// and never abort the traversal.
func (f *Frontier) Visit() (Visit, bool) {
	if len(f.queue) == 0 {
		return Visit{}, false
	}
	dir := f.queue[0]
	f.queue = f.queue[1:]

	v := Visit{Dir: dir}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return skipped(v, err), true
	}
	if _, seen := f.visited[resolved]; seen {
		v.Skipped = true
		v.Reason = SkipVisited
		return v, true
	}
	f.visited[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return skipped(v, err), true
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir := entry.IsDir()
		isFile := entry.Type().IsRegular()
		var size int64

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				continue // dangling link
			}
			isDir = target.IsDir() && f.follow
			isFile = target.Mode().IsRegular()
			size = target.Size()
		} else if isFile {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			size = info.Size()
		}

		switch {
		case isDir:
			if _, excluded := f.exclude[entry.Name()]; excluded {
				v.Excluded = append(v.Excluded, entry.Name())
				continue
			}
			f.queue = append(f.queue, path)
			v.Subdirs = append(v.Subdirs, path)
		case isFile:
			ext := types.ExtensionOf(entry.Name())
			if _, ok := f.allowed[ext]; !ok {
				continue
			}
			v.Files = append(v.Files, types.FileRecord{
				Path:      path,
				RelPath:   f.relPath(path),
				Size:      size,
				Extension: ext,
			})
		}
	}

	return v, true
}

// relPath returns path relative to the frontier root with forward slashes
func (f *Frontier) relPath(path string) string {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func skipped(v Visit, err error) Visit {
	v.Skipped = true
	v.Err = err
	if errors.Is(err, fs.ErrPermission) {
		v.Reason = SkipPermission
	} else {
		v.Reason = SkipUnreadable
	}
	return v
}
