// Package discovery enumerates the files of a source tree that are eligible
// for summarization.
//
// Traversal is breadth-first over an explicit Frontier. Directories whose name
// is in the exclusion set are never entered, at any depth. Files are kept when
// their extension is in the allow-set (case-insensitive). The final list is
// ordered by ascending size so cheap files are processed first.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dshills/repodoc/pkg/types"
)

var (
	// ErrRootNotFound is returned when the traversal root does not exist
	ErrRootNotFound = errors.New("root does not exist")
	// ErrRootNotDirectory is returned when the traversal root is not a directory
	ErrRootNotDirectory = errors.New("root is not a directory")
)

// DefaultExtensions lists the source extensions summarized when none are configured
var DefaultExtensions = []string{
	".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".go", ".c", ".cpp", ".hpp",
	".cs", ".rb", ".php", ".html", ".css", ".scss", ".yaml",
	".yml", ".sh", ".rs", ".prisma",
}

// DefaultExcludeDirs lists directory names skipped when none are configured
var DefaultExcludeDirs = []string{
	"node_modules", "venv", ".venv", "env", ".env",
	"build", "dist", "__pycache__", ".git",
}

// Options controls which files are discovered
type Options struct {
	ExcludeDirs    []string // Directory names (not paths) to skip at any depth
	Extensions     []string // Allowed extensions, with or without leading dot
	FollowSymlinks bool     // Descend into symlinked directories (cycle-guarded)

	// OnVisit, when set, observes every frontier visit
	OnVisit func(Visit)
}

// DefaultOptions returns options using DefaultExcludeDirs and DefaultExtensions
func DefaultOptions() Options {
	return Options{
		ExcludeDirs: append([]string(nil), DefaultExcludeDirs...),
		Extensions:  append([]string(nil), DefaultExtensions...),
	}
}

// Discover walks root breadth-first and returns eligible files sorted by
// ascending size. Ties keep discovery order.
func Discover(root string, opts Options) ([]types.FileRecord, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}

	frontier := NewFrontier(root, opts)
	var files []types.FileRecord
	for {
		visit, ok := frontier.Visit()
		if !ok {
			break
		}
		if opts.OnVisit != nil {
			opts.OnVisit(visit)
		}
		files = append(files, visit.Files...)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Size < files[j].Size
	})
	return files, nil
}

// extensionSet normalizes a list of extensions into a lookup set
func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		if ext = types.NormalizeExtension(ext); ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

// nameSet builds a lookup set of directory names
func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
