package types

import (
	"path/filepath"
	"strings"
)

// FileRecord describes a file selected for summarization
type FileRecord struct {
	Path      string // Absolute filesystem path
	RelPath   string // Root-relative path using forward slashes
	Size      int64  // Size in bytes at discovery time
	Extension string // Lowercased, with leading dot
}

// NormalizeExtension lowercases ext and ensures a leading dot.
// Returns "" for blank input.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ExtensionOf returns the normalized extension of a file name
func ExtensionOf(name string) string {
	return NormalizeExtension(filepath.Ext(name))
}

// Validate checks if the record is well formed
func (f *FileRecord) Validate() error {
	if f.Path == "" || f.RelPath == "" {
		return ErrEmptyPath
	}
	if f.Size < 0 {
		return ErrNegativeSize
	}
	if f.Extension != "" && !strings.HasPrefix(f.Extension, ".") {
		return ErrInvalidExtension
	}
	return nil
}
