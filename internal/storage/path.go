package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDir is the history directory under the user's home
	DefaultDir = ".repodoc"
	// DefaultFile is the history database file inside DefaultDir
	DefaultFile = "history.db"
)

// ResolvePath returns dbPath unchanged when set, otherwise the default
// history database under the home directory, creating its directory.
func ResolvePath(dbPath string) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, DefaultDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return filepath.Join(dir, DefaultFile), nil
}
