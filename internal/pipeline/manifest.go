package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ManifestCandidates are the top-level files quoted in the report header
var ManifestCandidates = []string{
	"requirements.txt", "Pipfile", "pyproject.toml", "package.json", "go.mod", "Gemfile",
}

const (
	manifestReadBytes   = 2000
	manifestSampleChars = 1000
)

// DetectManifest returns excerpts of the manifest files present directly
// under root, one block per file separated by a blank line. A candidate that
// exists but cannot be read is listed by name only. The result is empty when
// no candidate exists.
func DetectManifest(root string) string {
	var blocks []string
	for _, name := range ManifestCandidates {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		sample, err := readSample(path)
		if err != nil {
			blocks = append(blocks, name)
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s (sample):\n%s", name, sample))
	}
	return strings.Join(blocks, "\n\n")
}

// readSample reads the head of path and returns its first characters
func readSample(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, manifestReadBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head := buf[:n]

	// The byte cap may cut the final rune
	if n == manifestReadBytes {
		for i := 0; i < utf8.UTFMax-1 && len(head) > 0 && !utf8.Valid(head); i++ {
			head = head[:len(head)-1]
		}
	}
	if !utf8.Valid(head) {
		return "", fmt.Errorf("%s: not valid UTF-8", path)
	}

	text := string(head)
	if utf8.RuneCountInString(text) > manifestSampleChars {
		text = string([]rune(text)[:manifestSampleChars])
	}
	return text, nil
}
