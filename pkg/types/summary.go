package types

import (
	"fmt"
	"strings"
)

const (
	// SentinelEmptyOrUnreadable marks files that were empty, whitespace-only,
	// unreadable, or not valid UTF-8. No backend call is made for them.
	SentinelEmptyOrUnreadable = "[empty or binary file]"

	// SentinelNoContent marks a file whose per-chunk phase produced nothing
	SentinelNoContent = "[no content to summarize]"

	// DegradedPrefix starts every degraded backend result
	DegradedPrefix = "[summarization failed: "
)

// Degraded builds the placeholder text for a failed backend call
func Degraded(provider string, cause error) string {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	if provider == "" {
		return fmt.Sprintf("%s%s]", DegradedPrefix, msg)
	}
	return fmt.Sprintf("%s%s: %s]", DegradedPrefix, provider, msg)
}

// IsDegraded reports whether text is a degraded backend result
func IsDegraded(text string) bool {
	return strings.HasPrefix(text, DegradedPrefix)
}

// IsSentinel reports whether text is one of the fixed sentinel markers
func IsSentinel(text string) bool {
	return text == SentinelEmptyOrUnreadable || text == SentinelNoContent
}

// SummaryEntry is one path/summary pair of a SummaryMap
type SummaryEntry struct {
	Path    string
	Summary string
}

// SummaryMap is an insertion-ordered map from relative path to summary.
// The zero value is ready to use. Read methods accept a nil *SummaryMap; Set
// does not. It is not safe for concurrent use.
type SummaryMap struct {
	keys   []string
	values map[string]string
}

// NewSummaryMap creates an empty SummaryMap
func NewSummaryMap() *SummaryMap {
	return &SummaryMap{values: make(map[string]string)}
}

// Set stores summary under path. Replacing an existing key keeps its position.
func (m *SummaryMap) Set(path, summary string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[path]; !ok {
		m.keys = append(m.keys, path)
	}
	m.values[path] = summary
}

// Get returns the summary stored under path
func (m *SummaryMap) Get(path string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[path]
	return v, ok
}

// Len returns the number of entries
func (m *SummaryMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the paths in insertion order
func (m *SummaryMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns the path/summary pairs in insertion order
func (m *SummaryMap) Entries() []SummaryEntry {
	if m == nil {
		return nil
	}
	out := make([]SummaryEntry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, SummaryEntry{Path: k, Summary: m.values[k]})
	}
	return out
}
