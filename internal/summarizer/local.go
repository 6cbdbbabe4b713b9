package summarizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	ProviderLocal     = "local"
	DefaultLocalModel = "extractive"

	localMaxLines   = 3
	localMaxLineLen = 120
)

// payloadMarkers introduce the material a prompt asks to summarize
var payloadMarkers = []string{"Code excerpt:\n", "Chunk summaries:\n"}

// LocalProvider builds short extractive summaries without any network access
type LocalProvider struct {
	model string
}

// NewLocalProvider creates an offline provider
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{model: DefaultLocalModel}
}

func (l *LocalProvider) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Prompt == "" {
		return "", ErrEmptyPrompt
	}

	payload := req.Prompt
	for _, marker := range payloadMarkers {
		if i := strings.LastIndex(payload, marker); i >= 0 {
			payload = payload[i+len(marker):]
			break
		}
	}

	var picked []string
	lines := 0
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "---" {
			continue
		}
		lines++
		if len(picked) < localMaxLines {
			picked = append(picked, truncateRunes(line, localMaxLineLen))
		}
	}
	if lines == 0 {
		return "", nil
	}

	return fmt.Sprintf("%d non-empty lines, %d characters. Begins with: %s",
		lines, utf8.RuneCountInString(payload), strings.Join(picked, " | ")), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}
