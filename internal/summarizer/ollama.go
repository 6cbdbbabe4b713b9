package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"

	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "gemma:2b"

	// DefaultMaxFragments bounds the number of stream objects consumed per call
	DefaultMaxFragments = 100000

	maxErrorExcerpt = 512
)

// OllamaProvider implements Provider against an Ollama server
type OllamaProvider struct {
	endpoint     string
	model        string
	maxFragments int
	httpClient   *http.Client
}

// NewOllamaProvider creates an Ollama provider. Empty arguments fall back to
// DefaultOllamaEndpoint and DefaultOllamaModel.
func NewOllamaProvider(endpoint, model string) *OllamaProvider {
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		model:        model,
		maxFragments: DefaultMaxFragments,
		// Per-call deadlines come from the caller's context
		httpClient: &http.Client{},
	}
}

// Endpoint returns the server base URL
func (o *OllamaProvider) Endpoint() string {
	return o.endpoint
}

// ollamaFragment is one object of the /api/generate stream
type ollamaFragment struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
	Done     bool    `json:"done"`
}

func (o *OllamaProvider) Complete(ctx context.Context, req Request) (string, error) {
	if req.Prompt == "" {
		return "", ErrEmptyPrompt
	}
	model := req.Model
	if model == "" {
		model = o.model
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":  model,
		"prompt": req.Prompt,
		"stream": true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(resp)
	}

	return consumeStream(resp.Body, o.maxFragments)
}

// consumeStream concatenates the response fragments of a JSON object stream.
// Text accumulated before a truncated or malformed tail is returned as is.
func consumeStream(r io.Reader, maxFragments int) (string, error) {
	if maxFragments <= 0 {
		maxFragments = DefaultMaxFragments
	}
	dec := json.NewDecoder(r)
	var sb strings.Builder
	done := false

	for n := 0; n < maxFragments && !done; n++ {
		var frag ollamaFragment
		if err := dec.Decode(&frag); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", fmt.Errorf("decode stream: %w", err)
		}
		if frag.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrBackendFailed, frag.Error)
		}
		if frag.Response != nil {
			sb.WriteString(*frag.Response)
		}
		done = frag.Done
	}

	if !done && sb.Len() == 0 {
		return "", fmt.Errorf("decode stream: %w", io.ErrUnexpectedEOF)
	}
	return sb.String(), nil
}

// statusError converts a non-2xx response. Client errors other than 408 and
// 429 are not worth retrying.
func statusError(resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
	detail := strings.TrimSpace(string(excerpt))
	err := fmt.Errorf("api error %d", resp.StatusCode)
	if detail != "" {
		err = fmt.Errorf("api error %d: %s", resp.StatusCode, detail)
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrBackendRejected, err)
	}
	return err
}

func (o *OllamaProvider) Provider() string {
	return ProviderOllama
}

func (o *OllamaProvider) Model() string {
	return o.model
}

func (o *OllamaProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// ListModels returns the model names reported by GET /api/tags
func (o *OllamaProvider) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var tags struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		} else if m.Model != "" {
			names = append(names, m.Model)
		}
	}
	return names, nil
}
