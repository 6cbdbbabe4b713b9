package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dshills/repodoc/pkg/types"
)

// Common errors
var (
	ErrEmptyPrompt       = errors.New("prompt cannot be empty")
	ErrEmptyResponse     = errors.New("empty response")
	ErrBackendRejected   = errors.New("backend rejected request")
	ErrBackendFailed     = errors.New("backend call failed")
	ErrUnsupportedModel  = errors.New("unsupported provider")
	ErrNoProviderEnabled = errors.New("no summarization provider configured")
)

// Request is one completion request sent to a Provider
type Request struct {
	Prompt string
	Model  string // Optional: override the provider's default model
}

// Provider performs a single completion against a backend
type Provider interface {
	// Complete sends the prompt and returns the raw completion text
	Complete(ctx context.Context, req Request) (string, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the default model name
	Model() string

	// Close releases any resources held by the provider
	Close() error
}

// Result is the outcome of Client.Generate
type Result struct {
	Text     string // Trimmed completion, or a degraded marker
	Degraded bool   // True when Text is a degraded marker
	Err      error  // Cause of degradation
	Cached   bool   // Served from the cache without a backend call
	Calls    int    // Backend attempts made, retries included
}

// ClientConfig holds the per-call policies of a Client
type ClientConfig struct {
	CallTimeout time.Duration // Upper bound for one Generate, retries included
	PacingDelay time.Duration // Minimum gap between consecutive backend calls
	CacheSize   int           // LRU entries; 0 disables caching
	Retry       RetryConfig
	Debug       bool // Log prompt and response sizes
}

// DefaultClientConfig returns the policies used by the command line tool
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		CallTimeout: DefaultCallTimeout,
		PacingDelay: DefaultPacingDelay,
		CacheSize:   DefaultCacheSize,
		Retry:       DefaultRetryConfig(),
	}
}

const (
	DefaultCallTimeout = 300 * time.Second
	DefaultPacingDelay = 200 * time.Millisecond
	DefaultCacheSize   = 1000
)

// Client applies timeout, retry, caching and pacing around a Provider
type Client struct {
	provider Provider
	cfg      ClientConfig
	cache    *Cache
	pacer    *Pacer
}

// NewClient wraps provider with the given policies
func NewClient(provider Provider, cfg ClientConfig) *Client {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	c := &Client{
		provider: provider,
		cfg:      cfg,
		pacer:    NewPacer(cfg.PacingDelay),
	}
	if cfg.CacheSize > 0 {
		c.cache = NewCache(cfg.CacheSize)
	}
	return c
}

// Provider returns the wrapped provider
func (c *Client) Provider() Provider {
	return c.provider
}

// Close closes the wrapped provider
func (c *Client) Close() error {
	return c.provider.Close()
}

// Generate produces a completion for prompt. It never fails: backend errors,
// timeouts and empty responses are reported as a degraded Result.
func (c *Client) Generate(ctx context.Context, prompt, model string) Result {
	name := c.provider.Provider()
	if model == "" {
		model = c.provider.Model()
	}
	if strings.TrimSpace(prompt) == "" {
		return degraded(name, ErrEmptyPrompt, 0)
	}
	if err := ctx.Err(); err != nil {
		return degraded(name, err, 0)
	}

	key := ComputeHash(model + "\x00" + prompt)
	if c.cache != nil {
		if text, ok := c.cache.Get(key); ok {
			return Result{Text: text, Cached: true}
		}
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return degraded(name, err, 0)
	}
	defer c.pacer.Done()

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	calls := 0
	text, err := retryWithBackoff(callCtx, c.cfg.Retry, func() (string, error) {
		calls++
		return c.provider.Complete(callCtx, Request{Prompt: prompt, Model: model})
	})
	if c.cfg.Debug {
		log.Printf("[summarizer] %s/%s prompt=%d bytes response=%d bytes calls=%d elapsed=%s",
			name, model, len(prompt), len(text), calls, time.Since(start).Round(time.Millisecond))
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("timed out after %s: %w", c.cfg.CallTimeout, err)
		}
		return degraded(name, err, calls)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return degraded(name, ErrEmptyResponse, calls)
	}

	if c.cache != nil {
		c.cache.Set(key, text)
	}
	return Result{Text: text, Calls: calls}
}

func degraded(provider string, err error, calls int) Result {
	return Result{
		Text:     types.Degraded(provider, err),
		Degraded: true,
		Err:      err,
		Calls:    calls,
	}
}
