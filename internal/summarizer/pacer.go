package summarizer

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a fixed minimum gap between consecutive backend calls
type Pacer struct {
	mu      sync.Mutex
	gap     time.Duration
	lastEnd time.Time
	now     func() time.Time
}

// NewPacer creates a pacer; a non-positive gap disables pacing
func NewPacer(gap time.Duration) *Pacer {
	return &Pacer{gap: gap, now: time.Now}
}

// Gap returns the configured minimum gap
func (p *Pacer) Gap() time.Duration {
	return p.gap
}

// Wait blocks until the gap since the previous call has elapsed
func (p *Pacer) Wait(ctx context.Context) error {
	if p.gap <= 0 {
		return ctx.Err()
	}
	p.mu.Lock()
	last := p.lastEnd
	p.mu.Unlock()
	if last.IsZero() {
		return ctx.Err()
	}

	remaining := p.gap - p.now().Sub(last)
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Done records the end of a backend call
func (p *Pacer) Done() {
	p.mu.Lock()
	p.lastEnd = p.now()
	p.mu.Unlock()
}
