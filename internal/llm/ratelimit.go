package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig bounds how fast the pipeline may call the oracle.
type RateLimitConfig struct {
	// RequestsPerMinute limits API calls per minute (0 = unlimited).
	RequestsPerMinute int
	// BurstSize allows a short burst above the steady rate.
	BurstSize int
}

// DefaultRateLimitConfig is conservative enough for free-tier cloud APIs.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{RequestsPerMinute: 25, BurstSize: 3}
}

// RateLimitProvider wraps a provider with a token-bucket request limiter.
type RateLimitProvider struct {
	inner  Provider
	config *RateLimitConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimitProvider creates a rate-limited provider wrapper.
func NewRateLimitProvider(inner Provider, config *RateLimitConfig) *RateLimitProvider {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	burst := config.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitProvider{
		inner:      inner,
		config:     config,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

func (r *RateLimitProvider) Name() string { return r.inner.Name() }

func (r *RateLimitProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Complete(ctx, prompt, opts)
}

func (r *RateLimitProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, texts)
}

// wait blocks until a request token is available.
func (r *RateLimitProvider) wait(ctx context.Context) error {
	if r.config.RequestsPerMinute <= 0 {
		return nil
	}
	for {
		r.mu.Lock()
		r.refill()
		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Minute / time.Duration(r.config.RequestsPerMinute)):
		}
	}
}

func (r *RateLimitProvider) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	r.lastRefill = now

	r.tokens += elapsed.Minutes() * float64(r.config.RequestsPerMinute)
	max := float64(r.config.BurstSize)
	if max < 1 {
		max = 1
	}
	if r.tokens > max {
		r.tokens = max
	}
}

// WithRateLimit wraps a provider with rate limiting; nil passes through.
func WithRateLimit(p Provider, config *RateLimitConfig) Provider {
	if p == nil {
		return nil
	}
	return NewRateLimitProvider(p, config)
}
