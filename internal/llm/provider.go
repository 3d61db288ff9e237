// Package llm abstracts the generative text oracle behind a provider
// interface, with retry, rate limiting, and a constructor factory.
package llm

import "context"

// Provider is the interface all oracle backends implement.
type Provider interface {
	// Complete sends a prompt and returns a completion.
	Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error)
	// Embed returns embedding vectors for the given texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Name returns the provider identifier (e.g. "gemini", "anthropic").
	Name() string
}

// RequestOptions tunes a single completion call. Nil fields mean provider
// defaults.
type RequestOptions struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	StopSeqs    []string
}

// Temp builds a temperature-only option set; the pipeline pins sampling low
// to favor deterministic-looking structured output.
func Temp(t float64) *RequestOptions {
	return &RequestOptions{Temperature: &t}
}
