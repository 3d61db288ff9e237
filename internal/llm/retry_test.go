package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// mockProvider scripts a sequence of responses/errors for wrapper tests.
type mockProvider struct {
	name      string
	calls     int
	responses []*Response
	errs      []error
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(ctx context.Context, prompt *Prompt, opts *RequestOptions) (*Response, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return &Response{Content: "ok"}, nil
}

func (m *mockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return make([][]float32, len(texts)), nil
}

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Timeout:    time.Second,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 3 {
		t.Errorf("expected 3 max retries, got %d", cfg.MaxRetries)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("expected 1s retry delay, got %v", cfg.RetryDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("expected 30s max delay, got %v", cfg.MaxDelay)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("expected 2m timeout, got %v", cfg.Timeout)
	}
}

func TestRetryProviderName(t *testing.T) {
	r := NewRetryProvider(&mockProvider{name: "inner"}, nil)
	if r.Name() != "inner" {
		t.Errorf("got %s", r.Name())
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	inner := &mockProvider{name: "m", responses: []*Response{{Content: "hi"}}}
	r := NewRetryProvider(inner, fastRetryConfig())

	resp, err := r.Complete(context.Background(), UserPrompt("x"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hi" || inner.calls != 1 {
		t.Errorf("content=%q calls=%d", resp.Content, inner.calls)
	}
}

func TestRetryRecoversFromTransient(t *testing.T) {
	inner := &mockProvider{
		name:      "m",
		errs:      []error{fmt.Errorf("gemini: 503 Service Unavailable"), nil},
		responses: []*Response{nil, {Content: "recovered"}},
	}
	r := NewRetryProvider(inner, fastRetryConfig())

	resp, err := r.Complete(context.Background(), UserPrompt("x"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "recovered" || inner.calls != 2 {
		t.Errorf("content=%q calls=%d", resp.Content, inner.calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	inner := &mockProvider{
		name: "m",
		errs: []error{fmt.Errorf("gemini: 401 Unauthorized"), nil},
	}
	r := NewRetryProvider(inner, fastRetryConfig())

	_, err := r.Complete(context.Background(), UserPrompt("x"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "non-retryable") {
		t.Errorf("expected non-retryable classification, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("auth errors must not be retried, calls=%d", inner.calls)
	}
}

func TestRetryExhaustion(t *testing.T) {
	transient := fmt.Errorf("api: 429 Too Many Requests")
	inner := &mockProvider{name: "m", errs: []error{transient, transient, transient}}
	r := NewRetryProvider(inner, fastRetryConfig())

	_, err := r.Complete(context.Background(), UserPrompt("x"), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "max retries") {
		t.Errorf("expected exhaustion error, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("expected initial attempt plus 2 retries, calls=%d", inner.calls)
	}
}

func TestRetryRespectsCancelledContext(t *testing.T) {
	inner := &mockProvider{
		name: "m",
		errs: []error{fmt.Errorf("api: 500 Internal Server Error")},
	}
	r := NewRetryProvider(inner, fastRetryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Complete(ctx, UserPrompt("x"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoffDoubles(t *testing.T) {
	r := NewRetryProvider(&mockProvider{}, &RetryConfig{
		RetryDelay: time.Second,
		MaxDelay:   5 * time.Second,
	})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second}, // capped
		{10, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := r.backoff(tt.attempt); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"rate limit", errors.New("429 Too Many Requests"), true},
		{"server error", errors.New("gemini: 502 Bad Gateway"), true},
		{"bad request", errors.New("api: 400 Bad Request"), false},
		{"unauthorized", errors.New("api: 401 Unauthorized"), false},
		{"not found", errors.New("api: 404 model not found"), false},
		{"unknown", errors.New("connection reset by peer"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryEmbed(t *testing.T) {
	inner := &mockProvider{name: "m", errs: []error{fmt.Errorf("503"), nil}}
	r := NewRetryProvider(inner, fastRetryConfig())

	vecs, err := r.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 || inner.calls != 2 {
		t.Errorf("vecs=%d calls=%d", len(vecs), inner.calls)
	}
}
