package llm

import (
	"testing"
	"time"
)

func TestFactoryCreateNone(t *testing.T) {
	f := NewFactory()
	for _, name := range []string{"", "none"} {
		p, err := f.Create(ProviderConfig{Provider: name})
		if err != nil {
			t.Errorf("Create(%q) error: %v", name, err)
		}
		if p != nil {
			t.Errorf("Create(%q) should return nil provider", name)
		}
	}
}

func TestFactoryCreateUnknown(t *testing.T) {
	f := NewFactory()
	if _, err := f.Create(ProviderConfig{Provider: "nonexistent"}); err == nil {
		t.Error("expected error for unregistered provider")
	}
}

func TestFactoryCreateRegistered(t *testing.T) {
	f := NewFactory()
	f.Register("mock", func(cfg ProviderConfig) (Provider, error) {
		return &mockProvider{name: "mock"}, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "mock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("got %s", p.Name())
	}
	// No timeout/retries configured: the bare provider comes back.
	if _, ok := p.(*mockProvider); !ok {
		t.Errorf("expected unwrapped provider, got %T", p)
	}
}

func TestFactoryWrapsRetry(t *testing.T) {
	f := NewFactory()
	f.Register("mock", func(cfg ProviderConfig) (Provider, error) {
		return &mockProvider{name: "mock"}, nil
	})

	p, err := f.Create(ProviderConfig{Provider: "mock", MaxRetries: 2, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Errorf("expected retry wrapper, got %T", p)
	}
}

func TestKnownProvidersIncludeCore(t *testing.T) {
	for _, name := range []string{"gemini", "anthropic", "openai"} {
		if KnownProviders[name] == "" {
			t.Errorf("missing preset for %s", name)
		}
	}
}

func TestWithRateLimitNilPassthrough(t *testing.T) {
	if WithRateLimit(nil, nil) != nil {
		t.Error("nil provider must pass through")
	}
	p := WithRateLimit(&mockProvider{name: "m"}, nil)
	if _, ok := p.(*RateLimitProvider); !ok {
		t.Errorf("expected rate-limit wrapper, got %T", p)
	}
}
