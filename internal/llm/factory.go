package llm

import (
	"fmt"
	"time"
)

// ProviderConfig holds everything needed to create any oracle provider.
type ProviderConfig struct {
	Provider   string // "gemini", "anthropic", "openai", "ollama", "custom", ...
	APIKey     string
	Model      string
	BaseURL    string // override for self-hosted / custom endpoints
	EmbedModel string // embedding model (OpenAI-compatible providers only)

	Timeout    time.Duration // per-request timeout (default: 2 minutes)
	MaxRetries int           // max retry attempts (default: 3)
	RetryDelay time.Duration // initial backoff delay (default: 1s)
}

// ProviderConstructor builds a Provider from config.
type ProviderConstructor func(cfg ProviderConfig) (Provider, error)

// Factory creates Provider instances from named constructors.
type Factory struct {
	constructors map[string]ProviderConstructor
}

// NewFactory creates an empty factory; callers register constructors.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[string]ProviderConstructor)}
}

// Register adds a provider constructor under the given name.
func (f *Factory) Register(name string, ctor ProviderConstructor) {
	f.constructors[name] = ctor
}

// Create builds a Provider from config. Returns nil (no error) when provider
// is empty or "none", allowing oracle-free operation (re-render path only).
// The provider is wrapped with retry logic when timeout or retries are set.
func (f *Factory) Create(cfg ProviderConfig) (Provider, error) {
	if cfg.Provider == "" || cfg.Provider == "none" {
		return nil, nil
	}

	ctor, ok := f.constructors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown oracle provider %q (registered: %v)", cfg.Provider, f.names())
	}
	provider, err := ctor(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 || cfg.MaxRetries > 0 {
		retry := &RetryConfig{
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			MaxDelay:   30 * time.Second,
			Timeout:    cfg.Timeout,
		}
		if retry.Timeout == 0 {
			retry.Timeout = 2 * time.Minute
		}
		if retry.RetryDelay == 0 {
			retry.RetryDelay = time.Second
		}
		return NewRetryProvider(provider, retry), nil
	}
	return provider, nil
}

func (f *Factory) names() []string {
	var out []string
	for k := range f.constructors {
		out = append(out, k)
	}
	return out
}

// KnownProviders documents the built-in presets. OpenAI-compatible APIs
// (Groq, vLLM, Ollama, Together, etc.) use the "openai" constructor with a
// custom base_url.
var KnownProviders = map[string]string{
	"gemini":    "https://generativelanguage.googleapis.com/v1beta",
	"anthropic": "https://api.anthropic.com/v1",
	"openai":    "https://api.openai.com/v1",
	"groq":      "https://api.groq.com/openai/v1",
	"ollama":    "http://localhost:11434/v1",
	"together":  "https://api.together.xyz/v1",
	"deepseek":  "https://api.deepseek.com/v1",
}
