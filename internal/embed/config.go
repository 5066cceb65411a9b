package embed

import (
	"fmt"
	"strings"
)

// Provider endpoints for the OpenAI-compatible embeddings API.
var providerEndpoints = map[string]string{
	"ollama":     "http://localhost:11434/v1/embeddings",
	"openai":     "https://api.openai.com/v1/embeddings",
	"openrouter": "https://openrouter.ai/api/v1/embeddings",
	"deepseek":   "https://api.deepseek.com/v1/embeddings",
	"custom":     "",
}

// Config holds embedding provider configuration.
type Config struct {
	Provider    string // "ollama", "openai", "openrouter", "deepseek", "custom"
	Model       string
	Endpoint    string // full API URL
	APIKey      string
	MaxRetries  int // default: 3
	TimeoutSecs int // per-request timeout (default: 60)
}

// ParseProvider parses "provider/model". Model names may contain further
// slashes, as in "openrouter/sentence-transformers/all-MiniLM-L6-v2".
func ParseProvider(spec string) (*Config, error) {
	if spec == "" {
		return nil, fmt.Errorf("empty embedding provider")
	}

	slash := strings.Index(spec, "/")
	if slash == -1 {
		return nil, fmt.Errorf("invalid embedding provider: expected 'provider/model', got %q", spec)
	}

	provider, model := spec[:slash], spec[slash+1:]
	if provider == "" {
		return nil, fmt.Errorf("empty provider in %q", spec)
	}
	if model == "" {
		return nil, fmt.Errorf("empty model in %q", spec)
	}

	endpoint, ok := providerEndpoints[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q. Supported: ollama, openai, openrouter, deepseek, custom", provider)
	}

	return &Config{
		Provider:    provider,
		Model:       model,
		Endpoint:    endpoint,
		MaxRetries:  3,
		TimeoutSecs: 60,
	}, nil
}

// Validate checks if the configuration is complete.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required for provider %q", c.Provider)
	}
	if c.Provider != "ollama" && c.Provider != "custom" && c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %q", c.Provider)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Name returns "provider/model".
func (c *Config) Name() string {
	return c.Provider + "/" + c.Model
}
