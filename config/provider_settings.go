package config

import "fmt"

// LLMProviderSettings is the resolved, provider-specific configuration the
// llm package uses to construct a provider instance for one agent (spec
// §3, §4.2). It is derived from AgentConfig rather than parsed directly from
// JSON, since AgentConfig's provider/providerConfig split is the on-disk
// shape while this is the shape the HTTP client code wants.
type LLMProviderSettings struct {
	Type        string
	Model       string
	APIKey      string
	Host        string
	Temperature float64
	MaxTokens   int
	Timeout     int
	MaxRetries  int
	RetryDelay  int
}

// SetDefaults fills in defaults for any field the caller left zero.
func (c *LLMProviderSettings) SetDefaults() {
	if c.Type == "" {
		c.Type = "anthropic"
	}
	if c.Host == "" {
		switch c.Type {
		case "openai":
			c.Host = "https://api.openai.com/v1"
		default:
			c.Host = "https://api.anthropic.com"
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == 0 {
		c.Timeout = 120
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 1
	}
}

// Validate enforces the invariants the llm package's HTTP clients rely on.
func (c *LLMProviderSettings) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required for %s", c.Type)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	return nil
}

// ResolveLLMProviderSettings maps an agent's provider/providerConfig fields
// onto the settings shape the llm package consumes. "native" maps to the
// Anthropic-shaped provider, "openai-compatible" to the OpenAI-shaped one
// pointed at the declared base URL (spec §3, §4.2).
func (c AgentConfig) ResolveLLMProviderSettings() LLMProviderSettings {
	settings := LLMProviderSettings{
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}

	switch c.Provider {
	case ProviderOpenAICompat:
		settings.Type = "openai"
		if c.ProviderConfig != nil {
			settings.Host = c.ProviderConfig.BaseURL
			settings.APIKey = c.ProviderConfig.APIKey
		}
	default:
		settings.Type = "anthropic"
		if c.ProviderConfig != nil {
			if c.ProviderConfig.BaseURL != "" {
				settings.Host = c.ProviderConfig.BaseURL
			}
			settings.APIKey = c.ProviderConfig.APIKey
		}
	}

	return settings
}
