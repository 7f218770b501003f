package llms

import (
	"fmt"

	"github.com/agentrelay/agentrelay/config"
	"github.com/agentrelay/agentrelay/registry"
)

// ============================================================================
// LLM REGISTRY
// ============================================================================

// LLMProvider is the interface every model backend implements: a
// tool-calling-aware Generate/GenerateStreaming pair plus the metadata the
// agent loop needs to enforce its own limits (spec §4.2).
type LLMProvider interface {
	// Generate produces a response to a conversation, given the tools
	// available to the calling agent. Returns any tool calls the model
	// wants to make alongside whatever text it already produced.
	Generate(messages []Message, tools []ToolDefinition) (string, []ToolCall, int, error)

	// GenerateStreaming is Generate's streaming counterpart: text arrives
	// incrementally, tool calls arrive whole once their arguments close.
	GenerateStreaming(messages []Message, tools []ToolDefinition) (<-chan StreamChunk, error)

	// GetModelName returns the model name
	GetModelName() string

	// GetMaxTokens returns the maximum tokens for generation
	GetMaxTokens() int

	// GetTemperature returns the temperature setting
	GetTemperature() float64

	// Close closes the provider and releases resources
	Close() error
}

// LLMRegistry manages LLM provider instances, one per agent (spec §4.2).
type LLMRegistry struct {
	*registry.BaseRegistry[LLMProvider]
}

// NewLLMRegistry creates a new LLM registry
func NewLLMRegistry() *LLMRegistry {
	return &LLMRegistry{
		BaseRegistry: registry.NewBaseRegistry[LLMProvider](),
	}
}

// RegisterLLM registers an LLM provider instance
func (r *LLMRegistry) RegisterLLM(name string, provider LLMProvider) error {
	if name == "" {
		return fmt.Errorf("LLM name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("LLM provider cannot be nil")
	}
	return r.Register(name, provider)
}

// CreateLLMFromConfig builds and registers a provider from an agent's
// resolved provider settings (config.AgentConfig.ResolveLLMProviderSettings).
func (r *LLMRegistry) CreateLLMFromConfig(name string, settings config.LLMProviderSettings) (LLMProvider, error) {
	if name == "" {
		return nil, fmt.Errorf("LLM name cannot be empty")
	}

	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid LLM config: %w", err)
	}

	var provider LLMProvider
	var err error

	switch settings.Type {
	case "openai":
		provider, err = NewOpenAIProviderFromConfig(&settings)
	case "anthropic":
		provider, err = NewAnthropicProviderFromConfig(&settings)
	default:
		return nil, fmt.Errorf("unsupported LLM type: %s", settings.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	if err := r.RegisterLLM(name, provider); err != nil {
		return nil, fmt.Errorf("failed to register LLM: %w", err)
	}

	return provider, nil
}

// GetLLM retrieves an LLM provider by name
func (r *LLMRegistry) GetLLM(name string) (LLMProvider, error) {
	provider, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("LLM provider '%s' not found", name)
	}
	return provider, nil
}

// ListLLMs returns the model name of every registered provider, not the
// names the providers are registered under.
func (r *LLMRegistry) ListLLMs() []string {
	names := make([]string, 0)
	for _, provider := range r.List() {
		names = append(names, provider.GetModelName())
	}
	return names
}
