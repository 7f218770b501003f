package llms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrelay/agentrelay/config"
)

func TestNewAnthropicProviderFromConfigRequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicProviderFromConfig(&config.LLMProviderSettings{Model: "claude-sonnet-4-20250514"})
	assert.Error(t, err)
}

func TestNewAnthropicProviderFromConfigDefaultsHost(t *testing.T) {
	p, err := NewAnthropicProviderFromConfig(&config.LLMProviderSettings{
		Model:  "claude-sonnet-4-20250514",
		APIKey: "test-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", p.GetModelName())
	assert.Equal(t, "https://api.anthropic.com", p.config.Host)
}

func TestNewOpenAIProviderFromConfigRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIProviderFromConfig(&config.LLMProviderSettings{Model: "gpt-4o"})
	assert.Error(t, err)
}

func TestCreateLLMFromConfigRejectsUnsupportedType(t *testing.T) {
	reg := NewLLMRegistry()
	_, err := reg.CreateLLMFromConfig("assistant", config.LLMProviderSettings{
		Type:   "unsupported",
		Model:  "m",
		APIKey: "test-key",
	})
	assert.Error(t, err)
}

func TestCreateLLMFromConfigRejectsInvalidSettings(t *testing.T) {
	reg := NewLLMRegistry()
	_, err := reg.CreateLLMFromConfig("assistant", config.LLMProviderSettings{
		Type:  "anthropic",
		Model: "m",
	})
	assert.Error(t, err, "missing API key must fail validation before provider construction")
}

func TestCreateLLMFromConfigRegistersAnthropicProvider(t *testing.T) {
	reg := NewLLMRegistry()
	provider, err := reg.CreateLLMFromConfig("assistant", config.LLMProviderSettings{
		Type:   "anthropic",
		Model:  "claude-sonnet-4-20250514",
		APIKey: "test-key",
	})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", provider.GetModelName())

	got, err := reg.GetLLM("assistant")
	require.NoError(t, err)
	assert.Equal(t, provider, got)
}

func TestCreateLLMFromConfigRejectsEmptyName(t *testing.T) {
	reg := NewLLMRegistry()
	_, err := reg.CreateLLMFromConfig("", config.LLMProviderSettings{
		Type:   "anthropic",
		Model:  "m",
		APIKey: "test-key",
	})
	assert.Error(t, err)
}

func TestGetLLMUnknownNameReturnsError(t *testing.T) {
	reg := NewLLMRegistry()
	_, err := reg.GetLLM("nope")
	assert.Error(t, err)
}
