package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMProviderSettingsSetDefaults(t *testing.T) {
	s := LLMProviderSettings{}
	s.SetDefaults()

	assert.Equal(t, "anthropic", s.Type)
	assert.Equal(t, "https://api.anthropic.com", s.Host)
	assert.Equal(t, 0.7, s.Temperature)
	assert.Equal(t, 4096, s.MaxTokens)
	assert.Equal(t, 120, s.Timeout)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, 1, s.RetryDelay)
}

func TestLLMProviderSettingsSetDefaultsOpenAIHost(t *testing.T) {
	s := LLMProviderSettings{Type: "openai"}
	s.SetDefaults()
	assert.Equal(t, "https://api.openai.com/v1", s.Host)
}

func TestLLMProviderSettingsSetDefaultsPreservesExplicitValues(t *testing.T) {
	s := LLMProviderSettings{Type: "openai", Host: "https://custom.example.com", Temperature: 1.5, MaxTokens: 2048}
	s.SetDefaults()
	assert.Equal(t, "https://custom.example.com", s.Host)
	assert.Equal(t, 1.5, s.Temperature)
	assert.Equal(t, 2048, s.MaxTokens)
}

func TestLLMProviderSettingsValidate(t *testing.T) {
	valid := LLMProviderSettings{Type: "anthropic", Model: "claude-sonnet-4-20250514", Host: "https://api.anthropic.com", APIKey: "k", Temperature: 0.7, MaxTokens: 100}
	assert.NoError(t, valid.Validate())

	missingType := valid
	missingType.Type = ""
	assert.Error(t, missingType.Validate())

	missingModel := valid
	missingModel.Model = ""
	assert.Error(t, missingModel.Validate())

	missingKey := valid
	missingKey.APIKey = ""
	assert.Error(t, missingKey.Validate())

	badTemp := valid
	badTemp.Temperature = 3
	assert.Error(t, badTemp.Validate())

	badTokens := valid
	badTokens.MaxTokens = 0
	assert.Error(t, badTokens.Validate())

	badTimeout := valid
	badTimeout.Timeout = -1
	assert.Error(t, badTimeout.Validate())

	badRetries := valid
	badRetries.MaxRetries = -1
	assert.Error(t, badRetries.Validate())
}

func TestResolveLLMProviderSettingsNative(t *testing.T) {
	cfg := AgentConfig{
		Provider:    ProviderNative,
		Model:       "claude-sonnet-4-20250514",
		Temperature: 0.5,
		MaxTokens:   1000,
		ProviderConfig: &ProviderConfig{
			APIKey:  "anthropic-key",
			BaseURL: "https://custom.anthropic.example.com",
		},
	}

	settings := cfg.ResolveLLMProviderSettings()
	assert.Equal(t, "anthropic", settings.Type)
	assert.Equal(t, "anthropic-key", settings.APIKey)
	assert.Equal(t, "https://custom.anthropic.example.com", settings.Host)
	assert.Equal(t, "claude-sonnet-4-20250514", settings.Model)
}

func TestResolveLLMProviderSettingsOpenAICompat(t *testing.T) {
	cfg := AgentConfig{
		Provider: ProviderOpenAICompat,
		Model:    "gpt-4o",
		ProviderConfig: &ProviderConfig{
			APIKey:  "openai-key",
			BaseURL: "https://api.openai.com/v1",
		},
	}

	settings := cfg.ResolveLLMProviderSettings()
	assert.Equal(t, "openai", settings.Type)
	assert.Equal(t, "openai-key", settings.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", settings.Host)
}

func TestResolveLLMProviderSettingsWithoutProviderConfig(t *testing.T) {
	cfg := AgentConfig{Provider: ProviderNative, Model: "claude-sonnet-4-20250514"}
	settings := cfg.ResolveLLMProviderSettings()
	assert.Empty(t, settings.APIKey)
	assert.Empty(t, settings.Host)
}
