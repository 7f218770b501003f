package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() AgentConfig {
	return AgentConfig{
		ID:           "assistant-1",
		Path:         "assistant",
		Name:         "Assistant",
		SystemPrompt: "You are a helpful assistant.",
		Model:        "claude-3-5-sonnet",
	}
}

func TestAgentConfigSetDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.SetDefaults()

	assert.Equal(t, ProviderNative, cfg.Provider)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxTokens)
}

func TestAgentConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AgentConfig)
		wantErr bool
	}{
		{"valid", func(c *AgentConfig) {}, false},
		{"empty id", func(c *AgentConfig) { c.ID = "" }, true},
		{"bad path chars", func(c *AgentConfig) { c.Path = "Not Valid!" }, true},
		{"empty system prompt", func(c *AgentConfig) { c.SystemPrompt = "" }, true},
		{"openai-compatible without base url", func(c *AgentConfig) {
			c.Provider = ProviderOpenAICompat
		}, true},
		{"openai-compatible with base url", func(c *AgentConfig) {
			c.Provider = ProviderOpenAICompat
			c.ProviderConfig = &ProviderConfig{BaseURL: "https://api.example.com/v1"}
		}, false},
		{"temperature too high", func(c *AgentConfig) { c.Temperature = 2.5 }, true},
		{"negative max tokens", func(c *AgentConfig) { c.MaxTokens = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.SetDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToolSourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		ts      ToolSource
		wantErr bool
	}{
		{"stdio with command", ToolSource{ID: "fs", Transport: TransportStdio, Command: "mcp-fs"}, false},
		{"stdio without command", ToolSource{ID: "fs", Transport: TransportStdio}, true},
		{"sse with url", ToolSource{ID: "remote", Transport: TransportSSE, URL: "https://tools.example.com/sse"}, false},
		{"sse without url", ToolSource{ID: "remote", Transport: TransportSSE}, true},
		{"unknown transport", ToolSource{ID: "x", Transport: "carrier-pigeon"}, true},
		{"empty id", ToolSource{Transport: TransportStdio, Command: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetrievalConfigValidate(t *testing.T) {
	disabled := RetrievalConfig{Enabled: false}
	assert.NoError(t, disabled.Validate())

	enabledNoIndex := RetrievalConfig{Enabled: true, Provider: RetrievalPineconeish, TopK: 5}
	assert.Error(t, enabledNoIndex.Validate())

	badTemplate := RetrievalConfig{
		Enabled:         true,
		Provider:        RetrievalPineconeish,
		Index:           "docs",
		TopK:            5,
		ContextTemplate: "no token here",
		Connection:      &ProviderConfig{APIKey: "key"},
		Embedder:        &ProviderConfig{BaseURL: "https://embed.example.com"},
	}
	assert.Error(t, badTemplate.Validate())

	missingConnection := RetrievalConfig{
		Enabled:  true,
		Provider: RetrievalChromaish,
		Index:    "docs",
		TopK:     3,
		Embedder: &ProviderConfig{BaseURL: "https://embed.example.com"},
	}
	assert.Error(t, missingConnection.Validate())

	good := RetrievalConfig{
		Enabled:    true,
		Provider:   RetrievalChromaish,
		Index:      "docs",
		TopK:       3,
		MinScore:   0.5,
		Connection: &ProviderConfig{BaseURL: "https://chroma.example.com"},
		Embedder:   &ProviderConfig{BaseURL: "https://embed.example.com"},
	}
	assert.NoError(t, good.Validate())

	pgvectorNoSidecar := RetrievalConfig{
		Enabled:  true,
		Provider: RetrievalPgvectorish,
		Index:    "docs",
		TopK:     3,
		Embedder: &ProviderConfig{BaseURL: "https://embed.example.com"},
	}
	assert.NoError(t, pgvectorNoSidecar.Validate())
}

func TestDelegationConfigValidateRejectsDuplicateToolNames(t *testing.T) {
	cfg := DelegationConfig{
		Enabled: true,
		Targets: []DelegationTarget{
			{AgentPath: "billing", ToolName: "ask_billing", Description: "ask billing"},
			{AgentPath: "support", ToolName: "ask_billing", Description: "ask support"},
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestAgentConfigDefaultFlags(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.ToolsEnabled())
	assert.True(t, cfg.Discovery.IsDiscoverable())

	disabled := false
	cfg.EnableTools = &disabled
	cfg.Discovery.Discoverable = &disabled
	assert.False(t, cfg.ToolsEnabled())
	assert.False(t, cfg.Discovery.IsDiscoverable())
}
