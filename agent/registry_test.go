package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrelay/agentrelay/config"
)

func testConfig(path string) *config.AgentConfig {
	return &config.AgentConfig{
		ID:           path + "-id",
		Path:         path,
		Name:         path,
		Description:  "test agent " + path,
		Provider:     config.ProviderNative,
		Model:        "claude-sonnet-4-20250514",
		SystemPrompt: "you are a test agent",
		ProviderConfig: &config.ProviderConfig{
			APIKey: "test-key",
		},
	}
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewAgentRegistry()
	require.NoError(t, reg.Register(testConfig("assistant")))

	assert.True(t, reg.Has("assistant"))
	assert.False(t, reg.Has("nope"))

	a, err := reg.GetAgent("assistant")
	require.NoError(t, err)
	assert.Equal(t, "assistant", a.Path())

	cfg, err := reg.GetConfig("assistant")
	require.NoError(t, err)
	assert.Equal(t, "assistant", cfg.Path)
}

func TestRegisterRejectsDuplicatePath(t *testing.T) {
	reg := NewAgentRegistry()
	require.NoError(t, reg.Register(testConfig("assistant")))

	err := reg.Register(testConfig("assistant"))
	assert.Error(t, err)
}

func TestGetAgentAndConfigUnknownPath(t *testing.T) {
	reg := NewAgentRegistry()

	_, err := reg.GetAgent("nope")
	assert.Error(t, err)

	_, err = reg.GetConfig("nope")
	assert.Error(t, err)
}

func TestListAndListConfigs(t *testing.T) {
	reg := NewAgentRegistry()
	require.NoError(t, reg.Register(testConfig("assistant")))
	require.NoError(t, reg.Register(testConfig("researcher")))

	summaries := reg.List()
	assert.Len(t, summaries, 2)

	configs := reg.ListConfigs()
	assert.Len(t, configs, 2)
}

func TestShutdownAllClearsRegistry(t *testing.T) {
	reg := NewAgentRegistry()
	require.NoError(t, reg.Register(testConfig("assistant")))

	reg.ShutdownAll()

	assert.False(t, reg.Has("assistant"))
	assert.Empty(t, reg.List())
}

func TestAgentInitializeWithoutToolsOrRetrievalDoesNoNetworkIO(t *testing.T) {
	reg := NewAgentRegistry()
	cfg := testConfig("assistant")
	require.NoError(t, reg.Register(cfg))

	a, err := reg.GetAgent("assistant")
	require.NoError(t, err)

	require.NoError(t, a.Initialize(context.Background()))
	require.NoError(t, a.Initialize(context.Background()), "Initialize must be idempotent")

	require.NoError(t, a.Shutdown())
}
