package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/config"
)

func newTestRegistry(t *testing.T, configs ...*config.AgentConfig) *agent.AgentRegistry {
	t.Helper()
	reg := agent.NewAgentRegistry()
	for _, c := range configs {
		require.NoError(t, reg.Register(c))
	}
	return reg
}

func nativeConfig(path string, discoverable *bool, capabilities ...string) *config.AgentConfig {
	return &config.AgentConfig{
		ID:           path + "-id",
		Path:         path,
		Name:         path,
		Description:  "agent " + path,
		Provider:     config.ProviderNative,
		Model:        "claude-sonnet-4-20250514",
		SystemPrompt: "you are a test agent",
		ProviderConfig: &config.ProviderConfig{
			APIKey: "test-key",
		},
		Discovery: config.DiscoveryConfig{
			Discoverable: discoverable,
			Capabilities: capabilities,
		},
	}
}

func TestServiceCardListsDiscoverableAgentsAndCapabilities(t *testing.T) {
	hidden := false
	reg := newTestRegistry(t,
		nativeConfig("assistant", nil, "search", "summarize"),
		nativeConfig("internal-only", &hidden),
	)

	gen := NewGenerator(reg, "agentrelay", "test service", "1.0.0", "http://localhost:8080/")
	card := gen.ServiceCard()

	assert.Equal(t, "agentrelay", card.Name)
	assert.Equal(t, "http://localhost:8080", card.URL, "trailing slash must be stripped")
	assert.Equal(t, protocolVersion, card.ProtocolVersion)

	var ids []string
	for _, s := range card.Skills {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, "assistant-id")
	assert.Contains(t, ids, "assistant-id:search")
	assert.Contains(t, ids, "assistant-id:summarize")
	assert.NotContains(t, ids, "internal-only-id")
}

func TestAgentCardReturnsFalseForHiddenOrUnknownAgent(t *testing.T) {
	hidden := false
	reg := newTestRegistry(t, nativeConfig("internal-only", &hidden))
	gen := NewGenerator(reg, "agentrelay", "", "1.0.0", "http://localhost:8080")

	_, ok := gen.AgentCard("internal-only")
	assert.False(t, ok)

	_, ok = gen.AgentCard("does-not-exist")
	assert.False(t, ok)
}

func TestAgentCardReturnsSkillsForDiscoverableAgent(t *testing.T) {
	reg := newTestRegistry(t, nativeConfig("assistant", nil, "search"))
	gen := NewGenerator(reg, "agentrelay", "", "1.0.0", "http://localhost:8080")

	card, ok := gen.AgentCard("assistant")
	require.True(t, ok)
	assert.Equal(t, "assistant", card.Path)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "search", card.Skills[0].ID)
}
