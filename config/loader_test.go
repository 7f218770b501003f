package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAgentFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadDirectoryMissingDirYieldsEmpty(t *testing.T) {
	configs, err := LoadDirectory(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestLoadDirectoryParsesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "assistant.json", `{
		"id": "assistant-1",
		"path": "assistant",
		"name": "Assistant",
		"systemPrompt": "You are a helpful assistant.",
		"model": "claude-3-5-sonnet"
	}`)

	configs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "assistant", configs[0].Path)
	assert.Equal(t, ProviderNative, configs[0].Provider)
	assert.Equal(t, 4096, configs[0].MaxTokens)
}

func TestLoadDirectoryRejectsDuplicatePaths(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "a.json", `{"id":"a","path":"shared","name":"A","systemPrompt":"a"}`)
	writeAgentFile(t, dir, "b.json", `{"id":"b","path":"shared","name":"B","systemPrompt":"b"}`)

	_, err := LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectoryNamesTheOffendingFile(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "broken.json", `{"id":"","path":"x","name":"X","systemPrompt":"x"}`)

	_, err := LoadDirectory(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestLoadDirectoryIgnoresNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "assistant.json", `{"id":"a","path":"a","name":"A","systemPrompt":"a"}`)
	writeAgentFile(t, dir, "README.md", `not a config`)

	configs, err := LoadDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, configs, 1)
}

func TestLoadDirectoryExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_AGENTRELAY_API_KEY", "sk-expanded")

	writeAgentFile(t, dir, "assistant.json", `{
		"id": "assistant-1",
		"path": "assistant",
		"name": "Assistant",
		"systemPrompt": "You are a helpful assistant.",
		"provider": "openai-compatible",
		"providerConfig": {
			"baseUrl": "https://api.example.com/v1",
			"apiKey": "${TEST_AGENTRELAY_API_KEY}"
		}
	}`)

	configs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	require.NotNil(t, configs[0].ProviderConfig)
	assert.Equal(t, "sk-expanded", configs[0].ProviderConfig.APIKey)
}
