// Package config provides the declarative AgentConfig schema (spec §3) and
// the directory loader that turns a folder of JSON files into validated
// configs (spec §4.1, §6), in the teacher's Validate()/SetDefaults() style
// (see also provider_settings.go's LLMProviderSettings).
package config

import (
	"fmt"
	"regexp"
)

// Provider identifies the backing LLM provider family for an agent.
type Provider string

const (
	ProviderNative       Provider = "native"
	ProviderOpenAICompat Provider = "openai-compatible"
)

// ToolTransport identifies how a tool source is reached.
type ToolTransport string

const (
	TransportStdio ToolTransport = "stdio"
	TransportSSE   ToolTransport = "sse"
	TransportHTTP  ToolTransport = "http"
)

// RetrievalProvider identifies a vector-store backend family (spec §4.4).
type RetrievalProvider string

const (
	RetrievalPineconeish RetrievalProvider = "pineconeish"
	RetrievalChromaish   RetrievalProvider = "chromaish"
	RetrievalPgvectorish RetrievalProvider = "pgvectorish"
)

var pathPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ProviderConfig holds the fields required when Provider == ProviderOpenAICompat.
type ProviderConfig struct {
	BaseURL string            `json:"baseUrl"`
	APIKey  string            `json:"apiKey,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// ToolSource describes one external tool provider an agent can draw tools from.
type ToolSource struct {
	ID        string        `json:"id"`
	Transport ToolTransport `json:"transport"`

	// stdio
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Env     []string `json:"env,omitempty"`

	// sse / http
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Validate checks the transport-specific required-field invariant from spec §3.
func (t ToolSource) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tool source id cannot be empty")
	}
	switch t.Transport {
	case TransportStdio:
		if t.Command == "" {
			return fmt.Errorf("tool source %q: stdio transport requires a command", t.ID)
		}
	case TransportSSE, TransportHTTP:
		if t.URL == "" {
			return fmt.Errorf("tool source %q: %s transport requires a url", t.ID, t.Transport)
		}
	default:
		return fmt.Errorf("tool source %q: unknown transport %q", t.ID, t.Transport)
	}
	return nil
}

// DiscoveryConfig controls whether, and how, an agent is advertised (spec §3, §4.6).
type DiscoveryConfig struct {
	Discoverable *bool    `json:"discoverable,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// IsDiscoverable returns the effective discoverable flag, defaulting to true.
func (d DiscoveryConfig) IsDiscoverable() bool {
	return d.Discoverable == nil || *d.Discoverable
}

// RetrievalConfig configures RAG (spec §3, §4.4).
type RetrievalConfig struct {
	Enabled         bool              `json:"enabled"`
	Provider        RetrievalProvider `json:"provider,omitempty"`
	Index           string            `json:"index,omitempty"`
	Namespace       string            `json:"namespace,omitempty"`
	TopK            int               `json:"topK,omitempty"`
	MinScore        float64           `json:"minScore,omitempty"`
	ContextTemplate string            `json:"contextTemplate,omitempty"`

	// Connection holds the backend-specific endpoint (spec §4.4): Pinecone's
	// control-plane API key, Chroma's collection HTTP base URL, or pgvector's
	// optional REST sidecar URL. Its meaning depends on Provider.
	Connection *ProviderConfig `json:"connection,omitempty"`

	// Embedder points at the external embedding service (spec §4.4) used to
	// turn the query string into a vector before it reaches any backend.
	Embedder *ProviderConfig `json:"embedder,omitempty"`
}

// SetDefaults fills in the documented defaults (topK=5, minScore=0).
func (r *RetrievalConfig) SetDefaults() {
	if r.TopK == 0 {
		r.TopK = 5
	}
}

// Validate enforces the §3 invariants for retrieval config.
func (r RetrievalConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	switch r.Provider {
	case RetrievalPineconeish, RetrievalChromaish, RetrievalPgvectorish:
	default:
		return fmt.Errorf("retrieval: unknown provider %q", r.Provider)
	}
	if r.Index == "" {
		return fmt.Errorf("retrieval: index is required when enabled")
	}
	if r.TopK < 1 {
		return fmt.Errorf("retrieval: topK must be >= 1")
	}
	if r.MinScore < 0 || r.MinScore > 1 {
		return fmt.Errorf("retrieval: minScore must be within [0,1]")
	}
	if r.ContextTemplate != "" && !containsContextToken(r.ContextTemplate) {
		return fmt.Errorf("retrieval: contextTemplate must contain the literal token {{context}}")
	}
	if r.Provider != RetrievalPgvectorish && (r.Connection == nil || (r.Connection.APIKey == "" && r.Connection.BaseURL == "")) {
		return fmt.Errorf("retrieval: provider %q requires a connection", r.Provider)
	}
	if r.Embedder == nil || r.Embedder.BaseURL == "" {
		return fmt.Errorf("retrieval: embedder.baseUrl is required when retrieval is enabled")
	}
	return nil
}

func containsContextToken(s string) bool {
	const token = "{{context}}"
	for i := 0; i+len(token) <= len(s); i++ {
		if s[i:i+len(token)] == token {
			return true
		}
	}
	return false
}

// DelegationTarget names another agent reachable as a tool (spec §3, §4.2).
type DelegationTarget struct {
	AgentPath   string `json:"agentPath"`
	ToolName    string `json:"toolName"`
	Description string `json:"description"`
}

// DelegationConfig configures agent-to-agent delegation tools.
type DelegationConfig struct {
	Enabled bool               `json:"enabled"`
	Targets []DelegationTarget `json:"targets,omitempty"`
}

// Validate enforces toolName uniqueness within one agent's delegation targets.
func (d DelegationConfig) Validate() error {
	if !d.Enabled {
		return nil
	}
	seen := make(map[string]bool, len(d.Targets))
	for _, t := range d.Targets {
		if t.AgentPath == "" || t.ToolName == "" {
			return fmt.Errorf("delegation target requires agentPath and toolName")
		}
		if seen[t.ToolName] {
			return fmt.Errorf("delegation toolName %q declared more than once", t.ToolName)
		}
		seen[t.ToolName] = true
	}
	return nil
}

// AgentConfig is the declarative, immutable-after-load definition of one
// agent (spec §3). JSON tags mirror the on-disk schema (spec §6); unknown
// fields are ignored by encoding/json's default decoding behavior.
type AgentConfig struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	Description string `json:"description"`

	Provider       Provider        `json:"provider,omitempty"`
	Model          string          `json:"model"`
	ProviderConfig *ProviderConfig `json:"providerConfig,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`

	SystemPrompt string `json:"systemPrompt"`
	EnableTools  *bool  `json:"enableTools,omitempty"`

	ToolSources []ToolSource `json:"toolSources,omitempty"`

	Discovery DiscoveryConfig `json:"discovery,omitempty"`

	Retrieval  *RetrievalConfig  `json:"retrieval,omitempty"`
	Delegation *DelegationConfig `json:"delegation,omitempty"`

	// SourceFile records which config file this agent was parsed from, set
	// by the loader. Used only for error messages, never for lookups.
	SourceFile string `json:"-"`
}

// ToolsEnabled returns the effective enableTools flag, defaulting to true.
func (c AgentConfig) ToolsEnabled() bool {
	return c.EnableTools == nil || *c.EnableTools
}

// SetDefaults fills in every documented default from spec §3.
func (c *AgentConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderNative
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Retrieval != nil {
		c.Retrieval.SetDefaults()
	}
}

// Validate enforces every universal invariant from spec §3 and §8.
func (c AgentConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !pathPattern.MatchString(c.Path) {
		return fmt.Errorf("path %q must match ^[a-z0-9-]+$", c.Path)
	}
	if c.SystemPrompt == "" {
		return fmt.Errorf("systemPrompt cannot be empty")
	}
	if c.Provider != ProviderNative && c.Provider != ProviderOpenAICompat {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Provider == ProviderOpenAICompat {
		if c.ProviderConfig == nil || c.ProviderConfig.BaseURL == "" {
			return fmt.Errorf("providerConfig.baseUrl is required when provider is openai-compatible")
		}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0,2]")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("maxTokens must be > 0")
	}
	for _, ts := range c.ToolSources {
		if err := ts.Validate(); err != nil {
			return err
		}
	}
	if c.Retrieval != nil {
		if err := c.Retrieval.Validate(); err != nil {
			return err
		}
	}
	if c.Delegation != nil {
		if err := c.Delegation.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Summary is the public discovery projection of an AgentConfig (spec §4.1, §6).
type Summary struct {
	Path        string `json:"path"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToSummary projects the public fields of c.
func (c AgentConfig) ToSummary() Summary {
	return Summary{Path: c.Path, ID: c.ID, Name: c.Name, Description: c.Description}
}
