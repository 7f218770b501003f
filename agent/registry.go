package agent

import (
	"log/slog"
	"sync"

	"github.com/agentrelay/agentrelay/config"
	"github.com/agentrelay/agentrelay/errs"
	"github.com/agentrelay/agentrelay/llms"
)

// AgentRegistry is the single source of truth for every configured agent
// (spec §3, §4.1): it loads configs from a directory, rejects duplicate
// paths, creates agents lazily, and sequences shutdown. Agents are keyed by
// path, the registry's public identifier, rather than by id or name.
type AgentRegistry struct {
	mu      sync.RWMutex
	agents  map[string]*Agent
	configs map[string]*config.AgentConfig
	llms    *llms.LLMRegistry
}

func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{
		agents:  make(map[string]*Agent),
		configs: make(map[string]*config.AgentConfig),
		llms:    llms.NewLLMRegistry(),
	}
}

// LoadDirectory reads every agent config in dir (config.LoadDirectory
// already enforces uniqueness and validation) and registers one agent per
// config. A missing directory yields an empty registry, not an error.
func (r *AgentRegistry) LoadDirectory(dir string) error {
	configs, err := config.LoadDirectory(dir)
	if err != nil {
		return err
	}
	for i := range configs {
		if err := r.Register(&configs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Register creates the agent's LLM provider and binds it into a new,
// uninitialized Agent (spec §4.1: "creation is lazy"). It is an error to
// register a path that already exists.
func (r *AgentRegistry) Register(cfg *config.AgentConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[cfg.Path]; exists {
		return errs.New(errs.CodeAgentConfigError, "duplicate agent path "+cfg.Path)
	}

	provider, err := r.llms.CreateLLMFromConfig(cfg.Path, cfg.ResolveLLMProviderSettings())
	if err != nil {
		return errs.Wrap(errs.CodeAgentConfigError, "creating LLM provider for agent "+cfg.Path, err)
	}

	r.configs[cfg.Path] = cfg
	r.agents[cfg.Path] = NewAgent(cfg, provider, r)
	return nil
}

// GetAgent returns the runtime agent at path, or AGENT_NOT_FOUND.
func (r *AgentRegistry) GetAgent(path string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[path]
	if !ok {
		return nil, errs.AgentNotFound(path)
	}
	return a, nil
}

// GetConfig returns the config at path, or AGENT_NOT_FOUND.
func (r *AgentRegistry) GetConfig(path string) (*config.AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.configs[path]
	if !ok {
		return nil, errs.AgentNotFound(path)
	}
	return c, nil
}

// Has reports whether path is registered.
func (r *AgentRegistry) Has(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.configs[path]
	return ok
}

// List returns the public discovery projection of every registered agent
// (spec §4.1).
func (r *AgentRegistry) List() []config.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]config.Summary, 0, len(r.configs))
	for _, c := range r.configs {
		summaries = append(summaries, c.ToSummary())
	}
	return summaries
}

// ListConfigs returns every registered agent's full config, for callers
// (the discovery card generator) that need fields beyond Summary's public
// projection, such as Discovery.Capabilities (spec §4.6).
func (r *AgentRegistry) ListConfigs() []*config.AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make([]*config.AgentConfig, 0, len(r.configs))
	for _, c := range r.configs {
		configs = append(configs, c)
	}
	return configs
}

// ShutdownAll shuts down every agent. Individual failures are logged and
// swallowed; the registry is cleared only once every attempt has completed
// (spec §4.1).
func (r *AgentRegistry) ShutdownAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for path, a := range r.agents {
		if err := a.Shutdown(); err != nil {
			slog.Warn("agent shutdown failed", "agent", path, "error", err)
		}
	}

	r.agents = make(map[string]*Agent)
	r.configs = make(map[string]*config.AgentConfig)
}
