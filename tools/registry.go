package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/agentrelay/agentrelay/config"
	"github.com/agentrelay/agentrelay/registry"
)

// ToolEntry pairs a discovered tool with the source that served it.
type ToolEntry struct {
	Tool     Tool
	Source   ToolSource
	SourceID string
	Name     string
}

// ToolRegistryError reports a failure in the tool registry, naming the
// component and action that failed. It is local to this package; it is not
// an errs.ServiceError.
type ToolRegistryError struct {
	Component string
	Action    string
	Message   string
	Err       error
}

func (e *ToolRegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Action, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Action, e.Message)
}

func (e *ToolRegistryError) Unwrap() error { return e.Err }

func NewToolRegistryError(component, action, message string, err error) *ToolRegistryError {
	return &ToolRegistryError{Component: component, Action: action, Message: message, Err: err}
}

// ToolRegistry holds every tool discovered from an agent's configured tool
// sources (spec §3, §4.3), keyed by tool name across all sources.
type ToolRegistry struct {
	*registry.BaseRegistry[ToolEntry]

	mu      sync.RWMutex
	sources map[string]ToolSource
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		BaseRegistry: registry.NewBaseRegistry[ToolEntry](),
		sources:      make(map[string]ToolSource),
	}
}

// NewToolRegistryFromConfig builds one MCP-backed source per configured tool
// source. A source that fails to connect or discover tools is logged and
// skipped rather than failing the whole agent (spec §4.2: "failure to
// connect to an individual tool source is logged and skipped").
func NewToolRegistryFromConfig(ctx context.Context, sources []config.ToolSource) *ToolRegistry {
	r := NewToolRegistry()
	for _, cfg := range sources {
		source := NewMCPSource(cfg)
		if err := r.RegisterSource(ctx, source); err != nil {
			slog.Warn("tool source unavailable, skipping", "source", cfg.ID, "transport", cfg.Transport, "error", err)
			continue
		}
	}
	return r
}

// RegisterSource discovers a source's tools and adds them to the registry.
// A tool name that collides with one already registered from a different
// source is rejected rather than silently shadowed.
func (r *ToolRegistry) RegisterSource(ctx context.Context, source ToolSource) error {
	name := source.GetName()
	if name == "" {
		return NewToolRegistryError("ToolRegistry", "RegisterSource", "source name cannot be empty", nil)
	}

	if err := source.DiscoverTools(ctx); err != nil {
		return NewToolRegistryError("ToolRegistry", "RegisterSource",
			fmt.Sprintf("discovering tools from source %s", name), err)
	}

	r.mu.Lock()
	r.sources[name] = source
	r.mu.Unlock()

	for _, info := range source.ListTools() {
		tool, ok := source.GetTool(info.Name)
		if !ok {
			continue
		}
		if existing, exists := r.Get(info.Name); exists {
			return NewToolRegistryError("ToolRegistry", "RegisterSource",
				fmt.Sprintf("tool %q from source %s conflicts with existing tool from source %s", info.Name, name, existing.SourceID), nil)
		}

		entry := ToolEntry{Tool: tool, Source: source, SourceID: name, Name: info.Name}
		if err := r.Register(info.Name, entry); err != nil {
			return NewToolRegistryError("ToolRegistry", "RegisterSource",
				fmt.Sprintf("registering tool %s", info.Name), err)
		}
	}

	return nil
}

// GetTool retrieves a tool by name.
func (r *ToolRegistry) GetTool(name string) (Tool, error) {
	entry, exists := r.Get(name)
	if !exists {
		return nil, NewToolRegistryError("ToolRegistry", "GetTool", fmt.Sprintf("tool %s not found", name), nil)
	}
	return entry.Tool, nil
}

// ListTools returns every registered tool's info, sorted by name.
func (r *ToolRegistry) ListTools() []ToolInfo {
	entries := r.List()
	tools := make([]ToolInfo, 0, len(entries))
	for _, entry := range entries {
		info := entry.Tool.GetInfo()
		info.ServerURL = entry.SourceID
		tools = append(tools, info)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// ListToolsBySource groups tool info by the source that provides it.
func (r *ToolRegistry) ListToolsBySource() map[string][]ToolInfo {
	result := make(map[string][]ToolInfo)
	for _, entry := range r.List() {
		info := entry.Tool.GetInfo()
		result[entry.SourceID] = append(result[entry.SourceID], info)
	}
	return result
}

// ExecuteTool executes a tool by name with the given arguments.
func (r *ToolRegistry) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (ToolResult, error) {
	tool, err := r.GetTool(toolName)
	if err != nil {
		return ToolResult{Success: false, Error: err.Error(), ToolName: toolName}, err
	}
	return tool.Execute(ctx, args)
}

// GetToolSource returns the name of the source providing a given tool.
func (r *ToolRegistry) GetToolSource(toolName string) (string, error) {
	entry, exists := r.Get(toolName)
	if !exists {
		return "", NewToolRegistryError("ToolRegistry", "GetToolSource", fmt.Sprintf("tool %s not found", toolName), nil)
	}
	return entry.SourceID, nil
}

// RemoveSource removes a source and every tool it provided.
func (r *ToolRegistry) RemoveSource(sourceID string) error {
	for _, entry := range r.List() {
		if entry.SourceID == sourceID {
			if err := r.Remove(entry.Name); err != nil {
				return NewToolRegistryError("ToolRegistry", "RemoveSource", fmt.Sprintf("removing tool %s", entry.Name), err)
			}
		}
	}
	r.mu.Lock()
	delete(r.sources, sourceID)
	r.mu.Unlock()
	return nil
}

// RemoveAllSources closes every registered source's connection and clears
// the registry (spec §4.2 shutdown: "close all tool-source connections").
func (r *ToolRegistry) RemoveAllSources() error {
	r.mu.Lock()
	sources := make([]ToolSource, 0, len(r.sources))
	for _, s := range r.sources {
		sources = append(sources, s)
	}
	r.sources = make(map[string]ToolSource)
	r.mu.Unlock()

	r.Clear()

	var firstErr error
	for _, s := range sources {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
