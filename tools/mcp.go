package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentrelay/agentrelay/config"
)

// MCPSource adapts one configured tool source (spec §3, §4.3) to the
// ToolSource interface, connecting lazily on first discovery so a
// misconfigured or unreachable source doesn't block agent startup.
type MCPSource struct {
	cfg config.ToolSource

	mu      sync.Mutex
	client  *client.Client
	tools   map[string]Tool
	infos   []ToolInfo
	started bool
}

// NewMCPSource builds a tool source from configuration without connecting.
func NewMCPSource(cfg config.ToolSource) *MCPSource {
	return &MCPSource{cfg: cfg, tools: make(map[string]Tool)}
}

func (s *MCPSource) GetName() string { return s.cfg.ID }
func (s *MCPSource) GetType() string { return string(s.cfg.Transport) }

// connect establishes the underlying MCP session, exactly once.
func (s *MCPSource) connect(ctx context.Context) error {
	if s.started {
		return nil
	}

	var c *client.Client
	var err error

	switch s.cfg.Transport {
	case config.TransportStdio:
		c, err = client.NewStdioMCPClient(s.cfg.Command, s.cfg.Env, s.cfg.Args...)
	case config.TransportSSE:
		c, err = client.NewSSEMCPClient(s.cfg.URL, client.WithHeaders(s.cfg.Headers))
	case config.TransportHTTP:
		c, err = client.NewStreamableHttpClient(s.cfg.URL, client.WithHTTPHeaders(s.cfg.Headers))
	default:
		return fmt.Errorf("mcp source %q: unsupported transport %q", s.cfg.ID, s.cfg.Transport)
	}
	if err != nil {
		return fmt.Errorf("mcp source %q: connecting: %w", s.cfg.ID, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "agentrelay", Version: "1.0.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return fmt.Errorf("mcp source %q: initializing: %w", s.cfg.ID, err)
	}

	s.client = c
	s.started = true
	return nil
}

// DiscoverTools connects if needed and refreshes the tool list.
func (s *MCPSource) DiscoverTools(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(ctx); err != nil {
		return err
	}

	result, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("mcp source %q: listing tools: %w", s.cfg.ID, err)
	}

	tools := make(map[string]Tool, len(result.Tools))
	infos := make([]ToolInfo, 0, len(result.Tools))
	for _, t := range result.Tools {
		wrapped := &mcpTool{source: s, name: t.Name, description: t.Description, schema: t.InputSchema}
		tools[t.Name] = wrapped
		infos = append(infos, wrapped.GetInfo())
	}

	s.tools = tools
	s.infos = infos
	return nil
}

func (s *MCPSource) ListTools() []ToolInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ToolInfo(nil), s.infos...)
}

func (s *MCPSource) GetTool(name string) (Tool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[name]
	return t, ok
}

// Close shuts down the underlying connection, if one was ever opened.
func (s *MCPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	s.started = false
	return err
}

func (s *MCPSource) callTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	if err := s.connect(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	c := s.client
	s.mu.Unlock()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return c.CallTool(ctx, req)
}

// mcpTool wraps one tool discovered from an MCPSource as a Tool.
type mcpTool struct {
	source      *MCPSource
	name        string
	description string
	schema      mcp.ToolInputSchema
}

func (t *mcpTool) GetName() string        { return t.name }
func (t *mcpTool) GetDescription() string { return t.description }

func (t *mcpTool) GetInfo() ToolInfo {
	params := make([]ToolParameter, 0, len(t.schema.Properties))
	required := make(map[string]bool, len(t.schema.Required))
	for _, r := range t.schema.Required {
		required[r] = true
	}
	for propName, rawSchema := range t.schema.Properties {
		param := ToolParameter{Name: propName, Required: required[propName]}
		if props, ok := rawSchema.(map[string]interface{}); ok {
			if typ, ok := props["type"].(string); ok {
				param.Type = typ
			}
			if desc, ok := props["description"].(string); ok {
				param.Description = desc
			}
		}
		params = append(params, param)
	}

	return ToolInfo{
		Name:        t.name,
		Description: t.description,
		Parameters:  params,
		ServerURL:   t.source.GetName(),
	}
}

func (t *mcpTool) Execute(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	if err := validateArgs(t.name, t.schema, args); err != nil {
		return ToolResult{Success: false, Error: err.Error(), ToolName: t.name}, err
	}

	result, err := t.source.callTool(ctx, t.name, args)
	if err != nil {
		return ToolResult{Success: false, Error: err.Error(), ToolName: t.name}, err
	}

	content := renderMCPContent(result)
	if result.IsError {
		return ToolResult{Success: false, Error: content, ToolName: t.name, Content: content}, fmt.Errorf("tool %s returned an error: %s", t.name, content)
	}

	return ToolResult{Success: true, Content: content, ToolName: t.name}, nil
}

func renderMCPContent(result *mcp.CallToolResult) string {
	var out string
	for _, c := range result.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			out += text.Text
		}
	}
	return out
}
