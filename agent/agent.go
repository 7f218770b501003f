package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/agentrelay/agentrelay/config"
	hectorcontext "github.com/agentrelay/agentrelay/context"
	"github.com/agentrelay/agentrelay/databases"
	"github.com/agentrelay/agentrelay/errs"
	"github.com/agentrelay/agentrelay/llms"
	"github.com/agentrelay/agentrelay/tools"
)

const defaultMaxSteps = 5
const defaultHistorySize = 20

// lifecycle states (spec §3: created → initialized → shutdown).
type lifecycleState int

const (
	stateCreated lifecycleState = iota
	stateInitialized
	stateShutdown
)

// Agent is a RuntimeAgent: an AgentConfig bound to its live collaborators
// (spec §3). The registry owns agents; an agent owns its tool-source
// connections and retrieval client; a reference back to the registry is held
// only to resolve delegation targets by lookup, never by ownership.
type Agent struct {
	cfg      *config.AgentConfig
	llm      llms.LLMProvider
	registry *AgentRegistry

	mu      sync.Mutex
	state   lifecycleState
	toolReg *tools.ToolRegistry
	search  *hectorcontext.SearchEngine

	histories   map[string]*hectorcontext.ConversationHistory
	historiesMu sync.Mutex

	delegationTools map[string]*delegationTool
}

// NewAgent constructs an agent in the created state. It does nothing
// network-visible; call Initialize (or Execute, which initializes lazily)
// before use.
func NewAgent(cfg *config.AgentConfig, llm llms.LLMProvider, registry *AgentRegistry) *Agent {
	return &Agent{
		cfg:       cfg,
		llm:       llm,
		registry:  registry,
		histories: make(map[string]*hectorcontext.ConversationHistory),
	}
}

func (a *Agent) Path() string               { return a.cfg.Path }
func (a *Agent) Config() *config.AgentConfig { return a.cfg }

// Initialize opens tool-source connections, builds the retrieval client, and
// synthesizes delegation tools. It is idempotent and safe to call multiple
// times; only the first call does any work (spec §4.2).
func (a *Agent) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != stateCreated {
		return nil
	}

	if a.cfg.ToolsEnabled() {
		a.toolReg = tools.NewToolRegistryFromConfig(ctx, a.cfg.ToolSources)
	} else {
		a.toolReg = tools.NewToolRegistry()
	}

	if a.cfg.Retrieval != nil && a.cfg.Retrieval.Enabled {
		search, err := hectorcontext.NewSearchEngineFromConfig(*a.cfg.Retrieval)
		if err != nil {
			slog.Warn("retrieval client unavailable, agent will answer without RAG context", "agent", a.cfg.Path, "error", err)
		} else {
			a.search = search
		}
	}

	if a.cfg.Delegation != nil && a.cfg.Delegation.Enabled && a.cfg.ToolsEnabled() {
		a.delegationTools = make(map[string]*delegationTool, len(a.cfg.Delegation.Targets))
		for _, target := range a.cfg.Delegation.Targets {
			a.delegationTools[target.ToolName] = newDelegationTool(target, a.registry)
		}
	}

	a.state = stateInitialized
	return nil
}

// Shutdown closes tool-source connections and the retrieval client, and
// marks the agent uninitialized (spec §4.2).
func (a *Agent) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != stateInitialized {
		return nil
	}

	var firstErr error
	if a.toolReg != nil {
		firstErr = a.toolReg.RemoveAllSources()
	}
	if a.search != nil {
		if err := a.search.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.state = stateShutdown
	return firstErr
}

func (a *Agent) conversationHistory(conversationID string) *hectorcontext.ConversationHistory {
	if conversationID == "" {
		conversationID = "default"
	}

	a.historiesMu.Lock()
	defer a.historiesMu.Unlock()

	h, ok := a.histories[conversationID]
	if !ok {
		var err error
		h, err = hectorcontext.NewConversationHistoryWithMax(conversationID, defaultHistorySize)
		if err != nil {
			h, _ = hectorcontext.NewConversationHistory(conversationID)
		}
		a.histories[conversationID] = h
	}
	return h
}

// Execute runs one non-streaming turn (spec §4.2).
func (a *Agent) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	if err := a.Initialize(ctx); err != nil {
		return nil, errs.Wrap(errs.CodeAgentExecutionErr, "initializing agent", err)
	}

	history := a.conversationHistory(input.ConversationID)
	systemPrompt := a.buildSystemPrompt(ctx, input)
	effective := a.effectiveTools(input)

	messages := a.buildMessages(systemPrompt, history, input.Message)
	toolDefs := toLLMToolDefinitions(effective)

	output, err := a.runLoop(ctx, messages, toolDefs, effective)
	if err != nil {
		return nil, errs.Wrap(errs.CodeAgentExecutionErr, fmt.Sprintf("agent %s execution failed", a.cfg.Path), err)
	}

	history.AddUserMessage(input.Message, nil)
	history.AddAssistantMessage(output.Text, map[string]interface{}{
		"finishReason": output.FinishReason,
	})

	return output, nil
}

// runLoop drives Execute's bounded tool-calling loop (spec §4.2: 5 steps per
// turn). ExecuteStreaming runs its own loop with the same cap in streamLoop.
func (a *Agent) runLoop(ctx context.Context, messages []llms.Message, toolDefs []llms.ToolDefinition, effective map[string]tools.Tool) (*ChatOutput, error) {
	maxSteps := defaultMaxSteps
	totalTokens := 0
	var calls []ToolCallRecord

	for step := 0; step < maxSteps; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, toolCalls, tokens, err := a.llm.Generate(messages, toolDefs)
		if err != nil {
			return nil, fmt.Errorf("model generation failed at step %d: %w", step, err)
		}
		totalTokens += tokens

		if len(toolCalls) == 0 {
			return &ChatOutput{Text: text, ToolCalls: calls, Usage: &Usage{TotalTokens: totalTokens}, FinishReason: FinishStop}, nil
		}

		messages = append(messages, llms.Message{Role: "assistant", Content: text, ToolCalls: toolCalls})

		for _, call := range toolCalls {
			record, resultMsg := a.invokeTool(ctx, call, effective)
			calls = append(calls, record)
			messages = append(messages, resultMsg)
		}

		if step == maxSteps-1 {
			return &ChatOutput{Text: text, ToolCalls: calls, Usage: &Usage{TotalTokens: totalTokens}, FinishReason: FinishSteps}, nil
		}
	}

	return &ChatOutput{ToolCalls: calls, Usage: &Usage{TotalTokens: totalTokens}, FinishReason: FinishSteps}, nil
}

func (a *Agent) invokeTool(ctx context.Context, call llms.ToolCall, effective map[string]tools.Tool) (ToolCallRecord, llms.Message) {
	record := ToolCallRecord{Name: call.Name, Args: call.Arguments}

	tool, ok := effective[call.Name]
	if !ok {
		record.Error = fmt.Sprintf("unknown tool %q", call.Name)
		return record, llms.Message{Role: "tool", Content: record.Error, ToolCallID: call.ID}
	}

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		record.Error = err.Error()
		return record, llms.Message{Role: "tool", Content: fmt.Sprintf("Error: %s", err.Error()), ToolCallID: call.ID}
	}

	record.Result = result.Content
	return record, llms.Message{Role: "tool", Content: result.Content, ToolCallID: call.ID}
}

func (a *Agent) buildMessages(systemPrompt string, history *hectorcontext.ConversationHistory, userMessage string) []llms.Message {
	messages := []llms.Message{{Role: "system", Content: systemPrompt}}

	for _, msg := range history.GetRecentMessages(defaultHistorySize) {
		messages = append(messages, llms.Message{Role: msg.Role, Content: msg.Content})
	}

	messages = append(messages, llms.Message{Role: "user", Content: userMessage})
	return messages
}

// buildSystemPrompt assembles the prompt per spec §4.2: base, then RAG
// context (silently skipped on failure), then a pageContext instruction
// when a dynamic tool was injected for it.
func (a *Agent) buildSystemPrompt(ctx context.Context, input ChatInput) string {
	prompt := a.cfg.SystemPrompt

	if a.search != nil && a.cfg.Retrieval != nil {
		results, err := a.search.Search(ctx, input.Message, a.cfg.Retrieval.TopK)
		if err != nil {
			slog.Warn("retrieval failed, falling back to base system prompt", "agent", a.cfg.Path, "error", err)
		} else {
			filtered := make([]databases.SearchResult, 0, len(results))
			for _, r := range results {
				if r.Score >= a.cfg.Retrieval.MinScore {
					filtered = append(filtered, r)
				}
			}
			if len(filtered) > 0 {
				prompt += "\n\n" + hectorcontext.FormatContext(filtered, a.cfg.Retrieval.ContextTemplate)
			}
		}
	}

	if pageContext, ok := dynamicPageContext(input); ok && pageContext != "" {
		prompt += "\n\n" + pageContextInstruction
	}

	return prompt
}
