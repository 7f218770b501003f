// Package agent implements the agent runtime (spec §3, §4.2): binding an
// AgentConfig to its live collaborators (tool sources, retrieval client,
// registry reference for delegation) and driving the bounded tool-calling
// loop that turns a ChatInput into a ChatOutput or a stream of ChatChunks.
package agent

// ChatInput is one turn of conversation sent to an agent (spec §3).
type ChatInput struct {
	Message        string
	ConversationID string
	Metadata       map[string]interface{}
}

// ToolCallRecord records one tool invocation made during a turn, surfaced
// back to the caller in ChatOutput.
type ToolCallRecord struct {
	Name   string                 `json:"name"`
	Args   map[string]interface{} `json:"args"`
	Result string                 `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// Usage reports token accounting for a turn.
type Usage struct {
	TotalTokens int `json:"totalTokens"`
}

// ChatOutput is the result of a non-streaming turn (spec §3).
type ChatOutput struct {
	Text         string           `json:"text"`
	ToolCalls    []ToolCallRecord `json:"toolCalls"`
	Usage        *Usage           `json:"usage,omitempty"`
	FinishReason string           `json:"finishReason"`
}

// Finish reasons a turn can end with.
const (
	FinishStop      = "stop"
	FinishToolCalls = "tool-calls"
	FinishSteps     = "steps"
	FinishError     = "error"
)

// ChatChunk is one unit of a streamed turn (spec §3). Exactly zero or one
// finish chunk is emitted, and only when FinishReason != FinishToolCalls;
// an error chunk always terminates the stream.
type ChatChunk struct {
	Type string `json:"type"` // "text" | "tool-call" | "tool-result" | "error" | "finish"

	Text string `json:"text,omitempty"`

	ToolCallName string                 `json:"toolCallName,omitempty"`
	ToolCallArgs map[string]interface{} `json:"toolCallArgs,omitempty"`

	ToolResultID      string `json:"toolResultId,omitempty"`
	ToolResultContent string `json:"toolResultContent,omitempty"`

	Error string `json:"error,omitempty"`

	FinishReason string `json:"finishReason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}
