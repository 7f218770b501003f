package agent

import (
	"context"

	hectorcontext "github.com/agentrelay/agentrelay/context"
	"github.com/agentrelay/agentrelay/llms"
)

// ExecuteStreaming runs one turn emitting ChatChunks as they arrive (spec
// §4.2). The bounded step cap and system-prompt assembly are identical to
// Execute; only chunk emission differs. The channel is closed once a
// terminal chunk (finish or error) has been sent.
func (a *Agent) ExecuteStreaming(ctx context.Context, input ChatInput) (<-chan ChatChunk, error) {
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}

	out := make(chan ChatChunk, 16)
	go a.streamLoop(ctx, input, out)
	return out, nil
}

func (a *Agent) streamLoop(ctx context.Context, input ChatInput, out chan<- ChatChunk) {
	defer close(out)

	history := a.conversationHistory(input.ConversationID)
	systemPrompt := a.buildSystemPrompt(ctx, input)
	effective := a.effectiveTools(input)
	messages := a.buildMessages(systemPrompt, history, input.Message)
	toolDefs := toLLMToolDefinitions(effective)

	totalTokens := 0
	var finalText string

	for step := 0; step < defaultMaxSteps; step++ {
		select {
		case <-ctx.Done():
			out <- ChatChunk{Type: "error", Error: ctx.Err().Error()}
			return
		default:
		}

		chunks, err := a.llm.GenerateStreaming(messages, toolDefs)
		if err != nil {
			out <- ChatChunk{Type: "error", Error: err.Error()}
			return
		}

		text, toolCalls, tokens, streamErr := a.drainStream(chunks, out)
		totalTokens += tokens
		if streamErr != nil {
			out <- ChatChunk{Type: "error", Error: streamErr.Error()}
			return
		}

		finalText = text

		if len(toolCalls) == 0 {
			out <- ChatChunk{Type: "finish", FinishReason: FinishStop, Usage: &Usage{TotalTokens: totalTokens}}
			a.recordTurn(history, input.Message, finalText, FinishStop)
			return
		}

		messages = append(messages, llms.Message{Role: "assistant", Content: text, ToolCalls: toolCalls})

		for _, call := range toolCalls {
			out <- ChatChunk{Type: "tool-call", ToolCallName: call.Name, ToolCallArgs: call.Arguments}
			_, resultMsg := a.invokeTool(ctx, call, effective)
			out <- ChatChunk{Type: "tool-result", ToolResultID: call.ID, ToolResultContent: resultMsg.Content}
			messages = append(messages, resultMsg)
		}

		if step == defaultMaxSteps-1 {
			out <- ChatChunk{Type: "finish", FinishReason: FinishSteps, Usage: &Usage{TotalTokens: totalTokens}}
			a.recordTurn(history, input.Message, finalText, FinishSteps)
			return
		}
	}
}

// drainStream reads one model invocation's stream, forwarding text deltas
// immediately and accumulating any tool calls for the caller to execute.
func (a *Agent) drainStream(chunks <-chan llms.StreamChunk, out chan<- ChatChunk) (string, []llms.ToolCall, int, error) {
	var text string
	var toolCalls []llms.ToolCall
	tokens := 0

	for chunk := range chunks {
		switch chunk.Type {
		case "text":
			text += chunk.Text
			out <- ChatChunk{Type: "text", Text: chunk.Text}
		case "tool_call":
			if chunk.ToolCall != nil {
				toolCalls = append(toolCalls, *chunk.ToolCall)
			}
		case "error":
			return text, toolCalls, tokens, chunk.Error
		case "done":
			tokens = chunk.Tokens
		}
	}

	return text, toolCalls, tokens, nil
}

func (a *Agent) recordTurn(history *hectorcontext.ConversationHistory, userMessage, assistantText, finishReason string) {
	history.AddUserMessage(userMessage, nil)
	history.AddAssistantMessage(assistantText, map[string]interface{}{"finishReason": finishReason})
}

