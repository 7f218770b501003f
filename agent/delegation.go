package agent

import (
	"context"
	"fmt"

	"github.com/agentrelay/agentrelay/config"
	"github.com/agentrelay/agentrelay/tools"
)

// delegationTool invokes another registered agent's non-streaming execute
// as a tool call (spec §4.2). It holds only a lookup reference to the
// registry, never ownership of the target agent.
type delegationTool struct {
	target   config.DelegationTarget
	registry *AgentRegistry
}

func newDelegationTool(target config.DelegationTarget, registry *AgentRegistry) *delegationTool {
	return &delegationTool{target: target, registry: registry}
}

func (t *delegationTool) GetName() string { return t.target.ToolName }

func (t *delegationTool) GetDescription() string {
	if t.target.Description != "" {
		return t.target.Description
	}
	return fmt.Sprintf("Delegate to the %s agent.", t.target.AgentPath)
}

func (t *delegationTool) GetInfo() tools.ToolInfo {
	return tools.ToolInfo{
		Name:        t.GetName(),
		Description: t.GetDescription(),
		Parameters: []tools.ToolParameter{
			{Name: "message", Type: "string", Description: "message to send to the delegate agent", Required: true},
		},
	}
}

func (t *delegationTool) Execute(ctx context.Context, args map[string]interface{}) (tools.ToolResult, error) {
	message, _ := args["message"].(string)

	target, err := t.registry.GetAgent(t.target.AgentPath)
	if err != nil {
		errMsg := fmt.Sprintf("Error: Failed to get response from %s agent. %s", t.target.AgentPath, err.Error())
		return tools.ToolResult{Success: false, Error: errMsg, Content: errMsg, ToolName: t.GetName()}, nil
	}

	output, err := target.Execute(ctx, ChatInput{Message: message})
	if err != nil {
		errMsg := fmt.Sprintf("Error: Failed to get response from %s agent. %s", t.target.AgentPath, err.Error())
		return tools.ToolResult{Success: false, Error: errMsg, Content: errMsg, ToolName: t.GetName()}, nil
	}

	return tools.ToolResult{Success: true, Content: output.Text, ToolName: t.GetName()}, nil
}
