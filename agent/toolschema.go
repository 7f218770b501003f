package agent

import (
	"sort"

	"github.com/agentrelay/agentrelay/llms"
	"github.com/agentrelay/agentrelay/tools"
)

// toLLMToolDefinitions translates the internal tool schema into the
// JSON-Schema-shaped ToolDefinition the model provider expects (spec §4.3
// C1, direction: internal → model-facing). Tools are sorted by name so the
// definitions sent to the model are stable across calls.
func toLLMToolDefinitions(effective map[string]tools.Tool) []llms.ToolDefinition {
	names := make([]string, 0, len(effective))
	for name := range effective {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]llms.ToolDefinition, 0, len(names))
	for _, name := range names {
		info := effective[name].GetInfo()
		defs = append(defs, llms.ToolDefinition{
			Name:        info.Name,
			Description: info.Description,
			Parameters:  parametersToJSONSchema(info.Parameters),
		})
	}
	return defs
}

func parametersToJSONSchema(params []tools.ToolParameter) map[string]interface{} {
	properties := make(map[string]interface{}, len(params))
	var required []string

	for _, p := range params {
		prop := map[string]interface{}{"description": p.Description}
		if p.Type != "" {
			prop["type"] = p.Type
		} else {
			prop["type"] = "string"
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Items) > 0 {
			prop["items"] = p.Items
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
