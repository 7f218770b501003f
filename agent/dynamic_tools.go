package agent

import (
	"context"
	"strings"

	"github.com/agentrelay/agentrelay/tools"
)

const pageContextInstruction = "You have access to a getPageContent tool that returns the content currently visible on the user's screen. Prefer calling it when the user refers to something on screen."

const (
	pageSectionTables = "--- Data Tables ---"
	pageSectionForms  = "--- Form Fields ---"
)

// funcTool adapts a plain Go function to the tools.Tool interface, used for
// dynamic per-request tools synthesized at runtime rather than discovered
// from an external source. Delegation tools have their own type,
// delegationTool.
type funcTool struct {
	name        string
	description string
	parameters  []tools.ToolParameter
	execute     func(ctx context.Context, args map[string]interface{}) (tools.ToolResult, error)
}

func (t *funcTool) GetName() string        { return t.name }
func (t *funcTool) GetDescription() string { return t.description }

func (t *funcTool) GetInfo() tools.ToolInfo {
	return tools.ToolInfo{Name: t.name, Description: t.description, Parameters: t.parameters}
}

func (t *funcTool) Execute(ctx context.Context, args map[string]interface{}) (tools.ToolResult, error) {
	return t.execute(ctx, args)
}

// dynamicPageContext extracts the recognized pageContext metadata key
// (spec §4.2 dynamicTools rule 1).
func dynamicPageContext(input ChatInput) (string, bool) {
	raw, ok := input.Metadata["pageContext"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// newGetPageContentTool builds the getPageContent dynamic tool over one
// request's page context string (spec §4.2).
func newGetPageContentTool(pageContext string) tools.Tool {
	return &funcTool{
		name:        "getPageContent",
		description: "Returns the content currently visible on the user's screen, optionally filtered to a section.",
		parameters: []tools.ToolParameter{
			{Name: "section", Type: "string", Description: "all, tables, forms, or headings", Enum: []string{"all", "tables", "forms", "headings"}},
		},
		execute: func(ctx context.Context, args map[string]interface{}) (tools.ToolResult, error) {
			section, _ := args["section"].(string)
			content := extractPageSection(pageContext, section)
			return tools.ToolResult{Success: true, Content: content, ToolName: "getPageContent"}, nil
		},
	}
}

// extractPageSection matches the documented section markers in the page
// context string (spec §4.2): "--- Data Tables ---", "--- Form Fields ---",
// and leading "#" heading lines.
func extractPageSection(pageContext, section string) string {
	switch section {
	case "tables":
		return sectionBetween(pageContext, pageSectionTables, pageSectionForms)
	case "forms":
		return sectionBetween(pageContext, pageSectionForms, "")
	case "headings":
		return headingLines(pageContext)
	default:
		return pageContext
	}
}

func sectionBetween(text, startMarker, endMarker string) string {
	startIdx := strings.Index(text, startMarker)
	if startIdx == -1 {
		return ""
	}
	rest := text[startIdx+len(startMarker):]
	if endMarker == "" {
		return strings.TrimSpace(rest)
	}
	if endIdx := strings.Index(rest, endMarker); endIdx != -1 {
		return strings.TrimSpace(rest[:endIdx])
	}
	return strings.TrimSpace(rest)
}

func headingLines(text string) string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			headings = append(headings, trimmed)
		}
	}
	return strings.Join(headings, "\n")
}

// effectiveTools computes staticTools ∪ dynamicTools(input) (spec §4.2).
func (a *Agent) effectiveTools(input ChatInput) map[string]tools.Tool {
	effective := make(map[string]tools.Tool)

	if a.toolReg != nil {
		for _, info := range a.toolReg.ListTools() {
			if tool, err := a.toolReg.GetTool(info.Name); err == nil {
				effective[info.Name] = tool
			}
		}
	}

	for name, delegate := range a.delegationTools {
		effective[name] = delegate
	}

	if pageContext, ok := dynamicPageContext(input); ok && pageContext != "" {
		effective["getPageContent"] = newGetPageContentTool(pageContext)
	}

	return effective
}

