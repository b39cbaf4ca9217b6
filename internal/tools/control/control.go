// Package control provides the completion-signal tool (spec §4.2, §4.5):
// invoking it tells the Driver the operation is done and the recursion
// should terminate cleanly.
package control

import (
	"context"

	"github.com/agentrt/runtime/internal/agent"
)

// MarkCompleteTool is registered under the name the operation's completion-
// tool set configures (typically "mark_generation_complete"). It carries no
// resource footprint of its own.
type MarkCompleteTool struct {
	agent.BaseTool
}

// NewMarkCompleteTool returns a "mark_generation_complete" tool.
func NewMarkCompleteTool() *MarkCompleteTool {
	return &MarkCompleteTool{
		BaseTool: agent.BaseTool{
			ToolName:        "mark_generation_complete",
			ToolDescription: "Signal that code generation for this request is finished.",
			ToolSchema: agent.ArgSchema{
				{Name: "summary", Spec: agent.String("one-line summary of what was generated")},
				{Name: "filesGenerated", Spec: agent.OptionalOf(agent.Number("count of files generated"))},
			},
		},
	}
}

// Run returns a {message: summary} result — the shape the Completion
// Detector reads the completion summary from (spec §4.5).
func (t *MarkCompleteTool) Run(ctx context.Context, args map[string]any) (any, error) {
	summary, _ := args["summary"].(string)
	result := map[string]any{"message": summary}
	if fg, ok := args["filesGenerated"]; ok {
		result["filesGenerated"] = fg
	}
	return result, nil
}
