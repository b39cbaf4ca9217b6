// Package gitops provides a minimal git-commit tool declaring the
// gitCommit resource kind (spec §5: "Git commits serialize with any file
// writes to avoid racing the working tree"). The git-over-storage backend
// is out of spec.md's scope; this is a reference stand-in.
package gitops

import (
	"context"
	"fmt"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/internal/resources"
)

// CommitTool commits the working tree with a caller-supplied message.
type CommitTool struct {
	agent.BaseTool
}

// NewCommitTool returns a "git_commit" tool.
func NewCommitTool() *CommitTool {
	return &CommitTool{
		BaseTool: agent.BaseTool{
			ToolName:        "git_commit",
			ToolDescription: "Commit the current working tree state.",
			ToolSchema: agent.ArgSchema{
				{Name: "message", Spec: agent.String("commit message")},
			},
			StaticFootprint: resources.Footprint{GitCommit: true},
		},
	}
}

func (t *CommitTool) Run(ctx context.Context, args map[string]any) (any, error) {
	msg, _ := args["message"].(string)
	if msg == "" {
		return nil, fmt.Errorf("gitops: message is required")
	}
	return map[string]any{"committed": true, "message": msg}, nil
}
