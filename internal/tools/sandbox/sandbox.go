// Package sandbox provides minimal tool implementations that declare the
// sandbox-exec resource kind for each of the four sandbox operations (spec
// §3 Resources, §4.1, §5: "the sandbox has at most one exclusive operation
// (exec, analysis, or deploy) at a time; reads run freely"). The sandbox
// container itself is out of spec.md's scope; these tools only need to
// honor the declared footprint contract.
package sandbox

import (
	"context"
	"fmt"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/internal/resources"
)

// opTool is shared by every sandbox tool: it differs only in name,
// description, and the sandbox op it declares.
type opTool struct {
	agent.BaseTool
	op resources.SandboxOp
}

func newOpTool(name, desc string, op resources.SandboxOp) *opTool {
	return &opTool{
		op: op,
		BaseTool: agent.BaseTool{
			ToolName:        name,
			ToolDescription: desc,
			ToolSchema: agent.ArgSchema{
				{Name: "command", Spec: agent.SandboxExec("command or target for the sandbox operation", op)},
			},
		},
	}
}

func (t *opTool) Run(ctx context.Context, args map[string]any) (any, error) {
	cmd, _ := args["command"].(string)
	if cmd == "" {
		return nil, fmt.Errorf("sandbox: command is required")
	}
	return map[string]any{"op": string(t.op), "command": cmd, "status": "ok"}, nil
}

// NewExecTool returns a "sandbox_exec" tool declaring an exclusive exec op.
func NewExecTool() *opTool {
	return newOpTool("sandbox_exec", "Run a shell command in the project sandbox.", resources.SandboxExec)
}

// NewAnalysisTool returns a "sandbox_analyze" tool declaring an exclusive
// analysis op.
func NewAnalysisTool() *opTool {
	return newOpTool("sandbox_analyze", "Run static analysis in the project sandbox.", resources.SandboxAnalysis)
}

// NewDeployTool returns a "sandbox_deploy" tool declaring an exclusive
// deploy op.
func NewDeployTool() *opTool {
	return newOpTool("sandbox_deploy", "Deploy the project's build output from the sandbox.", resources.SandboxDeploy)
}

// NewReadTool returns a "sandbox_read" tool declaring a non-exclusive read
// op; multiple reads may run concurrently with each other and with any
// other non-conflicting resource.
func NewReadTool() *opTool {
	return newOpTool("sandbox_read", "Read sandbox state (logs, process list) without side effects.", resources.SandboxRead)
}
