package chatmodel

import "time"

// CompletionSignal records that a completion-signal tool fired during a
// batch of executed tool calls (§4.5 Completion Detector).
type CompletionSignal struct {
	Fired     bool      `json:"fired"`
	ToolName  string    `json:"tool_name"`
	Summary   string    `json:"summary,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCallContext is the accumulating record threaded through one top-level
// inference call: messages produced since the call started, the current
// recursion depth, any completion signal, and whether a loop warning has
// already been injected this turn.
type ToolCallContext struct {
	Messages       []Message
	Depth          int
	Completion     *CompletionSignal
	WarningIssued  bool
}

// NewToolCallContext returns an empty context for the start of a top-level
// inference call.
func NewToolCallContext() *ToolCallContext {
	return &ToolCallContext{}
}

// Step returns a copy of ctx advanced by one recursive step: depth
// incremented by exactly one (I7), with the given messages appended.
func (c *ToolCallContext) Step(appended []Message) *ToolCallContext {
	next := &ToolCallContext{
		Depth:         c.Depth + 1,
		Completion:    c.Completion,
		WarningIssued: c.WarningIssued,
	}
	next.Messages = make([]Message, 0, len(c.Messages)+len(appended))
	next.Messages = append(next.Messages, c.Messages...)
	next.Messages = append(next.Messages, appended...)
	return next
}
