// Package chatmodel defines the message and tool-call types shared by the
// inference driver, scheduler, and governors.
package chatmodel

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentPart is one piece of a multi-part message body.
type ContentPart struct {
	Type     string `json:"type"` // "text" | "image"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ToolCallStub is the assistant's request to invoke a tool, as accumulated
// from streaming deltas or read back from history.
type ToolCallStub struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Valid reports whether the stub carries a non-empty function name (M2).
func (s ToolCallStub) Valid() bool {
	return s.Name != ""
}

// Message is one turn in a conversation. Content is either Text or Parts;
// callers should set exactly one.
type Message struct {
	ID          string         `json:"id"`
	Role        Role           `json:"role"`
	Text        string         `json:"text,omitempty"`
	Parts       []ContentPart  `json:"parts,omitempty"`
	ToolCalls   []ToolCallStub `json:"tool_calls,omitempty"`
	ToolCallID  string         `json:"tool_call_id,omitempty"`
	ToolName    string         `json:"tool_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewMessage returns a Message with a fresh stable id.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage builds an assistant message, applying M3: an empty
// tool-call slice is never stored, only a nil one.
func NewAssistantMessage(text string, toolCalls []ToolCallStub) Message {
	msg := NewMessage(RoleAssistant, text)
	if len(toolCalls) > 0 {
		msg.ToolCalls = toolCalls
	}
	return msg
}

// NewToolMessage builds a tool-role message answering a specific tool call.
func NewToolMessage(toolCallID, toolName, content string) Message {
	msg := NewMessage(RoleTool, content)
	msg.ToolCallID = toolCallID
	msg.ToolName = toolName
	return msg
}

// ValidToolCalls filters out stubs with empty function names (M2).
func ValidToolCalls(calls []ToolCallStub) []ToolCallStub {
	out := make([]ToolCallStub, 0, len(calls))
	for _, c := range calls {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}
