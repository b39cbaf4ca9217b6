package openai

import (
	"testing"

	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/pkg/chatmodel"
)

func TestToWireMessageTranslatesToolRole(t *testing.T) {
	m := chatmodel.NewToolMessage("call_1", "read_file", `{"content":"x"}`)
	wire := toWireMessage(m)
	if wire.Role != string(chatmodel.RoleTool) || wire.ToolCallID != "call_1" || wire.Name != "read_file" {
		t.Errorf("unexpected wire message: %+v", wire)
	}
}

func TestToWireMessageCarriesAssistantToolCalls(t *testing.T) {
	m := chatmodel.NewAssistantMessage("", []chatmodel.ToolCallStub{
		{ID: "call_1", Name: "read_file", Arguments: `{"path":"a.go"}`},
	})
	wire := toWireMessage(m)
	if len(wire.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(wire.ToolCalls))
	}
	if wire.ToolCalls[0].Function.Name != "read_file" {
		t.Errorf("unexpected tool call: %+v", wire.ToolCalls[0])
	}
}

func TestToWireRequestIncludesToolsAndStreamFlag(t *testing.T) {
	req := agent.CompletionRequest{
		Model:    "gpt-test",
		Messages: []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, "hi")},
		Tools: []agent.LLMToolDescriptor{
			{Type: "function", Function: agent.LLMFunctionSchema{Name: "read_file", Description: "reads"}},
		},
	}
	wire := toWireRequest(req)
	if !wire.Stream {
		t.Error("expected streaming request")
	}
	if len(wire.Tools) != 1 || wire.Tools[0].Function.Name != "read_file" {
		t.Errorf("unexpected tools in wire request: %+v", wire.Tools)
	}
	if len(wire.Messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(wire.Messages))
	}
}

func TestToDeltaCarriesIndexAndID(t *testing.T) {
	idx := 2
	tc := openaisdk.ToolCall{
		Index: &idx,
		ID:    "call_9",
		Function: openaisdk.FunctionCall{
			Name:      "write_file",
			Arguments: `{"path":`,
		},
	}
	d := toDelta(tc)
	if d.Index == nil || *d.Index != 2 {
		t.Errorf("expected index 2, got %+v", d.Index)
	}
	if d.ID == nil || *d.ID != "call_9" {
		t.Errorf("expected id call_9, got %+v", d.ID)
	}
	if d.Name != "write_file" || d.ArgChunk != `{"path":` {
		t.Errorf("unexpected delta: %+v", d)
	}
}

func TestToDeltaOmitsAbsentIndexAndID(t *testing.T) {
	tc := openaisdk.ToolCall{Function: openaisdk.FunctionCall{Name: "write_file"}}
	d := toDelta(tc)
	if d.Index != nil || d.ID != nil {
		t.Errorf("expected nil index/id, got %+v", d)
	}
}
