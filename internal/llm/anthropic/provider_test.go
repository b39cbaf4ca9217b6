package anthropic

import (
	"testing"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/pkg/chatmodel"
)

func TestToWireMessageToolResultCarriesNoPanic(t *testing.T) {
	m := chatmodel.NewToolMessage("call_1", "read_file", `{"content":"x"}`)
	wire := toWireMessage(m)
	if len(wire.Content) != 1 {
		t.Fatalf("expected one tool-result content block, got %d", len(wire.Content))
	}
}

func TestToWireMessageAssistantCarriesTextAndToolUse(t *testing.T) {
	m := chatmodel.NewAssistantMessage("thinking out loud", []chatmodel.ToolCallStub{
		{ID: "call_1", Name: "read_file", Arguments: `{"path":"a.go"}`},
	})
	wire := toWireMessage(m)
	if len(wire.Content) != 2 {
		t.Fatalf("expected a text block and a tool-use block, got %d", len(wire.Content))
	}
}

func TestToWireMessageAssistantOmitsEmptyText(t *testing.T) {
	m := chatmodel.NewAssistantMessage("", []chatmodel.ToolCallStub{
		{ID: "call_1", Name: "read_file", Arguments: `{}`},
	})
	wire := toWireMessage(m)
	if len(wire.Content) != 1 {
		t.Fatalf("expected only the tool-use block when text is empty, got %d", len(wire.Content))
	}
}

func TestToWireParamsSeparatesSystemMessage(t *testing.T) {
	req := agent.CompletionRequest{
		Model: "claude-test",
		Messages: []chatmodel.Message{
			chatmodel.NewMessage(chatmodel.RoleSystem, "be terse"),
			chatmodel.NewMessage(chatmodel.RoleUser, "hi"),
		},
	}
	params := toWireParams(req)
	if len(params.System) != 1 || params.System[0].Text != "be terse" {
		t.Errorf("expected system prompt extracted, got %+v", params.System)
	}
	if len(params.Messages) != 1 {
		t.Errorf("expected only the non-system message to remain, got %d", len(params.Messages))
	}
}

func TestToWireParamsOmitsSystemWhenAbsent(t *testing.T) {
	req := agent.CompletionRequest{
		Model:    "claude-test",
		Messages: []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, "hi")},
	}
	params := toWireParams(req)
	if len(params.System) != 0 {
		t.Errorf("expected no system block, got %+v", params.System)
	}
}
