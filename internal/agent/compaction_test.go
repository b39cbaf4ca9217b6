package agent

import (
	"testing"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

func TestGraftHistoryDropsOrphanToolMessages(t *testing.T) {
	msgs := []chatmodel.Message{
		chatmodel.NewAssistantMessage("", []chatmodel.ToolCallStub{{ID: "call_1", Name: "read_file"}}),
		chatmodel.NewToolMessage("call_1", "read_file", `{"content":"x"}`),
		// Orphan: no preceding assistant tool-call with this id.
		chatmodel.NewToolMessage("call_stale", "read_file", `{"content":"y"}`),
		chatmodel.NewMessage(chatmodel.RoleUser, "thanks"),
	}

	out := GraftHistory(nil, msgs)

	if len(out) != 3 {
		t.Fatalf("expected 3 messages after dropping the orphan, got %d: %+v", len(out), out)
	}
	for _, m := range out {
		if m.Role == chatmodel.RoleTool && m.ToolCallID == "call_stale" {
			t.Fatal("orphan tool message should have been dropped")
		}
	}
}

func TestGraftHistoryClearsPendingOnNewAssistantMessage(t *testing.T) {
	msgs := []chatmodel.Message{
		chatmodel.NewAssistantMessage("", []chatmodel.ToolCallStub{{ID: "call_1", Name: "read_file"}}),
		chatmodel.NewAssistantMessage("changed my mind", nil),
		// call_1 is now orphaned: a newer assistant message superseded it.
		chatmodel.NewToolMessage("call_1", "read_file", `{}`),
	}

	out := GraftHistory(nil, msgs)
	if len(out) != 2 {
		t.Fatalf("expected the stale tool message to be dropped, got %d messages: %+v", len(out), out)
	}
}

func TestGraftHistoryNeverStoresEmptyToolCallList(t *testing.T) {
	stub := chatmodel.Message{
		ID:        "m1",
		Role:      chatmodel.RoleAssistant,
		Text:      "hi",
		ToolCalls: []chatmodel.ToolCallStub{{ID: "x", Name: ""}}, // invalid, empty name
	}
	out := GraftHistory(nil, []chatmodel.Message{stub})
	if len(out) != 1 {
		t.Fatalf("expected 1 message, got %d", len(out))
	}
	if out[0].ToolCalls != nil {
		t.Errorf("expected ToolCalls to be nil after dropping invalid stubs, got %+v", out[0].ToolCalls)
	}
}

func TestOptimizeMessageIdempotent(t *testing.T) {
	m := chatmodel.Message{Text: "line one\n\n\n\n\n\nline two   \n\t"}
	once := OptimizeMessage(m)
	twice := OptimizeMessage(once)
	if once.Text != twice.Text {
		t.Errorf("OptimizeMessage not idempotent: %q vs %q", once.Text, twice.Text)
	}
	if once.Text != "line one\n\n\nline two" {
		t.Errorf("unexpected optimized text: %q", once.Text)
	}
}
