package chatmodel

import "testing"

func TestNewAssistantMessageDropsEmptyToolCallSlice(t *testing.T) {
	m := NewAssistantMessage("hi", nil)
	if m.ToolCalls != nil {
		t.Errorf("expected nil ToolCalls, got %+v", m.ToolCalls)
	}

	m2 := NewAssistantMessage("hi", []ToolCallStub{})
	if m2.ToolCalls != nil {
		t.Errorf("expected empty slice to collapse to nil, got %+v", m2.ToolCalls)
	}
}

func TestValidToolCallsDropsEmptyNames(t *testing.T) {
	in := []ToolCallStub{
		{ID: "1", Name: "read_file"},
		{ID: "2", Name: ""},
		{ID: "3", Name: "write_file"},
	}
	out := ValidToolCalls(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 valid calls, got %d", len(out))
	}
	if out[0].Name != "read_file" || out[1].Name != "write_file" {
		t.Errorf("unexpected filtered result: %+v", out)
	}
}

func TestNewToolMessageSetsIdentity(t *testing.T) {
	m := NewToolMessage("call_1", "read_file", `{"content":"x"}`)
	if m.Role != RoleTool || m.ToolCallID != "call_1" || m.ToolName != "read_file" {
		t.Errorf("unexpected tool message: %+v", m)
	}
}

func TestNewMessageAssignsStableID(t *testing.T) {
	a := NewMessage(RoleUser, "hi")
	b := NewMessage(RoleUser, "hi")
	if a.ID == "" || b.ID == "" {
		t.Error("expected non-empty ids")
	}
	if a.ID == b.ID {
		t.Error("expected distinct ids across messages")
	}
}
