package agent

import "testing"

func TestRegistryRejectsEmptyName(t *testing.T) {
	reg := NewToolRegistry()
	tool := &echoTool{BaseTool: BaseTool{ToolName: "", ToolSchema: ArgSchema{}}}
	if err := reg.Register(tool); err == nil {
		t.Fatal("expected registering an unnamed tool to fail")
	}
}

func TestRegistryValidateArgsRejectsMissingRequired(t *testing.T) {
	reg := NewToolRegistry()
	tool := &echoTool{BaseTool: BaseTool{
		ToolName:   "echo",
		ToolSchema: ArgSchema{{Name: "text", Spec: String("required text")}},
	}}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := reg.ValidateArgs("echo", map[string]any{}); err == nil {
		t.Fatal("expected validation to fail when a required field is missing")
	}
	if err := reg.ValidateArgs("echo", map[string]any{"text": "hi"}); err != nil {
		t.Errorf("expected valid args to pass, got %v", err)
	}
}

func TestRegistryValidateArgsRejectsEnumMismatch(t *testing.T) {
	reg := NewToolRegistry()
	tool := &echoTool{BaseTool: BaseTool{
		ToolName:   "pick",
		ToolSchema: ArgSchema{{Name: "mode", Spec: Enum("pick a mode", "fast", "slow")}},
	}}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.ValidateArgs("pick", map[string]any{"mode": "turbo"}); err == nil {
		t.Fatal("expected an out-of-enum value to fail validation")
	}
	if err := reg.ValidateArgs("pick", map[string]any{"mode": "fast"}); err != nil {
		t.Errorf("expected in-enum value to pass, got %v", err)
	}
}

func TestAsLLMToolsExportsRegisteredTools(t *testing.T) {
	reg := NewToolRegistry()
	tool := &echoTool{BaseTool: BaseTool{
		ToolName:        "echo",
		ToolDescription: "echoes text",
		ToolSchema:      ArgSchema{{Name: "text", Spec: String("text")}},
	}}
	if err := reg.Register(tool); err != nil {
		t.Fatalf("Register: %v", err)
	}

	descs := reg.AsLLMTools()
	if len(descs) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descs))
	}
	if descs[0].Type != "function" || descs[0].Function.Name != "echo" {
		t.Errorf("unexpected descriptor: %+v", descs[0])
	}
}

func TestIsCompletionTool(t *testing.T) {
	reg := NewToolRegistry("mark_generation_complete")
	if !reg.IsCompletionTool("mark_generation_complete") {
		t.Error("expected configured completion tool to be recognized")
	}
	if reg.IsCompletionTool("read_file") {
		t.Error("expected unconfigured tool not to be recognized as a completion tool")
	}
}
