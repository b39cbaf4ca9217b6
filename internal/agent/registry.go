package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MaxToolNameLength bounds the tool names Register accepts; MaxToolArgsSize
// bounds the raw argument string the Scheduler accepts before parsing it,
// resolving resources, or dispatching a handler. Both mirror the teacher's
// defensive limits on tool registration/execution.
const (
	MaxToolNameLength = 256
	MaxToolArgsSize    = 10 << 20
)

// registeredTool pairs a Tool with its compiled JSON schema validator.
type registeredTool struct {
	tool     Tool
	schema   *jsonschema.Schema
}

// ToolRegistry holds the set of tools available to the Driver/Scheduler for
// one operation, plus the configured completion-signal tool set (spec
// §4.2).
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]*registeredTool

	completionSet map[string]struct{}
}

// NewToolRegistry returns an empty registry with the given completion-
// signal tool names configured (spec §4.5 Completion Detector).
func NewToolRegistry(completionToolNames ...string) *ToolRegistry {
	set := make(map[string]struct{}, len(completionToolNames))
	for _, n := range completionToolNames {
		set[n] = struct{}{}
	}
	return &ToolRegistry{
		tools:         make(map[string]*registeredTool),
		completionSet: set,
	}
}

// Register adds a tool, compiling its argument schema for later validation.
// Registering a tool with a name already present overwrites the prior
// registration.
func (r *ToolRegistry) Register(t Tool) error {
	if t.Name() == "" {
		return fmt.Errorf("agent: cannot register tool with empty name")
	}
	if len(t.Name()) > MaxToolNameLength {
		return fmt.Errorf("agent: tool name %q exceeds %d bytes", t.Name(), MaxToolNameLength)
	}

	raw, err := json.Marshal(t.Schema().JSONSchema())
	if err != nil {
		return fmt.Errorf("agent: marshal schema for %q: %w", t.Name(), err)
	}
	compiler := jsonschema.NewCompiler()
	url := "mem://" + t.Name() + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("agent: add schema resource for %q: %w", t.Name(), err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("agent: compile schema for %q: %w", t.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = &registeredTool{tool: t, schema: compiled}
	return nil
}

// Unregister removes a tool by name. It is a no-op if the tool is absent.
func (r *ToolRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns the tool registered under name, if any.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return rt.tool, true
}

// ValidateArgs validates a parsed argument object against the tool's
// compiled schema. The registry validates before resource resolution so
// malformed calls surface a SchemaValidationFailure-flavored error earlier
// than the Scheduler's JSON parse alone would catch.
func (r *ToolRegistry) ValidateArgs(name string, args map[string]any) error {
	r.mu.RLock()
	rt, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("agent: unknown tool %q", name)
	}
	// jsonschema validates decoded-JSON-shaped values (map[string]interface{},
	// []interface{}, etc.), which is exactly what args already is.
	if err := rt.schema.Validate(args); err != nil {
		return fmt.Errorf("agent: args for %q failed schema validation: %w", name, err)
	}
	return nil
}

// IsCompletionTool reports whether name is in the configured completion-
// signal tool set (spec §4.5).
func (r *ToolRegistry) IsCompletionTool(name string) bool {
	_, ok := r.completionSet[name]
	return ok
}

// LLMToolDescriptor is the outbound "function" tool descriptor shape (spec
// §6).
type LLMToolDescriptor struct {
	Type     string             `json:"type"`
	Function LLMFunctionSchema  `json:"function"`
}

// LLMFunctionSchema is the function body of an LLMToolDescriptor.
type LLMFunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// AsLLMTools exports every registered tool as the descriptor list passed to
// the LLM provider (spec §6).
func (r *ToolRegistry) AsLLMTools() []LLMToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LLMToolDescriptor, 0, len(r.tools))
	for _, rt := range r.tools {
		out = append(out, LLMToolDescriptor{
			Type: "function",
			Function: LLMFunctionSchema{
				Name:        rt.tool.Name(),
				Description: rt.tool.Description(),
				Parameters:  rt.tool.Schema().JSONSchema(),
			},
		})
	}
	return out
}
