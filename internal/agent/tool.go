package agent

import (
	"context"

	"github.com/agentrt/runtime/internal/resources"
)

// Param is one named, ordered entry in a tool's argument schema.
type Param struct {
	Name string
	Spec *ArgSpec
}

// ArgSchema is a tool's ordered, named parameter list. Order is preserved
// for stable JSON-schema "required" and "properties" output.
type ArgSchema []Param

// JSONSchema renders the schema as a standard JSON-schema object (spec §6:
// type, properties, required).
func (s ArgSchema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s))
	required := make([]string, 0, len(s))
	for _, p := range s {
		props[p.Name] = p.Spec.JSONSchema()
		if p.Spec.Required() {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Resources unions the per-argument resource contributions of a concrete
// argument map against this schema (spec §4.1: "assembled by unioning the
// footprints of its individual argument values").
func (s ArgSchema) Resources(args map[string]any) resources.Footprint {
	var agg resources.Footprint
	for _, p := range s {
		val, ok := args[p.Name]
		if !ok {
			continue
		}
		agg = resources.Merge(agg, p.Spec.Resources(val))
	}
	return agg
}

// Tool is the runtime-dispatched interface every tool definition satisfies
// (spec §9: "polymorphic tool definitions -> interface with closures").
type Tool interface {
	Name() string
	Description() string
	Schema() ArgSchema

	// ResolveResources returns the call's full footprint given its parsed
	// arguments: the schema-derived per-argument union plus any resource
	// this tool always touches regardless of arguments (e.g. a blueprint
	// writer, or a commit tool).
	ResolveResources(args map[string]any) resources.Footprint

	// Run executes the tool's effect. The returned value is serialized to
	// JSON as the tool-role message content, or the literal string "done"
	// if it is nil (spec §4.4).
	Run(ctx context.Context, args map[string]any) (any, error)

	// OnStart and OnComplete are lifecycle hooks (spec §4.2) used for UI
	// rendering, loop detection, and history mirroring. Either may be a
	// no-op.
	OnStart(ctx context.Context, args map[string]any)
	OnComplete(ctx context.Context, result any, err error)
}

// BaseTool implements the lifecycle hooks and resource resolution most
// tools need, leaving only Name/Description/Schema/Run to the embedder.
// StaticFootprint captures resources a tool always touches independent of
// its arguments (blueprint writes, git commits).
type BaseTool struct {
	ToolName        string
	ToolDescription string
	ToolSchema      ArgSchema
	StaticFootprint resources.Footprint
}

func (b BaseTool) Name() string        { return b.ToolName }
func (b BaseTool) Description() string { return b.ToolDescription }
func (b BaseTool) Schema() ArgSchema   { return b.ToolSchema }

func (b BaseTool) ResolveResources(args map[string]any) resources.Footprint {
	return resources.Merge(b.StaticFootprint, b.ToolSchema.Resources(args))
}

func (b BaseTool) OnStart(ctx context.Context, args map[string]any)          {}
func (b BaseTool) OnComplete(ctx context.Context, result any, err error)     {}
