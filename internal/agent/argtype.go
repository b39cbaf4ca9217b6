package agent

import "github.com/agentrt/runtime/internal/resources"

// Kind is the closed set of semantic argument types a tool parameter can
// declare (spec §9 design note: "duck-typed tool arguments -> tagged
// schemas"). Each Kind carries its own JSON-schema fragment and resource
// contribution so resolution is mechanical rather than tool-specific.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindEnum
	KindFileRead
	KindFileWrite
	KindFileListRead
	KindSandboxExec
	KindArrayOf
	KindOptionalOf
	KindDefaultOf
)

// ArgSpec describes one tool parameter: its kind, schema metadata, and (for
// composite kinds) the wrapped element spec.
type ArgSpec struct {
	Kind        Kind
	Description string

	// KindEnum
	EnumValues []string

	// KindSandboxExec
	SandboxOp resources.SandboxOp

	// KindArrayOf, KindOptionalOf, KindDefaultOf
	Element *ArgSpec

	// KindDefaultOf
	Default any
}

// String declares a plain string parameter.
func String(desc string) *ArgSpec { return &ArgSpec{Kind: KindString, Description: desc} }

// Number declares a numeric parameter.
func Number(desc string) *ArgSpec { return &ArgSpec{Kind: KindNumber, Description: desc} }

// Boolean declares a boolean parameter.
func Boolean(desc string) *ArgSpec { return &ArgSpec{Kind: KindBoolean, Description: desc} }

// Enum declares a string parameter constrained to a fixed value set.
func Enum(desc string, values ...string) *ArgSpec {
	return &ArgSpec{Kind: KindEnum, Description: desc, EnumValues: values}
}

// FileRead declares a relative-file-path argument read in read mode.
func FileRead(desc string) *ArgSpec { return &ArgSpec{Kind: KindFileRead, Description: desc} }

// FileWrite declares a relative-file-path argument written in write mode.
func FileWrite(desc string) *ArgSpec { return &ArgSpec{Kind: KindFileWrite, Description: desc} }

// FileListRead declares an array-of-paths argument, each read in read mode.
func FileListRead(desc string) *ArgSpec { return &ArgSpec{Kind: KindFileListRead, Description: desc} }

// SandboxExec declares a parameter whose presence means the call performs
// the given sandbox operation.
func SandboxExec(desc string, op resources.SandboxOp) *ArgSpec {
	return &ArgSpec{Kind: KindSandboxExec, Description: desc, SandboxOp: op}
}

// ArrayOf declares a homogeneous array whose elements are each described by
// elem.
func ArrayOf(desc string, elem *ArgSpec) *ArgSpec {
	return &ArgSpec{Kind: KindArrayOf, Description: desc, Element: elem}
}

// OptionalOf wraps elem as a not-required parameter.
func OptionalOf(elem *ArgSpec) *ArgSpec {
	return &ArgSpec{Kind: KindOptionalOf, Description: elem.Description, Element: elem}
}

// DefaultOf wraps elem as a not-required parameter carrying a default value
// emitted into the JSON schema.
func DefaultOf(elem *ArgSpec, def any) *ArgSpec {
	return &ArgSpec{Kind: KindDefaultOf, Description: elem.Description, Element: elem, Default: def}
}

// Required reports whether a bare (non-optional, non-default) value must be
// supplied for this parameter.
func (s *ArgSpec) Required() bool {
	return s.Kind != KindOptionalOf && s.Kind != KindDefaultOf
}

// JSONSchema renders the parameter's JSON-schema fragment (spec §6 tool
// descriptor: type, enum, default, items, description).
func (s *ArgSpec) JSONSchema() map[string]any {
	switch s.Kind {
	case KindString, KindFileRead, KindFileWrite:
		return map[string]any{"type": "string", "description": s.Description}
	case KindNumber:
		return map[string]any{"type": "number", "description": s.Description}
	case KindBoolean:
		return map[string]any{"type": "boolean", "description": s.Description}
	case KindEnum:
		return map[string]any{"type": "string", "description": s.Description, "enum": s.EnumValues}
	case KindFileListRead:
		return map[string]any{
			"type":        "array",
			"description": s.Description,
			"items":       map[string]any{"type": "string"},
		}
	case KindSandboxExec:
		return map[string]any{"type": "string", "description": s.Description}
	case KindArrayOf:
		return map[string]any{
			"type":        "array",
			"description": s.Description,
			"items":       s.Element.JSONSchema(),
		}
	case KindOptionalOf:
		return s.Element.JSONSchema()
	case KindDefaultOf:
		frag := s.Element.JSONSchema()
		frag["default"] = s.Default
		return frag
	default:
		return map[string]any{"type": "string", "description": s.Description}
	}
}

// Resources returns the resource footprint contributed by a concrete value
// supplied for this parameter (spec §4.1).
func (s *ArgSpec) Resources(value any) resources.Footprint {
	switch s.Kind {
	case KindFileRead:
		path, _ := value.(string)
		if path == "" {
			return resources.Footprint{}
		}
		return resources.Footprint{Files: &resources.Files{Mode: resources.FileRead, Paths: []string{path}}}
	case KindFileWrite:
		path, _ := value.(string)
		if path == "" {
			return resources.Footprint{}
		}
		return resources.Footprint{Files: &resources.Files{Mode: resources.FileWrite, Paths: []string{path}}}
	case KindFileListRead:
		items, _ := value.([]any)
		paths := make([]string, 0, len(items))
		for _, it := range items {
			if p, ok := it.(string); ok && p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) == 0 {
			return resources.Footprint{}
		}
		return resources.Footprint{Files: &resources.Files{Mode: resources.FileRead, Paths: paths}}
	case KindSandboxExec:
		return resources.Footprint{Sandbox: &resources.Sandbox{Op: s.SandboxOp}}
	case KindArrayOf:
		items, _ := value.([]any)
		var agg resources.Footprint
		for _, it := range items {
			agg = resources.Merge(agg, s.Element.Resources(it))
		}
		return agg
	case KindOptionalOf, KindDefaultOf:
		if value == nil {
			return resources.Footprint{}
		}
		return s.Element.Resources(value)
	default:
		return resources.Footprint{}
	}
}
