// Package blueprint provides a minimal single-writer blueprint-document
// tool (spec §5: "The blueprint document is treated as a single-writer
// shared resource; the Scheduler serializes all blueprint-touching
// calls"). The blueprint generator's real semantics are out of spec.md's
// scope; this is a reference stand-in exercising the declared contract.
package blueprint

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/internal/resources"
)

// Document is the shared in-memory blueprint the tool mutates. A real
// deployment would back this with the platform's blueprint/PRD store.
type Document struct {
	mu       sync.Mutex
	Sections map[string]string
}

// NewDocument returns an empty blueprint document.
func NewDocument() *Document {
	return &Document{Sections: make(map[string]string)}
}

// UpdateTool appends or replaces one section of the shared blueprint.
type UpdateTool struct {
	agent.BaseTool
	doc *Document
}

// NewUpdateTool returns an "update_blueprint" tool writing into doc.
func NewUpdateTool(doc *Document) *UpdateTool {
	return &UpdateTool{
		doc: doc,
		BaseTool: agent.BaseTool{
			ToolName:        "update_blueprint",
			ToolDescription: "Write or replace one section of the project blueprint.",
			ToolSchema: agent.ArgSchema{
				{Name: "section", Spec: agent.String("section name")},
				{Name: "content", Spec: agent.String("section content")},
			},
			StaticFootprint: resources.Footprint{Blueprint: true},
		},
	}
}

func (t *UpdateTool) Run(ctx context.Context, args map[string]any) (any, error) {
	section, _ := args["section"].(string)
	content, _ := args["content"].(string)
	if section == "" {
		return nil, fmt.Errorf("blueprint: section is required")
	}
	t.doc.mu.Lock()
	t.doc.Sections[section] = content
	t.doc.mu.Unlock()
	return map[string]any{"section": section, "updated": true}, nil
}
