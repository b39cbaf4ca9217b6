// Package fsops provides minimal file read/write tool implementations
// exercising the file-read and file-write resource kinds (spec §4.1, §9).
// Per spec.md's Non-goals, the runtime only needs these tools to honor
// their declared contract; the effects here are a reference stand-in, not
// a production file store.
package fsops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentrt/runtime/internal/agent"
	"github.com/agentrt/runtime/internal/resources"
)

// ReadTool reads one file under root and returns its contents.
type ReadTool struct {
	agent.BaseTool
	Root string
}

// NewReadTool returns a "read_file" tool rooted at root.
func NewReadTool(root string) *ReadTool {
	return &ReadTool{
		Root: root,
		BaseTool: agent.BaseTool{
			ToolName:        "read_file",
			ToolDescription: "Read the contents of a project file.",
			ToolSchema: agent.ArgSchema{
				{Name: "path", Spec: agent.FileRead("relative path of the file to read")},
			},
		},
	}
}

func (t *ReadTool) Run(ctx context.Context, args map[string]any) (any, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("fsops: path is required")
	}
	full := filepath.Join(t.Root, filepath.Clean("/"+path))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("fsops: read %q: %w", path, err)
	}
	return map[string]any{"path": path, "content": string(data)}, nil
}

// WriteTool writes one file under root, creating parent directories as
// needed.
type WriteTool struct {
	agent.BaseTool
	Root string
}

// NewWriteTool returns a "write_file" tool rooted at root.
func NewWriteTool(root string) *WriteTool {
	return &WriteTool{
		Root: root,
		BaseTool: agent.BaseTool{
			ToolName:        "write_file",
			ToolDescription: "Write content to a project file, creating it if absent.",
			ToolSchema: agent.ArgSchema{
				{Name: "path", Spec: agent.FileWrite("relative path of the file to write")},
				{Name: "content", Spec: agent.String("full file content")},
			},
		},
	}
}

func (t *WriteTool) Run(ctx context.Context, args map[string]any) (any, error) {
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	if path == "" {
		return nil, fmt.Errorf("fsops: path is required")
	}
	full := filepath.Join(t.Root, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("fsops: mkdir for %q: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("fsops: write %q: %w", path, err)
	}
	return map[string]any{"path": path, "bytesWritten": len(content)}, nil
}

// ListTool lists every file under root. It declares a static all-files read
// footprint rather than any concrete path; it takes no file-list argument.
type ListTool struct {
	agent.BaseTool
	Root string
}

// NewListTool returns a "list_files" tool rooted at root.
func NewListTool(root string) *ListTool {
	return &ListTool{
		Root: root,
		BaseTool: agent.BaseTool{
			ToolName:        "list_files",
			ToolDescription: "List every file in the project.",
			ToolSchema:      agent.ArgSchema{},
			StaticFootprint: resources.Footprint{
				Files: &resources.Files{Mode: resources.FileRead, AllFiles: true},
			},
		},
	}
}

func (t *ListTool) Run(ctx context.Context, args map[string]any) (any, error) {
	var out []string
	err := filepath.WalkDir(t.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, relErr := filepath.Rel(t.Root, path)
			if relErr == nil {
				out = append(out, rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fsops: list: %w", err)
	}
	return map[string]any{"files": out}, nil
}
