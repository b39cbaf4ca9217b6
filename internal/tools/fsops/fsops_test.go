package fsops

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	write := NewWriteTool(root)
	read := NewReadTool(root)
	ctx := context.Background()

	if _, err := write.Run(ctx, map[string]any{"path": "pkg/main.go", "content": "package main"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := read.Run(ctx, map[string]any{"path": "pkg/main.go"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	result, ok := out.(map[string]any)
	if !ok || result["content"] != "package main" {
		t.Errorf("unexpected read result: %+v", out)
	}
}

func TestReadMissingPathErrors(t *testing.T) {
	read := NewReadTool(t.TempDir())
	if _, err := read.Run(context.Background(), map[string]any{"path": ""}); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestWriteCreatesParentDirectories(t *testing.T) {
	root := t.TempDir()
	write := NewWriteTool(root)
	if _, err := write.Run(context.Background(), map[string]any{"path": "a/b/c.txt", "content": "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "b", "c.txt")); err != nil {
		t.Errorf("expected nested file to exist: %v", err)
	}
}

func TestListToolReturnsWrittenFiles(t *testing.T) {
	root := t.TempDir()
	write := NewWriteTool(root)
	ctx := context.Background()
	if _, err := write.Run(ctx, map[string]any{"path": "one.go", "content": "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := write.Run(ctx, map[string]any{"path": "nested/two.go", "content": "y"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	list := NewListTool(root)
	out, err := list.Run(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	files, ok := out.(map[string]any)["files"].([]string)
	if !ok || len(files) != 2 {
		t.Fatalf("expected 2 listed files, got %+v", out)
	}
}

func TestListToolDeclaresAllFilesReadFootprint(t *testing.T) {
	list := NewListTool(t.TempDir())
	fp := list.ResolveResources(map[string]any{})
	if fp.Files == nil || !fp.Files.AllFiles {
		t.Errorf("expected an all-files read footprint, got %+v", fp.Files)
	}
}
