package sessions

import (
	"context"
	"testing"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

func TestSQLiteStoreAppendAndLoad(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	sessionID := "sess-1"

	msgs := []chatmodel.Message{
		chatmodel.NewMessage(chatmodel.RoleUser, "hello"),
		chatmodel.NewMessage(chatmodel.RoleAssistant, "hi there"),
	}
	if err := store.Append(ctx, sessionID, msgs); err != nil {
		t.Fatalf("Append: %v", err)
	}

	more := []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, "again")}
	if err := store.Append(ctx, sessionID, more); err != nil {
		t.Fatalf("Append second batch: %v", err)
	}

	loaded, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(loaded))
	}
	if loaded[0].Text != "hello" || loaded[1].Text != "hi there" || loaded[2].Text != "again" {
		t.Fatalf("unexpected message order/content: %+v", loaded)
	}
}

func TestSQLiteStoreLoadEmptySession(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	loaded, err := store.Load(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(loaded))
	}
}

func TestSQLiteStoreIsolatesSessions(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Append(ctx, "a", []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, "for a")}); err != nil {
		t.Fatalf("Append a: %v", err)
	}
	if err := store.Append(ctx, "b", []chatmodel.Message{chatmodel.NewMessage(chatmodel.RoleUser, "for b")}); err != nil {
		t.Fatalf("Append b: %v", err)
	}

	loadedA, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load a: %v", err)
	}
	if len(loadedA) != 1 || loadedA[0].Text != "for a" {
		t.Fatalf("session a leaked or missing data: %+v", loadedA)
	}
}
