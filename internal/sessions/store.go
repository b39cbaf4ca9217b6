// Package sessions persists conversation state: the Message history the
// Driver reads back and grafts onto a new request, keyed by session id
// (spec.md §1 deliverable (c), "a persistent conversation state").
package sessions

import (
	"context"

	"github.com/agentrt/runtime/pkg/chatmodel"
)

// Store is the persistence contract. Implementations must return messages
// in append order.
type Store interface {
	// Append adds messages to the end of sessionID's history.
	Append(ctx context.Context, sessionID string, messages []chatmodel.Message) error
	// Load returns sessionID's full history in append order, or an empty
	// slice if the session has never been written to.
	Load(ctx context.Context, sessionID string) ([]chatmodel.Message, error)
	// Close releases any resources the store holds open.
	Close() error
}
