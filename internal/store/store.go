// Package store persists conversation state. The lifecycle orchestrator
// calls Save once per completed turn with the full updated conversation;
// Load rebuilds state for replay and reconnect.
package store

import (
	"context"
	"errors"

	"devscout/pkg/chattypes"
)

// ErrNotFound is returned by Load when no conversation has the given id.
var ErrNotFound = errors.New("conversation not found")

// Store is the durable conversation store capability.
type Store interface {
	// Save persists the full conversation state, replacing any previous
	// snapshot for the same id.
	Save(ctx context.Context, chat *chattypes.Chat) error
	// Load retrieves a conversation by id, or ErrNotFound.
	Load(ctx context.Context, id string) (*chattypes.Chat, error)
	// List returns the ids of all stored conversations for an owner.
	List(ctx context.Context, userID string) ([]string, error)
}
