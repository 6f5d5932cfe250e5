// Package store defines persistence for conversations and provides an
// in-memory implementation. The SQLite implementation lives in
// modules/store/sqlite.
package store

import (
	"context"
	"errors"

	"github.com/flemzord/chatlist/pkg/message"
)

// ServiceName is the core service name a store module registers itself under.
const ServiceName = "store"

// ErrNotFound is returned when a conversation or position does not exist.
var ErrNotFound = errors.New("store: not found")

// Store persists the ordered records of each conversation. Derived display
// state is stored as-is but is recomputed whenever a conversation is loaded
// back into a list, so NameVisible and TimeLabel are not persisted.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create registers an empty conversation. Creating an existing
	// conversation is a no-op.
	Create(ctx context.Context, conversationID string) error

	// Conversations returns all conversation IDs in creation order.
	Conversations(ctx context.Context) ([]string, error)

	// Delete removes a conversation and all its records.
	Delete(ctx context.Context, conversationID string) error

	// Append adds a record at the end of a conversation.
	Append(ctx context.Context, conversationID string, rec message.Record) error

	// RemoveAt removes the record at position. It returns ErrNotFound when
	// the position is out of range.
	RemoveAt(ctx context.Context, conversationID string, position int) error

	// Clear removes every record but keeps the conversation.
	Clear(ctx context.Context, conversationID string) error

	// Replace swaps the whole record sequence of a conversation.
	Replace(ctx context.Context, conversationID string, recs []message.Record) error

	// Load returns the records of a conversation in order.
	Load(ctx context.Context, conversationID string) ([]message.Record, error)

	// Len returns the number of records in a conversation.
	Len(ctx context.Context, conversationID string) (int, error)
}
