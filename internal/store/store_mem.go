package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/flemzord/chatlist/pkg/message"
)

// InMemoryStore is a thread-safe, in-memory implementation of Store.
type InMemoryStore struct {
	mu            sync.RWMutex
	order         []string
	conversations map[string][]message.Record
}

// NewInMemoryStore creates a new empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[string][]message.Record),
	}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

// Create registers an empty conversation.
func (s *InMemoryStore) Create(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; ok {
		return nil
	}
	s.conversations[conversationID] = nil
	s.order = append(s.order, conversationID)
	return nil
}

// Conversations returns all conversation IDs in creation order.
func (s *InMemoryStore) Conversations(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order), nil
}

// Delete removes a conversation and all its records.
func (s *InMemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	delete(s.conversations, conversationID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == conversationID })
	return nil
}

// Append adds a record at the end of a conversation.
func (s *InMemoryStore) Append(_ context.Context, conversationID string, rec message.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	s.conversations[conversationID] = append(recs, rec)
	return nil
}

// RemoveAt removes the record at position.
func (s *InMemoryStore) RemoveAt(_ context.Context, conversationID string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	if position < 0 || position >= len(recs) {
		return fmt.Errorf("conversation %s position %d: %w", conversationID, position, ErrNotFound)
	}
	s.conversations[conversationID] = slices.Delete(recs, position, position+1)
	return nil
}

// Clear removes every record but keeps the conversation.
func (s *InMemoryStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	s.conversations[conversationID] = nil
	return nil
}

// Replace swaps the whole record sequence of a conversation.
func (s *InMemoryStore) Replace(_ context.Context, conversationID string, recs []message.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[conversationID]; !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	s.conversations[conversationID] = slices.Clone(recs)
	return nil
}

// Load returns the records of a conversation in order. Derived labels are
// cleared to match what a persistent store returns.
func (s *InMemoryStore) Load(_ context.Context, conversationID string) ([]message.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	result := make([]message.Record, len(recs))
	for i, r := range recs {
		r.NameVisible = false
		r.TimeLabel = ""
		result[i] = r
	}
	return result, nil
}

// Len returns the number of records in a conversation.
func (s *InMemoryStore) Len(_ context.Context, conversationID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, ok := s.conversations[conversationID]
	if !ok {
		return 0, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	return len(recs), nil
}
